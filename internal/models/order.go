package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderType string

const (
	OrderSalon    OrderType = "salon"    // masa servisi
	OrderPaket    OrderType = "paket"    // paket servis
	OrderKurumsal OrderType = "kurumsal" // anlaşmalı kurum (iskontolu)
)

type PaymentMethod string

const (
	PaymentNakit    PaymentMethod = "nakit"
	PaymentKart     PaymentMethod = "kart"
	PaymentVeresiye PaymentMethod = "veresiye" // sonradan tahsil
)

type Order struct {
	ID          uint      `gorm:"primaryKey"`
	OrderType   OrderType `gorm:"size:20;not null;index"`
	TableNumber *int      `gorm:"index"` // sadece salon siparişlerinde
	IsPaid      bool      `gorm:"not null;default:false;index"`

	Discount      decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	ServiceCharge decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	Tax           decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`

	PaymentMethod *PaymentMethod `gorm:"size:20"`
	Note          string         `gorm:"size:500"`

	CashierID uint `gorm:"index;not null"`
	Cashier   User

	CorporateAccountID *uint
	CorporateAccount   *CorporateAccount

	Items []OrderItem `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type OrderItem struct {
	ID         uint `gorm:"primaryKey"`
	OrderID    uint `gorm:"index;not null"`
	MenuItemID uint `gorm:"index;not null"`
	MenuItem   MenuItem
	Quantity   int  `gorm:"not null;default:1"`
	IsDone     bool `gorm:"not null;default:false"` // mutfak hazırladı mı
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TotalPrice: satırın menü fiyatı üzerinden tutarı
func (oi *OrderItem) TotalPrice() decimal.Decimal {
	return oi.MenuItem.Price.Mul(decimal.NewFromInt(int64(oi.Quantity)))
}

// Subtotal: yüklü satırlar üzerinden ara toplam (Items preload edilmiş olmalı)
func (o *Order) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Items {
		total = total.Add(o.Items[i].TotalPrice())
	}
	return total
}

// Total: ara toplam - iskonto + servis + vergi
func (o *Order) Total() decimal.Decimal {
	return o.Subtotal().Sub(o.Discount).Add(o.ServiceCharge).Add(o.Tax)
}

// CorporateAccount: İskontolu çalışılan kurum/cari hesap
type CorporateAccount struct {
	ID           uint            `gorm:"primaryKey"`
	Name         string          `gorm:"size:100;not null"`
	DiscountRate decimal.Decimal `gorm:"type:numeric(4,2);not null;default:0.10"` // 0.10 = %10
	CreatedAt    time.Time
}
