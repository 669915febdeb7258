package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClosingReport: Dönem kapanışı. Oluşturulduktan sonra asla değiştirilmez;
// aynı kapanış satış geçmişini eritir ve stok kovalarını damgalar.
type ClosingReport struct {
	ID        uint      `gorm:"primaryKey"`
	StartDate time.Time `gorm:"index;not null"`
	EndDate   time.Time `gorm:"index;not null"`

	TotalSalesOrders   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"` // ödenen sipariş cirosu
	TotalSalesStock    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"` // kalan stok satış değeri
	TotalPurchaseStock decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"` // satılan + kalan stok alış değeri
	TotalProfit        decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	ProfitFromStock    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"` // kalan stoktan beklenen kâr
	ActualProfit       decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"` // kasadaki gerçek kâr
	TotalMiscExpense   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"` // masraflar
	TotalTips          decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"` // bahşişler

	CreatedAt time.Time
}

type ExpenseCategory string

const (
	ExpenseMasraf ExpenseCategory = "masraf" // günlük ufak giderler
	ExpenseBahsis ExpenseCategory = "bahsis" // personele dağıtılan bahşiş
)

// ExtraExpense: Kapanış hesabına giren elle girilmiş masraf/bahşiş kaydı
type ExtraExpense struct {
	ID        uint            `gorm:"primaryKey"`
	Category  ExpenseCategory `gorm:"size:20;not null;index"`
	Amount    decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Note      string          `gorm:"size:255"`
	CreatedAt time.Time
}
