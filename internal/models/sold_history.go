package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SoldHistory: Kapanış bekleyen tüketim kaydı. Her başarılı stok düşümünde,
// düşüm yapılan kova başına bir satır eklenir; iade en yeni satırdan geriye
// doğru düşer, sıfırlanan satır silinir.
type SoldHistory struct {
	ID                uint `gorm:"primaryKey"`
	MaterialID        uint `gorm:"index;not null"`
	Material          Material
	BranchType        BranchType      `gorm:"size:20;index;not null"`
	Quantity          int             `gorm:"not null"` // tüketilen adet
	UnitSalePrice     decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	UnitPurchasePrice decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (s *SoldHistory) TotalSaleValue() decimal.Decimal {
	return s.UnitSalePrice.Mul(decimal.NewFromInt(int64(s.Quantity)))
}

func (s *SoldHistory) TotalPurchaseValue() decimal.Decimal {
	return s.UnitPurchasePrice.Mul(decimal.NewFromInt(int64(s.Quantity)))
}

func (s *SoldHistory) Profit() decimal.Decimal {
	return s.TotalSaleValue().Sub(s.TotalPurchaseValue())
}

// StockIntake: Depoya yapılan her mal girişinin kalıcı kaydı. Remaining,
// kapanışlarda satılan miktar kadar eskiden yeniye doğru eritilir;
// tamamen eriyen satırlar silinir.
type StockIntake struct {
	ID                uint `gorm:"primaryKey"`
	MaterialID        uint `gorm:"index;not null"`
	Material          Material
	BranchType        BranchType      `gorm:"size:20;index;not null"`
	Quantity          int             `gorm:"not null"` // girişteki adet
	Remaining         int             `gorm:"not null"` // kapanışlarca henüz eritilmemiş kısım
	UnitSalePrice     decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	UnitPurchasePrice decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	CreatedAt         time.Time
}

func (s *StockIntake) TotalSaleValue() decimal.Decimal {
	return s.UnitSalePrice.Mul(decimal.NewFromInt(int64(s.Remaining)))
}

func (s *StockIntake) TotalPurchaseValue() decimal.Decimal {
	return s.UnitPurchasePrice.Mul(decimal.NewFromInt(int64(s.Remaining)))
}
