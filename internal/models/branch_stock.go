package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BranchType: Stok kovasının ait olduğu operasyon alanı
type BranchType string

const (
	BranchMutfak  BranchType = "mutfak"
	BranchBar     BranchType = "bar"
	BranchKantin  BranchType = "kantin"
	BranchNargile BranchType = "nargile"
)

// BranchStock: Malzeme × alan bazında stok kovası. Available hiçbir zaman
// negatif olamaz; düşüm öncesi toplam kontrol edilir.
// UpdatedAt kapanış filtresinde kullanılır (her stok hareketi günceller).
type BranchStock struct {
	ID                uint `gorm:"primaryKey"`
	MaterialID        uint `gorm:"index:idx_branch_stocks_material_type;not null"`
	Material          Material
	BranchType        BranchType      `gorm:"size:20;index:idx_branch_stocks_material_type;not null"`
	Available         int             `gorm:"not null;default:0"`
	UnitSalePrice     decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	UnitPurchasePrice decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	MinimumStock      int             `gorm:"not null;default:0"` // uyarı eşiği
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TotalSaleValue: kovadaki kalan stokun satış değeri
func (b *BranchStock) TotalSaleValue() decimal.Decimal {
	return b.UnitSalePrice.Mul(decimal.NewFromInt(int64(b.Available)))
}

// TotalPurchaseValue: kovadaki kalan stokun alış değeri
func (b *BranchStock) TotalPurchaseValue() decimal.Decimal {
	return b.UnitPurchasePrice.Mul(decimal.NewFromInt(int64(b.Available)))
}

// Profit: kalan stok üzerinden beklenen kâr
func (b *BranchStock) Profit() decimal.Decimal {
	return b.TotalSaleValue().Sub(b.TotalPurchaseValue())
}

// BelowMinimum: stok uyarı eşiğinin altında mı
func (b *BranchStock) BelowMinimum() bool {
	return b.Available < b.MinimumStock
}
