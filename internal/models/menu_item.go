package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type MenuCategory string

const (
	CategoryYemek   MenuCategory = "yemek"
	CategoryIcecek  MenuCategory = "icecek"
	CategoryNargile MenuCategory = "nargile"
)

type MenuSection string

const (
	SectionBarista MenuSection = "barista"
	SectionMutfak  MenuSection = "mutfak"
	SectionKantin  MenuSection = "kantin"
	SectionNargile MenuSection = "nargile"
	SectionEkstra  MenuSection = "ekstra" // ilaveler (şerbet, ekstra köz vs.)
)

type MenuItem struct {
	ID       uint            `gorm:"primaryKey"`
	Name     string          `gorm:"size:120;not null"`
	Category MenuCategory    `gorm:"size:20;not null;default:'yemek'"`
	Section  MenuSection     `gorm:"size:20;not null;index"`
	Price    decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	IsActive bool            `gorm:"not null;default:true"`

	// Hangi sipariş ekranlarında görünür
	ShowInSalon    bool `gorm:"not null;default:false"`
	ShowInPaket    bool `gorm:"not null;default:false"`
	ShowInKurumsal bool `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Recipe: Bir menü kaleminin bir porsiyonu için tüketilen ham madde miktarı.
// Reçetesi olmayan kalemler (örn. ekstra servis) stok düşmez.
type Recipe struct {
	ID         uint `gorm:"primaryKey"`
	MenuItemID uint `gorm:"index;not null"`
	MenuItem   MenuItem
	MaterialID uint `gorm:"index;not null"`
	Material   Material
	Quantity   int `gorm:"not null"` // porsiyon başına tüketim, > 0
}
