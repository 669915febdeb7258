package menu

import (
	"lokanta-backend/internal/models"

	"gorm.io/gorm"
)

// LinesFor: Menü kaleminin reçete satırları, kararlı sırada (id artan).
// Reçetesiz kalem hata değildir; boş liste döner (örn. ilaveler stok düşmez).
func LinesFor(tx *gorm.DB, menuItemID uint) ([]models.Recipe, error) {
	var lines []models.Recipe
	err := tx.Where("menu_item_id = ?", menuItemID).
		Order("id ASC").
		Find(&lines).Error
	return lines, err
}
