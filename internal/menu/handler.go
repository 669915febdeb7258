package menu

import (
	"lokanta-backend/internal/database"
	"lokanta-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type MenuItemResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Section  string `json:"section"`
	Price    string `json:"price"`
}

// GET /api/menu?screen=salon|paket|kurumsal
// Sipariş ekranları için aktif menü listesi. Menü yönetimi bu API'nin işi
// değil; kalemler admin panelinden girilir.
func ListMenuItemsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := database.DB.Where("is_active = ?", true)

		switch c.Query("screen") {
		case "salon":
			q = q.Where("show_in_salon = ?", true)
		case "paket":
			q = q.Where("show_in_paket = ?", true)
		case "kurumsal":
			q = q.Where("show_in_kurumsal = ?", true)
		case "":
			// tüm aktif kalemler
		default:
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz screen (salon|paket|kurumsal)")
		}

		var items []models.MenuItem
		if err := q.Order("section ASC, name ASC").Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Menü listelenemedi")
		}

		resp := make([]MenuItemResponse, 0, len(items))
		for _, item := range items {
			resp = append(resp, MenuItemResponse{
				ID:       item.ID,
				Name:     item.Name,
				Category: string(item.Category),
				Section:  string(item.Section),
				Price:    item.Price.StringFixed(2),
			})
		}

		return c.JSON(resp)
	}
}

type RecipeLineResponse struct {
	MaterialID   uint   `json:"material_id"`
	MaterialName string `json:"material_name"`
	Quantity     int    `json:"quantity"`
}

// GET /api/menu/:id/recipe
func GetRecipeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz menü kalemi ID")
		}

		var item models.MenuItem
		if err := database.DB.First(&item, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Menü kalemi bulunamadı")
		}

		lines, err := LinesFor(database.DB, item.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Reçete okunamadı")
		}

		resp := make([]RecipeLineResponse, 0, len(lines))
		for _, line := range lines {
			var material models.Material
			database.DB.First(&material, line.MaterialID)
			resp = append(resp, RecipeLineResponse{
				MaterialID:   line.MaterialID,
				MaterialName: material.Name,
				Quantity:     line.Quantity,
			})
		}

		return c.JSON(fiber.Map{
			"menu_item_id": item.ID,
			"name":         item.Name,
			"lines":        resp,
		})
	}
}
