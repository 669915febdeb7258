package expense

import (
	"time"

	"lokanta-backend/internal/audit"
	"lokanta-backend/internal/auth"
	"lokanta-backend/internal/database"
	"lokanta-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CreateExpenseRequest struct {
	Category string          `json:"category"` // masraf | bahsis
	Amount   decimal.Decimal `json:"amount"`
	Note     string          `json:"note"`
}

type ExpenseResponse struct {
	ID        uint   `json:"id"`
	Category  string `json:"category"`
	Amount    string `json:"amount"`
	Note      string `json:"note"`
	CreatedAt string `json:"created_at"`
}

func toExpenseResponse(e *models.ExtraExpense) ExpenseResponse {
	return ExpenseResponse{
		ID:        e.ID,
		Category:  string(e.Category),
		Amount:    e.Amount.StringFixed(2),
		Note:      e.Note,
		CreatedAt: e.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/expenses
func CreateExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req CreateExpenseRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		category := models.ExpenseCategory(req.Category)
		if category != models.ExpenseMasraf && category != models.ExpenseBahsis {
			return fiber.NewError(fiber.StatusBadRequest, "Kategori masraf ya da bahsis olmalı")
		}
		if req.Amount.LessThanOrEqual(decimal.Zero) {
			return fiber.NewError(fiber.StatusBadRequest, "Tutar pozitif olmalı")
		}

		exp := models.ExtraExpense{
			Category: category,
			Amount:   req.Amount,
			Note:     req.Note,
		}
		if err := database.DB.Create(&exp).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Masraf kaydedilemedi")
		}

		userID, userName, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "expense",
			EntityID:    exp.ID,
			Action:      models.AuditActionCreate,
			Description: "Masraf girildi: " + req.Category,
			After:       exp,
		})

		return c.Status(fiber.StatusCreated).JSON(toExpenseResponse(&exp))
	}
}

// GET /api/expenses?category=bahsis&date=2026-08-30
func ListExpensesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.ExtraExpense{})

		if category := c.Query("category"); category != "" {
			dbq = dbq.Where("category = ?", category)
		}
		if dateStr := c.Query("date"); dateStr != "" {
			day, err := time.Parse("2006-01-02", dateStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih YYYY-AA-GG biçiminde olmalı")
			}
			dbq = dbq.Where("created_at >= ? AND created_at < ?", day, day.AddDate(0, 0, 1))
		}

		var expenses []models.ExtraExpense
		if err := dbq.Order("id DESC").Limit(500).Find(&expenses).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Masraflar listelenemedi")
		}

		resp := make([]ExpenseResponse, 0, len(expenses))
		total := decimal.Zero
		for i := range expenses {
			total = total.Add(expenses[i].Amount)
			resp = append(resp, toExpenseResponse(&expenses[i]))
		}
		return c.JSON(fiber.Map{
			"expenses": resp,
			"total":    total.StringFixed(2),
		})
	}
}

// DELETE /api/expenses/:id
func DeleteExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz masraf ID")
		}

		var exp models.ExtraExpense
		if err := database.DB.First(&exp, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Masraf bulunamadı")
		}
		if err := database.DB.Delete(&models.ExtraExpense{}, id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Masraf silinemedi")
		}

		userID, userName, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "expense",
			EntityID:    exp.ID,
			Action:      models.AuditActionDelete,
			Description: "Masraf silindi",
			Before:      exp,
		})

		return c.JSON(fiber.Map{"message": "Masraf silindi"})
	}
}
