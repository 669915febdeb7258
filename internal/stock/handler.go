package stock

import (
	"errors"

	"lokanta-backend/internal/audit"
	"lokanta-backend/internal/auth"
	"lokanta-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type IntakeRequest struct {
	MaterialName      string          `json:"material_name"`
	BranchType        string          `json:"branch_type"`
	Quantity          int             `json:"quantity"`
	UnitSalePrice     decimal.Decimal `json:"unit_sale_price"`
	UnitPurchasePrice decimal.Decimal `json:"unit_purchase_price"`
	MinimumStock      int             `json:"minimum_stock"`
}

type BucketResponse struct {
	ID                 uint   `json:"id"`
	MaterialID         uint   `json:"material_id"`
	MaterialName       string `json:"material_name"`
	BranchType         string `json:"branch_type"`
	Available          int    `json:"available"`
	UnitSalePrice      string `json:"unit_sale_price"`
	UnitPurchasePrice  string `json:"unit_purchase_price"`
	MinimumStock       int    `json:"minimum_stock"`
	TotalSaleValue     string `json:"total_sale_value"`
	TotalPurchaseValue string `json:"total_purchase_value"`
	Profit             string `json:"profit"`
	BelowMinimum       bool   `json:"below_minimum"`
}

func toBucketResponse(b *models.BranchStock) BucketResponse {
	return BucketResponse{
		ID:                 b.ID,
		MaterialID:         b.MaterialID,
		MaterialName:       b.Material.Name,
		BranchType:         string(b.BranchType),
		Available:          b.Available,
		UnitSalePrice:      b.UnitSalePrice.StringFixed(2),
		UnitPurchasePrice:  b.UnitPurchasePrice.StringFixed(2),
		MinimumStock:       b.MinimumStock,
		TotalSaleValue:     b.TotalSaleValue().StringFixed(2),
		TotalPurchaseValue: b.TotalPurchaseValue().StringFixed(2),
		Profit:             b.Profit().StringFixed(2),
		BelowMinimum:       b.BelowMinimum(),
	}
}

// POST /api/stock/intake
func IntakeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req IntakeRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		bucket, err := svc.Intake(IntakeInput{
			MaterialName:      req.MaterialName,
			BranchType:        models.BranchType(req.BranchType),
			Quantity:          req.Quantity,
			UnitSalePrice:     req.UnitSalePrice,
			UnitPurchasePrice: req.UnitPurchasePrice,
			MinimumStock:      req.MinimumStock,
		})
		if errors.Is(err, ErrInvalidIntake) {
			return fiber.NewError(fiber.StatusBadRequest, "Malzeme adı, şube ve pozitif miktar zorunlu")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Mal girişi kaydedilemedi")
		}

		userID, userName, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "stock_intake",
			EntityID:    bucket.ID,
			Action:      models.AuditActionCreate,
			Description: "Mal girişi: " + req.MaterialName,
			After:       req,
		})

		return c.Status(fiber.StatusCreated).JSON(toBucketResponse(bucket))
	}
}

// GET /api/stock?branch_type=bar
func ListBucketsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		buckets, err := svc.CurrentBuckets(models.BranchType(c.Query("branch_type")))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok listelenemedi")
		}
		resp := make([]BucketResponse, 0, len(buckets))
		for i := range buckets {
			resp = append(resp, toBucketResponse(&buckets[i]))
		}
		return c.JSON(resp)
	}
}

type SoldHistoryResponse struct {
	ID                 uint   `json:"id"`
	MaterialID         uint   `json:"material_id"`
	MaterialName       string `json:"material_name"`
	BranchType         string `json:"branch_type"`
	Quantity           int    `json:"quantity"`
	UnitSalePrice      string `json:"unit_sale_price"`
	UnitPurchasePrice  string `json:"unit_purchase_price"`
	TotalSaleValue     string `json:"total_sale_value"`
	TotalPurchaseValue string `json:"total_purchase_value"`
	CreatedAt          string `json:"created_at"`
}

// GET /api/stock/sold-history?date=2026-08-30
func ListSoldHistoryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entries, err := svc.SoldHistory(c.Query("date"))
		if errors.Is(err, ErrInvalidDate) {
			return fiber.NewError(fiber.StatusBadRequest, "Tarih YYYY-AA-GG biçiminde olmalı")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satış geçmişi listelenemedi")
		}

		resp := make([]SoldHistoryResponse, 0, len(entries))
		totalSale := decimal.Zero
		totalPurchase := decimal.Zero
		for i := range entries {
			e := &entries[i]
			totalSale = totalSale.Add(e.TotalSaleValue())
			totalPurchase = totalPurchase.Add(e.TotalPurchaseValue())
			resp = append(resp, SoldHistoryResponse{
				ID:                 e.ID,
				MaterialID:         e.MaterialID,
				MaterialName:       e.Material.Name,
				BranchType:         string(e.BranchType),
				Quantity:           e.Quantity,
				UnitSalePrice:      e.UnitSalePrice.StringFixed(2),
				UnitPurchasePrice:  e.UnitPurchasePrice.StringFixed(2),
				TotalSaleValue:     e.TotalSaleValue().StringFixed(2),
				TotalPurchaseValue: e.TotalPurchaseValue().StringFixed(2),
				CreatedAt:          e.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(fiber.Map{
			"entries":              resp,
			"total_sale_value":     totalSale.StringFixed(2),
			"total_purchase_value": totalPurchase.StringFixed(2),
		})
	}
}

type IntakeHistoryResponse struct {
	ID           uint   `json:"id"`
	MaterialID   uint   `json:"material_id"`
	MaterialName string `json:"material_name"`
	BranchType   string `json:"branch_type"`
	Quantity     int    `json:"quantity"`
	Remaining    int    `json:"remaining"`
	CreatedAt    string `json:"created_at"`
}

// GET /api/stock/intake-history?date=2026-08-30
func ListIntakeHistoryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		intakes, err := svc.IntakeHistory(c.Query("date"))
		if errors.Is(err, ErrInvalidDate) {
			return fiber.NewError(fiber.StatusBadRequest, "Tarih YYYY-AA-GG biçiminde olmalı")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Giriş geçmişi listelenemedi")
		}

		resp := make([]IntakeHistoryResponse, 0, len(intakes))
		for i := range intakes {
			resp = append(resp, IntakeHistoryResponse{
				ID:           intakes[i].ID,
				MaterialID:   intakes[i].MaterialID,
				MaterialName: intakes[i].Material.Name,
				BranchType:   string(intakes[i].BranchType),
				Quantity:     intakes[i].Quantity,
				Remaining:    intakes[i].Remaining,
				CreatedAt:    intakes[i].CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(resp)
	}
}
