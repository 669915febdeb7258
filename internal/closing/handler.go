package closing

import (
	"errors"

	"lokanta-backend/internal/audit"
	"lokanta-backend/internal/auth"
	"lokanta-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type RunClosingRequest struct {
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
}

type ClosingResponse struct {
	ID                 uint   `json:"id"`
	StartDate          string `json:"start_date"`
	EndDate            string `json:"end_date"`
	TotalSalesOrders   string `json:"total_sales_orders"`
	TotalSalesStock    string `json:"total_sales_stock"`
	TotalPurchaseStock string `json:"total_purchase_stock"`
	TotalProfit        string `json:"total_profit"`
	ProfitFromStock    string `json:"profit_from_stock"`
	ActualProfit       string `json:"actual_profit"`
	TotalMiscExpense   string `json:"total_misc_expense"`
	TotalTips          string `json:"total_tips"`
	CreatedAt          string `json:"created_at"`
}

func toClosingResponse(r *models.ClosingReport) ClosingResponse {
	return ClosingResponse{
		ID:                 r.ID,
		StartDate:          r.StartDate.Format(dateLayout),
		EndDate:            r.EndDate.Format(dateLayout),
		TotalSalesOrders:   r.TotalSalesOrders.StringFixed(2),
		TotalSalesStock:    r.TotalSalesStock.StringFixed(2),
		TotalPurchaseStock: r.TotalPurchaseStock.StringFixed(2),
		TotalProfit:        r.TotalProfit.StringFixed(2),
		ProfitFromStock:    r.ProfitFromStock.StringFixed(2),
		ActualProfit:       r.ActualProfit.StringFixed(2),
		TotalMiscExpense:   r.TotalMiscExpense.StringFixed(2),
		TotalTips:          r.TotalTips.StringFixed(2),
		CreatedAt:          r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/closings
func RunClosingHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req RunClosingRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		report, err := svc.Run(req.StartDate, req.EndDate)
		var invalidRange *InvalidRangeError
		if errors.As(err, &invalidRange) {
			return fiber.NewError(fiber.StatusBadRequest, invalidRange.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kapanış alınamadı")
		}

		userID, userName, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "closing",
			EntityID:    report.ID,
			Action:      models.AuditActionCreate,
			Description: "Kapanış alındı: " + req.StartDate + " / " + req.EndDate,
			After:       report,
		})

		return c.Status(fiber.StatusCreated).JSON(toClosingResponse(report))
	}
}

// GET /api/closings?limit=50
func ListClosingsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reports, err := svc.List(c.QueryInt("limit", 50))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kapanışlar listelenemedi")
		}
		resp := make([]ClosingResponse, 0, len(reports))
		for i := range reports {
			resp = append(resp, toClosingResponse(&reports[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/closings/daily-summary?date=2026-08-30
func DailySummaryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		summary, err := svc.DailySummary(c.Query("date"))
		var invalidRange *InvalidRangeError
		if errors.As(err, &invalidRange) {
			return fiber.NewError(fiber.StatusBadRequest, invalidRange.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Günlük özet alınamadı")
		}
		return c.JSON(summary)
	}
}
