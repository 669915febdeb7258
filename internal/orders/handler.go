package orders

import (
	"errors"
	"fmt"
	"time"

	"lokanta-backend/internal/audit"
	"lokanta-backend/internal/auth"
	"lokanta-backend/internal/database"
	"lokanta-backend/internal/ledger"
	"lokanta-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateSalonOrderRequest struct {
	TableNumber int         `json:"table_number"`
	Items       []LineInput `json:"items"`
	Note        string      `json:"note"`
}

type CreatePaketOrderRequest struct {
	Items []LineInput `json:"items"`
	Note  string      `json:"note"`
}

type CreateKurumsalOrderRequest struct {
	Items     []LineInput `json:"items"`
	AccountID uint        `json:"account_id"`
}

type EditOrderRequest struct {
	Items []LineInput `json:"items"`
}

type PayOrderRequest struct {
	Method models.PaymentMethod `json:"method"`
}

type OrderItemResponse struct {
	ID         uint   `json:"id"`
	MenuItemID uint   `json:"menuitem_id"`
	Name       string `json:"name"`
	Section    string `json:"section"`
	Quantity   int    `json:"quantity"`
	UnitPrice  string `json:"unit_price"`
	Total      string `json:"total"`
	IsDone     bool   `json:"is_done"`
}

type OrderResponse struct {
	ID            uint                `json:"id"`
	OrderType     models.OrderType    `json:"order_type"`
	TableNumber   *int                `json:"table_number,omitempty"`
	IsPaid        bool                `json:"is_paid"`
	PaymentMethod *string             `json:"payment_method,omitempty"`
	Note          string              `json:"note,omitempty"`
	Items         []OrderItemResponse `json:"items"`
	Subtotal      string              `json:"subtotal"`
	Discount      string              `json:"discount"`
	ServiceCharge string              `json:"service_charge"`
	Tax           string              `json:"tax"`
	Total         string              `json:"total"`
	CreatedAt     string              `json:"created_at"`
}

func toOrderResponse(order *models.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for i := range order.Items {
		item := &order.Items[i]
		items = append(items, OrderItemResponse{
			ID:         item.ID,
			MenuItemID: item.MenuItemID,
			Name:       item.MenuItem.Name,
			Section:    string(item.MenuItem.Section),
			Quantity:   item.Quantity,
			UnitPrice:  item.MenuItem.Price.StringFixed(2),
			Total:      item.TotalPrice().StringFixed(2),
			IsDone:     item.IsDone,
		})
	}

	var method *string
	if order.PaymentMethod != nil {
		m := string(*order.PaymentMethod)
		method = &m
	}

	return OrderResponse{
		ID:            order.ID,
		OrderType:     order.OrderType,
		TableNumber:   order.TableNumber,
		IsPaid:        order.IsPaid,
		PaymentMethod: method,
		Note:          order.Note,
		Items:         items,
		Subtotal:      order.Subtotal().StringFixed(2),
		Discount:      order.Discount.StringFixed(2),
		ServiceCharge: order.ServiceCharge.StringFixed(2),
		Tax:           order.Tax.StringFixed(2),
		Total:         order.Total().StringFixed(2),
		CreatedAt:     order.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// Servis hatalarını HTTP cevabına çevirir. Stok yetersizliği yapılandırılmış
// gövdeyle döner ki ekran hangi malzemenin eksik olduğunu gösterebilsin.
func respondServiceError(c *fiber.Ctx, err error) error {
	var insufficient *ledger.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":       "Stok yetersiz",
			"material_id": insufficient.MaterialID,
			"material":    insufficient.MaterialName,
			"required":    insufficient.Required,
			"available":   insufficient.Available,
		})
	case errors.Is(err, ErrOrderNotEditable):
		return fiber.NewError(fiber.StatusUnprocessableEntity, ErrOrderNotEditable.Error())
	case errors.Is(err, ErrAlreadyPaid):
		return fiber.NewError(fiber.StatusUnprocessableEntity, ErrAlreadyPaid.Error())
	case errors.Is(err, ErrOrderNotFound):
		return fiber.NewError(fiber.StatusNotFound, ErrOrderNotFound.Error())
	case errors.Is(err, ErrMenuItemNotFound):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrAccountNotFound):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case ledger.IsRetryable(err):
		return fiber.NewError(fiber.StatusServiceUnavailable, ledger.ErrBusy.Error())
	default:
		return err
	}
}

// POST /api/orders/salon
// Masanın açık siparişini istenen satır kümesine getirir (yoksa açar)
func UpsertSalonOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSalonOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.TableNumber <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Masa numarası zorunlu")
		}

		userID, userName, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		order, err := svc.UpsertTableOrder(body.TableNumber, body.Items, body.Note, userID)
		if err != nil {
			return respondServiceError(c, err)
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "order",
			EntityID:    order.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Masa %d siparişi güncellendi (%d satır)", body.TableNumber, len(order.Items)),
			After:       order,
		})

		return c.JSON(toOrderResponse(order))
	}
}

// GET /api/orders/salon/:table
func GetTableOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		table, err := c.ParamsInt("table")
		if err != nil || table <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz masa numarası")
		}

		order, err := svc.OpenTableOrder(table)
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(toOrderResponse(order))
	}
}

// POST /api/orders/paket
func CreatePaketOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePaketOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if len(body.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Sipariş satırları zorunlu")
		}

		userID, userName, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		order, err := svc.CreatePaketOrder(body.Items, body.Note, userID)
		if err != nil {
			return respondServiceError(c, err)
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "order",
			EntityID:    order.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Paket sipariş oluşturuldu (%d satır)", len(order.Items)),
			After:       order,
		})

		return c.Status(fiber.StatusCreated).JSON(toOrderResponse(order))
	}
}

// POST /api/orders/kurumsal
func CreateKurumsalOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateKurumsalOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if len(body.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Sipariş satırları zorunlu")
		}
		if body.AccountID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "account_id zorunlu")
		}

		userID, userName, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		order, err := svc.CreateKurumsalOrder(body.Items, body.AccountID, userID)
		if err != nil {
			return respondServiceError(c, err)
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "order",
			EntityID:    order.ID,
			Action:      models.AuditActionCreate,
			Description: "Kurumsal sipariş oluşturuldu",
			After:       order,
		})

		return c.Status(fiber.StatusCreated).JSON(toOrderResponse(order))
	}
}

// PUT /api/orders/:id
func EditOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz sipariş ID")
		}

		var body EditOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		userID, userName, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		before, _ := svc.Get(uint(id))

		order, err := svc.Edit(uint(id), body.Items)
		if err != nil {
			return respondServiceError(c, err)
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "order",
			EntityID:    order.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Sipariş %d düzenlendi", order.ID),
			Before:      before,
			After:       order,
		})

		return c.JSON(toOrderResponse(order))
	}
}

// DELETE /api/orders/:id
// Tüm satırlar iade edilir, sipariş silinir
func DeleteOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz sipariş ID")
		}

		userID, userName, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		before, _ := svc.Get(uint(id))

		if err := svc.Delete(uint(id)); err != nil {
			return respondServiceError(c, err)
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "order",
			EntityID:    uint(id),
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Sipariş %d silindi, stok iade edildi", id),
			Before:      before,
		})

		return c.JSON(fiber.Map{"ok": true})
	}
}

// POST /api/orders/:id/pay
func PayOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz sipariş ID")
		}

		var body PayOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		switch body.Method {
		case models.PaymentNakit, models.PaymentKart, models.PaymentVeresiye:
			// ok
		default:
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ödeme yöntemi (nakit|kart|veresiye)")
		}

		order, err := svc.Pay(uint(id), body.Method)
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(toOrderResponse(order))
	}
}

// GET /api/orders?date=2025-12-09&type=salon&paid=true
func ListOrdersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := database.DB.Preload("Items.MenuItem").Order("id DESC")

		if dateStr := c.Query("date"); dateStr != "" {
			day, err := time.Parse("2006-01-02", dateStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
			}
			q = q.Where("created_at >= ? AND created_at < ?", day, day.AddDate(0, 0, 1))
		}
		if typeStr := c.Query("type"); typeStr != "" {
			q = q.Where("order_type = ?", typeStr)
		}
		if paidStr := c.Query("paid"); paidStr != "" {
			q = q.Where("is_paid = ?", paidStr == "true")
		}

		var orderRows []models.Order
		if err := q.Limit(200).Find(&orderRows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Siparişler listelenemedi")
		}

		resp := make([]OrderResponse, 0, len(orderRows))
		for i := range orderRows {
			resp = append(resp, toOrderResponse(&orderRows[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/orders/:id
func GetOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz sipariş ID")
		}
		order, err := svc.Get(uint(id))
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(toOrderResponse(order))
	}
}

// POST /api/order-items/:id/done
// Mutfak ekranı: satırı hazırlandı olarak işaretler
func MarkItemDoneHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz satır ID")
		}

		result := database.DB.Model(&models.OrderItem{}).
			Where("id = ?", id).
			Update("is_done", true)
		if result.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satır güncellenemedi")
		}
		if result.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Satır bulunamadı")
		}
		return c.JSON(fiber.Map{"ok": true})
	}
}
