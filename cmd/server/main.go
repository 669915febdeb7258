package main

import (
	"log"
	"strings"

	"lokanta-backend/internal/audit"
	"lokanta-backend/internal/auth"
	"lokanta-backend/internal/closing"
	"lokanta-backend/internal/config"
	"lokanta-backend/internal/database"
	"lokanta-backend/internal/expense"
	"lokanta-backend/internal/ledger"
	"lokanta-backend/internal/logger"
	"lokanta-backend/internal/menu"
	"lokanta-backend/internal/models"
	"lokanta-backend/internal/orders"
	"lokanta-backend/internal/stock"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	if err := logger.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatalf("Logger başlatılamadı: %v", err)
	}
	defer logger.L().Sync()

	database.Init(cfg)

	ledgerSvc := ledger.NewService(database.DB)
	orderSvc := orders.NewService(database.DB, ledgerSvc)
	stockSvc := stock.NewService(database.DB, ledgerSvc)
	closingSvc := closing.NewService(database.DB, ledgerSvc)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			logger.L().Error("beklenmeyen hata", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Menü
	protected.Get("/menu", menu.ListMenuItemsHandler())
	protected.Get("/menu/:id/recipe", menu.GetRecipeHandler())

	// Siparişler
	protected.Post("/orders/salon", orders.UpsertSalonOrderHandler(orderSvc))
	protected.Get("/orders/salon/:table", orders.GetTableOrderHandler(orderSvc))
	protected.Post("/orders/paket", orders.CreatePaketOrderHandler(orderSvc))
	protected.Post("/orders/kurumsal", orders.CreateKurumsalOrderHandler(orderSvc))
	protected.Get("/orders", orders.ListOrdersHandler())
	protected.Get("/orders/:id", orders.GetOrderHandler(orderSvc))
	protected.Put("/orders/:id", orders.EditOrderHandler(orderSvc))
	protected.Delete("/orders/:id", orders.DeleteOrderHandler(orderSvc))
	protected.Post("/orders/:id/pay", orders.PayOrderHandler(orderSvc))
	protected.Post("/order-items/:id/done", orders.MarkItemDoneHandler())

	// Stok görünümleri
	protected.Get("/stock", stock.ListBucketsHandler(stockSvc))
	protected.Get("/stock/sold-history", stock.ListSoldHistoryHandler(stockSvc))
	protected.Get("/stock/intake-history", stock.ListIntakeHistoryHandler(stockSvc))

	// Masraflar
	protected.Post("/expenses", expense.CreateExpenseHandler())
	protected.Get("/expenses", expense.ListExpensesHandler())

	// Admin routes
	adminRoutes := protected.Group("")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	adminRoutes.Post("/auth/register-staff", auth.RegisterStaffHandler())
	adminRoutes.Post("/stock/intake", stock.IntakeHandler(stockSvc))
	adminRoutes.Delete("/expenses/:id", expense.DeleteExpenseHandler())
	adminRoutes.Post("/closings", closing.RunClosingHandler(closingSvc))
	adminRoutes.Get("/closings", closing.ListClosingsHandler(closingSvc))
	adminRoutes.Get("/closings/daily-summary", closing.DailySummaryHandler(closingSvc))
	adminRoutes.Get("/audit-logs", audit.ListAuditLogsHandler())

	logger.L().Info("server çalışıyor", zap.String("port", cfg.HTTPPort))
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
