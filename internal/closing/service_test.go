package closing

import (
	"testing"
	"time"

	"lokanta-backend/internal/ledger"
	"lokanta-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupClosingDB(t *testing.T) (*gorm.DB, *Service) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Material{},
		&models.MenuItem{},
		&models.BranchStock{},
		&models.SoldHistory{},
		&models.StockIntake{},
		&models.Order{},
		&models.OrderItem{},
		&models.ExtraExpense{},
		&models.ClosingReport{},
	))

	return db, NewService(db, ledger.NewService(db))
}

func today() string {
	return time.Now().Format(dateLayout)
}

func TestRun_TotalsToTheCent(t *testing.T) {
	db, svc := setupClosingDB(t)

	material := models.Material{Name: "Çay"}
	require.NoError(t, db.Create(&material).Error)

	// ödenen sipariş: 2 × 50.00 + vergi 14.00 = 114.00
	menuItem := models.MenuItem{Name: "Çay Bardak", Section: models.SectionKantin, Price: decimal.NewFromFloat(50.00), IsActive: true}
	require.NoError(t, db.Create(&menuItem).Error)
	order := models.Order{OrderType: models.OrderSalon, CashierID: 1, IsPaid: true, Tax: decimal.NewFromFloat(14.00)}
	require.NoError(t, db.Create(&order).Error)
	require.NoError(t, db.Create(&models.OrderItem{OrderID: order.ID, MenuItemID: menuItem.ID, Quantity: 2}).Error)

	// kalan stok: 4 × satış 10.00 / alış 6.00 → satış 40.00, alış 24.00, kâr 16.00
	require.NoError(t, db.Create(&models.BranchStock{
		MaterialID: material.ID, BranchType: models.BranchKantin, Available: 4,
		UnitSalePrice: decimal.NewFromFloat(10.00), UnitPurchasePrice: decimal.NewFromFloat(6.00),
	}).Error)

	// tüketim: 3 × alış 6.00 → 18.00
	require.NoError(t, db.Create(&models.SoldHistory{
		MaterialID: material.ID, BranchType: models.BranchKantin, Quantity: 3,
		UnitSalePrice: decimal.NewFromFloat(10.00), UnitPurchasePrice: decimal.NewFromFloat(6.00),
	}).Error)

	require.NoError(t, db.Create(&models.ExtraExpense{Category: models.ExpenseMasraf, Amount: decimal.NewFromFloat(5.00)}).Error)
	require.NoError(t, db.Create(&models.ExtraExpense{Category: models.ExpenseBahsis, Amount: decimal.NewFromFloat(2.00)}).Error)

	report, err := svc.Run(today(), today())
	require.NoError(t, err)

	assert.Equal(t, "114.00", report.TotalSalesOrders.StringFixed(2))
	assert.Equal(t, "40.00", report.TotalSalesStock.StringFixed(2))
	assert.Equal(t, "42.00", report.TotalPurchaseStock.StringFixed(2)) // 18 + 24
	// toplam kâr = (114 + 40) - (18 + 24) = 112
	assert.Equal(t, "112.00", report.TotalProfit.StringFixed(2))
	assert.Equal(t, "16.00", report.ProfitFromStock.StringFixed(2))
	// gerçek kâr = 112 - 16 - 5 + 2 = 93
	assert.Equal(t, "93.00", report.ActualProfit.StringFixed(2))
	assert.Equal(t, "5.00", report.TotalMiscExpense.StringFixed(2))
	assert.Equal(t, "2.00", report.TotalTips.StringFixed(2))

	// aralıktaki tüketim kapanışça eritildi
	var historyCount int64
	require.NoError(t, db.Model(&models.SoldHistory{}).Count(&historyCount).Error)
	assert.Equal(t, int64(0), historyCount)
}

func TestRun_CompactsIntakeOldestFirst(t *testing.T) {
	db, svc := setupClosingDB(t)

	material := models.Material{Name: "Şeker"}
	require.NoError(t, db.Create(&material).Error)

	first := models.StockIntake{MaterialID: material.ID, BranchType: models.BranchKantin, Quantity: 5, Remaining: 5}
	second := models.StockIntake{MaterialID: material.ID, BranchType: models.BranchKantin, Quantity: 4, Remaining: 4}
	require.NoError(t, db.Create(&first).Error)
	require.NoError(t, db.Create(&second).Error)

	require.NoError(t, db.Create(&models.SoldHistory{
		MaterialID: material.ID, BranchType: models.BranchKantin, Quantity: 6,
	}).Error)

	_, err := svc.Run(today(), today())
	require.NoError(t, err)

	// 6 tüketim: ilk giriş (5) tamamen erir ve silinir, ikinciden 1 düşer
	var intakes []models.StockIntake
	require.NoError(t, db.Order("id ASC").Find(&intakes).Error)
	require.Len(t, intakes, 1)
	assert.Equal(t, second.ID, intakes[0].ID)
	assert.Equal(t, 3, intakes[0].Remaining)
	assert.Equal(t, 4, intakes[0].Quantity) // girişteki adet değişmez
}

func TestRun_IntakeExhaustionTolerated(t *testing.T) {
	db, svc := setupClosingDB(t)

	material := models.Material{Name: "Limon"}
	require.NoError(t, db.Create(&material).Error)

	require.NoError(t, db.Create(&models.StockIntake{
		MaterialID: material.ID, BranchType: models.BranchBar, Quantity: 2, Remaining: 2,
	}).Error)
	require.NoError(t, db.Create(&models.SoldHistory{
		MaterialID: material.ID, BranchType: models.BranchBar, Quantity: 10,
	}).Error)

	_, err := svc.Run(today(), today())
	require.NoError(t, err)

	var intakeCount int64
	require.NoError(t, db.Model(&models.StockIntake{}).Count(&intakeCount).Error)
	assert.Equal(t, int64(0), intakeCount)
}

func TestRun_InvalidRangeWritesNothing(t *testing.T) {
	db, svc := setupClosingDB(t)

	require.NoError(t, db.Create(&models.SoldHistory{MaterialID: 1, BranchType: models.BranchBar, Quantity: 3}).Error)

	var invalidRange *InvalidRangeError

	_, err := svc.Run("", today())
	require.ErrorAs(t, err, &invalidRange)

	_, err = svc.Run(today(), "31-12-2026")
	require.ErrorAs(t, err, &invalidRange)

	var reportCount, historyCount int64
	require.NoError(t, db.Model(&models.ClosingReport{}).Count(&reportCount).Error)
	require.NoError(t, db.Model(&models.SoldHistory{}).Count(&historyCount).Error)
	assert.Equal(t, int64(0), reportCount)
	assert.Equal(t, int64(1), historyCount)
}

func TestRun_StampsAllBucketsAndSkipsStale(t *testing.T) {
	db, svc := setupClosingDB(t)

	material := models.Material{Name: "Nane"}
	require.NoError(t, db.Create(&material).Error)

	bucket := models.BranchStock{
		MaterialID: material.ID, BranchType: models.BranchBar, Available: 10,
		UnitSalePrice: decimal.NewFromFloat(5.00), UnitPurchasePrice: decimal.NewFromFloat(3.00),
	}
	require.NoError(t, db.Create(&bucket).Error)
	// kova aralığın dışında kalsın diye damgası geriye çekilir
	stale := time.Now().AddDate(0, 0, -30)
	require.NoError(t, db.Model(&models.BranchStock{}).
		Where("id = ?", bucket.ID).
		UpdateColumn("updated_at", stale).Error)

	report, err := svc.Run(today(), today())
	require.NoError(t, err)

	// bayat kova toplamlara girmez
	assert.Equal(t, "0.00", report.TotalSalesStock.StringFixed(2))
	assert.Equal(t, "0.00", report.ProfitFromStock.StringFixed(2))

	// ama kapanış anına damgalanır
	var reloaded models.BranchStock
	require.NoError(t, db.First(&reloaded, bucket.ID).Error)
	assert.WithinDuration(t, time.Now(), reloaded.UpdatedAt, time.Minute)
}

func TestDailySummary_GroupsBySection(t *testing.T) {
	db, svc := setupClosingDB(t)

	cay := models.MenuItem{Name: "Çay", Section: models.SectionKantin, Price: decimal.NewFromFloat(10.00), IsActive: true}
	kofte := models.MenuItem{Name: "Köfte", Section: models.SectionMutfak, Price: decimal.NewFromFloat(150.00), IsActive: true}
	require.NoError(t, db.Create(&cay).Error)
	require.NoError(t, db.Create(&kofte).Error)

	paid := models.Order{OrderType: models.OrderSalon, CashierID: 1, IsPaid: true}
	require.NoError(t, db.Create(&paid).Error)
	require.NoError(t, db.Create(&models.OrderItem{OrderID: paid.ID, MenuItemID: cay.ID, Quantity: 3}).Error)
	require.NoError(t, db.Create(&models.OrderItem{OrderID: paid.ID, MenuItemID: kofte.ID, Quantity: 1}).Error)

	// ödenmemiş sipariş özete girmez
	open := models.Order{OrderType: models.OrderSalon, CashierID: 1}
	require.NoError(t, db.Create(&open).Error)
	require.NoError(t, db.Create(&models.OrderItem{OrderID: open.ID, MenuItemID: cay.ID, Quantity: 5}).Error)

	require.NoError(t, db.Create(&models.ExtraExpense{Category: models.ExpenseMasraf, Amount: decimal.NewFromFloat(7.50), Note: "çöp poşeti"}).Error)

	summary, err := svc.DailySummary(today())
	require.NoError(t, err)

	require.Len(t, summary.Sections, 2)
	assert.Equal(t, models.SectionMutfak, summary.Sections[0].Section)
	assert.Equal(t, 1, summary.Sections[0].Quantity)
	assert.Equal(t, "150.00", summary.Sections[0].Sales.StringFixed(2))
	assert.Equal(t, models.SectionKantin, summary.Sections[1].Section)
	assert.Equal(t, 3, summary.Sections[1].Quantity)
	assert.Equal(t, "30.00", summary.Sections[1].Sales.StringFixed(2))

	assert.Equal(t, "180.00", summary.TotalSales.StringFixed(2))
	require.Len(t, summary.Expenses, 1)
	assert.Equal(t, "7.50", summary.TotalExpenses.StringFixed(2))
}
