package orders

import (
	"testing"

	"lokanta-backend/internal/ledger"
	"lokanta-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	db  *gorm.DB
	svc *Service

	cashier models.User
	kofte   models.MenuItem // reçeteli: 2 × kıyma
	ayran   models.MenuItem // reçeteli: 1 × ayran
	ekstra  models.MenuItem // reçetesiz ilave
	kiyma   models.Material
	yogurt  models.Material
}

func setupEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Material{},
		&models.MenuItem{},
		&models.Recipe{},
		&models.BranchStock{},
		&models.SoldHistory{},
		&models.Order{},
		&models.OrderItem{},
		&models.CorporateAccount{},
	))

	env := &testEnv{db: db, svc: NewService(db, ledger.NewService(db))}

	env.cashier = models.User{Name: "Kasiyer", Email: "kasa@lokanta.local", PasswordHash: "x", Role: models.RoleKasiyer}
	require.NoError(t, db.Create(&env.cashier).Error)

	env.kiyma = models.Material{Name: "Kıyma"}
	env.yogurt = models.Material{Name: "Yoğurt"}
	require.NoError(t, db.Create(&env.kiyma).Error)
	require.NoError(t, db.Create(&env.yogurt).Error)

	env.kofte = models.MenuItem{Name: "Köfte", Section: models.SectionMutfak, Price: decimal.NewFromFloat(150.00), IsActive: true, ShowInSalon: true}
	env.ayran = models.MenuItem{Name: "Ayran", Section: models.SectionKantin, Price: decimal.NewFromFloat(25.00), IsActive: true, ShowInSalon: true}
	env.ekstra = models.MenuItem{Name: "Ekstra Servis", Section: models.SectionEkstra, Price: decimal.NewFromFloat(10.00), IsActive: true, ShowInSalon: true}
	require.NoError(t, db.Create(&env.kofte).Error)
	require.NoError(t, db.Create(&env.ayran).Error)
	require.NoError(t, db.Create(&env.ekstra).Error)

	require.NoError(t, db.Create(&models.Recipe{MenuItemID: env.kofte.ID, MaterialID: env.kiyma.ID, Quantity: 2}).Error)
	require.NoError(t, db.Create(&models.Recipe{MenuItemID: env.ayran.ID, MaterialID: env.yogurt.ID, Quantity: 1}).Error)

	require.NoError(t, db.Create(&models.BranchStock{MaterialID: env.kiyma.ID, BranchType: models.BranchMutfak, Available: 20, UnitSalePrice: decimal.NewFromFloat(30), UnitPurchasePrice: decimal.NewFromFloat(18)}).Error)
	require.NoError(t, db.Create(&models.BranchStock{MaterialID: env.yogurt.ID, BranchType: models.BranchKantin, Available: 10, UnitSalePrice: decimal.NewFromFloat(8), UnitPurchasePrice: decimal.NewFromFloat(5)}).Error)

	return env
}

func (env *testEnv) available(t *testing.T, materialID uint) int {
	var buckets []models.BranchStock
	require.NoError(t, env.db.Where("material_id = ?", materialID).Find(&buckets).Error)
	total := 0
	for i := range buckets {
		total += buckets[i].Available
	}
	return total
}

func (env *testEnv) historyCount(t *testing.T) int64 {
	var count int64
	require.NoError(t, env.db.Model(&models.SoldHistory{}).Count(&count).Error)
	return count
}

func TestUpsertTableOrder_DeductsPerRecipe(t *testing.T) {
	env := setupEnv(t)

	order, err := env.svc.UpsertTableOrder(5, []LineInput{
		{MenuItemID: env.kofte.ID, Quantity: 3}, // 3 × 2 kıyma
		{MenuItemID: env.ayran.ID, Quantity: 2}, // 2 × 1 yoğurt
	}, "", env.cashier.ID)
	require.NoError(t, err)

	assert.Equal(t, 14, env.available(t, env.kiyma.ID)) // 20 - 6
	assert.Equal(t, 8, env.available(t, env.yogurt.ID)) // 10 - 2
	require.Len(t, order.Items, 2)

	// vergi = ara toplam × 0.14 = (3×150 + 2×25) × 0.14 = 70.00
	assert.Equal(t, "500.00", order.Subtotal().StringFixed(2))
	assert.Equal(t, "70.00", order.Tax.StringFixed(2))
}

func TestUpsertTableOrder_NoOpIsIdempotent(t *testing.T) {
	env := setupEnv(t)
	lines := []LineInput{{MenuItemID: env.kofte.ID, Quantity: 2}}

	_, err := env.svc.UpsertTableOrder(3, lines, "", env.cashier.ID)
	require.NoError(t, err)
	stockAfterFirst := env.available(t, env.kiyma.ID)
	historyAfterFirst := env.historyCount(t)

	// aynı küme ikinci kez: hiçbir stok hareketi olmamalı
	_, err = env.svc.UpsertTableOrder(3, lines, "", env.cashier.ID)
	require.NoError(t, err)

	assert.Equal(t, stockAfterFirst, env.available(t, env.kiyma.ID))
	assert.Equal(t, historyAfterFirst, env.historyCount(t))
}

func TestUpsertTableOrder_DeltaOnQuantityChange(t *testing.T) {
	env := setupEnv(t)

	_, err := env.svc.UpsertTableOrder(1, []LineInput{{MenuItemID: env.kofte.ID, Quantity: 4}}, "", env.cashier.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, env.available(t, env.kiyma.ID)) // 20 - 8

	// 4 → 1: 3 porsiyon × 2 = 6 kıyma iade
	_, err = env.svc.UpsertTableOrder(1, []LineInput{{MenuItemID: env.kofte.ID, Quantity: 1}}, "", env.cashier.ID)
	require.NoError(t, err)
	assert.Equal(t, 18, env.available(t, env.kiyma.ID))

	// 1 → 5: 4 porsiyon × 2 = 8 kıyma düşer
	_, err = env.svc.UpsertTableOrder(1, []LineInput{{MenuItemID: env.kofte.ID, Quantity: 5}}, "", env.cashier.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, env.available(t, env.kiyma.ID))
}

func TestUpsertTableOrder_RemovedLineFullyRestored(t *testing.T) {
	env := setupEnv(t)

	_, err := env.svc.UpsertTableOrder(2, []LineInput{
		{MenuItemID: env.kofte.ID, Quantity: 2},
		{MenuItemID: env.ayran.ID, Quantity: 3},
	}, "", env.cashier.ID)
	require.NoError(t, err)

	// ayran satırı kaldırılır: yoğurt tamamen geri gelir
	order, err := env.svc.UpsertTableOrder(2, []LineInput{
		{MenuItemID: env.kofte.ID, Quantity: 2},
	}, "", env.cashier.ID)
	require.NoError(t, err)

	assert.Equal(t, 10, env.available(t, env.yogurt.ID))
	require.Len(t, order.Items, 1)
	assert.Equal(t, env.kofte.ID, order.Items[0].MenuItemID)

	var historyRows []models.SoldHistory
	require.NoError(t, env.db.Where("material_id = ?", env.yogurt.ID).Find(&historyRows).Error)
	assert.Empty(t, historyRows)
}

func TestUpsertTableOrder_ZeroQuantityRemovesLine(t *testing.T) {
	env := setupEnv(t)

	_, err := env.svc.UpsertTableOrder(9, []LineInput{{MenuItemID: env.ayran.ID, Quantity: 2}}, "", env.cashier.ID)
	require.NoError(t, err)

	order, err := env.svc.UpsertTableOrder(9, []LineInput{{MenuItemID: env.ayran.ID, Quantity: 0}}, "", env.cashier.ID)
	require.NoError(t, err)

	assert.Empty(t, order.Items)
	assert.Equal(t, 10, env.available(t, env.yogurt.ID))
}

func TestUpsertTableOrder_InsufficientStockRollsBackEverything(t *testing.T) {
	env := setupEnv(t)

	_, err := env.svc.UpsertTableOrder(7, []LineInput{{MenuItemID: env.kofte.ID, Quantity: 2}}, "", env.cashier.ID)
	require.NoError(t, err)

	// 20 kıyma stoğuna 11 porsiyon = 22 kıyma gerekir; tüm değişiklik geri alınır
	_, err = env.svc.UpsertTableOrder(7, []LineInput{
		{MenuItemID: env.kofte.ID, Quantity: 11},
		{MenuItemID: env.ayran.ID, Quantity: 1},
	}, "", env.cashier.ID)

	var insufficient *ledger.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, env.kiyma.ID, insufficient.MaterialID)

	// sipariş eski haliyle kalır, ayran satırı da eklenmemiştir
	order, err := env.svc.OpenTableOrder(7)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, 16, env.available(t, env.kiyma.ID))
	assert.Equal(t, 10, env.available(t, env.yogurt.ID))
}

func TestRecipelessItemDoesNotTouchStock(t *testing.T) {
	env := setupEnv(t)

	_, err := env.svc.UpsertTableOrder(4, []LineInput{{MenuItemID: env.ekstra.ID, Quantity: 3}}, "", env.cashier.ID)
	require.NoError(t, err)

	assert.Equal(t, 20, env.available(t, env.kiyma.ID))
	assert.Equal(t, int64(0), env.historyCount(t))
}

func TestEdit_PaidOrderRejected(t *testing.T) {
	env := setupEnv(t)

	order, err := env.svc.UpsertTableOrder(6, []LineInput{{MenuItemID: env.kofte.ID, Quantity: 1}}, "", env.cashier.ID)
	require.NoError(t, err)

	_, err = env.svc.Pay(order.ID, models.PaymentNakit)
	require.NoError(t, err)

	_, err = env.svc.Edit(order.ID, []LineInput{{MenuItemID: env.kofte.ID, Quantity: 5}})
	assert.ErrorIs(t, err, ErrOrderNotEditable)

	err = env.svc.Delete(order.ID)
	assert.ErrorIs(t, err, ErrOrderNotEditable)

	// stok dokunulmamış kalır
	assert.Equal(t, 18, env.available(t, env.kiyma.ID))
}

func TestPay_TwiceRejected(t *testing.T) {
	env := setupEnv(t)

	order, err := env.svc.UpsertTableOrder(8, []LineInput{{MenuItemID: env.ayran.ID, Quantity: 1}}, "", env.cashier.ID)
	require.NoError(t, err)

	_, err = env.svc.Pay(order.ID, models.PaymentKart)
	require.NoError(t, err)

	_, err = env.svc.Pay(order.ID, models.PaymentNakit)
	assert.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestDelete_RestoresAllLines(t *testing.T) {
	env := setupEnv(t)

	order, err := env.svc.UpsertTableOrder(10, []LineInput{
		{MenuItemID: env.kofte.ID, Quantity: 3},
		{MenuItemID: env.ayran.ID, Quantity: 4},
	}, "", env.cashier.ID)
	require.NoError(t, err)

	require.NoError(t, env.svc.Delete(order.ID))

	assert.Equal(t, 20, env.available(t, env.kiyma.ID))
	assert.Equal(t, 10, env.available(t, env.yogurt.ID))
	assert.Equal(t, int64(0), env.historyCount(t))

	_, err = env.svc.Get(order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	var itemCount int64
	require.NoError(t, env.db.Model(&models.OrderItem{}).Count(&itemCount).Error)
	assert.Equal(t, int64(0), itemCount)
}

func TestKurumsalOrder_DiscountFromAccountRate(t *testing.T) {
	env := setupEnv(t)

	account := models.CorporateAccount{Name: "Belediye", DiscountRate: decimal.NewFromFloat(0.20)}
	require.NoError(t, env.db.Create(&account).Error)

	order, err := env.svc.CreateKurumsalOrder([]LineInput{
		{MenuItemID: env.kofte.ID, Quantity: 2}, // 300.00
	}, account.ID, env.cashier.ID)
	require.NoError(t, err)

	assert.Equal(t, "300.00", order.Subtotal().StringFixed(2))
	assert.Equal(t, "60.00", order.Discount.StringFixed(2))
	assert.Equal(t, "0.00", order.Tax.StringFixed(2))
	assert.Equal(t, "240.00", order.Total().StringFixed(2))

	assert.Equal(t, 16, env.available(t, env.kiyma.ID))
}

func TestCreatePaketOrder_InsufficientStockCreatesNothing(t *testing.T) {
	env := setupEnv(t)

	_, err := env.svc.CreatePaketOrder([]LineInput{
		{MenuItemID: env.ayran.ID, Quantity: 11}, // stok 10
	}, "", env.cashier.ID)

	var insufficient *ledger.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 11, insufficient.Required)
	assert.Equal(t, 10, insufficient.Available)

	var orderCount int64
	require.NoError(t, env.db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Equal(t, int64(0), orderCount)
	assert.Equal(t, 10, env.available(t, env.yogurt.ID))
}

func TestUnknownMenuItemRejected(t *testing.T) {
	env := setupEnv(t)

	_, err := env.svc.UpsertTableOrder(11, []LineInput{{MenuItemID: 9999, Quantity: 1}}, "", env.cashier.ID)
	assert.ErrorIs(t, err, ErrMenuItemNotFound)

	// sipariş açılmış olsa bile satır/stok hareketi kalmaz
	assert.Equal(t, 20, env.available(t, env.kiyma.ID))
	var itemCount int64
	require.NoError(t, env.db.Model(&models.OrderItem{}).Count(&itemCount).Error)
	assert.Equal(t, int64(0), itemCount)
}
