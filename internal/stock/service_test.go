package stock

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

func setupStockDB(t *testing.T) (*gorm.DB, *Service) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Material{},
		&models.BranchStock{},
		&models.SoldHistory{},
		&models.StockIntake{},
	))
	return db, NewService(db, ledger.NewService(db))
}

func TestIntake_CreatesMaterialBucketAndLedgerRow(t *testing.T) {
	db, svc := setupStockDB(t)

	bucket, err := svc.Intake(IntakeInput{
		MaterialName:      "Portakal",
		BranchType:        models.BranchBar,
		Quantity:          12,
		UnitSalePrice:     decimal.NewFromFloat(15.00),
		UnitPurchasePrice: decimal.NewFromFloat(9.00),
		MinimumStock:      5,
	})
	require.NoError(t, err)

	assert.Equal(t, 12, bucket.Available)
	assert.Equal(t, 5, bucket.MinimumStock)

	var material models.Material
	require.NoError(t, db.Where("name = ?", "Portakal").First(&material).Error)

	var intakes []models.StockIntake
	require.NoError(t, db.Where("material_id = ?", material.ID).Find(&intakes).Error)
	require.Len(t, intakes, 1)
	assert.Equal(t, 12, intakes[0].Quantity)
	assert.Equal(t, 12, intakes[0].Remaining)
	assert.Equal(t, "9.00", intakes[0].UnitPurchasePrice.StringFixed(2))
}

func TestIntake_UpsertsBucketAndAppendsLedger(t *testing.T) {
	db, svc := setupStockDB(t)

	_, err := svc.Intake(IntakeInput{
		MaterialName: "Portakal", BranchType: models.BranchBar, Quantity: 10,
		UnitSalePrice: decimal.NewFromFloat(15.00), UnitPurchasePrice: decimal.NewFromFloat(9.00),
	})
	require.NoError(t, err)

	// ikinci giriş aynı kovaya eklenir, fiyatlar tazelenir
	bucket, err := svc.Intake(IntakeInput{
		MaterialName: "Portakal", BranchType: models.BranchBar, Quantity: 4,
		UnitSalePrice: decimal.NewFromFloat(18.00), UnitPurchasePrice: decimal.NewFromFloat(11.00),
		MinimumStock: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, 14, bucket.Available)
	assert.Equal(t, "18.00", bucket.UnitSalePrice.StringFixed(2))

	var bucketCount int64
	require.NoError(t, db.Model(&models.BranchStock{}).Count(&bucketCount).Error)
	assert.Equal(t, int64(1), bucketCount)

	// giriş defteri birleşmez, her giriş ayrı satır
	var intakeCount int64
	require.NoError(t, db.Model(&models.StockIntake{}).Count(&intakeCount).Error)
	assert.Equal(t, int64(2), intakeCount)
}

func TestIntake_SeparateBucketPerBranchType(t *testing.T) {
	db, svc := setupStockDB(t)

	_, err := svc.Intake(IntakeInput{MaterialName: "Nane", BranchType: models.BranchBar, Quantity: 3})
	require.NoError(t, err)
	_, err = svc.Intake(IntakeInput{MaterialName: "Nane", BranchType: models.BranchNargile, Quantity: 7})
	require.NoError(t, err)

	var bucketCount, materialCount int64
	require.NoError(t, db.Model(&models.BranchStock{}).Count(&bucketCount).Error)
	require.NoError(t, db.Model(&models.Material{}).Count(&materialCount).Error)
	assert.Equal(t, int64(2), bucketCount)
	assert.Equal(t, int64(1), materialCount)
}

func TestIntake_RejectsInvalidInput(t *testing.T) {
	_, svc := setupStockDB(t)

	_, err := svc.Intake(IntakeInput{MaterialName: "", BranchType: models.BranchBar, Quantity: 1})
	assert.ErrorIs(t, err, ErrInvalidIntake)

	_, err = svc.Intake(IntakeInput{MaterialName: "Nane", BranchType: models.BranchBar, Quantity: 0})
	assert.ErrorIs(t, err, ErrInvalidIntake)

	_, err = svc.Intake(IntakeInput{MaterialName: "Nane", BranchType: "depo", Quantity: 1})
	assert.ErrorIs(t, err, ErrInvalidIntake)
}

func TestCurrentBuckets_FiltersByBranch(t *testing.T) {
	_, svc := setupStockDB(t)

	_, err := svc.Intake(IntakeInput{MaterialName: "Çay", BranchType: models.BranchKantin, Quantity: 20})
	require.NoError(t, err)
	_, err = svc.Intake(IntakeInput{MaterialName: "Kömür", BranchType: models.BranchNargile, Quantity: 8})
	require.NoError(t, err)

	all, err := svc.CurrentBuckets("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	nargile, err := svc.CurrentBuckets(models.BranchNargile)
	require.NoError(t, err)
	require.Len(t, nargile, 1)
	assert.Equal(t, "Kömür", nargile[0].Material.Name)
}

func TestSoldHistory_BadDateRejected(t *testing.T) {
	_, svc := setupStockDB(t)

	_, err := svc.SoldHistory("30-08-2026")
	assert.ErrorIs(t, err, ErrInvalidDate)
}
