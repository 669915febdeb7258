package stock

import (
	"errors"
	"strings"
	"time"

	"lokanta-backend/internal/ledger"
	"lokanta-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidIntake = errors.New("geçersiz mal girişi")
	ErrInvalidDate   = errors.New("geçersiz tarih")
)

type IntakeInput struct {
	MaterialName      string
	BranchType        models.BranchType
	Quantity          int
	UnitSalePrice     decimal.Decimal
	UnitPurchasePrice decimal.Decimal
	MinimumStock      int
}

type Service struct {
	db     *gorm.DB
	ledger *ledger.Service
}

func NewService(db *gorm.DB, led *ledger.Service) *Service {
	return &Service{db: db, ledger: led}
}

// Intake: Mal girişi. Malzeme adına göre bulunur ya da açılır, kova
// güncellenir ve giriş defterine kalıcı satır eklenir. Hepsi tek
// transaction; kova fiyatları her girişte son girişin fiyatına çekilir.
func (s *Service) Intake(in IntakeInput) (*models.BranchStock, error) {
	name := strings.TrimSpace(in.MaterialName)
	if name == "" || in.Quantity <= 0 {
		return nil, ErrInvalidIntake
	}
	switch in.BranchType {
	case models.BranchMutfak, models.BranchBar, models.BranchKantin, models.BranchNargile:
	default:
		return nil, ErrInvalidIntake
	}

	var bucket models.BranchStock
	err := s.ledger.WithinTx(func(tx *gorm.DB) error {
		var material models.Material
		err := tx.Where("name = ?", name).First(&material).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			material = models.Material{Name: name}
			if err := tx.Create(&material).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		err = ledger.LockForUpdate(tx).
			Where("material_id = ? AND branch_type = ?", material.ID, in.BranchType).
			First(&bucket).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			bucket = models.BranchStock{
				MaterialID:        material.ID,
				BranchType:        in.BranchType,
				Available:         in.Quantity,
				UnitSalePrice:     in.UnitSalePrice,
				UnitPurchasePrice: in.UnitPurchasePrice,
				MinimumStock:      in.MinimumStock,
			}
			if err := tx.Create(&bucket).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			bucket.Available += in.Quantity
			bucket.UnitSalePrice = in.UnitSalePrice
			bucket.UnitPurchasePrice = in.UnitPurchasePrice
			bucket.MinimumStock = in.MinimumStock
			if err := tx.Model(&models.BranchStock{}).
				Where("id = ?", bucket.ID).
				Updates(map[string]any{
					"available":           bucket.Available,
					"unit_sale_price":     bucket.UnitSalePrice,
					"unit_purchase_price": bucket.UnitPurchasePrice,
					"minimum_stock":       bucket.MinimumStock,
				}).Error; err != nil {
				return err
			}
		}

		intake := models.StockIntake{
			MaterialID:        material.ID,
			BranchType:        in.BranchType,
			Quantity:          in.Quantity,
			Remaining:         in.Quantity,
			UnitSalePrice:     in.UnitSalePrice,
			UnitPurchasePrice: in.UnitPurchasePrice,
		}
		return tx.Create(&intake).Error
	})
	if err != nil {
		return nil, err
	}
	return &bucket, nil
}

// CurrentBuckets: Anlık stok görünümü, isteğe bağlı şube filtresiyle
func (s *Service) CurrentBuckets(branchType models.BranchType) ([]models.BranchStock, error) {
	dbq := s.db.Preload("Material").Order("material_id ASC, id ASC")
	if branchType != "" {
		dbq = dbq.Where("branch_type = ?", branchType)
	}
	var buckets []models.BranchStock
	err := dbq.Find(&buckets).Error
	return buckets, err
}

// SoldHistory: Kapanış bekleyen tüketim kayıtları, tarih filtresiyle
func (s *Service) SoldHistory(dateStr string) ([]models.SoldHistory, error) {
	dbq := s.db.Preload("Material").Order("id DESC")
	if dateStr != "" {
		day, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, ErrInvalidDate
		}
		dbq = dbq.Where("created_at >= ? AND created_at < ?", day, day.AddDate(0, 0, 1))
	}
	var entries []models.SoldHistory
	err := dbq.Limit(500).Find(&entries).Error
	return entries, err
}

// IntakeHistory: Giriş defteri, tarih filtresiyle
func (s *Service) IntakeHistory(dateStr string) ([]models.StockIntake, error) {
	dbq := s.db.Preload("Material").Order("id DESC")
	if dateStr != "" {
		day, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, ErrInvalidDate
		}
		dbq = dbq.Where("created_at >= ? AND created_at < ?", day, day.AddDate(0, 0, 1))
	}
	var intakes []models.StockIntake
	err := dbq.Limit(500).Find(&intakes).Error
	return intakes, err
}
