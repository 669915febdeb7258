package ledger

import (
	"errors"

	"lokanta-backend/internal/logger"
	"lokanta-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service: Stok kovaları + satış geçmişi + giriş defteri üzerindeki tüm
// hareketlerin tek giriş noktası. Deduct/Restore çağrıları mutlaka bir
// transaction içinde yapılır (WithinTx veya çağıranın kendi tx'i).
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// WithinTx: Tek mantıksal işlemin tüm yazmalarını tek transaction'da toplar;
// fn hata dönerse hepsi geri alınır.
func (s *Service) WithinTx(fn func(tx *gorm.DB) error) error {
	return s.db.Transaction(fn)
}

// LockForUpdate: Satır kilidi (SELECT ... FOR UPDATE).
// SQLite FOR UPDATE desteklemez; testlerde kilitsiz çalışır.
func LockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// bucketsForUpdate: Malzemenin tüm kovaları, kararlı sırada (id artan),
// satır kilidiyle.
func bucketsForUpdate(tx *gorm.DB, materialID uint) ([]models.BranchStock, error) {
	var buckets []models.BranchStock
	err := LockForUpdate(tx).
		Where("material_id = ?", materialID).
		Order("id ASC").
		Find(&buckets).Error
	return buckets, err
}

// TotalAvailable: Malzemenin tüm kovalarındaki toplam stok
func (s *Service) TotalAvailable(tx *gorm.DB, materialID uint) (int, error) {
	var buckets []models.BranchStock
	if err := tx.Where("material_id = ?", materialID).Find(&buckets).Error; err != nil {
		return 0, err
	}
	total := 0
	for i := range buckets {
		total += buckets[i].Available
	}
	return total, nil
}

// Deduct: required adedi malzemenin kovalarından sırayla düşer.
// Önce toplam kontrol edilir: stok yetmiyorsa hiçbir kova değişmeden
// InsufficientStockError döner. Düşüm yapılan her kova için o kovanın
// fiyatlarıyla bir SoldHistory satırı eklenir; düşümlerin toplamı
// her zaman tam olarak required'dır.
func (s *Service) Deduct(tx *gorm.DB, materialID uint, required int) error {
	if required <= 0 {
		return nil
	}

	buckets, err := bucketsForUpdate(tx, materialID)
	if err != nil {
		return err
	}

	total := 0
	for i := range buckets {
		total += buckets[i].Available
	}
	if total < required {
		var material models.Material
		name := ""
		if err := tx.First(&material, materialID).Error; err == nil {
			name = material.Name
		}
		return &InsufficientStockError{
			MaterialID:   materialID,
			MaterialName: name,
			Required:     required,
			Available:    total,
		}
	}

	remaining := required
	for i := range buckets {
		if remaining == 0 {
			break
		}
		bucket := &buckets[i]

		deducted := min(bucket.Available, remaining)
		if deducted == 0 {
			continue
		}
		bucket.Available -= deducted
		remaining -= deducted

		if err := tx.Model(&models.BranchStock{}).
			Where("id = ?", bucket.ID).
			Update("available", bucket.Available).Error; err != nil {
			return err
		}

		entry := models.SoldHistory{
			MaterialID:        materialID,
			BranchType:        bucket.BranchType,
			Quantity:          deducted,
			UnitSalePrice:     bucket.UnitSalePrice,
			UnitPurchasePrice: bucket.UnitPurchasePrice,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
	}

	return nil
}

// Restore: qty adedi malzemeye geri verir. İade tek kovaya (en düşük id'li)
// yapılır; düşüm birden fazla kovaya yayılmış olsa bile geri dağıtılmaz,
// hangi kovadan düşüldüğü geçmişte tutulmaz. Satış geçmişi en yeni satırdan
// geriye doğru azaltılır, sıfırlanan satırlar silinir. Geçmiş iade
// miktarını karşılamazsa hata dönülmez, uyarı loglanır: doğru çağıranlar
// yalnızca daha önce düştükleri miktarı iade eder.
func (s *Service) Restore(tx *gorm.DB, materialID uint, qty int) error {
	if qty <= 0 {
		return nil
	}

	var bucket models.BranchStock
	err := LockForUpdate(tx).
		Where("material_id = ?", materialID).
		Order("id ASC").
		First(&bucket).Error
	switch {
	case err == nil:
		bucket.Available += qty
		if err := tx.Model(&models.BranchStock{}).
			Where("id = ?", bucket.ID).
			Update("available", bucket.Available).Error; err != nil {
			return err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// iade hedefi yok; yine de geçmiş geri sarılır
	default:
		return err
	}

	var entries []models.SoldHistory
	if err := LockForUpdate(tx).
		Where("material_id = ?", materialID).
		Order("id DESC").
		Find(&entries).Error; err != nil {
		return err
	}

	remaining := qty
	for i := range entries {
		if remaining == 0 {
			break
		}
		entry := &entries[i]

		deducted := min(entry.Quantity, remaining)
		entry.Quantity -= deducted
		remaining -= deducted

		if entry.Quantity <= 0 {
			if err := tx.Delete(&models.SoldHistory{}, entry.ID).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Model(&models.SoldHistory{}).
				Where("id = ?", entry.ID).
				Update("quantity", entry.Quantity).Error; err != nil {
				return err
			}
		}
	}

	if remaining > 0 {
		logger.L().Warn("satış geçmişi iade miktarını karşılamadı",
			zap.Uint("material_id", materialID),
			zap.Int("iade", qty),
			zap.Int("karşılanamayan", remaining),
		)
	}

	return nil
}
