package closing

import (
	"fmt"
	"time"

	"lokanta-backend/internal/ledger"
	"lokanta-backend/internal/logger"
	"lokanta-backend/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// InvalidRangeError: Eksik ya da çözümlenemeyen tarih aralığı. Hiçbir
// toplam hesaplanmadan ve hiçbir şey yazılmadan reddedilir.
type InvalidRangeError struct {
	Start string
	End   string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("geçersiz tarih aralığı: %q - %q", e.Start, e.End)
}

type Service struct {
	db     *gorm.DB
	ledger *ledger.Service
}

func NewService(db *gorm.DB, led *ledger.Service) *Service {
	return &Service{db: db, ledger: led}
}

// Run: [start, end] aralığının kapanışını alır. Toplamlar hesaplanıp tek
// kayıt yazılır, aralıktaki satış geçmişi giriş defterinden eritilir ve
// tüm stok kovaları kapanış anına damgalanır. Hepsi tek transaction.
func (s *Service) Run(startStr, endStr string) (*models.ClosingReport, error) {
	if startStr == "" || endStr == "" {
		return nil, &InvalidRangeError{Start: startStr, End: endStr}
	}
	start, err := time.Parse(dateLayout, startStr)
	if err != nil {
		return nil, &InvalidRangeError{Start: startStr, End: endStr}
	}
	end, err := time.Parse(dateLayout, endStr)
	if err != nil {
		return nil, &InvalidRangeError{Start: startStr, End: endStr}
	}
	// bitiş günü dahil: [start, end+1gün)
	rangeEnd := end.AddDate(0, 0, 1)

	var report models.ClosingReport
	err = s.ledger.WithinTx(func(tx *gorm.DB) error {
		// 1) ödenen sipariş cirosu
		orderSales, err := paidOrderSales(tx, start, rangeEnd)
		if err != nil {
			return err
		}

		// 2) kapanış aralığında güncellenmiş kovaların kalan değerleri
		var buckets []models.BranchStock
		if err := tx.
			Where("updated_at >= ? AND updated_at < ?", start, rangeEnd).
			Find(&buckets).Error; err != nil {
			return err
		}
		bucketSales := decimal.Zero
		bucketPurchase := decimal.Zero
		profitFromStock := decimal.Zero
		for i := range buckets {
			bucketSales = bucketSales.Add(buckets[i].TotalSaleValue())
			bucketPurchase = bucketPurchase.Add(buckets[i].TotalPurchaseValue())
			profitFromStock = profitFromStock.Add(buckets[i].Profit())
		}

		// 3) aralıktaki tüketim kayıtları
		var history []models.SoldHistory
		if err := tx.
			Where("created_at >= ? AND created_at < ?", start, rangeEnd).
			Order("id ASC").
			Find(&history).Error; err != nil {
			return err
		}
		historyPurchase := decimal.Zero
		consumedByMaterial := map[uint]int{}
		for i := range history {
			historyPurchase = historyPurchase.Add(history[i].TotalPurchaseValue())
			consumedByMaterial[history[i].MaterialID] += history[i].Quantity
		}

		// 4) masraf ve bahşişler
		misc, tips, err := expenseTotals(tx, start, rangeEnd)
		if err != nil {
			return err
		}

		totalProfit := orderSales.Add(bucketSales).Sub(historyPurchase.Add(bucketPurchase))
		actualProfit := totalProfit.Sub(profitFromStock).Sub(misc).Add(tips)

		report = models.ClosingReport{
			StartDate:          start,
			EndDate:            end,
			TotalSalesOrders:   orderSales,
			TotalSalesStock:    bucketSales,
			TotalPurchaseStock: historyPurchase.Add(bucketPurchase),
			TotalProfit:        totalProfit,
			ProfitFromStock:    profitFromStock,
			ActualProfit:       actualProfit,
			TotalMiscExpense:   misc,
			TotalTips:          tips,
		}
		if err := tx.Create(&report).Error; err != nil {
			return err
		}

		// 5) giriş defterini erit, erittiğimiz tüketimi sil
		for materialID, consumed := range consumedByMaterial {
			if err := s.compactIntake(tx, materialID, consumed); err != nil {
				return err
			}
		}
		if len(history) > 0 {
			ids := make([]uint, 0, len(history))
			for i := range history {
				ids = append(ids, history[i].ID)
			}
			if err := tx.Delete(&models.SoldHistory{}, ids).Error; err != nil {
				return err
			}
		}

		// 6) tüm kovaları kapanış anına damgala
		return tx.Model(&models.BranchStock{}).
			Where("1 = 1").
			Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// compactIntake: Malzemenin giriş kayıtlarını eskiden yeniye eritir.
// Kalanı sıfırlanan satır silinir; tüketim girişlerden büyükse kalan kısım
// sessizce düşer ama uyarı loglanır.
func (s *Service) compactIntake(tx *gorm.DB, materialID uint, consumed int) error {
	var intakes []models.StockIntake
	if err := tx.
		Where("material_id = ?", materialID).
		Order("id ASC").
		Find(&intakes).Error; err != nil {
		return err
	}

	remaining := consumed
	for i := range intakes {
		if remaining <= 0 {
			break
		}
		drained := intakes[i].Remaining
		if drained > remaining {
			drained = remaining
		}
		remaining -= drained

		left := intakes[i].Remaining - drained
		if left <= 0 {
			if err := tx.Delete(&models.StockIntake{}, intakes[i].ID).Error; err != nil {
				return err
			}
			continue
		}
		if err := tx.Model(&models.StockIntake{}).
			Where("id = ?", intakes[i].ID).
			Update("remaining", left).Error; err != nil {
			return err
		}
	}

	if remaining > 0 {
		logger.L().Warn("giriş defteri tüketimi karşılamadı",
			zap.Uint("material_id", materialID),
			zap.Int("tuketim", consumed),
			zap.Int("karsilanamayan", remaining))
	}
	return nil
}

// List: Kapanış kayıtları, yeniden eskiye
func (s *Service) List(limit int) ([]models.ClosingReport, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var reports []models.ClosingReport
	err := s.db.Order("id DESC").Limit(limit).Find(&reports).Error
	return reports, err
}

func paidOrderSales(tx *gorm.DB, start, rangeEnd time.Time) (decimal.Decimal, error) {
	var orders []models.Order
	if err := tx.
		Preload("Items.MenuItem").
		Where("is_paid = ? AND created_at >= ? AND created_at < ?", true, start, rangeEnd).
		Find(&orders).Error; err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for i := range orders {
		total = total.Add(orders[i].Total())
	}
	return total, nil
}

func expenseTotals(tx *gorm.DB, start, rangeEnd time.Time) (misc, tips decimal.Decimal, err error) {
	misc, tips = decimal.Zero, decimal.Zero
	var expenses []models.ExtraExpense
	if err = tx.
		Where("created_at >= ? AND created_at < ?", start, rangeEnd).
		Find(&expenses).Error; err != nil {
		return
	}
	for i := range expenses {
		switch expenses[i].Category {
		case models.ExpenseBahsis:
			tips = tips.Add(expenses[i].Amount)
		default:
			misc = misc.Add(expenses[i].Amount)
		}
	}
	return
}
