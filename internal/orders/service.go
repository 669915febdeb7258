package orders

import (
	"errors"
	"fmt"

	"lokanta-backend/internal/ledger"
	"lokanta-backend/internal/menu"
	"lokanta-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrOrderNotEditable: ödenmiş sipariş üzerinde satır değişikliği/silme denendi
	ErrOrderNotEditable = errors.New("ödenmiş sipariş değiştirilemez")
	// ErrAlreadyPaid: ödeme ikinci kez alınmaya çalışıldı
	ErrAlreadyPaid = errors.New("sipariş zaten ödenmiş")
	// ErrOrderNotFound ...
	ErrOrderNotFound = errors.New("sipariş bulunamadı")
	// ErrMenuItemNotFound ...
	ErrMenuItemNotFound = errors.New("menü kalemi bulunamadı")
	// ErrAccountNotFound ...
	ErrAccountNotFound = errors.New("kurumsal hesap bulunamadı")
)

// KDV oranı; satır değişikliğinden sonra ara toplam üzerinden yeniden hesaplanır
var taxRate = decimal.NewFromFloat(0.14)

// LineInput: İstenen sipariş satırı. Aynı menü kalemi birden fazla gelirse
// son satır geçerlidir.
type LineInput struct {
	MenuItemID uint `json:"menuitem_id"`
	Quantity   int  `json:"quantity"`
}

// Service: Sipariş değişikliklerini stok hareketine çeviren orkestratör.
// Her çağrı tek transaction'dır: satır, kova ve geçmiş yazmalarının ya hepsi
// işlenir ya hiçbiri. Aynı siparişe eş zamanlı iki değişiklik, sipariş satırı
// kilidi üzerinden sıraya girer.
type Service struct {
	db     *gorm.DB
	ledger *ledger.Service
}

func NewService(db *gorm.DB, led *ledger.Service) *Service {
	return &Service{db: db, ledger: led}
}

// UpsertTableOrder: Masanın açık (ödenmemiş) salon siparişini istenen satır
// kümesine getirir; açık sipariş yoksa oluşturur. Satır farkları kadar stok
// düşülür/iade edilir, vergi yeniden hesaplanır.
func (s *Service) UpsertTableOrder(tableNumber int, lines []LineInput, note string, cashierID uint) (*models.Order, error) {
	var order models.Order
	err := s.ledger.WithinTx(func(tx *gorm.DB) error {
		err := ledger.LockForUpdate(tx).
			Where("order_type = ? AND table_number = ? AND is_paid = ?", models.OrderSalon, tableNumber, false).
			Order("id ASC").
			First(&order).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			order = models.Order{
				OrderType:   models.OrderSalon,
				TableNumber: &tableNumber,
				CashierID:   cashierID,
				Note:        note,
			}
			if err := tx.Create(&order).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		}

		if err := s.applyLines(tx, &order, lines); err != nil {
			return err
		}
		return s.recomputeTotals(tx, &order)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(order.ID)
}

// CreatePaketOrder: Paket sipariş tek seferde oluşturulur; stok yetmezse
// sipariş de oluşmaz.
func (s *Service) CreatePaketOrder(lines []LineInput, note string, cashierID uint) (*models.Order, error) {
	var order models.Order
	err := s.ledger.WithinTx(func(tx *gorm.DB) error {
		order = models.Order{
			OrderType: models.OrderPaket,
			CashierID: cashierID,
			Note:      note,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		if err := s.applyLines(tx, &order, lines); err != nil {
			return err
		}
		return s.recomputeTotals(tx, &order)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(order.ID)
}

// CreateKurumsalOrder: Anlaşmalı kurum siparişi; iskonto hesabın oranından,
// vergi sıfır.
func (s *Service) CreateKurumsalOrder(lines []LineInput, accountID uint, cashierID uint) (*models.Order, error) {
	var order models.Order
	err := s.ledger.WithinTx(func(tx *gorm.DB) error {
		var account models.CorporateAccount
		if err := tx.First(&account, accountID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %d", ErrAccountNotFound, accountID)
			}
			return err
		}

		order = models.Order{
			OrderType:          models.OrderKurumsal,
			CashierID:          cashierID,
			CorporateAccountID: &account.ID,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		if err := s.applyLines(tx, &order, lines); err != nil {
			return err
		}
		return s.recomputeTotals(tx, &order)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(order.ID)
}

// Edit: Var olan siparişin satır kümesini değiştirir. Ödenmiş sipariş
// değiştirilemez.
func (s *Service) Edit(orderID uint, lines []LineInput) (*models.Order, error) {
	err := s.ledger.WithinTx(func(tx *gorm.DB) error {
		order, err := s.lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.IsPaid {
			return ErrOrderNotEditable
		}
		if err := s.applyLines(tx, order, lines); err != nil {
			return err
		}
		return s.recomputeTotals(tx, order)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(orderID)
}

// Delete: Siparişin tüm satırlarını iade edip siparişi siler
func (s *Service) Delete(orderID uint) error {
	return s.ledger.WithinTx(func(tx *gorm.DB) error {
		order, err := s.lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.IsPaid {
			return ErrOrderNotEditable
		}

		var items []models.OrderItem
		if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
			return err
		}
		for i := range items {
			if err := s.restoreForMenuItem(tx, items[i].MenuItemID, items[i].Quantity); err != nil {
				return err
			}
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, order.ID).Error
	})
}

// Pay: Ödemeyi kapatır; ödenmiş sipariş artık değiştirilemez
func (s *Service) Pay(orderID uint, method models.PaymentMethod) (*models.Order, error) {
	err := s.ledger.WithinTx(func(tx *gorm.DB) error {
		order, err := s.lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.IsPaid {
			return ErrAlreadyPaid
		}
		return tx.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Updates(map[string]any{"is_paid": true, "payment_method": method}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(orderID)
}

// Get: Siparişi satırları ve menü bilgileriyle döner
func (s *Service) Get(orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.
		Preload("Items.MenuItem").
		Preload("CorporateAccount").
		First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// OpenTableOrder: Masanın açık siparişi (yoksa ErrOrderNotFound)
func (s *Service) OpenTableOrder(tableNumber int) (*models.Order, error) {
	var order models.Order
	err := s.db.
		Preload("Items.MenuItem").
		Where("order_type = ? AND table_number = ? AND is_paid = ?", models.OrderSalon, tableNumber, false).
		Order("id ASC").
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Service) lockOrder(tx *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	err := ledger.LockForUpdate(tx).First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// applyLines: Mevcut satır kümesi ile istenen küme arasındaki farkı stok
// hareketine çevirir. Net hareket her zaman satırın net adet değişimine
// eşittir; aynı kümenin ikinci kez gönderilmesi hiçbir şeyi değiştirmez.
func (s *Service) applyLines(tx *gorm.DB, order *models.Order, desired []LineInput) error {
	var oldItems []models.OrderItem
	if err := tx.Where("order_id = ?", order.ID).Find(&oldItems).Error; err != nil {
		return err
	}

	oldByMenuItem := make(map[uint]*models.OrderItem, len(oldItems))
	for i := range oldItems {
		oldByMenuItem[oldItems[i].MenuItemID] = &oldItems[i]
	}
	newQty := make(map[uint]int, len(desired))
	for _, line := range desired {
		newQty[line.MenuItemID] = line.Quantity
	}

	// 1) kaldırılan satırlar: önce tam iade, sonra satır silinir
	for menuItemID, item := range oldByMenuItem {
		if _, ok := newQty[menuItemID]; ok {
			continue
		}
		if err := s.restoreForMenuItem(tx, menuItemID, item.Quantity); err != nil {
			return err
		}
		if err := tx.Delete(&models.OrderItem{}, item.ID).Error; err != nil {
			return err
		}
	}

	// 2) değişen / eklenen satırlar
	for menuItemID, qtyNew := range newQty {
		if item, ok := oldByMenuItem[menuItemID]; ok {
			qtyOld := item.Quantity
			if qtyNew <= 0 {
				// sıfıra çekilen satır kaldırılmış sayılır
				if err := s.restoreForMenuItem(tx, menuItemID, qtyOld); err != nil {
					return err
				}
				if err := tx.Delete(&models.OrderItem{}, item.ID).Error; err != nil {
					return err
				}
				continue
			}

			if qtyNew > qtyOld {
				if err := s.deductForMenuItem(tx, menuItemID, qtyNew-qtyOld); err != nil {
					return err
				}
			} else if qtyNew < qtyOld {
				if err := s.restoreForMenuItem(tx, menuItemID, qtyOld-qtyNew); err != nil {
					return err
				}
			}
			if qtyNew != qtyOld {
				if err := tx.Model(&models.OrderItem{}).
					Where("id = ?", item.ID).
					Update("quantity", qtyNew).Error; err != nil {
					return err
				}
			}
			continue
		}

		if qtyNew <= 0 {
			continue
		}
		var menuItem models.MenuItem
		if err := tx.First(&menuItem, menuItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %d", ErrMenuItemNotFound, menuItemID)
			}
			return err
		}
		if err := s.deductForMenuItem(tx, menuItemID, qtyNew); err != nil {
			return err
		}
		item := models.OrderItem{OrderID: order.ID, MenuItemID: menuItemID, Quantity: qtyNew}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
	}

	return nil
}

func (s *Service) deductForMenuItem(tx *gorm.DB, menuItemID uint, qty int) error {
	lines, err := menu.LinesFor(tx, menuItemID)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if err := s.ledger.Deduct(tx, line.MaterialID, line.Quantity*qty); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) restoreForMenuItem(tx *gorm.DB, menuItemID uint, qty int) error {
	lines, err := menu.LinesFor(tx, menuItemID)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if err := s.ledger.Restore(tx, line.MaterialID, line.Quantity*qty); err != nil {
			return err
		}
	}
	return nil
}

// recomputeTotals: Satır değişikliğinden sonra vergi/iskonto güncellenir.
// Salon ve paket: vergi = ara toplam × %14. Kurumsal: vergi yok, iskonto
// hesabın oranından.
func (s *Service) recomputeTotals(tx *gorm.DB, order *models.Order) error {
	var items []models.OrderItem
	if err := tx.Preload("MenuItem").Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
		return err
	}
	subtotal := decimal.Zero
	for i := range items {
		subtotal = subtotal.Add(items[i].TotalPrice())
	}

	updates := map[string]any{}
	switch order.OrderType {
	case models.OrderKurumsal:
		rate := decimal.Zero
		if order.CorporateAccountID != nil {
			var account models.CorporateAccount
			if err := tx.First(&account, *order.CorporateAccountID).Error; err != nil {
				return err
			}
			rate = account.DiscountRate
		}
		updates["discount"] = subtotal.Mul(rate)
		updates["tax"] = decimal.Zero
	default:
		updates["tax"] = subtotal.Mul(taxRate)
	}

	return tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(updates).Error
}
