package ledger

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// InsufficientStockError: İstenen miktar, malzemenin tüm kovalarındaki
// toplam stoktan fazla. Hiçbir düşüm yapılmadan döner.
type InsufficientStockError struct {
	MaterialID   uint
	MaterialName string
	Required     int
	Available    int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stok yetersiz: %s (gerekli %d, mevcut %d)", e.MaterialName, e.Required, e.Available)
}

// ErrBusy: Kilit çakışması; çağıran işlemin tamamını tekrar denemeli
var ErrBusy = errors.New("kayıt başka bir işlem tarafından kullanılıyor, tekrar deneyin")

// IsRetryable: Postgres kilit/deadlock/zaman aşımı hatası mı
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03": // serialization_failure, deadlock_detected, lock_not_available
			return true
		}
	}
	return errors.Is(err, ErrBusy)
}
