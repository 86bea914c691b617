package inventory

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// GormLedger mutates stock with single-statement conditional updates so two
// concurrent orders can never both take the last unit.
type GormLedger struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewGormLedger(db *gorm.DB, logger *slog.Logger) *GormLedger {
	if logger == nil {
		logger = slog.Default()
	}
	return &GormLedger{db: db, logger: logger}
}

func (l *GormLedger) TryDecrement(ctx context.Context, ref ItemRef, qty int) error {
	if qty < 1 {
		qty = 1
	}
	return withRetry(ctx, 3, func() error {
		res := l.update(ctx, ref).
			Where("stock >= ?", qty).
			UpdateColumn("stock", gorm.Expr("stock - ?", qty))
		if res.Error != nil {
			return res.Error
		}
		// 0 satır: ya ref yok ya da stok yetersiz — ikisi de satılamaz demektir.
		if res.RowsAffected == 0 {
			return &InsufficientStockError{Ref: ref, Requested: qty}
		}
		return nil
	})
}

func (l *GormLedger) Increment(ctx context.Context, ref ItemRef, qty int) error {
	if qty < 1 {
		qty = 1
	}
	return withRetry(ctx, 3, func() error {
		res := l.update(ctx, ref).
			UpdateColumn("stock", gorm.Expr("stock + ?", qty))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			l.logger.Warn("inventory.increment_missing_row",
				slog.String("ref", ref.String()),
				slog.Int("qty", qty),
			)
		}
		return nil
	})
}

func (l *GormLedger) update(ctx context.Context, ref ItemRef) *gorm.DB {
	if ref.VariantID != "" {
		return l.db.WithContext(ctx).
			Table("product_variants").
			Where("id = ?", ref.VariantID)
	}
	return l.db.WithContext(ctx).
		Table("products").
		Where("id = ?", ref.ProductID)
}

// --- retry helpers (deadlock/lock timeout) ---

func withRetry(ctx context.Context, attempts int, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if isRetryableMySQLError(err) && i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(50*(i+1)) * time.Millisecond):
			}
			continue
		}
		return err
	}
	return lastErr
}

func isRetryableMySQLError(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		// 1213: Deadlock found; 1205: Lock wait timeout
		return me.Number == 1213 || me.Number == 1205
	}
	return false
}
