package orders

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// numberPrefix + 11 haneli sayı: zaman tabanlı gövde + rastgele kuyruk.
// İnsan okunur, tahmin edilmesi misafir e-postası olmadan işe yaramaz.
const numberPrefix = "DF"

// newOrderNumber builds a candidate order number. Uniqueness is enforced by
// the caller's collision check plus the unique index on orders.order_number.
func newOrderNumber(now time.Time) string {
	body := now.UnixMilli() % 1_000_000_000 // 9 hane
	tail := randomDigits(2)
	return fmt.Sprintf("%s%09d%s", numberPrefix, body, tail)
}

func randomDigits(n int) string {
	out := make([]byte, n)
	for i := range out {
		v, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			out[i] = '0'
			continue
		}
		out[i] = byte('0' + v.Int64())
	}
	return string(out)
}

// generateNumber retries until an unused number is found. Collisions are
// only possible for orders created in the same millisecond.
func generateNumber(ctx context.Context, store Store, now time.Time) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		num := newOrderNumber(now)
		exists, err := store.NumberExists(ctx, num)
		if err != nil {
			return "", err
		}
		if !exists {
			return num, nil
		}
	}
	// son çare: tamamen rastgele gövde
	num := numberPrefix + randomDigits(11)
	exists, err := store.NumberExists(ctx, num)
	if err != nil {
		return "", err
	}
	if exists {
		return "", fmt.Errorf("order number space exhausted")
	}
	return num, nil
}
