package inventory

import (
	"context"
	"sync"
)

// MemLedger is a mutex-guarded in-memory ledger. The test suite runs the
// lifecycle engine against it; it also serves as a standalone ledger for
// single-process deployments.
type MemLedger struct {
	mu    sync.Mutex
	stock map[ItemRef]int
}

func NewMemLedger() *MemLedger {
	return &MemLedger{stock: make(map[ItemRef]int)}
}

// Set seeds a pool's counter, replacing any previous value.
func (l *MemLedger) Set(ref ItemRef, qty int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stock[ref] = qty
}

// Stock returns the current counter (okuma amaçlı; yetkili kontrol TryDecrement'tedir).
func (l *MemLedger) Stock(ref ItemRef) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stock[ref]
}

func (l *MemLedger) TryDecrement(ctx context.Context, ref ItemRef, qty int) error {
	if qty < 1 {
		qty = 1
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	have, ok := l.stock[ref]
	if !ok || have < qty {
		return &InsufficientStockError{Ref: ref, Requested: qty}
	}
	l.stock[ref] = have - qty
	return nil
}

func (l *MemLedger) Increment(ctx context.Context, ref ItemRef, qty int) error {
	if qty < 1 {
		qty = 1
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stock[ref] += qty
	return nil
}
