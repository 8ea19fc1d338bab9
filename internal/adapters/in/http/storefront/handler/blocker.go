// internal/adapters/in/http/storefront/handler/blocker.go
package storefrontHandler

import (
	"sync"
	"sync/atomic"

	"luminaire/internal/application/usecase"
)

// BusyIndicator is the wait-for-cart affordance over HTTP: engaged while
// any cart call is in flight so UI fragments can disable cart
// interaction. Nested engagements stack; the indicator clears when the
// last one releases.
type BusyIndicator struct {
	inflight int64
}

func NewBusyIndicator() *BusyIndicator { return &BusyIndicator{} }

// Engage increments the in-flight count and returns an idempotent
// release.
func (b *BusyIndicator) Engage() func() {
	atomic.AddInt64(&b.inflight, 1)
	var once sync.Once
	return func() {
		once.Do(func() { atomic.AddInt64(&b.inflight, -1) })
	}
}

// Busy reports whether any cart call is currently in flight.
func (b *BusyIndicator) Busy() bool {
	return atomic.LoadInt64(&b.inflight) > 0
}

var _ usecase.UIBlocker = (*BusyIndicator)(nil)
