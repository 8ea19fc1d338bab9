// internal/application/usecase/ports.go
package usecase

import (
	"context"
	"time"

	cartdom "luminaire/internal/domain/cart"
)

// UIBlocker is the "wait for cart" affordance: engaged while a cart call is
// in flight so UI fragments can disable cart interaction, released on every
// exit path.
type UIBlocker interface {
	// Engage turns the blocking indicator on and returns the matching
	// release func. Release must be idempotent.
	Engage() (release func())
}

type nopBlocker struct{}

func (nopBlocker) Engage() func() { return func() {} }

// NopBlocker is used when no UI surface is wired.
func NopBlocker() UIBlocker { return nopBlocker{} }

// AnalyticsEmitter is the fire-and-forget data layer collaborator.
// Implementations swallow their own failures; emission must never abort or
// roll back a cart mutation.
type AnalyticsEmitter interface {
	AddToCart(ctx context.Context, snap cartdom.Snapshot)
	RemoveCartItem(ctx context.Context, itemID string)

	// UpdateCartItem reports a quantity change. delta > 0 is an addition
	// of that many units, delta < 0 a removal.
	UpdateCartItem(ctx context.Context, itemID string, delta int)
}

// Sleeper abstracts the deliberate delay before drift resolution (used to
// avoid a thundering herd of resolution calls right at page load).
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type systemSleeper struct{}

func (systemSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
