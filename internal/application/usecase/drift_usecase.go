// internal/application/usecase/drift_usecase.go
package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"luminaire/internal/application/store"
	cartdom "luminaire/internal/domain/cart"
	custdom "luminaire/internal/domain/customer"
	"luminaire/internal/platform/metrics"
)

var (
	ErrDriftInvalidArgument = errors.New("drift_usecase: invalid argument")
)

// DriftOptions controls one resolution pass.
type DriftOptions struct {
	// Force resolves even for pristine sessions (no sign a commerce
	// session ever existed locally).
	Force bool

	// WaitForCart engages the UI-blocking indicator for the duration of
	// the fetch. Release is guaranteed on every exit path.
	WaitForCart bool

	// Delay postpones resolution, damping the thundering herd of
	// resolution calls right at page load.
	Delay time.Duration
}

// DriftUsecase reconciles the local session cache against the remote
// commerce session: another tab, a server-side session expiry or direct
// navigation may have changed remote truth without a local mutation.
type DriftUsecase struct {
	store   *store.CartStore
	cache   cartdom.SectionCache
	blocker UIBlocker
	sleeper Sleeper
	metrics *metrics.Set

	sections []string
}

func NewDriftUsecase(st *store.CartStore, cache cartdom.SectionCache, blocker UIBlocker, m *metrics.Set) (*DriftUsecase, error) {
	if st == nil || cache == nil {
		return nil, ErrDriftInvalidArgument
	}
	if blocker == nil {
		blocker = NopBlocker()
	}
	return &DriftUsecase{
		store:    st,
		cache:    cache,
		blocker:  blocker,
		sleeper:  systemSleeper{},
		metrics:  m,
		sections: []string{cartdom.SectionCart, cartdom.SectionCustomer, cartdom.SectionSideBySide},
	}, nil
}

// NewDriftUsecaseWithSleeper is useful for tests.
func NewDriftUsecaseWithSleeper(st *store.CartStore, cache cartdom.SectionCache, blocker UIBlocker, m *metrics.Set, sleeper Sleeper) (*DriftUsecase, error) {
	uc, err := NewDriftUsecase(st, cache, blocker, m)
	if err != nil {
		return nil, err
	}
	if sleeper != nil {
		uc.sleeper = sleeper
	}
	return uc, nil
}

// ResolveDrift pulls remote truth into the local cache and notifies
// subscribers.
//
// Pristine sessions exit immediately with zero gateway calls unless
// forced. Fetch failures are not retried: the previous cache contents
// stay intact and the blocking indicator is still released.
func (uc *DriftUsecase) ResolveDrift(ctx context.Context, opts DriftOptions) error {
	if opts.Delay > 0 {
		if err := uc.sleeper.Sleep(ctx, opts.Delay); err != nil {
			return err
		}
	}

	if uc.cache.Pristine(ctx) && !opts.Force {
		uc.metrics.DriftSkippedPristine()
		return nil
	}

	release := func() {}
	if opts.WaitForCart {
		release = uc.blocker.Engage()
	}
	defer release()

	if err := uc.cache.InvalidateAndRefetchSections(ctx, uc.sections); err != nil {
		log.Printf("[drift_usecase] section refresh failed, keeping cached state: %v", err)
		return err
	}

	loggedIn := uc.loggedInFromCache(ctx)
	previous, _ := uc.cache.ReadFlag(ctx, cartdom.FlagLoggedIn)
	if err := uc.cache.WriteFlag(ctx, cartdom.FlagLoggedIn, loggedIn); err != nil {
		log.Printf("[drift_usecase] failed to persist login flag: %v", err)
	}

	uc.store.PublishAuthChanged(ctx, loggedIn)

	// Anonymous carts are not reliably shared with authenticated
	// sessions: a logged-out transition orphans the cached cart.
	if previous && !loggedIn {
		uc.store.ResetCart()
	}

	uc.store.NotifySubscribers(ctx)
	uc.metrics.DriftResolved()
	return nil
}

// UpdateCartFromCache refreshes subscribers from the local cache alone,
// with no gateway calls: login transitions are detected against the
// persisted flag and the cart display follows whatever is cached.
func (uc *DriftUsecase) UpdateCartFromCache(ctx context.Context, opts DriftOptions) {
	release := func() {}
	if opts.WaitForCart {
		release = uc.blocker.Engage()
	}
	defer release()

	previousLogin, _ := uc.cache.ReadFlag(ctx, cartdom.FlagLoggedIn)
	registered := uc.loggedInFromCache(ctx)

	if _, err := uc.cache.ReadSection(ctx, cartdom.SectionCart); err != nil {
		// No cart data cached: the default empty cart will display.
		return
	}

	if registered {
		if err := uc.cache.WriteFlag(ctx, cartdom.FlagLoggedIn, true); err != nil {
			log.Printf("[drift_usecase] failed to persist login flag: %v", err)
		}
	} else {
		if previousLogin {
			uc.store.ResetCart()
		}
		if err := uc.cache.WriteFlag(ctx, cartdom.FlagLoggedIn, false); err != nil {
			log.Printf("[drift_usecase] failed to persist login flag: %v", err)
		}
	}

	uc.store.NotifySubscribers(ctx)
}

func (uc *DriftUsecase) loggedInFromCache(ctx context.Context) bool {
	raw, err := uc.cache.ReadSection(ctx, cartdom.SectionCustomer)
	if err != nil {
		return false
	}
	section, err := custdom.DecodeSection(raw)
	if err != nil {
		log.Printf("[drift_usecase] malformed customer section: %v", err)
		return false
	}
	return section.LoggedIn()
}
