// internal/domain/cart/cache_port.go
package cart

import (
	"context"
	"errors"
)

var (
	// ErrSectionMissing is returned when a section was never cached or
	// has been invalidated. Callers treat it as "no data", not a failure.
	ErrSectionMissing = errors.New("cart: section missing")
)

// Cache section names. Each is an independently fetchable partition of the
// remote session state.
const (
	SectionCart       = "cart"
	SectionCustomer   = "customer"
	SectionSideBySide = "side-by-side"
)

// FlagLoggedIn is the simple flag recording the last observed login state,
// used to detect logged-out transitions between refreshes.
const FlagLoggedIn = "loggedIn"

// SectionCache is the persistent local cache holding serialized snapshots
// of remote session state, keyed by section name. It exclusively owns the
// persisted bytes; consumers hold only transient parses.
//
// The cache is shared by every engine of the same session (the multi-tab
// case) with no locking: consistency comes from each engine re-fetching on
// its own triggers.
type SectionCache interface {
	// ReadSection returns the serialized section payload, or
	// ErrSectionMissing when absent.
	ReadSection(ctx context.Context, name string) ([]byte, error)

	// InvalidateAndRefetchSections drops and re-fetches the named
	// sections from the remote session. On fetch failure the previous
	// contents stay intact (no partial overwrite).
	InvalidateAndRefetchSections(ctx context.Context, names []string) error

	// ReadFlag returns a simple named boolean flag (false when unset).
	ReadFlag(ctx context.Context, name string) (bool, error)

	// WriteFlag persists a simple named boolean flag.
	WriteFlag(ctx context.Context, name string, value bool) error

	// Pristine reports whether there is no sign of a commerce session
	// ever having existed locally: no sections, no flags.
	Pristine(ctx context.Context) bool
}
