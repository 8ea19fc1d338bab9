// internal/domain/cart/identity_port.go
package cart

import (
	"context"
	"time"
)

// DefaultIdentityTTL matches the storefront's cart id cookie expiration.
const DefaultIdentityTTL = 30 * 24 * time.Hour

// IdentityRepository is the durable, cross-session partition holding the
// cart identity for a storefront session.
//
// Not-found policy: Get returns ("", nil) when no record exists or the
// record has expired.
type IdentityRepository interface {
	Get(ctx context.Context, sessionID string) (string, error)

	// Put stores cartID for sessionID, expiring after ttl
	// (DefaultIdentityTTL when ttl <= 0).
	Put(ctx context.Context, sessionID, cartID string, ttl time.Duration) error

	Delete(ctx context.Context, sessionID string) error
}
