// internal/adapters/out/db/cart_identity_repository_pg.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	cartdom "luminaire/internal/domain/cart"
)

// CartIdentityRepositoryPG persists the session-to-cart binding in
// Postgres.
//
// Schema:
//
//	CREATE TABLE IF NOT EXISTS cart_identities (
//	    session_id TEXT PRIMARY KEY,
//	    cart_id    TEXT NOT NULL,
//	    expires_at TIMESTAMPTZ NOT NULL
//	);
type CartIdentityRepositoryPG struct {
	db *sql.DB
}

func NewCartIdentityRepositoryPG(db *sql.DB) (*CartIdentityRepositoryPG, error) {
	if db == nil {
		return nil, errors.New("cart_identity_repository_pg: nil db")
	}
	return &CartIdentityRepositoryPG{db: db}, nil
}

// Get returns the cart id bound to the session, "" when no live binding
// exists.
func (r *CartIdentityRepositoryPG) Get(ctx context.Context, sessionID string) (string, error) {
	const q = `
		SELECT cart_id
		  FROM cart_identities
		 WHERE session_id = $1
		   AND expires_at > now()
	`
	var cartID string
	err := r.db.QueryRowContext(ctx, q, sessionID).Scan(&cartID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("cart_identity_repository_pg: get: %w", err)
	}
	return cartID, nil
}

// Put upserts the binding, refreshing the expiry.
func (r *CartIdentityRepositoryPG) Put(ctx context.Context, sessionID, cartID string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = cartdom.DefaultIdentityTTL
	}
	const q = `
		INSERT INTO cart_identities (session_id, cart_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id)
		DO UPDATE SET cart_id = EXCLUDED.cart_id, expires_at = EXCLUDED.expires_at
	`
	if _, err := r.db.ExecContext(ctx, q, sessionID, cartID, time.Now().Add(ttl)); err != nil {
		return fmt.Errorf("cart_identity_repository_pg: put: %w", err)
	}
	return nil
}

func (r *CartIdentityRepositoryPG) Delete(ctx context.Context, sessionID string) error {
	const q = `DELETE FROM cart_identities WHERE session_id = $1`
	if _, err := r.db.ExecContext(ctx, q, sessionID); err != nil {
		return fmt.Errorf("cart_identity_repository_pg: delete: %w", err)
	}
	return nil
}

var _ cartdom.IdentityRepository = (*CartIdentityRepositoryPG)(nil)
