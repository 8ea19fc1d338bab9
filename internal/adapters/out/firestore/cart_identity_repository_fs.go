// internal/adapters/out/firestore/cart_identity_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	cartdom "luminaire/internal/domain/cart"
)

const cartIdentityCollection = "cartIdentities"

type cartIdentityDoc struct {
	CartID    string    `firestore:"cartId"`
	ExpiresAt time.Time `firestore:"expiresAt"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

// CartIdentityRepositoryFS persists the session-to-cart binding in
// Firestore, one document per session id.
type CartIdentityRepositoryFS struct {
	client *firestore.Client
}

func NewCartIdentityRepositoryFS(client *firestore.Client) (*CartIdentityRepositoryFS, error) {
	if client == nil {
		return nil, errors.New("cart_identity_repository_fs: nil client")
	}
	return &CartIdentityRepositoryFS{client: client}, nil
}

// Get returns the cart id bound to the session, "" when the document is
// absent or expired.
func (r *CartIdentityRepositoryFS) Get(ctx context.Context, sessionID string) (string, error) {
	snap, err := r.client.Collection(cartIdentityCollection).Doc(sessionID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("cart_identity_repository_fs: get: %w", err)
	}

	var doc cartIdentityDoc
	if err := snap.DataTo(&doc); err != nil {
		return "", fmt.Errorf("cart_identity_repository_fs: decode: %w", err)
	}
	if time.Now().After(doc.ExpiresAt) {
		return "", nil
	}
	return doc.CartID, nil
}

func (r *CartIdentityRepositoryFS) Put(ctx context.Context, sessionID, cartID string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = cartdom.DefaultIdentityTTL
	}
	now := time.Now()
	doc := cartIdentityDoc{
		CartID:    cartID,
		ExpiresAt: now.Add(ttl),
		UpdatedAt: now,
	}
	if _, err := r.client.Collection(cartIdentityCollection).Doc(sessionID).Set(ctx, doc); err != nil {
		return fmt.Errorf("cart_identity_repository_fs: put: %w", err)
	}
	return nil
}

func (r *CartIdentityRepositoryFS) Delete(ctx context.Context, sessionID string) error {
	_, err := r.client.Collection(cartIdentityCollection).Doc(sessionID).Delete(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return fmt.Errorf("cart_identity_repository_fs: delete: %w", err)
	}
	return nil
}

var _ cartdom.IdentityRepository = (*CartIdentityRepositoryFS)(nil)
