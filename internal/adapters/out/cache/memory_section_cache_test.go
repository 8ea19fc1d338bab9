// internal/adapters/out/cache/memory_section_cache_test.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdom "luminaire/internal/domain/cart"
)

type fetcherFunc func(ctx context.Context, names []string) (map[string]json.RawMessage, error)

func (f fetcherFunc) FetchSections(ctx context.Context, names []string) (map[string]json.RawMessage, error) {
	return f(ctx, names)
}

func TestMemorySectionCache(t *testing.T) {
	ctx := context.Background()

	t.Run("missing section", func(t *testing.T) {
		c, err := NewMemorySectionCache(fetcherFunc(func(context.Context, []string) (map[string]json.RawMessage, error) {
			return nil, nil
		}))
		require.NoError(t, err)

		_, err = c.ReadSection(ctx, cartdom.SectionCart)
		assert.ErrorIs(t, err, cartdom.ErrSectionMissing)
		assert.True(t, c.Pristine(ctx))
	})

	t.Run("refetch stores fetched payloads and drops absent ones", func(t *testing.T) {
		payloads := map[string]json.RawMessage{
			cartdom.SectionCart: json.RawMessage(`{"id":"cart-1"}`),
		}
		c, err := NewMemorySectionCache(fetcherFunc(func(_ context.Context, names []string) (map[string]json.RawMessage, error) {
			return payloads, nil
		}))
		require.NoError(t, err)

		require.NoError(t, c.InvalidateAndRefetchSections(ctx, []string{cartdom.SectionCart, cartdom.SectionCustomer}))

		raw, err := c.ReadSection(ctx, cartdom.SectionCart)
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"cart-1"}`, string(raw))

		_, err = c.ReadSection(ctx, cartdom.SectionCustomer)
		assert.ErrorIs(t, err, cartdom.ErrSectionMissing)
		assert.False(t, c.Pristine(ctx))

		// A section that disappears remotely is dropped locally too.
		delete(payloads, cartdom.SectionCart)
		require.NoError(t, c.InvalidateAndRefetchSections(ctx, []string{cartdom.SectionCart}))
		_, err = c.ReadSection(ctx, cartdom.SectionCart)
		assert.ErrorIs(t, err, cartdom.ErrSectionMissing)
	})

	t.Run("fetch failure leaves previous contents intact", func(t *testing.T) {
		healthy := true
		c, err := NewMemorySectionCache(fetcherFunc(func(context.Context, []string) (map[string]json.RawMessage, error) {
			if !healthy {
				return nil, errors.New("backend down")
			}
			return map[string]json.RawMessage{cartdom.SectionCart: json.RawMessage(`{"id":"cart-1"}`)}, nil
		}))
		require.NoError(t, err)

		require.NoError(t, c.InvalidateAndRefetchSections(ctx, []string{cartdom.SectionCart}))
		healthy = false
		require.Error(t, c.InvalidateAndRefetchSections(ctx, []string{cartdom.SectionCart}))

		raw, err := c.ReadSection(ctx, cartdom.SectionCart)
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"cart-1"}`, string(raw))
	})

	t.Run("flags", func(t *testing.T) {
		c, err := NewMemorySectionCache(fetcherFunc(func(context.Context, []string) (map[string]json.RawMessage, error) {
			return nil, nil
		}))
		require.NoError(t, err)

		v, err := c.ReadFlag(ctx, cartdom.FlagLoggedIn)
		require.NoError(t, err)
		assert.False(t, v)

		require.NoError(t, c.WriteFlag(ctx, cartdom.FlagLoggedIn, true))
		v, err = c.ReadFlag(ctx, cartdom.FlagLoggedIn)
		require.NoError(t, err)
		assert.True(t, v)
		assert.False(t, c.Pristine(ctx))
	})
}

func TestMemoryIdentityRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("absent session", func(t *testing.T) {
		r := NewMemoryIdentityRepository()
		id, err := r.Get(ctx, "session-1")
		require.NoError(t, err)
		assert.Equal(t, "", id)
	})

	t.Run("put then get", func(t *testing.T) {
		r := NewMemoryIdentityRepository()
		require.NoError(t, r.Put(ctx, "session-1", "cart-1", 0))

		id, err := r.Get(ctx, "session-1")
		require.NoError(t, err)
		assert.Equal(t, "cart-1", id)
	})

	t.Run("expired record reads as absent", func(t *testing.T) {
		r := NewMemoryIdentityRepository()
		require.NoError(t, r.Put(ctx, "session-1", "cart-1", time.Minute))

		r.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
		id, err := r.Get(ctx, "session-1")
		require.NoError(t, err)
		assert.Equal(t, "", id)
	})

	t.Run("delete", func(t *testing.T) {
		r := NewMemoryIdentityRepository()
		require.NoError(t, r.Put(ctx, "session-1", "cart-1", 0))
		require.NoError(t, r.Delete(ctx, "session-1"))

		id, err := r.Get(ctx, "session-1")
		require.NoError(t, err)
		assert.Equal(t, "", id)
	})
}
