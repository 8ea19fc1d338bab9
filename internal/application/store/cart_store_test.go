// internal/application/store/cart_store_test.go
package store

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdom "luminaire/internal/domain/cart"
)

type fakeCache struct {
	mu       sync.Mutex
	sections map[string][]byte
	flags    map[string]bool

	// next replaces invalidated sections on refetch.
	next       map[string][]byte
	refetchErr error

	invalidations [][]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		sections: map[string][]byte{},
		flags:    map[string]bool{},
	}
}

func (c *fakeCache) ReadSection(_ context.Context, name string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.sections[name]
	if !ok {
		return nil, cartdom.ErrSectionMissing
	}
	return raw, nil
}

func (c *fakeCache) InvalidateAndRefetchSections(_ context.Context, names []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidations = append(c.invalidations, names)
	if c.refetchErr != nil {
		return c.refetchErr
	}
	for _, name := range names {
		if raw, ok := c.next[name]; ok {
			c.sections[name] = raw
		} else {
			delete(c.sections, name)
		}
	}
	return nil
}

func (c *fakeCache) ReadFlag(_ context.Context, name string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flags[name], nil
}

func (c *fakeCache) WriteFlag(_ context.Context, name string, value bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flags[name] = value
	return nil
}

func (c *fakeCache) Pristine(_ context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sections) == 0 && len(c.flags) == 0
}

type fakeGateway struct {
	loggedInCartID string
	loggedInErr    error
	queryTokenSeen string
	queryCallCount int
}

func (g *fakeGateway) QueryLoggedInCartID(_ context.Context, token string) (string, error) {
	g.queryCallCount++
	g.queryTokenSeen = token
	return g.loggedInCartID, g.loggedInErr
}

func (g *fakeGateway) CreateSessionCart(context.Context) (string, error) {
	return "", nil
}

func (g *fakeGateway) AddItemsToCart(context.Context, string, []cartdom.ItemInput) (cartdom.Snapshot, []cartdom.UserError, error) {
	return cartdom.Snapshot{}, nil, nil
}

func (g *fakeGateway) RemoveItem(context.Context, string, string) (cartdom.Snapshot, error) {
	return cartdom.Snapshot{}, nil
}

func (g *fakeGateway) UpdateItemQuantity(context.Context, string, string, int) (cartdom.Snapshot, error) {
	return cartdom.Snapshot{}, nil
}

func (g *fakeGateway) FetchCart(context.Context, string) (cartdom.Snapshot, error) {
	return cartdom.Snapshot{}, nil
}

func (g *fakeGateway) FetchSections(context.Context, []string) (map[string]json.RawMessage, error) {
	return nil, nil
}

type fakeIdentity struct {
	mu      sync.Mutex
	records map[string]string
	puts    int
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{records: map[string]string{}}
}

func (r *fakeIdentity) Get(_ context.Context, sessionID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records[sessionID], nil
}

func (r *fakeIdentity) Put(_ context.Context, sessionID, cartID string, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[sessionID] = cartID
	r.puts++
	return nil
}

func (r *fakeIdentity) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, sessionID)
	return nil
}

func mustCartJSON(t *testing.T, snap cartdom.Snapshot) []byte {
	t.Helper()
	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	return raw
}

// newTestStore takes the identity port as an interface so a nil argument
// stays a nil interface instead of a typed-nil *fakeIdentity.
func newTestStore(t *testing.T, cache *fakeCache, gw *fakeGateway, identity cartdom.IdentityRepository, tokens TokenSource) *CartStore {
	t.Helper()
	st, err := NewCartStore("session-1", cache, gw, identity, tokens)
	require.NoError(t, err)
	return st
}

func TestGetCart(t *testing.T) {
	ctx := context.Background()

	t.Run("missing section yields default snapshot", func(t *testing.T) {
		st := newTestStore(t, newFakeCache(), &fakeGateway{}, nil, nil)
		snap := st.GetCart(ctx)
		assert.Equal(t, cartdom.DefaultSnapshot(), snap)
	})

	t.Run("malformed section yields default snapshot", func(t *testing.T) {
		cache := newFakeCache()
		cache.sections[cartdom.SectionCart] = []byte(`{broken`)
		st := newTestStore(t, cache, &fakeGateway{}, nil, nil)
		assert.Equal(t, cartdom.DefaultSnapshot(), st.GetCart(ctx))
	})

	t.Run("reads are idempotent", func(t *testing.T) {
		cache := newFakeCache()
		cache.sections[cartdom.SectionCart] = mustCartJSON(t, cartdom.Snapshot{
			ID:            "cart-1",
			Items:         []cartdom.LineItem{{ItemID: "a", Quantity: 2}},
			TotalQuantity: 2,
		})
		st := newTestStore(t, cache, &fakeGateway{}, nil, nil)

		first := st.GetCart(ctx)
		second := st.GetCart(ctx)
		assert.Equal(t, first, second)
		assert.Empty(t, cache.invalidations)
	})

	t.Run("remembers the cart id from the snapshot", func(t *testing.T) {
		cache := newFakeCache()
		cache.sections[cartdom.SectionCart] = mustCartJSON(t, cartdom.Snapshot{ID: "cart-7", Items: []cartdom.LineItem{}})
		gw := &fakeGateway{}
		st := newTestStore(t, cache, gw, nil, nil)

		st.GetCart(ctx)
		assert.Equal(t, "cart-7", st.GetCartID(ctx))
		assert.Zero(t, gw.queryCallCount)
	})
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("eager delivery exactly once", func(t *testing.T) {
		st := newTestStore(t, newFakeCache(), &fakeGateway{}, nil, nil)

		var events []Event
		st.Subscribe(func(ev Event) { events = append(events, ev) })

		require.Len(t, events, 1)
		assert.Equal(t, EventUpdate, events[0].Type)
		assert.Equal(t, cartdom.DefaultSnapshot(), events[0].Cart)
	})

	t.Run("unsubscribe stops delivery", func(t *testing.T) {
		st := newTestStore(t, newFakeCache(), &fakeGateway{}, nil, nil)

		var count int
		unsubscribe := st.Subscribe(func(Event) { count++ })
		require.Equal(t, 1, count)

		unsubscribe()
		st.NotifySubscribers(ctx)
		assert.Equal(t, 1, count)
	})

	t.Run("every subscriber gets its own snapshot copy", func(t *testing.T) {
		cache := newFakeCache()
		cache.sections[cartdom.SectionCart] = mustCartJSON(t, cartdom.Snapshot{
			ID:            "cart-1",
			Items:         []cartdom.LineItem{{ItemID: "a", Quantity: 2}},
			TotalQuantity: 2,
		})
		st := newTestStore(t, cache, &fakeGateway{}, nil, nil)

		st.Subscribe(func(ev Event) {
			if len(ev.Cart.Items) > 0 {
				ev.Cart.Items[0].Quantity = 99
			}
		})
		var seen []int
		st.Subscribe(func(ev Event) {
			if len(ev.Cart.Items) > 0 {
				seen = append(seen, ev.Cart.Items[0].Quantity)
			}
		})

		st.NotifySubscribers(ctx)
		assert.Equal(t, []int{2, 2}, seen)
	})

	t.Run("subscribers are independent", func(t *testing.T) {
		st := newTestStore(t, newFakeCache(), &fakeGateway{}, nil, nil)

		var a, b int
		st.Subscribe(func(Event) { a++ })
		unsubB := st.Subscribe(func(Event) { b++ })
		unsubB()

		st.NotifySubscribers(ctx)
		assert.Equal(t, 2, a)
		assert.Equal(t, 1, b)
	})
}

func TestResetCart(t *testing.T) {
	cache := newFakeCache()
	cache.sections[cartdom.SectionCart] = mustCartJSON(t, cartdom.Snapshot{ID: "cart-1", Items: []cartdom.LineItem{}})
	st := newTestStore(t, cache, &fakeGateway{}, nil, nil)
	st.GetCart(context.Background())

	var events []Event
	st.Subscribe(func(ev Event) { events = append(events, ev) })

	st.ResetCart()

	require.Len(t, events, 2)
	assert.Equal(t, EventReset, events[1].Type)
	assert.Equal(t, cartdom.DefaultSnapshot(), events[1].Cart)

	// The remembered id is gone; no token means no recovery path.
	assert.Equal(t, "", st.GetCartID(context.Background()))
}

func TestGetCartID(t *testing.T) {
	ctx := context.Background()

	t.Run("no durable identity store and no token resolves empty", func(t *testing.T) {
		gw := &fakeGateway{}
		st := newTestStore(t, newFakeCache(), gw, nil, nil)

		assert.Equal(t, "", st.GetCartID(ctx))
		assert.Zero(t, gw.queryCallCount)
	})

	t.Run("durable identity record wins over gateway", func(t *testing.T) {
		id := newFakeIdentity()
		id.records["session-1"] = "cart-stored"
		gw := &fakeGateway{}
		st := newTestStore(t, newFakeCache(), gw, id, nil)

		assert.Equal(t, "cart-stored", st.GetCartID(ctx))
		assert.Zero(t, gw.queryCallCount)
	})

	t.Run("anonymous with no token resolves to empty silently", func(t *testing.T) {
		gw := &fakeGateway{}
		st := newTestStore(t, newFakeCache(), gw, newFakeIdentity(), TokenFunc(func(context.Context) string { return "" }))

		assert.Equal(t, "", st.GetCartID(ctx))
		assert.Zero(t, gw.queryCallCount)
	})

	t.Run("token recovers the logged-in cart and persists it", func(t *testing.T) {
		gw := &fakeGateway{loggedInCartID: "cart-remote"}
		id := newFakeIdentity()
		st := newTestStore(t, newFakeCache(), gw, id, TokenFunc(func(context.Context) string { return "tok-1" }))

		assert.Equal(t, "cart-remote", st.GetCartID(ctx))
		assert.Equal(t, "tok-1", gw.queryTokenSeen)
		assert.Equal(t, "cart-remote", id.records["session-1"])

		// Second call uses the remembered id.
		assert.Equal(t, "cart-remote", st.GetCartID(ctx))
		assert.Equal(t, 1, gw.queryCallCount)
	})
}

func TestSetCartID(t *testing.T) {
	id := newFakeIdentity()
	st := newTestStore(t, newFakeCache(), &fakeGateway{}, id, nil)

	st.SetCartID(context.Background(), "cart-new")
	assert.Equal(t, "cart-new", st.GetCartID(context.Background()))
	assert.Equal(t, "cart-new", id.records["session-1"])

	st.SetCartID(context.Background(), "   ")
	assert.Equal(t, "cart-new", st.GetCartID(context.Background()))
}

func TestUpdateCart(t *testing.T) {
	cache := newFakeCache()
	cache.next = map[string][]byte{
		cartdom.SectionCart: mustCartJSON(t, cartdom.Snapshot{
			ID:            "cart-1",
			Items:         []cartdom.LineItem{{ItemID: "a", Quantity: 2}},
			TotalQuantity: 2,
		}),
	}
	st := newTestStore(t, cache, &fakeGateway{}, nil, nil)

	var events []Event
	st.Subscribe(func(ev Event) { events = append(events, ev) })

	require.NoError(t, st.UpdateCart(context.Background()))

	require.Len(t, events, 2)
	assert.Equal(t, EventUpdate, events[1].Type)
	assert.Equal(t, 2, events[1].Cart.TotalQuantity)
	require.Len(t, cache.invalidations, 1)
	assert.Equal(t, []string{cartdom.SectionCart}, cache.invalidations[0])
}
