// internal/application/usecase/helpers_test.go
package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"luminaire/internal/application/store"
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

// fakeGateway records every call and serves configured responses.
type fakeGateway struct {
	mu    sync.Mutex
	calls []string

	createID  string
	createErr error

	addSnap     cartdom.Snapshot
	addUserErrs []cartdom.UserError
	addErr      error
	addedItems  [][]cartdom.ItemInput
	addedCartID string

	removeSnap cartdom.Snapshot
	removeErr  error
	removedIDs []string

	updateSnap cartdom.Snapshot
	updateErr  error
	updatedQty int

	fetchSnap cartdom.Snapshot
	fetchErr  error
}

func (g *fakeGateway) record(call string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, call)
}

func (g *fakeGateway) callList() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.calls))
	copy(out, g.calls)
	return out
}

func (g *fakeGateway) QueryLoggedInCartID(context.Context, string) (string, error) {
	g.record("query-logged-in")
	return "", nil
}

func (g *fakeGateway) CreateSessionCart(context.Context) (string, error) {
	g.record("create")
	return g.createID, g.createErr
}

func (g *fakeGateway) AddItemsToCart(_ context.Context, cartID string, items []cartdom.ItemInput) (cartdom.Snapshot, []cartdom.UserError, error) {
	g.record("add")
	g.mu.Lock()
	g.addedItems = append(g.addedItems, items)
	g.addedCartID = cartID
	g.mu.Unlock()
	return g.addSnap, g.addUserErrs, g.addErr
}

func (g *fakeGateway) RemoveItem(_ context.Context, _ string, itemID string) (cartdom.Snapshot, error) {
	g.record("remove")
	g.mu.Lock()
	g.removedIDs = append(g.removedIDs, itemID)
	g.mu.Unlock()
	return g.removeSnap, g.removeErr
}

func (g *fakeGateway) UpdateItemQuantity(_ context.Context, _, _ string, quantity int) (cartdom.Snapshot, error) {
	g.record("update")
	g.mu.Lock()
	g.updatedQty = quantity
	g.mu.Unlock()
	return g.updateSnap, g.updateErr
}

func (g *fakeGateway) FetchCart(context.Context, string) (cartdom.Snapshot, error) {
	g.record("fetch")
	return g.fetchSnap, g.fetchErr
}

func (g *fakeGateway) FetchSections(context.Context, []string) (map[string]json.RawMessage, error) {
	g.record("fetch-sections")
	return nil, nil
}

// fakeBlocker counts engagements and releases.
type fakeBlocker struct {
	mu       sync.Mutex
	engaged  int
	released int
}

func (b *fakeBlocker) Engage() func() {
	b.mu.Lock()
	b.engaged++
	b.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			b.released++
			b.mu.Unlock()
		})
	}
}

func (b *fakeBlocker) balanced() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.engaged == b.released
}

// fakeEmitter records analytics emissions.
type fakeEmitter struct {
	mu      sync.Mutex
	adds    []cartdom.Snapshot
	removes []string
	updates []struct {
		itemID string
		delta  int
	}
	panics bool
}

func (e *fakeEmitter) AddToCart(_ context.Context, snap cartdom.Snapshot) {
	if e.panics {
		panic("emitter down")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.adds = append(e.adds, snap)
}

func (e *fakeEmitter) RemoveCartItem(_ context.Context, itemID string) {
	if e.panics {
		panic("emitter down")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.removes = append(e.removes, itemID)
}

func (e *fakeEmitter) UpdateCartItem(_ context.Context, itemID string, delta int) {
	if e.panics {
		panic("emitter down")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.updates = append(e.updates, struct {
		itemID string
		delta  int
	}{itemID, delta})
}

// fakeSleeper records requested delays without sleeping.
type fakeSleeper struct {
	mu     sync.Mutex
	slept  []time.Duration
	retErr error
}

func (s *fakeSleeper) Sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slept = append(s.slept, d)
	return s.retErr
}

func mustCartJSON(t *testing.T, snap cartdom.Snapshot) []byte {
	t.Helper()
	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	return raw
}

func newTestStore(t *testing.T, cache cartdom.SectionCache, gw cartdom.SessionGateway) *store.CartStore {
	t.Helper()
	st, err := store.NewCartStore("session-1", cache, gw, nil, nil)
	require.NoError(t, err)
	return st
}
