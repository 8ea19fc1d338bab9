// internal/application/store/cart_store.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"sync"

	cartdom "luminaire/internal/domain/cart"
)

var (
	ErrStoreInvalidArgument = errors.New("cart_store: invalid argument")
)

// EventType tags store notifications so subscribers can tell a real cart
// update apart from a hard reset or an auth display change.
type EventType int

const (
	// EventUpdate carries the current snapshot.
	EventUpdate EventType = iota

	// EventReset is a cache-invalidation signal, not a real cart state.
	// Cart is the default empty snapshot.
	EventReset

	// EventAuthChanged reports a logged-in/out transition. Cart is the
	// current snapshot; LoggedIn is authoritative.
	EventAuthChanged
)

// Event is delivered to every subscriber of the CartStore.
type Event struct {
	Type     EventType
	Cart     cartdom.Snapshot
	LoggedIn bool
}

// Subscriber receives store events. Callbacks run in subscription order
// but must not assume ordering relative to each other's side effects.
type Subscriber func(Event)

// TokenSource exposes the auth collaborator's token. Read-only here.
type TokenSource interface {
	// Token returns the current auth token, empty for anonymous visits.
	Token(ctx context.Context) string
}

// TokenFunc adapts a plain function to TokenSource.
type TokenFunc func(ctx context.Context) string

func (f TokenFunc) Token(ctx context.Context) string { return f(ctx) }

// CartStore is the single per-engine instance exposing the last-known cart
// snapshot to arbitrarily many independent subscribers.
//
// It is a passive cache reader: concurrent GetCart calls are idempotent
// reads of the section cache. GetCartID may race with itself across
// callers; duplicate in-flight remote lookups are tolerated and the
// remembered id resolves last-writer-wins.
type CartStore struct {
	cache    cartdom.SectionCache
	gateway  cartdom.SessionGateway
	identity cartdom.IdentityRepository
	tokens   TokenSource

	sessionID string

	mu     sync.Mutex
	cartID string
	subs   []subscription
	nextID int
}

type subscription struct {
	id int
	fn Subscriber
}

// NewCartStore builds the store. identity and tokens may be nil (guest
// engine with no durable partition); cache is required, gateway is
// required for logged-in cart id recovery.
func NewCartStore(sessionID string, cache cartdom.SectionCache, gateway cartdom.SessionGateway, identity cartdom.IdentityRepository, tokens TokenSource) (*CartStore, error) {
	sid := strings.TrimSpace(sessionID)
	if sid == "" || cache == nil {
		return nil, ErrStoreInvalidArgument
	}
	return &CartStore{
		cache:     cache,
		gateway:   gateway,
		identity:  identity,
		tokens:    tokens,
		sessionID: sid,
	}, nil
}

// GetCart reads and parses the cart section from the local cache. Missing
// or malformed data yields the default empty snapshot; this never fails to
// the caller.
func (s *CartStore) GetCart(ctx context.Context) cartdom.Snapshot {
	raw, err := s.cache.ReadSection(ctx, cartdom.SectionCart)
	if err != nil {
		if !errors.Is(err, cartdom.ErrSectionMissing) {
			log.Printf("[cart_store] failed to read cart section: %v", err)
		}
		return cartdom.DefaultSnapshot()
	}

	var snap cartdom.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		log.Printf("[cart_store] failed to parse cart section: %v", err)
		return cartdom.DefaultSnapshot()
	}
	if snap.Items == nil {
		snap.Items = []cartdom.LineItem{}
	}

	if id := strings.TrimSpace(snap.ID); id != "" {
		s.mu.Lock()
		s.cartID = id
		s.mu.Unlock()
	}
	return snap
}

// Subscribe registers fn and immediately invokes it once with the current
// snapshot, so subscribers never wait for the first change to learn the
// initial state. The returned func unsubscribes.
func (s *CartStore) Subscribe(fn Subscriber) func() {
	if fn == nil {
		return func() {}
	}

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	s.mu.Unlock()

	fn(Event{Type: EventUpdate, Cart: s.GetCart(context.Background())})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// NotifySubscribers delivers the current snapshot to every subscriber in
// subscription order.
func (s *CartStore) NotifySubscribers(ctx context.Context) {
	s.publish(Event{Type: EventUpdate, Cart: s.GetCart(ctx)})
}

// PublishAuthChanged reports a login display transition to subscribers.
func (s *CartStore) PublishAuthChanged(ctx context.Context, loggedIn bool) {
	s.publish(Event{Type: EventAuthChanged, Cart: s.GetCart(ctx), LoggedIn: loggedIn})
}

// ResetCart clears the remembered cart identifier and signals a hard reset
// to all subscribers. The delivered cart is the default empty snapshot and
// must be treated as a cache-invalidation signal.
func (s *CartStore) ResetCart() {
	s.mu.Lock()
	s.cartID = ""
	s.mu.Unlock()

	s.publish(Event{Type: EventReset, Cart: cartdom.DefaultSnapshot()})
}

// publish fans the event out, handing every subscriber its own deep copy
// so a callback mutating its snapshot never leaks into the others.
func (s *CartStore) publish(ev Event) {
	for _, sub := range s.snapshotSubs() {
		out := ev
		out.Cart = ev.Cart.Clone()
		sub.fn(out)
	}
}

// GetCartID returns the active cart identifier. Resolution order:
// remembered id, durable identity record, then a logged-in customer lookup
// through the gateway when an auth token is available. Returns "" without
// error for anonymous visits with no cart; that is an expected condition,
// not a failure.
func (s *CartStore) GetCartID(ctx context.Context) string {
	s.mu.Lock()
	id := s.cartID
	s.mu.Unlock()
	if id != "" {
		return id
	}

	if s.identity != nil {
		stored, err := s.identity.Get(ctx, s.sessionID)
		if err != nil {
			log.Printf("[cart_store] identity lookup failed: %v", err)
		} else if stored != "" {
			s.remember(ctx, stored, false)
			return stored
		}
	}

	log.Printf("[cart_store] missing cart id, attempting to get from server")

	token := ""
	if s.tokens != nil {
		token = strings.TrimSpace(s.tokens.Token(ctx))
	}
	if token == "" {
		log.Printf("[cart_store] no auth token available")
		return ""
	}
	if s.gateway == nil {
		return ""
	}

	remote, err := s.gateway.QueryLoggedInCartID(ctx, token)
	if err != nil {
		log.Printf("[cart_store] could not query logged in customer's cart: %v", err)
		return ""
	}
	if remote == "" {
		return ""
	}
	s.remember(ctx, remote, true)
	return remote
}

// SetCartID remembers a freshly created cart id and persists it to the
// durable identity partition.
func (s *CartStore) SetCartID(ctx context.Context, cartID string) {
	id := strings.TrimSpace(cartID)
	if id == "" {
		return
	}
	s.remember(ctx, id, true)
}

// UpdateCart refreshes the cart section from the remote session and
// notifies subscribers.
func (s *CartStore) UpdateCart(ctx context.Context) error {
	if err := s.cache.InvalidateAndRefetchSections(ctx, []string{cartdom.SectionCart}); err != nil {
		return err
	}
	s.NotifySubscribers(ctx)
	return nil
}

// SessionID identifies the storefront session this engine serves.
func (s *CartStore) SessionID() string { return s.sessionID }

func (s *CartStore) remember(ctx context.Context, cartID string, persist bool) {
	s.mu.Lock()
	s.cartID = cartID
	s.mu.Unlock()

	if !persist || s.identity == nil {
		return
	}
	if err := s.identity.Put(ctx, s.sessionID, cartID, cartdom.DefaultIdentityTTL); err != nil {
		log.Printf("[cart_store] failed to persist cart identity: %v", err)
	}
}

func (s *CartStore) snapshotSubs() []subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]subscription, len(s.subs))
	copy(out, s.subs)
	return out
}
