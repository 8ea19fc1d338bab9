// internal/application/usecase/cart_usecase.go
package usecase

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"strings"

	"luminaire/internal/application/store"
	cartdom "luminaire/internal/domain/cart"
	"luminaire/internal/platform/metrics"
)

var (
	ErrCartInvalidArgument = errors.New("cart_usecase: invalid argument")

	// ErrFreshCartNeeded signals a precondition failure: no active cart
	// exists for this session yet. Callers may create one and retry.
	ErrFreshCartNeeded = errors.New("cart_usecase: no active cart")
)

// CompanionInput attaches an auxiliary bundled line (e.g. recommended
// bulbs) to an add-to-cart request. Its quantity is QtyMultiplier times
// the primary quantity, within the same mutation request.
type CompanionInput struct {
	SKU           string `json:"sku"`
	QtyMultiplier int    `json:"qtyMultiplier"`
}

// AddInput is one add-to-cart request from a UI fragment.
//
// Options may contain a base64-encoded JSON object carrying the
// made-to-measure (custom height) configuration; it is extracted from the
// option list and forwarded as a structured field.
type AddInput struct {
	SKU       string          `json:"sku"`
	Options   []string        `json:"options"`
	Quantity  int             `json:"quantity"`
	Companion *CompanionInput `json:"companion,omitempty"`
}

// CartUsecase coordinates cart mutations: proactive cache invalidation,
// UI blocking, gateway calls, error triage, snapshot reconciliation and
// subscriber notification.
//
// Concurrent operations are not mutually excluded: two racing mutations
// both hit the backend and the last cache write wins; the next drift
// resolution converges the state.
type CartUsecase struct {
	store     *store.CartStore
	gateway   cartdom.SessionGateway
	cache     cartdom.SectionCache
	blocker   UIBlocker
	analytics AnalyticsEmitter
	metrics   *metrics.Set
}

func NewCartUsecase(st *store.CartStore, gateway cartdom.SessionGateway, cache cartdom.SectionCache, blocker UIBlocker, analytics AnalyticsEmitter, m *metrics.Set) (*CartUsecase, error) {
	if st == nil || gateway == nil || cache == nil {
		return nil, ErrCartInvalidArgument
	}
	if blocker == nil {
		blocker = NopBlocker()
	}
	return &CartUsecase{
		store:     st,
		gateway:   gateway,
		cache:     cache,
		blocker:   blocker,
		analytics: analytics,
		metrics:   m,
	}, nil
}

// AddToCart adds the configured product (and its companion line when
// selected) to the session cart, creating a session cart first when none
// exists. Every line must pass validation before any remote call or
// cache invalidation happens.
func (uc *CartUsecase) AddToCart(ctx context.Context, in AddInput) error {
	options, customHeight := splitCustomHeight(in.Options)

	items := []cartdom.ItemInput{{
		SKU:             strings.TrimSpace(in.SKU),
		Quantity:        in.Quantity,
		SelectedOptions: options,
		CustomHeight:    customHeight,
	}}
	if in.Companion != nil {
		items = append(items, cartdom.ItemInput{
			SKU:             strings.TrimSpace(in.Companion.SKU),
			Quantity:        in.Companion.QtyMultiplier * in.Quantity,
			SelectedOptions: []string{},
		})
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return ErrCartInvalidArgument
		}
	}

	// The cache is stale the moment a mutation is attempted.
	if err := uc.cache.InvalidateAndRefetchSections(ctx, []string{cartdom.SectionCart, cartdom.SectionSideBySide}); err != nil {
		log.Printf("[cart_usecase] pre-add section refresh failed: %v", err)
	}

	release := uc.blocker.Engage()
	defer release()

	cartID := uc.store.GetCartID(ctx)
	if cartID == "" {
		log.Printf("[cart_usecase] no active cart, creating a session cart first")
		created, err := uc.gateway.CreateSessionCart(ctx)
		if err != nil {
			uc.metrics.CartOp("add", "error")
			return uc.triage(err)
		}
		uc.store.SetCartID(ctx, created)
		cartID = created
	}

	snap, userErrs, err := uc.gateway.AddItemsToCart(ctx, cartID, items)
	if err != nil {
		uc.metrics.CartOp("add", "error")
		return uc.triage(err)
	}
	if len(userErrs) > 0 {
		log.Printf("[cart_usecase] user errors while adding items to cart: %v", userErrs)
	}

	if snap.RecomputeTotal() {
		log.Printf("[cart_usecase] incorrect total quantity from backend, updating")
	}
	if err := snap.Validate(); err != nil {
		log.Printf("[cart_usecase] inconsistent cart in mutation response: %v", err)
	}

	if err := uc.store.UpdateCart(ctx); err != nil {
		log.Printf("[cart_usecase] cart refresh after add failed: %v", err)
	}
	uc.emit(func(emitCtx context.Context) { uc.analytics.AddToCart(emitCtx, snap) })
	uc.metrics.CartOp("add", "ok")
	log.Printf("[cart_usecase] added %d line(s) to cart %s", len(items), cartID)
	return nil
}

// RemoveItemFromCart removes one line item from the session cart.
func (uc *CartUsecase) RemoveItemFromCart(ctx context.Context, itemID string) error {
	id := strings.TrimSpace(itemID)
	if id == "" {
		return ErrCartInvalidArgument
	}

	if err := uc.cache.InvalidateAndRefetchSections(ctx, []string{cartdom.SectionCart, cartdom.SectionSideBySide}); err != nil {
		log.Printf("[cart_usecase] pre-remove section refresh failed: %v", err)
	}

	release := uc.blocker.Engage()
	defer release()

	cartID := uc.store.GetCartID(ctx)
	if cartID == "" {
		return ErrFreshCartNeeded
	}

	if _, err := uc.gateway.RemoveItem(ctx, cartID, id); err != nil {
		uc.metrics.CartOp("remove", "error")
		return uc.triage(err)
	}

	uc.emit(func(emitCtx context.Context) { uc.analytics.RemoveCartItem(emitCtx, id) })
	if err := uc.store.UpdateCart(ctx); err != nil {
		log.Printf("[cart_usecase] cart refresh after remove failed: %v", err)
	}
	uc.metrics.CartOp("remove", "ok")
	return nil
}

// UpdateQuantityOfCartItem sets the quantity of one line item. The
// pre-mutation snapshot is read first so the change can be classified as
// an addition or removal of the delta for the data layer.
func (uc *CartUsecase) UpdateQuantityOfCartItem(ctx context.Context, itemID string, quantity int) error {
	id := strings.TrimSpace(itemID)
	if id == "" || quantity < 1 {
		return ErrCartInvalidArgument
	}

	// Read before invalidation: the delta is relative to the last known
	// quantity for the line.
	previous := uc.store.GetCart(ctx)
	delta := quantity
	if prev, ok := previous.FindItem(id); ok {
		delta = quantity - prev.Quantity
	}

	if err := uc.cache.InvalidateAndRefetchSections(ctx, []string{cartdom.SectionCart, cartdom.SectionSideBySide}); err != nil {
		log.Printf("[cart_usecase] pre-update section refresh failed: %v", err)
	}

	release := uc.blocker.Engage()
	defer release()

	cartID := uc.store.GetCartID(ctx)
	if cartID == "" {
		return ErrFreshCartNeeded
	}

	if _, err := uc.gateway.UpdateItemQuantity(ctx, cartID, id, quantity); err != nil {
		uc.metrics.CartOp("update", "error")
		return uc.triage(err)
	}

	uc.emit(func(emitCtx context.Context) { uc.analytics.UpdateCartItem(emitCtx, id, delta) })
	if err := uc.store.UpdateCart(ctx); err != nil {
		log.Printf("[cart_usecase] cart refresh after update failed: %v", err)
	}
	uc.metrics.CartOp("update", "ok")
	return nil
}

// GetItemFromCart fetches the full cart detail from the remote session,
// engaging the UI blocker for the duration of the call.
func (uc *CartUsecase) GetItemFromCart(ctx context.Context) (cartdom.Snapshot, error) {
	release := uc.blocker.Engage()
	defer release()

	cartID := uc.store.GetCartID(ctx)
	if cartID == "" {
		return cartdom.DefaultSnapshot(), ErrFreshCartNeeded
	}

	snap, err := uc.gateway.FetchCart(ctx, cartID)
	if err != nil {
		if terr := uc.triage(err); terr != nil {
			return cartdom.DefaultSnapshot(), terr
		}
		return cartdom.DefaultSnapshot(), nil
	}
	snap.RecomputeTotal()
	if err := snap.Validate(); err != nil {
		log.Printf("[cart_usecase] inconsistent cart in detail response: %v", err)
	}
	return snap, nil
}

// triage applies the error policy shared by every mutation:
//   - not-found / authorization: the local cart is orphaned; reset it
//     entirely and stop (the user silently gets a fresh cart).
//   - input-validation: log and leave existing state untouched.
//   - anything else: escalate to the caller.
func (uc *CartUsecase) triage(err error) error {
	category := cartdom.CategoryOf(err)
	uc.metrics.GatewayError(category.String())
	switch category {
	case cartdom.CategoryNotFound:
		log.Printf("[cart_usecase] cart does not exist, resetting cart")
		uc.store.ResetCart()
		return nil
	case cartdom.CategoryAuthorization:
		log.Printf("[cart_usecase] no access to cart, resetting cart")
		uc.store.ResetCart()
		return nil
	case cartdom.CategoryInputValidation:
		log.Printf("[cart_usecase] some items in the cart might not be available anymore")
		return nil
	default:
		return err
	}
}

// emit isolates the analytics collaborator: its failures (including
// panics) never affect the mutation outcome.
func (uc *CartUsecase) emit(fn func(ctx context.Context)) {
	if uc.analytics == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[cart_usecase] analytics emission panicked: %v", r)
		}
	}()
	fn(context.Background())
}

// splitCustomHeight extracts a base64-encoded JSON object from the option
// list. Options that do not decode to a JSON object pass through
// untouched. A custom-height payload priced at zero is dropped entirely.
func splitCustomHeight(options []string) ([]string, json.RawMessage) {
	kept := make([]string, 0, len(options))
	var custom json.RawMessage
	for _, opt := range options {
		decoded, err := base64.StdEncoding.DecodeString(opt)
		if err == nil {
			var obj map[string]json.RawMessage
			if json.Unmarshal(decoded, &obj) == nil && len(obj) > 0 {
				if priceIsZero(obj) {
					continue
				}
				custom = json.RawMessage(decoded)
				continue
			}
		}
		kept = append(kept, opt)
	}
	return kept, custom
}

func priceIsZero(obj map[string]json.RawMessage) bool {
	raw, ok := obj["price"]
	if !ok {
		return false
	}
	var price float64
	if json.Unmarshal(raw, &price) != nil {
		return false
	}
	return price == 0
}
