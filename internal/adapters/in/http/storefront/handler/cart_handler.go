// internal/adapters/in/http/storefront/handler/cart_handler.go
package storefrontHandler

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"luminaire/internal/application/store"
	"luminaire/internal/application/usecase"
)

// CartHandler serves the storefront cart endpoints.
type CartHandler struct {
	cart  *usecase.CartUsecase
	drift *usecase.DriftUsecase
	store *store.CartStore
	busy  *BusyIndicator
}

func NewCartHandler(cart *usecase.CartUsecase, drift *usecase.DriftUsecase, st *store.CartStore, busy *BusyIndicator) http.Handler {
	return &CartHandler{cart: cart, drift: drift, store: st, busy: busy}
}

func (h *CartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	path := strings.TrimRight(r.URL.Path, "/")

	if h.cart == nil || h.store == nil {
		log.Printf("[cart_handler] exit status=500 reason=cart handler not configured elapsed=%s", time.Since(start))
		writeErr(w, http.StatusInternalServerError, "cart handler is not configured")
		return
	}

	isGET := r.Method == http.MethodGet
	isPOST := r.Method == http.MethodPost
	isPUT := r.Method == http.MethodPut
	isDEL := r.Method == http.MethodDelete

	switch {
	case isGET && strings.HasSuffix(path, "/cart"):
		h.handleGet(w, r)
	case isGET && strings.HasSuffix(path, "/cart/quantity"):
		h.handleQuantity(w, r)
	case isGET && strings.HasSuffix(path, "/cart/detail"):
		h.handleDetail(w, r)
	case isGET && strings.HasSuffix(path, "/cart/busy"):
		h.handleBusy(w, r)
	case isPOST && strings.HasSuffix(path, "/cart/items"):
		h.handleAddItem(w, r)
	case isPUT && strings.HasSuffix(path, "/cart/items"):
		h.handleUpdateItem(w, r)
	case isDEL && strings.HasSuffix(path, "/cart/items"):
		h.handleRemoveItem(w, r)
	case isPOST && strings.HasSuffix(path, "/cart/resolve-drift"):
		h.handleResolveDrift(w, r)
	default:
		writeErr(w, http.StatusNotFound, "not found")
	}
}

// handleGet serves the last-synchronized snapshot from the local cache.
// Never hits the commerce backend.
func (h *CartHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.GetCart(r.Context()))
}

func (h *CartHandler) handleQuantity(w http.ResponseWriter, r *http.Request) {
	snap := h.store.GetCart(r.Context())
	writeJSON(w, http.StatusOK, map[string]int{"total_quantity": snap.TotalQuantity})
}

// handleDetail fetches the full cart from the commerce backend.
func (h *CartHandler) handleDetail(w http.ResponseWriter, r *http.Request) {
	snap, err := h.cart.GetItemFromCart(r.Context())
	if err != nil {
		if errors.Is(err, usecase.ErrFreshCartNeeded) {
			// No cart yet is a normal state for a fresh visitor.
			writeJSON(w, http.StatusOK, snap)
			return
		}
		log.Printf("[cart_handler] GET detail error: %v", err)
		writeErr(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *CartHandler) handleBusy(w http.ResponseWriter, _ *http.Request) {
	busy := false
	if h.busy != nil {
		busy = h.busy.Busy()
	}
	writeJSON(w, http.StatusOK, map[string]bool{"busy": busy})
}

func (h *CartHandler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req usecase.AddInput
	if err := readJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	if err := h.cart.AddToCart(r.Context(), req); err != nil {
		h.writeCartErr(w, "POST add-item", err)
		return
	}
	writeJSON(w, http.StatusOK, h.store.GetCart(r.Context()))
}

func (h *CartHandler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemID   string `json:"itemId"`
		Quantity int    `json:"quantity"`
	}
	if err := readJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	if err := h.cart.UpdateQuantityOfCartItem(r.Context(), req.ItemID, req.Quantity); err != nil {
		h.writeCartErr(w, "PUT update-item", err)
		return
	}
	writeJSON(w, http.StatusOK, h.store.GetCart(r.Context()))
}

func (h *CartHandler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID := strings.TrimSpace(r.URL.Query().Get("itemId"))
	if itemID == "" {
		var req struct {
			ItemID string `json:"itemId"`
		}
		if err := readJSON(r, &req); err == nil {
			itemID = strings.TrimSpace(req.ItemID)
		}
	}
	if itemID == "" {
		writeErr(w, http.StatusBadRequest, "itemId is required")
		return
	}

	if err := h.cart.RemoveItemFromCart(r.Context(), itemID); err != nil {
		h.writeCartErr(w, "DELETE remove-item", err)
		return
	}
	writeJSON(w, http.StatusOK, h.store.GetCart(r.Context()))
}

func (h *CartHandler) handleResolveDrift(w http.ResponseWriter, r *http.Request) {
	if h.drift == nil {
		writeErr(w, http.StatusInternalServerError, "drift resolver is not configured")
		return
	}

	var req struct {
		Force       bool `json:"force"`
		WaitForCart bool `json:"waitForCart"`
		DelayMs     int  `json:"delayMs"`
	}
	if r.ContentLength > 0 {
		if err := readJSON(r, &req); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid json body")
			return
		}
	}

	opts := usecase.DriftOptions{
		Force:       req.Force,
		WaitForCart: req.WaitForCart,
		Delay:       time.Duration(req.DelayMs) * time.Millisecond,
	}
	if err := h.drift.ResolveDrift(r.Context(), opts); err != nil {
		log.Printf("[cart_handler] POST resolve-drift error: %v", err)
		writeErr(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.store.GetCart(r.Context()))
}

func (h *CartHandler) writeCartErr(w http.ResponseWriter, op string, err error) {
	log.Printf("[cart_handler] %s error: %v", op, err)
	switch {
	case errors.Is(err, usecase.ErrCartInvalidArgument):
		writeErr(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, usecase.ErrFreshCartNeeded):
		writeErr(w, http.StatusConflict, err.Error())
	default:
		writeErr(w, http.StatusBadGateway, err.Error())
	}
}
