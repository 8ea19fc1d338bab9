// internal/domain/cart/gateway_port.go
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrorCategory classifies failures reported by the commerce session
// backend. The gateway adapter produces exactly one category per failed
// call so callers can switch exhaustively instead of probing optional
// response fields.
type ErrorCategory int

const (
	CategoryOther ErrorCategory = iota
	CategoryNotFound
	CategoryAuthorization
	CategoryInputValidation
)

func (c ErrorCategory) String() string {
	switch c {
	case CategoryNotFound:
		return "not-found"
	case CategoryAuthorization:
		return "authorization"
	case CategoryInputValidation:
		return "input-validation"
	default:
		return "other"
	}
}

// GatewayError is a normalized commerce backend error.
type GatewayError struct {
	Category ErrorCategory
	Message  string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("cart gateway: %s: %s", e.Category, e.Message)
}

// CategoryOf extracts the error category, CategoryOther when err is not a
// GatewayError (transport failures, timeouts, ...).
func CategoryOf(err error) ErrorCategory {
	var gerr *GatewayError
	if errors.As(err, &gerr) {
		return gerr.Category
	}
	return CategoryOther
}

// UserError is a per-item rejection returned alongside a successful
// add-to-cart response (the rest of the request still applied).
type UserError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ItemInput describes one line to add to the cart.
type ItemInput struct {
	SKU             string   `json:"sku"`
	Quantity        int      `json:"quantity"`
	SelectedOptions []string `json:"selected_options"`

	// CustomHeight carries the made-to-measure option payload when the
	// product was configured with one. Nil otherwise.
	CustomHeight json.RawMessage `json:"custom_height,omitempty"`
}

// Validate rejects inputs before any remote call is attempted.
func (in ItemInput) Validate() error {
	if strings.TrimSpace(in.SKU) == "" {
		return ErrInvalidCart
	}
	if in.Quantity < 1 {
		return ErrInvalidCart
	}
	return nil
}

// SessionGateway performs authenticated query/mutation calls against the
// commerce backend. Implementations normalize backend errors into
// *GatewayError; any other returned error is a transport failure.
type SessionGateway interface {
	// QueryLoggedInCartID resolves the logged-in customer's cart id
	// using the given auth token.
	QueryLoggedInCartID(ctx context.Context, token string) (string, error)

	// CreateSessionCart establishes a new session cart and returns its id.
	CreateSessionCart(ctx context.Context) (string, error)

	// AddItemsToCart adds line items. UserErrors report individually
	// rejected items on an otherwise successful response.
	AddItemsToCart(ctx context.Context, cartID string, items []ItemInput) (Snapshot, []UserError, error)

	// RemoveItem removes one line item.
	RemoveItem(ctx context.Context, cartID, itemID string) (Snapshot, error)

	// UpdateItemQuantity sets the quantity of one line item.
	UpdateItemQuantity(ctx context.Context, cartID, itemID string, quantity int) (Snapshot, error)

	// FetchCart returns the full cart detail.
	FetchCart(ctx context.Context, cartID string) (Snapshot, error)

	// FetchSections pulls the named session state sections
	// (cart, customer, ...) as serialized payloads.
	FetchSections(ctx context.Context, names []string) (map[string]json.RawMessage, error)
}
