// internal/adapters/out/commerce/gateway.go
package commerce

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	cartdom "luminaire/internal/domain/cart"
)

// gqlPrice mirrors the Money shape of the GraphQL schema.
type gqlPrice struct {
	Currency string  `json:"currency"`
	Value    float64 `json:"value"`
}

type gqlCartItem struct {
	UID    string `json:"uid"`
	Prices struct {
		Price             gqlPrice `json:"price"`
		TotalItemDiscount struct {
			Value float64 `json:"value"`
		} `json:"total_item_discount"`
	} `json:"prices"`
	Product struct {
		Name string `json:"name"`
		SKU  string `json:"sku"`
	} `json:"product"`
	ConfigurableOptions []struct {
		OptionLabel string `json:"option_label"`
		ValueLabel  string `json:"value_label"`
	} `json:"configurable_options"`
	ConfiguredVariant *struct {
		SKU  string `json:"sku"`
		Name string `json:"name"`
	} `json:"configured_variant"`
	Quantity float64 `json:"quantity"`
}

type gqlCart struct {
	ID    string        `json:"id"`
	Items []gqlCartItem `json:"items"`
	// Stale right after an add; RecomputeTotal corrects it downstream.
	TotalQuantity int `json:"total_quantity"`
}

func (gc gqlCart) toSnapshot() cartdom.Snapshot {
	snap := cartdom.Snapshot{
		ID:            gc.ID,
		Items:         make([]cartdom.LineItem, 0, len(gc.Items)),
		TotalQuantity: gc.TotalQuantity,
	}
	for _, it := range gc.Items {
		line := cartdom.LineItem{
			ItemID:     it.UID,
			ProductSKU: it.Product.SKU,
			Quantity:   int(it.Quantity),
			UnitPrice: cartdom.Price{
				Currency: it.Prices.Price.Currency,
				Value:    it.Prices.Price.Value,
			},
			FullPrice: cartdom.Price{
				Currency: it.Prices.Price.Currency,
				Value:    it.Prices.Price.Value + it.Prices.TotalItemDiscount.Value,
			},
		}
		if it.ConfiguredVariant != nil {
			line.ConfiguredVariantSKU = it.ConfiguredVariant.SKU
		}
		if len(it.ConfigurableOptions) > 0 {
			line.SelectedOptions = make(map[string]string, len(it.ConfigurableOptions))
			for _, opt := range it.ConfigurableOptions {
				line.SelectedOptions[opt.OptionLabel] = opt.ValueLabel
			}
		}
		snap.Items = append(snap.Items, line)
	}
	return snap
}

// QueryLoggedInCartID resolves the cart id bound to the authenticated
// customer.
func (c *Client) QueryLoggedInCartID(ctx context.Context, token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", &cartdom.GatewayError{Category: cartdom.CategoryAuthorization, Message: "missing auth token"}
	}

	data, gqlErrs, err := c.query(ctx, getLoggedInCartIDQuery, nil, false, token)
	if err != nil {
		return "", err
	}
	if err := normalizeErrors(gqlErrs); err != nil {
		return "", err
	}

	var payload struct {
		CustomerCart struct {
			ID string `json:"id"`
		} `json:"customerCart"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", fmt.Errorf("commerce gateway: decode customer cart: %w", err)
	}
	return payload.CustomerCart.ID, nil
}

// CreateSessionCart establishes a fresh anonymous session cart.
func (c *Client) CreateSessionCart(ctx context.Context) (string, error) {
	data, gqlErrs, err := c.query(ctx, createSessionCartMutation, nil, true, "")
	if err != nil {
		return "", err
	}
	if err := normalizeErrors(gqlErrs); err != nil {
		return "", err
	}

	var payload struct {
		CartID string `json:"cartId"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", fmt.Errorf("commerce gateway: decode created cart id: %w", err)
	}
	if payload.CartID == "" {
		return "", &cartdom.GatewayError{Category: cartdom.CategoryOther, Message: "empty cart id from createSessionCart"}
	}
	return payload.CartID, nil
}

// AddItemsToCart adds line items in a single mutation. Individually
// rejected items come back as user errors on an otherwise applied
// request.
func (c *Client) AddItemsToCart(ctx context.Context, cartID string, items []cartdom.ItemInput) (cartdom.Snapshot, []cartdom.UserError, error) {
	cartItems := make([]map[string]any, 0, len(items))
	for _, it := range items {
		entry := map[string]any{
			"sku":              it.SKU,
			"quantity":         it.Quantity,
			"selected_options": it.SelectedOptions,
		}
		if len(it.CustomHeight) > 0 {
			entry["custom_height"] = it.CustomHeight
		}
		cartItems = append(cartItems, entry)
	}

	data, gqlErrs, err := c.query(ctx, addProductsToCartMutation, map[string]any{
		"cartId":    cartID,
		"cartItems": cartItems,
	}, true, "")
	if err != nil {
		return cartdom.Snapshot{}, nil, err
	}
	if err := normalizeErrors(gqlErrs); err != nil {
		return cartdom.Snapshot{}, nil, err
	}

	var payload struct {
		AddProductsToCart struct {
			Cart       gqlCart            `json:"cart"`
			UserErrors []cartdom.UserError `json:"user_errors"`
		} `json:"addProductsToCart"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return cartdom.Snapshot{}, nil, fmt.Errorf("commerce gateway: decode add response: %w", err)
	}
	return payload.AddProductsToCart.Cart.toSnapshot(), payload.AddProductsToCart.UserErrors, nil
}

// RemoveItem removes one line item from the cart.
func (c *Client) RemoveItem(ctx context.Context, cartID, itemID string) (cartdom.Snapshot, error) {
	data, gqlErrs, err := c.query(ctx, removeItemFromCartMutation, map[string]any{
		"cartId": cartID,
		"itemId": itemID,
	}, true, "")
	if err != nil {
		return cartdom.Snapshot{}, err
	}
	if err := normalizeErrors(gqlErrs); err != nil {
		return cartdom.Snapshot{}, err
	}

	var payload struct {
		RemoveItemFromCart struct {
			Cart gqlCart `json:"cart"`
		} `json:"removeItemFromCart"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return cartdom.Snapshot{}, fmt.Errorf("commerce gateway: decode remove response: %w", err)
	}
	return payload.RemoveItemFromCart.Cart.toSnapshot(), nil
}

// UpdateItemQuantity sets the quantity of one line item.
func (c *Client) UpdateItemQuantity(ctx context.Context, cartID, itemID string, quantity int) (cartdom.Snapshot, error) {
	data, gqlErrs, err := c.query(ctx, updateCartItemsMutation, map[string]any{
		"cartId": cartID,
		"items": []map[string]any{{
			"cart_item_uid": itemID,
			"quantity":      quantity,
		}},
	}, true, "")
	if err != nil {
		return cartdom.Snapshot{}, err
	}
	if err := normalizeErrors(gqlErrs); err != nil {
		return cartdom.Snapshot{}, err
	}

	var payload struct {
		UpdateCartItems struct {
			Cart gqlCart `json:"cart"`
		} `json:"updateCartItems"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return cartdom.Snapshot{}, fmt.Errorf("commerce gateway: decode update response: %w", err)
	}
	return payload.UpdateCartItems.Cart.toSnapshot(), nil
}

// FetchCart returns the full cart detail.
func (c *Client) FetchCart(ctx context.Context, cartID string) (cartdom.Snapshot, error) {
	data, gqlErrs, err := c.query(ctx, getCartQuery, map[string]any{
		"cartId": cartID,
	}, false, "")
	if err != nil {
		return cartdom.Snapshot{}, err
	}
	if err := normalizeErrors(gqlErrs); err != nil {
		return cartdom.Snapshot{}, err
	}

	var payload struct {
		Cart gqlCart `json:"cart"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return cartdom.Snapshot{}, fmt.Errorf("commerce gateway: decode cart: %w", err)
	}
	return payload.Cart.toSnapshot(), nil
}

var _ cartdom.SessionGateway = (*Client)(nil)
