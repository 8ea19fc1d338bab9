// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"strings"
)

var (
	ErrInvalidCart = errors.New("cart: invalid")
)

// Price is a decimal currency amount as returned by the commerce backend.
type Price struct {
	Currency string  `json:"currency"`
	Value    float64 `json:"value"`
}

// LineItem represents "one line item" in a cart.
// ItemID is stable per line (not per SKU): the same SKU added through a
// different configuration produces a different line.
type LineItem struct {
	ItemID               string `json:"item_id"`
	ProductSKU           string `json:"product_sku"`
	ConfiguredVariantSKU string `json:"configured_variant_sku,omitempty"`
	Quantity             int    `json:"quantity"`
	UnitPrice            Price  `json:"unit_price"`
	FullPrice            Price  `json:"full_price"`

	// SelectedOptions maps option labels to the chosen value labels.
	SelectedOptions map[string]string `json:"selected_options,omitempty"`
}

// empty reports whether the line carries no usable data. The backend has
// been observed to pad mutation responses with null entries.
func (li LineItem) empty() bool {
	return strings.TrimSpace(li.ItemID) == "" &&
		strings.TrimSpace(li.ProductSKU) == "" &&
		li.Quantity == 0
}

// Snapshot is the cart representation as last synchronized with the
// commerce session.
//   - ID is empty only when no cart has ever been established for the
//     current browsing session.
//   - Items keep insertion order (= display order).
type Snapshot struct {
	ID            string     `json:"id"`
	Items         []LineItem `json:"items"`
	TotalQuantity int        `json:"total_quantity"`
}

// DefaultSnapshot is what callers get when nothing is cached yet or the
// cached bytes are malformed.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		ID:            "",
		Items:         []LineItem{},
		TotalQuantity: 0,
	}
}

// RecomputeTotal discards null/empty line entries and recomputes
// TotalQuantity as the sum of line quantities.
//
// Adding a new line item makes the backend report a stale total_quantity,
// so the locally computed sum always wins. Returns true when the reported
// total had to be corrected.
func (s *Snapshot) RecomputeTotal() bool {
	if s == nil {
		return false
	}

	kept := make([]LineItem, 0, len(s.Items))
	for _, it := range s.Items {
		if it.empty() {
			continue
		}
		kept = append(kept, it)
	}
	s.Items = kept

	sum := 0
	for _, it := range s.Items {
		sum += it.Quantity
	}
	if sum == s.TotalQuantity {
		return false
	}
	s.TotalQuantity = sum
	return true
}

// FindItem returns the line with the given itemID.
func (s *Snapshot) FindItem(itemID string) (LineItem, bool) {
	if s == nil {
		return LineItem{}, false
	}
	id := strings.TrimSpace(itemID)
	for _, it := range s.Items {
		if it.ItemID == id {
			return it, true
		}
	}
	return LineItem{}, false
}

// Clone returns a deep copy so subscribers can never mutate shared state.
func (s Snapshot) Clone() Snapshot {
	cp := s
	cp.Items = make([]LineItem, len(s.Items))
	copy(cp.Items, s.Items)
	for i := range cp.Items {
		if len(s.Items[i].SelectedOptions) == 0 {
			continue
		}
		opts := make(map[string]string, len(s.Items[i].SelectedOptions))
		for k, v := range s.Items[i].SelectedOptions {
			opts[k] = v
		}
		cp.Items[i].SelectedOptions = opts
	}
	return cp
}

// Validate checks snapshot invariants after a resolved mutation.
// Transient mismatches mid-flight are allowed; a persisted snapshot is not.
func (s *Snapshot) Validate() error {
	if s == nil {
		return ErrInvalidCart
	}
	sum := 0
	seen := map[string]bool{}
	for _, it := range s.Items {
		if it.Quantity <= 0 {
			return ErrInvalidCart
		}
		if it.ItemID != "" {
			if seen[it.ItemID] {
				return ErrInvalidCart
			}
			seen[it.ItemID] = true
		}
		sum += it.Quantity
	}
	if sum != s.TotalQuantity {
		return ErrInvalidCart
	}
	return nil
}
