// internal/domain/cart/entity_test.go
package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecomputeTotal(t *testing.T) {
	t.Run("corrects stale reported total", func(t *testing.T) {
		snap := Snapshot{
			ID: "cart-1",
			Items: []LineItem{
				{ItemID: "a", ProductSKU: "ABC123", Quantity: 2},
				{ItemID: "b", ProductSKU: "DEF456", Quantity: 1},
			},
			TotalQuantity: 1,
		}

		changed := snap.RecomputeTotal()

		assert.True(t, changed)
		assert.Equal(t, 3, snap.TotalQuantity)
	})

	t.Run("drops empty padding entries", func(t *testing.T) {
		snap := Snapshot{
			ID: "cart-1",
			Items: []LineItem{
				{ItemID: "a", ProductSKU: "ABC123", Quantity: 2},
				{},
			},
			TotalQuantity: 2,
		}

		changed := snap.RecomputeTotal()

		assert.False(t, changed)
		require.Len(t, snap.Items, 1)
		assert.Equal(t, "a", snap.Items[0].ItemID)
	})

	t.Run("no-op when already consistent", func(t *testing.T) {
		snap := Snapshot{
			Items:         []LineItem{{ItemID: "a", ProductSKU: "ABC123", Quantity: 2}},
			TotalQuantity: 2,
		}

		assert.False(t, snap.RecomputeTotal())
		assert.Equal(t, 2, snap.TotalQuantity)
	})

	t.Run("empty cart sums to zero", func(t *testing.T) {
		snap := DefaultSnapshot()
		assert.False(t, snap.RecomputeTotal())
		assert.Equal(t, 0, snap.TotalQuantity)
	})
}

func TestFindItem(t *testing.T) {
	snap := Snapshot{
		Items: []LineItem{
			{ItemID: "a", ProductSKU: "ABC123", Quantity: 2},
			{ItemID: "b", ProductSKU: "ABC123", Quantity: 1},
		},
	}

	item, ok := snap.FindItem("b")
	require.True(t, ok)
	assert.Equal(t, 1, item.Quantity)

	_, ok = snap.FindItem("missing")
	assert.False(t, ok)
}

func TestClone(t *testing.T) {
	snap := Snapshot{
		ID: "cart-1",
		Items: []LineItem{
			{ItemID: "a", SelectedOptions: map[string]string{"Finish": "Brass"}},
		},
		TotalQuantity: 1,
	}

	cp := snap.Clone()
	cp.Items[0].ItemID = "mutated"
	cp.Items[0].SelectedOptions["Finish"] = "Chrome"

	assert.Equal(t, "a", snap.Items[0].ItemID)
	assert.Equal(t, "Brass", snap.Items[0].SelectedOptions["Finish"])
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		snap    Snapshot
		wantErr bool
	}{
		{
			name: "consistent snapshot",
			snap: Snapshot{
				Items:         []LineItem{{ItemID: "a", Quantity: 2}},
				TotalQuantity: 2,
			},
		},
		{
			name: "total mismatch",
			snap: Snapshot{
				Items:         []LineItem{{ItemID: "a", Quantity: 2}},
				TotalQuantity: 5,
			},
			wantErr: true,
		},
		{
			name: "non-positive quantity",
			snap: Snapshot{
				Items:         []LineItem{{ItemID: "a", Quantity: 0}},
				TotalQuantity: 0,
			},
			wantErr: true,
		},
		{
			name: "duplicate line ids",
			snap: Snapshot{
				Items:         []LineItem{{ItemID: "a", Quantity: 1}, {ItemID: "a", Quantity: 1}},
				TotalQuantity: 2,
			},
			wantErr: true,
		},
		{
			name: "empty cart",
			snap: DefaultSnapshot(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.snap.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCart)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
