// internal/domain/cart/gateway_port_test.go
package cart

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"gateway not found", &GatewayError{Category: CategoryNotFound}, CategoryNotFound},
		{"gateway authorization", &GatewayError{Category: CategoryAuthorization}, CategoryAuthorization},
		{"gateway input", &GatewayError{Category: CategoryInputValidation}, CategoryInputValidation},
		{"wrapped gateway error", fmt.Errorf("add: %w", &GatewayError{Category: CategoryNotFound}), CategoryNotFound},
		{"transport error", errors.New("connection refused"), CategoryOther},
		{"nil", nil, CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryOf(tt.err))
		})
	}
}

func TestItemInputValidate(t *testing.T) {
	assert.NoError(t, ItemInput{SKU: "ABC123", Quantity: 1}.Validate())
	assert.Error(t, ItemInput{SKU: "", Quantity: 1}.Validate())
	assert.Error(t, ItemInput{SKU: "  ", Quantity: 1}.Validate())
	assert.Error(t, ItemInput{SKU: "ABC123", Quantity: 0}.Validate())
	assert.Error(t, ItemInput{SKU: "ABC123", Quantity: -3}.Validate())
}
