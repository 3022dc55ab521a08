package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const priceEpsilon = 1e-9

func TestEffectivePrice(t *testing.T) {
	tests := []struct {
		name     string
		price    float64
		discount float64
		want     float64
	}{
		{"no discount uses base price", 10, 0, 10},
		{"discount wins over base price", 10, 8, 8},
		{"free product stays free", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Product{Price: tt.price, PriceWithDiscount: tt.discount}
			assert.InDelta(t, tt.want, p.EffectivePrice(), priceEpsilon)
		})
	}
}

func TestCartLineTotal(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		price    float64
		discount float64
		want     float64
	}{
		{"quantity times base price", 3, 10, 0, 30},
		{"quantity times discounted price", 3, 10, 8, 24},
		{"single unit", 1, 49.99, 0, 49.99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := CartLine{
				Item:    &OrderItem{Quantity: tt.quantity},
				Product: &Product{Price: tt.price, PriceWithDiscount: tt.discount},
			}
			assert.InDelta(t, tt.want, line.Total(), priceEpsilon)
		})
	}
}

func TestOrderTotals(t *testing.T) {
	lines := []CartLine{
		{
			Item:    &OrderItem{Quantity: 3},
			Product: &Product{Price: 10, PriceWithDiscount: 0},
		},
		{
			Item:    &OrderItem{Quantity: 3},
			Product: &Product{Price: 10, PriceWithDiscount: 8},
		},
	}

	subtotal := Subtotal(lines)
	require.InDelta(t, 54.0, subtotal, priceEpsilon)
	assert.InDelta(t, 1.08, ShippingPrice(subtotal), priceEpsilon)
	assert.InDelta(t, 55.08, GrandTotal(subtotal), priceEpsilon)
}

func TestEmptyCartTotals(t *testing.T) {
	subtotal := Subtotal(nil)
	assert.Zero(t, subtotal)
	assert.Zero(t, ShippingPrice(subtotal))
	assert.Zero(t, GrandTotal(subtotal))
}
