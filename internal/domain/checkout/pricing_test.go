package checkout

import (
	"testing"

	"github.com/freshbasket/storefront/internal/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPricingDeliveryBoundary(t *testing.T) {
	pricing := NewPricing(config.CheckoutConfig{
		FreeDeliveryThreshold: decimal.NewFromInt(199),
		DeliveryFee:           decimal.NewFromInt(50),
	})

	tests := []struct {
		subtotal  string
		fee       string
		total     string
		remaining string
	}{
		{subtotal: "0", fee: "50", total: "50", remaining: "199"},
		{subtotal: "198.99", fee: "50", total: "248.99", remaining: "0.01"},
		{subtotal: "199.00", fee: "0", total: "199", remaining: "0"},
		{subtotal: "199.01", fee: "0", total: "199.01", remaining: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.subtotal, func(t *testing.T) {
			subtotal := decimal.RequireFromString(tt.subtotal)
			totals := pricing.Price(subtotal)

			assert.True(t, totals.DeliveryFee.Equal(decimal.RequireFromString(tt.fee)), "fee %s", totals.DeliveryFee)
			assert.True(t, totals.TotalAmount.Equal(decimal.RequireFromString(tt.total)), "total %s", totals.TotalAmount)
			assert.True(t, pricing.FreeDeliveryRemaining(subtotal).Equal(decimal.RequireFromString(tt.remaining)))
		})
	}
}
