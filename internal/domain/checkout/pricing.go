// internal/domain/checkout/pricing.go
package checkout

import (
	"github.com/freshbasket/storefront/internal/config"
	"github.com/shopspring/decimal"
)

// Pricing computes the delivery fee and order total from a subtotal
type Pricing struct {
	FreeDeliveryThreshold decimal.Decimal
	DeliveryFee           decimal.Decimal
}

// Totals is a priced cart
type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewPricing builds pricing from checkout config
func NewPricing(cfg config.CheckoutConfig) Pricing {
	return Pricing{
		FreeDeliveryThreshold: cfg.FreeDeliveryThreshold,
		DeliveryFee:           cfg.DeliveryFee,
	}
}

// Price applies the delivery rule: free at or above the threshold
func (p Pricing) Price(subtotal decimal.Decimal) Totals {
	fee := p.DeliveryFee
	if subtotal.GreaterThanOrEqual(p.FreeDeliveryThreshold) {
		fee = decimal.Zero
	}
	return Totals{
		Subtotal:    subtotal,
		DeliveryFee: fee,
		TotalAmount: subtotal.Add(fee),
	}
}

// FreeDeliveryRemaining is how much more must be spent to drop the fee
func (p Pricing) FreeDeliveryRemaining(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(p.FreeDeliveryThreshold) {
		return decimal.Zero
	}
	return p.FreeDeliveryThreshold.Sub(subtotal)
}
