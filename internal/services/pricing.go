package services

import (
	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

// DefaultShippingFee is the flat surcharge added to every order.
const DefaultShippingFee = 50

// Pricing computes order totals with decimal arithmetic so that float prices
// never drift across a sum.
type Pricing struct {
	shippingFee decimal.Decimal
}

// NewPricing creates a Pricing with a fixed shipping fee.
func NewPricing(shippingFee float64) Pricing {
	return Pricing{shippingFee: decimal.NewFromFloat(shippingFee)}
}

// ShippingFee returns the flat surcharge.
func (p Pricing) ShippingFee() float64 {
	return p.shippingFee.InexactFloat64()
}

// Subtotal returns sum(price * quantity).
func (p Pricing) Subtotal(items []models.OrderItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return sum
}

// Total returns the subtotal plus the shipping fee, rounded to cents.
func (p Pricing) Total(items []models.OrderItem) float64 {
	return p.Subtotal(items).Add(p.shippingFee).Round(2).InexactFloat64()
}

// Matches reports whether total equals the computed total to the cent.
func (p Pricing) Matches(items []models.OrderItem, total float64) bool {
	computed := p.Subtotal(items).Add(p.shippingFee).Round(2)
	return decimal.NewFromFloat(total).Round(2).Equal(computed)
}
