// Package pricing derives shipping, tax and grand totals from a cart subtotal.
//
// All arithmetic stays exact; rounding to cents (banker's rounding) happens
// only when a Quote is rendered or persisted.
package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/config"
)

// CentsPlaces is the number of decimal places shown to shoppers.
const CentsPlaces = 2

// Policy holds the storefront's shipping and tax constants.
type Policy struct {
	FreeShippingThreshold decimal.Decimal
	FlatShipping          decimal.Decimal
	TaxRate               decimal.Decimal
}

// DefaultPolicy is free shipping from 50.00, 9.99 flat otherwise, 8% tax.
func DefaultPolicy() Policy {
	return Policy{
		FreeShippingThreshold: decimal.RequireFromString("50.00"),
		FlatShipping:          decimal.RequireFromString("9.99"),
		TaxRate:               decimal.RequireFromString("0.08"),
	}
}

// PolicyFromConfig parses the decimal strings carried by config.
func PolicyFromConfig(cfg config.PricingConfig) (Policy, error) {
	threshold, err := parse("free shipping threshold", cfg.FreeShippingThreshold)
	if err != nil {
		return Policy{}, err
	}
	flat, err := parse("flat shipping", cfg.FlatShipping)
	if err != nil {
		return Policy{}, err
	}
	rate, err := parse("tax rate", cfg.TaxRate)
	if err != nil {
		return Policy{}, err
	}
	return Policy{FreeShippingThreshold: threshold, FlatShipping: flat, TaxRate: rate}, nil
}

func parse(name, raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("pricing: %s: %w", name, err)
	}
	if value.IsNegative() {
		return decimal.Zero, fmt.Errorf("pricing: %s must not be negative", name)
	}
	return value, nil
}

// QualifiesForFreeShipping reports whether subtotal reaches the threshold.
// The threshold itself qualifies.
func (p Policy) QualifiesForFreeShipping(subtotal decimal.Decimal) bool {
	return subtotal.GreaterThanOrEqual(p.FreeShippingThreshold)
}

// Shipping is zero for a qualifying subtotal and the flat fee otherwise,
// including for an empty cart.
func (p Policy) Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if p.QualifiesForFreeShipping(subtotal) {
		return decimal.Zero
	}
	return p.FlatShipping
}

// Tax applies the rate to the unrounded subtotal.
func (p Policy) Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(p.TaxRate)
}

// GrandTotal is subtotal + shipping + tax, unrounded.
func (p Policy) GrandTotal(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Add(p.Shipping(subtotal)).Add(p.Tax(subtotal))
}

// AmountToFreeShipping is how much more the shopper must add to qualify.
func (p Policy) AmountToFreeShipping(subtotal decimal.Decimal) decimal.Decimal {
	if p.QualifiesForFreeShipping(subtotal) {
		return decimal.Zero
	}
	return p.FreeShippingThreshold.Sub(subtotal)
}

// Quote is every derived figure for one subtotal, kept exact.
type Quote struct {
	Subtotal             decimal.Decimal
	Shipping             decimal.Decimal
	Tax                  decimal.Decimal
	Total                decimal.Decimal
	AmountToFreeShipping decimal.Decimal
}

// Quote derives the full breakdown for subtotal.
func (p Policy) Quote(subtotal decimal.Decimal) Quote {
	return Quote{
		Subtotal:             subtotal,
		Shipping:             p.Shipping(subtotal),
		Tax:                  p.Tax(subtotal),
		Total:                p.GrandTotal(subtotal),
		AmountToFreeShipping: p.AmountToFreeShipping(subtotal),
	}
}

// FreeShipping reports whether the quote ships for free.
func (q Quote) FreeShipping() bool {
	return q.Shipping.IsZero()
}

// Rounded returns the quote with every figure rounded half-even to cents,
// for persistence.
func (q Quote) Rounded() Quote {
	return Quote{
		Subtotal:             Round(q.Subtotal),
		Shipping:             Round(q.Shipping),
		Tax:                  Round(q.Tax),
		Total:                Round(q.Total),
		AmountToFreeShipping: Round(q.AmountToFreeShipping),
	}
}

// Summary is the display form of a Quote.
type Summary struct {
	Subtotal             string `json:"subtotal"`
	Shipping             string `json:"shipping"`
	Tax                  string `json:"tax"`
	Total                string `json:"total"`
	FreeShipping         bool   `json:"free_shipping"`
	AmountToFreeShipping string `json:"amount_to_free_shipping"`
}

// Summary formats each figure with two decimals using banker's rounding.
func (q Quote) Summary() Summary {
	return Summary{
		Subtotal:             Format(q.Subtotal),
		Shipping:             Format(q.Shipping),
		Tax:                  Format(q.Tax),
		Total:                Format(q.Total),
		FreeShipping:         q.FreeShipping(),
		AmountToFreeShipping: Format(q.AmountToFreeShipping),
	}
}

// Round rounds half-even to cents.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(CentsPlaces)
}

// Format renders d as a fixed two decimal string, rounding half-even.
func Format(d decimal.Decimal) string {
	return d.StringFixedBank(CentsPlaces)
}

// WithinTolerance reports whether two amounts differ by at most tolerance.
func WithinTolerance(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}
