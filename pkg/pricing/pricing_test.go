package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/config"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestShippingThreshold(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		subtotal string
		want     string
	}{
		{subtotal: "50.00", want: "0"},
		{subtotal: "49.99", want: "9.99"},
		{subtotal: "50.01", want: "0"},
		{subtotal: "0.01", want: "9.99"},
		{subtotal: "0", want: "9.99"},
	}
	for _, tt := range tests {
		t.Run(tt.subtotal, func(t *testing.T) {
			got := policy.Shipping(d(tt.subtotal))
			assert.True(t, got.Equal(d(tt.want)), "shipping for %s = %s", tt.subtotal, got)
		})
	}
}

func TestQuoteForTypicalCart(t *testing.T) {
	quote := DefaultPolicy().Quote(d("75.97"))

	assert.True(t, quote.Tax.Equal(d("6.0776")), "tax stays exact: %s", quote.Tax)
	assert.True(t, quote.Total.Equal(d("82.0476")), "total stays exact: %s", quote.Total)

	summary := quote.Summary()
	assert.Equal(t, Summary{
		Subtotal:             "75.97",
		Shipping:             "0.00",
		Tax:                  "6.08",
		Total:                "82.05",
		FreeShipping:         true,
		AmountToFreeShipping: "0.00",
	}, summary)
}

func TestQuoteBelowThreshold(t *testing.T) {
	quote := DefaultPolicy().Quote(d("20.00"))
	summary := quote.Summary()

	assert.Equal(t, "9.99", summary.Shipping)
	assert.Equal(t, "1.60", summary.Tax)
	assert.Equal(t, "31.59", summary.Total)
	assert.False(t, summary.FreeShipping)
	assert.Equal(t, "30.00", summary.AmountToFreeShipping)
}

func TestQuoteForEmptyCartChargesFlatShipping(t *testing.T) {
	summary := DefaultPolicy().Quote(decimal.Zero).Summary()

	assert.Equal(t, "0.00", summary.Subtotal)
	assert.Equal(t, "9.99", summary.Shipping)
	assert.Equal(t, "0.00", summary.Tax)
	assert.Equal(t, "9.99", summary.Total)
	assert.False(t, summary.FreeShipping)
	assert.Equal(t, "50.00", summary.AmountToFreeShipping)
}

func TestRoundingIsHalfEven(t *testing.T) {
	assert.Equal(t, "0.12", Format(d("0.125")))
	assert.Equal(t, "0.14", Format(d("0.135")))
	assert.True(t, Round(d("2.345")).Equal(d("2.34")))
}

func TestRoundedQuote(t *testing.T) {
	rounded := DefaultPolicy().Quote(d("75.97")).Rounded()
	assert.True(t, rounded.Tax.Equal(d("6.08")))
	assert.True(t, rounded.Total.Equal(d("82.05")))
}

func TestPolicyFromConfig(t *testing.T) {
	policy, err := PolicyFromConfig(config.PricingConfig{FreeShippingThreshold: "75", FlatShipping: "4.50", TaxRate: "0.1"})
	require.NoError(t, err)
	assert.True(t, policy.Shipping(d("74.99")).Equal(d("4.50")))
	assert.True(t, policy.Shipping(d("75")).IsZero())
	assert.True(t, policy.Tax(d("10")).Equal(d("1")))

	_, err = PolicyFromConfig(config.PricingConfig{FreeShippingThreshold: "abc", FlatShipping: "1", TaxRate: "0"})
	assert.Error(t, err)
	_, err = PolicyFromConfig(config.PricingConfig{FreeShippingThreshold: "1", FlatShipping: "-1", TaxRate: "0"})
	assert.Error(t, err)
}

func TestWithinTolerance(t *testing.T) {
	tol := d("0.01")
	assert.True(t, WithinTolerance(d("75.97"), d("75.98"), tol))
	assert.False(t, WithinTolerance(d("75.97"), d("75.99"), tol))
}
