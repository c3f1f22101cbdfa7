package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func testPricing() PricingConfig {
	return PricingConfig{
		TaxRate:               decimal.RequireFromString("0.08"),
		ShippingFee:           decimal.RequireFromString("9.99"),
		FreeShippingThreshold: decimal.RequireFromString("50"),
	}
}

func TestComputeTotals_FreeShippingAboveThreshold(t *testing.T) {
	totals := ComputeTotals(decimal.RequireFromString("200.00"), testPricing())

	assert.True(t, totals.Tax.Equal(decimal.RequireFromString("16.00")), "tax: %s", totals.Tax)
	assert.True(t, totals.Shipping.IsZero(), "shipping: %s", totals.Shipping)
	assert.True(t, totals.Total.Equal(decimal.RequireFromString("216.00")), "total: %s", totals.Total)
}

func TestComputeTotals_ShippingBelowThreshold(t *testing.T) {
	totals := ComputeTotals(decimal.RequireFromString("20.00"), testPricing())

	assert.True(t, totals.Tax.Equal(decimal.RequireFromString("1.60")), "tax: %s", totals.Tax)
	assert.True(t, totals.Shipping.Equal(decimal.RequireFromString("9.99")), "shipping: %s", totals.Shipping)
	assert.True(t, totals.Total.Equal(decimal.RequireFromString("31.59")), "total: %s", totals.Total)
}

func TestComputeTotals_ThresholdIsExclusive(t *testing.T) {
	// A subtotal exactly at the threshold still pays shipping.
	totals := ComputeTotals(decimal.RequireFromString("50.00"), testPricing())

	assert.True(t, totals.Shipping.Equal(decimal.RequireFromString("9.99")), "shipping: %s", totals.Shipping)
}

func TestComputeTotals_TaxRoundsToCents(t *testing.T) {
	// 19.99 * 0.08 = 1.5992, which must land on 1.60 exactly.
	totals := ComputeTotals(decimal.RequireFromString("19.99"), testPricing())

	assert.True(t, totals.Tax.Equal(decimal.RequireFromString("1.60")), "tax: %s", totals.Tax)
	assert.True(t, totals.Total.Equal(decimal.RequireFromString("31.58")), "total: %s", totals.Total)
}

func TestLineTotal(t *testing.T) {
	got := LineTotal(decimal.RequireFromString("49.99"), 3)
	assert.True(t, got.Equal(decimal.RequireFromString("149.97")), "line total: %s", got)
}
