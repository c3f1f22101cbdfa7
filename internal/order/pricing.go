package order

import "github.com/shopspring/decimal"

// PricingConfig holds the order-level pricing knobs. Values come from
// configuration, never from literals in the placement path.
type PricingConfig struct {
	TaxRate               decimal.Decimal
	ShippingFee           decimal.Decimal
	FreeShippingThreshold decimal.Decimal
}

type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals derives tax, shipping and grand total from a subtotal.
// Shipping is waived when the subtotal strictly exceeds the free-shipping
// threshold. All arithmetic is fixed point; tax rounds to cents.
func ComputeTotals(subtotal decimal.Decimal, cfg PricingConfig) Totals {
	tax := subtotal.Mul(cfg.TaxRate).Round(2)
	shipping := cfg.ShippingFee
	if subtotal.GreaterThan(cfg.FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal.Add(tax).Add(shipping),
	}
}

// LineTotal is the immutable per-line snapshot amount.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
