package checkout

import "github.com/shopspring/decimal"

// DisplayPlaces is the number of decimal places used when presenting money
const DisplayPlaces int32 = 2

// Totals are derived from a cart and never stored on their own
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Display returns the totals rounded for presentation.
// Intermediate calculations always use the unrounded values.
func (t Totals) Display() Totals {
	return Totals{
		Subtotal: t.Subtotal.Round(DisplayPlaces),
		Tax:      t.Tax.Round(DisplayPlaces),
		Discount: t.Discount.Round(DisplayPlaces),
		Total:    t.Total.Round(DisplayPlaces),
	}
}

// LineAmounts are the per-line figures behind the cart totals
type LineAmounts struct {
	Subtotal decimal.Decimal // quantity * unit price
	Taxable  decimal.Decimal // subtotal - line discount, never negative
	Tax      decimal.Decimal
}

// ComputeLine calculates the amounts for a single line
func ComputeLine(line CartLine) LineAmounts {
	subtotal := line.Quantity.Mul(line.UnitPrice)
	taxable := subtotal.Sub(line.LineDiscount)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}
	return LineAmounts{
		Subtotal: subtotal,
		Taxable:  taxable,
		Tax:      taxable.Mul(line.TaxRate).Div(hundred),
	}
}

// ComputeTotals turns a cart into its totals. It is pure: the cart is not modified.
//
// The bill discount is taken from the line subtotal, after per-line tax has been
// computed, so the tax amount is not affected by the bill discount.
func ComputeTotals(cart *Cart) Totals {
	if cart == nil {
		return zeroTotals()
	}
	return computeTotals(cart.lines, cart.billDiscountPercent)
}

// ComputeStateTotals is ComputeTotals for a serialized cart
func ComputeStateTotals(state CartState) Totals {
	return computeTotals(state.Lines, state.BillDiscountPercent)
}

func computeTotals(lines []CartLine, billDiscountPercent decimal.Decimal) Totals {
	subtotal := decimal.Zero
	tax := decimal.Zero
	for _, line := range lines {
		amounts := ComputeLine(line)
		subtotal = subtotal.Add(amounts.Subtotal)
		tax = tax.Add(amounts.Tax)
	}

	discount := subtotal.Mul(billDiscountPercent).Div(hundred)
	total := subtotal.Add(tax).Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Discount: discount,
		Total:    total,
	}
}

func zeroTotals() Totals {
	return Totals{
		Subtotal: decimal.Zero,
		Tax:      decimal.Zero,
		Discount: decimal.Zero,
		Total:    decimal.Zero,
	}
}
