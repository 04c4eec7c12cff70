package core

import (
	"github.com/shopspring/decimal"
)

// Surcharge policy. Rates apply to the subtotal only; the discount is a
// percentage of the subtotal as well, never of the taxed total.
var (
	GSTRate           = decimal.NewFromFloat(0.16)
	ServiceChargeRate = decimal.NewFromFloat(0.10)
)

// CartLine is one requested line of a checkout: product plus quantity.
// Prices are never accepted from the caller — the catalog is the only price
// source at the time of sale.
type CartLine struct {
	ProductID int
	Quantity  int
}

// PricedLine is a cart line after catalog resolution.
type PricedLine struct {
	ProductID int
	Code      string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Totals is the monetary breakdown of a checkout. Subtotal, GST,
// ServiceCharge and Discount carry full precision; Total is rounded to
// currency precision and Change is computed against the rounded total.
type Totals struct {
	Subtotal      decimal.Decimal
	GST           decimal.Decimal
	ServiceCharge decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	Change        decimal.Decimal
}

// ComputeTotals derives the full monetary breakdown for a priced cart.
//
//	subtotal = Σ unitPrice × quantity
//	gst      = subtotal × 0.16
//	service  = subtotal × 0.10
//	discount = subtotal × discountPercent / 100
//	total    = round₂(subtotal + gst + service − discount)
//	change   = max(0, amountPaid − total)
//
// It fails with ValidationError when the cart is empty, a quantity is not
// positive, discountPercent is outside [0, 100], or amountPaid is below the
// computed total.
func ComputeTotals(lines []PricedLine, discountPercent decimal.Decimal, amountPaid decimal.Decimal) (*Totals, error) {
	if len(lines) == 0 {
		return nil, &ValidationError{Msg: "cart must contain at least one line"}
	}
	if discountPercent.IsNegative() || discountPercent.GreaterThan(decimal.NewFromInt(100)) {
		return nil, &ValidationError{Msg: "discount percent must be between 0 and 100"}
	}

	subtotal := decimal.Zero
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, &ValidationError{Msg: "line quantity must be positive for product " + l.Code}
		}
		if l.UnitPrice.IsNegative() {
			return nil, &ValidationError{Msg: "unit price must not be negative for product " + l.Code}
		}
		subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	gst := subtotal.Mul(GSTRate)
	service := subtotal.Mul(ServiceChargeRate)
	discount := subtotal.Mul(discountPercent).Div(decimal.NewFromInt(100))
	total := subtotal.Add(gst).Add(service).Sub(discount).Round(2)

	if amountPaid.LessThan(total) {
		return nil, &ValidationError{Msg: "amount paid " + amountPaid.StringFixed(2) +
			" is below total " + total.StringFixed(2)}
	}

	change := amountPaid.Sub(total)
	if change.IsNegative() {
		change = decimal.Zero
	}

	return &Totals{
		Subtotal:      subtotal,
		GST:           gst,
		ServiceCharge: service,
		Discount:      discount,
		Total:         total,
		Change:        change,
	}, nil
}
