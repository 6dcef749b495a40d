// Package invoice holds the pure financial rules of the invoicing domain:
// line-item and aggregate computation, payment validation and status
// derivation. Nothing in here touches storage or the network.
package invoice

import (
	"errors"

	"invoicer/internal/model"

	"github.com/shopspring/decimal"
)

// ErrNoItems is the calculator's only hard failure; every numeric problem
// degrades to zero instead.
var ErrNoItems = errors.New("invoice must include at least one item")

// ItemInput is a fully merged line item ready for computation. The lifecycle
// manager resolves request-vs-existing field precedence before calling in,
// so nil here always means "absent", never "omitted by the caller".
type ItemInput struct {
	ProductID   string
	ProductName string
	Description string
	Quantity    decimal.Decimal
	Price       decimal.Decimal
	SizeLabel   string
	Length      *float64
	Width       *float64
	Area        *float64 // explicit area wins over Length*Width
	Origin      string
}

// DiscountInput describes the requested discount. AmountOverride, when set,
// bypasses the type/value pair entirely (still clamped to the subtotal).
type DiscountInput struct {
	Type           string // model.DiscountAmount | model.DiscountPercent
	Value          decimal.Decimal
	AmountOverride *decimal.Decimal
}

// Totals is the calculator result. All monetary values carry 2-decimal
// half-up rounding; recomputing from identical inputs yields identical
// output.
type Totals struct {
	Items          []model.InvoiceItem
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	Tax            decimal.Decimal
	Total          decimal.Decimal
}

// ComputeTotals turns merged line inputs, a discount spec and a tax rate
// percent into normalized items and aggregates.
//
// Per item: area-priced lines (resolved area > 0) total price*area and
// default quantity to 1; all other lines total price*quantity. Negative
// quantities and prices clamp to zero. Aggregates follow
//
//	subtotal = sum(item.total)
//	0 <= discountAmount <= subtotal
//	tax     = max(subtotal-discountAmount, 0) * taxRate/100
//	total   = max(subtotal-discountAmount, 0) + tax
func ComputeTotals(items []ItemInput, discount DiscountInput, taxRatePercent decimal.Decimal) (Totals, error) {
	if len(items) == 0 {
		return Totals{}, ErrNoItems
	}

	computed := make([]model.InvoiceItem, 0, len(items))
	subtotal := decimal.Zero

	for i, in := range items {
		quantity := in.Quantity
		if quantity.IsNegative() {
			quantity = decimal.Zero
		}
		price := in.Price
		if price.IsNegative() {
			price = decimal.Zero
		}

		area := resolveArea(in)

		var total decimal.Decimal
		if area != nil {
			total = price.Mul(decimal.NewFromFloat(*area)).Round(2)
			if quantity.IsZero() {
				quantity = decimal.NewFromInt(1)
			}
		} else {
			total = price.Mul(quantity).Round(2)
		}

		item := model.InvoiceItem{
			Position:    i,
			ProductID:   in.ProductID,
			ProductName: in.ProductName,
			Description: in.Description,
			Quantity:    quantity,
			Price:       price.Round(2),
			Total:       total,
			SizeLabel:   in.SizeLabel,
			Length:      in.Length,
			Width:       in.Width,
			Area:        area,
			Origin:      in.Origin,
		}
		computed = append(computed, item)
		subtotal = subtotal.Add(total)
	}

	subtotal = subtotal.Round(2)
	discountAmount := resolveDiscount(discount, subtotal)

	taxableBase := subtotal.Sub(discountAmount)
	if taxableBase.IsNegative() {
		taxableBase = decimal.Zero
	}
	rate := taxRatePercent
	if rate.IsNegative() {
		rate = decimal.Zero
	}
	tax := taxableBase.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)
	total := taxableBase.Add(tax).Round(2)

	return Totals{
		Items:          computed,
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		Tax:            tax,
		Total:          total,
	}, nil
}

// resolveArea prefers an explicit positive area, then falls back to
// length*width. Non-positive results mean the line is not area-priced.
func resolveArea(in ItemInput) *float64 {
	if in.Area != nil {
		if a := round2(*in.Area); a > 0 {
			return &a
		}
		return nil
	}
	if in.Length != nil && in.Width != nil {
		if a := round2(*in.Length * *in.Width); a > 0 {
			return &a
		}
	}
	return nil
}

// resolveDiscount clamps every discount path into [0, subtotal].
func resolveDiscount(d DiscountInput, subtotal decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch {
	case d.AmountOverride != nil:
		amount = *d.AmountOverride
	case d.Type == model.DiscountPercent:
		amount = subtotal.Mul(d.Value).Div(decimal.NewFromInt(100))
	default:
		amount = d.Value
	}

	if amount.IsNegative() {
		return decimal.Zero
	}
	if amount.GreaterThan(subtotal) {
		return subtotal
	}
	return amount.Round(2)
}

func round2(v float64) float64 {
	d, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return d
}
