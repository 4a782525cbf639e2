// Package pricing keeps a product's cost, margin and sale price consistent while one of them is edited.
package pricing

import "github.com/shopspring/decimal"

// FallbackMargin is reported when the cost is zero and a markup cannot be computed.
var FallbackMargin = decimal.NewFromInt(100)

var hundred = decimal.NewFromInt(100)

type Field int

const (
	FieldPurchasePrice Field = iota
	FieldFreight
	FieldPackaging
	FieldMargin
	FieldSalePrice
)

// Financials are the editable money fields of a product. Margin is a markup over cost, in percent.
type Financials struct {
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	Freight       decimal.Decimal `json:"freight_cost"`
	Packaging     decimal.Decimal `json:"packaging_cost"`
	Margin        decimal.Decimal `json:"margin"`
	SalePrice     decimal.Decimal `json:"sale_price"`
}

func (f Financials) Cost() decimal.Decimal {
	return f.PurchasePrice.Add(f.Freight).Add(f.Packaging)
}

// Recalculate derives the dependent field after edited changed. Editing the sale price
// recomputes the margin; editing anything else recomputes the sale price.
func Recalculate(f Financials, edited Field) Financials {
	if edited == FieldSalePrice {
		f.Margin = MarginOf(f.Cost(), f.SalePrice)
		return f
	}
	f.SalePrice = SalePriceOf(f.Cost(), f.Margin)
	return f
}

// MarginOf returns the markup of sale over cost rounded to one decimal place.
func MarginOf(cost, sale decimal.Decimal) decimal.Decimal {
	if !cost.IsPositive() {
		return FallbackMargin
	}
	return sale.Sub(cost).Div(cost).Mul(hundred).Round(1)
}

// SalePriceOf returns cost marked up by margin percent, rounded to cents.
func SalePriceOf(cost, margin decimal.Decimal) decimal.Decimal {
	return cost.Mul(decimal.NewFromInt(1).Add(margin.Div(hundred))).Round(2)
}
