package model

import (
	"fmt"
	"time"

	"github.com/fekuna/omnipos-retail-service/internal/pricing"
	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	Code          string          `db:"code" json:"code"`
	SupplierSKU   *string         `db:"supplier_sku" json:"supplier_sku"`
	Description   string          `db:"description" json:"description"`
	Supplier      string          `db:"supplier" json:"supplier"`
	Color         string          `db:"color" json:"color"` // flat text color of single-color products
	PhotoURL      *string         `db:"photo_url" json:"photo_url"`
	PurchasePrice decimal.Decimal `db:"purchase_price" json:"purchase_price"`
	FreightCost   decimal.Decimal `db:"freight_cost" json:"freight_cost"`
	PackagingCost decimal.Decimal `db:"packaging_cost" json:"packaging_cost"`
	SalePrice     decimal.Decimal `db:"sale_price" json:"sale_price"`
	Discontinued  bool            `db:"discontinued" json:"discontinued"`
	Variants      []Variant       `db:"-" json:"variants"`
}

// Cost is the unit cost snapshotted into carts and sales.
func (p *Product) Cost() decimal.Decimal {
	return p.PurchasePrice.Add(p.FreightCost).Add(p.PackagingCost)
}

func (p *Product) Margin() decimal.Decimal {
	return pricing.MarginOf(p.Cost(), p.SalePrice)
}

func (p *Product) Financials() pricing.Financials {
	return pricing.Financials{
		PurchasePrice: p.PurchasePrice,
		Freight:       p.FreightCost,
		Packaging:     p.PackagingCost,
		Margin:        p.Margin(),
		SalePrice:     p.SalePrice,
	}
}

func (p *Product) TotalStock() int {
	total := 0
	for _, v := range p.Variants {
		for _, s := range v.Stock {
			total += s.Quantity
		}
	}
	return total
}

// ColorOf is the display color of v: the referenced color name, else the product's flat color.
func (p *Product) ColorOf(v *Variant) string {
	if v.ColorName != nil && *v.ColorName != "" {
		return *v.ColorName
	}
	return p.Color
}

// ItemDescription is the text snapshotted on a sale line: "<description> - <color> (<size>)".
func (p *Product) ItemDescription(v *Variant, s *StockEntry) string {
	return fmt.Sprintf("%s - %s (%s)", p.Description, p.ColorOf(v), s.SizeName)
}

// Variant is one color of a product. A product created with a flat text color owns
// a single variant without a color reference.
type Variant struct {
	ID        string       `db:"id" json:"id"`
	ProductID string       `db:"product_id" json:"product_id"`
	ColorID   *string      `db:"color_id" json:"color_id"`
	ColorName *string      `db:"color_name" json:"color_name"`
	PhotoURL  *string      `db:"photo_url" json:"photo_url"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	Stock     []StockEntry `db:"-" json:"stock"`
}

// StockEntry is the on-hand quantity of one size of a variant.
type StockEntry struct {
	ID        string  `db:"id" json:"id"`
	VariantID string  `db:"variant_id" json:"variant_id"`
	SizeID    string  `db:"size_id" json:"size_id"`
	SizeName  string  `db:"size_name" json:"size_name"`
	SizeOrder int     `db:"size_order" json:"size_order"`
	Quantity  int     `db:"quantity" json:"quantity"`
	Barcode   *string `db:"barcode" json:"barcode"`
}

func (s *StockEntry) BarcodeValue() string {
	if s.Barcode == nil {
		return ""
	}
	return *s.Barcode
}
