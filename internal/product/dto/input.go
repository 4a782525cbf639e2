package dto

import "github.com/shopspring/decimal"

type CreateProductInput struct {
	Code          string          `json:"code"`
	SupplierSKU   string          `json:"supplier_sku"`
	Description   string          `json:"description"`
	Supplier      string          `json:"supplier"`
	Color         string          `json:"color"`
	PhotoURL      string          `json:"photo_url"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	FreightCost   decimal.Decimal `json:"freight_cost"`
	PackagingCost decimal.Decimal `json:"packaging_cost"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	Sizes         []SizeInput     `json:"sizes"`
}

// SizeInput is one stock line of a new product. Rows without a size are ignored.
type SizeInput struct {
	SizeID   string `json:"size_id"`
	Quantity int    `json:"quantity"`
	Barcode  string `json:"barcode"`
}

type UpdateProductInput struct {
	ID            string          `json:"-"`
	Description   string          `json:"description"`
	Supplier      string          `json:"supplier"`
	SupplierSKU   string          `json:"supplier_sku"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	FreightCost   decimal.Decimal `json:"freight_cost"`
	PackagingCost decimal.Decimal `json:"packaging_cost"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	Discontinued  *bool           `json:"discontinued"`
}

type SetDiscontinuedInput struct {
	Discontinued bool `json:"discontinued"`
}

type AddVariantInput struct {
	ProductID string `json:"-"`
	ColorID   string `json:"color_id" binding:"required"`
	PhotoURL  string `json:"photo_url"`
}
