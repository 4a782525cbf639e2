package dto

import "time"

type ProductFilters struct {
	Search       string // description, code, supplier sku, color or barcode
	Discontinued *bool
}

// SearchDocument is the product as indexed for text search.
type SearchDocument struct {
	ID           string    `json:"id"`
	Code         string    `json:"code"`
	SupplierSKU  string    `json:"supplier_sku"`
	Description  string    `json:"description"`
	Supplier     string    `json:"supplier"`
	Colors       []string  `json:"colors"`
	Barcodes     []string  `json:"barcodes"`
	Discontinued bool      `json:"discontinued"`
	TotalStock   int       `json:"total_stock"`
	CreatedAt    time.Time `json:"created_at"`
}
