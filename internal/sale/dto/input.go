package dto

import (
	"github.com/fekuna/omnipos-retail-service/internal/model"
	"github.com/shopspring/decimal"
)

// RecordSaleInput is everything the sale procedure needs, computed by the counter.
type RecordSaleInput struct {
	GrossTotal    decimal.Decimal     `json:"gross_total"`
	NetTotal      decimal.Decimal     `json:"net_total"`
	Discount      decimal.Decimal     `json:"discount"`
	PaymentMethod model.PaymentMethod `json:"payment_method" binding:"required"`
	Installments  int                 `json:"installments"`
	SoldBy        string              `json:"-"`
	Items         []RecordSaleItem    `json:"items" binding:"required,min=1,dive"`
}

type RecordSaleItem struct {
	ProductID    string          `json:"product_id" binding:"required"`
	StockEntryID string          `json:"stock_entry_id" binding:"required"`
	Description  string          `json:"description"`
	Quantity     int             `json:"quantity" binding:"required,min=1"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}
