package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentPix    PaymentMethod = "pix"
	PaymentCash   PaymentMethod = "cash"
	PaymentDebit  PaymentMethod = "debit"
	PaymentCredit PaymentMethod = "credit"
)

const MaxInstallments = 12

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentPix, PaymentCash, PaymentDebit, PaymentCredit:
		return true
	}
	return false
}

// AllowsInstallments reports whether the method may be split. Only credit can.
func (m PaymentMethod) AllowsInstallments() bool {
	return m == PaymentCredit
}

type Sale struct {
	ID            string          `db:"id" json:"id"`
	Code          int64           `db:"code" json:"code"`
	GrossTotal    decimal.Decimal `db:"gross_total" json:"gross_total"`
	NetTotal      decimal.Decimal `db:"net_total" json:"net_total"`
	Discount      decimal.Decimal `db:"discount" json:"discount"`
	PaymentMethod PaymentMethod   `db:"payment_method" json:"payment_method"`
	Installments  int             `db:"installments" json:"installments"`
	SoldBy        *string         `db:"sold_by" json:"sold_by"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	Items         []SaleItem      `db:"-" json:"items"`
}

// Cost sums the unit cost snapshot of every item.
func (s *Sale) Cost() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.Items {
		total = total.Add(it.UnitCost.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

type SaleItem struct {
	ID           string          `db:"id" json:"id"`
	SaleID       string          `db:"sale_id" json:"sale_id"`
	ProductID    string          `db:"product_id" json:"product_id"`
	StockEntryID string          `db:"stock_entry_id" json:"stock_entry_id"`
	Description  string          `db:"description" json:"description"`
	Quantity     int             `db:"quantity" json:"quantity"`
	UnitPrice    decimal.Decimal `db:"unit_price" json:"unit_price"`
	UnitCost     decimal.Decimal `db:"unit_cost" json:"unit_cost"`
	Subtotal     decimal.Decimal `db:"subtotal" json:"subtotal"`
}
