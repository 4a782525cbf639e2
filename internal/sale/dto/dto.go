package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultLimit applies when a listing has no date bound.
const DefaultLimit = 50

type SaleFilters struct {
	From  *time.Time
	To    *time.Time
	Limit int
}

// Metrics summarise a list of sales. Margin is profit over cost in percent, 0 when cost is 0.
type Metrics struct {
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
	Cost    decimal.Decimal `json:"cost"`
	Profit  decimal.Decimal `json:"profit"`
	Margin  decimal.Decimal `json:"margin"`
	Sales   []SaleProfit    `json:"sales"`
}

type SaleProfit struct {
	SaleID string          `json:"sale_id"`
	Code   int64           `json:"code"`
	Net    decimal.Decimal `json:"net"`
	Cost   decimal.Decimal `json:"cost"`
	Profit decimal.Decimal `json:"profit"`
}

// SaleEvent is published after a sale is recorded or cancelled.
type SaleEvent struct {
	EventID   string      `json:"event_id"`
	EventType string      `json:"event_type"`
	Payload   SalePayload `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

const (
	EventSaleRecorded  = "SaleRecorded"
	EventSaleCancelled = "SaleCancelled"
)

type SalePayload struct {
	SaleID string            `json:"sale_id"`
	Code   int64             `json:"code"`
	Items  []SaleItemPayload `json:"items"`
}

type SaleItemPayload struct {
	ProductID    string `json:"product_id"`
	StockEntryID string `json:"stock_entry_id"`
	Quantity     int    `json:"quantity"`
}
