package model

import "time"

const (
	MovementEntry      = "entry"
	MovementExit       = "exit"
	MovementSale       = "sale"
	MovementSaleCancel = "sale_cancel"
)

// StockMovement is one ledger row per quantity change of a stock entry.
type StockMovement struct {
	ID             string    `db:"id" json:"id"`
	StockEntryID   string    `db:"stock_entry_id" json:"stock_entry_id"`
	MovementType   string    `db:"movement_type" json:"movement_type"`
	QuantityChange int       `db:"quantity_change" json:"quantity_change"`
	QuantityBefore int       `db:"quantity_before" json:"quantity_before"`
	QuantityAfter  int       `db:"quantity_after" json:"quantity_after"`
	ReferenceID    *string   `db:"reference_id" json:"reference_id"`
	Notes          string    `db:"notes" json:"notes"`
	CreatedBy      *string   `db:"created_by" json:"created_by"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
