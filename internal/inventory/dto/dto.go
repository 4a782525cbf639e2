package dto

import (
	"time"

	"github.com/fekuna/omnipos-retail-service/internal/model"
)

// DefaultMovementLimit bounds movement listings without a limit.
const DefaultMovementLimit = 100

type MovementFilters struct {
	StockEntryID string
	MovementType string
	From         *time.Time
	To           *time.Time
	Limit        int
}

// EntryDetail is a stock entry with the product that owns it.
type EntryDetail struct {
	model.StockEntry
	ProductID string `db:"product_id" json:"product_id"`
}
