package inventory

import (
	"context"

	"github.com/fekuna/omnipos-retail-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-retail-service/internal/model"
)

type Repository interface {
	// Stock entries
	FindEntry(ctx context.Context, id string) (*dto.EntryDetail, error)
	FindVariantProductID(ctx context.Context, variantID string) (string, error)
	CreateEntry(ctx context.Context, entry *model.StockEntry) error
	SetBarcode(ctx context.Context, id string, barcode *string) error

	// Movements / Audit
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, error)

	// Transaction support
	ApplyStockChange(ctx context.Context, movement *model.StockMovement) error
}
