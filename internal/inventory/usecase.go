package inventory

import (
	"context"

	"github.com/fekuna/omnipos-retail-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-retail-service/internal/model"
)

type UseCase interface {
	AddStockEntry(ctx context.Context, input *dto.AddStockEntryInput) (*model.StockEntry, error)
	AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.StockEntry, error)
	SetBarcode(ctx context.Context, input *dto.SetBarcodeInput) (*model.StockEntry, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, error)
}
