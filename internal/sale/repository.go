package sale

import (
	"context"

	"github.com/fekuna/omnipos-retail-service/internal/model"
	"github.com/fekuna/omnipos-retail-service/internal/sale/dto"
)

type Repository interface {
	// Record inserts the sale, decrements every stock entry and logs the movements
	// in one transaction. A short item aborts the whole sale.
	Record(ctx context.Context, input *dto.RecordSaleInput) (*model.Sale, error)
	FindByID(ctx context.Context, id string) (*model.Sale, error)
	FindAll(ctx context.Context, filters *dto.SaleFilters) ([]model.Sale, error)

	// Cancel restocks every item and deletes the sale in one transaction.
	Cancel(ctx context.Context, id, userID string) (*model.Sale, error)
	Delete(ctx context.Context, id string) error
}
