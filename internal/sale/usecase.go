package sale

import (
	"context"

	"github.com/fekuna/omnipos-retail-service/internal/model"
	"github.com/fekuna/omnipos-retail-service/internal/sale/dto"
)

type UseCase interface {
	RecordSale(ctx context.Context, input *dto.RecordSaleInput) (*model.Sale, error)
	GetSale(ctx context.Context, id string) (*model.Sale, error)
	ListSales(ctx context.Context, filters *dto.SaleFilters) ([]model.Sale, error)
	Metrics(ctx context.Context, filters *dto.SaleFilters) (*dto.Metrics, error)
	CancelSale(ctx context.Context, id, userID string) error
	DeleteSale(ctx context.Context, id string) error
}
