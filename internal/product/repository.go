package product

import (
	"context"

	"github.com/fekuna/omnipos-retail-service/internal/model"
	"github.com/fekuna/omnipos-retail-service/internal/product/dto"
)

type Repository interface {
	// Create inserts the product with its variants and stock entries in one transaction.
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Product, error)
	FindAll(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, error)
	FindActiveCatalog(ctx context.Context) ([]model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	SetDiscontinued(ctx context.Context, id string, discontinued bool) error
	AddVariant(ctx context.Context, variant *model.Variant) error
	FindSuppliers(ctx context.Context, term string) ([]string, error)
}
