package product

import (
	"context"

	"github.com/fekuna/omnipos-retail-service/internal/model"
	"github.com/fekuna/omnipos-retail-service/internal/product/dto"
)

// Cache keys. Every key matching CachePattern is dropped when a product or its stock changes.
const (
	CatalogCacheKey = "products:catalog"
	CachePattern    = "products:*"
)

type UseCase interface {
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, error)
	ListActiveCatalog(ctx context.Context) ([]model.Product, error)
	UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error)
	SetDiscontinued(ctx context.Context, id string, discontinued bool) error

	// Variant ops
	AddColorVariant(ctx context.Context, input *dto.AddVariantInput) (*model.Variant, error)

	ListSuppliers(ctx context.Context, term string) ([]string, error)

	// SyncProducts drops cached catalog data and re-indexes the given products after stock changed elsewhere.
	SyncProducts(ctx context.Context, ids []string) error
}
