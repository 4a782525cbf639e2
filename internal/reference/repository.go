package reference

import (
	"context"

	"github.com/fekuna/omnipos-retail-service/internal/model"
)

type Repository interface {
	ListSizes(ctx context.Context) ([]model.Size, error)
	ListColors(ctx context.Context) ([]model.Color, error)
	CreateSize(ctx context.Context, size *model.Size) error
	CreateColor(ctx context.Context, color *model.Color) error
}
