package reference

import (
	"context"

	"github.com/fekuna/omnipos-retail-service/internal/model"
	"github.com/fekuna/omnipos-retail-service/internal/reference/dto"
)

type UseCase interface {
	ListSizes(ctx context.Context) ([]model.Size, error)
	ListColors(ctx context.Context) ([]model.Color, error)
	CreateSize(ctx context.Context, input *dto.CreateReferenceInput) (*model.Size, error)
	CreateColor(ctx context.Context, input *dto.CreateReferenceInput) (*model.Color, error)
}
