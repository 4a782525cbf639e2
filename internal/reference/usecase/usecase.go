package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-retail-service/internal/apperr"
	"github.com/fekuna/omnipos-retail-service/internal/model"
	"github.com/fekuna/omnipos-retail-service/internal/reference"
	"github.com/fekuna/omnipos-retail-service/internal/reference/dto"
	"github.com/fekuna/omnipos-retail-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrNameRequired = apperr.Validation("NameRequired", "name is required")

type referenceUseCase struct {
	repo   reference.Repository
	logger logger.ZapLogger
}

func NewReferenceUseCase(repo reference.Repository, log logger.ZapLogger) reference.UseCase {
	return &referenceUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *referenceUseCase) ListSizes(ctx context.Context) ([]model.Size, error) {
	return uc.repo.ListSizes(ctx)
}

func (uc *referenceUseCase) ListColors(ctx context.Context) ([]model.Color, error) {
	return uc.repo.ListColors(ctx)
}

func (uc *referenceUseCase) CreateSize(ctx context.Context, input *dto.CreateReferenceInput) (*model.Size, error) {
	name, order, err := normalize(input)
	if err != nil {
		return nil, err
	}
	s := &model.Size{ID: uuid.New().String(), Name: name, SortOrder: order, CreatedAt: time.Now()}
	if err := uc.repo.CreateSize(ctx, s); err != nil {
		return nil, err
	}
	uc.logger.Info("size created", zap.String("name", s.Name), zap.Int("sort_order", s.SortOrder))
	return s, nil
}

func (uc *referenceUseCase) CreateColor(ctx context.Context, input *dto.CreateReferenceInput) (*model.Color, error) {
	name, order, err := normalize(input)
	if err != nil {
		return nil, err
	}
	c := &model.Color{ID: uuid.New().String(), Name: name, SortOrder: order, CreatedAt: time.Now()}
	if err := uc.repo.CreateColor(ctx, c); err != nil {
		return nil, err
	}
	uc.logger.Info("color created", zap.String("name", c.Name), zap.Int("sort_order", c.SortOrder))
	return c, nil
}

// normalize trims the name. A missing sort order becomes -1, which the repository
// turns into "after the last row".
func normalize(input *dto.CreateReferenceInput) (string, int, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return "", 0, ErrNameRequired
	}
	order := -1
	if input.SortOrder != nil && *input.SortOrder >= 0 {
		order = *input.SortOrder
	}
	return name, order, nil
}
