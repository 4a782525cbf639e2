package auth

import (
	"context"

	"github.com/fekuna/omnipos-retail-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}
