package auth

import (
	"context"

	"github.com/fekuna/omnipos-retail-service/internal/auth/dto"
	"github.com/fekuna/omnipos-retail-service/internal/model"
)

type UseCase interface {
	SignUp(ctx context.Context, input *dto.Credentials) (*model.User, error)
	SignIn(ctx context.Context, input *dto.Credentials) (*dto.Session, error)
	SignOut(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*dto.Claims, error)
}
