package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fekuna/omnipos-retail-service/internal/apperr"
	"github.com/fekuna/omnipos-retail-service/internal/auth"
	"github.com/fekuna/omnipos-retail-service/internal/auth/dto"
	"github.com/fekuna/omnipos-retail-service/internal/model"
	"github.com/fekuna/omnipos-retail-service/pkg/logger"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

var (
	ErrInvalidCredentials = apperr.Unauthorized("InvalidCredentials", "invalid email or password")
	ErrSessionRequired    = apperr.Unauthorized("SessionRequired", "sign in to continue")
	ErrWeakCredentials    = apperr.Validation("WeakCredentials", "a valid email and a password of at least 6 characters are required")
)

// SessionStore keeps active session ids until they expire or are revoked.
type SessionStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, keys ...string) error
}

type Config struct {
	SecretKey  string
	SessionTTL time.Duration
}

type authUseCase struct {
	repo     auth.Repository
	sessions SessionStore
	cfg      Config
	logger   logger.ZapLogger
}

func NewAuthUseCase(repo auth.Repository, sessions SessionStore, cfg Config, log logger.ZapLogger) auth.UseCase {
	return &authUseCase{
		repo:     repo,
		sessions: sessions,
		cfg:      cfg,
		logger:   log,
	}
}

func sessionKey(id string) string {
	return "session:" + id
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (uc *authUseCase) SignUp(ctx context.Context, input *dto.Credentials) (*model.User, error) {
	email := normalizeEmail(input.Email)
	if !strings.Contains(email, "@") || len(input.Password) < minPasswordLength {
		return nil, ErrWeakCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err, "failed to hash password")
	}

	u := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := uc.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	uc.logger.Info("user signed up", zap.String("user_id", u.ID))
	return u, nil
}

func (uc *authUseCase) SignIn(ctx context.Context, input *dto.Credentials) (*dto.Session, error) {
	u, err := uc.repo.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	exp := now.Add(uc.cfg.SessionTTL)
	sessionID := uuid.New().String()
	claims := &dto.Claims{
		UserID: u.ID,
		Email:  u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(uc.cfg.SecretKey))
	if err != nil {
		return nil, apperr.Internal(err, "failed to sign session")
	}

	if err := uc.sessions.Set(ctx, sessionKey(sessionID), u.ID, uc.cfg.SessionTTL); err != nil {
		return nil, apperr.Internal(err, "failed to store session")
	}
	uc.logger.Info("user signed in", zap.String("user_id", u.ID))

	return &dto.Session{Token: token, ExpiresAt: exp, UserID: u.ID}, nil
}

func (uc *authUseCase) SignOut(ctx context.Context, token string) error {
	claims, err := uc.parse(token)
	if err != nil {
		return err
	}
	return uc.sessions.Delete(ctx, sessionKey(claims.ID))
}

// Authenticate accepts a token with a valid signature whose session has not been revoked.
func (uc *authUseCase) Authenticate(ctx context.Context, token string) (*dto.Claims, error) {
	claims, err := uc.parse(token)
	if err != nil {
		return nil, err
	}
	active, err := uc.sessions.Exists(ctx, sessionKey(claims.ID))
	if err != nil {
		return nil, apperr.Internal(err, "failed to check session")
	}
	if !active {
		return nil, ErrSessionRequired
	}
	return claims, nil
}

func (uc *authUseCase) parse(token string) (*dto.Claims, error) {
	if token == "" {
		return nil, ErrSessionRequired
	}
	parsed, err := jwt.ParseWithClaims(token, &dto.Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(uc.cfg.SecretKey), nil
	})
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindUnauthorized, "SessionRequired", "invalid session")
	}
	claims, ok := parsed.Claims.(*dto.Claims)
	if !ok || !parsed.Valid || claims.ID == "" {
		return nil, ErrSessionRequired
	}
	return claims, nil
}
