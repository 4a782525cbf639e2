package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fekuna/omnipos-retail-service/internal/apperr"
	"github.com/fekuna/omnipos-retail-service/internal/auth"
	authDto "github.com/fekuna/omnipos-retail-service/internal/auth/dto"
	authHandler "github.com/fekuna/omnipos-retail-service/internal/auth/handler"
	"github.com/fekuna/omnipos-retail-service/internal/model"
	referenceDto "github.com/fekuna/omnipos-retail-service/internal/reference/dto"
	referenceHandler "github.com/fekuna/omnipos-retail-service/internal/reference/handler"
	"github.com/fekuna/omnipos-retail-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSessions struct{}

func (stubSessions) SignUp(ctx context.Context, in *authDto.Credentials) (*model.User, error) {
	return &model.User{Email: in.Email}, nil
}

func (stubSessions) SignIn(ctx context.Context, in *authDto.Credentials) (*authDto.Session, error) {
	return &authDto.Session{Token: "good"}, nil
}

func (stubSessions) SignOut(ctx context.Context, token string) error { return nil }

func (stubSessions) Authenticate(ctx context.Context, token string) (*authDto.Claims, error) {
	if token != "good" {
		return nil, apperr.Unauthorized("SessionRequired", "sign in to continue")
	}
	c := &authDto.Claims{UserID: "u1"}
	c.ID = "s1"
	return c, nil
}

type stubReference struct {
	seenUser string
}

func (s *stubReference) ListSizes(ctx context.Context) ([]model.Size, error) {
	s.seenUser = auth.GetUserID(ctx)
	return []model.Size{{ID: "z1", Name: "P"}}, nil
}

func (s *stubReference) ListColors(ctx context.Context) ([]model.Color, error) {
	return []model.Color{}, nil
}

func (s *stubReference) CreateSize(ctx context.Context, in *referenceDto.CreateReferenceInput) (*model.Size, error) {
	return &model.Size{Name: in.Name}, nil
}

func (s *stubReference) CreateColor(ctx context.Context, in *referenceDto.CreateReferenceInput) (*model.Color, error) {
	return &model.Color{Name: in.Name}, nil
}

func newRouter(t *testing.T, rate string) (*gin.Engine, *stubReference) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ref := &stubReference{}
	r, err := NewRouter(Options{RateLimit: rate, Sessions: stubSessions{}}, Handlers{
		Auth:      authHandler.NewAuthHandler(stubSessions{}, logger.NewNop()),
		Reference: referenceHandler.NewReferenceHandler(ref, logger.NewNop()),
	})
	require.NoError(t, err)
	return r, ref
}

func do(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	r, ref := newRouter(t, "")

	w := do(r, http.MethodGet, "/api/v1/sizes", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/api/v1/sizes", "forged")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/api/v1/sizes", "good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"P"`)
	assert.Equal(t, "u1", ref.seenUser)
}

func TestHealthAndUnknownRoute(t *testing.T) {
	r, _ := newRouter(t, "")
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/v2/sizes", "good").Code)
}

func TestRateLimit(t *testing.T) {
	r, _ := newRouter(t, "2-M")
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodGet, "/healthz", "").Code)
}

func TestInvalidRateLimit(t *testing.T) {
	_, err := NewRouter(Options{RateLimit: "lots", Sessions: stubSessions{}}, Handlers{})
	assert.Error(t, err)
}
