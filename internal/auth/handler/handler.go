package handler

import (
	"strings"

	"github.com/fekuna/omnipos-retail-service/internal/auth"
	"github.com/fekuna/omnipos-retail-service/internal/auth/dto"
	"github.com/fekuna/omnipos-retail-service/internal/server/respond"
	"github.com/fekuna/omnipos-retail-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	uc     auth.UseCase
	logger logger.ZapLogger
}

func NewAuthHandler(uc auth.UseCase, log logger.ZapLogger) *AuthHandler {
	return &AuthHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req dto.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err)
		return
	}

	u, err := h.uc.SignUp(c.Request.Context(), &req)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Created(c, u)
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req dto.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err)
		return
	}

	s, err := h.uc.SignIn(c.Request.Context(), &req)
	if err != nil {
		h.logger.Debug("sign in rejected", zap.Error(err))
		respond.Error(c, err)
		return
	}
	respond.OK(c, s)
}

func (h *AuthHandler) SignOut(c *gin.Context) {
	if err := h.uc.SignOut(c.Request.Context(), BearerToken(c)); err != nil {
		respond.Error(c, err)
		return
	}
	respond.NoContent(c)
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header, or "".
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
