package handler

import (
	"github.com/fekuna/omnipos-retail-service/internal/reference"
	"github.com/fekuna/omnipos-retail-service/internal/reference/dto"
	"github.com/fekuna/omnipos-retail-service/internal/server/respond"
	"github.com/fekuna/omnipos-retail-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

type ReferenceHandler struct {
	uc     reference.UseCase
	logger logger.ZapLogger
}

func NewReferenceHandler(uc reference.UseCase, log logger.ZapLogger) *ReferenceHandler {
	return &ReferenceHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *ReferenceHandler) ListSizes(c *gin.Context) {
	sizes, err := h.uc.ListSizes(c.Request.Context())
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, sizes)
}

func (h *ReferenceHandler) CreateSize(c *gin.Context) {
	var req dto.CreateReferenceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err)
		return
	}
	s, err := h.uc.CreateSize(c.Request.Context(), &req)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Created(c, s)
}

func (h *ReferenceHandler) ListColors(c *gin.Context) {
	colors, err := h.uc.ListColors(c.Request.Context())
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, colors)
}

func (h *ReferenceHandler) CreateColor(c *gin.Context) {
	var req dto.CreateReferenceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err)
		return
	}
	col, err := h.uc.CreateColor(c.Request.Context(), &req)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Created(c, col)
}
