package handler

import (
	"time"

	"github.com/fekuna/omnipos-retail-service/internal/apperr"
	"github.com/fekuna/omnipos-retail-service/internal/auth"
	"github.com/fekuna/omnipos-retail-service/internal/sale"
	"github.com/fekuna/omnipos-retail-service/internal/sale/dto"
	"github.com/fekuna/omnipos-retail-service/internal/server/respond"
	"github.com/fekuna/omnipos-retail-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const dayLayout = "2006-01-02"

type SaleHandler struct {
	uc     sale.UseCase
	logger logger.ZapLogger
}

func NewSaleHandler(uc sale.UseCase, log logger.ZapLogger) *SaleHandler {
	return &SaleHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *SaleHandler) RecordSale(c *gin.Context) {
	var req dto.RecordSaleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err)
		return
	}
	req.SoldBy = auth.GetUserID(c.Request.Context())

	s, err := h.uc.RecordSale(c.Request.Context(), &req)
	if err != nil {
		h.logger.Warn("sale rejected", zap.Error(err))
		respond.Error(c, err)
		return
	}
	respond.Created(c, s)
}

func (h *SaleHandler) ListSales(c *gin.Context) {
	filters, err := parseFilters(c)
	if err != nil {
		respond.Error(c, err)
		return
	}

	sales, err := h.uc.ListSales(c.Request.Context(), filters)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, sales)
}

func (h *SaleHandler) GetSale(c *gin.Context) {
	s, err := h.uc.GetSale(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, s)
}

func (h *SaleHandler) Metrics(c *gin.Context) {
	filters, err := parseFilters(c)
	if err != nil {
		respond.Error(c, err)
		return
	}

	m, err := h.uc.Metrics(c.Request.Context(), filters)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, m)
}

func (h *SaleHandler) CancelSale(c *gin.Context) {
	userID := auth.GetUserID(c.Request.Context())
	if err := h.uc.CancelSale(c.Request.Context(), c.Param("id"), userID); err != nil {
		respond.Error(c, err)
		return
	}
	respond.NoContent(c)
}

func (h *SaleHandler) DeleteSale(c *gin.Context) {
	if err := h.uc.DeleteSale(c.Request.Context(), c.Param("id")); err != nil {
		respond.Error(c, err)
		return
	}
	respond.NoContent(c)
}

// parseFilters reads the optional from/to query days (YYYY-MM-DD, inclusive).
func parseFilters(c *gin.Context) (*dto.SaleFilters, error) {
	filters := &dto.SaleFilters{}
	for param, dst := range map[string]**time.Time{"from": &filters.From, "to": &filters.To} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		day, err := time.ParseInLocation(dayLayout, raw, time.Local)
		if err != nil {
			return nil, apperr.Validation("InvalidDate", "dates must use the YYYY-MM-DD format").WithData(map[string]interface{}{"Param": param})
		}
		*dst = &day
	}
	return filters, nil
}
