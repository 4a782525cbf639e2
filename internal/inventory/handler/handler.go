package handler

import (
	"strconv"
	"time"

	"github.com/fekuna/omnipos-retail-service/internal/apperr"
	"github.com/fekuna/omnipos-retail-service/internal/auth"
	"github.com/fekuna/omnipos-retail-service/internal/inventory"
	"github.com/fekuna/omnipos-retail-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-retail-service/internal/server/respond"
	"github.com/fekuna/omnipos-retail-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *InventoryHandler) AddStockEntry(c *gin.Context) {
	var req dto.AddStockEntryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err)
		return
	}
	req.VariantID = c.Param("id")

	entry, err := h.uc.AddStockEntry(c.Request.Context(), &req)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Created(c, entry)
}

func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	var req dto.AdjustStockInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err)
		return
	}
	req.StockEntryID = c.Param("id")
	req.UserID = auth.GetUserID(c.Request.Context())

	entry, err := h.uc.AdjustStock(c.Request.Context(), &req)
	if err != nil {
		h.logger.Warn("stock adjustment rejected", zap.String("stock_entry_id", req.StockEntryID), zap.Error(err))
		respond.Error(c, err)
		return
	}
	respond.OK(c, entry)
}

func (h *InventoryHandler) SetBarcode(c *gin.Context) {
	var req dto.SetBarcodeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err)
		return
	}
	req.StockEntryID = c.Param("id")

	entry, err := h.uc.SetBarcode(c.Request.Context(), &req)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, entry)
}

// ListMovements accepts ?entry=, ?type=, ?from=, ?to= (YYYY-MM-DD) and ?limit=.
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	filters := &dto.MovementFilters{
		StockEntryID: c.Query("entry"),
		MovementType: c.Query("type"),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			respond.BadRequest(c, err)
			return
		}
		filters.Limit = limit
	}
	for param, dst := range map[string]**time.Time{"from": &filters.From, "to": &filters.To} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		day, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			respond.Error(c, apperr.Validation("InvalidDate", "dates must use the YYYY-MM-DD format").WithData(map[string]interface{}{"Param": param}))
			return
		}
		*dst = &day
	}

	movements, err := h.uc.ListMovements(c.Request.Context(), filters)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, movements)
}
