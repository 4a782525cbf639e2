package handler

import (
	"strconv"

	"github.com/fekuna/omnipos-retail-service/internal/catalog"
	"github.com/fekuna/omnipos-retail-service/internal/product"
	"github.com/fekuna/omnipos-retail-service/internal/product/dto"
	"github.com/fekuna/omnipos-retail-service/internal/server/respond"
	"github.com/fekuna/omnipos-retail-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProductHandler struct {
	uc     product.UseCase
	logger logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{
		uc:     uc,
		logger: log,
	}
}

// --- Products ---

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req dto.CreateProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err)
		return
	}

	p, err := h.uc.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create product", zap.Error(err))
		respond.Error(c, err)
		return
	}
	respond.Created(c, p)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	p, err := h.uc.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, p)
}

// ListProducts accepts ?q= and ?discontinued=true|false.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	filters := &dto.ProductFilters{Search: c.Query("q")}
	if raw := c.Query("discontinued"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			respond.BadRequest(c, err)
			return
		}
		filters.Discontinued = &b
	}

	products, err := h.uc.ListProducts(c.Request.Context(), filters)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, products)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req dto.UpdateProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err)
		return
	}
	req.ID = c.Param("id")

	p, err := h.uc.UpdateProduct(c.Request.Context(), &req)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, p)
}

func (h *ProductHandler) SetDiscontinued(c *gin.Context) {
	var req dto.SetDiscontinuedInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err)
		return
	}

	if err := h.uc.SetDiscontinued(c.Request.Context(), c.Param("id"), req.Discontinued); err != nil {
		respond.Error(c, err)
		return
	}
	respond.NoContent(c)
}

// --- Variants ---

func (h *ProductHandler) AddColorVariant(c *gin.Context) {
	var req dto.AddVariantInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err)
		return
	}
	req.ProductID = c.Param("id")

	v, err := h.uc.AddColorVariant(c.Request.Context(), &req)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Created(c, v)
}

func (h *ProductHandler) ListSuppliers(c *gin.Context) {
	suppliers, err := h.uc.ListSuppliers(c.Request.Context(), c.Query("q"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, suppliers)
}

// --- Counter catalog ---

func (h *ProductHandler) Catalog(c *gin.Context) {
	products, err := h.uc.ListActiveCatalog(c.Request.Context())
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, products)
}

// ResolveBarcode finds the sellable unit carrying the scanned code.
func (h *ProductHandler) ResolveBarcode(c *gin.Context) {
	products, err := h.uc.ListActiveCatalog(c.Request.Context())
	if err != nil {
		respond.Error(c, err)
		return
	}

	m, err := catalog.Snapshot(products).Resolve(c.Param("code"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, gin.H{
		"product":     m.Product,
		"variant":     m.Variant,
		"stock":       m.Stock,
		"description": m.Description(),
	})
}
