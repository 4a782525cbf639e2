// Package server assembles the HTTP API.
package server

import (
	"net/http"

	"github.com/fekuna/omnipos-retail-service/internal/auth"
	authHandler "github.com/fekuna/omnipos-retail-service/internal/auth/handler"
	inventoryHandler "github.com/fekuna/omnipos-retail-service/internal/inventory/handler"
	"github.com/fekuna/omnipos-retail-service/internal/media"
	productHandler "github.com/fekuna/omnipos-retail-service/internal/product/handler"
	referenceHandler "github.com/fekuna/omnipos-retail-service/internal/reference/handler"
	saleHandler "github.com/fekuna/omnipos-retail-service/internal/sale/handler"
	"github.com/fekuna/omnipos-retail-service/internal/server/middleware"
	"github.com/fekuna/omnipos-retail-service/internal/server/respond"
	"github.com/fekuna/omnipos-retail-service/pkg/i18n"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Auth      *authHandler.AuthHandler
	Reference *referenceHandler.ReferenceHandler
	Product   *productHandler.ProductHandler
	Inventory *inventoryHandler.InventoryHandler
	Sale      *saleHandler.SaleHandler
	Media     *media.Handler
}

type Options struct {
	// RateLimit in limiter notation ("100-M"). Empty disables limiting.
	RateLimit string
	Bundle    *i18n.Bundle
	Sessions  auth.UseCase
}

func NewRouter(opts Options, h Handlers) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery())
	if opts.Bundle != nil {
		r.Use(respond.WithBundle(opts.Bundle))
	}
	if opts.RateLimit != "" {
		limit, err := middleware.RateLimit(opts.RateLimit)
		if err != nil {
			return nil, err
		}
		r.Use(limit)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// --- Public API Group ---
	public := r.Group("/api/v1")
	{
		a := public.Group("/auth")
		a.POST("/signup", h.Auth.SignUp)
		a.POST("/signin", h.Auth.SignIn)
		a.POST("/signout", h.Auth.SignOut)
	}

	// --- Protected API Group ---
	protected := r.Group("/api/v1")
	protected.Use(middleware.RequireSession(opts.Sessions))
	{
		protected.GET("/sizes", h.Reference.ListSizes)
		protected.POST("/sizes", h.Reference.CreateSize)
		protected.GET("/colors", h.Reference.ListColors)
		protected.POST("/colors", h.Reference.CreateColor)

		products := protected.Group("/products")
		products.GET("", h.Product.ListProducts)
		products.POST("", h.Product.CreateProduct)
		products.GET("/:id", h.Product.GetProduct)
		products.PUT("/:id", h.Product.UpdateProduct)
		products.PATCH("/:id/discontinued", h.Product.SetDiscontinued)
		products.POST("/:id/variants", h.Product.AddColorVariant)
		protected.GET("/suppliers", h.Product.ListSuppliers)

		protected.GET("/catalog", h.Product.Catalog)
		protected.GET("/catalog/barcodes/:code", h.Product.ResolveBarcode)

		protected.POST("/variants/:id/stock", h.Inventory.AddStockEntry)
		protected.POST("/stock/:id/adjust", h.Inventory.AdjustStock)
		protected.PUT("/stock/:id/barcode", h.Inventory.SetBarcode)
		protected.GET("/stock/movements", h.Inventory.ListMovements)

		sales := protected.Group("/sales")
		sales.POST("", h.Sale.RecordSale)
		sales.GET("", h.Sale.ListSales)
		sales.GET("/metrics", h.Sale.Metrics)
		sales.GET("/:id", h.Sale.GetSale)
		sales.POST("/:id/cancel", h.Sale.CancelSale)
		sales.DELETE("/:id", h.Sale.DeleteSale)

		protected.GET("/media/url", h.Media.ResolveURL)
		protected.GET("/media/path", h.Media.NewObjectPath)
	}

	return r, nil
}
