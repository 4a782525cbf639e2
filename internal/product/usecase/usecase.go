package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/fekuna/omnipos-retail-service/internal/apperr"
	"github.com/fekuna/omnipos-retail-service/internal/model"
	"github.com/fekuna/omnipos-retail-service/internal/product"
	"github.com/fekuna/omnipos-retail-service/internal/product/dto"
	"github.com/fekuna/omnipos-retail-service/pkg/cache"
	"github.com/fekuna/omnipos-retail-service/pkg/logger"
	"github.com/fekuna/omnipos-retail-service/pkg/search"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	indexName = "products"
	cacheTTL  = 5 * time.Minute
)

// listCacheTTL is short: list results may miss a sale until the listener drops them.
const listCacheTTL = time.Minute

var (
	ErrProductNotFound = apperr.NotFound("ProductNotFound", "product not found")
	ErrDescription     = apperr.Validation("DescriptionRequired", "description is required")
	ErrSupplier        = apperr.Validation("SupplierRequired", "supplier is required")
	ErrColor           = apperr.Validation("ColorRequired", "color is required")
	ErrSizeRequired    = apperr.Validation("SizeRequired", "add at least one size")
	ErrNegativeAmount  = apperr.Validation("NegativeAmount", "amounts cannot be negative")
	ErrColorIDRequired = apperr.Validation("ColorRequired", "choose a color")
)

// Cache stores catalog snapshots and list results.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// Indexer is the product text search index.
type Indexer interface {
	CreateIndex(ctx context.Context, index, mapping string) error
	Index(ctx context.Context, index, id string, doc interface{}) error
	Search(ctx context.Context, index string, query map[string]interface{}) (*search.SearchResult, error)
}

type productUseCase struct {
	repo   product.Repository
	cache  Cache
	es     Indexer
	logger logger.ZapLogger
	now    func() time.Time
}

// NewProductUseCase builds the product use case. cache and es may be nil.
func NewProductUseCase(repo product.Repository, cache Cache, es Indexer, log logger.ZapLogger) product.UseCase {
	return &productUseCase{
		repo:   repo,
		cache:  cache,
		es:     es,
		logger: log,
		now:    time.Now,
	}
}

// GenerateCode returns an internal product code: "UPF", the year and four random digits.
func GenerateCode(now time.Time) string {
	return fmt.Sprintf("UPF%d%d", now.Year(), 1000+rand.Intn(9000))
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	if strings.TrimSpace(input.Description) == "" {
		return nil, ErrDescription
	}
	if strings.TrimSpace(input.Supplier) == "" {
		return nil, ErrSupplier
	}
	if strings.TrimSpace(input.Color) == "" {
		return nil, ErrColor
	}
	if input.PurchasePrice.IsNegative() || input.FreightCost.IsNegative() ||
		input.PackagingCost.IsNegative() || input.SalePrice.IsNegative() {
		return nil, ErrNegativeAmount
	}

	now := uc.now()
	code := strings.TrimSpace(input.Code)
	if code == "" {
		code = GenerateCode(now)
	}

	p := &model.Product{
		BaseModel:     model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Code:          code,
		SupplierSKU:   optional(input.SupplierSKU),
		Description:   strings.TrimSpace(input.Description),
		Supplier:      strings.TrimSpace(input.Supplier),
		Color:         strings.TrimSpace(input.Color),
		PhotoURL:      optional(input.PhotoURL),
		PurchasePrice: input.PurchasePrice,
		FreightCost:   input.FreightCost,
		PackagingCost: input.PackagingCost,
		SalePrice:     input.SalePrice,
	}

	// A flat-colored product owns a single variant without a color reference.
	variant := model.Variant{
		ID:        uuid.New().String(),
		ProductID: p.ID,
		PhotoURL:  p.PhotoURL,
		CreatedAt: now,
	}
	for _, s := range input.Sizes {
		if strings.TrimSpace(s.SizeID) == "" {
			continue
		}
		variant.Stock = append(variant.Stock, model.StockEntry{
			ID:        uuid.New().String(),
			VariantID: variant.ID,
			SizeID:    s.SizeID,
			Quantity:  max(0, s.Quantity),
			Barcode:   optional(s.Barcode),
		})
	}
	if len(variant.Stock) == 0 {
		return nil, ErrSizeRequired
	}
	p.Variants = []model.Variant{variant}

	if err := uc.repo.Create(ctx, p); err != nil {
		uc.logger.Warn("failed to create product", zap.String("code", p.Code), zap.Error(err))
		return nil, err
	}
	uc.logger.Info("product created", zap.String("product_id", p.ID), zap.String("code", p.Code))

	uc.invalidateCache(ctx)
	go uc.syncToElastic(context.Background(), p)

	return p, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (uc *productUseCase) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, error) {
	// 1. Cache
	cacheKey, err := generateCacheKey(filters)
	if err == nil && uc.cache != nil {
		var cached []model.Product
		if err := uc.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	// 2. Search index, when a text query is present
	var products []model.Product
	if filters.Search != "" && uc.es != nil {
		products, err = uc.searchIndex(ctx, filters)
		if err != nil {
			uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
			products = nil
		}
	}

	// 3. DB query (fallback or standard list)
	if products == nil {
		products, err = uc.repo.FindAll(ctx, filters)
		if err != nil {
			return nil, err
		}
	}

	if cacheKey != "" && uc.cache != nil {
		if err := uc.cache.SetJSON(ctx, cacheKey, products, listCacheTTL); err != nil {
			uc.logger.Warn("failed to cache product list", zap.Error(err))
		}
	}
	return products, nil
}

func (uc *productUseCase) searchIndex(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, error) {
	must := []map[string]interface{}{
		{
			"query_string": map[string]interface{}{
				"query":  fmt.Sprintf("*%s*", escapeQuery(filters.Search)),
				"fields": []string{"description^3", "code^2", "supplier_sku", "supplier", "colors", "barcodes"},
			},
		},
	}
	if filters.Discontinued != nil {
		must = append(must, map[string]interface{}{
			"term": map[string]interface{}{"discontinued": *filters.Discontinued},
		})
	}
	q := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"must": must},
		},
		"sort": []map[string]interface{}{{"created_at": "desc"}},
		"size": 200,
	}

	res, err := uc.es.Search(ctx, indexName, q)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		ids = append(ids, hit.ID)
	}
	return uc.repo.FindByIDs(ctx, ids)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`, `+`, `\+`, `-`, `\-`, `=`, `\=`, `&`, `\&`, `|`, `\|`, `>`, `\>`, `<`, `\<`,
	`!`, `\!`, `(`, `\(`, `)`, `\)`, `{`, `\{`, `}`, `\}`, `[`, `\[`, `]`, `\]`, `^`, `\^`,
	`"`, `\"`, `~`, `\~`, `*`, `\*`, `?`, `\?`, `:`, `\:`, `/`, `\/`, ` `, `\ `,
)

func escapeQuery(q string) string {
	return queryEscaper.Replace(strings.TrimSpace(q))
}

func generateCacheKey(filters *dto.ProductFilters) (string, error) {
	data, err := json.Marshal(filters)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("products:list:%x", md5.Sum(data)), nil
}

// ListActiveCatalog serves the counter catalog from the cache when possible.
func (uc *productUseCase) ListActiveCatalog(ctx context.Context) ([]model.Product, error) {
	if uc.cache != nil {
		var cached []model.Product
		err := uc.cache.GetJSON(ctx, product.CatalogCacheKey, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			uc.logger.Warn("catalog cache read failed", zap.Error(err))
		}
	}

	products, err := uc.repo.FindActiveCatalog(ctx)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.SetJSON(ctx, product.CatalogCacheKey, products, cacheTTL); err != nil {
			uc.logger.Warn("failed to cache catalog", zap.Error(err))
		}
	}
	return products, nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	p, err := uc.GetProduct(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Description) == "" {
		return nil, ErrDescription
	}
	if strings.TrimSpace(input.Supplier) == "" {
		return nil, ErrSupplier
	}
	if input.PurchasePrice.IsNegative() || input.FreightCost.IsNegative() ||
		input.PackagingCost.IsNegative() || input.SalePrice.IsNegative() {
		return nil, ErrNegativeAmount
	}

	// Update fields
	p.Description = strings.TrimSpace(input.Description)
	p.Supplier = strings.TrimSpace(input.Supplier)
	p.SupplierSKU = optional(input.SupplierSKU)
	p.PurchasePrice = input.PurchasePrice
	p.FreightCost = input.FreightCost
	p.PackagingCost = input.PackagingCost
	p.SalePrice = input.SalePrice
	if input.Discontinued != nil {
		p.Discontinued = *input.Discontinued
	}
	p.UpdatedAt = uc.now()

	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	uc.logger.Info("product updated", zap.String("product_id", p.ID))

	uc.invalidateCache(ctx)
	go uc.syncToElastic(context.Background(), p)

	return p, nil
}

// SetDiscontinued hides or restores a product. Products are never hard deleted.
func (uc *productUseCase) SetDiscontinued(ctx context.Context, id string, discontinued bool) error {
	if err := uc.repo.SetDiscontinued(ctx, id, discontinued); err != nil {
		return err
	}
	uc.logger.Info("product discontinued flag set", zap.String("product_id", id), zap.Bool("discontinued", discontinued))
	return uc.SyncProducts(ctx, []string{id})
}

func (uc *productUseCase) AddColorVariant(ctx context.Context, input *dto.AddVariantInput) (*model.Variant, error) {
	if strings.TrimSpace(input.ColorID) == "" {
		return nil, ErrColorIDRequired
	}
	if _, err := uc.GetProduct(ctx, input.ProductID); err != nil {
		return nil, err
	}

	colorID := input.ColorID
	v := &model.Variant{
		ID:        uuid.New().String(),
		ProductID: input.ProductID,
		ColorID:   &colorID,
		PhotoURL:  optional(input.PhotoURL),
		CreatedAt: uc.now(),
	}
	if err := uc.repo.AddVariant(ctx, v); err != nil {
		return nil, err
	}
	uc.logger.Info("color variant added", zap.String("product_id", v.ProductID), zap.String("color_id", colorID))

	uc.invalidateCache(ctx)
	return v, nil
}

func (uc *productUseCase) ListSuppliers(ctx context.Context, term string) ([]string, error) {
	return uc.repo.FindSuppliers(ctx, strings.TrimSpace(term))
}

func (uc *productUseCase) SyncProducts(ctx context.Context, ids []string) error {
	uc.invalidateCache(ctx)
	if uc.es == nil || len(ids) == 0 {
		return nil
	}

	products, err := uc.repo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range products {
		uc.syncToElastic(ctx, &products[i])
	}
	return nil
}

func (uc *productUseCase) invalidateCache(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.DeleteByPattern(ctx, product.CachePattern); err != nil {
		uc.logger.Warn("failed to invalidate product cache", zap.Error(err))
	}
}

const indexMapping = `{
	"mappings": {
		"properties": {
			"code": { "type": "text" },
			"supplier_sku": { "type": "text" },
			"description": { "type": "text" },
			"supplier": { "type": "text" },
			"colors": { "type": "text" },
			"barcodes": { "type": "text" },
			"discontinued": { "type": "boolean" },
			"total_stock": { "type": "integer" },
			"created_at": { "type": "date" }
		}
	}
}`

func (uc *productUseCase) syncToElastic(ctx context.Context, p *model.Product) {
	if uc.es == nil {
		return
	}
	_ = uc.es.CreateIndex(ctx, indexName, indexMapping)

	if err := uc.es.Index(ctx, indexName, p.ID, SearchDocument(p)); err != nil {
		uc.logger.Error("failed to index product", zap.String("product_id", p.ID), zap.Error(err))
	}
}

// SearchDocument flattens p for the search index.
func SearchDocument(p *model.Product) dto.SearchDocument {
	doc := dto.SearchDocument{
		ID:           p.ID,
		Code:         p.Code,
		Description:  p.Description,
		Supplier:     p.Supplier,
		Discontinued: p.Discontinued,
		TotalStock:   p.TotalStock(),
		CreatedAt:    p.CreatedAt,
		Colors:       []string{},
		Barcodes:     []string{},
	}
	if p.SupplierSKU != nil {
		doc.SupplierSKU = *p.SupplierSKU
	}
	seen := map[string]bool{}
	for i := range p.Variants {
		v := &p.Variants[i]
		if color := p.ColorOf(v); color != "" && !seen[color] {
			seen[color] = true
			doc.Colors = append(doc.Colors, color)
		}
		for _, s := range v.Stock {
			if code := s.BarcodeValue(); code != "" {
				doc.Barcodes = append(doc.Barcodes, code)
			}
		}
	}
	if p.Color != "" && !seen[p.Color] {
		doc.Colors = append(doc.Colors, p.Color)
	}
	return doc
}
