// Package catalog holds the session-local snapshot of active products used by the counter.
package catalog

import (
	"context"
	"strings"
	"sync"

	"github.com/fekuna/omnipos-retail-service/internal/apperr"
	"github.com/fekuna/omnipos-retail-service/internal/model"
)

// SearchLimit caps the results of the counter search box.
const SearchLimit = 6

var ErrBarcodeNotFound = apperr.NotFound("BarcodeNotFound", "no product found for barcode")

// Loader fetches the full active catalog, products newest first with stock entries in size order.
type Loader interface {
	ListActiveCatalog(ctx context.Context) ([]model.Product, error)
}

// Match is a resolved sellable unit.
type Match struct {
	Product *model.Product
	Variant *model.Variant
	Stock   *model.StockEntry
}

func (m Match) Description() string {
	return m.Product.ItemDescription(m.Variant, m.Stock)
}

type Cache struct {
	loader Loader

	mu       sync.RWMutex
	products []model.Product
}

func NewCache(loader Loader) *Cache {
	return &Cache{loader: loader}
}

// Snapshot wraps an already loaded product list. Load on it is a no-op.
func Snapshot(products []model.Product) *Cache {
	return &Cache{products: products}
}

// Load replaces the snapshot. On error the previous snapshot stays in place.
func (c *Cache) Load(ctx context.Context) error {
	if c.loader == nil {
		return nil
	}
	products, err := c.loader.ListActiveCatalog(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.products = products
	c.mu.Unlock()
	return nil
}

func (c *Cache) Products() []model.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.products
}

// Search matches q against description, code, supplier SKU, color or any barcode substring.
// Only products with stock are returned, at most SearchLimit of them.
func (c *Cache) Search(q string) []model.Product {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []model.Product
	for i := range c.products {
		p := &c.products[i]
		if p.TotalStock() <= 0 {
			continue
		}
		if !matchesText(p, q) && !matchesBarcode(p, q) {
			continue
		}
		out = append(out, *p)
		if len(out) == SearchLimit {
			break
		}
	}
	return out
}

// Filter is the dashboard filter. An empty query returns every product.
func (c *Cache) Filter(q string) []model.Product {
	q = strings.ToLower(strings.TrimSpace(q))

	c.mu.RLock()
	defer c.mu.RUnlock()

	if q == "" {
		return append([]model.Product(nil), c.products...)
	}
	var out []model.Product
	for i := range c.products {
		if matchesText(&c.products[i], q) {
			out = append(out, c.products[i])
		}
	}
	return out
}

func (c *Cache) Find(productID string) (*model.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.products {
		if c.products[i].ID == productID {
			p := c.products[i]
			return &p, true
		}
	}
	return nil, false
}

// Resolve finds the stock entry carrying exactly code. Barcodes are unique, so the first hit wins.
func (c *Cache) Resolve(code string) (Match, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Match{}, ErrBarcodeNotFound.WithData(map[string]interface{}{"Code": code})
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := range c.products {
		p := c.products[i]
		for j := range p.Variants {
			v := &p.Variants[j]
			for k := range v.Stock {
				if v.Stock[k].BarcodeValue() == code {
					return Match{Product: &p, Variant: v, Stock: &v.Stock[k]}, nil
				}
			}
		}
	}
	return Match{}, ErrBarcodeNotFound.WithData(map[string]interface{}{"Code": code})
}

// Locate returns the match for a stock entry id within the snapshot.
func (c *Cache) Locate(productID, stockEntryID string) (Match, bool) {
	p, ok := c.Find(productID)
	if !ok {
		return Match{}, false
	}
	for j := range p.Variants {
		v := &p.Variants[j]
		for k := range v.Stock {
			if v.Stock[k].ID == stockEntryID {
				return Match{Product: p, Variant: v, Stock: &v.Stock[k]}, true
			}
		}
	}
	return Match{}, false
}

func matchesText(p *model.Product, q string) bool {
	if strings.Contains(strings.ToLower(p.Description), q) ||
		strings.Contains(strings.ToLower(p.Code), q) ||
		strings.Contains(strings.ToLower(p.Color), q) {
		return true
	}
	if p.SupplierSKU != nil && strings.Contains(strings.ToLower(*p.SupplierSKU), q) {
		return true
	}
	for i := range p.Variants {
		if name := p.Variants[i].ColorName; name != nil && strings.Contains(strings.ToLower(*name), q) {
			return true
		}
	}
	return false
}

func matchesBarcode(p *model.Product, q string) bool {
	for i := range p.Variants {
		for _, s := range p.Variants[i].Stock {
			if strings.Contains(strings.ToLower(s.BarcodeValue()), q) {
				return true
			}
		}
	}
	return false
}
