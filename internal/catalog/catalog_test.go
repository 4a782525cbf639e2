package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fekuna/omnipos-retail-service/internal/apperr"
	"github.com/fekuna/omnipos-retail-service/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLoader struct {
	products []model.Product
	err      error
	calls    int
}

func (s *stubLoader) ListActiveCatalog(ctx context.Context) ([]model.Product, error) {
	s.calls++
	return s.products, s.err
}

func strPtr(s string) *string { return &s }

func product(id, desc string, entries ...model.StockEntry) model.Product {
	return model.Product{
		BaseModel:   model.BaseModel{ID: id},
		Code:        "UPF2025" + id,
		Description: desc,
		Color:       "Preto",
		SalePrice:   decimal.RequireFromString("49.90"),
		Variants:    []model.Variant{{ID: "v-" + id, ProductID: id, Stock: entries}},
	}
}

func loadedCache(t *testing.T, products ...model.Product) *Cache {
	t.Helper()
	c := NewCache(&stubLoader{products: products})
	require.NoError(t, c.Load(context.Background()))
	return c
}

func TestResolve(t *testing.T) {
	c := loadedCache(t,
		product("1", "Blusa", model.StockEntry{ID: "s1", SizeName: "P", Quantity: 3, Barcode: strPtr("789100")}),
		product("2", "Saia", model.StockEntry{ID: "s2", SizeName: "M", Quantity: 0, Barcode: strPtr("789200")}),
	)

	m, err := c.Resolve("  789200\n")
	require.NoError(t, err)
	assert.Equal(t, "2", m.Product.ID)
	assert.Equal(t, "s2", m.Stock.ID)
	assert.Equal(t, "Saia - Preto (M)", m.Description())
}

func TestResolveEveryBarcode(t *testing.T) {
	const products, variants, sizes = 4, 3, 5
	type want struct{ product, variant, stock string }
	expected := map[string]want{}

	var all []model.Product
	for p := 0; p < products; p++ {
		prod := model.Product{
			BaseModel:   model.BaseModel{ID: fmt.Sprint("p", p)},
			Description: fmt.Sprint("Produto ", p),
			Color:       "Preto",
		}
		for v := 0; v < variants; v++ {
			variant := model.Variant{ID: fmt.Sprintf("p%d-v%d", p, v), ProductID: prod.ID}
			for z := 0; z < sizes; z++ {
				code := fmt.Sprintf("789%02d%02d%02d", p, v, z)
				entry := model.StockEntry{
					ID:        fmt.Sprintf("p%d-v%d-s%d", p, v, z),
					VariantID: variant.ID,
					Quantity:  z,
					Barcode:   strPtr(code),
				}
				variant.Stock = append(variant.Stock, entry)
				expected[code] = want{prod.ID, variant.ID, entry.ID}
			}
			prod.Variants = append(prod.Variants, variant)
		}
		all = append(all, prod)
	}
	c := loadedCache(t, all...)

	require.Len(t, expected, products*variants*sizes)
	for code, w := range expected {
		m, err := c.Resolve(code)
		require.NoError(t, err, code)
		assert.Equal(t, w.product, m.Product.ID, code)
		assert.Equal(t, w.variant, m.Variant.ID, code)
		assert.Equal(t, w.stock, m.Stock.ID, code)
		require.NotNil(t, m.Stock.Barcode)
		assert.Equal(t, code, *m.Stock.Barcode)
	}
}

func TestResolveNotFound(t *testing.T) {
	c := loadedCache(t, product("1", "Blusa", model.StockEntry{ID: "s1", Barcode: strPtr("789100")}))

	for _, code := range []string{"", "   ", "78910", "unknown"} {
		t.Run(fmt.Sprintf("%q", code), func(t *testing.T) {
			_, err := c.Resolve(code)
			assert.True(t, errors.Is(err, ErrBarcodeNotFound))
			assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
		})
	}
}

func TestSearchSkipsEmptyStockAndCaps(t *testing.T) {
	var products []model.Product
	for i := 0; i < 10; i++ {
		products = append(products, product(fmt.Sprint(i), "Vestido Midi", model.StockEntry{ID: fmt.Sprint("s", i), Quantity: 1}))
	}
	products = append(products, product("out", "Vestido Longo", model.StockEntry{ID: "s-out", Quantity: 0}))
	c := loadedCache(t, products...)

	got := c.Search("vestido")
	assert.Len(t, got, SearchLimit)
	for _, p := range got {
		assert.NotEqual(t, "out", p.ID)
	}
	assert.Empty(t, c.Search("   "))
}

func TestSearchMatchesBarcodeSubstringAndSKU(t *testing.T) {
	p := product("1", "Blusa", model.StockEntry{ID: "s1", Quantity: 2, Barcode: strPtr("7891234567890")})
	p.SupplierSKU = strPtr("FORN-88")
	c := loadedCache(t, p)

	assert.Len(t, c.Search("345678"), 1)
	assert.Len(t, c.Search("forn-88"), 1)
	assert.Len(t, c.Search("upf20251"), 1)
	assert.Empty(t, c.Search("calça"))
}

func TestFilter(t *testing.T) {
	c := loadedCache(t,
		product("1", "Blusa", model.StockEntry{Quantity: 0}),
		product("2", "Saia"),
	)

	assert.Len(t, c.Filter(""), 2)
	assert.Len(t, c.Filter("BLUSA"), 1)
	assert.Len(t, c.Filter("preto"), 2)
}

func TestLoadKeepsSnapshotOnError(t *testing.T) {
	loader := &stubLoader{products: []model.Product{product("1", "Blusa")}}
	c := NewCache(loader)
	require.NoError(t, c.Load(context.Background()))

	loader.products = nil
	loader.err = errors.New("connection refused")
	assert.Error(t, c.Load(context.Background()))

	assert.Len(t, c.Products(), 1)
	assert.Equal(t, 2, loader.calls)
}

func TestLocate(t *testing.T) {
	c := loadedCache(t, product("1", "Blusa", model.StockEntry{ID: "s1", Quantity: 1}, model.StockEntry{ID: "s2", Quantity: 4}))

	m, ok := c.Locate("1", "s2")
	require.True(t, ok)
	assert.Equal(t, 4, m.Stock.Quantity)

	_, ok = c.Locate("1", "nope")
	assert.False(t, ok)
	_, ok = c.Find("2")
	assert.False(t, ok)
}
