package pos

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-retail-service/internal/apperr"
	"github.com/fekuna/omnipos-retail-service/internal/catalog"
	"github.com/fekuna/omnipos-retail-service/internal/checkout"
	"github.com/fekuna/omnipos-retail-service/internal/model"
	"github.com/fekuna/omnipos-retail-service/internal/sale/dto"
	"github.com/fekuna/omnipos-retail-service/internal/scanner"
	"github.com/fekuna/omnipos-retail-service/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticCatalog struct {
	products []model.Product
	loads    int
}

func (s *staticCatalog) ListActiveCatalog(ctx context.Context) ([]model.Product, error) {
	s.loads++
	return s.products, nil
}

type recorder struct {
	inputs []*dto.RecordSaleInput
	err    error
}

func (r *recorder) RecordSale(ctx context.Context, input *dto.RecordSaleInput) (*model.Sale, error) {
	r.inputs = append(r.inputs, input)
	if r.err != nil {
		return nil, r.err
	}
	return &model.Sale{ID: "sale-1", Code: 7, NetTotal: input.NetTotal}, nil
}

func str(s string) *string { return &s }

func dress() model.Product {
	return model.Product{
		BaseModel:     model.BaseModel{ID: "p1"},
		Code:          "UPF20261234",
		Description:   "Vestido Midi",
		Color:         "Azul",
		PurchasePrice: decimal.RequireFromString("40"),
		SalePrice:     decimal.RequireFromString("119.90"),
		Variants: []model.Variant{{
			ID:        "v1",
			ProductID: "p1",
			ColorName: str("Azul"),
			Stock: []model.StockEntry{
				{ID: "s-p", VariantID: "v1", SizeName: "P", Quantity: 1, Barcode: str("7890000000011")},
				{ID: "s-m", VariantID: "v1", SizeName: "M", Quantity: 3, Barcode: str("7890000000028")},
			},
		}},
	}
}

func newTerminal(t *testing.T, rec checkout.Recorder) (*Terminal, *staticCatalog) {
	t.Helper()
	src := &staticCatalog{products: []model.Product{dress()}}
	term := NewTerminal(catalog.NewCache(src), rec, 0, logger.NewNop())
	require.NoError(t, term.Start(context.Background()))
	return term, src
}

func TestEnterConfirmAddsToCart(t *testing.T) {
	term, _ := newTerminal(t, &recorder{})

	m, err := term.Enter(" 7890000000028 ")
	require.NoError(t, err)
	assert.Equal(t, "s-m", m.Stock.ID)
	assert.IsType(t, ConfirmingItem{}, term.Mode())

	line, err := term.Confirm()
	require.NoError(t, err)
	assert.Equal(t, 1, line.Quantity)
	assert.IsType(t, Browsing{}, term.Mode())
	assert.Equal(t, 1, term.Cart().Len())
}

func TestUnknownCodeLeavesCartUntouched(t *testing.T) {
	term, _ := newTerminal(t, &recorder{})
	_, err := term.Enter("7890000000028")
	require.NoError(t, err)
	_, err = term.Confirm()
	require.NoError(t, err)

	_, err = term.Enter("0000")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.True(t, errors.Is(err, catalog.ErrBarcodeNotFound))
	assert.Equal(t, 1, term.Cart().Units())
	assert.IsType(t, Browsing{}, term.Mode())
}

func TestSelectAndPick(t *testing.T) {
	term, _ := newTerminal(t, &recorder{})

	results := term.Search("midi")
	require.Len(t, results, 1)

	_, err := term.Select("p1")
	require.NoError(t, err)
	assert.IsType(t, SelectingVariant{}, term.Mode())

	_, err = term.Pick("s-p")
	require.NoError(t, err)

	_, err = term.Select("p1")
	require.NoError(t, err)
	_, err = term.Pick("s-p")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, 1, term.Cart().Units())

	term.Dismiss()
	_, err = term.Select("missing")
	assert.True(t, errors.Is(err, ErrProductNotFound))
}

func TestActionsOutsideTheirMode(t *testing.T) {
	term, _ := newTerminal(t, &recorder{})

	_, err := term.Confirm()
	assert.ErrorIs(t, err, ErrWrongMode)
	_, err = term.Pick("s-m")
	assert.ErrorIs(t, err, ErrWrongMode)
	_, err = term.Pay(context.Background())
	assert.ErrorIs(t, err, ErrWrongMode)
}

func TestScanReleasesDeviceAndResolves(t *testing.T) {
	term, _ := newTerminal(t, &recorder{})
	dev := scanner.NewLineDevice(strings.NewReader("7890000000011\n"))

	m, err := term.Scan(context.Background(), dev)
	require.NoError(t, err)
	assert.Equal(t, "s-p", m.Stock.ID)
	assert.IsType(t, ConfirmingItem{}, term.Mode())

	term.Dismiss()
	_, err = term.Scan(context.Background(), dev)
	assert.Equal(t, apperr.KindDevice, apperr.KindOf(err))
	assert.IsType(t, Browsing{}, term.Mode())
}

func TestPayRecordsSaleAndReloadsCatalog(t *testing.T) {
	rec := &recorder{}
	term, src := newTerminal(t, rec)
	term.SetSeller("u1")

	_, err := term.Enter("7890000000028")
	require.NoError(t, err)
	_, err = term.Confirm()
	require.NoError(t, err)

	require.NoError(t, term.OpenPayment())
	assert.IsType(t, Paying{}, term.Mode())

	sale, err := term.Pay(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), sale.Code)
	assert.Equal(t, 0, term.Cart().Len())
	assert.Equal(t, 2, src.loads)
	require.Len(t, rec.inputs, 1)
	assert.Equal(t, "u1", rec.inputs[0].SoldBy)
	assert.True(t, decimal.RequireFromString("119.90").Equal(rec.inputs[0].GrossTotal))
}

func TestPayFailureKeepsCartAndForm(t *testing.T) {
	rec := &recorder{err: apperr.Conflict("InsufficientStock", "insufficient stock")}
	term, _ := newTerminal(t, rec)

	_, err := term.Enter("7890000000028")
	require.NoError(t, err)
	_, err = term.Confirm()
	require.NoError(t, err)
	require.NoError(t, term.OpenPayment())

	_, err = term.Pay(context.Background())
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.IsType(t, Paying{}, term.Mode())
	assert.Equal(t, 1, term.Cart().Len())

	term.Dismiss()
	assert.IsType(t, Browsing{}, term.Mode())
	assert.Equal(t, checkout.PhaseIdle, term.Checkout().Phase())
}

func TestOpenPaymentWithEmptyCart(t *testing.T) {
	term, _ := newTerminal(t, &recorder{})
	err := term.OpenPayment()
	assert.True(t, errors.Is(err, checkout.ErrEmptyCart))
	assert.IsType(t, Browsing{}, term.Mode())
}
