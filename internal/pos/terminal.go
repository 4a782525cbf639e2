// Package pos drives one sales counter: product lookup, cart and payment.
package pos

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-retail-service/internal/apperr"
	"github.com/fekuna/omnipos-retail-service/internal/cart"
	"github.com/fekuna/omnipos-retail-service/internal/catalog"
	"github.com/fekuna/omnipos-retail-service/internal/checkout"
	"github.com/fekuna/omnipos-retail-service/internal/model"
	"github.com/fekuna/omnipos-retail-service/internal/scanner"
	"github.com/fekuna/omnipos-retail-service/pkg/logger"
	"go.uber.org/zap"
)

var (
	ErrWrongMode          = apperr.Validation("WrongMode", "that action is not available right now")
	ErrProductNotFound    = apperr.NotFound("ProductNotFound", "product not found")
	ErrStockEntryNotFound = apperr.NotFound("StockEntryNotFound", "stock entry not found")
)

// Terminal is owned by a single counter session and is not safe for concurrent use.
type Terminal struct {
	catalog  *catalog.Cache
	cart     *cart.Cart
	checkout *checkout.Checkout
	logger   logger.ZapLogger

	mode Mode
}

func NewTerminal(cat *catalog.Cache, recorder checkout.Recorder, submitTimeout time.Duration, log logger.ZapLogger) *Terminal {
	c := cart.New()
	return &Terminal{
		catalog:  cat,
		cart:     c,
		checkout: checkout.New(c, recorder, cat, submitTimeout, log),
		logger:   log,
		mode:     Browsing{},
	}
}

// Start loads the catalog snapshot for the session.
func (t *Terminal) Start(ctx context.Context) error {
	if err := t.catalog.Load(ctx); err != nil {
		return apperr.Transport(err, "failed to load catalog")
	}
	t.mode = Browsing{}
	return nil
}

func (t *Terminal) SetSeller(userID string) {
	t.checkout.SetSeller(userID)
}

func (t *Terminal) Mode() Mode { return t.mode }

func (t *Terminal) Cart() *cart.Cart { return t.cart }

func (t *Terminal) Checkout() *checkout.Checkout { return t.checkout }

// Search lists in-stock products matching q and returns to browsing.
func (t *Terminal) Search(q string) []model.Product {
	results := t.catalog.Search(q)
	t.mode = Browsing{Query: q, Results: results}
	return results
}

// Select opens the variant picker for a product.
func (t *Terminal) Select(productID string) (*model.Product, error) {
	if _, ok := t.mode.(Browsing); !ok {
		return nil, ErrWrongMode
	}
	p, ok := t.catalog.Find(productID)
	if !ok {
		return nil, ErrProductNotFound
	}
	t.mode = SelectingVariant{Product: p}
	return p, nil
}

// Pick adds one unit of the chosen stock entry of the product being selected.
func (t *Terminal) Pick(stockEntryID string) (cart.Line, error) {
	sel, ok := t.mode.(SelectingVariant)
	if !ok {
		return cart.Line{}, ErrWrongMode
	}
	m, ok := t.catalog.Locate(sel.Product.ID, stockEntryID)
	if !ok {
		return cart.Line{}, ErrStockEntryNotFound
	}
	line, err := t.cart.Add(m)
	if err != nil {
		return line, err
	}
	t.mode = Browsing{}
	return line, nil
}

// Enter resolves a typed code and asks for confirmation. An unknown code leaves the
// mode and the cart as they were.
func (t *Terminal) Enter(code string) (catalog.Match, error) {
	switch t.mode.(type) {
	case Browsing, Scanning:
	default:
		return catalog.Match{}, ErrWrongMode
	}
	m, err := t.catalog.Resolve(code)
	if err != nil {
		return catalog.Match{}, err
	}
	t.mode = ConfirmingItem{Match: m}
	return m, nil
}

// Scan reads one code from dev and resolves it like Enter. The device is released before
// Scan returns.
func (t *Terminal) Scan(ctx context.Context, dev scanner.Device) (catalog.Match, error) {
	if _, ok := t.mode.(Browsing); !ok {
		return catalog.Match{}, ErrWrongMode
	}
	t.mode = Scanning{}

	code, err := scanner.Scan(ctx, dev)
	if err != nil {
		t.mode = Browsing{}
		t.logger.Warn("scan failed", zap.Error(err))
		return catalog.Match{}, err
	}

	m, err := t.Enter(code)
	if err != nil {
		t.mode = Browsing{}
		return catalog.Match{}, err
	}
	return m, nil
}

// Confirm puts the item being confirmed into the cart.
func (t *Terminal) Confirm() (cart.Line, error) {
	c, ok := t.mode.(ConfirmingItem)
	if !ok {
		return cart.Line{}, ErrWrongMode
	}
	line, err := t.cart.Add(c.Match)
	t.mode = Browsing{}
	return line, err
}

// Dismiss closes whatever is open and goes back to browsing. A submission in flight is not interrupted.
func (t *Terminal) Dismiss() {
	if _, ok := t.mode.(Paying); ok {
		if t.checkout.Phase() == checkout.PhaseSubmitting {
			return
		}
		t.checkout.Cancel()
	}
	t.mode = Browsing{}
}

// OpenPayment starts settlement of the cart.
func (t *Terminal) OpenPayment() error {
	if _, ok := t.mode.(Browsing); !ok {
		return ErrWrongMode
	}
	if err := t.checkout.Open(); err != nil {
		return err
	}
	t.mode = Paying{}
	return nil
}

// Pay submits the sale. On failure the payment form and the cart stay as they are.
func (t *Terminal) Pay(ctx context.Context) (*model.Sale, error) {
	if _, ok := t.mode.(Paying); !ok {
		return nil, ErrWrongMode
	}
	sale, err := t.checkout.Submit(ctx)
	if err != nil {
		return nil, err
	}
	t.mode = Browsing{}
	return sale, nil
}
