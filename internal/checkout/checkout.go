// Package checkout turns the cart into a recorded sale: settlement terms, discount and the
// single call to the sale procedure.
package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/fekuna/omnipos-retail-service/internal/apperr"
	"github.com/fekuna/omnipos-retail-service/internal/cart"
	"github.com/fekuna/omnipos-retail-service/internal/model"
	"github.com/fekuna/omnipos-retail-service/internal/sale/dto"
	"github.com/fekuna/omnipos-retail-service/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrEmptyCart           = apperr.Validation("EmptyCart", "the cart is empty")
	ErrNegativeDiscount    = apperr.Validation("DiscountNegative", "discount cannot be negative")
	ErrInvalidMethod       = apperr.Validation("InvalidPaymentMethod", "unknown payment method")
	ErrInvalidInstallments = apperr.Validation("InvalidInstallments", "installments must be between 1 and 12")
	ErrBusy                = apperr.Conflict("CheckoutBusy", "a sale is already being submitted")
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseReviewing
	PhaseSubmitting
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseReviewing:
		return "reviewing"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	}
	return "idle"
}

type DiscountType string

const (
	DiscountAmount  DiscountType = "amount"
	DiscountPercent DiscountType = "percent"
)

// Settlement holds the payment terms being reviewed. Only one discount form is live at a time.
type Settlement struct {
	Method        model.PaymentMethod
	Installments  int
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
}

func defaultSettlement() Settlement {
	return Settlement{
		Method:        model.PaymentPix,
		Installments:  1,
		DiscountType:  DiscountAmount,
		DiscountValue: decimal.Zero,
	}
}

// Recorder runs the atomic sale procedure.
type Recorder interface {
	RecordSale(ctx context.Context, input *dto.RecordSaleInput) (*model.Sale, error)
}

// Reloader refreshes the stock snapshot after a sale.
type Reloader interface {
	Load(ctx context.Context) error
}

var hundred = decimal.NewFromInt(100)

// Checkout is owned by one counter session.
type Checkout struct {
	cart     *cart.Cart
	recorder Recorder
	catalog  Reloader
	timeout  time.Duration
	soldBy   string
	logger   logger.ZapLogger

	phase      Phase
	settlement Settlement
	lastErr    error
	lastSale   *model.Sale
}

func New(c *cart.Cart, recorder Recorder, catalog Reloader, timeout time.Duration, log logger.ZapLogger) *Checkout {
	return &Checkout{
		cart:       c,
		recorder:   recorder,
		catalog:    catalog,
		timeout:    timeout,
		logger:     log,
		settlement: defaultSettlement(),
	}
}

// SetSeller records who is operating the counter on the sales it submits.
func (c *Checkout) SetSeller(userID string) {
	c.soldBy = userID
}

func (c *Checkout) Phase() Phase { return c.phase }

func (c *Checkout) Settlement() Settlement { return c.settlement }

// Err is the raw failure of the last submission.
func (c *Checkout) Err() error { return c.lastErr }

func (c *Checkout) LastSale() *model.Sale { return c.lastSale }

// Open starts reviewing the cart with fresh terms: pix, one installment, no discount.
func (c *Checkout) Open() error {
	if c.phase == PhaseSubmitting {
		return ErrBusy
	}
	if c.cart.Len() == 0 {
		return ErrEmptyCart
	}
	c.settlement = defaultSettlement()
	c.lastErr = nil
	c.phase = PhaseReviewing
	return nil
}

// Cancel abandons the review. The cart is left as it is.
func (c *Checkout) Cancel() {
	if c.phase == PhaseSubmitting {
		return
	}
	c.phase = PhaseIdle
}

// SetMethod changes the payment method. Methods other than credit are always paid in one installment.
func (c *Checkout) SetMethod(m model.PaymentMethod) error {
	if !m.Valid() {
		return ErrInvalidMethod
	}
	c.settlement.Method = m
	if !m.AllowsInstallments() {
		c.settlement.Installments = 1
	}
	return nil
}

func (c *Checkout) SetInstallments(n int) error {
	if n < 1 || n > model.MaxInstallments {
		return ErrInvalidInstallments
	}
	if !c.settlement.Method.AllowsInstallments() {
		n = 1
	}
	c.settlement.Installments = n
	return nil
}

func (c *Checkout) SetDiscountAmount(v decimal.Decimal) {
	c.settlement.DiscountType = DiscountAmount
	c.settlement.DiscountValue = v
}

func (c *Checkout) SetDiscountPercent(v decimal.Decimal) {
	c.settlement.DiscountType = DiscountPercent
	c.settlement.DiscountValue = v
}

// SetFinalPrice back-computes an amount discount so that the net total becomes x.
func (c *Checkout) SetFinalPrice(x decimal.Decimal) {
	c.SetDiscountAmount(c.Gross().Sub(x).Round(2))
}

func (c *Checkout) Gross() decimal.Decimal {
	return c.cart.Gross()
}

// Discount is the live discount in currency, rounded to cents.
func (c *Checkout) Discount() decimal.Decimal {
	s := c.settlement
	if s.DiscountType == DiscountPercent {
		return c.Gross().Mul(s.DiscountValue).Div(hundred).Round(2)
	}
	return s.DiscountValue.Round(2)
}

// Net is gross minus discount, never below zero.
func (c *Checkout) Net() decimal.Decimal {
	net := c.Gross().Sub(c.Discount())
	if net.IsNegative() {
		return decimal.Zero
	}
	return net
}

func (c *Checkout) InstallmentValue() decimal.Decimal {
	n := c.settlement.Installments
	if n < 1 {
		n = 1
	}
	return c.Net().Div(decimal.NewFromInt(int64(n))).Round(2)
}

// Input builds the sale procedure payload from the cart and the current terms.
func (c *Checkout) Input() *dto.RecordSaleInput {
	gross := c.Gross()
	net := c.Net()
	installments := c.settlement.Installments
	if !c.settlement.Method.AllowsInstallments() {
		installments = 1
	}

	lines := c.cart.Lines()
	items := make([]dto.RecordSaleItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, dto.RecordSaleItem{
			ProductID:    l.ProductID,
			StockEntryID: l.StockEntryID,
			Description:  l.ItemDescription(),
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			UnitCost:     l.UnitCost,
			Subtotal:     l.Subtotal(),
		})
	}

	return &dto.RecordSaleInput{
		GrossTotal:    gross,
		NetTotal:      net,
		Discount:      gross.Sub(net),
		PaymentMethod: c.settlement.Method,
		Installments:  installments,
		SoldBy:        c.soldBy,
		Items:         items,
	}
}

// Submit records the sale in one backend call bounded by the configured timeout.
// On failure the cart is kept and the error is retained for display.
func (c *Checkout) Submit(ctx context.Context) (*model.Sale, error) {
	if c.phase == PhaseSubmitting {
		return nil, ErrBusy
	}
	if c.cart.Len() == 0 {
		return nil, ErrEmptyCart
	}
	if c.settlement.DiscountValue.IsNegative() {
		return nil, ErrNegativeDiscount
	}

	input := c.Input()
	c.phase = PhaseSubmitting
	c.lastErr = nil

	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	sale, err := c.recorder.RecordSale(callCtx, input)
	if err != nil {
		var appErr *apperr.Error
		if errors.Is(err, context.DeadlineExceeded) && !errors.As(err, &appErr) {
			err = apperr.Transport(err, "sale submission timed out")
		}
		c.phase = PhaseFailed
		c.lastErr = err
		c.logger.Warn("sale submission failed", zap.Error(err), zap.Int("items", len(input.Items)))
		return nil, err
	}

	c.cart.Clear()
	c.lastSale = sale
	c.phase = PhaseSucceeded
	c.logger.Info("sale recorded", zap.String("sale_id", sale.ID), zap.Int64("code", sale.Code))

	if err := c.catalog.Load(ctx); err != nil {
		c.logger.Warn("catalog reload after sale failed", zap.Error(err))
	}
	return sale, nil
}
