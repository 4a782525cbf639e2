package checkout_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/fekuna/omnipos-retail-service/internal/apperr"
	"github.com/fekuna/omnipos-retail-service/internal/cart"
	"github.com/fekuna/omnipos-retail-service/internal/catalog"
	"github.com/fekuna/omnipos-retail-service/internal/checkout"
	"github.com/fekuna/omnipos-retail-service/internal/model"
	"github.com/fekuna/omnipos-retail-service/internal/sale/dto"
	"github.com/fekuna/omnipos-retail-service/pkg/logger"
	"github.com/shopspring/decimal"
)

type memoryBackend struct {
	products []model.Product
	sales    []*dto.RecordSaleInput
	reject   string
}

func (b *memoryBackend) ListActiveCatalog(ctx context.Context) ([]model.Product, error) {
	return b.products, nil
}

func (b *memoryBackend) RecordSale(ctx context.Context, input *dto.RecordSaleInput) (*model.Sale, error) {
	if b.reject != "" {
		return nil, apperr.Conflict("InsufficientStock", b.reject)
	}
	b.sales = append(b.sales, input)
	return &model.Sale{ID: fmt.Sprint("sale-", len(b.sales)), Code: int64(len(b.sales))}, nil
}

type checkoutTestContext struct {
	backend  *memoryBackend
	catalog  *catalog.Cache
	cart     *cart.Cart
	checkout *checkout.Checkout
	err      error
}

func (c *checkoutTestContext) reset() {
	c.backend = &memoryBackend{}
	c.catalog = catalog.NewCache(c.backend)
	c.cart = cart.New()
	c.checkout = checkout.New(c.cart, c.backend, c.catalog, time.Second, logger.NewNop())
	c.err = nil
}

func (c *checkoutTestContext) aProductPricedWithUnitsUnderBarcode(desc, price string, qty int, size, barcode string) error {
	sale, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	c.backend.products = append(c.backend.products, model.Product{
		BaseModel:   model.BaseModel{ID: "p-" + barcode},
		Description: desc,
		Color:       "Preto",
		SalePrice:   sale,
		Variants: []model.Variant{{
			ID:    "v-" + barcode,
			Stock: []model.StockEntry{{ID: "s-" + barcode, SizeName: size, Quantity: qty, Barcode: &barcode}},
		}},
	})
	return c.catalog.Load(context.Background())
}

func (c *checkoutTestContext) theBackendRejectsSalesWith(msg string) error {
	c.backend.reject = msg
	return nil
}

func (c *checkoutTestContext) iScan(code string) error {
	m, err := c.catalog.Resolve(code)
	if err != nil {
		c.err = err
		return nil
	}
	_, c.err = c.cart.Add(m)
	return nil
}

func (c *checkoutTestContext) iOpenThePayment() error {
	c.err = c.checkout.Open()
	return nil
}

func (c *checkoutTestContext) iApplyAPercentDiscount(pct int) error {
	c.checkout.SetDiscountPercent(decimal.NewFromInt(int64(pct)))
	return nil
}

func (c *checkoutTestContext) iSetTheFinalPriceTo(price string) error {
	d, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	c.checkout.SetFinalPrice(d)
	return nil
}

func (c *checkoutTestContext) iPayWithInInstallments(method string, n int) error {
	if err := c.checkout.SetMethod(model.PaymentMethod(method)); err != nil {
		return err
	}
	return c.checkout.SetInstallments(n)
}

func (c *checkoutTestContext) iPayWith(method string) error {
	return c.checkout.SetMethod(model.PaymentMethod(method))
}

func (c *checkoutTestContext) iSubmitTheSale() error {
	_, c.err = c.checkout.Submit(context.Background())
	return nil
}

func expectAmount(name string, got decimal.Decimal, want string) error {
	w, err := decimal.NewFromString(want)
	if err != nil {
		return err
	}
	if !got.Equal(w) {
		return fmt.Errorf("expected %s %s, got %s", name, w, got)
	}
	return nil
}

func (c *checkoutTestContext) theGrossTotalIs(v string) error {
	return expectAmount("gross", c.checkout.Gross(), v)
}

func (c *checkoutTestContext) theDiscountIs(v string) error {
	return expectAmount("discount", c.checkout.Discount(), v)
}

func (c *checkoutTestContext) theNetTotalIs(v string) error {
	return expectAmount("net", c.checkout.Net(), v)
}

func (c *checkoutTestContext) theDiscountTypeIs(t string) error {
	if got := c.checkout.Settlement().DiscountType; string(got) != t {
		return fmt.Errorf("expected discount type %s, got %s", t, got)
	}
	return nil
}

func (c *checkoutTestContext) theInstallmentsAre(n int) error {
	if got := c.checkout.Settlement().Installments; got != n {
		return fmt.Errorf("expected %d installments, got %d", n, got)
	}
	return nil
}

func (c *checkoutTestContext) theLastOperationFailsWithKind(kind string) error {
	if c.err == nil {
		return fmt.Errorf("expected a %s error, got none", kind)
	}
	if got := apperr.KindOf(c.err); string(got) != kind {
		return fmt.Errorf("expected kind %s, got %s (%v)", kind, got, c.err)
	}
	return nil
}

func (c *checkoutTestContext) theCartHoldsUnits(n int) error {
	if got := c.cart.Units(); got != n {
		return fmt.Errorf("expected %d units in cart, got %d", n, got)
	}
	return nil
}

func (c *checkoutTestContext) theCheckoutPhaseIs(phase string) error {
	if got := c.checkout.Phase().String(); got != phase {
		return fmt.Errorf("expected phase %s, got %s", phase, got)
	}
	return nil
}

func (c *checkoutTestContext) theBackendReceivedSale(n int) error {
	if got := len(c.backend.sales); got != n {
		return fmt.Errorf("expected %d recorded sales, got %d", n, got)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &checkoutTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a product "([^"]*)" priced (\d+\.\d+) with (\d+) units of size "([^"]*)" under barcode "([^"]*)"$`, tc.aProductPricedWithUnitsUnderBarcode)
	ctx.Step(`^the backend rejects sales with "([^"]*)"$`, tc.theBackendRejectsSalesWith)

	// When steps
	ctx.Step(`^I scan "([^"]*)"$`, tc.iScan)
	ctx.Step(`^I open the payment$`, tc.iOpenThePayment)
	ctx.Step(`^I apply a (\d+) percent discount$`, tc.iApplyAPercentDiscount)
	ctx.Step(`^I set the final price to (\d+\.\d+)$`, tc.iSetTheFinalPriceTo)
	ctx.Step(`^I pay with "([^"]*)" in (\d+) installments$`, tc.iPayWithInInstallments)
	ctx.Step(`^I pay with "([^"]*)"$`, tc.iPayWith)
	ctx.Step(`^I submit the sale$`, tc.iSubmitTheSale)

	// Then steps
	ctx.Step(`^the gross total is (\d+\.\d+)$`, tc.theGrossTotalIs)
	ctx.Step(`^the discount is (\d+\.\d+)$`, tc.theDiscountIs)
	ctx.Step(`^the net total is (\d+\.\d+)$`, tc.theNetTotalIs)
	ctx.Step(`^the discount type is "([^"]*)"$`, tc.theDiscountTypeIs)
	ctx.Step(`^the installments are (\d+)$`, tc.theInstallmentsAre)
	ctx.Step(`^the last operation fails with kind "([^"]*)"$`, tc.theLastOperationFailsWithKind)
	ctx.Step(`^the cart holds (\d+) units$`, tc.theCartHoldsUnits)
	ctx.Step(`^the checkout phase is "([^"]*)"$`, tc.theCheckoutPhaseIs)
	ctx.Step(`^the backend received (\d+) sale$`, tc.theBackendReceivedSale)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../../features/checkout.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
