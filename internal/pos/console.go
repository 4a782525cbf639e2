package pos

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fekuna/omnipos-retail-service/internal/apperr"
	"github.com/fekuna/omnipos-retail-service/internal/model"
	"github.com/fekuna/omnipos-retail-service/internal/money"
	"github.com/fekuna/omnipos-retail-service/internal/scanner"
)

const defaultScanTimeout = 30 * time.Second

// Console drives a Terminal from line commands. Anything that is not a command is taken as a
// typed barcode.
type Console struct {
	Term *Terminal
	// Input yields command lines; Scanner yields codes for "scan". They may be the same device.
	Input       scanner.Device
	Scanner     scanner.Device
	Out         io.Writer
	ScanTimeout time.Duration
}

// Run processes commands until "quit" or the input ends.
func (c *Console) Run(ctx context.Context) error {
	for {
		fmt.Fprintf(c.Out, "[%s] > ", c.Term.Mode())
		line, err := scanner.Scan(ctx, c.Input)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		if quit := c.exec(ctx, line); quit {
			return nil
		}
	}
}

func (c *Console) exec(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	var err error
	switch strings.ToLower(cmd) {
	case "quit", "q":
		return true
	case "search", "s":
		c.printProducts(c.Term.Search(arg))
	case "select":
		var p *model.Product
		if p, err = c.Term.Select(arg); err == nil {
			c.printVariants(p)
		}
	case "pick":
		if _, err = c.Term.Pick(arg); err == nil {
			c.printCart()
		}
	case "scan":
		err = c.scan(ctx)
	case "ok":
		if _, err = c.Term.Confirm(); err == nil {
			c.printCart()
		}
	case "esc":
		c.Term.Dismiss()
	case "cart":
		c.printCart()
	case "inc", "dec", "rm":
		err = c.editLine(cmd, arg)
	case "pay":
		if err = c.Term.OpenPayment(); err == nil {
			c.printSettlement()
		}
	case "method":
		if err = c.Term.Checkout().SetMethod(model.PaymentMethod(strings.ToLower(arg))); err == nil {
			c.printSettlement()
		}
	case "installments":
		var n int
		if n, err = strconv.Atoi(arg); err == nil {
			err = c.Term.Checkout().SetInstallments(n)
		}
		c.printSettlement()
	case "discount":
		if pct, ok := strings.CutSuffix(arg, "%"); ok {
			c.Term.Checkout().SetDiscountPercent(money.ParseAmount(pct))
		} else {
			c.Term.Checkout().SetDiscountAmount(money.ParseAmount(arg))
		}
		c.printSettlement()
	case "final":
		c.Term.Checkout().SetFinalPrice(money.ParseAmount(arg))
		c.printSettlement()
	case "submit":
		var sale *model.Sale
		if sale, err = c.Term.Pay(ctx); err == nil {
			fmt.Fprintf(c.Out, "sale #%d recorded: %s\n", sale.Code, money.FormatBRL(sale.NetTotal))
		}
	default:
		if _, err = c.Term.Enter(line); err == nil {
			c.printConfirm()
		}
	}
	if err != nil {
		fmt.Fprintf(c.Out, "error: %s\n", message(err))
	}
	return false
}

func (c *Console) scan(ctx context.Context) error {
	timeout := c.ScanTimeout
	if timeout <= 0 {
		timeout = defaultScanTimeout
	}
	scanCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fmt.Fprintln(c.Out, "waiting for barcode...")
	if _, err := c.Term.Scan(scanCtx, c.Scanner); err != nil {
		return err
	}
	c.printConfirm()
	return nil
}

func (c *Console) editLine(cmd, arg string) error {
	lines := c.Term.Cart().Lines()
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(lines) {
		return apperr.Validation("LineNotFound", "no such cart line")
	}
	id := lines[n-1].ID
	switch cmd {
	case "inc":
		_, err = c.Term.Cart().ChangeQuantity(id, 1)
	case "dec":
		_, err = c.Term.Cart().ChangeQuantity(id, -1)
	default:
		c.Term.Cart().Remove(id)
	}
	c.printCart()
	return err
}

func (c *Console) printProducts(products []model.Product) {
	if len(products) == 0 {
		fmt.Fprintln(c.Out, "no products found")
		return
	}
	for _, p := range products {
		fmt.Fprintf(c.Out, "%s  %-10s %s  %s  (%d in stock)\n", p.ID, p.Code, p.Description, money.FormatBRL(p.SalePrice), p.TotalStock())
	}
}

func (c *Console) printVariants(p *model.Product) {
	for i := range p.Variants {
		v := &p.Variants[i]
		for _, s := range v.Stock {
			fmt.Fprintf(c.Out, "%s  %s / %s  qty %d\n", s.ID, p.ColorOf(v), s.SizeName, s.Quantity)
		}
	}
}

func (c *Console) printConfirm() {
	if m, ok := c.Term.Mode().(ConfirmingItem); ok {
		fmt.Fprintf(c.Out, "%s  %s  (ok to add, esc to cancel)\n", m.Match.Description(), money.FormatBRL(m.Match.Product.SalePrice))
	}
}

func (c *Console) printCart() {
	cart := c.Term.Cart()
	for i, l := range cart.Lines() {
		fmt.Fprintf(c.Out, "%d. %s  %d x %s = %s\n", i+1, l.ItemDescription(), l.Quantity, money.FormatBRL(l.UnitPrice), money.FormatBRL(l.Subtotal()))
	}
	fmt.Fprintf(c.Out, "total: %s (%d items)\n", money.FormatBRL(cart.Gross()), cart.Units())
}

func (c *Console) printSettlement() {
	co := c.Term.Checkout()
	s := co.Settlement()
	fmt.Fprintf(c.Out, "gross %s  discount %s  net %s  %s %dx %s\n",
		money.FormatBRL(co.Gross()), money.FormatBRL(co.Discount()), money.FormatBRL(co.Net()),
		s.Method, s.Installments, money.FormatBRL(co.InstallmentValue()))
}

func message(err error) string {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
