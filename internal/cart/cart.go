// Package cart is the counter's in-memory list of items being sold.
package cart

import (
	"github.com/fekuna/omnipos-retail-service/internal/apperr"
	"github.com/fekuna/omnipos-retail-service/internal/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientStock  = apperr.Validation("InsufficientStock", "insufficient stock")
	ErrQuantityOutOfRange = apperr.Validation("QuantityOutOfRange", "quantity must stay between 1 and the available stock")
)

// Line is one stock entry in the cart. MaxQuantity is the stock snapshot taken when the
// line was added; the database re-checks it when the sale is recorded.
type Line struct {
	ID           uuid.UUID
	ProductID    string
	StockEntryID string
	Description  string
	Color        string
	Size         string
	Barcode      string
	PhotoURL     string
	UnitPrice    decimal.Decimal
	UnitCost     decimal.Decimal
	Quantity     int
	MaxQuantity  int
}

func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ItemDescription is the "<description> - <color> (<size>)" text recorded on the sale.
func (l Line) ItemDescription() string {
	return l.Description + " - " + l.Color + " (" + l.Size + ")"
}

// Cart is owned by a single counter session and is not safe for concurrent use.
type Cart struct {
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

// Add puts one unit of m in the cart, merging with an existing line for the same stock entry.
func (c *Cart) Add(m catalog.Match) (Line, error) {
	for i := range c.lines {
		if c.lines[i].StockEntryID != m.Stock.ID {
			continue
		}
		if c.lines[i].Quantity+1 > c.lines[i].MaxQuantity {
			return c.lines[i], ErrInsufficientStock
		}
		c.lines[i].Quantity++
		return c.lines[i], nil
	}

	if m.Stock.Quantity < 1 {
		return Line{}, ErrInsufficientStock
	}

	line := Line{
		ID:           uuid.New(),
		ProductID:    m.Product.ID,
		StockEntryID: m.Stock.ID,
		Description:  m.Product.Description,
		Color:        m.Product.ColorOf(m.Variant),
		Size:         m.Stock.SizeName,
		Barcode:      m.Stock.BarcodeValue(),
		UnitPrice:    m.Product.SalePrice,
		UnitCost:     m.Product.Cost(),
		Quantity:     1,
		MaxQuantity:  m.Stock.Quantity,
	}
	switch {
	case m.Variant.PhotoURL != nil:
		line.PhotoURL = *m.Variant.PhotoURL
	case m.Product.PhotoURL != nil:
		line.PhotoURL = *m.Product.PhotoURL
	}
	c.lines = append(c.lines, line)
	return line, nil
}

// ChangeQuantity moves a line's quantity by delta. Results outside [1, MaxQuantity] are rejected
// and leave the line unchanged.
func (c *Cart) ChangeQuantity(lineID uuid.UUID, delta int) (Line, error) {
	for i := range c.lines {
		if c.lines[i].ID != lineID {
			continue
		}
		next := c.lines[i].Quantity + delta
		if next < 1 || next > c.lines[i].MaxQuantity {
			return c.lines[i], ErrQuantityOutOfRange
		}
		c.lines[i].Quantity = next
		return c.lines[i], nil
	}
	return Line{}, apperr.NotFound("StockEntryNotFound", "cart line not found")
}

func (c *Cart) Remove(lineID uuid.UUID) {
	for i := range c.lines {
		if c.lines[i].ID == lineID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

func (c *Cart) Lines() []Line {
	return append([]Line(nil), c.lines...)
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) Gross() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (c *Cart) Cost() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.UnitCost.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

func (c *Cart) Units() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) Clear() {
	c.lines = nil
}
