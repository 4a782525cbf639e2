package cart

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/fekuna/omnipos-retail-service/internal/catalog"
	"github.com/fekuna/omnipos-retail-service/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func match(entryID string, qty int, price string) catalog.Match {
	p := &model.Product{
		BaseModel:     model.BaseModel{ID: "p-" + entryID},
		Description:   "Blusa",
		Color:         "Preto",
		PurchasePrice: decimal.RequireFromString("20"),
		FreightCost:   decimal.RequireFromString("3"),
		PackagingCost: decimal.RequireFromString("2"),
		SalePrice:     decimal.RequireFromString(price),
	}
	v := &model.Variant{ID: "v-" + entryID}
	s := &model.StockEntry{ID: entryID, SizeName: "M", Quantity: qty}
	return catalog.Match{Product: p, Variant: v, Stock: s}
}

func TestAddMergesUpToSnapshot(t *testing.T) {
	c := New()
	m := match("s1", 2, "49.90")

	first, err := c.Add(m)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Quantity)
	assert.True(t, decimal.RequireFromString("25").Equal(first.UnitCost))
	assert.Equal(t, "Blusa - Preto (M)", first.ItemDescription())

	second, err := c.Add(m)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.Quantity)

	_, err = c.Add(m)
	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 2, c.Lines()[0].Quantity)
}

func TestAddRejectsEmptyStock(t *testing.T) {
	c := New()
	_, err := c.Add(match("s1", 0, "10"))
	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.Zero(t, c.Len())
}

func TestChangeQuantityBounds(t *testing.T) {
	c := New()
	line, err := c.Add(match("s1", 3, "10"))
	require.NoError(t, err)

	_, err = c.ChangeQuantity(line.ID, -1)
	assert.True(t, errors.Is(err, ErrQuantityOutOfRange))

	updated, err := c.ChangeQuantity(line.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Quantity)

	_, err = c.ChangeQuantity(line.ID, 1)
	assert.True(t, errors.Is(err, ErrQuantityOutOfRange))
	assert.Equal(t, 3, c.Lines()[0].Quantity)

	_, err = c.ChangeQuantity(uuid.New(), 1)
	assert.Error(t, err)
}

func TestTotalsAndRemove(t *testing.T) {
	c := New()
	a, err := c.Add(match("s1", 5, "49.90"))
	require.NoError(t, err)
	_, err = c.Add(match("s1", 5, "49.90"))
	require.NoError(t, err)
	b, err := c.Add(match("s2", 1, "19.99"))
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("119.79").Equal(c.Gross()), c.Gross().String())
	assert.True(t, decimal.RequireFromString("75").Equal(c.Cost()))
	assert.Equal(t, 3, c.Units())

	c.Remove(b.ID)
	assert.True(t, decimal.RequireFromString("99.80").Equal(c.Gross()))
	c.Remove(uuid.New())
	assert.Equal(t, 1, c.Len())

	c.Remove(a.ID)
	assert.True(t, c.Gross().IsZero())
	assert.Zero(t, c.Units())
}

func TestClear(t *testing.T) {
	c := New()
	_, err := c.Add(match("s1", 1, "10"))
	require.NoError(t, err)
	c.Clear()
	assert.Zero(t, c.Len())
	assert.True(t, c.Gross().IsZero())
}

func TestTotalsFollowLines(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	prices := []string{"9.99", "49.90", "119.90", "0.01", "35"}
	c := New()

	for step := 0; step < 500; step++ {
		lines := c.Lines()
		switch op := rng.Intn(4); {
		case op <= 1 || len(lines) == 0:
			n := rng.Intn(8)
			_, _ = c.Add(match(fmt.Sprint("s", n), 1+rng.Intn(4), prices[n%len(prices)]))
		case op == 2:
			l := lines[rng.Intn(len(lines))]
			_, _ = c.ChangeQuantity(l.ID, rng.Intn(5)-2)
		default:
			c.Remove(lines[rng.Intn(len(lines))].ID)
		}

		gross, cost := decimal.Zero, decimal.Zero
		units := 0
		for _, l := range c.Lines() {
			require.GreaterOrEqual(t, l.Quantity, 1)
			require.LessOrEqual(t, l.Quantity, l.MaxQuantity)
			q := decimal.NewFromInt(int64(l.Quantity))
			gross = gross.Add(l.UnitPrice.Mul(q))
			cost = cost.Add(l.UnitCost.Mul(q))
			units += l.Quantity
		}
		require.True(t, gross.Equal(c.Gross()), "step %d: gross %s, want %s", step, c.Gross(), gross)
		require.True(t, cost.Equal(c.Cost()), "step %d: cost %s, want %s", step, c.Cost(), cost)
		require.Equal(t, units, c.Units(), "step %d", step)
	}
}
