package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseCents(t *testing.T) {
	tests := map[string]string{
		"4990":     "49.9",
		"R$ 49,90": "49.9",
		"1.234,56": "1234.56",
		"5":        "0.05",
		"":         "0",
		"abc":      "0",
		"١٢3٤5":    "0.35",
		"R$ ４9,90": "9.9",
	}
	for raw, want := range tests {
		t.Run(raw, func(t *testing.T) {
			assert.True(t, decimal.RequireFromString(want).Equal(ParseCents(raw)), "got %s", ParseCents(raw))
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := map[string]string{
		"89.82":      "89.82",
		"89,82":      "89.82",
		"1.234,50":   "1234.5",
		" R$ 10,00 ": "10",
		"ten":        "0",
		"":           "0",
	}
	for raw, want := range tests {
		t.Run(raw, func(t *testing.T) {
			assert.True(t, decimal.RequireFromString(want).Equal(ParseAmount(raw)), "got %s", ParseAmount(raw))
		})
	}
}

func TestClampQuantity(t *testing.T) {
	assert.Equal(t, 3, ClampQuantity("3"))
	assert.Equal(t, 0, ClampQuantity("-4"))
	assert.Equal(t, 0, ClampQuantity("two"))
	assert.Equal(t, 12, ClampQuantity(" 12 "))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "49,90", Format(decimal.RequireFromString("49.9")))
	assert.Equal(t, "0,00", Format(decimal.Zero))
	assert.Equal(t, "R$ 89,82", FormatBRL(decimal.RequireFromString("89.82")))
	assert.Equal(t, "R$ 8,98", FormatBRL(decimal.RequireFromString("8.982")))
}
