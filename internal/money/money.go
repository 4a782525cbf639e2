// Package money parses and formats the currency and quantity values typed at the counter.
// Nothing here fails: unreadable input becomes zero.
package money

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// ParseCents reads the digits of raw as an amount in cents, so "4990" and "R$ 49,90" are both 49.90.
func ParseCents(raw string) decimal.Decimal {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero
	}
	return d.Shift(-2)
}

// ParseAmount reads a decimal written with either separator: "89.82", "89,82" or "1.234,50".
func ParseAmount(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ClampQuantity reads a whole quantity. Negative or unreadable input is 0.
func ClampQuantity(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Format renders d with two decimals in Brazilian notation.
func Format(d decimal.Decimal) string {
	return printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

func FormatBRL(d decimal.Decimal) string {
	return "R$ " + Format(d)
}
