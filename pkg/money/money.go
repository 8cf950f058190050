// Package money formats and parses rupee amounts for admin-facing text.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Symbol prefixes every formatted amount.
const Symbol = "₹"

var printer = message.NewPrinter(language.English)

// Format renders d with thousands grouping: 85000 → "₹85,000",
// 1234.5 → "₹1,234.50". Whole amounts omit decimals.
func Format(d decimal.Decimal) string {
	return Symbol + Group(d)
}

// Group renders d with thousands separators and no currency symbol.
func Group(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return printer.Sprintf("%d", d.IntPart())
	}
	return printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

// Parse reads a user-entered amount, tolerating a leading symbol and
// grouping commas.
func Parse(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, Symbol)
	s = strings.ReplaceAll(s, ",", "")
	return decimal.NewFromString(strings.TrimSpace(s))
}
