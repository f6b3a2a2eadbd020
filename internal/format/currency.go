// Package format renders breakdowns as text for display and sharing.
//
// Amounts are rounded to cents only here; the calculator never rounds.
package format

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes every formatted amount.
const CurrencySymbol = "R$"

var ErrInvalidAmount = errors.New("invalid amount")

var (
	amountChars = regexp.MustCompile(`^-?[0-9.,]+$`)
	// 1.234 or 1.234.567: dots only ever group thousands
	groupedThousands = regexp.MustCompile(`^-?[1-9][0-9]{0,2}(\.[0-9]{3})+$`)
)

// Currency formats v as Brazilian reais, e.g. "R$ 1.234,56".
// NaN and infinities are treated as zero.
func Currency(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}

	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	whole, cents, _ := strings.Cut(d.StringFixed(2), ".")
	return fmt.Sprintf("%s%s %s,%s", sign, CurrencySymbol, groupThousands(whole), cents)
}

// Percent formats a percentage with a decimal comma and no trailing zeros, e.g. "12,5%".
func Percent(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		p = 0
	}
	s := decimal.NewFromFloat(p).Round(2).String()
	return strings.Replace(s, ".", ",", 1) + "%"
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// ParseAmount parses user-entered money such as "12,50", "1.234,56",
// "R$ 7" or "12.5". A dot followed by groups of exactly three digits is a
// thousands separator, so "1.234" is 1234. Negative amounts and exponent
// forms are rejected.
func ParseAmount(s string) (float64, error) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimPrefix(raw, CurrencySymbol)
	raw = strings.ReplaceAll(raw, " ", "")
	if raw == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	if !amountChars.MatchString(raw) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	switch {
	case groupedThousands.MatchString(raw):
		raw = strings.ReplaceAll(raw, ".", "")
	case strings.Contains(raw, ",") && strings.Contains(raw, "."):
		// 1.234,56
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.Replace(raw, ",", ".", 1)
	case strings.Contains(raw, ","):
		raw = strings.Replace(raw, ",", ".", 1)
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, s)
	}
	return d.InexactFloat64(), nil
}
