// Package money formats monetary amounts for display.
package money

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Round returns v rounded half away from zero to cents. v must be finite.
func Round(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// FormatUSD renders v as a dollar amount with thousands separators,
// e.g. 1234.5 -> "$1,234.50" and -3 -> "-$3.00". NaN and infinities are
// rendered as-is.
func FormatUSD(v float64) string {
	if !isFinite(v) {
		return formatNonFinite(v)
	}
	d := Round(v)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	s := d.StringFixed(2)
	whole, cents, _ := strings.Cut(s, ".")
	return sign + "$" + groupThousands(whole) + "." + cents
}

// FormatPercent renders a fraction as a percentage with the given precision,
// e.g. 0.95 -> "95.00%".
func FormatPercent(fraction float64, places int32) string {
	if !isFinite(fraction) {
		return formatNonFinite(fraction)
	}
	return decimal.NewFromFloat(fraction).Shift(2).StringFixed(places) + "%"
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
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func formatNonFinite(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
