package engine

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer is the locale-aware message printer for number formatting.
// English is used for consistent thousand separators.
//
//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.English)

// DefaultPrecision is the number of decimals used for money.
const DefaultPrecision = 2

// FormatCount formats an integer with thousand separators ("18,248").
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// FormatDecimal formats f with precision decimals and thousand separators.
func FormatDecimal(f float64, precision int) string {
	if precision < 0 {
		precision = 0
	}
	const base = 10
	multiplier := math.Pow(base, float64(precision))
	rounded := math.Round(f*multiplier) / multiplier

	formatted := fmt.Sprintf("%.*f", precision, math.Abs(rounded))
	intPart, frac, hasFrac := strings.Cut(formatted, ".")

	var whole int64
	if _, err := fmt.Sscan(intPart, &whole); err != nil {
		return fmt.Sprintf("%.*f", precision, rounded)
	}
	out := printer.Sprintf("%d", whole)
	if hasFrac {
		out += "." + frac
	}
	if rounded < 0 {
		out = "-" + out
	}
	return out
}

// FormatCurrency formats an amount as "$1,234.56", or "-$1,234.56".
func FormatCurrency(amount float64, precision int) string {
	s := FormatDecimal(math.Abs(amount), precision)
	if amount < 0 && s != FormatDecimal(0, precision) {
		return "-$" + s
	}
	return "$" + s
}

// FormatPercentChange formats a signed percentage ("+12.5%", "-8.7%").
func FormatPercentChange(pct float64) string {
	switch {
	case pct > 0:
		return fmt.Sprintf("+%.1f%%", pct)
	case pct < 0:
		return fmt.Sprintf("%.1f%%", pct)
	default:
		return "0.0%"
	}
}

// TrendArrow returns an arrow for the sign of pct.
func TrendArrow(pct float64) string {
	switch {
	case pct > 0:
		return "▲" // up triangle
	case pct < 0:
		return "▼" // down triangle
	default:
		return "▶" // right triangle
	}
}
