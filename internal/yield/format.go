package yield

import "github.com/shopspring/decimal"

// FormatPercent renders a percentage with two decimals, e.g. "12.50%".
// Halves round away from zero on the decimal value, so 9.125 renders as "9.13%".
func FormatPercent(v float64) string {
	return fixed2(v) + "%"
}

// FormatUSD renders a dollar amount with an m/k suffix above 1e6/1e3.
func FormatUSD(v float64) string {
	v = clampNonNegative(v)
	switch {
	case v >= 1_000_000:
		return "$" + fixed2(v/1_000_000) + "m"
	case v >= 1_000:
		return "$" + fixed2(v/1_000) + "k"
	default:
		return "$" + fixed2(v)
	}
}

func fixed2(v float64) string {
	v = clampNonNegative(v)
	return decimal.NewFromFloat(v).StringFixed(2)
}
