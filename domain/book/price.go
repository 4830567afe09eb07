package book

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Prices inside the book are int64 ticks. The scale fixes how many
// decimal places one tick represents: "100.25" at scale 2 is 10025.
// Conversion happens only at the edges (feed parsing, CSV export);
// matching never sees a decimal.

// ParsePrice converts a decimal price string to ticks, rounding half
// away from zero when the input is finer than the tick.
func ParsePrice(s string, scale int32) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", s, err)
	}
	return d.Shift(scale).Round(0).IntPart(), nil
}

// FormatPrice renders ticks back to a decimal string.
func FormatPrice(ticks int64, scale int32) string {
	return decimal.New(ticks, -scale).String()
}
