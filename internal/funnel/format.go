package funnel

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// FormatCount renders a count with thousands separators, e.g. 150928 -> "150,928".
func FormatCount(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return humanize.Comma(int64(v))
	}
	return humanize.Commaf(v)
}

// FormatCompact renders a count with a "k" suffix above one thousand, keeping
// at most two decimals: 150928 -> "150.93k", 85000 -> "85k".
func FormatCompact(v float64) string {
	if v >= 1000 {
		s := strconv.FormatFloat(v/1000, 'f', 2, 64)
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
		return s + "k"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatPercent renders a percentage with a fixed number of decimals and a
// trailing "%".
func FormatPercent(p float64, digits int) string {
	return strconv.FormatFloat(p, 'f', digits, 64) + "%"
}
