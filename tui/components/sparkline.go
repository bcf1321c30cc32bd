package components

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

var blocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline plots the newest width values of data as block glyphs, scaled
// between the plotted minimum and maximum and padded on the left. A flat
// series sits at mid height.
func Sparkline(data []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if n := len(data); n > width {
		data = data[n-width:]
	}
	out := []rune(strings.Repeat(" ", width-len(data)))
	if len(data) == 0 {
		return string(out)
	}

	lo, hi := slices.Min(data), slices.Max(data)
	top := float64(len(blocks) - 1)
	for _, v := range data {
		level := len(blocks) / 2
		if hi > lo {
			level = int(math.Round((v - lo) / (hi - lo) * top))
		}
		out = append(out, blocks[level])
	}
	return string(out)
}

// FormatDelta formats a change in percentage points with an explicit sign.
// Changes that round to zero print as ±0.00pp.
func FormatDelta(pp float64) string {
	if math.Round(pp*100) == 0 {
		return "±0.00pp"
	}
	return fmt.Sprintf("%+.2fpp", pp)
}
