package render

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// parseColor converts a hex colour and opacity into a non-premultiplied
// colour. Unparseable input falls back to black.
func parseColor(hex string, opacity float64) color.NRGBA {
	c, err := colorful.Hex(hex)
	if err != nil {
		c = colorful.Color{}
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha(opacity)}
}

func alpha(opacity float64) uint8 {
	if math.IsNaN(opacity) {
		return 0
	}
	return uint8(math.Round(math.Max(0, math.Min(1, opacity)) * 255))
}

// Mix blends hex towards target by t in Lab space and returns the result as
// hex. Invalid input is returned unchanged.
func Mix(hex, target string, t float64) string {
	a, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	b, err := colorful.Hex(target)
	if err != nil {
		return hex
	}
	return a.BlendLab(b, t).Clamped().Hex()
}
