package render

import (
	"fmt"
	"math"

	"github.com/tonhe/funnel/internal/funnel"
	"github.com/tonhe/funnel/internal/geometry"
)

// areaLayout places the curve inside the plot so that the light band drawn
// along the top edge never leaves the canvas: points sit at least half a
// band below the top, and the fill is shifted down by the same amount.
func (c Chart) areaLayout(size geometry.Size, values []float64, ref float64) (geometry.Area, float64) {
	m := c.variant.Metrics
	plotH := math.Max(0, size.H-m.Padding.Top-m.Padding.Bottom)
	half := math.Min(m.BandWidth/2, plotH/2)
	box := geometry.Rect{
		X: m.Padding.Left,
		Y: m.Padding.Top + half,
		W: math.Max(0, size.W-m.Padding.Left-m.Padding.Right),
		H: plotH - 2*half,
	}
	return geometry.AreaLayout(values, ref, box, geometry.DefaultCurve), half
}

func (c Chart) drawArea(cv Canvas, size geometry.Size, f funnel.Funnel, derived []funnel.Derived) {
	p := c.variant.Palette
	m := c.variant.Metrics
	a, half := c.areaLayout(size, f.Values(), f.Reference(c.variant.Reference))
	top := m.Padding.Top
	bottom := a.Box.Bottom() + half

	for _, x := range a.Dividers {
		cv.StrokePath(geometry.Line(x, top, x, size.H), Stroke{Color: p.Guide, Opacity: 1, Width: 2})
	}

	fill := a.Fill.Translate(0, half)
	cv.FillPath(fill, Vertical("area-gradient", p.Fill, p.FillEnd))
	cv.FillPath(fill, Hatch{ID: "area-hatch", Color: p.Hatch, Opacity: p.HatchOpacity, Size: 10, Width: 1})

	cv.StrokePath(a.Top, Stroke{Color: p.Band, Opacity: 1, Width: half * 2})
	cv.StrokePath(a.Top.Translate(0, half), Stroke{Color: p.Stroke, Opacity: 1, Width: m.BorderWidth})

	fs := m.FontSize
	for i, d := range derived {
		band := a.Bands[i]
		x := band.Left + 12
		y := bottom + 8 + fs
		cv.Text(x, y, d.Label, TextStyle{Color: p.Muted, Size: fs})
		cv.Text(x, y+fs+8, funnel.FormatCount(d.Value), TextStyle{Color: p.Text, Size: fs + 5, Bold: true})
		if d.DropCount > 0 {
			drop := fmt.Sprintf("Drop off %s (%s)", funnel.FormatCount(d.DropCount), funnel.FormatPercent(d.DropRate, 1))
			cv.Text(x, y+2*fs+22, drop, TextStyle{Color: p.Accent, Size: fs - 1})
		}
	}
}
