package render

import (
	"math"
	"strconv"

	"github.com/tonhe/funnel/internal/funnel"
	"github.com/tonhe/funnel/internal/geometry"
)

func (c Chart) columnLayout(size geometry.Size, values []float64, ref float64) geometry.Columns {
	m := c.variant.Metrics
	box := geometry.Rect{
		X: m.Padding.Left,
		Y: m.Padding.Top,
		W: math.Max(0, size.W-m.Padding.Left-m.Padding.Right),
		H: math.Max(0, size.H-m.Padding.Top-m.Padding.Bottom),
	}
	return geometry.ColumnLayout(values, ref, box, m.Gap)
}

// topRounded returns r with its two top corners rounded.
func topRounded(r geometry.Rect, radius float64) geometry.Path {
	return geometry.Bar{Rect: r, Radius: math.Max(0, math.Min(radius, math.Min(r.W/2, r.H)))}.Path()
}

func (c Chart) drawColumns(cv Canvas, size geometry.Size, f funnel.Funnel, derived []funnel.Derived, hover geometry.Hit) {
	p := c.variant.Palette
	m := c.variant.Metrics
	l := c.columnLayout(size, f.Values(), f.Reference(c.variant.Reference))
	fs := m.FontSize

	for i, g := range l.Grid {
		s := Stroke{Color: p.Guide, Opacity: 1, Width: 1}
		if i == len(l.Grid)-1 {
			s.Dash = []float64{4, 4}
		}
		cv.StrokePath(geometry.Line(l.Box.X, g.Y, l.Box.Right(), g.Y), s)
	}

	for i, col := range l.Columns {
		opacity := p.TrackOpacity
		if hover.Kind == geometry.HitBar && hover.Index == i {
			opacity *= 2
		}
		cv.FillPath(topRounded(col.Track, m.Radius), Solid{Color: p.Fill, Opacity: opacity})
	}
	for i, col := range l.Columns {
		fill := p.Fill
		if hover.Kind == geometry.HitBar && hover.Index == i {
			fill = p.Highlight
		}
		cv.FillPath(topRounded(col.Bar, m.Radius), Opaque(fill))
	}

	c.legend(cv, l.Box.X, f)

	axis := TextStyle{Color: p.Muted, Size: fs - 1, Anchor: AnchorEnd}
	for _, g := range l.Grid {
		cv.Text(l.Box.X-8, g.Y+4, strconv.FormatFloat(g.Percent, 'f', -1, 64)+"%", axis)
	}

	percent := TextStyle{Color: p.Text, Size: fs, Bold: true, Anchor: AnchorMiddle}
	value := TextStyle{Color: p.Muted, Size: fs - 1, Anchor: AnchorMiddle}
	number := TextStyle{Color: p.Accent, Size: fs, Bold: true, Anchor: AnchorMiddle}
	name := TextStyle{Color: p.Text, Size: fs, Anchor: AnchorMiddle}
	for i, col := range l.Columns {
		d := derived[i]
		cv.Text(col.Center, col.Bar.Y-fs-10, funnel.FormatPercent(d.PercentOfMax, 2), percent)
		cv.Text(col.Center, col.Bar.Y-6, funnel.FormatCount(d.Value), value)
		cv.Text(col.Center, l.Box.Bottom()+fs+8, strconv.Itoa(i+1), number)
		cv.Text(col.Center, l.Box.Bottom()+2*fs+14, d.Label, name)
	}
}

// legend writes the "Overall" conversion from entry step to last step.
func (c Chart) legend(cv Canvas, x float64, f funnel.Funnel) {
	p := c.variant.Palette
	fs := c.variant.Metrics.FontSize
	y := fs + 12

	cv.FillPath(geometry.RoundRect(geometry.Rect{X: x, Y: y - fs + 2, W: 10, H: 10}, 5), Opaque(p.Fill))
	label := TextStyle{Color: p.Muted, Size: fs}
	cv.Text(x+16, y, "Overall", label)
	lw := cv.MeasureText("Overall", label)
	cv.Text(x+22+lw, y, funnel.FormatPercent(funnel.Overall(f), 2), TextStyle{Color: p.Text, Size: fs, Bold: true})
}
