package render

import (
	"fmt"
	"math"

	"github.com/tonhe/funnel/internal/funnel"
	"github.com/tonhe/funnel/internal/geometry"
)

func (c Chart) barLayout(size geometry.Size, values []float64, ref float64) geometry.Bars {
	m := c.variant.Metrics
	plotH := math.Max(0, size.H-m.Padding.Top-m.Padding.Bottom)
	if m.PlotHeight > 0 {
		plotH = math.Min(plotH, m.PlotHeight)
	}
	box := geometry.Rect{
		X: m.Padding.Left,
		Y: m.Padding.Top,
		W: math.Max(0, size.W-m.Padding.Left-m.Padding.Right),
		H: plotH,
	}
	return geometry.BarLayout(values, ref, box, geometry.BarOptions{Width: m.BarWidth, Radius: m.Radius})
}

// barLabel shows the compact count on bars at 100% of the reference and the
// percentage everywhere else.
func barLabel(d funnel.Derived) string {
	if d.PercentOfMax == 100 {
		return funnel.FormatCompact(d.Value)
	}
	return funnel.FormatPercent(d.PercentOfMax, 2)
}

func (c Chart) drawBars(cv Canvas, size geometry.Size, f funnel.Funnel, derived []funnel.Derived, hover geometry.Hit) {
	p := c.variant.Palette
	m := c.variant.Metrics
	l := c.barLayout(size, f.Values(), f.Reference(c.variant.Reference))

	cv.StrokePath(geometry.Line(l.Box.X-20, l.Baseline, l.Box.Right()+20, l.Baseline), Stroke{Color: p.Guide, Opacity: 1, Width: 1})

	cv.FillPath(l.Silhouette, Opaque(p.Shadow))
	if hover.Kind == geometry.HitConnector && hover.Index >= 0 && hover.Index < len(l.Connectors) {
		cv.FillPath(l.Connectors[hover.Index].Region, Solid{Color: p.Stroke, Opacity: 0.35})
	}
	for i, b := range l.Bars {
		fill := p.Fill
		if hover.Kind == geometry.HitBar && hover.Index == i {
			fill = p.Highlight
		}
		cv.FillPath(b.Path(), Opaque(fill))
	}

	for _, b := range l.Bars {
		cv.StrokePath(b.Path(), Stroke{Color: p.Stroke, Opacity: 1, Width: m.BorderWidth})
	}

	fs := m.FontSize
	label := TextStyle{Color: p.Text, Size: fs, Bold: true, Anchor: AnchorMiddle}
	for i, b := range l.Bars {
		cv.Text(b.Center, b.Rect.Y-8, barLabel(derived[i]), label)
	}
	c.barStats(cv, l, derived)

	if !c.variant.Tooltips {
		return
	}
	t, ok := c.TooltipFor(f, hover)
	if !ok {
		return
	}
	switch hover.Kind {
	case geometry.HitBar:
		b := l.Bars[hover.Index]
		c.tooltip(cv, size, b.Center, b.Rect.Y-fs-10, t)
	case geometry.HitConnector:
		conn := l.Connectors[hover.Index]
		c.tooltip(cv, size, (conn.Start.X+conn.End.X)/2, math.Min(conn.Start.Y, conn.End.Y), t)
	}
}

// barStats writes the step name, completion row and drop-off row under each
// bar.
func (c Chart) barStats(cv Canvas, l geometry.Bars, derived []funnel.Derived) {
	p := c.variant.Palette
	fs := c.variant.Metrics.FontSize
	name := TextStyle{Color: p.Text, Size: fs, Bold: true, Anchor: AnchorMiddle}
	value := TextStyle{Color: p.Accent, Size: fs - 1, Anchor: AnchorMiddle}
	muted := TextStyle{Color: p.Muted, Size: fs - 2, Anchor: AnchorMiddle}

	for i, d := range derived {
		x := l.Bands[i].Center()
		y := l.Baseline + fs + 10
		cv.Text(x, y, d.Label, name)

		y += fs + 6
		cv.Text(x, y, fmt.Sprintf("%s Users (%s)", funnel.FormatCount(d.Value), funnel.FormatPercent(d.CompletionRate, 2)), value)
		detail := "Completed this Step"
		if d.IsEntry() {
			detail = "Total Active Users"
		}
		y += fs + 2
		cv.Text(x, y, detail, muted)

		if d.IsEntry() {
			continue
		}
		y += fs + 6
		cv.Text(x, y, fmt.Sprintf("%s Users (%s)", funnel.FormatCount(d.DropCount), funnel.FormatPercent(d.DropRate, 2)), TextStyle{Color: p.Muted, Size: fs - 1, Anchor: AnchorMiddle})
		y += fs + 2
		cv.Text(x, y, "Dropped out", muted)
	}
}
