package render

import (
	"fmt"
	"io"
	"math"

	"github.com/tonhe/funnel/internal/funnel"
	"github.com/tonhe/funnel/internal/geometry"
)

// Chart draws one funnel archetype configured by a Variant. A Chart holds no
// per-render state; Draw may be called repeatedly with the same inputs and
// produces the same output.
type Chart struct {
	variant Variant
}

// New returns a chart for v.
func New(v Variant) Chart {
	return Chart{variant: v}
}

// NewByName looks up a registered variant and returns its chart.
func NewByName(name string) (Chart, error) {
	v, err := Lookup(name)
	if err != nil {
		return Chart{}, err
	}
	return New(v), nil
}

// Variant returns the chart's configuration.
func (c Chart) Variant() Variant { return c.variant }

// Draw repaints the whole chart onto cv. Layers are painted in a fixed order:
// background, guides, data shapes, strokes, labels, tooltip. hover selects
// the region to highlight; pass geometry.NoHit for none.
func (c Chart) Draw(cv Canvas, f funnel.Funnel, hover geometry.Hit) {
	size := cv.Size()
	c.background(cv, size)
	if len(f) == 0 {
		c.placeholder(cv, size)
		return
	}
	derived := funnel.Derive(f, c.variant.Reference)
	switch c.variant.Kind {
	case KindBars:
		c.drawBars(cv, size, f, derived, hover)
	case KindColumns:
		c.drawColumns(cv, size, f, derived, hover)
	default:
		c.drawArea(cv, size, f, derived)
	}
}

// HitTest resolves a logical pointer position to the chart region under it.
func (c Chart) HitTest(size geometry.Size, f funnel.Funnel, p geometry.Point) geometry.Hit {
	if len(f) == 0 {
		return geometry.NoHit
	}
	ref := f.Reference(c.variant.Reference)
	switch c.variant.Kind {
	case KindBars:
		return c.barLayout(size, f.Values(), ref).HitTest(p)
	case KindColumns:
		return c.columnLayout(size, f.Values(), ref).HitTest(p)
	default:
		return geometry.NoHit
	}
}

// Tooltip is the two-line annotation shown for a hovered region.
type Tooltip struct {
	Title  string
	Detail string
}

// TooltipFor returns the annotation for hit, or false when there is none.
func (c Chart) TooltipFor(f funnel.Funnel, hit geometry.Hit) (Tooltip, bool) {
	derived := funnel.Derive(f, c.variant.Reference)
	switch hit.Kind {
	case geometry.HitBar:
		if hit.Index < 0 || hit.Index >= len(derived) {
			return Tooltip{}, false
		}
		d := derived[hit.Index]
		detail := "Completed this Step"
		if d.IsEntry() {
			detail = "Total Active Users"
		}
		return Tooltip{
			Title:  fmt.Sprintf("%s Users (%s)", funnel.FormatCount(d.Value), funnel.FormatPercent(d.CompletionRate, 2)),
			Detail: detail,
		}, true
	case geometry.HitConnector:
		next := hit.Index + 1
		if hit.Index < 0 || next >= len(derived) {
			return Tooltip{}, false
		}
		d := derived[next]
		return Tooltip{
			Title:  fmt.Sprintf("%s Users (%s)", funnel.FormatCount(d.DropCount), funnel.FormatPercent(d.DropRate, 2)),
			Detail: "Dropped out",
		}, true
	default:
		return Tooltip{}, false
	}
}

func (c Chart) background(cv Canvas, size geometry.Size) {
	if c.variant.Palette.Background == "" {
		return
	}
	cv.FillPath(rectPath(geometry.Rect{W: size.W, H: size.H}), Opaque(c.variant.Palette.Background))
}

func (c Chart) placeholder(cv Canvas, size geometry.Size) {
	cv.Text(size.W/2, size.H/2, "No data", TextStyle{
		Color:  c.variant.Palette.Muted,
		Size:   c.variant.Metrics.FontSize + 2,
		Anchor: AnchorMiddle,
	})
}

// tooltip draws a two-line panel anchored above (x, y), kept inside the
// canvas.
func (c Chart) tooltip(cv Canvas, size geometry.Size, x, y float64, t Tooltip) {
	p := c.variant.Palette
	fs := c.variant.Metrics.FontSize
	title := TextStyle{Color: p.PanelText, Size: fs, Bold: true}
	detail := TextStyle{Color: p.PanelText, Size: fs - 1}

	w := math.Max(cv.MeasureText(t.Title, title), cv.MeasureText(t.Detail, detail)) + 24
	h := fs*2 + 22
	box := geometry.Rect{X: x - w/2, Y: y - h - 10, W: w, H: h}
	box.X = math.Max(4, math.Min(box.X, size.W-w-4))
	if box.Y < 4 {
		box.Y = y + 10
	}

	cv.FillPath(geometry.RoundRect(box, 6), Solid{Color: p.Panel, Opacity: 0.92})
	cv.Text(box.X+12, box.Y+8+fs, t.Title, title)
	cv.Text(box.X+12, box.Y+14+fs*2, t.Detail, detail)
}

func rectPath(r geometry.Rect) geometry.Path {
	var p geometry.Path
	p.MoveTo(r.X, r.Y)
	p.LineTo(r.Right(), r.Y)
	p.LineTo(r.Right(), r.Bottom())
	p.LineTo(r.X, r.Bottom())
	p.Close()
	return p
}

// RenderSVG draws f with chart c as a standalone SVG document.
func RenderSVG(w io.Writer, c Chart, f funnel.Funnel, size geometry.Size, hover geometry.Hit) error {
	ew := &errWriter{w: w}
	cv := NewSVGCanvas(ew, size, "Conversion funnel "+c.variant.Name+" chart")
	c.Draw(cv, f, hover)
	cv.Close()
	if ew.err != nil {
		return fmt.Errorf("writing svg: %w", ew.err)
	}
	return nil
}

// RenderPNG draws f with chart c at the given device-pixel ratio and encodes
// the result as PNG.
func RenderPNG(w io.Writer, c Chart, f funnel.Funnel, size geometry.Size, ratio float64, hover geometry.Hit) error {
	cv := NewRasterCanvas(size, ratio)
	c.Draw(cv, f, hover)
	if err := cv.EncodePNG(w); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}

// errWriter keeps the first write error, since the SVG writer discards them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}
