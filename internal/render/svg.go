package render

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo/float"

	"github.com/tonhe/funnel/internal/geometry"
)

const fontFamily = `font-family="Go, Helvetica, Arial, sans-serif"`

// SVGCanvas writes resolution-independent SVG markup. Gradient and pattern
// definitions are emitted the first time a paint with a given ID is used.
type SVGCanvas struct {
	svg   *svg.SVG
	size  geometry.Size
	defs  map[string]bool
	faces faces
}

// NewSVGCanvas starts an SVG document of the given logical size on w. Call
// Close to finish the document.
func NewSVGCanvas(w io.Writer, size geometry.Size, title string) *SVGCanvas {
	s := svg.New(w)
	s.Startview(size.W, size.H, 0, 0, size.W, size.H)
	if title != "" {
		s.Title(title)
	}
	return &SVGCanvas{svg: s, size: size, defs: make(map[string]bool)}
}

// Close writes the closing tag.
func (c *SVGCanvas) Close() {
	c.svg.End()
}

func (c *SVGCanvas) Size() geometry.Size { return c.size }

func (c *SVGCanvas) FillPath(p geometry.Path, paint Paint) {
	if p.Empty() {
		return
	}
	c.svg.Path(p.SVGData(), c.fill(paint)...)
}

func (c *SVGCanvas) StrokePath(p geometry.Path, s Stroke) {
	if p.Empty() || s.Width <= 0 {
		return
	}
	attrs := []string{
		`fill="none"`,
		attr("stroke", s.Color),
		attr("stroke-width", fnum(s.Width)),
		attr("stroke-opacity", fnum(s.Opacity)),
		`stroke-linejoin="round"`,
	}
	if len(s.Dash) > 0 {
		dash := make([]string, len(s.Dash))
		for i, d := range s.Dash {
			dash[i] = fnum(d)
		}
		attrs = append(attrs, attr("stroke-dasharray", strings.Join(dash, ",")))
	}
	c.svg.Path(p.SVGData(), attrs...)
}

func (c *SVGCanvas) Text(x, y float64, s string, style TextStyle) {
	attrs := []string{
		fontFamily,
		attr("font-size", fnum(style.Size)),
		attr("fill", style.Color),
		attr("text-anchor", style.Anchor.svg()),
	}
	if style.Bold {
		attrs = append(attrs, `font-weight="600"`)
	}
	c.svg.Text(x, y, s, attrs...)
}

func (c *SVGCanvas) MeasureText(s string, style TextStyle) float64 {
	return c.faces.measure(s, style.Size, style.Bold)
}

// fill returns the attributes for paint, writing its definition first if
// this is the first use of its ID.
func (c *SVGCanvas) fill(paint Paint) []string {
	switch p := paint.(type) {
	case Solid:
		return []string{attr("fill", p.Color), attr("fill-opacity", fnum(p.Opacity))}
	case LinearGradient:
		if !c.defs[p.ID] {
			c.defs[p.ID] = true
			stops := make([]svg.Offcolor, len(p.Stops))
			for i, s := range p.Stops {
				stops[i] = svg.Offcolor{Offset: percent(s.Offset), Color: s.Color, Opacity: s.Opacity}
			}
			c.svg.Def()
			c.svg.LinearGradient(p.ID, percent(p.X1), percent(p.Y1), percent(p.X2), percent(p.Y2), stops)
			c.svg.DefEnd()
		}
		return []string{attr("fill", "url(#"+p.ID+")")}
	case Hatch:
		if !c.defs[p.ID] {
			c.defs[p.ID] = true
			n := p.Size
			c.svg.Def()
			c.svg.Pattern(p.ID, 0, 0, n, n, "user")
			c.svg.Path(fmt.Sprintf("M 0 %s L %s 0", fnum(n), fnum(n)),
				`fill="none"`, attr("stroke", p.Color), attr("stroke-opacity", fnum(p.Opacity)), attr("stroke-width", fnum(p.Width)))
			c.svg.PatternEnd()
			c.svg.DefEnd()
		}
		return []string{attr("fill", "url(#"+p.ID+")")}
	default:
		return []string{`fill="none"`}
	}
}

func attr(name, value string) string {
	return name + `="` + value + `"`
}

func fnum(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func percent(f float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, f)) * 100))
}
