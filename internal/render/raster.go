package render

import (
	"image"
	"io"
	"math"

	"github.com/fogleman/gg"

	"github.com/tonhe/funnel/internal/geometry"
)

// RasterCanvas draws into an RGBA image whose backing size is the logical
// size multiplied by the device-pixel ratio. Paths are replayed through a
// scaled context so callers keep working in logical units.
type RasterCanvas struct {
	dc    *gg.Context
	scale geometry.Scale
	ratio float64
	faces faces
	// device-size faces used to draw crisp glyphs
	glyphs faces
}

// NewRasterCanvas allocates a canvas of the given logical size. A ratio of 0
// or less is treated as 1.
func NewRasterCanvas(size geometry.Size, ratio float64) *RasterCanvas {
	if ratio <= 0 || math.IsNaN(ratio) {
		ratio = 1
	}
	scale := geometry.NewScale(size, ratio)
	w := int(math.Max(1, math.Ceil(scale.Backing.W)))
	h := int(math.Max(1, math.Ceil(scale.Backing.H)))
	dc := gg.NewContext(w, h)
	dc.Scale(ratio, ratio)
	return &RasterCanvas{dc: dc, scale: scale, ratio: ratio}
}

func (c *RasterCanvas) Size() geometry.Size { return c.scale.Logical }

// Scale returns the mapping between logical and backing pixels.
func (c *RasterCanvas) Scale() geometry.Scale { return c.scale }

// Image returns the backing image.
func (c *RasterCanvas) Image() image.Image { return c.dc.Image() }

// EncodePNG writes the backing image as PNG.
func (c *RasterCanvas) EncodePNG(w io.Writer) error { return c.dc.EncodePNG(w) }

func (c *RasterCanvas) FillPath(p geometry.Path, paint Paint) {
	if p.Empty() {
		return
	}
	switch pt := paint.(type) {
	case Solid:
		c.dc.SetColor(parseColor(pt.Color, pt.Opacity))
	case LinearGradient:
		c.dc.SetFillStyle(c.gradient(pt, p.Bounds()))
	case Hatch:
		c.dc.SetFillStyle(c.hatch(pt))
	default:
		return
	}
	c.trace(p)
	c.dc.Fill()
}

func (c *RasterCanvas) StrokePath(p geometry.Path, s Stroke) {
	if p.Empty() || s.Width <= 0 {
		return
	}
	c.dc.SetColor(parseColor(s.Color, s.Opacity))
	c.dc.SetLineWidth(s.Width * c.ratio)
	c.dc.SetLineJoinRound()
	if len(s.Dash) > 0 {
		dash := make([]float64, len(s.Dash))
		for i, d := range s.Dash {
			dash[i] = d * c.ratio
		}
		c.dc.SetDash(dash...)
	} else {
		c.dc.SetDash()
	}
	c.trace(p)
	c.dc.Stroke()
}

// Text draws in device space with a ratio-sized face so glyphs are
// rasterised at full resolution instead of being resampled.
func (c *RasterCanvas) Text(x, y float64, s string, style TextStyle) {
	c.dc.Push()
	defer c.dc.Pop()
	c.dc.Identity()
	c.dc.SetFontFace(c.glyphs.face(style.Size*c.ratio, style.Bold))
	c.dc.SetColor(parseColor(style.Color, 1))
	c.dc.DrawStringAnchored(s, x*c.ratio, y*c.ratio, style.Anchor.fraction(), 0)
}

func (c *RasterCanvas) MeasureText(s string, style TextStyle) float64 {
	return c.faces.measure(s, style.Size, style.Bold)
}

func (c *RasterCanvas) trace(p geometry.Path) {
	c.dc.ClearPath()
	for _, s := range p.Segments {
		switch s.Op {
		case geometry.OpMove:
			c.dc.MoveTo(s.Pts[0].X, s.Pts[0].Y)
		case geometry.OpLine:
			c.dc.LineTo(s.Pts[0].X, s.Pts[0].Y)
		case geometry.OpQuad:
			c.dc.QuadraticTo(s.Pts[0].X, s.Pts[0].Y, s.Pts[1].X, s.Pts[1].Y)
		case geometry.OpCubic:
			c.dc.CubicTo(s.Pts[0].X, s.Pts[0].Y, s.Pts[1].X, s.Pts[1].Y, s.Pts[2].X, s.Pts[2].Y)
		case geometry.OpClose:
			c.dc.ClosePath()
		}
	}
}

// gradient maps the paint's bounding-box vector into device pixels.
func (c *RasterCanvas) gradient(g LinearGradient, b geometry.Rect) gg.Gradient {
	x0 := (b.X + g.X1*b.W) * c.ratio
	y0 := (b.Y + g.Y1*b.H) * c.ratio
	x1 := (b.X + g.X2*b.W) * c.ratio
	y1 := (b.Y + g.Y2*b.H) * c.ratio
	grad := gg.NewLinearGradient(x0, y0, x1, y1)
	for _, s := range g.Stops {
		grad.AddColorStop(s.Offset, parseColor(s.Color, s.Opacity))
	}
	return grad
}

// hatch renders one tile of the stripe pattern at device resolution.
func (c *RasterCanvas) hatch(h Hatch) gg.Pattern {
	n := int(math.Max(2, math.Round(h.Size*c.ratio)))
	tile := gg.NewContext(n, n)
	tile.SetColor(parseColor(h.Color, h.Opacity))
	tile.SetLineWidth(h.Width * c.ratio)
	tile.DrawLine(0, float64(n), float64(n), 0)
	tile.Stroke()
	return gg.NewSurfacePattern(tile.Image(), gg.RepeatBoth)
}
