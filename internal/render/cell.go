package render

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/tonhe/funnel/internal/funnel"
	"github.com/tonhe/funnel/internal/geometry"
)

// Cell is one terminal character. Shape cells are drawn as an upper half
// block with Top as foreground and Bottom as background; text cells use FG
// on BG.
type Cell struct {
	Rune rune
	FG   string
	BG   string
}

// CellCanvas rasterises a chart onto a grid of terminal cells. Every cell
// holds two vertically stacked pixels, so the pixel grid is cols by 2*rows.
type CellCanvas struct {
	size       geometry.Size
	cols, rows int
	px         []colorful.Color
	text       []rune
	textColor  []string
}

// NewCellCanvas returns a canvas of the given logical size backed by a
// cols x rows cell grid.
func NewCellCanvas(size geometry.Size, cols, rows int) *CellCanvas {
	cols, rows = max(cols, 1), max(rows, 1)
	return &CellCanvas{
		size:      size,
		cols:      cols,
		rows:      rows,
		px:        make([]colorful.Color, cols*rows*2),
		text:      make([]rune, cols*rows),
		textColor: make([]string, cols*rows),
	}
}

func (c *CellCanvas) Size() geometry.Size { return c.size }

// Scale maps logical coordinates to cell coordinates.
func (c *CellCanvas) Scale() geometry.Scale {
	return geometry.Scale{Logical: c.size, Backing: geometry.Size{W: float64(c.cols), H: float64(c.rows)}}
}

func (c *CellCanvas) pixelW() float64 { return c.size.W / float64(c.cols) }
func (c *CellCanvas) pixelH() float64 { return c.size.H / float64(c.rows*2) }

// center returns the logical centre of pixel (i, j).
func (c *CellCanvas) center(i, j int) geometry.Point {
	return geometry.Point{X: (float64(i) + 0.5) * c.pixelW(), Y: (float64(j) + 0.5) * c.pixelH()}
}

func (c *CellCanvas) blend(i, j int, col colorful.Color, opacity float64) {
	if i < 0 || j < 0 || i >= c.cols || j >= c.rows*2 || opacity <= 0 {
		return
	}
	k := j*c.cols + i
	c.px[k] = c.px[k].BlendRgb(col, math.Min(opacity, 1)).Clamped()
}

func (c *CellCanvas) FillPath(p geometry.Path, paint Paint) {
	polys := p.Flatten()
	if len(polys) == 0 {
		return
	}
	b := p.Bounds()
	i0, i1 := c.span(b.X, b.Right(), c.pixelW(), c.cols)
	j0, j1 := c.span(b.Y, b.Bottom(), c.pixelH(), c.rows*2)
	for j := j0; j <= j1; j++ {
		for i := i0; i <= i1; i++ {
			q := c.center(i, j)
			if !geometry.PolygonsContain(polys, q) {
				continue
			}
			col, op := c.sample(paint, b, q)
			c.blend(i, j, col, op)
		}
	}
}

// span returns the pixel index range covering [lo, hi] along one axis.
func (c *CellCanvas) span(lo, hi, step float64, n int) (int, int) {
	a := int(math.Floor(lo / step))
	z := int(math.Ceil(hi / step))
	return max(a, 0), min(z, n-1)
}

// sample evaluates a paint at q within the filled shape's bounds b.
func (c *CellCanvas) sample(paint Paint, b geometry.Rect, q geometry.Point) (colorful.Color, float64) {
	switch p := paint.(type) {
	case Solid:
		return hexColor(p.Color), p.Opacity
	case LinearGradient:
		return gradientAt(p, b, q)
	case Hatch:
		size := p.Size
		if size <= 0 {
			size = 10
		}
		// stripes are at least one pixel wide
		d := math.Mod(q.X+q.Y, size)
		if d < math.Max(p.Width, c.pixelW()) {
			return hexColor(p.Color), p.Opacity
		}
		return colorful.Color{}, 0
	default:
		return colorful.Color{}, 0
	}
}

func gradientAt(g LinearGradient, b geometry.Rect, q geometry.Point) (colorful.Color, float64) {
	if len(g.Stops) == 0 {
		return colorful.Color{}, 0
	}
	x1, y1 := b.X+g.X1*b.W, b.Y+g.Y1*b.H
	x2, y2 := b.X+g.X2*b.W, b.Y+g.Y2*b.H
	dx, dy := x2-x1, y2-y1
	t := 0.0
	if l := dx*dx + dy*dy; l > 0 {
		t = ((q.X-x1)*dx + (q.Y-y1)*dy) / l
	}
	t = math.Max(0, math.Min(1, t))

	prev := g.Stops[0]
	if t <= prev.Offset {
		return hexColor(prev.Color), prev.Opacity
	}
	for _, s := range g.Stops[1:] {
		if t <= s.Offset {
			span := s.Offset - prev.Offset
			f := 1.0
			if span > 0 {
				f = (t - prev.Offset) / span
			}
			col := hexColor(prev.Color).BlendLab(hexColor(s.Color), f)
			return col, prev.Opacity + (s.Opacity-prev.Opacity)*f
		}
		prev = s
	}
	return hexColor(prev.Color), prev.Opacity
}

func (c *CellCanvas) StrokePath(p geometry.Path, s Stroke) {
	if s.Width <= 0 {
		return
	}
	col := hexColor(s.Color)
	step := math.Min(c.pixelW(), c.pixelH()) / 2
	pattern := dashes(s.Dash)
	for _, poly := range p.Flatten() {
		travelled := 0.0
		for k := 1; k < len(poly); k++ {
			a, b := poly[k-1], poly[k]
			length := math.Hypot(b.X-a.X, b.Y-a.Y)
			n := int(math.Ceil(length/step)) + 1
			for m := 0; m < n; m++ {
				t := float64(m) / float64(max(n-1, 1))
				if pattern != nil && !pattern(travelled+t*length) {
					continue
				}
				x := a.X + (b.X-a.X)*t
				y := a.Y + (b.Y-a.Y)*t
				c.blend(int(x/c.pixelW()), int(y/c.pixelH()), col, s.Opacity)
			}
			travelled += length
		}
	}
}

// dashes returns a predicate reporting whether distance d along a line is
// inside a dash, or nil for solid lines.
func dashes(dash []float64) func(d float64) bool {
	total := 0.0
	for _, v := range dash {
		total += v
	}
	if len(dash) == 0 || total <= 0 {
		return nil
	}
	return func(d float64) bool {
		d = math.Mod(d, total)
		for i, v := range dash {
			if d < v {
				return i%2 == 0
			}
			d -= v
		}
		return false
	}
}

// Text places s on the cell row containing the middle of the glyphs. Text
// drawn later replaces earlier text in the same cells.
func (c *CellCanvas) Text(x, y float64, s string, style TextStyle) {
	runes := []rune(s)
	if len(runes) == 0 {
		return
	}
	cw := c.size.W / float64(c.cols)
	ch := c.size.H / float64(c.rows)
	row := int(math.Floor((y - style.Size*0.35) / ch))
	if row < 0 || row >= c.rows {
		return
	}
	start := int(math.Round((x - float64(len(runes))*cw*style.Anchor.fraction()) / cw))
	for k, r := range runes {
		col := start + k
		if col < 0 || col >= c.cols {
			continue
		}
		c.text[row*c.cols+col] = r
		c.textColor[row*c.cols+col] = style.Color
	}
}

// MeasureText returns the logical width of s at one rune per cell.
func (c *CellCanvas) MeasureText(s string, _ TextStyle) float64 {
	return float64(len([]rune(s))) * c.size.W / float64(c.cols)
}

// Cells returns the grid row by row.
func (c *CellCanvas) Cells() [][]Cell {
	out := make([][]Cell, c.rows)
	for r := range out {
		row := make([]Cell, c.cols)
		for i := range row {
			top := c.px[(2*r)*c.cols+i]
			bottom := c.px[(2*r+1)*c.cols+i]
			k := r*c.cols + i
			if c.text[k] != 0 {
				row[i] = Cell{Rune: c.text[k], FG: c.textColor[k], BG: top.BlendRgb(bottom, 0.5).Clamped().Hex()}
				continue
			}
			row[i] = Cell{Rune: '▀', FG: top.Hex(), BG: bottom.Hex()}
		}
		out[r] = row
	}
	return out
}

func hexColor(hex string) colorful.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}
	}
	return c
}

// RenderCells draws f with chart c onto a cols x rows terminal grid.
func RenderCells(c Chart, f funnel.Funnel, size geometry.Size, cols, rows int, hover geometry.Hit) [][]Cell {
	cv := NewCellCanvas(size, cols, rows)
	c.Draw(cv, f, hover)
	return cv.Cells()
}
