package geometry

import (
	"math"
	"strconv"
	"strings"
)

// Point is a position in logical (CSS-pixel-like) coordinates.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle with its origin at the top-left corner.
type Rect struct {
	X, Y, W, H float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Contains reports whether p lies inside r. All four edges are inclusive so a
// pointer resting exactly on an edge always resolves the same way.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// Op is a path drawing instruction.
type Op int

const (
	OpMove Op = iota
	OpLine
	OpQuad
	OpCubic
	OpClose
)

// Segment is a single path instruction. Pts holds the control points followed
// by the end point; unused entries are zero.
type Segment struct {
	Op  Op
	Pts [3]Point
}

// End returns the point the segment finishes on.
func (s Segment) End() Point {
	switch s.Op {
	case OpQuad:
		return s.Pts[1]
	case OpCubic:
		return s.Pts[2]
	default:
		return s.Pts[0]
	}
}

// Path is a resolution-independent outline built from move, line, quadratic,
// cubic and close instructions. Both rendering back-ends replay it verbatim.
type Path struct {
	Segments []Segment
}

func (p *Path) MoveTo(x, y float64) {
	p.Segments = append(p.Segments, Segment{Op: OpMove, Pts: [3]Point{{x, y}}})
}

func (p *Path) LineTo(x, y float64) {
	p.Segments = append(p.Segments, Segment{Op: OpLine, Pts: [3]Point{{x, y}}})
}

func (p *Path) QuadTo(cx, cy, x, y float64) {
	p.Segments = append(p.Segments, Segment{Op: OpQuad, Pts: [3]Point{{cx, cy}, {x, y}}})
}

func (p *Path) CubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	p.Segments = append(p.Segments, Segment{Op: OpCubic, Pts: [3]Point{{c1x, c1y}, {c2x, c2y}, {x, y}}})
}

func (p *Path) Close() {
	p.Segments = append(p.Segments, Segment{Op: OpClose})
}

// Empty reports whether the path has no drawing instructions.
func (p Path) Empty() bool {
	return len(p.Segments) == 0
}

// Translate returns a copy of the path shifted by (dx, dy).
func (p Path) Translate(dx, dy float64) Path {
	out := Path{Segments: make([]Segment, len(p.Segments))}
	for i, s := range p.Segments {
		if s.Op != OpClose {
			for j := range s.Pts {
				s.Pts[j].X += dx
				s.Pts[j].Y += dy
			}
		}
		out.Segments[i] = s
	}
	return out
}

// SVGData renders the path as an SVG path "d" attribute.
func (p Path) SVGData() string {
	var sb strings.Builder
	for i, s := range p.Segments {
		if i > 0 {
			sb.WriteByte(' ')
		}
		switch s.Op {
		case OpMove:
			sb.WriteString("M " + pt(s.Pts[0]))
		case OpLine:
			sb.WriteString("L " + pt(s.Pts[0]))
		case OpQuad:
			sb.WriteString("Q " + pt(s.Pts[0]) + ", " + pt(s.Pts[1]))
		case OpCubic:
			sb.WriteString("C " + pt(s.Pts[0]) + ", " + pt(s.Pts[1]) + ", " + pt(s.Pts[2]))
		case OpClose:
			sb.WriteString("Z")
		}
	}
	return sb.String()
}

func pt(p Point) string {
	return num(p.X) + " " + num(p.Y)
}

func num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

// curveSteps is the number of line segments each curve is split into when
// flattening.
const curveSteps = 24

// Flatten converts the path into polylines, one per subpath. Curves are
// subdivided uniformly.
func (p Path) Flatten() [][]Point {
	var (
		polys [][]Point
		cur   []Point
		start Point
		last  Point
	)
	flush := func() {
		if len(cur) > 1 {
			polys = append(polys, cur)
		}
		cur = nil
	}
	for _, s := range p.Segments {
		switch s.Op {
		case OpMove:
			flush()
			start, last = s.Pts[0], s.Pts[0]
			cur = []Point{last}
		case OpLine:
			if cur == nil {
				cur = []Point{last}
			}
			last = s.Pts[0]
			cur = append(cur, last)
		case OpQuad:
			if cur == nil {
				cur = []Point{last}
			}
			for i := 1; i <= curveSteps; i++ {
				cur = append(cur, quadAt(last, s.Pts[0], s.Pts[1], float64(i)/curveSteps))
			}
			last = s.Pts[1]
		case OpCubic:
			if cur == nil {
				cur = []Point{last}
			}
			for i := 1; i <= curveSteps; i++ {
				cur = append(cur, cubicAt(last, s.Pts[0], s.Pts[1], s.Pts[2], float64(i)/curveSteps))
			}
			last = s.Pts[2]
		case OpClose:
			if cur != nil {
				cur = append(cur, start)
			}
			flush()
			last = start
		}
	}
	flush()
	return polys
}

// Bounds returns the bounding box of the flattened path.
func (p Path) Bounds() Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, poly := range p.Flatten() {
		for _, q := range poly {
			minX, maxX = math.Min(minX, q.X), math.Max(maxX, q.X)
			minY, maxY = math.Min(minY, q.Y), math.Max(maxY, q.Y)
		}
	}
	if math.IsInf(minX, 1) {
		return Rect{}
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Contains reports whether q is inside the path using the even-odd rule.
// Every subpath is treated as closed.
func (p Path) Contains(q Point) bool {
	return PolygonsContain(p.Flatten(), q)
}

// PolygonsContain applies the even-odd rule to already flattened polylines,
// for callers testing many points against one path.
func PolygonsContain(polys [][]Point, q Point) bool {
	inside := false
	for _, poly := range polys {
		n := len(poly)
		for i, j := 0, n-1; i < n; j, i = i, i+1 {
			a, b := poly[i], poly[j]
			if (a.Y > q.Y) != (b.Y > q.Y) {
				x := (b.X-a.X)*(q.Y-a.Y)/(b.Y-a.Y) + a.X
				if q.X < x {
					inside = !inside
				}
			}
		}
	}
	return inside
}

func quadAt(p0, c, p1 Point, t float64) Point {
	mt := 1 - t
	return Point{
		X: mt*mt*p0.X + 2*mt*t*c.X + t*t*p1.X,
		Y: mt*mt*p0.Y + 2*mt*t*c.Y + t*t*p1.Y,
	}
}

func cubicAt(p0, c1, c2, p1 Point, t float64) Point {
	mt := 1 - t
	a, b, c, d := mt*mt*mt, 3*mt*mt*t, 3*mt*t*t, t*t*t
	return Point{
		X: a*p0.X + b*c1.X + c*c2.X + d*p1.X,
		Y: a*p0.Y + b*c1.Y + c*c2.Y + d*p1.Y,
	}
}
