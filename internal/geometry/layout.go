package geometry

import "math"

// Band is one of the equal-width horizontal slots a chart is divided into,
// one per step.
type Band struct {
	Left, Right float64
}

func (b Band) Width() float64  { return b.Right - b.Left }
func (b Band) Center() float64 { return (b.Left + b.Right) / 2 }

// Bands divides width into n equal bands starting at left.
func Bands(n int, left, width float64) []Band {
	if n <= 0 {
		return nil
	}
	w := width / float64(n)
	bands := make([]Band, n)
	for i := range bands {
		bands[i] = Band{Left: left + float64(i)*w, Right: left + float64(i+1)*w}
	}
	return bands
}

// Fraction returns value/ref clamped to [0, 1]. A non-positive or non-finite
// reference yields 0.
func Fraction(value, ref float64) float64 {
	if ref <= 0 || math.IsInf(ref, 0) || math.IsNaN(ref) || math.IsNaN(value) {
		return 0
	}
	return math.Max(0, math.Min(1, value/ref))
}

// Curve sets where the control points of a step transition sit, as fractions
// of the band width measured from the band's left and right edges.
type Curve struct {
	Lead  float64
	Trail float64
}

// DefaultCurve gives an S-shaped transition that settles before the next band.
var DefaultCurve = Curve{Lead: 0.65, Trail: 0.35}

// Area is the layout of a smoothed area chart.
type Area struct {
	Box      Rect
	Bands    []Band
	Points   []Point
	Top      Path
	Fill     Path
	Dividers []float64
}

// AreaLayout places one point per value at its band centre and builds the top
// edge: each band carries a cubic from its own level to the next step's
// level, and the last band is flat to the right edge.
func AreaLayout(values []float64, ref float64, box Rect, curve Curve) Area {
	a := Area{Box: box, Bands: Bands(len(values), box.X, box.W)}
	if len(values) == 0 {
		return a
	}

	a.Points = make([]Point, len(values))
	for i, v := range values {
		a.Points[i] = Point{
			X: a.Bands[i].Center(),
			Y: box.Y + (1-Fraction(v, ref))*box.H,
		}
	}

	a.Top = areaEdge(a.Bands, a.Points, box, curve, false)
	a.Fill = areaEdge(a.Bands, a.Points, box, curve, true)

	for _, b := range a.Bands[1:] {
		a.Dividers = append(a.Dividers, b.Left)
	}
	return a
}

func areaEdge(bands []Band, points []Point, box Rect, curve Curve, closed bool) Path {
	var p Path
	if closed {
		p.MoveTo(box.X, box.Bottom())
		p.LineTo(box.X, points[0].Y)
	} else {
		p.MoveTo(box.X, points[0].Y)
	}
	for i := 0; i < len(points)-1; i++ {
		b := bands[i]
		w := b.Width()
		p.CubicTo(b.Left+w*curve.Lead, points[i].Y, b.Right-w*curve.Trail, points[i+1].Y, b.Right, points[i+1].Y)
	}
	p.LineTo(box.Right(), points[len(points)-1].Y)
	if closed {
		p.LineTo(box.Right(), box.Bottom())
		p.Close()
	}
	return p
}

// Bar is a single rounded-top bar standing on the baseline.
type Bar struct {
	Rect   Rect
	Center float64
	Radius float64
}

// Path returns the outline of the bar with rounded top corners.
func (b Bar) Path() Path {
	var p Path
	x, y, w := b.Rect.X, b.Rect.Y, b.Rect.W
	base := b.Rect.Bottom()
	r := b.Radius
	p.MoveTo(x, base)
	p.LineTo(x, y+r)
	p.QuadTo(x, y, x+r, y)
	p.LineTo(x+w-r, y)
	p.QuadTo(x+w, y, x+w, y+r)
	p.LineTo(x+w, base)
	p.Close()
	return p
}

// RoundRect returns the outline of r with all four corners rounded.
func RoundRect(r Rect, radius float64) Path {
	radius = math.Max(0, math.Min(radius, math.Min(r.W, r.H)/2))
	x, y, right, bottom := r.X, r.Y, r.Right(), r.Bottom()
	var p Path
	p.MoveTo(x+radius, y)
	p.LineTo(right-radius, y)
	p.QuadTo(right, y, right, y+radius)
	p.LineTo(right, bottom-radius)
	p.QuadTo(right, bottom, right-radius, bottom)
	p.LineTo(x+radius, bottom)
	p.QuadTo(x, bottom, x, bottom-radius)
	p.LineTo(x, y+radius)
	p.QuadTo(x, y, x+radius, y)
	p.Close()
	return p
}

// Line returns a single straight segment.
func Line(x1, y1, x2, y2 float64) Path {
	var p Path
	p.MoveTo(x1, y1)
	p.LineTo(x2, y2)
	return p
}

// Connector is the curved transition between the tops of two adjacent bars.
type Connector struct {
	From, To int
	Start    Point
	End      Point
	Region   Path
	Bounds   Rect
}

// BarOptions sizes the bars of a bar funnel.
type BarOptions struct {
	Width  float64
	Radius float64
}

// Bars is the layout of a vertical bar funnel.
type Bars struct {
	Box        Rect
	Baseline   float64
	Bands      []Band
	Bars       []Bar
	Connectors []Connector
	Silhouette Path
}

// BarLayout centres a bar in each band with height proportional to
// value/ref, and joins neighbouring bar tops with connectors whose control
// points sit at 40% and 60% of the gap. A lone bar fills the whole box width.
func BarLayout(values []float64, ref float64, box Rect, opt BarOptions) Bars {
	l := Bars{Box: box, Baseline: box.Bottom(), Bands: Bands(len(values), box.X, box.W)}
	if len(values) == 0 {
		return l
	}

	l.Bars = make([]Bar, len(values))
	for i, v := range values {
		band := l.Bands[i]
		w := math.Min(opt.Width, band.Width()*0.8)
		if len(values) == 1 {
			w = band.Width()
		}
		h := Fraction(v, ref) * box.H
		r := math.Max(0, math.Min(opt.Radius, math.Min(w/2, h)))
		l.Bars[i] = Bar{
			Rect:   Rect{X: band.Center() - w/2, Y: l.Baseline - h, W: w, H: h},
			Center: band.Center(),
			Radius: r,
		}
	}

	for i := 0; i < len(l.Bars)-1; i++ {
		l.Connectors = append(l.Connectors, connect(l.Bars[i], l.Bars[i+1], i, l.Baseline))
	}

	if len(l.Bars) > 1 {
		first, last := l.Bars[0], l.Bars[len(l.Bars)-1]
		var s Path
		s.MoveTo(first.Rect.X, l.Baseline)
		s.LineTo(first.Rect.X, first.Rect.Y)
		s.LineTo(first.Rect.Right(), first.Rect.Y)
		for _, c := range l.Connectors {
			gap := c.End.X - c.Start.X
			s.CubicTo(c.Start.X+gap*0.4, c.Start.Y, c.Start.X+gap*0.6, c.End.Y, c.End.X, c.End.Y)
			next := l.Bars[c.To]
			s.LineTo(next.Rect.Right(), next.Rect.Y)
		}
		s.LineTo(last.Rect.Right(), l.Baseline)
		s.Close()
		l.Silhouette = s
	}
	return l
}

func connect(a, b Bar, i int, baseline float64) Connector {
	start := Point{X: a.Rect.Right(), Y: a.Rect.Y}
	end := Point{X: b.Rect.X, Y: b.Rect.Y}
	gap := end.X - start.X

	var region Path
	region.MoveTo(start.X, baseline)
	region.LineTo(start.X, start.Y)
	region.CubicTo(start.X+gap*0.4, start.Y, start.X+gap*0.6, end.Y, end.X, end.Y)
	region.LineTo(end.X, baseline)
	region.Close()

	top := math.Min(start.Y, end.Y)
	return Connector{
		From:   i,
		To:     i + 1,
		Start:  start,
		End:    end,
		Region: region,
		Bounds: Rect{X: start.X, Y: top, W: gap, H: baseline - top},
	}
}

// Column is a value bar drawn over a full-height track.
type Column struct {
	Track  Rect
	Bar    Rect
	Center float64
}

// GridLine is a horizontal guide at a percentage of the plot height.
type GridLine struct {
	Y       float64
	Percent float64
}

// Columns is the layout of a percentage-of-entry column chart.
type Columns struct {
	Box     Rect
	Bands   []Band
	Columns []Column
	Grid    []GridLine
}

// GridPercents are the guide lines of a column chart, top to bottom.
var GridPercents = []float64{100, 75, 50, 25, 0}

// ColumnLayout places one column per band. gap is the fraction of each band
// left empty around the column.
func ColumnLayout(values []float64, ref float64, box Rect, gap float64) Columns {
	c := Columns{Box: box, Bands: Bands(len(values), box.X, box.W)}
	for _, pct := range GridPercents {
		c.Grid = append(c.Grid, GridLine{Y: box.Y + (1-pct/100)*box.H, Percent: pct})
	}
	for i, v := range values {
		band := c.Bands[i]
		w := band.Width() * (1 - gap)
		h := Fraction(v, ref) * box.H
		x := band.Center() - w/2
		c.Columns = append(c.Columns, Column{
			Track:  Rect{X: x, Y: box.Y, W: w, H: box.H},
			Bar:    Rect{X: x, Y: box.Bottom() - h, W: w, H: h},
			Center: band.Center(),
		})
	}
	return c
}
