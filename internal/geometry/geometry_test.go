package geometry

import (
	"math"
	"strings"
	"testing"
)

var box = Rect{X: 0, Y: 0, W: 800, H: 200}

func TestBands(t *testing.T) {
	bands := Bands(4, 10, 400)
	if len(bands) != 4 {
		t.Fatalf("expected 4 bands, got %d", len(bands))
	}
	if bands[0].Left != 10 || bands[3].Right != 410 {
		t.Errorf("bands should span [10, 410], got [%v, %v]", bands[0].Left, bands[3].Right)
	}
	if bands[1].Center() != 160 {
		t.Errorf("band 1 centre = %v, want 160", bands[1].Center())
	}
	if Bands(0, 0, 100) != nil {
		t.Error("zero bands should be nil")
	}
}

func TestFraction(t *testing.T) {
	tests := []struct {
		value, ref, expected float64
	}{
		{50, 100, 0.5},
		{100, 100, 1},
		{200, 100, 1},
		{10, 0, 0},
		{10, -5, 0},
		{math.NaN(), 10, 0},
	}
	for _, tt := range tests {
		if got := Fraction(tt.value, tt.ref); got != tt.expected {
			t.Errorf("Fraction(%v, %v) = %v, want %v", tt.value, tt.ref, got, tt.expected)
		}
	}
}

func TestAreaLayoutPositions(t *testing.T) {
	values := []float64{1000, 400, 100, 50}
	a := AreaLayout(values, 1000, box, DefaultCurve)
	if len(a.Points) != len(values) {
		t.Fatalf("expected %d points, got %d", len(values), len(a.Points))
	}
	for i := 1; i < len(a.Points); i++ {
		if a.Points[i].X <= a.Points[i-1].X {
			t.Errorf("x not strictly increasing at %d: %v <= %v", i, a.Points[i].X, a.Points[i-1].X)
		}
	}
	if len(a.Dividers) != 3 {
		t.Errorf("expected 3 dividers, got %d", len(a.Dividers))
	}

	cubics := 0
	for _, s := range a.Top.Segments {
		if s.Op == OpCubic {
			cubics++
		}
	}
	if cubics != len(values)-1 {
		t.Errorf("expected %d curve segments, got %d", len(values)-1, cubics)
	}
	last := a.Top.Segments[len(a.Top.Segments)-1]
	if last.Op != OpLine || last.Pts[0].X != box.Right() || last.Pts[0].Y != a.Points[3].Y {
		t.Errorf("last segment should be flat to the right edge, got %+v", last)
	}

	first := a.Top.Segments[1]
	if first.Pts[0].X != 800.0/4*0.65 || first.Pts[1].X != 200-200*0.35 {
		t.Errorf("unexpected control points %+v", first.Pts)
	}
}

func TestAreaLayoutEqualValues(t *testing.T) {
	a := AreaLayout([]float64{7, 7, 7}, 7, box, DefaultCurve)
	for i, p := range a.Points {
		if p.Y != box.Y {
			t.Errorf("point %d y = %v, want %v (full height)", i, p.Y, box.Y)
		}
	}
}

func TestAreaLayoutZeroReference(t *testing.T) {
	a := AreaLayout([]float64{0, 0, 0}, 0, box, DefaultCurve)
	for i, p := range a.Points {
		if p.Y != box.Bottom() {
			t.Errorf("point %d y = %v, want baseline %v", i, p.Y, box.Bottom())
		}
	}
	if d := a.Fill.SVGData(); strings.Contains(d, "NaN") || strings.Contains(d, "Inf") {
		t.Errorf("path data contains non-finite numbers: %s", d)
	}
}

func TestAreaLayoutSingleStep(t *testing.T) {
	a := AreaLayout([]float64{42}, 42, box, DefaultCurve)
	for _, s := range a.Fill.Segments {
		if s.Op == OpCubic {
			t.Fatal("single step should not be interpolated")
		}
	}
	b := a.Fill.Bounds()
	if b.W != box.W || b.H <= 0 {
		t.Errorf("single step should span the full width, got %+v", b)
	}
	if !a.Fill.Contains(Point{X: 400, Y: 100}) {
		t.Error("single step area should contain the chart centre")
	}
	if len(a.Dividers) != 0 {
		t.Errorf("single step should have no dividers, got %v", a.Dividers)
	}
}

func TestAreaLayoutEmpty(t *testing.T) {
	a := AreaLayout(nil, 0, box, DefaultCurve)
	if !a.Fill.Empty() || len(a.Points) != 0 {
		t.Error("empty funnel should produce no shapes")
	}
}

func TestSVGData(t *testing.T) {
	var p Path
	p.MoveTo(0, 200)
	p.LineTo(0, 40.5)
	p.CubicTo(130, 40.5, 130, 160, 200, 160)
	p.Close()
	want := "M 0 200 L 0 40.5 C 130 40.5, 130 160, 200 160 Z"
	if got := p.SVGData(); got != want {
		t.Errorf("SVGData() = %q, want %q", got, want)
	}
}

func TestPathContains(t *testing.T) {
	var p Path
	p.MoveTo(0, 0)
	p.LineTo(10, 0)
	p.LineTo(10, 10)
	p.LineTo(0, 10)
	p.Close()
	if !p.Contains(Point{5, 5}) {
		t.Error("square should contain its centre")
	}
	if p.Contains(Point{15, 5}) {
		t.Error("square should not contain an outside point")
	}
	moved := p.Translate(100, 0)
	if !moved.Contains(Point{105, 5}) || moved.Contains(Point{5, 5}) {
		t.Error("Translate should move the outline")
	}
}

func barFixture() Bars {
	return BarLayout([]float64{100, 50}, 100, Rect{X: 0, Y: 0, W: 400, H: 200}, BarOptions{Width: 80, Radius: 12})
}

func TestBarLayout(t *testing.T) {
	l := barFixture()
	if len(l.Bars) != 2 || len(l.Connectors) != 1 {
		t.Fatalf("expected 2 bars and 1 connector, got %d/%d", len(l.Bars), len(l.Connectors))
	}
	b0, b1 := l.Bars[0].Rect, l.Bars[1].Rect
	if b0.X != 60 || b0.W != 80 || b0.Y != 0 {
		t.Errorf("bar 0 = %+v", b0)
	}
	if b1.X != 260 || b1.Y != 100 || b1.H != 100 {
		t.Errorf("bar 1 = %+v", b1)
	}
	c := l.Connectors[0]
	if c.Start != (Point{140, 0}) || c.End != (Point{260, 100}) {
		t.Errorf("connector endpoints = %+v -> %+v", c.Start, c.End)
	}
	if l.Silhouette.Empty() {
		t.Error("two bars should produce a silhouette")
	}
}

func TestBarLayoutNarrowBands(t *testing.T) {
	l := BarLayout([]float64{10, 5, 1}, 10, Rect{W: 90, H: 100}, BarOptions{Width: 80, Radius: 50})
	for i, b := range l.Bars {
		if b.Rect.W > 30*0.8+1e-9 {
			t.Errorf("bar %d width %v exceeds 80%% of its band", i, b.Rect.W)
		}
		if b.Radius > b.Rect.W/2 || b.Radius > b.Rect.H {
			t.Errorf("bar %d radius %v not clamped", i, b.Radius)
		}
	}
}

func TestBarLayoutSingleStep(t *testing.T) {
	l := BarLayout([]float64{5}, 5, Rect{W: 200, H: 100}, BarOptions{Width: 80, Radius: 12})
	if len(l.Bars) != 1 || len(l.Connectors) != 0 {
		t.Fatalf("expected one bar and no connectors, got %d/%d", len(l.Bars), len(l.Connectors))
	}
	if l.Bars[0].Rect.H != 100 {
		t.Errorf("single bar height = %v, want 100", l.Bars[0].Rect.H)
	}
	if r := l.Bars[0].Rect; r.X != 0 || r.W != 200 {
		t.Errorf("single bar should span the full width, got %+v", r)
	}
	if got := l.HitTest(Point{X: 5, Y: 50}); got != (Hit{Kind: HitBar, Index: 0}) {
		t.Errorf("hit near the left edge = %+v, want bar 0", got)
	}
}

func TestBarsHitTest(t *testing.T) {
	l := barFixture()
	tests := []struct {
		name string
		p    Point
		want Hit
	}{
		{"inside bar 0", Point{100, 100}, Hit{HitBar, 0}},
		{"bar/connector shared edge", Point{140, 50}, Hit{HitBar, 0}},
		{"inside connector", Point{200, 150}, Hit{HitConnector, 0}},
		{"connector/bar shared edge", Point{260, 150}, Hit{HitBar, 1}},
		{"above short bar", Point{300, 50}, NoHit},
		{"baseline of bar 1", Point{300, 200}, Hit{HitBar, 1}},
		{"outside", Point{10, 10}, NoHit},
		{"right margin", Point{350, 150}, NoHit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := l.HitTest(tt.p)
			if got != tt.want {
				t.Errorf("HitTest(%v) = %+v, want %+v", tt.p, got, tt.want)
			}
			for i := 0; i < 5; i++ {
				if again := l.HitTest(tt.p); again != got {
					t.Fatalf("HitTest not stable: %+v then %+v", got, again)
				}
			}
		})
	}
}

func TestScale(t *testing.T) {
	s := NewScale(Size{W: 400, H: 200}, 2)
	if s.Backing != (Size{W: 800, H: 400}) {
		t.Errorf("backing = %+v", s.Backing)
	}
	got := s.ToLogical(Point{X: 280, Y: 100})
	if got != (Point{X: 140, Y: 50}) {
		t.Errorf("ToLogical = %+v, want {140 50}", got)
	}
	if back := s.ToBacking(got); back != (Point{X: 280, Y: 100}) {
		t.Errorf("ToBacking = %+v", back)
	}
	if l := barFixture(); l.HitTest(s.ToLogical(Point{X: 280, Y: 100})) != (Hit{HitBar, 0}) {
		t.Error("scaled pointer should resolve to bar 0")
	}
}

func TestColumnLayout(t *testing.T) {
	c := ColumnLayout([]float64{200, 100, 0}, 200, Rect{W: 300, H: 100}, 0.2)
	if len(c.Grid) != 5 || c.Grid[0].Y != 0 || c.Grid[4].Y != 100 {
		t.Errorf("unexpected grid %+v", c.Grid)
	}
	if c.Columns[1].Bar.H != 50 || c.Columns[2].Bar.H != 0 {
		t.Errorf("unexpected column heights %v, %v", c.Columns[1].Bar.H, c.Columns[2].Bar.H)
	}
	if c.Columns[0].Track.W != 80 {
		t.Errorf("track width = %v, want 80", c.Columns[0].Track.W)
	}
	if h := c.HitTest(Point{X: 150, Y: 10}); h != (Hit{HitBar, 1}) {
		t.Errorf("HitTest = %+v", h)
	}
}
