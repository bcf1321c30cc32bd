package geometry

// Size is a width/height pair.
type Size struct {
	W, H float64
}

// Scale maps between a surface's logical size and its backing resolution,
// e.g. a canvas drawn at device-pixel ratio 2 or a terminal grid of cells.
type Scale struct {
	Logical Size
	Backing Size
}

// NewScale returns the scale for a surface whose backing store is ratio times
// its logical size.
func NewScale(logical Size, ratio float64) Scale {
	if ratio <= 0 {
		ratio = 1
	}
	return Scale{Logical: logical, Backing: Size{W: logical.W * ratio, H: logical.H * ratio}}
}

// ToLogical converts a point in backing coordinates to logical coordinates.
func (s Scale) ToLogical(p Point) Point {
	if s.Backing.W <= 0 || s.Backing.H <= 0 {
		return p
	}
	return Point{
		X: p.X * s.Logical.W / s.Backing.W,
		Y: p.Y * s.Logical.H / s.Backing.H,
	}
}

// ToBacking converts a point in logical coordinates to backing coordinates.
func (s Scale) ToBacking(p Point) Point {
	if s.Logical.W <= 0 || s.Logical.H <= 0 {
		return p
	}
	return Point{
		X: p.X * s.Backing.W / s.Logical.W,
		Y: p.Y * s.Backing.H / s.Logical.H,
	}
}

// HitKind identifies what kind of region a pointer is over.
type HitKind int

const (
	HitNone HitKind = iota
	HitBar
	HitConnector
)

func (k HitKind) String() string {
	switch k {
	case HitBar:
		return "bar"
	case HitConnector:
		return "connector"
	default:
		return "none"
	}
}

// Hit is the result of hit-testing a pointer position. Index is the bar index
// for HitBar and the index of the left-hand bar for HitConnector.
type Hit struct {
	Kind  HitKind
	Index int
}

// NoHit is the empty hover state.
var NoHit = Hit{Kind: HitNone, Index: -1}

// HitTest resolves p (logical coordinates) to at most one region. Bars are
// tested before connectors and lower indices before higher ones, with
// inclusive edges, so a point on a shared edge always resolves to the same bar.
func (l Bars) HitTest(p Point) Hit {
	for i, b := range l.Bars {
		if b.hitRect(l.Baseline).Contains(p) {
			return Hit{Kind: HitBar, Index: i}
		}
	}
	for _, c := range l.Connectors {
		if c.Bounds.Contains(p) {
			return Hit{Kind: HitConnector, Index: c.From}
		}
	}
	return NoHit
}

func (b Bar) hitRect(baseline float64) Rect {
	return Rect{X: b.Rect.X, Y: b.Rect.Y, W: b.Rect.W, H: baseline - b.Rect.Y}
}

// HitTest resolves p against the column tracks.
func (c Columns) HitTest(p Point) Hit {
	for i, col := range c.Columns {
		if col.Track.Contains(p) {
			return Hit{Kind: HitBar, Index: i}
		}
	}
	return NoHit
}
