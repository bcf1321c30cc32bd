package render

import "github.com/tonhe/funnel/internal/geometry"

// Canvas is a drawing surface in logical coordinates. Implementations replay
// the same geometry to produce vector markup or raster pixels.
type Canvas interface {
	Size() geometry.Size
	FillPath(p geometry.Path, paint Paint)
	StrokePath(p geometry.Path, s Stroke)
	Text(x, y float64, s string, style TextStyle)
	MeasureText(s string, style TextStyle) float64
}

// Paint is a fill style: Solid, LinearGradient or Hatch.
type Paint interface {
	isPaint()
}

// Solid fills with a single colour.
type Solid struct {
	Color   string
	Opacity float64
}

// Opaque returns a fully opaque solid paint.
func Opaque(hex string) Solid {
	return Solid{Color: hex, Opacity: 1}
}

// Stop is a gradient colour stop. Offset is in [0, 1].
type Stop struct {
	Offset  float64
	Color   string
	Opacity float64
}

// LinearGradient blends its stops along the vector (X1,Y1)-(X2,Y2), given as
// fractions of the filled shape's bounding box.
type LinearGradient struct {
	ID             string
	X1, Y1, X2, Y2 float64
	Stops          []Stop
}

// Vertical returns a top-to-bottom gradient between two opaque colours.
func Vertical(id, top, bottom string) LinearGradient {
	return LinearGradient{
		ID: id, X1: 0, Y1: 0, X2: 0, Y2: 1,
		Stops: []Stop{{Offset: 0, Color: top, Opacity: 1}, {Offset: 1, Color: bottom, Opacity: 1}},
	}
}

// Hatch fills with 45 degree stripes repeated every Size logical pixels.
type Hatch struct {
	ID      string
	Color   string
	Opacity float64
	Size    float64
	Width   float64
}

func (Solid) isPaint()          {}
func (LinearGradient) isPaint() {}
func (Hatch) isPaint()          {}

// Stroke is an outline style. A nil Dash draws a solid line.
type Stroke struct {
	Color   string
	Opacity float64
	Width   float64
	Dash    []float64
}

// Anchor is the horizontal alignment of a text run relative to its x.
type Anchor int

const (
	AnchorStart Anchor = iota
	AnchorMiddle
	AnchorEnd
)

func (a Anchor) svg() string {
	switch a {
	case AnchorMiddle:
		return "middle"
	case AnchorEnd:
		return "end"
	default:
		return "start"
	}
}

// fraction returns the anchor as a fraction of the text width.
func (a Anchor) fraction() float64 {
	switch a {
	case AnchorMiddle:
		return 0.5
	case AnchorEnd:
		return 1
	default:
		return 0
	}
}

// TextStyle describes a text run. y is the alphabetic baseline.
type TextStyle struct {
	Color  string
	Size   float64
	Bold   bool
	Anchor Anchor
}
