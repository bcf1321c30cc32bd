package render

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tonhe/funnel/internal/funnel"
)

// ErrUnknownVariant is returned when a variant name is not registered.
var ErrUnknownVariant = errors.New("unknown chart variant")

// Kind selects the chart archetype a variant draws.
type Kind int

const (
	KindArea Kind = iota
	KindBars
	KindColumns
)

func (k Kind) String() string {
	switch k {
	case KindBars:
		return "bars"
	case KindColumns:
		return "columns"
	default:
		return "area"
	}
}

// Insets are paddings around the plot area.
type Insets struct {
	Top, Right, Bottom, Left float64
}

// Palette holds the colours of one variant. Not every archetype uses every
// slot.
type Palette struct {
	Background   string
	Fill         string
	FillEnd      string
	Band         string
	Shadow       string
	Stroke       string
	Guide        string
	Highlight    string
	Text         string
	Muted        string
	Accent       string
	Panel        string
	PanelText    string
	Hatch        string
	HatchOpacity float64
	TrackOpacity float64
}

// Metrics holds the sizes of one variant in logical pixels.
type Metrics struct {
	Padding     Insets
	PlotHeight  float64
	BarWidth    float64
	Radius      float64
	BandWidth   float64
	BorderWidth float64
	Gap         float64
	FontSize    float64
}

// Variant is the full configuration of a chart: which archetype to draw, the
// reference policy for percentages, and its colours and sizes.
type Variant struct {
	Name      string
	Kind      Kind
	Reference funnel.ReferencePolicy
	Tooltips  bool
	Palette   Palette
	Metrics   Metrics
}

var variants = map[string]Variant{
	"area": {
		Name:      "area",
		Kind:      KindArea,
		Reference: funnel.ReferenceMax,
		Palette: Palette{
			Background:   "#FFFFFF",
			Fill:         "#00DAD0",
			FillEnd:      "#0584A6",
			Band:         "#E5FCFB",
			Stroke:       "#0584A6",
			Guide:        "#E6EBE9",
			Text:         "#111827",
			Muted:        "#6B7280",
			Accent:       "#DC2626",
			Hatch:        "#FFFFFF",
			HatchOpacity: 0.3,
		},
		Metrics: Metrics{
			Padding:     Insets{Bottom: 76},
			BandWidth:   40,
			BorderWidth: 2,
			FontSize:    13,
		},
	},
	"bars": {
		Name:      "bars",
		Kind:      KindBars,
		Reference: funnel.ReferenceFirst,
		Tooltips:  true,
		Palette: Palette{
			Background: "#FFFFFF",
			Fill:       "#B5D1FC",
			Shadow:     "#E9E3FF",
			Stroke:     "#9C92E9",
			Guide:      "#9F8DE3",
			Highlight:  "#8FB4F8",
			Text:       "#374151",
			Muted:      "#6B7280",
			Accent:     "#7C6FD6",
			Panel:      "#1F2937",
			PanelText:  "#FFFFFF",
		},
		Metrics: Metrics{
			Padding:     Insets{Top: 60, Right: 60, Bottom: 100, Left: 60},
			PlotHeight:  280,
			BarWidth:    80,
			Radius:      12,
			BorderWidth: 1.5,
			FontSize:    13,
		},
	},
	"columns": {
		Name:      "columns",
		Kind:      KindColumns,
		Reference: funnel.ReferenceFirst,
		Palette: Palette{
			Background:   "#FFFFFF",
			Fill:         "#6366F1",
			Guide:        "#E5E7EB",
			Highlight:    "#4F46E5",
			Text:         "#111827",
			Muted:        "#6B7280",
			Accent:       "#6366F1",
			TrackOpacity: 0.12,
		},
		Metrics: Metrics{
			Padding:  Insets{Top: 64, Right: 16, Bottom: 52, Left: 52},
			Gap:      0.3,
			Radius:   6,
			FontSize: 12,
		},
	},
}

// Lookup returns the variant registered under name.
func Lookup(name string) (Variant, error) {
	v, ok := variants[name]
	if !ok {
		return Variant{}, fmt.Errorf("%w: %q", ErrUnknownVariant, name)
	}
	return v, nil
}

// VariantNames returns the registered variant names in sorted order.
func VariantNames() []string {
	names := make([]string, 0, len(variants))
	for name := range variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
