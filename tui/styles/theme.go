package styles

import (
	"slices"

	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/funnel/internal/render"
)

// DefaultSlug is the theme used when none is configured.
const DefaultSlug = "solarized-dark"

// Theme represents a Base16 color scheme.
type Theme struct {
	Slug   string
	Name   string
	Base00 lipgloss.Color // Background
	Base01 lipgloss.Color // Lighter background
	Base02 lipgloss.Color // Selection
	Base03 lipgloss.Color // Comments / dim
	Base04 lipgloss.Color // Light foreground
	Base05 lipgloss.Color // Foreground
	Base06 lipgloss.Color // Light foreground
	Base07 lipgloss.Color // Light background
	Base08 lipgloss.Color // Red
	Base09 lipgloss.Color // Orange
	Base0A lipgloss.Color // Yellow
	Base0B lipgloss.Color // Green
	Base0C lipgloss.Color // Cyan
	Base0D lipgloss.Color // Blue
	Base0E lipgloss.Color // Magenta
	Base0F lipgloss.Color // Brown
}

var slugs []string

func init() {
	for slug, t := range Themes {
		t.Slug = slug
		Themes[slug] = t
		slugs = append(slugs, slug)
	}
	slices.Sort(slugs)
}

// Default returns the default theme.
func Default() Theme {
	return Themes[DefaultSlug]
}

// Lookup returns the theme registered under slug.
func Lookup(slug string) (Theme, bool) {
	t, ok := Themes[slug]
	return t, ok
}

// Resolve returns the theme for slug, or the default theme when it is
// unknown.
func Resolve(slug string) Theme {
	if t, ok := Themes[slug]; ok {
		return t
	}
	return Default()
}

// Names returns the theme slugs in sorted order.
func Names() []string {
	return slices.Clone(slugs)
}

// Next returns the theme delta places after slug in sorted order, wrapping
// around. An unknown slug starts from the beginning.
func Next(slug string, delta int) Theme {
	n := len(slugs)
	i := slices.Index(slugs, slug)
	if i < 0 {
		i = 0
		if delta > 0 {
			delta--
		}
	}
	return Themes[slugs[((i+delta)%n+n)%n]]
}

// Chart recolours v's background, text and panel slots with the theme so the
// terminal chart sits on the theme's background. Data colours are kept.
func (t Theme) Chart(v render.Variant) render.Variant {
	p := &v.Palette
	p.Background = string(t.Base00)
	p.Text = string(t.Base05)
	p.Muted = string(t.Base04)
	p.Panel = string(t.Base01)
	p.PanelText = string(t.Base06)
	if v.Kind != render.KindBars {
		p.Guide = string(t.Base02)
	}
	if v.Kind == render.KindArea {
		p.Accent = string(t.Base08)
	}
	return v
}
