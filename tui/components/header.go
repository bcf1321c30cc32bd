package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/funnel/internal/engine"
	"github.com/tonhe/funnel/internal/funnel"
	"github.com/tonhe/funnel/tui/styles"
)

// HeaderInfo describes the funnel shown in the header bar.
type HeaderInfo struct {
	Funnel   string
	State    engine.State
	Interval string
	Variant  string
	Data     funnel.Funnel
	Version  string
}

// stateBadge maps a load state to its label and colour.
func stateBadge(theme styles.Theme, s engine.State) (string, lipgloss.Color) {
	switch s {
	case engine.StateSuccess:
		return "OK", theme.Base0B
	case engine.StateError:
		return "ERROR", theme.Base08
	default:
		return "LOADING", theme.Base0A
	}
}

// RenderHeader renders the one-line header: app name, funnel, load state,
// interval, variant, entry users and version, separated by bars.
func RenderHeader(theme styles.Theme, info HeaderInfo, width int) string {
	bar := lipgloss.NewStyle().Background(theme.Base01)
	dim := bar.Foreground(theme.Base04)

	name := info.Funnel
	if name == "" {
		name = "(no funnel)"
	}
	label, color := stateBadge(theme, info.State)

	fields := []string{
		bar.Foreground(theme.Base0D).Bold(true).Render("funnel"),
		bar.Foreground(theme.Base05).Render(name),
		bar.Foreground(color).Render(label),
		dim.Render(info.Interval),
		dim.Render(info.Variant),
	}
	if len(info.Data) > 0 {
		fields = append(fields, dim.Render(funnel.FormatCount(info.Data[0].Value)+" entered"))
	}
	if info.Version != "" {
		fields = append(fields, dim.Render("v"+info.Version))
	}

	content := bar.Render(" ") + strings.Join(fields, dim.Render("  |  ")) + bar.Render(" ")
	return bar.Width(width).MaxWidth(width).Render(content)
}
