package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/funnel/internal/engine"
	"github.com/tonhe/funnel/internal/funnel"
	"github.com/tonhe/funnel/tui/styles"
)

// StatusInfo is everything the status bar reports about the active funnel.
type StatusInfo struct {
	Snapshot engine.Snapshot
	Trend    engine.Trend
	HasTrend bool
	History  []float64
	Message  string
}

// RenderStatusBar renders the two-line status/footer bar showing the last
// fetch, overall conversion, its trend and key bindings.
func RenderStatusBar(theme styles.Theme, info StatusInfo, width int) string {
	bg := theme.Base01
	bgStyle := lipgloss.NewStyle().Background(bg)
	sep := lipgloss.NewStyle().Foreground(theme.Base03).Background(bg).Render(" | ")
	text := lipgloss.NewStyle().Foreground(theme.Base05).Background(bg)

	lastStr := "never"
	if !info.Snapshot.Updated.IsZero() {
		lastStr = info.Snapshot.Updated.Format("15:04:05")
	}
	top := bgStyle.Render(" ") + text.Render("updated: "+lastStr)

	if len(info.Snapshot.Funnel) > 0 {
		top += sep + text.Render("overall: "+funnel.FormatPercent(funnel.Overall(info.Snapshot.Funnel), 2))
	}
	if info.HasTrend {
		color := theme.Base0B
		if info.Trend.Delta < 0 {
			color = theme.Base08
		}
		top += sep + lipgloss.NewStyle().Foreground(color).Background(bg).
			Render(fmt.Sprintf("trend: %s", FormatDelta(info.Trend.Delta)))
	}
	if len(info.History) > 0 {
		top += sep + lipgloss.NewStyle().Foreground(theme.Base0C).Background(bg).
			Render(Sparkline(info.History, min(len(info.History), 24)))
	}
	if info.Message != "" {
		top += sep + lipgloss.NewStyle().Foreground(theme.Base0A).Background(bg).Render(info.Message)
	}
	if w := lipgloss.Width(top); w < width {
		top += bgStyle.Render(strings.Repeat(" ", width-w))
	}

	keyStyle := lipgloss.NewStyle().Foreground(theme.Base0D).Background(bg).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(theme.Base04).Background(bg)
	spacer := bgStyle.Render("  ")

	keys := bgStyle.Render(" ") +
		keyStyle.Render("←/→") + descStyle.Render(":interval") + spacer +
		keyStyle.Render("tab") + descStyle.Render(":variant") + spacer +
		keyStyle.Render("f") + descStyle.Render(":funnels") + spacer +
		keyStyle.Render("r") + descStyle.Render(":refresh") + spacer +
		keyStyle.Render("e") + descStyle.Render(":export") + spacer +
		keyStyle.Render("?") + descStyle.Render(":help") + spacer +
		keyStyle.Render("q") + descStyle.Render(":quit")

	if w := lipgloss.Width(keys); w < width {
		keys += bgStyle.Render(strings.Repeat(" ", width-w))
	}

	return lipgloss.JoinVertical(lipgloss.Left, top, keys)
}
