package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/funnel/internal/engine"
	"github.com/tonhe/funnel/internal/funnel"
	"github.com/tonhe/funnel/tui/components"
	"github.com/tonhe/funnel/tui/keys"
	"github.com/tonhe/funnel/tui/styles"
)

// DetailView shows everything known about one funnel step together with the
// overall conversion history of the funnel.
type DetailView struct {
	theme   styles.Theme
	sty     *styles.Styles
	name    string
	policy  funnel.ReferencePolicy
	steps   funnel.Funnel
	index   int
	history []engine.Sample
	width   int
	height  int
}

// NewDetailView creates a new DetailView with the given theme.
func NewDetailView(theme styles.Theme) DetailView {
	return DetailView{
		theme: theme,
		sty:   styles.NewStyles(theme),
		index: -1,
	}
}

// SetTheme restyles the view.
func (v *DetailView) SetTheme(theme styles.Theme) {
	v.theme = theme
	v.sty = styles.NewStyles(theme)
}

// SetStep selects step index of f for display. Percentages follow policy.
func (v *DetailView) SetStep(name string, f funnel.Funnel, policy funnel.ReferencePolicy, index int) {
	v.name = name
	v.steps = f
	v.policy = policy
	v.index = index
}

// SetHistory updates the samples behind the conversion sparkline.
func (v *DetailView) SetHistory(h []engine.Sample) {
	v.history = h
}

// SetSize updates the available dimensions for the view.
func (v *DetailView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// Update handles key messages for the detail view. The third return value
// indicates whether the user wants to go back (Esc pressed).
func (v DetailView) Update(msg tea.Msg) (DetailView, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.DefaultKeyMap.Escape):
			return v, nil, true
		case key.Matches(msg, keys.DefaultKeyMap.Up):
			if v.index > 0 {
				v.index--
			}
		case key.Matches(msg, keys.DefaultKeyMap.Down):
			if v.index < len(v.steps)-1 {
				v.index++
			}
		}
	}
	return v, nil, false
}

// Index returns the step being shown.
func (v DetailView) Index() int { return v.index }

// View renders the detail view.
func (v DetailView) View() string {
	if v.index < 0 || v.index >= len(v.steps) {
		return v.renderEmpty()
	}
	info := v.renderInfoPanel(funnel.Derive(v.steps, v.policy)[v.index])
	return lipgloss.JoinVertical(lipgloss.Left, info, "", v.renderHistory(), v.renderHelp())
}

// renderEmpty shows a placeholder when no step is selected.
func (v DetailView) renderEmpty() string {
	msg := lipgloss.NewStyle().
		Foreground(v.theme.Base04).
		Align(lipgloss.Center).
		Render("No step selected")
	return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, msg)
}

// renderInfoPanel renders the metrics of d.
func (v DetailView) renderInfoPanel(d funnel.Derived) string {
	labelStyle := lipgloss.NewStyle().
		Foreground(v.theme.Base04).
		Width(18)
	valueStyle := lipgloss.NewStyle().
		Foreground(v.theme.Base05)
	highlightStyle := lipgloss.NewStyle().
		Foreground(v.theme.Base0D).
		Bold(true)

	row := func(label, value string, style lipgloss.Style) string {
		return fmt.Sprintf("  %s%s", labelStyle.Render(label), style.Render(value))
	}

	rows := []string{
		"",
		row("Funnel:", v.name, highlightStyle),
		row("Step:", fmt.Sprintf("%s (%d of %d)", d.Label, d.Index+1, len(v.steps)), highlightStyle),
		row("Users:", funnel.FormatCount(d.Value), valueStyle),
		row("Of reference:", funnel.FormatPercent(d.PercentOfMax, 2), valueStyle),
		row("Overall:", funnel.FormatPercent(funnel.Percent(d.Value, v.steps[0].Value), 2), valueStyle),
	}
	if d.IsEntry() {
		rows = append(rows, row("", "Entry step", v.sty.TableCellDim))
		return strings.Join(rows, "\n")
	}
	rows = append(rows,
		row("Completed:", funnel.FormatPercent(d.CompletionRate, 2), v.sty.Gain),
		row("Dropped out:", fmt.Sprintf("%s (%s)", funnel.FormatCount(d.DropCount), funnel.FormatPercent(d.DropRate, 2)), v.sty.Loss),
	)
	return strings.Join(rows, "\n")
}

// renderHistory draws the overall conversion of recent fetches.
func (v DetailView) renderHistory() string {
	label := lipgloss.NewStyle().Foreground(v.theme.Base04).Render("  History:         ")
	if len(v.history) == 0 {
		return label + v.sty.TableCellDim.Render("no samples")
	}
	data := make([]float64, len(v.history))
	for i, s := range v.history {
		data[i] = s.Overall
	}
	width := max(v.width-len("  History:         ")-2, 10)
	last := v.history[len(v.history)-1]
	return label + v.sty.SparklineStyle.Render(components.Sparkline(data, min(width, 40))) +
		"  " + v.sty.TableCellDim.Render(fmt.Sprintf("%s over %d fetches", funnel.FormatPercent(last.Overall, 2), len(data)))
}

// renderHelp renders a help line at the bottom of the detail view.
func (v DetailView) renderHelp() string {
	helpStyle := lipgloss.NewStyle().Foreground(v.theme.Base04)
	keyStyle := lipgloss.NewStyle().Foreground(v.theme.Base0D).Bold(true)
	return helpStyle.Render(fmt.Sprintf("\n  %s previous/next step   %s to go back",
		keyStyle.Render("[↑/↓]"), keyStyle.Render("[esc]")))
}
