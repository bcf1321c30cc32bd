package styles

import "github.com/charmbracelet/lipgloss"

// Styles holds the themed lipgloss styles shared by the views.
type Styles struct {
	// Step table
	TableHeader  lipgloss.Style
	TableRow     lipgloss.Style
	TableRowSel  lipgloss.Style
	TableCellDim lipgloss.Style

	// Load state
	StateOK      lipgloss.Style
	StateError   lipgloss.Style
	StateLoading lipgloss.Style

	// Conversion and drop-off figures
	Gain lipgloss.Style
	Loss lipgloss.Style

	SparklineStyle lipgloss.Style

	// Overlays
	ModalBorder lipgloss.Style
	ModalTitle  lipgloss.Style
	HelpSection lipgloss.Style
	HelpKey     lipgloss.Style
	HelpDesc    lipgloss.Style

	// Hover annotation under the chart
	TooltipTitle  lipgloss.Style
	TooltipDetail lipgloss.Style
}

// NewStyles derives the view styles from a theme.
func NewStyles(theme Theme) *Styles {
	fg := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}
	return &Styles{
		TableHeader:  fg(theme.Base0D).Bold(true),
		TableRow:     fg(theme.Base05),
		TableRowSel:  fg(theme.Base05).Background(theme.Base02),
		TableCellDim: fg(theme.Base03),

		StateOK:      fg(theme.Base0B),
		StateError:   fg(theme.Base08).Bold(true),
		StateLoading: fg(theme.Base0A),

		Gain: fg(theme.Base0B),
		Loss: fg(theme.Base08),

		SparklineStyle: fg(theme.Base0C),

		ModalBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Base0D).
			BorderBackground(theme.Base00).
			Background(theme.Base00).
			Padding(1, 2),
		ModalTitle:  fg(theme.Base0D).Background(theme.Base00).Bold(true),
		HelpSection: fg(theme.Base0E).Bold(true),
		HelpKey:     fg(theme.Base0D).Bold(true),
		HelpDesc:    fg(theme.Base05),

		TooltipTitle:  fg(theme.Base06).Bold(true),
		TooltipDetail: fg(theme.Base04),
	}
}
