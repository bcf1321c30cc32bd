package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/funnel/internal/render"
)

// RenderCells turns a rasterised chart into styled terminal lines. Runs of
// cells sharing colours are emitted with a single style.
func RenderCells(cells [][]render.Cell) string {
	lines := make([]string, len(cells))
	for i, row := range cells {
		lines[i] = renderRow(row)
	}
	return strings.Join(lines, "\n")
}

func renderRow(row []render.Cell) string {
	var sb, run strings.Builder
	var fg, bg string
	flush := func() {
		if run.Len() == 0 {
			return
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(fg)).Background(lipgloss.Color(bg))
		sb.WriteString(style.Render(run.String()))
		run.Reset()
	}
	for _, c := range row {
		if c.FG != fg || c.BG != bg {
			flush()
			fg, bg = c.FG, c.BG
		}
		run.WriteRune(c.Rune)
	}
	flush()
	return sb.String()
}

// centerText centers s within the given width, padding with spaces.
func centerText(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	pad := (width - w) / 2
	return strings.Repeat(" ", pad) + s + strings.Repeat(" ", width-w-pad)
}
