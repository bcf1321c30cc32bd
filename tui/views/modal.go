package views

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/funnel/tui/styles"
)

// modalWidth picks an overlay width for a screen of the given width:
// half the screen, clamped to [lo, hi].
func modalWidth(screen, lo, hi int) int {
	return min(max(screen/2, lo), hi)
}

// renderModal draws body in a rounded box whose top border carries title,
// centred in a width x height area. inner is the content width.
func renderModal(theme styles.Theme, sty *styles.Styles, title, body string, inner, width, height int) string {
	box := sty.ModalBorder.BorderTop(false).Width(inner).Render(body)

	title = " " + title + " "
	border := lipgloss.NewStyle().Foreground(theme.Base0D).Background(theme.Base00)
	fill := max(lipgloss.Width(box)-3-lipgloss.Width(title), 0)
	top := border.Render("╭─") + sty.ModalTitle.Render(title) + border.Render(strings.Repeat("─", fill)+"╮")

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, top+"\n"+box)
}
