package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/tonhe/funnel/tui/keys"
	"github.com/tonhe/funnel/tui/styles"
)

// helpSection is one titled group of bindings in the help overlay.
type helpSection struct {
	title    string
	bindings []key.Binding
}

// relabel returns b with a different help description.
func relabel(b key.Binding, desc string) key.Binding {
	return key.NewBinding(key.WithKeys(b.Keys()...), key.WithHelp(b.Help().Key, desc))
}

// hint is a help-only entry for input that has no key binding.
func hint(k, desc string) key.Binding {
	return key.NewBinding(key.WithHelp(k, desc))
}

func helpSections(km keys.KeyMap) []helpSection {
	return []helpSection{
		{"Global", []key.Binding{
			hint("ctrl+c", "quit"),
			km.Help,
			km.Theme,
		}},
		{"Chart", []key.Binding{
			km.Quit,
			relabel(km.Up, "highlight previous step"),
			relabel(km.Down, "highlight next step"),
			hint("mouse", "hover bars and drop-offs"),
			relabel(km.Enter, "step detail"),
			km.PrevInterval,
			km.NextInterval,
			km.Variant,
			km.Refresh,
			relabel(km.Export, "export SVG and PNG"),
			relabel(km.Funnels, "funnel switcher"),
		}},
		{"Funnel Switcher", []key.Binding{
			relabel(km.Enter, "switch to funnel"),
			hint("x", "stop loader"),
			relabel(km.Escape, "close"),
		}},
		{"Step Detail", []key.Binding{
			relabel(km.Up, "previous step"),
			relabel(km.Down, "next step"),
			relabel(km.Escape, "back to chart"),
		}},
	}
}

// HelpView renders a modal overlay listing the key bindings.
type HelpView struct {
	theme    styles.Theme
	sty      *styles.Styles
	sections []helpSection
	width    int
	height   int
	visible  bool
}

// NewHelpView creates a new HelpView with the given theme.
func NewHelpView(theme styles.Theme) HelpView {
	return HelpView{
		theme:    theme,
		sty:      styles.NewStyles(theme),
		sections: helpSections(keys.DefaultKeyMap),
	}
}

// Toggle flips the help overlay visibility.
func (v *HelpView) Toggle() {
	v.visible = !v.visible
}

// IsVisible returns whether the help overlay is currently shown.
func (v HelpView) IsVisible() bool {
	return v.visible
}

// SetTheme restyles the overlay.
func (v *HelpView) SetTheme(theme styles.Theme) {
	v.theme = theme
	v.sty = styles.NewStyles(theme)
}

// SetSize updates the available dimensions for the overlay.
func (v *HelpView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// View renders the help overlay as a centered modal box.
func (v HelpView) View() string {
	w := modalWidth(v.width, 40, 58)

	var lines []string
	for i, s := range v.sections {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, v.sty.HelpSection.Render(s.title))
		for _, b := range s.bindings {
			h := b.Help()
			lines = append(lines, "  "+v.sty.HelpKey.Render(padRight(h.Key, 14))+"  "+v.sty.HelpDesc.Render(h.Desc))
		}
	}
	lines = append(lines, "", v.sty.TableCellDim.Render("[?] close"))

	return renderModal(v.theme, v.sty, "Keyboard Shortcuts", strings.Join(lines, "\n"), w-6, v.width, v.height)
}

// keyHints renders bindings as a one-line "key:desc" hint row.
func keyHints(sty *styles.Styles, bindings ...key.Binding) string {
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		h := b.Help()
		parts[i] = sty.HelpKey.Render(h.Key) + sty.HelpDesc.Render(":"+h.Desc)
	}
	return strings.Join(parts, "  ")
}
