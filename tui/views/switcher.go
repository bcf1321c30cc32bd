package views

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/funnel/internal/definition"
	"github.com/tonhe/funnel/internal/engine"
	"github.com/tonhe/funnel/tui/keys"
	"github.com/tonhe/funnel/tui/styles"
)

// DefaultFunnel is the name of the funnel described by the config file alone.
const DefaultFunnel = "default"

// SwitcherAction describes what the app should do after a switcher key press.
type SwitcherAction int

const (
	// ActionNone means no action needed.
	ActionNone SwitcherAction = iota
	// ActionClose means the user wants to dismiss the switcher.
	ActionClose
	// ActionSwitch means the user selected a funnel to switch to.
	ActionSwitch
	// ActionStop means the user wants to stop the selected loader.
	ActionStop
)

// SwitcherItem represents a single funnel entry in the switcher list.
type SwitcherItem struct {
	Name     string
	FilePath string
	Running  bool
	State    engine.State
	Fetches  int
}

// SwitcherView is a modal overlay that lists funnel definitions and lets the
// user switch between them or stop their loaders.
type SwitcherView struct {
	theme  styles.Theme
	sty    *styles.Styles
	items  []SwitcherItem
	cursor int
	width  int
	height int
}

// NewSwitcherView creates a new SwitcherView with the given theme.
func NewSwitcherView(theme styles.Theme) SwitcherView {
	return SwitcherView{
		theme: theme,
		sty:   styles.NewStyles(theme),
	}
}

// SetTheme restyles the overlay.
func (v *SwitcherView) SetTheme(theme styles.Theme) {
	v.theme = theme
	v.sty = styles.NewStyles(theme)
}

// Refresh scans the definitions directory and checks which loaders are
// running. The default funnel is always listed first.
func (v *SwitcherView) Refresh(defDir string, mgr *engine.Manager) error {
	v.items = nil

	names, err := definition.List(defDir)
	names = slices.DeleteFunc(names, func(n string) bool { return n == DefaultFunnel })
	names = append([]string{DefaultFunnel}, names...)

	running := make(map[string]engine.LoaderStatus)
	for _, st := range mgr.Status() {
		running[st.Name] = st
	}
	for _, name := range names {
		item := SwitcherItem{Name: name}
		if name != DefaultFunnel {
			item.FilePath = filepath.Join(defDir, name+".toml")
		}
		if st, ok := running[name]; ok {
			item.Running = true
			item.State = st.State
			item.Fetches = st.Fetches
		}
		v.items = append(v.items, item)
	}

	if v.cursor >= len(v.items) {
		v.cursor = len(v.items) - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
	return err
}

// SetSize updates the available dimensions for the overlay.
func (v *SwitcherView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// SelectedItem returns the currently highlighted item, or nil if the list is
// empty.
func (v *SwitcherView) SelectedItem() *SwitcherItem {
	if len(v.items) == 0 {
		return nil
	}
	return &v.items[v.cursor]
}

// Update handles key messages for the switcher overlay.
func (v SwitcherView) Update(msg tea.Msg) (SwitcherView, tea.Cmd, SwitcherAction) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.DefaultKeyMap.Escape):
			return v, nil, ActionClose

		case key.Matches(msg, keys.DefaultKeyMap.Up):
			if v.cursor > 0 {
				v.cursor--
			}
			return v, nil, ActionNone

		case key.Matches(msg, keys.DefaultKeyMap.Down):
			if v.cursor < len(v.items)-1 {
				v.cursor++
			}
			return v, nil, ActionNone

		case key.Matches(msg, keys.DefaultKeyMap.Enter):
			if len(v.items) > 0 {
				return v, nil, ActionSwitch
			}
			return v, nil, ActionNone

		case msg.String() == "x":
			if len(v.items) > 0 && v.items[v.cursor].Running {
				return v, nil, ActionStop
			}
			return v, nil, ActionNone
		}
	}
	return v, nil, ActionNone
}

// View renders the switcher as a centered modal box.
func (v SwitcherView) View() string {
	inner := modalWidth(v.width, 36, 60) - 6

	lines := make([]string, 0, len(v.items)+2)
	for i, item := range v.items {
		lines = append(lines, v.renderItem(item, i == v.cursor, inner))
	}
	km := keys.DefaultKeyMap
	lines = append(lines, "", keyHints(v.sty,
		relabel(km.Enter, "switch"),
		hint("x", "stop"),
		relabel(km.Escape, "close"),
	))

	return renderModal(v.theme, v.sty, "Funnels", strings.Join(lines, "\n"), inner, v.width, v.height)
}

// renderItem renders a single funnel line: cursor, name and loader status.
func (v SwitcherView) renderItem(item SwitcherItem, selected bool, width int) string {
	cursor := "  "
	if selected {
		cursor = "> "
	}
	cursorStyle := lipgloss.NewStyle().Foreground(v.theme.Base0D).Bold(true)

	nameStyle := lipgloss.NewStyle().Foreground(v.theme.Base05)
	if selected {
		nameStyle = nameStyle.Foreground(v.theme.Base06).Bold(true)
	}

	var status, plain string
	if item.Running {
		dot := v.sty.StateOK
		switch item.State {
		case engine.StateLoading:
			dot = v.sty.StateLoading
		case engine.StateError:
			dot = v.sty.StateError
		}
		count := fmt.Sprintf("(%d)", item.Fetches)
		plain = fmt.Sprintf("* %s  %s", item.State, count)
		status = fmt.Sprintf("%s %s  %s",
			dot.Render("*"),
			dot.Render(item.State.String()),
			lipgloss.NewStyle().Foreground(v.theme.Base04).Render(count),
		)
	} else {
		plain = "o stopped"
		stopped := lipgloss.NewStyle().Foreground(v.theme.Base03)
		status = stopped.Render("o") + " " + stopped.Render("stopped")
	}

	padLen := max(width-len(cursor)-len([]rune(item.Name))-len(plain), 2)
	return cursorStyle.Render(cursor) + nameStyle.Render(item.Name) + strings.Repeat(" ", padLen) + status
}
