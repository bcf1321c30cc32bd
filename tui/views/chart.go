package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/funnel/internal/engine"
	"github.com/tonhe/funnel/internal/funnel"
	"github.com/tonhe/funnel/internal/geometry"
	"github.com/tonhe/funnel/internal/render"
	"github.com/tonhe/funnel/tui/components"
	"github.com/tonhe/funnel/tui/keys"
	"github.com/tonhe/funnel/tui/styles"
)

// Logical pixels per terminal cell. Cells are roughly twice as tall as wide.
const (
	cellW = 8
	cellH = 16
)

// Column widths of the step table.
const (
	colIndex   = 4
	colStep    = 22
	colUsers   = 12
	colOfRef   = 10
	colConv    = 10
	colDrop    = 12
	colDropPct = 9
)

// minChartRows is the smallest chart worth drawing; below it only the table
// is shown.
const minChartRows = 6

// ChartView draws the active funnel in the terminal above a table of its
// derived step metrics.
type ChartView struct {
	theme   styles.Theme
	sty     *styles.Styles
	chart   render.Chart
	snap    engine.Snapshot
	spinner string
	hover   geometry.Hit
	cursor  int
	width   int
	height  int
}

// NewChartView creates a new ChartView with the given theme and chart.
func NewChartView(theme styles.Theme, chart render.Chart) ChartView {
	return ChartView{
		theme:  theme,
		sty:    styles.NewStyles(theme),
		chart:  chart,
		hover:  geometry.NoHit,
		cursor: -1,
	}
}

// SetTheme restyles the view.
func (v *ChartView) SetTheme(theme styles.Theme) {
	v.theme = theme
	v.sty = styles.NewStyles(theme)
}

// SetChart switches the chart variant. The hover state is reset since
// regions differ between variants.
func (v *ChartView) SetChart(c render.Chart) {
	v.chart = c
	v.hover = geometry.NoHit
	if v.cursor >= 0 {
		v.hover = geometry.Hit{Kind: geometry.HitBar, Index: v.cursor}
	}
}

// Chart returns the current chart.
func (v ChartView) Chart() render.Chart { return v.chart }

// SetSnapshot updates the data shown and clamps the cursor.
func (v *ChartView) SetSnapshot(snap engine.Snapshot) {
	v.snap = snap
	if v.cursor >= len(snap.Funnel) {
		v.cursor = len(snap.Funnel) - 1
	}
	if v.hover.Index >= len(snap.Funnel) {
		v.hover = geometry.NoHit
	}
}

// SetSpinner sets the frame shown while loading.
func (v *ChartView) SetSpinner(frame string) {
	v.spinner = frame
}

// SetSize updates the available dimensions for the view.
func (v *ChartView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// Hover returns the highlighted region.
func (v ChartView) Hover() geometry.Hit { return v.hover }

// Cursor returns the selected step, or -1.
func (v ChartView) Cursor() int { return v.cursor }

// Size returns the logical chart size for the current terminal size.
func (v ChartView) Size() geometry.Size {
	cols, rows := v.chartArea()
	return geometry.Size{W: float64(cols * cellW), H: float64(rows * cellH)}
}

// chartArea returns the cell grid left for the chart after the table and
// the annotation line.
func (v ChartView) chartArea() (cols, rows int) {
	rows = v.height - v.tableHeight() - 1
	if rows < minChartRows {
		rows = 0
	}
	return max(v.width, 1), rows
}

func (v ChartView) tableHeight() int {
	return len(v.snap.Funnel) + 1
}

// Update handles step navigation and pointer hover. Mouse coordinates are
// relative to the top-left of the view.
func (v ChartView) Update(msg tea.Msg) (ChartView, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.DefaultKeyMap.Up):
			if v.cursor > 0 {
				v.cursor--
			} else if len(v.snap.Funnel) > 0 {
				v.cursor = 0
			}
			v.syncHover()
		case key.Matches(msg, keys.DefaultKeyMap.Down):
			if v.cursor < len(v.snap.Funnel)-1 {
				v.cursor++
			}
			v.syncHover()
		case key.Matches(msg, keys.DefaultKeyMap.Escape):
			v.cursor = -1
			v.hover = geometry.NoHit
		}
	case tea.MouseMsg:
		if msg.Action != tea.MouseActionMotion && msg.Action != tea.MouseActionPress {
			return v, nil
		}
		v.hover = v.HitAt(msg.X, msg.Y)
		if v.hover.Kind == geometry.HitBar {
			v.cursor = v.hover.Index
		}
	}
	return v, nil
}

// HitAt resolves a cell position in the chart area to a chart region.
func (v ChartView) HitAt(col, row int) geometry.Hit {
	cols, rows := v.chartArea()
	if rows == 0 || col < 0 || row < 0 || col >= cols || row >= rows {
		return geometry.NoHit
	}
	size := v.Size()
	scale := geometry.Scale{Logical: size, Backing: geometry.Size{W: float64(cols), H: float64(rows)}}
	p := scale.ToLogical(geometry.Point{X: float64(col) + 0.5, Y: float64(row) + 0.5})
	return v.chart.HitTest(size, v.snap.Funnel, p)
}

func (v *ChartView) syncHover() {
	if v.cursor < 0 {
		v.hover = geometry.NoHit
		return
	}
	v.hover = geometry.Hit{Kind: geometry.HitBar, Index: v.cursor}
}

// View renders the chart view.
func (v ChartView) View() string {
	switch {
	case v.snap.State == engine.StateError:
		return v.renderError()
	case len(v.snap.Funnel) == 0 && v.snap.State == engine.StateLoading:
		return v.renderLoading()
	}

	var parts []string
	cols, rows := v.chartArea()
	if rows > 0 {
		themed := render.New(v.theme.Chart(v.chart.Variant()))
		cells := render.RenderCells(themed, v.snap.Funnel, v.Size(), cols, rows, v.hover)
		parts = append(parts, components.RenderCells(cells))
	}
	parts = append(parts, v.renderAnnotation())
	if len(v.snap.Funnel) > 0 {
		parts = append(parts, v.renderTable())
	}
	return strings.Join(parts, "\n")
}

// renderAnnotation describes the hovered region, or that a refresh is
// running.
func (v ChartView) renderAnnotation() string {
	var line string
	if tip, ok := v.chart.TooltipFor(v.snap.Funnel, v.hover); ok {
		line = v.sty.TooltipTitle.Render(tip.Title) + "  " + v.sty.TooltipDetail.Render(tip.Detail)
	}
	if v.snap.State == engine.StateLoading {
		line += "  " + v.sty.StateLoading.Render(v.spinner+" refreshing "+v.snap.Interval)
	}
	return " " + line
}

// renderTable renders one row per step with its derived metrics.
func (v ChartView) renderTable() string {
	derived := funnel.Derive(v.snap.Funnel, v.chart.Variant().Reference)
	wStep := colStep
	if extra := v.width - (colIndex + colStep + colUsers + colOfRef + colConv + colDrop + colDropPct); extra > 0 {
		wStep += min(extra, 20)
	}

	hs := v.sty.TableHeader
	header := hs.Render(padRight("#", colIndex)) +
		hs.Render(padRight("Step", wStep)) +
		hs.Render(padLeft("Users", colUsers)) +
		hs.Render(padLeft("Of ref", colOfRef)) +
		hs.Render(padLeft("Conv", colConv)) +
		hs.Render(padLeft("Dropped", colDrop)) +
		hs.Render(padLeft("Drop", colDropPct))

	lines := []string{header}
	for i, d := range derived {
		lines = append(lines, v.renderStepRow(d, wStep, i == v.cursor))
	}
	return strings.Join(lines, "\n")
}

// renderStepRow renders a single step metrics row.
func (v ChartView) renderStepRow(d funnel.Derived, wStep int, selected bool) string {
	rowStyle := v.sty.TableRow
	if selected {
		rowStyle = v.sty.TableRowSel
	}
	dim := v.sty.TableCellDim
	loss := v.sty.Loss
	if selected {
		dim = dim.Background(v.theme.Base02)
		loss = loss.Background(v.theme.Base02)
	}

	drop, dropPct := dim.Render(padLeft("-", colDrop)), dim.Render(padLeft("-", colDropPct))
	if !d.IsEntry() {
		drop = loss.Render(padLeft(funnel.FormatCount(d.DropCount), colDrop))
		dropPct = loss.Render(padLeft(funnel.FormatPercent(d.DropRate, 1), colDropPct))
	}

	return rowStyle.Render(padRight(fmt.Sprintf("%d", d.Index+1), colIndex)) +
		rowStyle.Render(padRight(truncate(d.Label, wStep-1), wStep)) +
		rowStyle.Render(padLeft(funnel.FormatCount(d.Value), colUsers)) +
		rowStyle.Render(padLeft(funnel.FormatPercent(d.PercentOfMax, 1), colOfRef)) +
		rowStyle.Render(padLeft(funnel.FormatPercent(d.CompletionRate, 1), colConv)) +
		drop + dropPct
}

// renderError shows the fetch error and how to retry.
func (v ChartView) renderError() string {
	msg := "failed to fetch funnel data"
	if v.snap.Err != nil {
		msg = v.snap.Err.Error()
	}
	keyStyle := lipgloss.NewStyle().Foreground(v.theme.Base0D).Bold(true)
	dim := lipgloss.NewStyle().Foreground(v.theme.Base04)
	body := lipgloss.JoinVertical(lipgloss.Center,
		v.sty.StateError.Render(msg),
		"",
		dim.Render(fmt.Sprintf("Press %s to retry or %s to change interval", keyStyle.Render("[r]"), keyStyle.Render("[←/→]"))),
	)
	return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, body)
}

// renderLoading renders a centered spinner before the first result arrives.
func (v ChartView) renderLoading() string {
	msg := v.sty.StateLoading.Render(fmt.Sprintf("%s Loading funnel (%s)...", v.spinner, v.snap.Interval))
	return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, msg)
}

// padRight pads s with spaces on the right to the given width.
func padRight(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return string([]rune(s)[:width])
	}
	return s + strings.Repeat(" ", width-n)
}

// padLeft pads s with spaces on the left to the given width.
func padLeft(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return string([]rune(s)[:width])
	}
	return strings.Repeat(" ", width-n) + s
}

// truncate shortens s to maxLen characters, adding an ellipsis if needed.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 0 {
		return ""
	}
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
