package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/funnel/internal/config"
	"github.com/tonhe/funnel/internal/credential"
	"github.com/tonhe/funnel/internal/definition"
	"github.com/tonhe/funnel/internal/engine"
	"github.com/tonhe/funnel/internal/geometry"
	"github.com/tonhe/funnel/internal/logging"
	"github.com/tonhe/funnel/internal/render"
	"github.com/tonhe/funnel/tui/components"
	"github.com/tonhe/funnel/tui/keys"
	"github.com/tonhe/funnel/tui/styles"
	"github.com/tonhe/funnel/tui/views"
)

// AppState represents the current screen/view of the application.
type AppState int

const (
	StateChart AppState = iota
	StateSwitcher
	StateDetail
)

// fetchResultMsg carries a finished fetch back to the model. The loader is
// kept so results land on the funnel that asked for them even after a switch.
type fetchResultMsg struct {
	loader *engine.Loader
	res    engine.Result
}

// exportDoneMsg reports the files written by an export.
type exportDoneMsg struct {
	paths []string
	err   error
}

// Options configures a new AppModel.
type Options struct {
	Config         *config.Config
	Manager        *engine.Manager
	Tokens         credential.TokenSource
	Definition     *definition.Definition
	DefinitionsDir string
	ExportDir      string
	Version        string
}

// AppModel is the root Bubble Tea model that manages all views and state.
type AppModel struct {
	ctx      context.Context
	state    AppState
	theme    styles.Theme
	opts     Options
	def      *definition.Definition
	loader   *engine.Loader
	spinner  spinner.Model
	chart    views.ChartView
	detail   views.DetailView
	switcher views.SwitcherView
	help     views.HelpView
	message  string
	width    int
	height   int
}

// NewAppModel creates the model and starts a loader for opts.Definition.
// ctx carries the logger and bounds every fetch.
func NewAppModel(ctx context.Context, opts Options) (AppModel, error) {
	theme := styles.Resolve(opts.Config.Theme)
	sty := styles.NewStyles(theme)

	m := AppModel{
		ctx:      ctx,
		theme:    theme,
		opts:     opts,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(sty.StateLoading)),
		detail:   views.NewDetailView(theme),
		switcher: views.NewSwitcherView(theme),
		help:     views.NewHelpView(theme),
	}
	if err := m.activate(opts.Definition); err != nil {
		return AppModel{}, err
	}
	return m, nil
}

// activate makes d the active funnel, starting its loader if none runs yet.
func (m *AppModel) activate(d *definition.Definition) error {
	chart, err := render.NewByName(d.Variant)
	if err != nil {
		return err
	}
	l, err := m.opts.Manager.Acquire(d.Name, func() (engine.Source, error) {
		return d.Source(m.opts.Tokens, m.opts.Config.Timeout)
	})
	if err != nil {
		return err
	}
	m.def = d
	m.loader = l
	if m.chart.Chart().Variant().Name == "" {
		m.chart = views.NewChartView(m.theme, chart)
		m.chart.SetSize(m.width, m.height-3)
	} else {
		m.chart.SetChart(chart)
	}
	m.syncSnapshot()
	return nil
}

// Init starts the spinner and the first fetch.
func (m AppModel) Init() tea.Cmd {
	fetch := m.fetch(m.def.Interval)
	return tea.Batch(m.spinner.Tick, fetch)
}

// fetch begins a new request generation on the active loader and returns a
// command that performs it.
func (m *AppModel) fetch(interval string) tea.Cmd {
	l := m.loader
	req := l.Begin(m.ctx, interval)
	m.syncSnapshot()
	logging.Get(m.ctx).Debug().Str("funnel", m.def.Name).Str("interval", interval).
		Uint64("generation", req.Generation).Msg("fetching funnel")
	return func() tea.Msg {
		return fetchResultMsg{loader: l, res: l.Run(req)}
	}
}

func (m *AppModel) syncSnapshot() {
	m.chart.SetSnapshot(m.loader.Snapshot())
	m.chart.SetSpinner(m.spinner.View())
}

// Update handles messages and dispatches to the active view.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Body height = total - 1 (header) - 2 (status bar lines)
		m.chart.SetSize(msg.Width, msg.Height-3)
		m.detail.SetSize(msg.Width, msg.Height-3)
		m.switcher.SetSize(msg.Width, msg.Height-3)
		m.help.SetSize(msg.Width, msg.Height-3)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.chart.SetSpinner(m.spinner.View())
		return m, cmd

	case fetchResultMsg:
		msg.loader.Apply(m.ctx, msg.res)
		if msg.loader == m.loader {
			m.syncSnapshot()
			m.detail.SetHistory(m.loader.History())
		}
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.message = "export failed: " + msg.err.Error()
		} else {
			m.message = fmt.Sprintf("exported %d files to %s", len(msg.paths), m.opts.ExportDir)
		}
		return m, nil

	case tea.MouseMsg:
		if m.state != StateChart || m.help.IsVisible() {
			return m, nil
		}
		// Chart coordinates start below the header line.
		msg.Y--
		var cmd tea.Cmd
		m.chart, cmd = m.chart.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.opts.Manager.StopAll()
			return m, tea.Quit
		}
		if m.help.IsVisible() {
			if key.Matches(msg, keys.DefaultKeyMap.Help, keys.DefaultKeyMap.Escape) {
				m.help.Toggle()
			}
			return m, nil
		}

		switch m.state {
		case StateSwitcher:
			return m.updateSwitcher(msg)
		case StateDetail:
			var back bool
			var cmd tea.Cmd
			m.detail, cmd, back = m.detail.Update(msg)
			if back {
				m.state = StateChart
			}
			return m, cmd
		default:
			return m.updateChart(msg)
		}
	}
	return m, nil
}

// updateChart handles keys on the main chart screen.
func (m AppModel) updateChart(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	km := keys.DefaultKeyMap
	switch {
	case key.Matches(msg, km.Quit):
		m.opts.Manager.StopAll()
		return m, tea.Quit

	case key.Matches(msg, km.Help):
		m.help.Toggle()
		return m, nil

	case key.Matches(msg, km.Refresh):
		m.message = ""
		cmd := m.fetch(m.loader.Snapshot().Interval)
		return m, cmd

	case key.Matches(msg, km.PrevInterval), key.Matches(msg, km.NextInterval):
		delta := 1
		if key.Matches(msg, km.PrevInterval) {
			delta = -1
		}
		current := m.loader.Snapshot().Interval
		next := engine.NextInterval(current, delta)
		if next == current {
			return m, nil
		}
		m.message = ""
		cmd := m.fetch(next)
		return m, cmd

	case key.Matches(msg, km.Variant):
		names := render.VariantNames()
		i := slices.Index(names, m.chart.Chart().Variant().Name)
		chart, err := render.NewByName(names[(i+1)%len(names)])
		if err != nil {
			m.message = err.Error()
			return m, nil
		}
		m.chart.SetChart(chart)
		return m, nil

	case key.Matches(msg, km.Theme):
		t := styles.Next(m.theme.Slug, 1)
		m.setTheme(t)
		m.opts.Config.Theme = t.Slug
		m.message = "theme: " + t.Name
		return m, nil

	case key.Matches(msg, km.Export):
		snap := m.loader.Snapshot()
		if len(snap.Funnel) == 0 {
			m.message = "nothing to export"
			return m, nil
		}
		m.message = "exporting..."
		return m, m.export(snap)

	case key.Matches(msg, km.Funnels):
		if err := m.switcher.Refresh(m.opts.DefinitionsDir, m.opts.Manager); err != nil {
			m.message = err.Error()
		}
		m.state = StateSwitcher
		return m, nil

	case key.Matches(msg, km.Enter):
		snap := m.loader.Snapshot()
		if m.chart.Cursor() < 0 || len(snap.Funnel) == 0 {
			return m, nil
		}
		m.detail.SetStep(m.def.Name, snap.Funnel, m.chart.Chart().Variant().Reference, m.chart.Cursor())
		m.detail.SetHistory(m.loader.History())
		m.state = StateDetail
		return m, nil
	}

	var cmd tea.Cmd
	m.chart, cmd = m.chart.Update(msg)
	return m, cmd
}

// updateSwitcher handles keys while the funnel switcher is open.
func (m AppModel) updateSwitcher(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var action views.SwitcherAction
	var cmd tea.Cmd
	m.switcher, cmd, action = m.switcher.Update(msg)

	item := m.switcher.SelectedItem()
	switch action {
	case views.ActionClose:
		m.state = StateChart

	case views.ActionStop:
		if item.Name == m.def.Name {
			m.message = "cannot stop the active funnel"
			break
		}
		if err := m.opts.Manager.Stop(item.Name); err != nil {
			m.message = err.Error()
		}
		_ = m.switcher.Refresh(m.opts.DefinitionsDir, m.opts.Manager)

	case views.ActionSwitch:
		m.state = StateChart
		if item.Name == m.def.Name {
			return m, cmd
		}
		d, err := m.loadDefinition(item.Name)
		if err == nil {
			err = m.activate(d)
		}
		if err != nil {
			m.message = err.Error()
			logging.Get(m.ctx).Warn().Err(err).Str("funnel", item.Name).Msg("switching funnel")
			return m, cmd
		}
		m.message = ""
		logging.Get(m.ctx).Info().Str("funnel", d.Name).Msg("switched funnel")
		if m.loader.Snapshot().Generation == 0 {
			fetch := m.fetch(d.Interval)
			if cmd == nil {
				return m, fetch
			}
			return m, tea.Batch(cmd, fetch)
		}
	}
	return m, cmd
}

func (m AppModel) loadDefinition(name string) (*definition.Definition, error) {
	if name == views.DefaultFunnel {
		d := definition.FromConfig(m.opts.Config)
		return d, d.Validate()
	}
	return definition.LoadNamed(m.opts.DefinitionsDir, name, m.opts.Config)
}

func (m *AppModel) setTheme(t styles.Theme) {
	m.theme = t
	m.chart.SetTheme(t)
	m.detail.SetTheme(t)
	m.switcher.SetTheme(t)
	m.help.SetTheme(t)
	m.spinner.Style = styles.NewStyles(t).StateLoading
}

// export writes the current chart as SVG and PNG into the export directory.
func (m AppModel) export(snap engine.Snapshot) tea.Cmd {
	dir := m.opts.ExportDir
	chart := m.chart.Chart()
	size := geometry.Size{W: float64(m.opts.Config.Width), H: float64(m.opts.Config.Height)}
	ratio := m.opts.Config.DPR
	base := fmt.Sprintf("%s-%s-%s-%s", m.def.Name, chart.Variant().Name, snap.Interval, time.Now().Format("20060102-150405"))
	ctx := m.ctx
	return func() tea.Msg {
		paths, err := ExportFiles(dir, base, chart, snap, size, ratio)
		if err != nil {
			logging.Get(ctx).Error().Err(err).Str("dir", dir).Msg("export failed")
		} else {
			logging.Get(ctx).Info().Strs("files", paths).Msg("exported chart")
		}
		return exportDoneMsg{paths: paths, err: err}
	}
}

// ExportFiles renders snap with chart into base.svg and base.png in dir.
func ExportFiles(dir, base string, chart render.Chart, snap engine.Snapshot, size geometry.Size, ratio float64) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	svgPath := filepath.Join(dir, base+".svg")
	pngPath := filepath.Join(dir, base+".png")

	write := func(path string, draw func(f *os.File) error) error {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := draw(f); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	if err := write(svgPath, func(f *os.File) error {
		return render.RenderSVG(f, chart, snap.Funnel, size, geometry.NoHit)
	}); err != nil {
		return nil, err
	}
	if err := write(pngPath, func(f *os.File) error {
		return render.RenderPNG(f, chart, snap.Funnel, size, ratio, geometry.NoHit)
	}); err != nil {
		return []string{svgPath}, err
	}
	return []string{svgPath, pngPath}, nil
}

// View renders the full application UI by composing header, body, and status.
func (m AppModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	snap := m.loader.Snapshot()
	header := components.RenderHeader(m.theme, components.HeaderInfo{
		Funnel:   m.def.Name,
		State:    snap.State,
		Interval: snap.Interval,
		Variant:  m.chart.Chart().Variant().Name,
		Data:     snap.Funnel,
		Version:  m.opts.Version,
	}, m.width)

	var body string
	switch {
	case m.help.IsVisible():
		body = m.help.View()
	case m.state == StateSwitcher:
		body = m.switcher.View()
	case m.state == StateDetail:
		body = m.detail.View()
	default:
		body = m.chart.View()
	}

	info := components.StatusInfo{Snapshot: snap, Message: m.message}
	info.Trend, info.HasTrend = m.loader.Trend()
	info.History = m.loader.Series(snap.Interval)
	statusBar := components.RenderStatusBar(m.theme, info, m.width)

	// Fill body to the available height between header and status bar
	bodyHeight := max(m.height-1-2, 1) // 1 header line, 2 status bar lines
	bodyStyle := lipgloss.NewStyle().
		Width(m.width).
		Height(bodyHeight).
		Background(m.theme.Base00).
		Foreground(m.theme.Base05)

	return lipgloss.JoinVertical(lipgloss.Left, header, bodyStyle.Render(body), statusBar)
}

// Run starts the interactive program with mouse motion reporting enabled.
func Run(ctx context.Context, opts Options) error {
	m, err := NewAppModel(ctx, opts)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	_, err = p.Run()
	opts.Manager.StopAll()
	return err
}
