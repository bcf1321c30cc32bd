package views

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tonhe/funnel/internal/definition"
	"github.com/tonhe/funnel/internal/engine"
	"github.com/tonhe/funnel/internal/funnel"
	"github.com/tonhe/funnel/internal/geometry"
	"github.com/tonhe/funnel/internal/render"
	"github.com/tonhe/funnel/tui/styles"
)

func newChartView(t *testing.T, variant string) ChartView {
	t.Helper()
	c, err := render.NewByName(variant)
	if err != nil {
		t.Fatal(err)
	}
	v := NewChartView(styles.Default(), c)
	v.SetSize(100, 37)
	return v
}

func successSnapshot() engine.Snapshot {
	return engine.Snapshot{
		State:    engine.StateSuccess,
		Interval: "90d",
		Funnel:   engine.SampleFunnel(),
		Updated:  time.Now(),
	}
}

func TestChartViewTable(t *testing.T) {
	v := newChartView(t, "bars")
	v.SetSnapshot(successSnapshot())
	view := v.View()
	for _, want := range []string{"Step", "Visit Website", "Add to Cart", "Purchase", "150,928", "56.6%", "65,508"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestChartViewStates(t *testing.T) {
	v := newChartView(t, "area")
	v.SetSpinner("*")
	v.SetSnapshot(engine.Snapshot{State: engine.StateLoading, Interval: "7d"})
	if view := v.View(); !strings.Contains(view, "Loading funnel (7d)") {
		t.Errorf("loading view = %q", view)
	}

	v.SetSnapshot(engine.Snapshot{State: engine.StateError, Err: errors.New("failed to fetch funnel data: Not Found")})
	view := v.View()
	if !strings.Contains(view, "Not Found") || !strings.Contains(view, "retry") {
		t.Errorf("error view = %q", view)
	}

	snap := successSnapshot()
	snap.State = engine.StateLoading
	v.SetSnapshot(snap)
	if view := v.View(); !strings.Contains(view, "refreshing 90d") || !strings.Contains(view, "Visit Website") {
		t.Error("refresh should keep the previous funnel visible")
	}
}

func TestChartViewCursor(t *testing.T) {
	v := newChartView(t, "bars")
	v.SetSnapshot(successSnapshot())
	if v.Cursor() != -1 || v.Hover() != geometry.NoHit {
		t.Fatal("no step should be selected initially")
	}

	down := tea.KeyMsg{Type: tea.KeyDown}
	for range 5 {
		v, _ = v.Update(down)
	}
	if v.Cursor() != 2 {
		t.Errorf("cursor = %d, want clamped to 2", v.Cursor())
	}
	if h := v.Hover(); h.Kind != geometry.HitBar || h.Index != 2 {
		t.Errorf("hover = %+v", h)
	}
	if !strings.Contains(v.View(), "Completed this Step") {
		t.Error("selected step should show its tooltip")
	}

	v.SetSnapshot(engine.Snapshot{State: engine.StateSuccess, Funnel: engine.SampleFunnel()[:1]})
	if v.Cursor() != 0 {
		t.Errorf("cursor = %d after shrinking funnel, want 0", v.Cursor())
	}

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if v.Cursor() != -1 || v.Hover().Kind != geometry.HitNone {
		t.Error("esc should clear the selection")
	}
}

func TestChartViewHitAtBounds(t *testing.T) {
	v := newChartView(t, "columns")
	v.SetSnapshot(successSnapshot())
	for _, p := range [][2]int{{-1, 0}, {0, -1}, {100, 0}, {0, 500}} {
		if h := v.HitAt(p[0], p[1]); h.Kind != geometry.HitNone {
			t.Errorf("HitAt(%d, %d) = %+v, want none", p[0], p[1], h)
		}
	}

	found := false
	for r := 0; r < 37 && !found; r++ {
		for c := 0; c < 100; c++ {
			if v.HitAt(c, r).Kind == geometry.HitBar {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("expected some cell over a column")
	}
}

func TestChartViewSize(t *testing.T) {
	v := newChartView(t, "area")
	v.SetSnapshot(successSnapshot())
	// 37 rows minus 4 table lines and 1 annotation line.
	if got := v.Size(); got.W != 800 || got.H != 32*16 {
		t.Errorf("size = %+v", got)
	}

	v.SetSize(100, 8)
	if got := v.Size(); got.H != 0 {
		t.Errorf("chart should be hidden when too short, got %+v", got)
	}
	if view := v.View(); !strings.Contains(view, "Visit Website") {
		t.Error("table should still render")
	}
}

func TestDetailView(t *testing.T) {
	v := NewDetailView(styles.Default())
	v.SetSize(100, 30)
	if view := v.View(); !strings.Contains(view, "No step selected") {
		t.Error("expected placeholder")
	}

	v.SetStep("demo", engine.SampleFunnel(), funnel.ReferenceFirst, 0)
	view := v.View()
	if !strings.Contains(view, "Entry step") || !strings.Contains(view, "no samples") {
		t.Errorf("entry view = %q", view)
	}

	v, _, back := v.Update(tea.KeyMsg{Type: tea.KeyDown})
	if back || v.Index() != 1 {
		t.Fatalf("index = %d back = %v", v.Index(), back)
	}
	v.SetHistory([]engine.Sample{{Overall: 7}, {Overall: 8.18}})
	view = v.View()
	for _, want := range []string{"Add to Cart", "2 of 3", "56.60%", "65,508", "43.40%", "over 2 fetches"} {
		if !strings.Contains(view, want) {
			t.Errorf("detail view missing %q", want)
		}
	}

	_, _, back = v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !back {
		t.Error("esc should go back")
	}
}

func TestSwitcherRefresh(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"beta", "alpha"} {
		if err := definition.Save(&definition.Definition{Name: name, Sample: true}, filepath.Join(dir, name+".toml")); err != nil {
			t.Fatal(err)
		}
	}
	mgr := engine.NewManager(5, 0)
	if _, err := mgr.Start("beta", engine.NewSampleSource()); err != nil {
		t.Fatal(err)
	}

	v := NewSwitcherView(styles.Default())
	v.SetSize(100, 30)
	if err := v.Refresh(dir, mgr); err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, it := range v.items {
		names = append(names, it.Name)
	}
	if strings.Join(names, ",") != "default,alpha,beta" {
		t.Fatalf("items = %v", names)
	}
	if v.items[0].FilePath != "" || v.items[1].FilePath != filepath.Join(dir, "alpha.toml") {
		t.Errorf("unexpected paths %+v", v.items)
	}
	if v.items[1].Running || !v.items[2].Running {
		t.Errorf("running flags wrong: %+v", v.items)
	}
	if view := v.View(); !strings.Contains(view, "Funnels") || !strings.Contains(view, "stopped") {
		t.Errorf("view = %q", view)
	}
}

func TestSwitcherActions(t *testing.T) {
	mgr := engine.NewManager(5, 0)
	if _, err := mgr.Start("alpha", engine.NewSampleSource()); err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	if err := definition.Save(&definition.Definition{Name: "alpha", Sample: true}, filepath.Join(dir, "alpha.toml")); err != nil {
		t.Fatal(err)
	}

	v := NewSwitcherView(styles.Default())
	if err := v.Refresh(dir, mgr); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		msg  tea.KeyMsg
		want SwitcherAction
	}{
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}, ActionNone}, // default is not running
		{tea.KeyMsg{Type: tea.KeyDown}, ActionNone},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}, ActionStop},
		{tea.KeyMsg{Type: tea.KeyEnter}, ActionSwitch},
		{tea.KeyMsg{Type: tea.KeyEsc}, ActionClose},
	}
	for i, tt := range tests {
		var got SwitcherAction
		v, _, got = v.Update(tt.msg)
		if got != tt.want {
			t.Errorf("step %d (%s): action = %v, want %v", i, tt.msg, got, tt.want)
		}
	}
	if item := v.SelectedItem(); item == nil || item.Name != "alpha" {
		t.Errorf("selected = %+v", item)
	}
}

func TestPadding(t *testing.T) {
	if got := padRight("ab", 4); got != "ab  " {
		t.Errorf("padRight = %q", got)
	}
	if got := padLeft("ab", 4); got != "  ab" {
		t.Errorf("padLeft = %q", got)
	}
	if got := padLeft("abcdef", 3); got != "abc" {
		t.Errorf("padLeft overflow = %q", got)
	}
	if got := truncate("Visit Website", 8); got != "Visit..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abc", 0); got != "" {
		t.Errorf("truncate zero = %q", got)
	}
}
