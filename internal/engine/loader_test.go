package engine

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/tonhe/funnel/internal/funnel"
)

// scriptedSource returns queued results per interval and records the
// contexts it was called with.
type scriptedSource struct {
	mu      sync.Mutex
	results map[string]funnel.Funnel
	errs    map[string]error
	ctxs    []context.Context
}

func (s *scriptedSource) FetchSteps(ctx context.Context, interval string) (funnel.Funnel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctxs = append(s.ctxs, ctx)
	if err := s.errs[interval]; err != nil {
		return nil, err
	}
	return s.results[interval], nil
}

func newScripted() *scriptedSource {
	return &scriptedSource{
		results: map[string]funnel.Funnel{
			"7d":  {{Label: "A", Value: 100}, {Label: "B", Value: 10}},
			"90d": SampleFunnel(),
		},
		errs: map[string]error{},
	}
}

func TestLoaderInitialState(t *testing.T) {
	l := NewLoader(newScripted(), 5, 0)
	snap := l.Snapshot()
	if snap.State != StateLoading {
		t.Errorf("expected loading, got %s", snap.State)
	}
	if snap.Interval != DefaultInterval {
		t.Errorf("expected default interval, got %q", snap.Interval)
	}
	if len(snap.Funnel) != 0 || snap.Err != nil {
		t.Errorf("unexpected initial snapshot %+v", snap)
	}
}

func TestLoaderSuccess(t *testing.T) {
	l := NewLoader(newScripted(), 5, 0)
	snap, err := l.Load(context.Background(), "90d")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if snap.State != StateSuccess || len(snap.Funnel) != 3 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if snap.Updated.IsZero() {
		t.Error("expected Updated to be set")
	}
	if len(l.History()) != 1 {
		t.Errorf("expected 1 history sample, got %d", len(l.History()))
	}
}

func TestLoaderError(t *testing.T) {
	src := newScripted()
	l := NewLoader(src, 5, 0)
	if _, err := l.Load(context.Background(), "90d"); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	boom := &FetchError{Status: 500, StatusText: "Internal Server Error"}
	src.errs["7d"] = boom
	snap, err := l.Load(context.Background(), "7d")
	if !errors.Is(err, boom) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if snap.State != StateError || snap.Err != boom {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if snap.Funnel != nil {
		t.Error("error state should clear the funnel")
	}
	if len(l.History()) != 1 {
		t.Error("failed fetches should not be added to history")
	}
}

func TestLoaderBeginKeepsPreviousFunnel(t *testing.T) {
	l := NewLoader(newScripted(), 5, 0)
	l.Load(context.Background(), "90d")

	l.Begin(context.Background(), "7d")
	snap := l.Snapshot()
	if snap.State != StateLoading || snap.Interval != "7d" {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if len(snap.Funnel) != 3 {
		t.Error("expected previous funnel to remain visible while loading")
	}
}

func TestLoaderDiscardsStaleResult(t *testing.T) {
	l := NewLoader(newScripted(), 5, 0)
	ctx := context.Background()

	first := l.Begin(ctx, "7d")
	second := l.Begin(ctx, "90d")

	stale := l.Run(first)
	fresh := l.Run(second)

	if l.Apply(ctx, stale) {
		t.Error("stale result should be rejected")
	}
	if s := l.Snapshot(); s.State != StateLoading {
		t.Errorf("stale result changed state to %s", s.State)
	}
	if !l.Apply(ctx, fresh) {
		t.Error("current result should be accepted")
	}
	snap := l.Snapshot()
	if snap.Interval != "90d" || len(snap.Funnel) != 3 {
		t.Errorf("unexpected snapshot %+v", snap)
	}

	// a stale result arriving after the fresh one changes nothing
	if l.Apply(ctx, stale) {
		t.Error("late stale result should be rejected")
	}
	if got := l.Snapshot(); len(got.Funnel) != 3 {
		t.Error("late stale result overwrote the funnel")
	}
}

func TestLoaderBeginCancelsPrevious(t *testing.T) {
	l := NewLoader(newScripted(), 5, 0)
	first := l.Begin(context.Background(), "7d")
	l.Begin(context.Background(), "90d")

	select {
	case <-first.ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("previous request context was not cancelled")
	}
}

func TestLoaderTimeout(t *testing.T) {
	l := NewLoader(newScripted(), 5, 10*time.Millisecond)
	req := l.Begin(context.Background(), "7d")
	if _, ok := req.ctx.Deadline(); !ok {
		t.Error("expected request deadline")
	}
}

func TestLoaderCloseCancels(t *testing.T) {
	l := NewLoader(newScripted(), 5, 0)
	req := l.Begin(context.Background(), "7d")
	l.Close()
	if req.ctx.Err() == nil {
		t.Error("Close should cancel the request in flight")
	}
}

func TestLoaderTrend(t *testing.T) {
	src := newScripted()
	l := NewLoader(src, 5, 0)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	l.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	if _, ok := l.Trend(); ok {
		t.Error("no trend expected without history")
	}
	l.Load(context.Background(), "7d")
	src.results["7d"] = funnel.Funnel{{Label: "A", Value: 100}, {Label: "B", Value: 25}}
	l.Load(context.Background(), "7d")

	trend, ok := l.Trend()
	if !ok {
		t.Fatal("expected trend after two fetches")
	}
	if math.Abs(trend.Delta-15) > 1e-9 || trend.Elapsed != time.Minute {
		t.Errorf("unexpected trend %+v", trend)
	}
}

func TestLoaderSnapshotIsCopy(t *testing.T) {
	l := NewLoader(newScripted(), 5, 0)
	snap, _ := l.Load(context.Background(), "90d")
	snap.Funnel[0].Value = 1
	if l.Snapshot().Funnel[0].Value == 1 {
		t.Error("snapshot shares storage with the loader")
	}
}

func TestStateString(t *testing.T) {
	if StateLoading.String() != "loading" || StateSuccess.String() != "success" || StateError.String() != "error" {
		t.Error("unexpected state names")
	}
}
