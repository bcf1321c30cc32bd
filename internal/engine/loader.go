package engine

import (
	"context"
	"sync"
	"time"

	"github.com/tonhe/funnel/internal/funnel"
	"github.com/tonhe/funnel/internal/logging"
)

// State is the lifecycle state of a Loader. Exactly one state holds at a time.
type State int

const (
	StateLoading State = iota
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "loading"
	}
}

// Request is one fetch issued by Begin. It carries the generation used to
// recognise stale results.
type Request struct {
	Generation uint64
	Interval   string
	ctx        context.Context
}

// Result is the outcome of Run for a single Request.
type Result struct {
	Generation uint64
	Interval   string
	Funnel     funnel.Funnel
	Err        error
	Finished   time.Time
}

// Snapshot is a point-in-time copy of a Loader's state.
type Snapshot struct {
	State      State
	Interval   string
	Funnel     funnel.Funnel
	Err        error
	Updated    time.Time
	Generation uint64
}

// Loader drives fetches from a Source and tracks loading, success and error
// state. Starting a new request cancels the one in flight, and results from
// superseded requests are discarded by generation, so the state always
// reflects the most recently requested interval.
type Loader struct {
	mu       sync.Mutex
	source   Source
	timeout  time.Duration
	gen      uint64
	cancel   context.CancelFunc
	state    State
	interval string
	data     funnel.Funnel
	err      error
	updated  time.Time
	history  *History
	now      func() time.Time
}

// NewLoader returns a Loader in the loading state. historySize bounds the
// number of successful fetches remembered; timeout bounds each request and is
// ignored when zero.
func NewLoader(source Source, historySize int, timeout time.Duration) *Loader {
	return &Loader{
		source:   source,
		timeout:  timeout,
		state:    StateLoading,
		interval: DefaultInterval,
		history:  NewHistory(historySize),
		now:      time.Now,
	}
}

// Begin starts a new request generation for interval: it cancels any request
// still in flight and enters the loading state. The previous funnel is kept
// so a view can continue to show it while the new one loads.
func (l *Loader) Begin(parent context.Context, interval string) Request {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		l.cancel()
	}
	var ctx context.Context
	if l.timeout > 0 {
		ctx, l.cancel = context.WithTimeout(parent, l.timeout)
	} else {
		ctx, l.cancel = context.WithCancel(parent)
	}

	l.gen++
	l.state = StateLoading
	l.interval = interval
	l.err = nil
	return Request{Generation: l.gen, Interval: interval, ctx: ctx}
}

// Run performs the fetch for req. It does not touch the Loader's state and is
// safe to call from any goroutine.
func (l *Loader) Run(req Request) Result {
	ctx := req.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	f, err := l.source.FetchSteps(ctx, req.Interval)
	return Result{
		Generation: req.Generation,
		Interval:   req.Interval,
		Funnel:     f,
		Err:        err,
		Finished:   l.now(),
	}
}

// Apply stores res if it belongs to the current generation and reports
// whether it was accepted.
func (l *Loader) Apply(ctx context.Context, res Result) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if res.Generation != l.gen {
		logging.Get(ctx).Debug().
			Uint64("generation", res.Generation).
			Uint64("current", l.gen).
			Msg("discarding stale funnel result")
		return false
	}
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}

	l.updated = res.Finished
	if res.Err != nil {
		l.state = StateError
		l.err = res.Err
		l.data = nil
		logging.Get(ctx).Warn().Err(res.Err).Str("interval", res.Interval).Msg("funnel fetch failed")
		return true
	}

	l.state = StateSuccess
	l.data = res.Funnel
	l.history.Record(NewSample(res.Funnel, res.Interval, res.Finished))
	logging.Get(ctx).Info().Str("interval", res.Interval).Int("steps", len(res.Funnel)).Msg("funnel loaded")
	return true
}

// Load runs a full Begin, Run, Apply cycle and returns the resulting
// snapshot. The error is the fetch error, if any.
func (l *Loader) Load(ctx context.Context, interval string) (Snapshot, error) {
	req := l.Begin(ctx, interval)
	res := l.Run(req)
	l.Apply(ctx, res)
	snap := l.Snapshot()
	if snap.Generation == res.Generation && snap.State == StateError {
		return snap, snap.Err
	}
	return snap, nil
}

// Snapshot returns a copy of the current state.
func (l *Loader) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Snapshot{
		State:      l.state,
		Interval:   l.interval,
		Funnel:     append(funnel.Funnel(nil), l.data...),
		Err:        l.err,
		Updated:    l.updated,
		Generation: l.gen,
	}
}

// History returns the successful fetches from oldest to newest.
func (l *Loader) History() []Sample {
	return l.history.Samples()
}

// Series returns the overall conversion of past fetches for interval.
func (l *Loader) Series(interval string) []float64 {
	return l.history.Series(interval)
}

// Trend compares the newest successful fetch with the previous one for the
// same interval.
func (l *Loader) Trend() (Trend, bool) {
	return l.history.Trend()
}

// Close cancels any request in flight.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}
