package engine

import (
	"sync"
	"time"

	"github.com/tonhe/funnel/internal/funnel"
)

// Sample records the outcome of one successful fetch.
type Sample struct {
	Timestamp time.Time
	Interval  string
	Steps     int
	Entry     float64
	Overall   float64
}

// NewSample summarises f as fetched for interval at ts.
func NewSample(f funnel.Funnel, interval string, ts time.Time) Sample {
	s := Sample{
		Timestamp: ts,
		Interval:  interval,
		Steps:     len(f),
		Overall:   funnel.Overall(f),
	}
	if len(f) > 0 {
		s.Entry = f[0].Value
	}
	return s
}

// Trend is the change in overall conversion between two samples, in
// percentage points.
type Trend struct {
	Delta   float64
	Elapsed time.Duration
}

// CalculateTrend compares two samples. Samples taken for different intervals
// are not comparable and report ok=false, as does a zero or negative elapsed
// time.
func CalculateTrend(prev, curr Sample) (Trend, bool) {
	if prev.Interval != curr.Interval {
		return Trend{}, false
	}
	elapsed := curr.Timestamp.Sub(prev.Timestamp)
	if elapsed <= 0 {
		return Trend{}, false
	}
	return Trend{Delta: curr.Overall - prev.Overall, Elapsed: elapsed}, true
}

// History remembers the most recent successful fetches of one funnel, oldest
// first, dropping the oldest once full. It is safe for concurrent use.
type History struct {
	mu      sync.RWMutex
	samples []Sample
	head    int
	size    int
}

// NewHistory returns a History holding at most capacity samples. A capacity
// below one is raised to one.
func NewHistory(capacity int) *History {
	return &History{samples: make([]Sample, max(capacity, 1))}
}

// Record appends s, overwriting the oldest sample when full.
func (h *History) Record(s Sample) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.samples[(h.head+h.size)%len(h.samples)] = s
	if h.size < len(h.samples) {
		h.size++
	} else {
		h.head = (h.head + 1) % len(h.samples)
	}
}

// Len returns the number of recorded samples.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}

// Cap returns the maximum number of samples kept.
func (h *History) Cap() int {
	return len(h.samples)
}

// Samples returns the recorded samples from oldest to newest.
func (h *History) Samples() []Sample {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Sample, h.size)
	for i := range out {
		out[i] = h.samples[(h.head+i)%len(h.samples)]
	}
	return out
}

// Latest returns the newest sample.
func (h *History) Latest() (Sample, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.size == 0 {
		return Sample{}, false
	}
	return h.samples[(h.head+h.size-1)%len(h.samples)], true
}

// Series returns the overall conversion of every sample fetched for
// interval, oldest first.
func (h *History) Series(interval string) []float64 {
	var out []float64
	for _, s := range h.Samples() {
		if s.Interval == interval {
			out = append(out, s.Overall)
		}
	}
	return out
}

// Trend compares the newest sample with the most recent earlier sample for
// the same interval.
func (h *History) Trend() (Trend, bool) {
	all := h.Samples()
	if len(all) < 2 {
		return Trend{}, false
	}
	curr := all[len(all)-1]
	for i := len(all) - 2; i >= 0; i-- {
		if all[i].Interval == curr.Interval {
			return CalculateTrend(all[i], curr)
		}
	}
	return Trend{}, false
}
