package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/tonhe/funnel/internal/funnel"
)

// Source produces funnel steps for a reporting interval. Each call is a
// single attempt; callers decide whether to try again.
type Source interface {
	FetchSteps(ctx context.Context, interval string) (funnel.Funnel, error)
}

// ErrInvalidInterval is returned for an interval outside Intervals.
var ErrInvalidInterval = errors.New("invalid interval")

// Intervals are the reporting windows the analytics endpoint accepts.
var Intervals = []string{"7d", "14d", "30d", "90d", "180d"}

// DefaultInterval is used when no interval is configured.
const DefaultInterval = "90d"

// DefaultSteps are the page paths requested when a funnel definition names
// none.
var DefaultSteps = []string{"/", "/analytics", "/subscription"}

// ValidateInterval returns ErrInvalidInterval if interval is not one of
// Intervals.
func ValidateInterval(interval string) error {
	if !slices.Contains(Intervals, interval) {
		return fmt.Errorf("%w: %q (want one of %v)", ErrInvalidInterval, interval, Intervals)
	}
	return nil
}

// NextInterval returns the interval after current in Intervals, wrapping
// around. delta may be negative.
func NextInterval(current string, delta int) string {
	i := slices.Index(Intervals, current)
	if i < 0 {
		return DefaultInterval
	}
	n := len(Intervals)
	return Intervals[((i+delta)%n+n)%n]
}
