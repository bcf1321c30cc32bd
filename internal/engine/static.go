package engine

import (
	"context"

	"github.com/tonhe/funnel/internal/funnel"
)

// StaticSource serves a fixed funnel, used for demos and offline rendering.
type StaticSource struct {
	Funnel funnel.Funnel
}

// SampleFunnel returns the built-in demonstration funnel.
func SampleFunnel() funnel.Funnel {
	return funnel.Funnel{
		{Label: "Visit Website", Value: 150928},
		{Label: "Add to Cart", Value: 85420},
		{Label: "Purchase", Value: 12350},
	}
}

// NewSampleSource returns a StaticSource serving SampleFunnel.
func NewSampleSource() *StaticSource {
	return &StaticSource{Funnel: SampleFunnel()}
}

// FetchSteps returns a copy of the configured funnel. The interval is
// validated but otherwise ignored.
func (s *StaticSource) FetchSteps(ctx context.Context, interval string) (funnel.Funnel, error) {
	if err := ValidateInterval(interval); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append(funnel.Funnel{}, s.Funnel...), nil
}
