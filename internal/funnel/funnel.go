package funnel

import "math"

// Step is one stage of a funnel: a display label and the number of entities
// that reached it.
type Step struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Funnel is an ordered sequence of steps. The first step is the entry step.
type Funnel []Step

// ReferencePolicy selects the denominator used for percentage-of-whole.
type ReferencePolicy int

const (
	// ReferenceMax divides by the largest value across all steps.
	ReferenceMax ReferencePolicy = iota
	// ReferenceFirst divides by the entry step's value.
	ReferenceFirst
)

func (p ReferencePolicy) String() string {
	switch p {
	case ReferenceFirst:
		return "first"
	default:
		return "max"
	}
}

// Derived holds the per-step metrics computed for a single render.
// Rates are expressed as percentages (0-100).
type Derived struct {
	Step
	Index          int
	PercentOfMax   float64
	CompletionRate float64
	DropCount      float64
	DropRate       float64
}

// IsEntry reports whether the step is the first step of its funnel.
func (d Derived) IsEntry() bool {
	return d.Index == 0
}

// Values returns the step values in funnel order.
func (f Funnel) Values() []float64 {
	values := make([]float64, len(f))
	for i, s := range f {
		values[i] = s.Value
	}
	return values
}

// Reference returns the denominator for the given policy. It returns 0 for an
// empty funnel.
func (f Funnel) Reference(policy ReferencePolicy) float64 {
	if len(f) == 0 {
		return 0
	}
	if policy == ReferenceFirst {
		return sanitize(f[0].Value)
	}
	ref := 0.0
	for _, s := range f {
		ref = math.Max(ref, sanitize(s.Value))
	}
	return ref
}

// Derive computes the derived metrics for every step. A zero reference yields
// 0 for every PercentOfMax. A step after an empty one counts as fully
// completed with nothing dropped, so no rate is ever NaN.
func Derive(f Funnel, policy ReferencePolicy) []Derived {
	ref := f.Reference(policy)
	out := make([]Derived, len(f))
	for i, s := range f {
		value := sanitize(s.Value)
		d := Derived{Step: s, Index: i}
		d.PercentOfMax = Percent(value, ref)

		if i == 0 {
			d.CompletionRate = 100
			out[i] = d
			continue
		}

		prev := sanitize(f[i-1].Value)
		d.DropCount = prev - value
		if prev <= 0 {
			d.CompletionRate = 100
			out[i] = d
			continue
		}
		d.CompletionRate = Percent(value, prev)
		d.DropRate = Percent(d.DropCount, prev)
		out[i] = d
	}
	return out
}

// Overall returns the conversion from the entry step to the last step as a
// percentage.
func Overall(f Funnel) float64 {
	if len(f) == 0 {
		return 0
	}
	return Percent(sanitize(f[len(f)-1].Value), sanitize(f[0].Value))
}

// Percent returns part/whole*100, or 0 when whole is not positive.
func Percent(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	p := part / whole * 100
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	return p
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
