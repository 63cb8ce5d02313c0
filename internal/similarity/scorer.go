// Package similarity scores how likely two free-text addresses denote the
// same location. Each algorithm is a Scorer returning a value in [0,1];
// a Registry constructs them once and a Service is the single entry point.
package similarity

import (
	"context"
	"math"

	"address-similarity/pkg/utils"
)

// Scorer is one similarity algorithm. Implementations are immutable after
// construction and safe for concurrent use.
type Scorer interface {
	Name() string
	Description() string
	Calculate(a, b string) float64
}

// ContextScorer is implemented by scorers that block on remote calls.
type ContextScorer interface {
	Scorer
	CalculateContext(ctx context.Context, a, b string) float64
}

// Calculate scores a and b with s, passing ctx through when s supports it.
func Calculate(ctx context.Context, s Scorer, a, b string) float64 {
	if cs, ok := s.(ContextScorer); ok {
		return cs.CalculateContext(ctx, a, b)
	}
	return s.Calculate(a, b)
}

// normalizePair normalizes both inputs; ok is false when either is empty.
func normalizePair(a, b string) (na, nb string, ok bool) {
	na, nb = utils.Normalize(a), utils.Normalize(b)
	return na, nb, na != "" && nb != ""
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
