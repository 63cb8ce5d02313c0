package similarity

import (
	"context"
	"fmt"
	"math"
	"strings"

	"address-similarity/internal/constants"
	"address-similarity/pkg/logging"
)

// Oracle asks an external service how likely two addresses are the same place.
// Implementations return a value in [0,1] or an error.
type Oracle interface {
	Compare(ctx context.Context, a, b string) (float64, error)
}

// ExternalOracleScorer delegates to an Oracle. It never fails: when no oracle
// is configured, or the oracle errors, panics or answers out of range, the
// neutral score is returned instead.
type ExternalOracleScorer struct {
	oracle Oracle
	log    *logging.ComponentLogger
}

// NewExternalOracle wraps o; a nil o yields an unavailable scorer.
func NewExternalOracle(o Oracle, log *logging.Logger) *ExternalOracleScorer {
	return &ExternalOracleScorer{oracle: o, log: log.WithComponent("oracle_scorer")}
}

// Available reports whether an oracle client was configured.
func (s *ExternalOracleScorer) Available() bool { return s.oracle != nil }

// Oracle returns the wrapped client, nil when unavailable.
func (s *ExternalOracleScorer) Oracle() Oracle { return s.oracle }

func (*ExternalOracleScorer) Name() string { return ExternalOracle.DisplayName() }

func (s *ExternalOracleScorer) Description() string {
	d := "Asks a language model to rate whether both addresses refer to the same location, " +
		"regardless of language or formatting."
	if !s.Available() {
		d += fmt.Sprintf(" Unavailable: no credentials configured, always returns %.1f.", constants.NeutralOracleScore)
	}
	return d
}

func (s *ExternalOracleScorer) Calculate(a, b string) float64 {
	return s.CalculateContext(context.Background(), a, b)
}

func (s *ExternalOracleScorer) CalculateContext(ctx context.Context, a, b string) (score float64) {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 0
	}
	if s.oracle == nil {
		return constants.NeutralOracleScore
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("oracle panicked", fmt.Errorf("%v", r))
			score = constants.NeutralOracleScore
		}
	}()

	v, err := s.oracle.Compare(ctx, a, b)
	if err != nil {
		s.log.Warn("oracle call failed, using neutral score", logging.Error(err))
		return constants.NeutralOracleScore
	}
	if math.IsNaN(v) || v < 0 || v > 1 {
		s.log.Warn("oracle score out of range, using neutral score", logging.Float64("score", v))
		return constants.NeutralOracleScore
	}
	return clamp01(v)
}
