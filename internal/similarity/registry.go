package similarity

import (
	"errors"
	"fmt"
	"sync"

	"address-similarity/pkg/logging"
)

// OracleFactory builds the oracle client on first use of the oracle method.
// Returning an error (typically missing credentials) leaves the method
// available but degraded to the neutral score.
type OracleFactory func() (Oracle, error)

// MethodInfo describes a method for listings.
type MethodInfo struct {
	ID          Method `json:"id"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
}

// Option configures a Registry.
type Option func(*Registry)

// WithPrefixWeight sets the Jaro-Winkler prefix weight.
func WithPrefixWeight(w float64) Option {
	return func(r *Registry) { r.prefixWeight = w }
}

// WithFuzzyStrategy selects the fuzzy combination formula.
func WithFuzzyStrategy(s FuzzyStrategy) Option {
	return func(r *Registry) { r.fuzzyStrategy = s }
}

// WithOracleFactory supplies the oracle client constructor.
func WithOracleFactory(f OracleFactory) Option {
	return func(r *Registry) { r.oracleFactory = f }
}

// WithLogger sets the logger handed to scorers.
func WithLogger(l *logging.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

type slot struct {
	once   sync.Once
	scorer Scorer
	err    error
}

// Registry maps method identifiers to scorers, constructing each at most once.
type Registry struct {
	prefixWeight  float64
	fuzzyStrategy FuzzyStrategy
	oracleFactory OracleFactory
	logger        *logging.Logger

	slots map[Method]*slot
}

// NewRegistry validates the options eagerly so a bad configuration fails at
// startup rather than on first use.
func NewRegistry(opts ...Option) (*Registry, error) {
	r := &Registry{
		prefixWeight:  DefaultPrefixWeight,
		fuzzyStrategy: FuzzyFull,
		slots:         make(map[Method]*slot, len(methodOrder)),
	}
	for _, opt := range opts {
		opt(r)
	}
	if _, err := NewJaroWinkler(r.prefixWeight); err != nil {
		return nil, err
	}
	if _, err := ParseFuzzyStrategy(string(r.fuzzyStrategy)); err != nil {
		return nil, err
	}
	for _, m := range methodOrder {
		r.slots[m] = &slot{}
	}
	return r, nil
}

// Get resolves id (see ParseMethod) to its scorer.
func (r *Registry) Get(id string) (Scorer, error) {
	m, err := ParseMethod(id)
	if err != nil {
		return nil, err
	}
	return r.GetMethod(m)
}

// GetMethod returns the scorer for m, constructing it on first use.
func (r *Registry) GetMethod(m Method) (Scorer, error) {
	s, ok := r.slots[m]
	if !ok {
		_, err := ParseMethod(string(m))
		return nil, err
	}
	s.once.Do(func() {
		s.scorer, s.err = r.build(m)
	})
	return s.scorer, s.err
}

func (r *Registry) build(m Method) (Scorer, error) {
	switch m {
	case Baseline:
		return NewBaseline(), nil
	case Levenshtein:
		return NewLevenshtein(), nil
	case JaroWinkler:
		return NewJaroWinkler(r.prefixWeight)
	case TokenBased:
		return NewTokenBased(), nil
	case Phonetic:
		return NewPhonetic(), nil
	case Fuzzy:
		return NewFuzzy(r.fuzzyStrategy)
	case ExternalOracle:
		return NewExternalOracle(r.initOracle(), r.logger), nil
	}
	return nil, fmt.Errorf("no constructor for method %q", m)
}

func (r *Registry) initOracle() Oracle {
	log := r.logger.WithComponent("registry")
	if r.oracleFactory == nil {
		log.Info("external oracle not configured, method degraded to neutral score")
		return nil
	}
	o, err := r.oracleFactory()
	if err != nil {
		log.Warn("external oracle unavailable, method degraded to neutral score", logging.Error(err))
		return nil
	}
	if o == nil {
		return nil
	}
	log.Info("external oracle initialized")
	return o
}

// ListAll returns one scorer per method.
func (r *Registry) ListAll() (map[Method]Scorer, error) {
	out := make(map[Method]Scorer, len(methodOrder))
	var errs []error
	for _, m := range methodOrder {
		s, err := r.GetMethod(m)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", m, err))
			continue
		}
		out[m] = s
	}
	return out, errors.Join(errs...)
}

// DescribeAll lists every method in enumeration order.
func (r *Registry) DescribeAll() ([]MethodInfo, error) {
	out := make([]MethodInfo, 0, len(methodOrder))
	for _, m := range methodOrder {
		s, err := r.GetMethod(m)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m, err)
		}
		out = append(out, MethodInfo{ID: m, DisplayName: m.DisplayName(), Description: s.Description()})
	}
	return out, nil
}
