package similarity

import (
	"context"

	"address-similarity/pkg/logging"
	"address-similarity/pkg/metrics"
)

// Result is a score together with the method that produced it.
type Result struct {
	Score       float64 `json:"score"`
	Method      Method  `json:"method"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
}

// Service is the single entry point for scoring address pairs.
type Service struct {
	registry      *Registry
	defaultMethod Method
	defaultScorer Scorer
	log           *logging.ComponentLogger
	metrics       *metrics.Registry
}

// NewService resolves the default method once; it is fixed for the
// lifetime of the Service. An empty defaultMethod means DefaultMethod.
func NewService(reg *Registry, defaultMethod string, log *logging.Logger) (*Service, error) {
	m := DefaultMethod
	if defaultMethod != "" {
		var err error
		if m, err = ParseMethod(defaultMethod); err != nil {
			return nil, err
		}
	}
	s, err := reg.GetMethod(m)
	if err != nil {
		return nil, err
	}
	return &Service{
		registry:      reg,
		defaultMethod: m,
		defaultScorer: s,
		log:           log.WithComponent("similarity"),
		metrics:       metrics.Default,
	}, nil
}

// DefaultMethod returns the method used when Score gets no method.
func (s *Service) DefaultMethod() Method { return s.defaultMethod }

// Score compares a and b with method, or with the default method when
// method is "". An unknown method is an error even for empty inputs; an
// empty a or b otherwise scores 0 without consulting the registry.
func (s *Service) Score(ctx context.Context, a, b, method string) (Result, error) {
	m := s.defaultMethod
	if method != "" {
		var err error
		if m, err = ParseMethod(method); err != nil {
			return Result{}, err
		}
	}

	if a == "" || b == "" {
		return Result{Score: 0, Method: m, Name: m.DisplayName()}, nil
	}

	scorer := s.defaultScorer
	if m != s.defaultMethod {
		var err error
		if scorer, err = s.registry.GetMethod(m); err != nil {
			return Result{}, err
		}
	}

	timer := s.metrics.Histogram("similarity_"+string(m)+"_latency_ms", "Scoring latency for "+m.DisplayName()+" (ms)", metrics.LatencyBucketsMs).Start()
	score := Calculate(ctx, scorer, a, b)
	elapsed := timer.Observe()
	s.metrics.Counter("similarity_"+string(m)+"_calls_total", "Scoring calls for "+m.DisplayName()).Inc(1)
	s.log.Debug("scored pair",
		logging.String("method", string(m)),
		logging.Float64("score", score),
		logging.Duration("elapsed", elapsed))

	return Result{Score: score, Method: m, Name: scorer.Name(), Description: scorer.Description()}, nil
}

// Methods describes every available method.
func (s *Service) Methods() ([]MethodInfo, error) {
	return s.registry.DescribeAll()
}
