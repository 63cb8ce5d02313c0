package similarity

import "fmt"

// FuzzyStrategy selects the fuzzy combination formula at construction.
type FuzzyStrategy string

const (
	// FuzzyFull: 0.2*ratio + 0.2*partial + 0.3*token_sort + 0.3*token_set.
	FuzzyFull FuzzyStrategy = "full"
	// FuzzySimplified drops the partial ratio: 0.4*ratio + 0.3*token_sort + 0.3*token_set.
	FuzzySimplified FuzzyStrategy = "simplified"
)

// ParseFuzzyStrategy accepts "full" or "simplified"; "" means full.
func ParseFuzzyStrategy(s string) (FuzzyStrategy, error) {
	switch FuzzyStrategy(s) {
	case "", FuzzyFull:
		return FuzzyFull, nil
	case FuzzySimplified:
		return FuzzySimplified, nil
	}
	return "", fmt.Errorf("unknown fuzzy strategy %q", s)
}

// FuzzyScorer is a weighted combination of whole-string, substring and
// token-reordering ratios.
type FuzzyScorer struct {
	strategy FuzzyStrategy
}

func NewFuzzy(strategy FuzzyStrategy) (*FuzzyScorer, error) {
	st, err := ParseFuzzyStrategy(string(strategy))
	if err != nil {
		return nil, err
	}
	return &FuzzyScorer{strategy: st}, nil
}

func (s *FuzzyScorer) Strategy() FuzzyStrategy { return s.strategy }

func (*FuzzyScorer) Name() string { return Fuzzy.DisplayName() }

func (s *FuzzyScorer) Description() string {
	if s.strategy == FuzzySimplified {
		return "Simplified fuzzy combination without partial matching: " +
			"0.4*ratio + 0.3*token_sort + 0.3*token_set."
	}
	return "Combines ratio, partial (best substring) ratio, token sort and token set ratios: " +
		"0.2*ratio + 0.2*partial + 0.3*token_sort + 0.3*token_set."
}

func (s *FuzzyScorer) Calculate(a, b string) float64 {
	na, nb, ok := normalizePair(a, b)
	if !ok {
		return 0
	}
	ratio := sequenceRatio(na, nb)
	sortRatio := tokenSortRatio(na, nb)

	if s.strategy == FuzzySimplified {
		return clamp01(0.4*ratio + 0.3*sortRatio + 0.3*simpleTokenSetRatio(na, nb))
	}
	return clamp01(0.2*ratio + 0.2*partialRatio(na, nb) + 0.3*sortRatio + 0.3*tokenSetRatio(na, nb))
}
