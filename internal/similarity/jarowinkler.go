package similarity

import (
	"fmt"
	"math"
)

const (
	DefaultPrefixWeight = 0.1
	// MaxPrefixWeight keeps jaro + 4*w*(1-jaro) within [0,1].
	MaxPrefixWeight = 0.25
	maxPrefixLen    = 4
)

// JaroWinklerScorer is Jaro similarity with the Winkler shared-prefix bonus.
type JaroWinklerScorer struct {
	prefixWeight float64
}

// NewJaroWinkler returns a scorer using prefix weight w.
func NewJaroWinkler(w float64) (*JaroWinklerScorer, error) {
	if math.IsNaN(w) || w < 0 || w > MaxPrefixWeight {
		return nil, fmt.Errorf("jaro-winkler prefix weight %v outside [0, %v]", w, MaxPrefixWeight)
	}
	return &JaroWinklerScorer{prefixWeight: w}, nil
}

func (s *JaroWinklerScorer) PrefixWeight() float64 { return s.prefixWeight }

func (*JaroWinklerScorer) Name() string { return JaroWinkler.DisplayName() }

func (s *JaroWinklerScorer) Description() string {
	return fmt.Sprintf("Jaro similarity with a bonus for a shared prefix of up to %d characters "+
		"(prefix weight %.2f). Favors addresses that start the same way.", maxPrefixLen, s.prefixWeight)
}

func (s *JaroWinklerScorer) Calculate(a, b string) float64 {
	na, nb, ok := normalizePair(a, b)
	if !ok {
		return 0
	}
	na, nb = canonical(na, nb)
	ra, rb := []rune(na), []rune(nb)

	jaro := Jaro(ra, rb)

	prefix := 0
	for prefix < min(len(ra), len(rb), maxPrefixLen) && ra[prefix] == rb[prefix] {
		prefix++
	}
	return clamp01(jaro + float64(prefix)*s.prefixWeight*(1-jaro))
}

// Jaro is the classic Jaro similarity of two rune slices.
func Jaro(a, b []rune) float64 {
	if string(a) == string(b) {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	window := max(len(a), len(b))/2 - 1
	if window < 0 {
		window = 0
	}

	matchedA := make([]bool, len(a))
	matchedB := make([]bool, len(b))
	matches := 0
	for i := range a {
		lo := max(0, i-window)
		hi := min(len(b), i+window+1)
		for j := lo; j < hi; j++ {
			if matchedB[j] || a[i] != b[j] {
				continue
			}
			matchedA[i], matchedB[j] = true, true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0
	}

	half := 0
	k := 0
	for i := range a {
		if !matchedA[i] {
			continue
		}
		for !matchedB[k] {
			k++
		}
		if a[i] != b[k] {
			half++
		}
		k++
	}
	t := half / 2

	m := float64(matches)
	return (m/float64(len(a)) + m/float64(len(b)) + (m-float64(t))/m) / 3
}
