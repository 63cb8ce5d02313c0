package similarity

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// LevenshteinScorer converts unit-cost edit distance into a similarity:
// 1 - distance/max(len_a, len_b), lengths in runes.
type LevenshteinScorer struct{}

func NewLevenshtein() *LevenshteinScorer { return &LevenshteinScorer{} }

func (*LevenshteinScorer) Name() string { return Levenshtein.DisplayName() }

func (*LevenshteinScorer) Description() string {
	return "Edit distance (insertions, deletions, substitutions) normalized by the longer " +
		"address. Good at catching typos and small spelling differences."
}

func (*LevenshteinScorer) Calculate(a, b string) float64 {
	na, nb, ok := normalizePair(a, b)
	if !ok {
		return 0
	}
	maxLen := max(utf8.RuneCountInString(na), utf8.RuneCountInString(nb))
	if maxLen == 0 {
		return 1
	}
	return clamp01(1 - float64(levenshtein.ComputeDistance(na, nb))/float64(maxLen))
}
