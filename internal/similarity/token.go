package similarity

import (
	"unicode/utf8"

	"address-similarity/pkg/utils"
)

const (
	tokenJaccardWeight = 0.6
	tokenSortWeight    = 0.4
)

// TokenBasedScorer blends token-set Jaccard with a sorted-token sequence ratio.
// Single-character tokens are dropped as noise.
type TokenBasedScorer struct{}

func NewTokenBased() *TokenBasedScorer { return &TokenBasedScorer{} }

func (*TokenBasedScorer) Name() string { return TokenBased.DisplayName() }

func (*TokenBasedScorer) Description() string {
	return "Splits addresses into tokens and combines Jaccard similarity (intersection over union) " +
		"with a sorted-token ratio: 0.6*jaccard + 0.4*token_sort. Robust to word reordering."
}

func tokenSet(normalized string) utils.StringSet {
	return utils.NewStringSet(utils.AlnumTokens(normalized), func(t string) bool {
		return utf8.RuneCountInString(t) > 1
	})
}

func (*TokenBasedScorer) Calculate(a, b string) float64 {
	na, nb, ok := normalizePair(a, b)
	if !ok {
		return 0
	}
	ta, tb := tokenSet(na), tokenSet(nb)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	jaccard := utils.Jaccard(ta, tb)
	sortRatio := sequenceRatio(sortedJoin(ta), sortedJoin(tb))
	return clamp01(tokenJaccardWeight*jaccard + tokenSortWeight*sortRatio)
}
