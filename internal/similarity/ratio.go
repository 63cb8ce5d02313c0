package similarity

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"address-similarity/pkg/utils"
)

// runes splits s into one-rune strings, the element type difflib matches on.
func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// canonical orders a pair so order-sensitive matchers give symmetric results.
func canonical(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// sequenceRatio is difflib's SequenceMatcher ratio (2*M/T) over runes.
// Two empty strings have ratio 1; one empty string has ratio 0.
func sequenceRatio(a, b string) float64 {
	a, b = canonical(a, b)
	return difflib.NewMatcher(runes(a), runes(b)).Ratio()
}

// partialRatio is the best sequenceRatio of the shorter string against
// windows of the longer one, anchored on each matching block.
func partialRatio(a, b string) float64 {
	shorter, longer := runes(a), runes(b)
	if len(shorter) > len(longer) || (len(shorter) == len(longer) && b < a) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == 0 {
		if len(longer) == 0 {
			return 1
		}
		return 0
	}

	best := 0.0
	for _, block := range difflib.NewMatcher(shorter, longer).GetMatchingBlocks() {
		start := block.B - block.A
		if start < 0 {
			start = 0
		}
		end := start + len(shorter)
		if end > len(longer) {
			end = len(longer)
		}
		r := difflib.NewMatcher(shorter, longer[start:end]).Ratio()
		if r > 0.995 {
			return 1
		}
		if r > best {
			best = r
		}
	}
	return best
}

func sortedJoin(set utils.StringSet) string {
	toks := make([]string, 0, len(set))
	for t := range set {
		toks = append(toks, t)
	}
	sort.Strings(toks)
	return strings.Join(toks, " ")
}

// tokenSortRatio compares the whitespace tokens of each side after sorting them.
func tokenSortRatio(a, b string) float64 {
	ta, tb := utils.WhitespaceTokens(a), utils.WhitespaceTokens(b)
	sort.Strings(ta)
	sort.Strings(tb)
	return sequenceRatio(strings.Join(ta, " "), strings.Join(tb, " "))
}

// tokenSplit partitions the token sets of a and b into shared and unshared parts,
// each rendered sorted and space-joined.
func tokenSplit(a, b string) (shared, onlyA, onlyB string, ok bool) {
	sa := utils.NewStringSet(utils.WhitespaceTokens(a), nil)
	sb := utils.NewStringSet(utils.WhitespaceTokens(b), nil)
	if len(sa) == 0 || len(sb) == 0 {
		return "", "", "", false
	}
	return sortedJoin(utils.Intersection(sa, sb)),
		sortedJoin(utils.Difference(sa, sb)),
		sortedJoin(utils.Difference(sb, sa)), true
}

func joinNonEmpty(parts ...string) string {
	return strings.TrimSpace(strings.Join(parts, " "))
}

// tokenSetRatio takes the best of comparing the shared tokens against each
// side's recombined tokens, and the two recombinations against each other.
func tokenSetRatio(a, b string) float64 {
	shared, onlyA, onlyB, ok := tokenSplit(a, b)
	if !ok {
		return 0
	}
	combinedA := joinNonEmpty(shared, onlyA)
	combinedB := joinNonEmpty(shared, onlyB)

	best := sequenceRatio(combinedA, combinedB)
	if shared != "" {
		best = max(best, sequenceRatio(shared, combinedA), sequenceRatio(shared, combinedB))
	}
	return best
}

// simpleTokenSetRatio compares only the two recombinations.
func simpleTokenSetRatio(a, b string) float64 {
	shared, onlyA, onlyB, ok := tokenSplit(a, b)
	if !ok {
		return 0
	}
	return sequenceRatio(joinNonEmpty(shared, onlyA), joinNonEmpty(shared, onlyB))
}
