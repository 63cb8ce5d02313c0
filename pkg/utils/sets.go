package utils

// StringSet is an unordered set of tokens.
type StringSet map[string]struct{}

// NewStringSet builds a set from tokens, keeping those accepted by keep.
// A nil keep accepts everything.
func NewStringSet(tokens []string, keep func(string) bool) StringSet {
	s := make(StringSet, len(tokens))
	for _, t := range tokens {
		if keep == nil || keep(t) {
			s[t] = struct{}{}
		}
	}
	return s
}

// Jaccard returns |a∩b| / |a∪b|, or 0 when either set is empty.
func Jaccard(a, b StringSet) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	inter := 0
	for t := range small {
		if _, ok := large[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// Intersection returns the tokens present in both sets.
func Intersection(a, b StringSet) StringSet {
	out := make(StringSet)
	for t := range a {
		if _, ok := b[t]; ok {
			out[t] = struct{}{}
		}
	}
	return out
}

// Difference returns the tokens of a that are not in b.
func Difference(a, b StringSet) StringSet {
	out := make(StringSet)
	for t := range a {
		if _, ok := b[t]; !ok {
			out[t] = struct{}{}
		}
	}
	return out
}
