package similarity

import (
	"strings"

	errs "address-similarity/pkg/errors"
)

// Method identifies one of the closed set of similarity algorithms.
type Method string

const (
	Baseline       Method = "baseline"
	Levenshtein    Method = "levenshtein"
	JaroWinkler    Method = "jaro_winkler"
	TokenBased     Method = "token_based"
	Phonetic       Method = "phonetic"
	Fuzzy          Method = "fuzzy"
	ExternalOracle Method = "external_oracle"
)

// DefaultMethod has the lowest benchmarked mean absolute error.
const DefaultMethod = JaroWinkler

var methodOrder = []Method{
	Baseline, Levenshtein, JaroWinkler, TokenBased, Phonetic, Fuzzy, ExternalOracle,
}

var displayNames = map[Method]string{
	Baseline:       "Baseline (SequenceMatcher)",
	Levenshtein:    "Levenshtein Distance",
	JaroWinkler:    "Jaro-Winkler",
	TokenBased:     "Token-Based (Jaccard)",
	Phonetic:       "Phonetic (Soundex)",
	Fuzzy:          "Fuzzy Combined",
	ExternalOracle: "External Oracle (LLM)",
}

// older clients still send the oracle's former name
var aliases = map[string]Method{
	"gemini": ExternalOracle,
}

// Methods returns every method in enumeration order.
func Methods() []Method {
	return append([]Method(nil), methodOrder...)
}

// DisplayName returns the human-readable name of m.
func (m Method) DisplayName() string {
	if n, ok := displayNames[m]; ok {
		return n
	}
	return string(m)
}

func (m Method) String() string { return string(m) }

// Valid reports whether m is part of the closed set.
func (m Method) Valid() bool {
	_, ok := displayNames[m]
	return ok
}

// Ordinal is m's position in enumeration order; unknown methods sort last.
func (m Method) Ordinal() int {
	for i, x := range methodOrder {
		if x == m {
			return i
		}
	}
	return len(methodOrder)
}

// ParseMethod resolves an identifier (case and surrounding space ignored).
func ParseMethod(id string) (Method, error) {
	key := strings.ToLower(strings.TrimSpace(id))
	if m := Method(key); m.Valid() {
		return m, nil
	}
	if m, ok := aliases[key]; ok {
		return m, nil
	}
	return "", errs.NewUnknownMethod(id, methodIDs())
}

// ParseMethods parses a comma-separated list; an empty list means all methods.
func ParseMethods(list string) ([]Method, error) {
	if strings.TrimSpace(list) == "" {
		return Methods(), nil
	}
	var out []Method
	seen := make(map[Method]bool)
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		m, err := ParseMethod(part)
		if err != nil {
			return nil, err
		}
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out, nil
}

func methodIDs() []string {
	ids := make([]string, len(methodOrder))
	for i, m := range methodOrder {
		ids[i] = string(m)
	}
	return ids
}
