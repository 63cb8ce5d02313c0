package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "address-similarity/pkg/errors"
)

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in   string
		want Method
	}{
		{"baseline", Baseline},
		{" Levenshtein ", Levenshtein},
		{"JARO_WINKLER", JaroWinkler},
		{"token_based", TokenBased},
		{"phonetic", Phonetic},
		{"fuzzy", Fuzzy},
		{"external_oracle", ExternalOracle},
		{"gemini", ExternalOracle},
	}
	for _, tt := range tests {
		got, err := ParseMethod(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseMethod("soundex")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrUnknownMethod))
	assert.Contains(t, err.Error(), "jaro_winkler")
}

func TestMethodsOrderAndNames(t *testing.T) {
	ms := Methods()
	require.Len(t, ms, 7)
	assert.Equal(t, Baseline, ms[0])
	assert.Equal(t, ExternalOracle, ms[6])
	for _, m := range ms {
		assert.True(t, m.Valid())
		assert.NotEqual(t, string(m), m.DisplayName())
	}
	assert.Equal(t, "Jaro-Winkler", JaroWinkler.DisplayName())

	// callers can't mutate the package order
	ms[0] = Fuzzy
	assert.Equal(t, Baseline, Methods()[0])
}

func TestParseMethods(t *testing.T) {
	all, err := ParseMethods("")
	require.NoError(t, err)
	assert.Len(t, all, 7)

	some, err := ParseMethods("fuzzy, levenshtein,,fuzzy")
	require.NoError(t, err)
	assert.Equal(t, []Method{Fuzzy, Levenshtein}, some)

	_, err = ParseMethods("fuzzy,nope")
	assert.True(t, errs.Is(err, errs.ErrUnknownMethod))
}
