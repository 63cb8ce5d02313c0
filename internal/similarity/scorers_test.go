package similarity

import (
	"context"
	"errors"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testutil "address-similarity/internal/testing"
)

func deterministicScorers(t *testing.T) map[string]Scorer {
	t.Helper()
	jw, err := NewJaroWinkler(DefaultPrefixWeight)
	require.NoError(t, err)
	full, err := NewFuzzy(FuzzyFull)
	require.NoError(t, err)
	simple, err := NewFuzzy(FuzzySimplified)
	require.NoError(t, err)
	return map[string]Scorer{
		"baseline":         NewBaseline(),
		"levenshtein":      NewLevenshtein(),
		"jaro_winkler":     jw,
		"token_based":      NewTokenBased(),
		"phonetic":         NewPhonetic(),
		"fuzzy_full":       full,
		"fuzzy_simplified": simple,
	}
}

func fakeAddresses(n int) []string {
	f := gofakeit.New(7)
	out := make([]string, n)
	for i := range out {
		a := f.Address()
		out[i] = a.Address
	}
	return out
}

func TestEmptyInputScoresZero(t *testing.T) {
	scorers := deterministicScorers(t)
	scorers["external_oracle"] = NewExternalOracle(&testutil.MockOracle{Score: 0.9}, nil)

	for name, s := range scorers {
		for _, x := range []string{"", "   ", "10 Downing Street, London"} {
			assert.Equal(t, 0.0, s.Calculate("", x), "%s(\"\", %q)", name, x)
			assert.Equal(t, 0.0, s.Calculate(x, ""), "%s(%q, \"\")", name, x)
		}
	}
}

func TestRangeAndSymmetry(t *testing.T) {
	addrs := fakeAddresses(60)
	addrs = append(addrs, "Straße des 17. Juni 135, Berlin", "東京都千代田区1-1", "x", "12 12 12")

	for name, s := range deterministicScorers(t) {
		for i := range addrs {
			for j := i; j < len(addrs); j += 7 {
				a, b := addrs[i], addrs[j]
				ab, ba := s.Calculate(a, b), s.Calculate(b, a)
				assert.GreaterOrEqual(t, ab, 0.0, name)
				assert.LessOrEqual(t, ab, 1.0, name)
				assert.InDelta(t, ab, ba, 1e-12, "%s not symmetric for %q / %q", name, a, b)
			}
		}
	}
}

func TestReflexivity(t *testing.T) {
	scorers := deterministicScorers(t)
	for _, a := range fakeAddresses(30) {
		variant := "  " + a + "\t"
		for name, s := range scorers {
			assert.InDelta(t, 1.0, s.Calculate(a, variant), 1e-9, "%s(%q)", name, a)
		}
	}

	// exact for the edit-distance scorers, whatever the case and spacing
	assert.Equal(t, 1.0, scorers["levenshtein"].Calculate("Main  ST", "main st"))
	assert.Equal(t, 1.0, scorers["jaro_winkler"].Calculate("Main  ST", "main st"))
	assert.Equal(t, 1.0, scorers["levenshtein"].Calculate("a", "A"))

	// token_based needs a token longer than one rune; phonetic needs a word longer than two letters
	assert.Equal(t, 0.0, scorers["token_based"].Calculate("a 1", "a 1"))
	assert.Equal(t, 0.0, scorers["phonetic"].Calculate("12 st", "12 st"))
}

func TestBaseline(t *testing.T) {
	s := NewBaseline()
	assert.InDelta(t, 0.75, s.Calculate("abcd", "bcde"), 1e-12)
	assert.Equal(t, 0.0, s.Calculate("abc", "xyz"))
	assert.Equal(t, 1.0, s.Calculate("Rua Augusta", "rua   augusta"))
}

func TestLevenshtein(t *testing.T) {
	s := NewLevenshtein()
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"classic", "kitten", "sitting", 1 - 3.0/7.0},
		{"runes not bytes", "straße", "strase", 1 - 1.0/6.0},
		{"diacritics", "Ångström 5", "angstrom 5", 1 - 2.0/10.0},
		{"case and spacing", "Rua  Augusta", "rua augusta", 1},
		{"disjoint", "abc", "xyz", 0},
		{"empty left", "", "sitting", 0},
		{"empty right", "kitten", "", 0},
		{"both empty", "", "", 0},
		{"whitespace only", "   ", "abc", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, s.Calculate(tt.a, tt.b), 1e-12)
			assert.InDelta(t, tt.want, s.Calculate(tt.b, tt.a), 1e-12)
		})
	}
	assert.InDelta(t, 0.5714, s.Calculate("kitten", "sitting"), 1e-4)
}

func TestJaroWinkler(t *testing.T) {
	s, err := NewJaroWinkler(DefaultPrefixWeight)
	require.NoError(t, err)

	tests := []struct {
		a, b string
		want float64
	}{
		{"MARTHA", "MARHTA", 0.9611},
		{"DWAYNE", "DUANE", 0.8400},
		{"DIXON", "DICKSONX", 0.8133},
		{"abc", "xyz", 0.0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, s.Calculate(tt.a, tt.b), 1e-4, "%s/%s", tt.a, tt.b)
	}

	assert.InDelta(t, 0.9444, Jaro([]rune("martha"), []rune("marhta")), 1e-4)

	noBonus, err := NewJaroWinkler(0)
	require.NoError(t, err)
	assert.InDelta(t, 0.9444, noBonus.Calculate("MARTHA", "MARHTA"), 1e-4)

	_, err = NewJaroWinkler(0.3)
	assert.Error(t, err)
	_, err = NewJaroWinkler(-0.1)
	assert.Error(t, err)

	edge, err := NewJaroWinkler(MaxPrefixWeight)
	require.NoError(t, err)
	assert.LessOrEqual(t, edge.Calculate("abcdx", "abcdy"), 1.0)
	assert.Contains(t, edge.Description(), "0.25")
}

func TestTokenBased(t *testing.T) {
	s := NewTokenBased()
	assert.InDelta(t, 1.0, s.Calculate("123 Main Street", "Main Street, 123"), 1e-12)
	assert.Equal(t, 0.0, s.Calculate("a b c", "a b c"), "single-character tokens are noise")

	// {main, st, 12} vs {main, street, 12}: jaccard 2/4
	got := s.Calculate("12 Main St", "12 Main Street")
	sortRatio := sequenceRatio("12 main st", "12 main street")
	assert.InDelta(t, 0.6*0.5+0.4*sortRatio, got, 1e-12)

	assert.InDelta(t, 1.0, s.Calculate("Straße 12", "straße 12"), 1e-12)
}

func TestSoundex(t *testing.T) {
	tests := map[string]string{
		"main":     "M000",
		"street":   "S363",
		"st":       "S300",
		"Robert":   "R163",
		"Rupert":   "R163",
		"Ashcraft": "A261",
		"Pfister":  "P236",
		"Tymczak":  "T520", // vowels don't separate equal codes
		"Honeyman": "H500",
		"paris":    "P620",
		"parijs":   "P620",
		"a":        "A000",
		"":         "",
		"123":      "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Soundex(in), in)
	}
}

func TestPhonetic(t *testing.T) {
	s := NewPhonetic()

	// codes {M000, S363} vs {M000} ("st" is too short), numeric {123} on both sides
	assert.InDelta(t, 0.7*0.5+0.3*1.0, s.Calculate("123 Main Street", "123 Main St"), 1e-12)
	assert.InDelta(t, 0.5, s.Calculate("Main Street", "Main St"), 1e-12)
	assert.InDelta(t, 0.7, s.Calculate("10 Rue de Paris", "12 Rue de Parijs"), 1e-12)
	assert.Equal(t, 0.0, s.Calculate("12 st", "12 st"))
}

func TestRatioHelpers(t *testing.T) {
	assert.Equal(t, 1.0, sequenceRatio("", ""))
	assert.Equal(t, 0.0, sequenceRatio("", "a"))
	assert.Equal(t, 1.0, partialRatio("york", "new york city"))
	assert.Equal(t, 1.0, partialRatio("new york city", "york"))
	assert.Equal(t, 1.0, tokenSortRatio("main street 12", "12 street main"))
	assert.Equal(t, 1.0, tokenSetRatio("main street 12", "12 main street apt 4"))
	assert.InDelta(t, 28.0/34.0, simpleTokenSetRatio("main street 12", "12 main street apt 4"), 1e-12)
	assert.Equal(t, 0.0, tokenSetRatio("", "x"))
}

func TestFuzzyStrategies(t *testing.T) {
	full, err := NewFuzzy(FuzzyFull)
	require.NoError(t, err)
	simple, err := NewFuzzy(FuzzySimplified)
	require.NoError(t, err)
	_, err = NewFuzzy("partial")
	assert.Error(t, err)

	assert.Contains(t, full.Description(), "0.2*partial")
	assert.NotContains(t, simple.Description(), "partial")

	a, b := "Main Street 12", "12 Main Street Apt 4"
	na, nb := "main street 12", "12 main street apt 4"
	wantFull := 0.2*sequenceRatio(na, nb) + 0.2*partialRatio(na, nb) + 0.3*tokenSortRatio(na, nb) + 0.3*1.0
	wantSimple := 0.4*sequenceRatio(na, nb) + 0.3*tokenSortRatio(na, nb) + 0.3*(28.0/34.0)
	assert.InDelta(t, wantFull, full.Calculate(a, b), 1e-12)
	assert.InDelta(t, wantSimple, simple.Calculate(a, b), 1e-12)

	assert.InDelta(t, 1.0, full.Calculate("Main St", "main st"), 1e-12)
	assert.InDelta(t, 1.0, simple.Calculate("Main St", "main st"), 1e-12)
}

func TestExternalOracleScorer(t *testing.T) {
	ctx := context.Background()

	unavailable := NewExternalOracle(nil, nil)
	assert.False(t, unavailable.Available())
	assert.Equal(t, 0.5, unavailable.Calculate("1 Infinite Loop", "One Apple Park Way"))
	assert.Equal(t, 0.5, unavailable.Calculate("x", "x"))
	assert.Equal(t, 0.0, unavailable.Calculate("", "x"))
	assert.Contains(t, unavailable.Description(), "Unavailable")

	tests := []struct {
		name   string
		oracle *testutil.MockOracle
		want   float64
	}{
		{"success", &testutil.MockOracle{Score: 0.8}, 0.8},
		{"zero", &testutil.MockOracle{Score: 0}, 0},
		{"error", &testutil.MockOracle{Err: errors.New("timeout")}, 0.5},
		{"out of range", &testutil.MockOracle{Score: 1.5}, 0.5},
		{"negative", &testutil.MockOracle{Score: -0.2}, 0.5},
		{"panic", &testutil.MockOracle{Panic: true}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewExternalOracle(tt.oracle, nil)
			assert.True(t, s.Available())
			assert.Equal(t, tt.want, s.CalculateContext(ctx, "Dam 1, Amsterdam", "Dam 1 Amsterdam"))
			assert.Equal(t, 1, tt.oracle.CallCount())
		})
	}

	m := &testutil.MockOracle{Score: 0.9}
	assert.Equal(t, 0.0, NewExternalOracle(m, nil).Calculate("  ", "x"))
	assert.Equal(t, 0, m.CallCount(), "empty input must not reach the oracle")
}
