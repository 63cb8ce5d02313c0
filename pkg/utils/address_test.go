package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"empty", "", ""},
		{"whitespace only", " \t\n ", ""},
		{"trim and lower", "  123 MAIN St  ", "123 main st"},
		{"collapse runs", "Rua\t\tAugusta,   100", "rua augusta, 100"},
		{"unicode", "  Straße   ZWEI ", "straße zwei"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTokenizers(t *testing.T) {
	n := Normalize("12-B Rue de l'Église, Apt 4")

	assert.Equal(t, []string{"12", "b", "rue", "de", "l", "église", "apt", "4"}, AlnumTokens(n))
	assert.Equal(t, []string{"b", "rue", "de", "l", "glise", "apt"}, AlphaTokens(n))
	assert.Equal(t, []string{"12", "4"}, NumericTokens(n))
	assert.Equal(t, []string{"12-b", "rue", "de", "l'église,", "apt", "4"}, WhitespaceTokens(n))
}

func TestJaccard(t *testing.T) {
	a := NewStringSet([]string{"main", "st", "123"}, nil)
	b := NewStringSet([]string{"main", "street", "123"}, nil)

	assert.InDelta(t, 0.5, Jaccard(a, b), 1e-12)
	assert.InDelta(t, 1.0, Jaccard(a, a), 1e-12)
	assert.Equal(t, 0.0, Jaccard(a, StringSet{}))
	assert.Equal(t, 0.0, Jaccard(nil, b))

	long := NewStringSet([]string{"a", "bb", "ccc"}, func(s string) bool { return len(s) > 1 })
	assert.Len(t, long, 2)
	assert.Len(t, Intersection(a, b), 2)
	assert.Contains(t, Difference(a, b), "st")
}
