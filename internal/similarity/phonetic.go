package similarity

import (
	"strings"

	"address-similarity/pkg/utils"
)

const (
	phoneticWeight = 0.7
	numericWeight  = 0.3
	soundexLen     = 4
)

var soundexCodes = map[byte]byte{
	'B': '1', 'F': '1', 'P': '1', 'V': '1',
	'C': '2', 'G': '2', 'J': '2', 'K': '2', 'Q': '2', 'S': '2', 'X': '2', 'Z': '2',
	'D': '3', 'T': '3',
	'L': '4',
	'M': '5', 'N': '5',
	'R': '6',
}

// Soundex encodes an ASCII word as a letter followed by three digits.
// Vowels, H, W and Y are skipped without resetting the previous code, so
// equal codes around them collapse. Non-letters are ignored.
func Soundex(word string) string {
	w := strings.ToUpper(word)
	var first byte
	i := 0
	for ; i < len(w); i++ {
		if w[i] >= 'A' && w[i] <= 'Z' {
			first = w[i]
			break
		}
	}
	if first == 0 {
		return ""
	}

	code := make([]byte, 1, soundexLen)
	code[0] = first
	prev := soundexCodes[first]
	for _, c := range []byte(w[i+1:]) {
		if len(code) == soundexLen {
			break
		}
		d, ok := soundexCodes[c]
		if ok && d != prev {
			code = append(code, d)
			prev = d
		}
	}
	for len(code) < soundexLen {
		code = append(code, '0')
	}
	return string(code)
}

// PhoneticScorer compares Soundex codes of the words of each address and
// blends in exact matching of numeric tokens (house numbers, postcodes).
type PhoneticScorer struct{}

func NewPhonetic() *PhoneticScorer { return &PhoneticScorer{} }

func (*PhoneticScorer) Name() string { return Phonetic.DisplayName() }

func (*PhoneticScorer) Description() string {
	return "Compares Soundex codes of words longer than two letters (Jaccard over codes), blended " +
		"0.7/0.3 with exact numeric-token overlap when both sides have numbers. Tolerates spelling drift."
}

func soundexSet(normalized string) utils.StringSet {
	set := make(utils.StringSet)
	for _, tok := range utils.AlphaTokens(normalized) {
		if len(tok) > 2 {
			set[Soundex(tok)] = struct{}{}
		}
	}
	return set
}

func (*PhoneticScorer) Calculate(a, b string) float64 {
	na, nb, ok := normalizePair(a, b)
	if !ok {
		return 0
	}
	ca, cb := soundexSet(na), soundexSet(nb)
	if len(ca) == 0 || len(cb) == 0 {
		return 0
	}
	score := utils.Jaccard(ca, cb)

	numA := utils.NewStringSet(utils.NumericTokens(na), nil)
	numB := utils.NewStringSet(utils.NumericTokens(nb), nil)
	if len(numA) > 0 && len(numB) > 0 {
		score = phoneticWeight*score + numericWeight*utils.Jaccard(numA, numB)
	}
	return clamp01(score)
}
