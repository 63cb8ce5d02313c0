package oracle

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	numberRe = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	fenceRe  = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")
)

// ParseScore extracts the similarity score from a model reply. It accepts a
// bare number, a {"score": x} object, or falls back to the first number in
// the text. The result must be a finite value in [0,1].
func ParseScore(reply string) (float64, error) {
	text := strings.TrimSpace(reply)
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}
	if text == "" {
		return 0, fmt.Errorf("empty reply")
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		var parsed struct {
			Score *float64 `json:"score"`
		}
		if jerr := json.Unmarshal([]byte(text), &parsed); jerr == nil && parsed.Score != nil {
			v, err = *parsed.Score, nil
		}
	}
	if err != nil {
		m := numberRe.FindString(text)
		if m == "" {
			return 0, fmt.Errorf("no score in reply %q", truncate(text, 80))
		}
		if v, err = strconv.ParseFloat(m, 64); err != nil {
			return 0, fmt.Errorf("bad score %q: %w", m, err)
		}
	}

	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 1 {
		return 0, fmt.Errorf("score %v outside [0,1]", v)
	}
	return v, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
