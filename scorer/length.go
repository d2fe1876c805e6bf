package scorer

import (
	"math"
	"strconv"
	"strings"
)

// LengthFraction scores how well wordCount fits the accepted range. Missing or
// non-positive bounds impose no limit; with no limits the fraction is 1.
func LengthFraction(wordCount int, minWords, maxWords *int) float64 {
	lo := positiveBound(minWords)
	hi := positiveBound(maxWords)
	if lo > 0 && wordCount < lo {
		return math.Max(0, float64(wordCount)/float64(lo))
	}
	if hi > 0 && wordCount > hi {
		return math.Max(0, float64(hi)/float64(wordCount))
	}
	return 1
}

func positiveBound(b *int) int {
	if b == nil || *b <= 0 {
		return 0
	}
	return *b
}

// parseBound reads an optional word bound. Blank or non-numeric input yields nil.
func parseBound(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return &n
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	n := int(math.Trunc(f))
	return &n
}

// parseWeight reads a criterion weight, defaulting to 1 when blank or non-numeric.
func parseWeight(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1
	}
	w, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(w) || math.IsInf(w, 0) {
		return 1
	}
	return w
}
