package scorer

import "strings"

// ParseKeywords splits a comma or semicolon delimited keyword cell into
// trimmed, case-folded terms. Blanks and repeats are dropped; the first
// occurrence keeps its position.
func ParseKeywords(raw string) []string {
	tokens := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';'
	})
	out := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		kw := FoldCase(strings.TrimSpace(token))
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}

// MatchKeywords reports which keywords occur in lowerText and the matched
// fraction rounded to 3 decimals. Matching is by substring, so "cat" also
// matches "concatenate". A criterion without keywords earns 0, not 1.
func MatchKeywords(lowerText string, keywords []string) ([]string, float64) {
	found := make([]string, 0, len(keywords))
	if len(keywords) == 0 {
		return found, 0
	}
	for _, kw := range keywords {
		if strings.Contains(lowerText, FoldCase(kw)) {
			found = append(found, kw)
		}
	}
	return found, roundTo(float64(len(found))/float64(len(keywords)), 3)
}
