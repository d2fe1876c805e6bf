package scorer

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeText performs Unicode normalization and trims whitespace.
func NormalizeText(text string) string {
	normed := norm.NFKC.String(text)
	normed = strings.TrimSpace(normed)
	// Collapse internal control characters except newlines.
	normed = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, normed)
	return normed
}

// FoldCase returns the Unicode case-folded form of s used for keyword matching.
// A Caser is stateful, so one is built per call.
func FoldCase(s string) string {
	return cases.Fold().String(s)
}

// NewTranscript derives the trimmed text, its case-folded form and its word count.
func NewTranscript(text string) Transcript {
	trimmed := strings.TrimSpace(text)
	return Transcript{
		Normalized: trimmed,
		Lower:      FoldCase(trimmed),
		WordCount:  len(strings.Fields(trimmed)),
	}
}
