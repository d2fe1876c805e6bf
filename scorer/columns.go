package scorer

import (
	"strings"
	"sync"
)

// ColumnCandidates lists accepted header names for each rubric column. Matching
// is case-insensitive after trimming.
type ColumnCandidates map[string][]string

var (
	columnCandidatesMu  sync.RWMutex
	activeColumnOptions = defaultColumnCandidates()
)

func defaultColumnCandidates() ColumnCandidates {
	return ColumnCandidates{
		ColumnCriterionID: {"criterion_id", "id", "criterion id"},
		ColumnCriterion:   {"criterion", "name", "criterion name"},
		ColumnDescription: {"description", "desc"},
		ColumnKeywords:    {"keywords", "keyword"},
		ColumnWeight:      {"weight"},
		ColumnMinWords:    {"min_words", "min words", "minwords"},
		ColumnMaxWords:    {"max_words", "max words", "maxwords"},
	}
}

// DefaultColumnCandidates returns the built-in header aliases.
func DefaultColumnCandidates() ColumnCandidates {
	return defaultColumnCandidates().clone()
}

// SetColumnCandidates replaces the header aliases used by the rubric loader.
// Columns left out fall back to the built-in defaults.
func SetColumnCandidates(candidates ColumnCandidates) {
	columnCandidatesMu.Lock()
	defer columnCandidatesMu.Unlock()
	activeColumnOptions = candidates.withDefaults()
}

func getColumnCandidates() ColumnCandidates {
	columnCandidatesMu.RLock()
	defer columnCandidatesMu.RUnlock()
	return activeColumnOptions.clone()
}

func (c ColumnCandidates) withDefaults() ColumnCandidates {
	out := defaultColumnCandidates()
	for col, names := range c {
		if names != nil {
			out[col] = cloneStrings(names)
		}
	}
	return out
}

func (c ColumnCandidates) clone() ColumnCandidates {
	out := make(ColumnCandidates, len(c))
	for col, names := range c {
		out[col] = cloneStrings(names)
	}
	return out
}

// resolveColumns maps each rubric column to its index in header, or -1.
func resolveColumns(header []string) map[string]int {
	candidates := getColumnCandidates()
	out := make(map[string]int, len(RubricColumns))
	for _, col := range RubricColumns {
		out[col] = findColumn(header, candidates[col])
	}
	return out
}

func findColumn(header []string, candidates []string) int {
	for _, cand := range candidates {
		for i, col := range header {
			if strings.EqualFold(col, cand) {
				return i
			}
		}
	}
	return -1
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
