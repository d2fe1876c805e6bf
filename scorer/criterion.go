package scorer

import (
	"context"
	"strings"
)

// Blend weights for the composite criterion score.
const (
	weightSemantic = 0.5
	weightKeyword  = 0.4
	weightLength   = 0.1
)

const defaultCriterionName = "criterion"

// ParseCriterion converts a raw rubric row into a Criterion, applying the
// parse-or-default rules for every field.
func ParseCriterion(row RubricRow) Criterion {
	id := strings.TrimSpace(row.CriterionID)
	name := strings.TrimSpace(row.Criterion)
	if name == "" {
		name = id
	}
	if name == "" {
		name = defaultCriterionName
	}
	return Criterion{
		ID:          id,
		Name:        name,
		Description: strings.TrimSpace(row.Description),
		Keywords:    ParseKeywords(row.Keywords),
		Weight:      parseWeight(row.Weight),
		MinWords:    parseBound(row.MinWords),
		MaxWords:    parseBound(row.MaxWords),
	}
}

// ParseRubric converts loader rows into criteria, preserving order.
func ParseRubric(rows []RubricRow) []Criterion {
	out := make([]Criterion, len(rows))
	for i, row := range rows {
		out[i] = ParseCriterion(row)
	}
	return out
}

// ScoreCriterion blends the keyword, similarity and length sub-scores for one
// criterion into a 0-100 score.
func ScoreCriterion(ctx context.Context, c Criterion, t Transcript, engine Engine) CriterionResult {
	found, kwFrac := MatchKeywords(t.Lower, c.Keywords)
	lenFrac := LengthFraction(t.WordCount, c.MinWords, c.MaxWords)
	sem := SemanticSimilarity(ctx, t.Normalized, c.Description, engine)

	raw := weightSemantic*sem + weightKeyword*kwFrac + weightLength*lenFrac
	name := c.Name
	if name == "" {
		name = c.ID
	}
	if name == "" {
		name = defaultCriterionName
	}
	return CriterionResult{
		Criterion:          name,
		Description:        c.Description,
		Weight:             c.Weight,
		FoundKeywords:      found,
		KeywordFraction:    kwFrac,
		SemanticSimilarity: sem,
		LengthFraction:     lenFrac,
		CriterionScore:     roundTo(raw*100, 2),
	}
}
