package scorer

import "context"

// Aggregate scores transcript against every criterion in order and combines
// the criterion scores into a weight-normalised overall score.
func Aggregate(ctx context.Context, rubric []Criterion, transcript string, engine Engine) ScoreReport {
	t := NewTranscript(transcript)
	results := make([]CriterionResult, len(rubric))
	for i, c := range rubric {
		results[i] = ScoreCriterion(ctx, c, t, engine)
	}
	return buildReport(t, results)
}

// buildReport sums in rubric order so identical inputs give bit-identical
// reports. When the weights sum to zero or less the total becomes the
// criterion count. Weights still scale each score, except that an all-zero
// rubric is an unweighted mean.
func buildReport(t Transcript, results []CriterionResult) ScoreReport {
	if results == nil {
		results = []CriterionResult{}
	}
	total := 0.0
	allZero := true
	for _, r := range results {
		total += r.Weight
		if r.Weight != 0 {
			allZero = false
		}
	}
	if total <= 0 {
		total = float64(len(results))
	}
	overall := 0.0
	for _, r := range results {
		w := r.Weight
		if allZero {
			w = 1
		}
		overall += r.CriterionScore * (w / total)
	}
	return ScoreReport{
		OverallScore: roundTo(overall, 2),
		WordCount:    t.WordCount,
		PerCriterion: results,
	}
}
