package scorer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReportCSVHeader is the header row written by WriteReportCSV.
var ReportCSVHeader = []string{
	"criterion",
	"weight",
	"criterion_score",
	"semantic_similarity",
	"keyword_fraction",
	"length_fraction",
	"found_keywords",
	"description",
}

// WriteReportCSV writes one row per criterion followed by an overall row.
func WriteReportCSV(w io.Writer, report ScoreReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ReportCSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range report.PerCriterion {
		record := []string{
			r.Criterion,
			formatFloat(r.Weight),
			formatFloat(r.CriterionScore),
			formatFloat(r.SemanticSimilarity),
			formatFloat(r.KeywordFraction),
			formatFloat(r.LengthFraction),
			strings.Join(r.FoundKeywords, ";"),
			r.Description,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	overall := []string{"overall", "", formatFloat(report.OverallScore), "", "", "", "", fmt.Sprintf("%d words", report.WordCount)}
	if err := cw.Write(overall); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
