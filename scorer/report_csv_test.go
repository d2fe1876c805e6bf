package scorer

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReportCSV(t *testing.T) {
	report := ScoreReport{
		OverallScore: 42.5,
		WordCount:    12,
		PerCriterion: []CriterionResult{
			{
				Criterion:          "pricing",
				Description:        "mentions price, clearly",
				Weight:             2,
				FoundKeywords:      []string{"price", "cost"},
				KeywordFraction:    0.667,
				SemanticSimilarity: 0.4321,
				LengthFraction:     1,
				CriterionScore:     54.3,
			},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteReportCSV(&buf, report))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, ReportCSVHeader, records[0])
	assert.Equal(t, []string{"pricing", "2", "54.3", "0.4321", "0.667", "1", "price;cost", "mentions price, clearly"}, records[1])
	assert.Equal(t, "overall", records[2][0])
	assert.Equal(t, "42.5", records[2][2])
	assert.Equal(t, "12 words", records[2][7])
}
