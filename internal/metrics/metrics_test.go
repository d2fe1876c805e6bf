package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Navyasribhaskar/Casestudy/scorer"
)

func TestObserveReport(t *testing.T) {
	r := New(false)
	report := scorer.ScoreReport{
		OverallScore: 42.5,
		WordCount:    120,
		PerCriterion: []scorer.CriterionResult{
			{Criterion: "clarity", CriterionScore: 40},
			{Criterion: "pets", CriterionScore: 45},
		},
	}
	r.ObserveReport(report, 25*time.Millisecond)
	r.ObserveReport(report, 30*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.reports))
	assert.Equal(t, 2, testutil.CollectAndCount(r.criterionScore))
	assert.Equal(t, 1, testutil.CollectAndCount(r.duration))

	expected := `
# HELP scorer_overall_score Distribution of overall scores.
# TYPE scorer_overall_score histogram
scorer_overall_score_bucket{le="0"} 0
scorer_overall_score_bucket{le="10"} 0
scorer_overall_score_bucket{le="20"} 0
scorer_overall_score_bucket{le="30"} 0
scorer_overall_score_bucket{le="40"} 0
scorer_overall_score_bucket{le="50"} 2
scorer_overall_score_bucket{le="60"} 2
scorer_overall_score_bucket{le="70"} 2
scorer_overall_score_bucket{le="80"} 2
scorer_overall_score_bucket{le="90"} 2
scorer_overall_score_bucket{le="100"} 2
scorer_overall_score_bucket{le="+Inf"} 2
scorer_overall_score_sum 85
scorer_overall_score_count 2
`
	assert.NoError(t, testutil.CollectAndCompare(r.overall, strings.NewReader(expected)))
}

func TestObserveRequest(t *testing.T) {
	r := New(false)
	r.ObserveRequest("/api/score", 200)
	r.ObserveRequest("/api/score", 200)
	r.ObserveRequest("/api/score", 400)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.requests.WithLabelValues("/api/score", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.requests.WithLabelValues("/api/score", "400")))
}

func TestHandler(t *testing.T) {
	r := New(true)
	r.ObserveRequest("/healthz", 200)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `scorer_http_requests_total{code="200",route="/healthz"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestRegistryIsolated(t *testing.T) {
	a, b := New(false), New(false)
	a.ObserveRequest("/", 200)

	n, err := testutil.GatherAndCount(b.Registry(), "scorer_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
