// Package metrics exposes Prometheus instrumentation for the scorer.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Navyasribhaskar/Casestudy/scorer"
)

// Recorder collects scoring metrics on its own registry. It implements
// scorer.Observer.
type Recorder struct {
	registry *prometheus.Registry

	reports        prometheus.Counter
	duration       prometheus.Histogram
	overall        prometheus.Histogram
	criterionScore *prometheus.HistogramVec
	wordCount      prometheus.Histogram
	requests       *prometheus.CounterVec
}

// New creates a Recorder. When withRuntime is set the Go and process
// collectors are registered too.
func New(withRuntime bool) *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		reports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scorer",
			Name:      "reports_total",
			Help:      "Transcripts scored.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scorer",
			Name:      "score_duration_seconds",
			Help:      "Time to score one transcript against the rubric.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		overall: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scorer",
			Name:      "overall_score",
			Help:      "Distribution of overall scores.",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),
		criterionScore: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "scorer",
			Name:      "criterion_score",
			Help:      "Distribution of per-criterion scores.",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}, []string{"criterion"}),
		wordCount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scorer",
			Name:      "transcript_words",
			Help:      "Word count of scored transcripts.",
			Buckets:   prometheus.ExponentialBuckets(10, 2, 10),
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scorer",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
	}
	reg.MustRegister(r.reports, r.duration, r.overall, r.criterionScore, r.wordCount, r.requests)
	if withRuntime {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return r
}

// ObserveReport records a completed report.
func (r *Recorder) ObserveReport(report scorer.ScoreReport, elapsed time.Duration) {
	r.reports.Inc()
	r.duration.Observe(elapsed.Seconds())
	r.overall.Observe(report.OverallScore)
	r.wordCount.Observe(float64(report.WordCount))
	for _, c := range report.PerCriterion {
		r.criterionScore.WithLabelValues(c.Criterion).Observe(c.CriterionScore)
	}
}

// ObserveRequest counts one HTTP request.
func (r *Recorder) ObserveRequest(route string, code int) {
	r.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
