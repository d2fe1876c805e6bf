package scorer

import (
	"context"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("casestudy/scorer")

// RubricSource supplies the rubric for a scoring request.
type RubricSource interface {
	Rubric(ctx context.Context) ([]Criterion, error)
}

// StaticRubric is a RubricSource over a fixed list of criteria.
type StaticRubric []Criterion

// Rubric returns the fixed criteria.
func (s StaticRubric) Rubric(context.Context) ([]Criterion, error) {
	return s, nil
}

// Observer receives every completed report, e.g. for metrics.
type Observer interface {
	ObserveReport(report ScoreReport, elapsed time.Duration)
}

// Option customises a Service.
type Option func(*Service)

// WithWorkers bounds how many criteria are scored concurrently.
func WithWorkers(n int) Option { return func(s *Service) { s.workers = n } }

// WithObserver registers an Observer for completed reports.
func WithObserver(o Observer) Option { return func(s *Service) { s.observer = o } }

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

// Service scores transcripts against the current rubric using the shared engine.
type Service struct {
	engines  *EngineHolder
	rubric   RubricSource
	workers  int
	observer Observer
	logger   *slog.Logger
}

// NewService constructs a service. engines may be nil, in which case semantic
// similarity is always 0.
func NewService(engines *EngineHolder, rubric RubricSource, opts ...Option) *Service {
	s := &Service{
		engines: engines,
		rubric:  rubric,
		workers: 4,
	}
	for _, o := range opts {
		o(s)
	}
	if s.workers <= 0 {
		s.workers = 1
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

// Rubric returns the criteria the service currently scores against.
func (s *Service) Rubric(ctx context.Context) ([]Criterion, error) {
	if s.rubric == nil {
		return nil, ErrRubricUnavailable
	}
	return s.rubric.Rubric(ctx)
}

// Score loads the rubric and scores transcript against it. The only error is a
// rubric that cannot be loaded.
func (s *Service) Score(ctx context.Context, transcript string) (ScoreReport, error) {
	rubric, err := s.Rubric(ctx)
	if err != nil {
		s.logger.Warn("rubric unavailable", "error", err)
		return ScoreReport{}, err
	}
	return s.ScoreRubric(ctx, rubric, transcript), nil
}

// ScoreRubric scores transcript against rubric. Criteria are scored
// concurrently; the report keeps rubric order.
func (s *Service) ScoreRubric(ctx context.Context, rubric []Criterion, transcript string) ScoreReport {
	start := time.Now()
	t := NewTranscript(transcript)
	ctx, span := tracer.Start(ctx, "scorer.Score", trace.WithAttributes(
		attribute.Int("scorer.criteria", len(rubric)),
		attribute.Int("scorer.word_count", t.WordCount),
	))
	defer span.End()

	engine := s.engines.Get()
	span.SetAttributes(attribute.Bool("scorer.semantic_enabled", engine != nil))

	results := make([]CriterionResult, len(rubric))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, c := range rubric {
		i, c := i, c
		g.Go(func() error {
			results[i] = ScoreCriterion(ctx, c, t, engine)
			return nil
		})
	}
	_ = g.Wait()

	report := buildReport(t, results)
	span.SetAttributes(attribute.Float64("scorer.overall_score", report.OverallScore))

	elapsed := time.Since(start)
	s.logger.Debug("transcript scored",
		"criteria", len(rubric),
		"word_count", report.WordCount,
		"overall_score", report.OverallScore,
		"duration_ms", elapsed.Milliseconds(),
	)
	if s.observer != nil {
		s.observer.ObserveReport(report, elapsed)
	}
	return report
}
