package scorer

import (
	"context"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_CatScenario(t *testing.T) {
	rubric := ParseRubric([]RubricRow{{
		Criterion: "pets",
		Keywords:  "cat,dog",
		Weight:    "1",
		MinWords:  "5",
		MaxWords:  "10",
	}})

	report := Aggregate(context.Background(), rubric, "the cat sat on the mat", nil)

	require.Len(t, report.PerCriterion, 1)
	got := report.PerCriterion[0]
	assert.Equal(t, 6, report.WordCount)
	assert.Equal(t, 0.5, got.KeywordFraction)
	assert.Equal(t, []string{"cat"}, got.FoundKeywords)
	assert.Equal(t, 1.0, got.LengthFraction)
	assert.Equal(t, 0.0, got.SemanticSimilarity)
	assert.Equal(t, 30.0, got.CriterionScore)
	assert.Equal(t, 30.0, report.OverallScore)
}

func TestAggregate_SemanticBlend(t *testing.T) {
	rubric := []Criterion{{Name: "pets", Description: "talks about pets", Keywords: []string{"cat", "dog"}, Weight: 1}}

	report := Aggregate(context.Background(), rubric, "the cat sat on the mat", constEngine{})

	got := report.PerCriterion[0]
	assert.Equal(t, 1.0, got.SemanticSimilarity)
	assert.Equal(t, 80.0, got.CriterionScore)
}

func TestAggregate_EmptyDescriptionScoresZeroSimilarity(t *testing.T) {
	rubric := []Criterion{{Name: "no description", Weight: 1}}
	report := Aggregate(context.Background(), rubric, "anything at all", constEngine{})
	assert.Equal(t, 0.0, report.PerCriterion[0].SemanticSimilarity)
}

func TestAggregate_EmptyRubric(t *testing.T) {
	report := Aggregate(context.Background(), nil, "some words here", constEngine{})
	assert.Equal(t, 0.0, report.OverallScore)
	assert.Equal(t, 3, report.WordCount)
	require.NotNil(t, report.PerCriterion)
	assert.Empty(t, report.PerCriterion)
}

func TestAggregate_FailingEngineStillReports(t *testing.T) {
	rubric := []Criterion{
		{Name: "a", Description: "first", Keywords: []string{"alpha"}, Weight: 1},
		{Name: "b", Description: "second", Keywords: []string{"beta"}, Weight: 1},
	}
	for _, engine := range []Engine{nil, failingEngine{}, panickingEngine{}} {
		report := Aggregate(context.Background(), rubric, "alpha beta gamma", engine)
		require.Len(t, report.PerCriterion, 2)
		for _, r := range report.PerCriterion {
			assert.Equal(t, 0.0, r.SemanticSimilarity)
		}
		assert.Equal(t, 50.0, report.OverallScore)
	}
}

func TestBuildReport_Weights(t *testing.T) {
	tr := Transcript{WordCount: 4}

	t.Run("weighted", func(t *testing.T) {
		report := buildReport(tr, []CriterionResult{
			{Criterion: "a", Weight: 1, CriterionScore: 100},
			{Criterion: "b", Weight: 3, CriterionScore: 0},
		})
		assert.Equal(t, 25.0, report.OverallScore)
	})

	t.Run("all zero weights use equal shares", func(t *testing.T) {
		report := buildReport(tr, []CriterionResult{
			{Criterion: "a", Weight: 0, CriterionScore: 30},
			{Criterion: "b", Weight: 0, CriterionScore: 60},
		})
		assert.Equal(t, 45.0, report.OverallScore)
	})

	t.Run("negative total divides by count and keeps weights", func(t *testing.T) {
		report := buildReport(tr, []CriterionResult{
			{Criterion: "a", Weight: -2, CriterionScore: 10},
			{Criterion: "b", Weight: 1, CriterionScore: 20},
		})
		assert.Equal(t, 0.0, report.OverallScore)
	})

	t.Run("zero total with mixed signs keeps weights", func(t *testing.T) {
		report := buildReport(tr, []CriterionResult{
			{Criterion: "a", Weight: -1, CriterionScore: 10},
			{Criterion: "b", Weight: 1, CriterionScore: 50},
		})
		assert.Equal(t, 20.0, report.OverallScore)
	})

	t.Run("halves round to even", func(t *testing.T) {
		report := buildReport(tr, []CriterionResult{
			{Weight: 1, CriterionScore: 0.125},
		})
		assert.Equal(t, 0.12, report.OverallScore)
	})

	t.Run("rounded to two places", func(t *testing.T) {
		report := buildReport(tr, []CriterionResult{
			{Weight: 1, CriterionScore: 10},
			{Weight: 1, CriterionScore: 20},
			{Weight: 1, CriterionScore: 20},
		})
		assert.Equal(t, 16.67, report.OverallScore)
	})
}

func TestAggregate_PreservesOrder(t *testing.T) {
	names := []string{"zeta", "alpha", "mu", "beta", "omega"}
	rubric := make([]Criterion, len(names))
	for i, n := range names {
		rubric[i] = Criterion{Name: n, Weight: 1}
	}
	report := Aggregate(context.Background(), rubric, "text", nil)
	for i, r := range report.PerCriterion {
		assert.Equal(t, names[i], r.Criterion)
	}
}

func TestAggregate_Bounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	vocab := []string{"pricing", "roi", "budget", "timeline", "risk", "team", "demo", "cat"}
	engine := mapEngine{def: []float32{0.3, 0.9, 0.1}, vecs: map[string][]float32{}}

	for i := 0; i < 200; i++ {
		words := make([]string, rng.Intn(60))
		for j := range words {
			words[j] = vocab[rng.Intn(len(vocab))]
		}
		transcript := strings.Join(words, " ")
		engine.vecs[transcript] = []float32{rng.Float32(), rng.Float32() - 0.5, rng.Float32()}

		rows := make([]RubricRow, rng.Intn(5))
		for j := range rows {
			rows[j] = RubricRow{
				Criterion:   "c" + strconv.Itoa(j),
				Description: "desc " + strconv.Itoa(j),
				Keywords:    strings.Join(vocab[:rng.Intn(len(vocab))], ","),
				Weight:      strconv.Itoa(rng.Intn(4)),
				MinWords:    strconv.Itoa(rng.Intn(30)),
				MaxWords:    strconv.Itoa(rng.Intn(80)),
			}
		}
		report := Aggregate(context.Background(), ParseRubric(rows), transcript, engine)

		assert.GreaterOrEqual(t, report.OverallScore, 0.0)
		assert.LessOrEqual(t, report.OverallScore, 100.0)
		for _, r := range report.PerCriterion {
			assert.GreaterOrEqual(t, r.CriterionScore, 0.0)
			assert.LessOrEqual(t, r.CriterionScore, 100.0)
		}
	}
}

func TestAggregate_Deterministic(t *testing.T) {
	rubric := ParseRubric([]RubricRow{
		{Criterion: "opening", Description: "greets the customer", Keywords: "hello,welcome", Weight: "0.3", MinWords: "3"},
		{Criterion: "close", Description: "asks for the sale", Keywords: "sign;contract", Weight: "0.7", MaxWords: "50"},
	})
	engine := mapEngine{def: []float32{0.2, 0.4, 0.9}}
	transcript := "Hello and welcome. Ready to sign the contract today?"

	first := Aggregate(context.Background(), rubric, transcript, engine)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Aggregate(context.Background(), rubric, transcript, engine))
	}
}

func TestParseCriterion_Defaults(t *testing.T) {
	c := ParseCriterion(RubricRow{CriterionID: " C1 ", Weight: "abc", MinWords: "x", MaxWords: ""})
	assert.Equal(t, "C1", c.ID)
	assert.Equal(t, "C1", c.Name)
	assert.Equal(t, 1.0, c.Weight)
	assert.Nil(t, c.MinWords)
	assert.Nil(t, c.MaxWords)
	assert.Empty(t, c.Keywords)

	anon := ParseCriterion(RubricRow{})
	assert.Equal(t, "criterion", anon.Name)
}
