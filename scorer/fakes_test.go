package scorer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// mapEngine returns fixed vectors per text; unknown texts fall back to def.
type mapEngine struct {
	vecs map[string][]float32
	def  []float32
}

func (m mapEngine) EmbedText(_ context.Context, text string) ([]float32, error) {
	if v, ok := m.vecs[text]; ok {
		return v, nil
	}
	if m.def != nil {
		return m.def, nil
	}
	return nil, errors.New("no vector for text")
}

// constEngine embeds every text to the same vector, so similarity is always 1.
type constEngine struct{}

func (constEngine) EmbedText(context.Context, string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

type failingEngine struct{}

func (failingEngine) EmbedText(context.Context, string) ([]float32, error) {
	return nil, errors.New("model exploded")
}

type panickingEngine struct{}

func (panickingEngine) EmbedText(context.Context, string) ([]float32, error) {
	panic("tensor shape mismatch")
}

// countingEngine counts calls and embeds text by its length.
type countingEngine struct {
	calls  atomic.Int64
	closed atomic.Bool
}

func (c *countingEngine) EmbedText(_ context.Context, text string) ([]float32, error) {
	c.calls.Add(1)
	return []float32{float32(len(text)), 1}, nil
}

func (c *countingEngine) Close() error {
	c.closed.Store(true)
	return nil
}

// recordingObserver captures reports passed to ObserveReport.
type recordingObserver struct {
	mu      sync.Mutex
	reports []ScoreReport
}

func (r *recordingObserver) ObserveReport(report ScoreReport, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report)
}

func intPtr(v int) *int { return &v }
