package scorer

import (
	"context"
	"errors"
	"path/filepath"
	"sync"

	"github.com/Navyasribhaskar/Casestudy/emb"
)

// OrtEngine is a thin wrapper over emb.Encoder running a local ONNX model.
type OrtEngine struct {
	mu      sync.RWMutex
	enc     *emb.Encoder
	modelID string
}

// NewOrtEngine loads the runtime, tokenizer and model described by cfg.
func NewOrtEngine(cfg EmbedderConfig) (*OrtEngine, error) {
	modelID := cfg.ModelID
	if modelID == "" && cfg.ModelPath != "" {
		modelID = filepath.Base(filepath.Dir(cfg.ModelPath)) + "/" + filepath.Base(cfg.ModelPath)
	}
	encoder := &emb.Encoder{}
	if err := encoder.Init(emb.Config{
		OrtDLL:        cfg.OrtDLL,
		ModelPath:     cfg.ModelPath,
		TokenizerPath: cfg.TokenizerPath,
		MaxSeqLen:     cfg.MaxSeqLen,
	}); err != nil {
		return nil, err
	}
	return &OrtEngine{enc: encoder, modelID: modelID}, nil
}

// ModelID identifies the model for cache keys.
func (o *OrtEngine) ModelID() string {
	return o.modelID
}

// Dimensions returns the embedding size reported by the model.
func (o *OrtEngine) Dimensions() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.enc == nil {
		return 0
	}
	return o.enc.Dimensions()
}

// EmbedText embeds a single string.
func (o *OrtEngine) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.enc == nil {
		return nil, errors.New("ort engine is not initialized")
	}
	return o.enc.Encode(NormalizeText(text))
}

// Close releases ORT resources.
func (o *OrtEngine) Close() error {
	if o == nil {
		return nil
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.enc != nil {
		o.enc.Close()
		o.enc = nil
	}
	return nil
}
