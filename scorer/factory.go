package scorer

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Embedding providers selectable in EmbedderConfig.Provider.
const (
	ProviderORT    = "ort"
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
	ProviderNone   = "none"
)

// ErrProviderDisabled is returned by a factory configured with ProviderNone.
var ErrProviderDisabled = errors.New("embedding provider disabled")

type modelIdentifier interface {
	ModelID() string
}

// NewEngineFactory returns a factory building the configured engine wrapped in
// a CachedEngine. Nothing is loaded until the factory is called.
func NewEngineFactory(cfg EmbedderConfig, logger *slog.Logger) EngineFactory {
	return func() (Engine, error) {
		var (
			engine Engine
			err    error
		)
		provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
		switch provider {
		case "", ProviderORT:
			engine, err = NewOrtEngine(cfg)
		case ProviderOllama:
			engine = NewOllamaEngine(cfg.OllamaURL, cfg.OllamaModel)
		case ProviderOpenAI:
			if cfg.OpenAIAPIKey == "" {
				return nil, errors.New("openai provider requires OPENAI_API_KEY")
			}
			engine = NewOpenAIEngine(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		case ProviderNone:
			return nil, ErrProviderDisabled
		default:
			return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
		}
		if err != nil {
			return nil, err
		}
		modelID := cfg.ModelID
		if id, ok := engine.(modelIdentifier); ok && modelID == "" {
			modelID = id.ModelID()
		}
		if logger != nil {
			attrs := []any{"provider", provider, "model", modelID, "cache_dir", cfg.CacheDir}
			if d, ok := engine.(interface{ Dimensions() int }); ok {
				attrs = append(attrs, "dims", d.Dimensions())
			}
			logger.Info("embedding engine loaded", attrs...)
		}
		cached, err := NewCachedEngine(engine, modelID, cfg.CacheDir)
		if err != nil {
			return nil, err
		}
		return cached, nil
	}
}
