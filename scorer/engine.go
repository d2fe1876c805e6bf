package scorer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Engine is the embedding capability the scorer depends on. A nil Engine
// means semantic scoring is unavailable.
type Engine interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// EngineFactory builds an Engine. It is called at most once per EngineHolder.
type EngineFactory func() (Engine, error)

// ErrEngineUnavailable is reported by EngineHolder.Err when construction failed.
var ErrEngineUnavailable = errors.New("similarity engine unavailable")

// EngineHolder constructs the shared Engine on first use and hands out the
// same instance afterwards. A failed construction is final for the holder.
type EngineHolder struct {
	factory EngineFactory
	logger  *slog.Logger

	once   sync.Once
	mu     sync.RWMutex
	engine Engine
	err    error
}

// NewEngineHolder wraps factory in an initialize-once holder.
func NewEngineHolder(factory EngineFactory, logger *slog.Logger) *EngineHolder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &EngineHolder{factory: factory, logger: logger}
}

// Get returns the shared engine, building it on the first call. It returns nil
// when the engine could not be constructed.
func (h *EngineHolder) Get() Engine {
	if h == nil {
		return nil
	}
	h.once.Do(h.init)
	return h.engine
}

// Err returns the construction error, if any. It does not trigger construction.
func (h *EngineHolder) Err() error {
	if h == nil {
		return ErrEngineUnavailable
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.err
}

// Close releases the engine if it was built and implements io.Closer. It
// waits for a construction in progress; a holder closed before first use
// never builds its engine.
func (h *EngineHolder) Close() error {
	if h == nil {
		return nil
	}
	h.once.Do(func() {
		h.set(nil, fmt.Errorf("%w: holder closed", ErrEngineUnavailable))
	})
	h.mu.RLock()
	engine := h.engine
	h.mu.RUnlock()
	if c, ok := engine.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (h *EngineHolder) init() {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: panic during construction: %v", ErrEngineUnavailable, r)
			h.set(nil, err)
			h.logger.Warn("semantic scoring disabled", "error", err)
		}
	}()
	if h.factory == nil {
		h.set(nil, fmt.Errorf("%w: no engine configured", ErrEngineUnavailable))
		h.logger.Info("semantic scoring disabled", "reason", "no engine configured")
		return
	}
	engine, err := h.factory()
	if err != nil {
		h.set(nil, fmt.Errorf("%w: %w", ErrEngineUnavailable, err))
		h.logger.Warn("semantic scoring disabled", "error", err)
		return
	}
	if engine == nil {
		err := fmt.Errorf("%w: factory returned no engine", ErrEngineUnavailable)
		h.set(nil, err)
		h.logger.Warn("semantic scoring disabled", "error", err)
		return
	}
	h.set(engine, nil)
	h.logger.Info("similarity engine ready")
}

func (h *EngineHolder) set(engine Engine, err error) {
	h.mu.Lock()
	h.engine = engine
	h.err = err
	h.mu.Unlock()
}
