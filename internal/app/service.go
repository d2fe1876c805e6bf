package app

import (
	"context"
	"io"
	"log/slog"
	"reflect"
	"sync"

	"github.com/Navyasribhaskar/Casestudy/scorer"
)

// Service binds the desktop UI to the scorer: it owns the engine, the rubric
// store and the persisted configuration.
type Service struct {
	mu          sync.RWMutex
	cfg         scorer.Config
	cfgPath     string
	logger      *slog.Logger
	engines     *scorer.EngineHolder
	store       *scorer.RubricStore
	scorer      *scorer.Service
	stopWatch   context.CancelFunc
	watchClosed chan struct{}
}

// NewService builds the scoring stack for cfg. The embedding engine is
// loaded lazily on the first Score or Warm call.
func NewService(cfgPath string, cfg scorer.Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	cfg.ApplyDefaults()
	s := &Service{cfg: cfg, cfgPath: cfgPath, logger: logger}
	s.engines = s.newEngines(cfg)
	s.rebuildScorer(cfg)
	return s
}

// Close stops the rubric watcher and releases the engine.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopWatcherLocked()
	if err := s.engines.Close(); err != nil {
		s.logger.Warn("close engine", "error", err)
	}
}

// Config returns a copy of the active configuration.
func (s *Service) Config() scorer.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

// UpdateConfig applies cfg, rebuilding only what changed, and persists it.
func (s *Service) UpdateConfig(cfg scorer.Config) scorer.Config {
	cfg.ApplyDefaults()
	s.mu.Lock()
	prev := s.cfg
	s.cfg = cfg
	if !reflect.DeepEqual(prev.Embedder, cfg.Embedder) {
		if err := s.engines.Close(); err != nil {
			s.logger.Warn("close engine", "error", err)
		}
		s.engines = s.newEngines(cfg)
		s.logger.Info("embedding settings changed", "provider", cfg.Embedder.Provider)
	}
	s.rebuildScorerLocked(cfg)
	s.mu.Unlock()

	if err := scorer.SaveConfig(s.cfgPath, cfg); err != nil {
		s.logger.Error("save config", "error", err)
	}
	return cfg
}

// Warm loads the embedding engine and reports whether semantic scoring is on.
func (s *Service) Warm() bool {
	s.mu.RLock()
	engines := s.engines
	s.mu.RUnlock()
	return engines.Get() != nil
}

// EngineErr returns why semantic scoring is off, or nil.
func (s *Service) EngineErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engines.Err()
}

// RubricStats returns the rubric path in use and its criteria count.
func (s *Service) RubricStats(ctx context.Context) (string, int, error) {
	s.mu.RLock()
	store := s.store
	s.mu.RUnlock()
	criteria, err := store.Rubric(ctx)
	return store.Path(), len(criteria), err
}

// Score scores transcript against the current rubric.
func (s *Service) Score(ctx context.Context, transcript string) (scorer.ScoreReport, error) {
	s.mu.RLock()
	svc := s.scorer
	s.mu.RUnlock()
	return svc.Score(ctx, transcript)
}

func (s *Service) newEngines(cfg scorer.Config) *scorer.EngineHolder {
	return scorer.NewEngineHolder(scorer.NewEngineFactory(cfg.Embedder, s.logger), s.logger)
}

func (s *Service) rebuildScorer(cfg scorer.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rebuildScorerLocked(cfg)
}

func (s *Service) rebuildScorerLocked(cfg scorer.Config) {
	s.stopWatcherLocked()
	s.store = scorer.NewRubricStore(s.logger, cfg.RubricCandidates()...)
	s.scorer = scorer.NewService(s.engines, s.store,
		scorer.WithWorkers(cfg.Workers),
		scorer.WithLogger(s.logger),
	)
	if cfg.WatchRubric {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		store := s.store
		go func() {
			defer close(done)
			if err := store.Watch(ctx); err != nil {
				s.logger.Error("rubric watcher stopped", "error", err)
			}
		}()
		s.stopWatch = cancel
		s.watchClosed = done
	}
}

func (s *Service) stopWatcherLocked() {
	if s.stopWatch == nil {
		return
	}
	s.stopWatch()
	<-s.watchClosed
	s.stopWatch = nil
	s.watchClosed = nil
}
