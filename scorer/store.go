package scorer

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
)

// RubricStore is a RubricSource backed by rubric files. Until Watch is
// running it reads the file on every request, so edits are picked up
// immediately; while watching it serves a cached copy refreshed on change.
type RubricStore struct {
	paths  []string
	logger *slog.Logger

	mu       sync.RWMutex
	criteria []Criterion
	cached   bool
}

// NewRubricStore creates a store over the candidate paths, tried in order.
// With no paths the default xlsx and csv locations are used.
func NewRubricStore(logger *slog.Logger, paths ...string) *RubricStore {
	if len(paths) == 0 {
		paths = []string{DefaultRubricXLSX, DefaultRubricCSV}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &RubricStore{paths: paths, logger: logger}
}

// Rubric returns the current criteria.
func (s *RubricStore) Rubric(context.Context) ([]Criterion, error) {
	s.mu.RLock()
	if s.cached {
		out := s.criteria
		s.mu.RUnlock()
		return out, nil
	}
	s.mu.RUnlock()
	return s.load()
}

// Reload reads the rubric from disk and, while watching, replaces the cached
// copy. On failure the previous copy is kept.
func (s *RubricStore) Reload() error {
	criteria, err := s.load()
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.cached {
		s.criteria = criteria
	}
	s.mu.Unlock()
	return nil
}

// Path returns the rubric file currently in use: the first candidate that
// exists, or the first candidate when none do.
func (s *RubricStore) Path() string {
	for _, p := range s.paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return s.paths[0]
}

func (s *RubricStore) load() ([]Criterion, error) {
	rows, err := LoadRubricFrom(s.paths...)
	if err != nil {
		return nil, err
	}
	return ParseRubric(rows), nil
}

func (s *RubricStore) setCached(criteria []Criterion, cached bool) {
	s.mu.Lock()
	s.criteria = criteria
	s.cached = cached
	s.mu.Unlock()
}
