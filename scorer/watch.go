package scorer

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch keeps the store's cached rubric in sync with the rubric files until
// ctx is cancelled. The directory of every candidate is watched so atomic
// saves (write to temp, rename) are seen, as is a higher-priority candidate
// that appears later. A reload that fails is logged and the previous rubric
// stays active.
func (s *RubricStore) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("rubric watcher: %w", err)
	}
	defer watcher.Close()

	candidates := make(map[string]struct{}, len(s.paths))
	dirs := make(map[string]struct{}, len(s.paths))
	for _, p := range s.paths {
		p = filepath.Clean(p)
		candidates[p] = struct{}{}
		dir := filepath.Dir(p)
		if _, ok := dirs[dir]; ok {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			s.logger.Warn("rubric: cannot watch directory", "dir", dir, "error", err)
			continue
		}
		dirs[dir] = struct{}{}
	}
	if len(dirs) == 0 {
		return fmt.Errorf("rubric watcher: no watchable directory for %v", s.paths)
	}
	path := s.Path()

	criteria, err := s.load()
	if err != nil {
		s.logger.Warn("rubric: initial load failed", "path", path, "error", err)
	}
	s.setCached(criteria, err == nil)
	defer s.setCached(nil, false)

	s.logger.Info("rubric: watching for changes", "path", path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if _, ok := candidates[filepath.Clean(event.Name)]; !ok {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			criteria, err := s.load()
			if err != nil {
				s.logger.Error("rubric: reload failed, keeping previous rubric", "path", path, "error", err)
				continue
			}
			s.setCached(criteria, true)
			path = s.Path()
			s.logger.Info("rubric: reloaded", "path", path, "criteria", len(criteria))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("rubric: watcher error", "error", err)
		}
	}
}
