package scorer

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *RubricStore) isCached() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cached
}

func criterionNames(t *testing.T, s *RubricStore) []string {
	t.Helper()
	criteria, err := s.Rubric(context.Background())
	if err != nil {
		return nil
	}
	names := make([]string, len(criteria))
	for i, c := range criteria {
		names[i] = c.Name
	}
	return names
}

func TestRubricStore_ReadsOnEveryRequest(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "rubric.csv", "criterion\nfirst\n")
	store := NewRubricStore(nil, path)

	assert.Equal(t, []string{"first"}, criterionNames(t, store))
	writeFile(t, dir, "rubric.csv", "criterion\nsecond\n")
	assert.Equal(t, []string{"second"}, criterionNames(t, store))
	assert.Equal(t, path, store.Path())
	assert.NoError(t, store.Reload())
}

func TestRubricStore_Missing(t *testing.T) {
	store := NewRubricStore(nil, filepath.Join(t.TempDir(), "missing.csv"))
	_, err := store.Rubric(context.Background())
	assert.ErrorIs(t, err, ErrRubricUnavailable)
	assert.ErrorIs(t, store.Reload(), ErrRubricUnavailable)
}

func TestRubricStore_Watch(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "rubric.yaml", "- criterion: first\n")
	store := NewRubricStore(nil, path)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- store.Watch(ctx) }()

	require.Eventually(t, store.isCached, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"first"}, criterionNames(t, store))

	writeFile(t, dir, "rubric.yaml", "- criterion: second\n- criterion: third\n")
	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"second", "third"}, criterionNames(t, store))
	}, 2*time.Second, 10*time.Millisecond)

	// A broken edit keeps the previous rubric.
	writeFile(t, dir, "rubric.yaml", "criteria: [unterminated\n")
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, []string{"second", "third"}, criterionNames(t, store))

	// Unrelated files in the directory are ignored.
	writeFile(t, dir, "notes.txt", "hello")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
	assert.False(t, store.isCached())
	_, err := store.Rubric(context.Background())
	assert.ErrorIs(t, err, ErrRubricUnavailable)
}

func TestRubricStore_WatchFollowsPreferredCandidate(t *testing.T) {
	dir := t.TempDir()
	preferred := filepath.Join(dir, "rubric.json")
	fallback := writeFile(t, dir, "rubric.csv", "criterion\nfallback\n")
	store := NewRubricStore(nil, preferred, fallback)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- store.Watch(ctx) }()

	require.Eventually(t, store.isCached, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"fallback"}, criterionNames(t, store))

	writeFile(t, dir, "rubric.json", `[{"criterion": "preferred"}]`)
	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"preferred"}, criterionNames(t, store))
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, preferred, store.Path())

	writeFile(t, dir, "rubric.json", `[{"criterion": "edited"}, {"criterion": "again"}]`)
	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"edited", "again"}, criterionNames(t, store))
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestRubricStore_WatchNoDirectory(t *testing.T) {
	store := NewRubricStore(nil, filepath.Join(t.TempDir(), "missing", "rubric.csv"))
	assert.Error(t, store.Watch(context.Background()))
}
