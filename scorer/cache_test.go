package scorer

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedEngine_Memory(t *testing.T) {
	inner := &countingEngine{}
	c, err := NewCachedEngine(inner, "test-model", "")
	require.NoError(t, err)
	ctx := context.Background()

	first, err := c.EmbedText(ctx, "hello")
	require.NoError(t, err)
	second, err := c.EmbedText(ctx, "  hello ")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), inner.calls.Load())
	assert.Equal(t, 1, c.Len())

	// Callers get copies.
	first[0] = 999
	third, err := c.EmbedText(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, float32(5), third[0])

	require.NoError(t, c.Close())
	assert.True(t, inner.closed.Load())
	assert.Equal(t, 0, c.Len())
}

func TestCachedEngine_Concurrent(t *testing.T) {
	inner := &countingEngine{}
	c, err := NewCachedEngine(inner, "test-model", "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.EmbedText(context.Background(), "shared description")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, inner.calls.Load(), int64(16))
	assert.Equal(t, 1, c.Len())
}

func TestCachedEngine_Disk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "vectors")
	inner := &countingEngine{}
	c, err := NewCachedEngine(inner, "test-model", dir)
	require.NoError(t, err)

	want, err := c.EmbedText(context.Background(), "persist me")
	require.NoError(t, err)
	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, ".bin", filepath.Ext(files[0].Name()))

	// A fresh cache over the same directory does not call the engine.
	fresh := &countingEngine{}
	c2, err := NewCachedEngine(fresh, "test-model", dir)
	require.NoError(t, err)
	got, err := c2.EmbedText(context.Background(), "persist me")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, int64(0), fresh.calls.Load())

	// A different model id does not share entries.
	other, err := NewCachedEngine(fresh, "other-model", dir)
	require.NoError(t, err)
	_, err = other.EmbedText(context.Background(), "persist me")
	require.NoError(t, err)
	assert.Equal(t, int64(1), fresh.calls.Load())
}

func TestCachedEngine_ErrorsAreNotCached(t *testing.T) {
	c, err := NewCachedEngine(failingEngine{}, "m", "")
	require.NoError(t, err)
	_, err = c.EmbedText(context.Background(), "x")
	assert.Error(t, err)
	assert.Equal(t, 0, c.Len())
}
