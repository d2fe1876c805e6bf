package scorer

import (
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"
)

// CachedEngine memoises embeddings in memory and, when dir is set, on disk.
// Keys are the sha1 of the model id and the normalised text, so identical
// rubric descriptions are embedded once per process.
type CachedEngine struct {
	inner   Engine
	modelID string
	dir     string

	mu    sync.RWMutex
	mem   map[string][]float32
	group singleflight.Group
}

// NewCachedEngine wraps inner. dir may be empty for a memory-only cache.
func NewCachedEngine(inner Engine, modelID, dir string) (*CachedEngine, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	return &CachedEngine{
		inner:   inner,
		modelID: modelID,
		dir:     dir,
		mem:     make(map[string][]float32),
	}, nil
}

// EmbedText returns a cached vector or computes and stores one.
func (c *CachedEngine) EmbedText(ctx context.Context, text string) ([]float32, error) {
	normalized := NormalizeText(text)
	key := c.cacheKey(normalized)
	if vec, ok := c.getFromMemory(key); ok {
		return vec, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if vec, err := c.loadFromDisk(key); err == nil {
			c.storeInMemory(key, vec)
			return vec, nil
		}
		vec, err := c.inner.EmbedText(ctx, normalized)
		if err != nil {
			return nil, err
		}
		c.storeInMemory(key, vec)
		_ = c.saveToDisk(key, vec)
		return vec, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneVector(v.([]float32)), nil
}

// Len reports the number of vectors held in memory.
func (c *CachedEngine) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.mem)
}

// Close drops the memory cache and closes the wrapped engine when it is an io.Closer.
func (c *CachedEngine) Close() error {
	c.mu.Lock()
	c.mem = make(map[string][]float32)
	c.mu.Unlock()
	if closer, ok := c.inner.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (c *CachedEngine) cacheKey(text string) string {
	h := sha1.New()
	_, _ = io.WriteString(h, c.modelID)
	_, _ = io.WriteString(h, "|")
	_, _ = io.WriteString(h, text)
	return hex.EncodeToString(h.Sum(nil))
}

func (c *CachedEngine) getFromMemory(key string) ([]float32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	vec, ok := c.mem[key]
	if !ok {
		return nil, false
	}
	return cloneVector(vec), true
}

func (c *CachedEngine) storeInMemory(key string, vec []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mem[key] = cloneVector(vec)
}

func (c *CachedEngine) loadFromDisk(key string) ([]float32, error) {
	if c.dir == "" {
		return nil, os.ErrNotExist
	}
	path := filepath.Join(c.dir, key+".bin")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) < 4 {
		return nil, fmt.Errorf("cache file too small: %s", path)
	}
	length := int(binary.LittleEndian.Uint32(data[:4]))
	data = data[4:]
	if len(data) != length*4 {
		return nil, fmt.Errorf("cache length mismatch: %s", path)
	}
	vec := make([]float32, length)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4 : (i+1)*4]))
	}
	return vec, nil
}

func (c *CachedEngine) saveToDisk(key string, vec []float32) error {
	if c.dir == "" {
		return nil
	}
	path := filepath.Join(c.dir, key+".bin")
	tmp := path + ".tmp"
	buf := make([]byte, 4+len(vec)*4)
	binary.LittleEndian.PutUint32(buf[:4], uint32(len(vec)))
	off := 4
	for _, v := range vec {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(v))
		off += 4
	}
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func cloneVector(vec []float32) []float32 {
	out := make([]float32, len(vec))
	copy(out, vec)
	return out
}
