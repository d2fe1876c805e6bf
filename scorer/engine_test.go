package scorer

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineHolder_BuildsOnce(t *testing.T) {
	var calls atomic.Int32
	engine := &countingEngine{}
	h := NewEngineHolder(func() (Engine, error) {
		calls.Add(1)
		return engine, nil
	}, nil)

	assert.NoError(t, h.Err(), "Err must not trigger construction")
	assert.Equal(t, int32(0), calls.Load())

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Same(t, engine, h.Get())
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	require.NoError(t, h.Close())
	assert.True(t, engine.closed.Load())
}

func TestEngineHolder_FailureIsPermanent(t *testing.T) {
	var calls atomic.Int32
	boom := errors.New("model file missing")
	h := NewEngineHolder(func() (Engine, error) {
		calls.Add(1)
		return nil, boom
	}, nil)

	assert.Nil(t, h.Get())
	assert.Nil(t, h.Get())
	assert.Equal(t, int32(1), calls.Load())
	assert.ErrorIs(t, h.Err(), ErrEngineUnavailable)
	assert.ErrorIs(t, h.Err(), boom)
	assert.NoError(t, h.Close())
}

func TestEngineHolder_Degenerate(t *testing.T) {
	t.Run("nil factory", func(t *testing.T) {
		h := NewEngineHolder(nil, nil)
		assert.Nil(t, h.Get())
		assert.ErrorIs(t, h.Err(), ErrEngineUnavailable)
	})
	t.Run("factory panics", func(t *testing.T) {
		h := NewEngineHolder(func() (Engine, error) { panic("cuda") }, nil)
		assert.NotPanics(t, func() { h.Get() })
		assert.Nil(t, h.Get())
		assert.ErrorIs(t, h.Err(), ErrEngineUnavailable)
	})
	t.Run("factory returns nil engine", func(t *testing.T) {
		h := NewEngineHolder(func() (Engine, error) { return nil, nil }, nil)
		assert.Nil(t, h.Get())
		assert.ErrorIs(t, h.Err(), ErrEngineUnavailable)
	})
	t.Run("nil holder", func(t *testing.T) {
		var h *EngineHolder
		assert.Nil(t, h.Get())
		assert.ErrorIs(t, h.Err(), ErrEngineUnavailable)
		assert.NoError(t, h.Close())
	})
}

func TestEngineHolder_CloseWaitsForConstruction(t *testing.T) {
	engine := &countingEngine{}
	started := make(chan struct{})
	release := make(chan struct{})
	h := NewEngineHolder(func() (Engine, error) {
		close(started)
		<-release
		return engine, nil
	}, nil)

	got := make(chan Engine, 1)
	go func() { got <- h.Get() }()
	<-started

	closed := make(chan error, 1)
	go func() { closed <- h.Close() }()
	go func() { _ = h.Err() }()
	close(release)

	require.NoError(t, <-closed)
	assert.Same(t, engine, <-got)
	assert.True(t, engine.closed.Load())
}

func TestEngineHolder_CloseBeforeUse(t *testing.T) {
	var calls atomic.Int32
	h := NewEngineHolder(func() (Engine, error) {
		calls.Add(1)
		return &countingEngine{}, nil
	}, nil)

	require.NoError(t, h.Close())
	assert.Nil(t, h.Get())
	assert.Equal(t, int32(0), calls.Load())
	assert.ErrorIs(t, h.Err(), ErrEngineUnavailable)
}
