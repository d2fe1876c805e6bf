package emb

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3}, truncate([]int{1, 2, 3}, 5))
	assert.Equal(t, []int{101, 7, 8, 102}, truncate([]int{101, 7, 8, 9, 10, 102}, 4))
}

func TestToInt64Pads(t *testing.T) {
	assert.Equal(t, []int64{4, 5, 0}, toInt64([]int{4, 5}, 3))
	assert.Equal(t, []int64{0, 0}, toInt64(nil, 2))
}

func TestMeanPool(t *testing.T) {
	// Three tokens, hidden size 2; the last token is padding.
	hidden := []float32{
		3, 0,
		1, 4,
		100, 100,
	}
	out := meanPool(hidden, []int64{1, 1, 0}, 3, 2)
	require.Len(t, out, 2)

	// Mean is (2, 2); normalised to unit length.
	want := float32(1 / math.Sqrt2)
	assert.InDelta(t, want, out[0], 1e-6)
	assert.InDelta(t, want, out[1], 1e-6)
}

func TestMeanPoolAllMasked(t *testing.T) {
	out := meanPool([]float32{1, 2}, []int64{0}, 1, 2)
	assert.Equal(t, []float32{0, 0}, out)
}

func TestEncoderRequiresInit(t *testing.T) {
	var e Encoder
	_, err := e.Encode("hello")
	assert.Error(t, err)
	e.Close()

	assert.Error(t, e.Init(Config{TokenizerPath: "tokenizer.json"}))
	assert.Error(t, e.Init(Config{ModelPath: "model.onnx"}))
}
