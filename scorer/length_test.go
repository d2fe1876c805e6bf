package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLengthFraction(t *testing.T) {
	tests := []struct {
		name     string
		words    int
		min, max *int
		want     float64
	}{
		{"no bounds", 3, nil, nil, 1},
		{"no bounds zero words", 0, nil, nil, 1},
		{"inside range", 6, intPtr(5), intPtr(10), 1},
		{"at min", 5, intPtr(5), intPtr(10), 1},
		{"at max", 10, intPtr(5), intPtr(10), 1},
		{"below min", 2, intPtr(4), intPtr(10), 0.5},
		{"above max", 20, intPtr(5), intPtr(10), 0.5},
		{"only min below", 1, intPtr(4), nil, 0.25},
		{"only min satisfied", 40, intPtr(4), nil, 1},
		{"only max above", 40, nil, intPtr(10), 0.25},
		{"only max satisfied", 3, nil, intPtr(10), 1},
		{"zero min is no bound", 0, intPtr(0), nil, 1},
		{"negative max is no bound", 50, nil, intPtr(-5), 1},
		{"empty transcript under min", 0, intPtr(10), nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LengthFraction(tt.words, tt.min, tt.max)
			assert.InDelta(t, tt.want, got, 1e-12)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

func TestParseBound(t *testing.T) {
	assert.Nil(t, parseBound(""))
	assert.Nil(t, parseBound("   "))
	assert.Nil(t, parseBound("many"))
	assert.Nil(t, parseBound("NaN"))
	assert.Equal(t, intPtr(50), parseBound(" 50 "))
	assert.Equal(t, intPtr(50), parseBound("50.0"))
	assert.Equal(t, intPtr(12), parseBound("12.9"))
	assert.Equal(t, intPtr(0), parseBound("0"))
}

func TestParseWeight(t *testing.T) {
	tests := map[string]float64{
		"":      1,
		"heavy": 1,
		"Inf":   1,
		"0":     0,
		"2.5":   2.5,
		" 3 ":   3,
		"-1":    -1,
	}
	for raw, want := range tests {
		assert.Equal(t, want, parseWeight(raw), "weight %q", raw)
	}
}
