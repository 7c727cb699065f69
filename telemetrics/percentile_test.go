package telemetrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentile_LinearInterpolation(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		q      float64
		want   float64
	}{
		{"empty", nil, 0.95, 0},
		{"single", []float64{42}, 0.95, 42},
		{"two samples", []float64{100, 200}, 0.95, 195},
		{"exact rank", []float64{1, 2, 3, 4, 5}, 0.5, 3},
		{"between ranks", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p95 of ten", []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}, 0.95, 95.5},
		{"min", []float64{3, 7, 9}, 0, 3},
		{"max", []float64{3, 7, 9}, 1, 9},
		{"equal values", []float64{5, 5, 5}, 0.95, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Percentile(tt.sorted, tt.q), 1e-9)
		})
	}
}

func TestPercentile_StaysWithinBounds(t *testing.T) {
	sorted := []float64{0.1, 0.2, 0.30000000000000004, 1e9}
	for q := 0.0; q <= 1.0; q += 0.01 {
		got := Percentile(sorted, q)
		assert.GreaterOrEqual(t, got, sorted[0])
		assert.LessOrEqual(t, got, sorted[len(sorted)-1])
	}
}

func TestPercentile_ScalesWithSamples(t *testing.T) {
	sorted := []float64{12.5, 40, 41, 77.25, 130, 180.5, 222}
	base := Percentile(sorted, 0.95)

	scaled := make([]float64, len(sorted))
	for i, v := range sorted {
		scaled[i] = v * 3
	}

	assert.InDelta(t, base*3, Percentile(scaled, 0.95), 1e-9)
}

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, 150.0, Mean([]float64{100, 200}), 1e-9)
	assert.InDelta(t, 99.7, Mean([]float64{99.9, 99.5}), 1e-9)
}
