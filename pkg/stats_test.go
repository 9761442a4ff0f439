package cusum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignum(t *testing.T) {
	assert.Equal(t, 1, Signum(0.5))
	assert.Equal(t, -1, Signum(-0.5))
	assert.Equal(t, 0, Signum(0))
	assert.Equal(t, 0, Signum(EPS/2))
	assert.Equal(t, 0, Signum(-EPS/2))
}

func TestSignalStatistics(t *testing.T) {
	signal := []float64{2, -7, 4, 4, 1}

	assert.Equal(t, 4.0, SignalMax(signal))
	assert.Equal(t, -7.0, SignalMin(signal))
	assert.Equal(t, 0.8, SignalAverage(signal))
	assert.Equal(t, 4.0, SignalExtreme(signal, 1))
	assert.Equal(t, 7.0, SignalExtreme(signal, -1))
	assert.Equal(t, int64(1), LocateMin(signal))
	assert.Equal(t, int64(2), LocateMax(signal))
}

func TestSignalVariance(t *testing.T) {
	// Sample variance with the n-1 denominator.
	assert.Equal(t, 2.5, SignalVariance([]float64{1, 2, 3, 4, 5}))

	// Fewer than two samples have zero variance.
	assert.Equal(t, 0.0, SignalVariance([]float64{3}))
	assert.Equal(t, 0.0, SignalVariance(nil))
}

func TestInvertMatrix(t *testing.T) {
	m := [3][3]float64{
		{2, 0, 0},
		{0, 4, 0},
		{0, 0, 8},
	}
	inv := InvertMatrix(m)
	assert.InDelta(t, 0.5, inv[0][0], 1e-12)
	assert.InDelta(t, 0.25, inv[1][1], 1e-12)
	assert.InDelta(t, 0.125, inv[2][2], 1e-12)

	// A general matrix times its inverse is the identity.
	m = [3][3]float64{
		{1, 2, 3},
		{0, 1, 4},
		{5, 6, 0},
	}
	inv = InvertMatrix(m)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += m[i][k] * inv[k][j]
			}
			expected := 0.0
			if i == j {
				expected = 1.0
			}
			assert.InDelta(t, expected, sum, 1e-12)
		}
	}
}

func TestCheckBits(t *testing.T) {
	assert.NoError(t, CheckBits())
}
