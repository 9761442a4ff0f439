package cusum

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaveletLevels(t *testing.T) {
	// floor(log2(n / (taps - 1)))
	assert.Equal(t, 7, WaveletLevels(1024, 9))
	assert.Equal(t, 10, WaveletLevels(1024, 2))
	assert.Equal(t, 0, WaveletLevels(0, 9))
	assert.Equal(t, 0, WaveletLevels(1024, 1))
	assert.Equal(t, 0, WaveletLevels(4, 9))
}

func TestFFTLowpassPreservesDC(t *testing.T) {
	filter := NewFFTLowpass(100, 1000)
	signal := make([]float64, 256)
	for i := range signal {
		signal[i] = 42
	}
	require.NoError(t, filter.Apply(signal))
	for _, v := range signal {
		assert.InDelta(t, 42.0, v, 1e-9)
	}
}

func TestFFTLowpassRemovesHighFrequency(t *testing.T) {
	const n = 256
	const samplingFreq = 1000.0

	// Low tone at ~39 Hz plus high tone at ~391 Hz, both on exact bins.
	signal := make([]float64, n)
	for i := range signal {
		ti := float64(i) / samplingFreq
		signal[i] = math.Sin(2*math.Pi*10*samplingFreq/n*ti) +
			math.Sin(2*math.Pi*100*samplingFreq/n*ti)
	}

	filter := NewFFTLowpass(100, samplingFreq)
	require.NoError(t, filter.Apply(signal))

	for i := range signal {
		ti := float64(i) / samplingFreq
		expected := math.Sin(2 * math.Pi * 10 * samplingFreq / n * ti)
		assert.InDelta(t, expected, signal[i], 1e-6)
	}
}

func TestFFTLowpassRejectsBadCutoff(t *testing.T) {
	filter := NewFFTLowpass(0, 1000)
	err := filter.Apply(make([]float64, 16))
	require.Error(t, err)
	assert.Equal(t, ErrString, Classify(err))

	// Empty input is a no-op.
	assert.NoError(t, NewFFTLowpass(100, 1000).Apply(nil))
}
