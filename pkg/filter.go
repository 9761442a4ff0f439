package cusum

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
)

// Filter is the smoothing capability consumed by the analysis: it
// rewrites the signal in place and may read into the guard regions of
// a padded buffer.
type Filter interface {
	Apply(signal []float64) error
}

// WaveletLevels picks the wavelet decomposition depth for a signal of
// n samples filtered with the given tap count:
// floor(log2(n / (taps - 1))).
func WaveletLevels(n, taps int) int {
	if n <= 0 || taps < 2 {
		return 0
	}
	levels := int(math.Log2(float64(n) / float64(taps-1)))
	if levels < 0 {
		return 0
	}
	return levels
}

// FFTLowpass is a zero-phase low-pass filter implemented in the
// frequency domain. Cutoff and SamplingFreq are in Hz.
type FFTLowpass struct {
	Cutoff       float64
	SamplingFreq float64
}

func NewFFTLowpass(cutoff, samplingFreq float64) *FFTLowpass {
	return &FFTLowpass{Cutoff: cutoff, SamplingFreq: samplingFreq}
}

// Apply transforms the signal, zeroes every bin above the cutoff
// frequency, and writes the inverse transform back in place.
func (f *FFTLowpass) Apply(signal []float64) error {
	n := len(signal)
	if n == 0 {
		return nil
	}
	if f.Cutoff <= 0 || f.SamplingFreq <= 0 {
		return &ErrBadArgument{Name: "cutoff", Reason: "cutoff and sampling frequency must be positive"}
	}

	spectrum := fft.FFTReal(signal)
	binWidth := f.SamplingFreq / float64(n)
	for i := 1; i <= n/2; i++ {
		freq := float64(i) * binWidth
		if freq > f.Cutoff {
			spectrum[i] = 0
			// Mirror bin carries the conjugate
			spectrum[n-i] = 0
		}
	}

	filtered := fft.IFFT(spectrum)
	for i := range signal {
		signal[i] = real(filtered[i])
	}
	return nil
}
