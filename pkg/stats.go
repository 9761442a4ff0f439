package cusum

import (
	"fmt"
	"os"
)

// EPS is the tolerance used when comparing currents to zero.
const EPS = 1e-10

// Unit conversions used throughout the analysis.
const (
	SecondsToMicroseconds = 1e6
	AmpsToPicoamps        = 1e12
)

// Signum returns the sign of num, treating values within EPS of zero
// as zero.
func Signum(num float64) int {
	if num > EPS {
		return 1
	}
	if num < -EPS {
		return -1
	}
	return 0
}

func intmin(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func intmax(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// SignalMax returns the largest value in signal.
func SignalMax(signal []float64) float64 {
	maximum := signal[0]
	for _, v := range signal {
		if v > maximum {
			maximum = v
		}
	}
	return maximum
}

// SignalMin returns the smallest (most negative) value in signal.
func SignalMin(signal []float64) float64 {
	minimum := signal[0]
	for _, v := range signal {
		if v < minimum {
			minimum = v
		}
	}
	return minimum
}

// SignalAverage returns the mean of signal.
func SignalAverage(signal []float64) float64 {
	average := 0.0
	for _, v := range signal {
		average += v
	}
	return average / float64(len(signal))
}

// SignalExtreme returns the largest excursion of signal in the given
// direction: sign = 1 finds the maximum, sign = -1 the magnitude of
// the minimum.
func SignalExtreme(signal []float64, sign float64) float64 {
	extreme := 0.0
	for _, v := range signal {
		if v*sign > extreme {
			extreme = v * sign
		}
	}
	return extreme
}

// SignalVariance returns the sample variance of signal. Fewer than two
// samples have zero variance.
func SignalVariance(signal []float64) float64 {
	if len(signal) < 2 {
		return 0
	}
	average := SignalAverage(signal)
	variance := 0.0
	for _, v := range signal {
		variance += (v - average) * (v - average)
	}
	return variance / float64(len(signal)-1)
}

// LocateMin returns the index of the smallest value in signal.
func LocateMin(signal []float64) int64 {
	minval := signal[0]
	location := int64(0)
	for i, v := range signal {
		if v < minval {
			minval = v
			location = int64(i)
		}
	}
	return location
}

// LocateMax returns the index of the largest value in signal.
func LocateMax(signal []float64) int64 {
	maxval := signal[0]
	location := int64(0)
	for i, v := range signal {
		if v > maxval {
			maxval = v
			location = int64(i)
		}
	}
	return location
}

// InvertMatrix inverts a 3x3 matrix, used for local quadratic baseline
// fits. The caller guarantees the matrix is non-singular.
func InvertMatrix(m [3][3]float64) [3][3]float64 {
	det := m[0][0]*(m[1][1]*m[2][2]-m[2][1]*m[1][2]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])

	invdet := 1.0 / det

	var inverse [3][3]float64
	inverse[0][0] = (m[1][1]*m[2][2] - m[2][1]*m[1][2]) * invdet
	inverse[0][1] = (m[0][2]*m[2][1] - m[0][1]*m[2][2]) * invdet
	inverse[0][2] = (m[0][1]*m[1][2] - m[0][2]*m[1][1]) * invdet
	inverse[1][0] = (m[1][2]*m[2][0] - m[1][0]*m[2][2]) * invdet
	inverse[1][1] = (m[0][0]*m[2][2] - m[0][2]*m[2][0]) * invdet
	inverse[1][2] = (m[1][0]*m[0][2] - m[0][0]*m[1][2]) * invdet
	inverse[2][0] = (m[1][0]*m[2][1] - m[2][0]*m[1][1]) * invdet
	inverse[2][1] = (m[2][0]*m[0][1] - m[0][0]*m[2][1]) * invdet
	inverse[2][2] = (m[0][0]*m[1][1] - m[1][0]*m[0][1]) * invdet
	return inverse
}

// Progressbar prints a single-line progress report with an ETA derived
// from the elapsed time so far.
func Progressbar(pos, finish int64, msg string, elapsed float64) {
	ratio := float64(pos) / float64(finish)
	remaining := 0.0
	if pos > 0 {
		remaining = elapsed * float64(finish-pos) / float64(pos)
	}

	hours := int64(remaining) / 3600
	rhours := int64(remaining) % 3600
	minutes := rhours / 60
	seconds := rhours % 60
	fmt.Fprintf(os.Stdout, "%3d%%\t%02d:%02d:%02d remaining\t%s       \r",
		int(ratio*100), hours, minutes, seconds, msg)
}
