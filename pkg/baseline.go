package cusum

import (
	"fmt"
	"math"
)

// Baseline models the open-channel current as a fixed-bin histogram
// over the configured [baseline_min, baseline_max) range, with summary
// statistics derived from the accumulated counts.
type Baseline struct {
	Histogram []float64
	Current   []float64
	NumBins   int64

	BaselineMin float64
	BaselineMax float64
	Range       float64
	Delta       float64

	Mean      float64
	Stdev     float64
	Amplitude float64
}

// NewBaseline builds the bin geometry for one analysis window. The bin
// count follows Rice's rule scaled by two: floor(2 * readlength^(1/3)).
func NewBaseline(config Configuration) (*Baseline, error) {
	if config.BaselineMax <= config.BaselineMin {
		return nil, &ErrBadArgument{Name: "baseline_max",
			Reason: fmt.Sprintf("range [%g, %g) is empty", config.BaselineMin, config.BaselineMax)}
	}
	baseline := &Baseline{
		BaselineMin: config.BaselineMin,
		BaselineMax: config.BaselineMax,
		Range:       config.BaselineMax - config.BaselineMin,
		NumBins:     int64(2 * math.Cbrt(float64(config.ReadLength))),
	}
	baseline.Delta = baseline.Range / float64(baseline.NumBins)
	baseline.Histogram = make([]float64, baseline.NumBins)
	baseline.Current = make([]float64, baseline.NumBins)
	for i := int64(0); i < baseline.NumBins; i++ {
		baseline.Current[i] = baseline.BaselineMin + float64(i)*baseline.Delta
	}
	return baseline, nil
}

// Accumulate adds one sample to the histogram. Samples outside the
// configured range are dropped.
func (b *Baseline) Accumulate(sample float64) {
	if sample < b.BaselineMin || sample >= b.BaselineMax {
		return
	}
	bin := int64((sample - b.BaselineMin) / b.Delta)
	if bin >= b.NumBins {
		bin = b.NumBins - 1
	}
	b.Histogram[bin]++
}

// AccumulateSignal adds every sample of one window to the histogram.
func (b *Baseline) AccumulateSignal(signal []float64) {
	for _, v := range signal {
		b.Accumulate(v)
	}
}

// ComputeStats derives mean, stdev and the dominant-bin amplitude from
// the accumulated counts.
func (b *Baseline) ComputeStats() {
	var total, mean float64
	for i, count := range b.Histogram {
		total += count
		mean += count * b.Current[i]
	}
	if total == 0 {
		b.Mean, b.Stdev, b.Amplitude = 0, 0, 0
		return
	}
	mean /= total

	var variance float64
	for i, count := range b.Histogram {
		variance += count * (b.Current[i] - mean) * (b.Current[i] - mean)
	}
	variance /= total

	b.Mean = mean
	b.Stdev = math.Sqrt(variance)
	b.Amplitude = b.Histogram[LocateMax(b.Histogram)]
}

// Override replaces the derived statistics with a manually supplied
// baseline, used when the histogram estimate is not trusted.
func (b *Baseline) Override(mean, stdev float64) {
	b.Mean = mean
	b.Stdev = stdev
}

// ARL is the average-run-length residual for a CUSUM detector with
// decision margin h, noise scale sigma and normalized mean shift mun.
// Callers search for the h that drives the residual to zero for a
// target mean run length.
func ARL(length int64, sigma, mun, h float64) float64 {
	return (math.Exp(-2.0*mun*(h/sigma+1.166))-1.0+2.0*mun*(h/sigma+1.166))/(2.0*mun*mun) - float64(length)
}

// CalibrateThreshold searches [hmin, hmax] for the decision margin
// whose expected run length matches the target, by bisection on the
// ARL residual. ARL is monotone in h, so the bracket only needs to
// straddle the root.
func CalibrateThreshold(length int64, sigma, mun, hmin, hmax float64) float64 {
	lo, hi := hmin, hmax
	if ARL(length, sigma, mun, lo) > 0 {
		return lo
	}
	if ARL(length, sigma, mun, hi) < 0 {
		return hi
	}
	for i := 0; i < 200; i++ {
		mid := 0.5 * (lo + hi)
		if ARL(length, sigma, mun, mid) < 0 {
			lo = mid
		} else {
			hi = mid
		}
		if hi-lo < EPS {
			break
		}
	}
	return 0.5 * (lo + hi)
}
