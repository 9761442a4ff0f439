package cusum

import (
	"fmt"
	"math"
)

// Edge direction tags.
const (
	EdgeFalling int64 = -1
	EdgeRising  int64 = 1
)

// EventFinder walks a calibrated window, records threshold crossings
// as events, and fits CUSUM sublevels inside each one.
type EventFinder struct {
	config   Configuration
	baseline *Baseline
}

func NewEventFinder(config Configuration, baseline *Baseline) *EventFinder {
	return &EventFinder{config: config, baseline: baseline}
}

// direction returns the sign of the excursions being detected: -1 for
// blockage events below baseline, +1 for enhancements above it.
func (ef *EventFinder) direction() float64 {
	if ef.config.EventDirection > 0 {
		return 1
	}
	return -1
}

// FindEvents scans one window of calibrated samples. windowStart is
// the absolute sample index of signal[0], so recorded event ranges are
// global across the concatenated run. Events that violate the length
// bounds are kept but classified as too short or too long so that the
// host can count rejections.
func (ef *EventFinder) FindEvents(signal []float64, windowStart int64, firstIndex int64) []*Event {
	mean := ef.baseline.Mean
	stdev := ef.baseline.Stdev
	dir := ef.direction()

	threshold := mean + dir*ef.config.Threshold*stdev
	hysteresis := mean + dir*ef.config.Hysteresis*stdev

	var events []*Event
	index := firstIndex
	i := int64(0)
	n := int64(len(signal))
	for i < n {
		if dir*(signal[i]-threshold) < 0 {
			i++
			continue
		}
		start := i
		for i < n && dir*(signal[i]-hysteresis) > 0 {
			i++
		}
		if i >= n {
			// Event runs off the window; the next read picks it up.
			break
		}
		finish := i

		event := NewEvent(windowStart+start, windowStart+finish, index, stdev, mean)
		event.BaselineBefore = mean
		event.BaselineAfter = mean
		switch {
		case event.Length < ef.config.EventMinPoints:
			event.Type = ClassTooShort
		case ef.config.EventMaxPoints > 0 && event.Length > ef.config.EventMaxPoints:
			event.Type = ClassTooLong
		default:
			event.Signal = append([]float64(nil), signal[start:finish]...)
			ef.characterize(event)
			if !ef.config.SkipFit {
				ef.FitLevels(event)
			}
		}
		events = append(events, event)
		index++

		if configuration.Verbosity > 1 && logger != nil {
			message := fmt.Sprintf("Event %d: [%d, %d), length %d, class %d",
				event.Index, event.Start, event.Finish, event.Length, event.Type)
			logger.Info(message, "detector")
		}
	}
	return events
}

// characterize fills the blockage and area statistics of a detected
// event from its owned signal excerpt.
func (ef *EventFinder) characterize(e *Event) {
	if len(e.Signal) == 0 {
		return
	}
	dt := 1.0
	if ef.config.SamplingFreq > 0 {
		dt = 1.0 / ef.config.SamplingFreq
	}
	dir := ef.direction()

	var area, maxBlockage, minBlockage float64
	var maxAt, minAt int64
	maxBlockage = math.Inf(-1)
	minBlockage = math.Inf(1)
	for i, v := range e.Signal {
		blockage := dir * (v - e.LocalBaseline)
		area += blockage * dt
		if blockage > maxBlockage {
			maxBlockage = blockage
			maxAt = int64(i)
		}
		if blockage < minBlockage {
			minBlockage = blockage
			minAt = int64(i)
		}
	}
	e.Area = area
	e.AverageBlockage = area / (float64(len(e.Signal)) * dt)
	e.MaxBlockage = maxBlockage
	e.MaxLength = maxAt
	e.MinBlockage = minBlockage
	e.MinLength = minAt
}

// FitLevels runs a two-sided CUSUM over the event excerpt, appending
// an edge at every detected mean shift and a fitted level between
// consecutive edges. The decision margin is calibrated so that the
// expected run length under no shift matches the event length.
func (ef *EventFinder) FitLevels(e *Event) {
	sigma := e.LocalStdev
	if sigma < EPS || len(e.Signal) == 0 {
		e.Type = ClassBadBaseline
		return
	}

	delta := ef.config.CusumDelta
	if delta < ef.config.CusumMinStep {
		delta = ef.config.CusumMinStep
	}
	if delta < EPS {
		e.Type = ClassBadLevels
		return
	}
	mun := delta / sigma

	h := CalibrateThreshold(e.Length, sigma, mun,
		ef.config.CusumMinThreshold*sigma, ef.config.CusumMaxThreshold*sigma)
	ht := h / sigma
	e.Threshold = h
	e.Delta = delta

	drift := mun / 2.0
	var cpos, cneg float64
	var maxPos, maxNeg float64
	var maxPosAt, maxNegAt int64

	anchor := int64(0)
	var mean float64
	var count int64

	closeLevel := func(from, to int64) {
		if to <= from {
			return
		}
		segment := e.Signal[from:to]
		level := e.AddLevel(SignalAverage(segment), to-from)
		level.Stdev = math.Sqrt(SignalVariance(segment))
		ef.fillLevelStats(e, level, segment)
	}

	reset := func(at int64) {
		cpos, cneg = 0, 0
		maxPos, maxNeg = 0, 0
		maxPosAt, maxNegAt = at, at
		anchor = at
		mean = 0
		count = 0
	}
	reset(0)

	for i := int64(0); i < int64(len(e.Signal)); i++ {
		count++
		mean += (e.Signal[i] - mean) / float64(count)
		normalized := (e.Signal[i] - mean) / sigma

		cpos = math.Max(0, cpos+normalized-drift)
		cneg = math.Max(0, cneg-normalized-drift)
		if cpos > maxPos {
			maxPos = cpos
			maxPosAt = i
		}
		if cneg > maxNeg {
			maxNeg = cneg
			maxNegAt = i
		}

		if cpos <= ht && cneg <= ht {
			continue
		}

		edgeAt := maxPosAt
		edgeType := EdgeRising
		if cneg > ht {
			edgeAt = maxNegAt
			edgeType = EdgeFalling
		}
		minPoints := intmax(1, ef.config.SubeventMinPoints)
		if edgeAt-anchor < minPoints {
			edgeAt = anchor + minPoints
			if edgeAt >= int64(len(e.Signal)) {
				break
			}
		}
		e.AddEdge(e.Start+edgeAt, edgeType, sigma, mean)
		closeLevel(anchor, edgeAt)
		reset(edgeAt)
		i = edgeAt

		// The tail level after the loop still counts against the cap.
		if ef.config.MaxSublevels > 0 && int64(len(e.Levels)) >= ef.config.MaxSublevels {
			e.Type = ClassBadLevels
			return
		}
	}
	closeLevel(anchor, int64(len(e.Signal)))

	e.NumLevels = len(e.Levels)
	e.Type = ClassCusum
	ef.fitResiduals(e)
}

// fillLevelStats records per-level deviation extrema and the raw and
// fitted charge-deficit contributions.
func (ef *EventFinder) fillLevelStats(e *Event, level *CusumLevel, segment []float64) {
	dt := 1.0
	if ef.config.SamplingFreq > 0 {
		dt = 1.0 / ef.config.SamplingFreq
	}
	var maxDev float64
	var maxDevAt int64
	var rawECD float64
	for i, v := range segment {
		dev := math.Abs(v - level.Current)
		if dev > maxDev {
			maxDev = dev
			maxDevAt = int64(i)
		}
		rawECD += (e.LocalBaseline - v) * dt
	}
	level.MaxDeviation = maxDev
	level.MaxDevIndex = maxDevAt
	level.RawLevelECD = rawECD
	level.FittedLevelECD = (e.LocalBaseline - level.Current) * float64(level.Length) * dt
}

// fitResiduals derives the whole-event fit diagnostics from the level
// decomposition.
func (ef *EventFinder) fitResiduals(e *Event) {
	dt := 1.0
	if ef.config.SamplingFreq > 0 {
		dt = 1.0 / ef.config.SamplingFreq
	}
	var residual, maxDeviation, fittedArea float64
	offset := int64(0)
	dir := ef.direction()
	for _, level := range e.Levels {
		for i := int64(0); i < level.Length; i++ {
			dev := e.Signal[offset+i] - level.Current
			residual += dev * dev
			if math.Abs(dev) > maxDeviation {
				maxDeviation = math.Abs(dev)
			}
		}
		fittedArea += dir * (level.Current - e.LocalBaseline) * float64(level.Length) * dt
		offset += level.Length
	}
	if offset > 0 {
		e.Residual = math.Sqrt(residual / float64(offset))
	}
	e.MaxDeviation = maxDeviation
	e.FittedArea = fittedArea
}
