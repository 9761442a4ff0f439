package cusum

import "golang.org/x/exp/slices"

// EventClass classifies how an event was fitted, or why it was
// rejected.
type EventClass int

const (
	ClassCusum EventClass = iota
	ClassStepResponse
	ClassBadBaseline
	ClassTooLong
	ClassTooShort
	ClassBadLevels
	ClassBadTrace
	ClassBadPadding
	ClassFitStep
	ClassOverfitted
	ClassStepZero
	ClassStepDegenerate
	ClassMaxIters
)

// Edge is one change-point sample with the local noise and baseline
// estimates in effect at its location.
type Edge struct {
	Location      int64
	Type          int64
	LocalStdev    float64
	LocalBaseline float64
}

// CusumLevel is one fitted constant-current plateau between two
// consecutive edges.
type CusumLevel struct {
	Current        float64
	Stdev          float64
	MaxDeviation   float64
	MaxDevIndex    int64
	RawLevelECD    float64
	FittedLevelECD float64
	Length         int64
}

// Event is one detected translocation: its sample range, blockage and
// area statistics, fit diagnostics, the signal excerpts it owns, and
// the edge and level sublists describing its internal structure.
type Event struct {
	Index  int64
	Start  int64
	Finish int64
	Length int64
	Type   EventClass

	Area            float64
	FittedArea      float64
	BaselineBefore  float64
	BaselineAfter   float64
	AverageBlockage float64
	MaxBlockage     float64
	MaxLength       int64
	MinBlockage     float64
	MinLength       int64

	Signal         []float64
	PaddedSignal   []float64
	FilteredSignal []float64
	RawSignal      []float64

	PaddingBefore int64
	PaddingAfter  int64
	ExtraBefore   int64
	ExtraAfter    int64

	NumLevels      int
	Threshold      float64
	Delta          float64
	RC1            float64
	RC2            float64
	Residual       float64
	MaxDeviation   float64
	LocalBaseline  float64
	LocalStdev     float64
	IntraCrossings int64

	Edges      []Edge
	IntraEdges []Edge
	Levels     []CusumLevel
}

// NewEvent populates an event for a freshly detected excursion,
// clearing all transient fit fields and owned sublists.
func NewEvent(start, finish, index int64, localStdev, localBaseline float64) *Event {
	return &Event{
		Index:         index,
		Start:         start,
		Finish:        finish,
		Length:        finish - start,
		LocalStdev:    localStdev,
		LocalBaseline: localBaseline,
	}
}

// AddEdge appends a change point to the event's edge list.
func (e *Event) AddEdge(location, edgeType int64, stdev, baseline float64) {
	e.Edges = append(e.Edges, Edge{
		Location:      location,
		Type:          edgeType,
		LocalStdev:    stdev,
		LocalBaseline: baseline,
	})
}

// AddIntraEdge appends a change point to the sub-event refinement
// list.
func (e *Event) AddIntraEdge(location, edgeType int64, stdev, baseline float64) {
	e.IntraEdges = append(e.IntraEdges, Edge{
		Location:      location,
		Type:          edgeType,
		LocalStdev:    stdev,
		LocalBaseline: baseline,
	})
}

// AddLevel appends a fitted plateau to the event's level list.
func (e *Event) AddLevel(current float64, length int64) *CusumLevel {
	e.Levels = append(e.Levels, CusumLevel{Current: current, Length: length})
	return &e.Levels[len(e.Levels)-1]
}

// CountEdges returns the number of recorded change points, used to
// size downstream fitting-result arrays.
func (e *Event) CountEdges() int64 {
	return int64(len(e.Edges))
}

// Reset releases everything the event owns: signal excerpts first,
// then the edge, intra-edge and level lists. Resetting a
// never-populated event is a no-op.
func (e *Event) Reset() {
	e.RawSignal = nil
	e.PaddedSignal = nil
	e.FilteredSignal = nil
	e.Signal = nil
	e.Edges = nil
	e.IntraEdges = nil
	e.Levels = nil
}

// Durations accumulates scalar dwell times over detected events.
type Durations struct {
	values []float64
}

// Add appends one duration.
func (d *Durations) Add(duration float64) {
	d.values = append(d.values, duration)
}

// Values returns the accumulated durations in append order.
func (d *Durations) Values() []float64 {
	return d.values
}

// Len returns the number of accumulated durations.
func (d *Durations) Len() int {
	return len(d.values)
}

// Summary reports min, max, mean and median of the accumulated
// durations. All four are zero when nothing was accumulated.
func (d *Durations) Summary() (min, max, mean, median float64) {
	if len(d.values) == 0 {
		return 0, 0, 0, 0
	}
	sorted := slices.Clone(d.values)
	slices.Sort(sorted)
	min = sorted[0]
	max = sorted[len(sorted)-1]
	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean = sum / float64(len(sorted))
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		median = sorted[mid]
	}
	return min, max, mean, median
}
