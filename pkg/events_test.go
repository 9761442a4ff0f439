package cusum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventCountEdges(t *testing.T) {
	event := NewEvent(100, 200, 0, 1.0, 50.0)
	assert.Equal(t, int64(0), event.CountEdges())

	for i := int64(0); i < 5; i++ {
		event.AddEdge(110+i*10, EdgeFalling, 1.0, 50.0)
	}
	assert.Equal(t, int64(5), event.CountEdges())
}

func TestEventAddLevelReturnsAppended(t *testing.T) {
	event := NewEvent(0, 10, 0, 1.0, 50.0)
	level := event.AddLevel(42.0, 7)
	level.Stdev = 0.5

	require.Len(t, event.Levels, 1)
	assert.Equal(t, 42.0, event.Levels[0].Current)
	assert.Equal(t, int64(7), event.Levels[0].Length)
	assert.Equal(t, 0.5, event.Levels[0].Stdev)
}

func TestEventResetNoOpWhenEmpty(t *testing.T) {
	event := NewEvent(0, 10, 0, 1.0, 50.0)
	event.Reset()
	assert.Nil(t, event.Signal)
	assert.Nil(t, event.Edges)
}

func TestEventResetDropsOwnedState(t *testing.T) {
	event := NewEvent(0, 10, 0, 1.0, 50.0)
	event.Signal = make([]float64, 10)
	event.RawSignal = make([]float64, 10)
	event.PaddedSignal = make([]float64, 12)
	event.FilteredSignal = make([]float64, 10)
	event.AddEdge(3, EdgeFalling, 1.0, 50.0)
	event.AddIntraEdge(5, EdgeRising, 1.0, 50.0)
	event.AddLevel(42.0, 5)

	event.Reset()

	assert.Nil(t, event.Signal)
	assert.Nil(t, event.RawSignal)
	assert.Nil(t, event.PaddedSignal)
	assert.Nil(t, event.FilteredSignal)
	assert.Nil(t, event.Edges)
	assert.Nil(t, event.IntraEdges)
	assert.Nil(t, event.Levels)
	assert.Equal(t, int64(0), event.CountEdges())
}

func TestDurationsSummary(t *testing.T) {
	d := &Durations{}
	_, _, mean, median := d.Summary()
	assert.Equal(t, 0.0, mean)
	assert.Equal(t, 0.0, median)

	for _, v := range []float64{5, 1, 3, 2, 4} {
		d.Add(v)
	}
	require.Equal(t, 5, d.Len())

	min, max, mean, median := d.Summary()
	assert.Equal(t, 1.0, min)
	assert.Equal(t, 5.0, max)
	assert.Equal(t, 3.0, mean)
	assert.Equal(t, 3.0, median)

	// Append order is preserved.
	assert.Equal(t, []float64{5, 1, 3, 2, 4}, d.Values())

	d.Add(6)
	_, _, _, median = d.Summary()
	assert.Equal(t, 3.5, median)
}
