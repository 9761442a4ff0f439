package cusum

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRawFile(t *testing.T, raw []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace.bin")
	require.NoError(t, os.WriteFile(path, raw, 0644))
	return path
}

func TestSendWindowsToWorkers(t *testing.T) {
	jobs := make(chan WindowJob, 10)
	n := SendWindowsToWorkers(jobs, 0, 1050, 500)
	assert.Equal(t, 3, n)

	first := <-jobs
	assert.Equal(t, WindowJob{Window: 0, Start: 0, Length: 500}, first)
	second := <-jobs
	assert.Equal(t, WindowJob{Window: 1, Start: 500, Length: 500}, second)
	last := <-jobs
	assert.Equal(t, WindowJob{Window: 2, Start: 1000, Length: 50}, last)

	_, open := <-jobs
	assert.False(t, open)
}

func TestSendWindowsToWorkersRejectsNonpositiveLength(t *testing.T) {
	for _, readLength := range []int64{0, -100} {
		jobs := make(chan WindowJob, 1)
		n := SendWindowsToWorkers(jobs, 0, 1000, readLength)
		assert.Equal(t, 0, n)

		// No jobs were produced and the channel is closed.
		_, open := <-jobs
		assert.False(t, open)
	}
}

func TestCollectResultsRestoresWindowOrder(t *testing.T) {
	results := make(chan WindowResult, 2)
	results <- WindowResult{
		Window: 1,
		Start:  500,
		Events: []*Event{NewEvent(510, 520, 0, 1, 100)},
	}
	results <- WindowResult{
		Window: 0,
		Start:  0,
		Events: []*Event{NewEvent(10, 20, 0, 1, 100), NewEvent(30, 40, 1, 1, 100)},
	}

	events, err := CollectResults(results, 2)
	require.NoError(t, err)
	require.Len(t, events, 3)

	// Events are renumbered sequentially in window order.
	assert.Equal(t, int64(0), events[0].Index)
	assert.Equal(t, int64(10), events[0].Start)
	assert.Equal(t, int64(1), events[1].Index)
	assert.Equal(t, int64(30), events[1].Start)
	assert.Equal(t, int64(2), events[2].Index)
	assert.Equal(t, int64(510), events[2].Start)
}

func TestCollectResultsReportsFirstError(t *testing.T) {
	results := make(chan WindowResult, 2)
	results <- WindowResult{Window: 0}
	results <- WindowResult{Window: 1, Err: &ErrBadData{Reason: "truncated"}}

	events, err := CollectResults(results, 2)
	require.Error(t, err)
	assert.Equal(t, ErrData, Classify(err))
	assert.Empty(t, events)
}

func TestWorkerProcessesWindows(t *testing.T) {
	dec := testBinaryDecoder()
	registry := NewFileRegistry(FormatBinary, dec)

	// One blockage dipping from 100 to 90 inside the second window.
	raw := make([]byte, 2*200)
	for i := 0; i < 200; i++ {
		value := uint16(100)
		if i >= 130 && i < 150 {
			value = 90
		}
		binary.LittleEndian.PutUint16(raw[2*i:], value)
	}
	path := writeRawFile(t, raw)
	_, err := registry.AddFile(path, "")
	require.NoError(t, err)

	config := detectorConfig()
	config.ReadLength = 100
	config.DataType = FormatBinary
	SetConfiguration(config)
	defer SetConfiguration(Configuration{})

	baseline := overriddenBaseline(t, config, 100, 1)

	jobs := make(chan WindowJob, 10)
	results := make(chan WindowResult, 10)
	go Worker(1, registry, baseline, 0, dec, nil, jobs, results)
	numJobs := SendWindowsToWorkers(jobs, 0, 200, 100)

	events, err := CollectResults(results, numJobs)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, int64(130), events[0].Start)
	assert.Equal(t, int64(150), events[0].Finish)
	assert.Equal(t, int64(0), events[0].Index)
}
