package cusum

import (
	"fmt"
	"sort"
)

// WindowJob is one analysis window of the concatenated run.
type WindowJob struct {
	Window int
	Start  int64
	Length int64
}

// WindowResult carries the events detected in one window. Err is set
// when the window could not be read or decoded.
type WindowResult struct {
	Window int
	Start  int64
	Events []*Event
	Err    error
}

// Worker processes analysis windows. Each worker owns its signal
// buffer and event finder, so independent windows decode and fit in
// parallel without shared state.
func Worker(id int, registry *FileRegistry, baseline *Baseline, filterPadding int64,
	bincfg *BinaryDecoder, dataFilter Filter, jobs <-chan WindowJob, results chan<- WindowResult) {
	defer func() {
		if r := recover(); r != nil {
			message := fmt.Sprintf("worker %d recovered from panic: %v", id, r)
			if logger != nil {
				logger.Error(message)
			}
			results <- WindowResult{Err: &ErrBadData{Reason: message}}
		}
	}()

	sig, err := NewSignalBuffer(configuration, filterPadding, bincfg)
	if err != nil {
		results <- WindowResult{Err: err}
		return
	}
	finder := NewEventFinder(configuration, baseline)

	for job := range jobs {
		read, err := registry.ReadWindow(sig, job.Start, job.Length)
		if err != nil {
			results <- WindowResult{Window: job.Window, Start: job.Start, Err: err}
			continue
		}
		window := sig.Signal[:read]
		if dataFilter != nil {
			if err := dataFilter.Apply(window); err != nil {
				results <- WindowResult{Window: job.Window, Start: job.Start, Err: err}
				continue
			}
		}
		events := finder.FindEvents(window, job.Start, 0)
		results <- WindowResult{Window: job.Window, Start: job.Start, Events: events}
	}
}

// SendWindowsToWorkers splits the configured read range into
// readlength-sized jobs and closes the channel when done. It returns
// the number of jobs sent.
func SendWindowsToWorkers(jobs chan<- WindowJob, start, finish, readLength int64) int {
	window := 0
	if readLength <= 0 {
		close(jobs)
		return 0
	}
	for pos := start; pos < finish; pos += readLength {
		length := readLength
		if pos+length > finish {
			length = finish - pos
		}
		jobs <- WindowJob{Window: window, Start: pos, Length: length}
		window++
	}
	close(jobs)
	return window
}

// CollectResults gathers one result per job, restores window order and
// renumbers events sequentially across the run. The first read error
// is returned after all workers drain.
func CollectResults(results <-chan WindowResult, numJobs int) ([]*Event, error) {
	gathered := make([]WindowResult, 0, numJobs)
	var firstErr error
	for i := 0; i < numJobs; i++ {
		result := <-results
		if result.Err != nil && firstErr == nil {
			firstErr = result.Err
		}
		gathered = append(gathered, result)
	}
	sort.Slice(gathered, func(i, j int) bool {
		return gathered[i].Window < gathered[j].Window
	})

	var events []*Event
	index := int64(0)
	for _, result := range gathered {
		for _, event := range result.Events {
			event.Index = index
			events = append(events, event)
			index++
		}
	}
	return events, firstErr
}
