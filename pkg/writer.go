package cusum

import (
	"errors"
	"fmt"

	hdf5 "github.com/jmbenlloch/go-hdf5"
)

// Writer stores detected events, their fitted sublevels and their
// change points as extensible HDF5 tables.
type Writer struct {
	File     *hdf5.File
	Filename string

	RunGroup    *hdf5.Group
	EventsGroup *hdf5.Group

	RunInfoTable *hdf5.Dataset
	EventTable   *hdf5.Dataset
	LevelTable   *hdf5.Dataset
	EdgeTable    *hdf5.Dataset

	EvtCounter   int
	LevelCounter int
	EdgeCounter  int
}

func NewWriter(filename string) *Writer {
	// Set string size for HDF5
	hdf5.SetStringLength(STRLEN)

	writer := &Writer{}
	writer.File = openFile(filename)
	writer.Filename = filename
	writer.RunGroup = createGroup(writer.File, "Run")
	writer.EventsGroup = createGroup(writer.File, "Events")
	writer.RunInfoTable = createTable(writer.RunGroup, "runInfo", RunInfoHDF5{})
	writer.EventTable = createTable(writer.EventsGroup, "events", EventHDF5{})
	writer.LevelTable = createTable(writer.EventsGroup, "sublevels", LevelHDF5{})
	writer.EdgeTable = createTable(writer.EventsGroup, "edges", EdgeHDF5{})
	return writer
}

// WriteRunInfo records the run-level context once per output file.
func (w *Writer) WriteRunInfo(baseline *Baseline, threshold float64) {
	writeEntryToTable(w.RunInfoTable, RunInfoHDF5{
		datafile:    convertToHdf5String(configuration.FilePath),
		samplerate:  configuration.SamplingFreq,
		read_length: configuration.ReadLength,
		baseline:    baseline.Mean,
		stdev:       baseline.Stdev,
		threshold:   threshold,
	}, 0)
}

// WriteEvent appends one event row plus one row per fitted level and
// per recorded edge.
func (w *Writer) WriteEvent(event *Event) {
	writeEntryToTable(w.EventTable, EventHDF5{
		evt_number:   int32(event.Index),
		start:        event.Start,
		finish:       event.Finish,
		length:       event.Length,
		class:        int32(event.Type),
		area:         event.Area,
		fitted_area:  event.FittedArea,
		avg_blockage: event.AverageBlockage,
		max_blockage: event.MaxBlockage,
		baseline:     event.LocalBaseline,
		stdev:        event.LocalStdev,
		threshold:    event.Threshold,
		residual:     event.Residual,
		num_levels:   int32(event.NumLevels),
	}, w.EvtCounter)
	w.EvtCounter++

	if len(event.Levels) > 0 {
		levels := make([]LevelHDF5, len(event.Levels))
		for i, level := range event.Levels {
			levels[i] = LevelHDF5{
				evt_number:    int32(event.Index),
				level:         int32(i),
				current:       level.Current,
				stdev:         level.Stdev,
				max_deviation: level.MaxDeviation,
				raw_ecd:       level.RawLevelECD,
				fitted_ecd:    level.FittedLevelECD,
				length:        level.Length,
			}
		}
		writeArrayToTable(w.LevelTable, &levels, w.LevelCounter)
		w.LevelCounter += len(levels)
	}

	if len(event.Edges) > 0 {
		edges := make([]EdgeHDF5, len(event.Edges))
		for i, edge := range event.Edges {
			edges[i] = EdgeHDF5{
				evt_number: int32(event.Index),
				location:   edge.Location,
				edge_type:  int32(edge.Type),
				stdev:      edge.LocalStdev,
				baseline:   edge.LocalBaseline,
			}
		}
		writeArrayToTable(w.EdgeTable, &edges, w.EdgeCounter)
		w.EdgeCounter += len(edges)
	}
}

func (w *Writer) Close() error {
	var errs []error

	if err := w.RunInfoTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing run info table: %w", err))
	}
	if err := w.EventTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing event table: %w", err))
	}
	if err := w.LevelTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing sublevel table: %w", err))
	}
	if err := w.EdgeTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing edge table: %w", err))
	}
	if err := w.RunGroup.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing run group: %w", err))
	}
	if err := w.EventsGroup.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing events group: %w", err))
	}
	if err := w.File.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing file: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
