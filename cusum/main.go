package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	sqlx "github.com/jmoiron/sqlx"
	cusum "github.com/poriscope/cusum_go/pkg"
)

var dbConn *sqlx.DB
var configuration cusum.Configuration

var (
	logger         Logger
	VerbosityLevel int
)

func init() {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	handlerStdOut := NewHandler(os.Stdout, opts)
	handlerStdErr := slog.NewJSONHandler(os.Stderr, opts)
	logger = Logger{
		InfoLog:  slog.New(handlerStdOut),
		ErrorLog: slog.New(handlerStdErr),
	}
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	flag.Parse()

	var err error
	configuration, err = LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		return
	}
	cusum.SetConfiguration(configuration)
	cusum.SetLogger(logger)

	VerbosityLevel = configuration.Verbosity
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Reading configuration file: %s", *configFilename)
		logger.Info(message, "main")
		printConfiguration(configuration, logger)
	}

	if err := cusum.CheckBits(); err != nil {
		message := fmt.Errorf("Unsupported float layout: %w", err)
		logger.Error(message.Error())
		return
	}

	var bincfg *cusum.BinaryDecoder
	if configuration.DataType == cusum.FormatBinary {
		bincfg, err = cusum.ResolveDecoder(configuration)
		if err != nil {
			message := fmt.Errorf("Error resolving sample format: %w", err)
			logger.Error(message.Error())
			return
		}
	}

	registry := cusum.NewFileRegistry(configuration.DataType, bincfg)
	if _, err := registry.AddFile(configuration.FilePath, configuration.SettingsFile); err != nil {
		message := fmt.Errorf("Error registering data file: %w", err)
		logger.Error(message.Error())
		return
	}
	defer registry.Close()

	start := configuration.Start
	finish := configuration.Finish
	if total := registry.TotalLength(); finish <= 0 || finish > total {
		finish = total
	}
	if start < 0 || start >= finish {
		message := fmt.Sprintf("Empty read range [%d, %d)", start, finish)
		logger.Error(message)
		return
	}
	if configuration.ReadLength <= 0 {
		message := fmt.Sprintf("Invalid read_length %d, must be positive", configuration.ReadLength)
		logger.Error(message)
		return
	}
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Processing samples [%d, %d) of %d", start, finish, registry.TotalLength())
		logger.Info(message, "main")
	}

	var dataFilter cusum.Filter
	if configuration.UseDataFilter {
		dataFilter = cusum.NewFFTLowpass(configuration.DataCutoff, configuration.SamplingFreq)
	}

	baseline, err := cusum.NewBaseline(configuration)
	if err != nil {
		message := fmt.Errorf("Error building baseline histogram: %w", err)
		logger.Error(message.Error())
		return
	}
	if configuration.ManualBaselineOverride {
		baseline.Override(configuration.ManualBaseline, configuration.ManualBaselineStd)
	} else {
		if err := estimateBaseline(registry, baseline, dataFilter, bincfg, start, finish); err != nil {
			message := fmt.Errorf("Error estimating baseline: %w", err)
			logger.Error(message.Error())
			return
		}
	}
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Baseline: %g pA, stdev %g pA", baseline.Mean, baseline.Stdev)
		logger.Info(message, "main")
	}

	detectionThreshold := baseline.Mean - configuration.Threshold*baseline.Stdev
	if configuration.EventDirection > 0 {
		detectionThreshold = baseline.Mean + configuration.Threshold*baseline.Stdev
	}

	begin := time.Now()
	numWorkers := configuration.NumWorkers
	if numWorkers < 1 {
		numWorkers = 1
	}
	jobs := make(chan cusum.WindowJob, 100)
	results := make(chan cusum.WindowResult, 100)
	for w := 1; w <= numWorkers; w++ {
		go cusum.Worker(w, registry, baseline, 0, bincfg, dataFilter, jobs, results)
	}
	go cusum.SendWindowsToWorkers(jobs, start, finish, configuration.ReadLength)

	numJobs := countWindows(start, finish, configuration.ReadLength)
	events, err := cusum.CollectResults(results, numJobs)
	if err != nil {
		message := fmt.Errorf("error processing window: %w", err)
		logger.Error(message.Error())
	}
	fmt.Println("Total events detected: ", len(events))

	writer := cusum.NewWriter(configuration.FileOut)
	writer.WriteRunInfo(baseline, detectionThreshold)
	durations := &cusum.Durations{}
	for _, event := range events {
		writer.WriteEvent(event)
		if event.Type == cusum.ClassCusum {
			dwell := float64(event.Length) / configuration.SamplingFreq * cusum.SecondsToMicroseconds
			durations.Add(dwell)
		}
	}
	if err := writer.Close(); err != nil {
		message := fmt.Errorf("Error closing output file: %w", err)
		logger.Error(message.Error())
	}

	if !configuration.NoDB {
		dbConn, err = cusum.ConnectToDatabase(configuration.User, configuration.Passwd, configuration.Host, configuration.DBName)
		if err != nil {
			message := fmt.Errorf("Error connection to database: %w", err)
			logger.Error(message.Error())
			return
		}
		defer dbConn.Close()

		catalog := cusum.NewRunCatalog(dbConn)
		if err := catalog.EnsureSchema(); err != nil {
			message := fmt.Errorf("Error creating catalog tables: %w", err)
			logger.Error(message.Error())
			return
		}
		runID, err := catalog.InsertRun(configuration.FilePath, baseline, detectionThreshold)
		if err != nil {
			message := fmt.Errorf("Error recording run: %w", err)
			logger.Error(message.Error())
			return
		}
		if err := catalog.InsertEvents(runID, events); err != nil {
			message := fmt.Errorf("Error recording events: %w", err)
			logger.Error(message.Error())
			return
		}
	}

	if durations.Len() > 0 {
		min, max, mean, median := durations.Summary()
		fmt.Printf("Dwell times (us): min %.2f, max %.2f, mean %.2f, median %.2f\n", min, max, mean, median)
	}

	duration := time.Since(begin)
	fmt.Printf("Total time: %d ms\n", duration.Milliseconds())
}

// estimateBaseline makes a sequential pass over the read range and
// fills the baseline histogram from the calibrated signal.
func estimateBaseline(registry *cusum.FileRegistry, baseline *cusum.Baseline,
	dataFilter cusum.Filter, bincfg *cusum.BinaryDecoder, start, finish int64) error {
	sig, err := cusum.NewSignalBuffer(configuration, 0, bincfg)
	if err != nil {
		return err
	}
	begin := time.Now()
	for pos := start; pos < finish; {
		length := configuration.ReadLength
		if pos+length > finish {
			length = finish - pos
		}
		read, err := registry.ReadWindow(sig, pos, length)
		if err != nil {
			return err
		}
		if read == 0 {
			break
		}
		window := sig.Signal[:read]
		if dataFilter != nil {
			if err := dataFilter.Apply(window); err != nil {
				return err
			}
		}
		baseline.AccumulateSignal(window)
		pos += read
		if VerbosityLevel > 0 {
			cusum.Progressbar(pos-start, finish-start, "estimating baseline", time.Since(begin).Seconds())
		}
	}
	if VerbosityLevel > 0 {
		fmt.Println()
	}
	baseline.ComputeStats()
	return nil
}

func countWindows(start, finish, readLength int64) int {
	if readLength <= 0 {
		return 0
	}
	return int((finish - start + readLength - 1) / readLength)
}
