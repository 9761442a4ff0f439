package main

import (
	"encoding/json"
	"fmt"
	"os"

	cusum "github.com/poriscope/cusum_go/pkg"
)

func LoadConfiguration(filename string) (cusum.Configuration, error) {
	var config cusum.Configuration

	// Set default values
	config.Verbosity = 0
	config.Start = 0
	config.Finish = 0
	config.ReadLength = 500000
	config.SamplingFreq = 4166666
	config.Threshold = 5
	config.Hysteresis = 1
	config.EventMinPoints = 5
	config.EventMaxPoints = 0
	config.EventDirection = -1
	config.BaselineMin = 0
	config.BaselineMax = 300
	config.CusumMinThreshold = 3
	config.CusumMaxThreshold = 10
	config.CusumDelta = 0
	config.CusumMinStep = 3
	config.SubeventMinPoints = 5
	config.MaxSublevels = 100
	config.DataType = cusum.FormatChimera
	config.NArrays = 1
	config.ArrayIndex = 0
	config.SampleSize = 2
	config.SampleScale = 1
	config.CompressionLevel = 4
	config.NoDB = true
	config.Host = "localhost"
	config.User = "poriscope"
	config.Passwd = "readonly"
	config.DBName = "cusum"
	config.NumWorkers = 1

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = json.Unmarshal(data, &config)
	if err != nil {
		return config, err
	}
	return config, nil
}

func printConfiguration(config cusum.Configuration, logger Logger) {
	logger.Info(fmt.Sprintf("File path: %s", config.FilePath), "config")
	logger.Info(fmt.Sprintf("Settings file: %s", config.SettingsFile), "config")
	logger.Info(fmt.Sprintf("File out: %s", config.FileOut), "config")
	logger.Info(fmt.Sprintf("Data type: %s", config.DataType), "config")
	logger.Info(fmt.Sprintf("Start: %d", config.Start), "config")
	logger.Info(fmt.Sprintf("Finish: %d", config.Finish), "config")
	logger.Info(fmt.Sprintf("Read length: %d", config.ReadLength), "config")
	logger.Info(fmt.Sprintf("Sampling frequency: %g", config.SamplingFreq), "config")
	logger.Info(fmt.Sprintf("Use data filter: %t", config.UseDataFilter), "config")
	logger.Info(fmt.Sprintf("Data cutoff: %g", config.DataCutoff), "config")
	logger.Info(fmt.Sprintf("Threshold: %g", config.Threshold), "config")
	logger.Info(fmt.Sprintf("Hysteresis: %g", config.Hysteresis), "config")
	logger.Info(fmt.Sprintf("Event direction: %d", config.EventDirection), "config")
	logger.Info(fmt.Sprintf("Event min points: %d", config.EventMinPoints), "config")
	logger.Info(fmt.Sprintf("Event max points: %d", config.EventMaxPoints), "config")
	logger.Info(fmt.Sprintf("Baseline range: [%g, %g]", config.BaselineMin, config.BaselineMax), "config")
	logger.Info(fmt.Sprintf("Manual baseline override: %t", config.ManualBaselineOverride), "config")
	logger.Info(fmt.Sprintf("CUSUM thresholds: [%g, %g]", config.CusumMinThreshold, config.CusumMaxThreshold), "config")
	logger.Info(fmt.Sprintf("CUSUM delta: %g", config.CusumDelta), "config")
	logger.Info(fmt.Sprintf("CUSUM min step: %g", config.CusumMinStep), "config")
	logger.Info(fmt.Sprintf("Subevent min points: %d", config.SubeventMinPoints), "config")
	logger.Info(fmt.Sprintf("Max sublevels: %d", config.MaxSublevels), "config")
	logger.Info(fmt.Sprintf("Skip fit: %t", config.SkipFit), "config")
	logger.Info(fmt.Sprintf("Compression level: %d", config.CompressionLevel), "config")
	logger.Info(fmt.Sprintf("No DB: %t", config.NoDB), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	logger.Info(fmt.Sprintf("Number of workers: %d", config.NumWorkers), "config")
}
