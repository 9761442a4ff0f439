package cusum

type Configuration struct {
	FilePath     string `json:"file_path"`
	SettingsFile string `json:"settings_file"`
	FileOut      string `json:"file_out"`
	Verbosity    int    `json:"verbosity"`

	// Read window
	Start      int64 `json:"start"`
	Finish     int64 `json:"finish"`
	ReadLength int64 `json:"read_length"`

	// Filter stages. Orders must be even.
	UseDataFilter  bool    `json:"use_data_filter"`
	UseEventFilter bool    `json:"use_event_filter"`
	DataCutoff     float64 `json:"data_cutoff"`
	EventCutoff    float64 `json:"event_cutoff"`
	SamplingFreq   float64 `json:"sampling_freq"`
	DataOrder      int64   `json:"data_order"`
	EventOrder     int64   `json:"event_order"`

	// Detection
	Threshold      float64 `json:"threshold"`
	Hysteresis     float64 `json:"hysteresis"`
	PaddingWait    int64   `json:"padding_wait"`
	EventMinPoints int64   `json:"event_minpoints"`
	EventMaxPoints int64   `json:"event_maxpoints"`
	EventDirection int     `json:"event_direction"`

	// Baseline
	BaselineMin            float64 `json:"baseline_min"`
	BaselineMax            float64 `json:"baseline_max"`
	ManualBaselineOverride bool    `json:"manual_baseline_override"`
	ManualBaseline         float64 `json:"manual_baseline"`
	ManualBaselineStd      float64 `json:"manual_baseline_std"`

	// CUSUM fitting
	CusumMinThreshold float64 `json:"cusum_min_threshold"`
	CusumMaxThreshold float64 `json:"cusum_max_threshold"`
	CusumDelta        float64 `json:"cusum_delta"`
	CusumElasticity   float64 `json:"cusum_elasticity"`
	CusumMinStep      float64 `json:"cusum_minstep"`
	SubeventMinPoints int64   `json:"subevent_minpoints"`
	MaxSublevels      int64   `json:"max_sublevels"`

	// Intra-event refinement
	IntraThreshold  float64 `json:"intra_threshold"`
	IntraHysteresis float64 `json:"intra_hysteresis"`

	// Step-response fitting
	StepfitSamples  int64 `json:"stepfit_samples"`
	MaxIters        int64 `json:"maxiters"`
	AttemptRecovery bool  `json:"attempt_recovery"`

	// Input format
	DataType      FormatTag `json:"datatype"`
	HeaderBytes   int64     `json:"header_bytes"`
	NArrays       int       `json:"n_arrays"`
	ArrayIndex    int       `json:"array_index"`
	SampleSize    int       `json:"sample_size"`
	SampleType    DataType  `json:"sample_type"`
	SampleOrder   ByteOrder `json:"sample_order"`
	SampleBitmask uint64    `json:"sample_bitmask"`
	SampleScale   float64   `json:"sample_scale"`
	SampleOffset  float64   `json:"sample_offset"`

	// Wavelet denoising
	WaveletName      string `json:"wavelet_name"`
	WaveletMethod    string `json:"wavelet_method"`
	WaveletExtension string `json:"wavelet_extension"`
	WaveletThreshold string `json:"wavelet_threshold"`
	WaveletLevel     string `json:"wavelet_level"`
	WaveletLevels    int    `json:"wavelet_levels"`

	// Output
	CurrentOutputType int  `json:"current_output_type"`
	SkipFit           bool `json:"skip_fit"`
	CompressionLevel  int  `json:"compression_level"`

	// Run catalog database
	NoDB   bool   `json:"no_db"`
	Host   string `json:"host"`
	User   string `json:"user"`
	Passwd string `json:"pass"`
	DBName string `json:"dbname"`

	NumWorkers int `json:"num_workers"`
}

var configuration Configuration

func GetConfiguration() Configuration {
	return configuration
}

func SetConfiguration(config Configuration) {
	configuration = config
}

// FilterPad returns the guard width required on each end of a padded
// signal buffer for the configured filter stages.
func (c Configuration) FilterPad(filterPadding int64) int64 {
	return intmax(c.DataOrder, c.EventOrder) + filterPadding
}
