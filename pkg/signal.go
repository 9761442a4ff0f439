package cusum

import "fmt"

// SignalBuffer owns one contiguous calibrated-sample buffer with guard
// regions on both ends sized for the largest configured filter kernel,
// plus a raw staging buffer for one decode batch. Decode writes only
// the inner Signal view; the guard regions are written exclusively by
// filter stages that need kernel overhang.
type SignalBuffer struct {
	padded     []float64
	Signal     []float64
	Raw        []byte
	rawChimera []uint16
	pad        int64
	viewOffset int64
}

// NewSignalBuffer allocates the padded buffer for the configured read
// length. Total capacity is readlength + 2*(max(data_order,
// event_order) + filterPadding) and the inner view starts data_order +
// filterPadding samples in.
func NewSignalBuffer(config Configuration, filterPadding int64, bincfg *BinaryDecoder) (*SignalBuffer, error) {
	if config.ReadLength <= 0 {
		return nil, &ErrBadArgument{Name: "read_length",
			Reason: fmt.Sprintf("must be positive, got %d", config.ReadLength)}
	}

	pad := config.FilterPad(filterPadding)
	viewOffset := config.DataOrder + filterPadding
	sig := &SignalBuffer{
		padded:     make([]float64, config.ReadLength+2*pad),
		pad:        pad,
		viewOffset: viewOffset,
	}
	sig.Signal = sig.padded[viewOffset : viewOffset+config.ReadLength]

	switch config.DataType {
	case FormatChimera:
		sig.Raw = make([]byte, config.ReadLength*2)
		sig.rawChimera = make([]uint16, config.ReadLength)
	case FormatBinary:
		if bincfg == nil {
			return nil, &ErrBadArgument{Name: "bincfg", Reason: "required for the binary format"}
		}
		sig.Raw = make([]byte, config.ReadLength*int64(bincfg.SampleSize()))
	default:
		return nil, &ErrBadData{Reason: fmt.Sprintf("unsupported datatype: %d", config.DataType)}
	}
	return sig, nil
}

// Pad returns the guard width available on each end of the inner view.
func (s *SignalBuffer) Pad() int64 {
	return s.pad
}

// Padded returns the full backing buffer including both guard regions.
func (s *SignalBuffer) Padded() []float64 {
	return s.padded
}

// At reads the sample at index i of the inner view. Indices in
// [-viewOffset, len(Signal)+pad) are valid so that filter kernels can
// tap past the logical boundaries without bounds checks of their own.
func (s *SignalBuffer) At(i int64) float64 {
	return s.padded[s.viewOffset+i]
}

// SetAt writes the sample at index i of the inner view, guard regions
// included. Only filter stages should touch indices outside
// [0, len(Signal)).
func (s *SignalBuffer) SetAt(i int64, v float64) {
	s.padded[s.viewOffset+i] = v
}
