package cusum

import (
	"encoding/binary"
	"fmt"
	"math"
)

// BinaryDecoder describes the on-disk sample layout of a generic
// binary trace file. It is resolved once per input file and read-only
// afterwards.
type BinaryDecoder struct {
	HeaderBytes  int64
	SamplingFreq float64
	NArrays      int
	ArrayIndex   int
	DataSize     int
	DataType     DataType
	Order        binary.ByteOrder
	Bitmask      uint64
	Scale        float64
	Offset       float64
}

// ResolveDecoder builds the decoder for the configured generic binary
// layout, validating the element width against the numeric tag.
func ResolveDecoder(config Configuration) (*BinaryDecoder, error) {
	dec := &BinaryDecoder{
		HeaderBytes:  config.HeaderBytes,
		SamplingFreq: config.SamplingFreq,
		NArrays:      config.NArrays,
		ArrayIndex:   config.ArrayIndex,
		DataSize:     config.SampleSize,
		DataType:     config.SampleType,
		Order:        config.SampleOrder.byteOrder(),
		Bitmask:      config.SampleBitmask,
		Scale:        config.SampleScale,
		Offset:       config.SampleOffset,
	}
	if dec.NArrays < 1 {
		dec.NArrays = 1
	}
	if dec.ArrayIndex < 0 || dec.ArrayIndex >= dec.NArrays {
		return nil, &ErrBadArgument{Name: "array_index",
			Reason: fmt.Sprintf("index %d out of range for %d arrays", dec.ArrayIndex, dec.NArrays)}
	}
	switch dec.DataType {
	case SignedInt, UnsignedInt:
		switch dec.DataSize {
		case 1, 2, 4, 8:
		default:
			return nil, &ErrBadData{Reason: fmt.Sprintf("unsupported %s element width %d", dec.DataType, dec.DataSize)}
		}
	case Float:
		switch dec.DataSize {
		case 4, 8:
		default:
			return nil, &ErrBadData{Reason: fmt.Sprintf("unsupported float element width %d", dec.DataSize)}
		}
	default:
		return nil, &ErrBadData{Reason: fmt.Sprintf("unrecognized data type tag %d", dec.DataType)}
	}
	return dec, nil
}

// SampleSize returns the byte footprint of one logical sample across
// all interleaved arrays.
func (d *BinaryDecoder) SampleSize() int {
	return d.NArrays * d.DataSize
}

// word reads one raw element as an unsigned machine word.
func (d *BinaryDecoder) word(b []byte) uint64 {
	switch d.DataSize {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(d.Order.Uint16(b))
	case 4:
		return uint64(d.Order.Uint32(b))
	case 8:
		return d.Order.Uint64(b)
	}
	return 0
}

// decodeElement reinterprets one raw element per the numeric tag,
// applying the bit mask to integral encodings.
func (d *BinaryDecoder) decodeElement(b []byte) (float64, error) {
	word := d.word(b)
	switch d.DataType {
	case SignedInt:
		if d.Bitmask != 0 {
			word &= d.Bitmask
		}
		switch d.DataSize {
		case 1:
			return float64(int8(word)), nil
		case 2:
			return float64(int16(word)), nil
		case 4:
			return float64(int32(word)), nil
		case 8:
			return float64(int64(word)), nil
		}
	case UnsignedInt:
		if d.Bitmask != 0 {
			word &= d.Bitmask
		}
		return float64(word), nil
	case Float:
		switch d.DataSize {
		case 4:
			return float64(math.Float32frombits(uint32(word))), nil
		case 8:
			return math.Float64frombits(word), nil
		}
	}
	return 0, &ErrBadData{Reason: fmt.Sprintf("unrecognized data type tag %d with width %d", d.DataType, d.DataSize)}
}

// DecodeBatch decodes len(raw)/SampleSize() logical samples into
// signal, applying the linear calibration. It returns the number of
// samples decoded. Decoding aborts on the first unrecognized element.
func (d *BinaryDecoder) DecodeBatch(raw []byte, signal []float64) (int64, error) {
	sampleSize := d.SampleSize()
	n := len(raw) / sampleSize
	if n > len(signal) {
		n = len(signal)
	}
	elemOffset := d.ArrayIndex * d.DataSize
	for i := 0; i < n; i++ {
		start := i*sampleSize + elemOffset
		value, err := d.decodeElement(raw[start : start+d.DataSize])
		if err != nil {
			return int64(i), err
		}
		signal[i] = value*d.Scale + d.Offset
	}
	return int64(n), nil
}
