package cusum

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBatchAllNumericTags(t *testing.T) {
	const scale, offset = 0.5, -1.0

	cases := []struct {
		name     string
		dataType DataType
		size     int
		order    binary.ByteOrder
		raw      []byte
		expected float64
	}{
		{"int8", SignedInt, 1, binary.LittleEndian, []byte{0xFB}, -5},
		{"int16", SignedInt, 2, binary.LittleEndian, []byte{0x2E, 0xFB}, -1234},
		{"int32", SignedInt, 4, binary.BigEndian, []byte{0xFF, 0xFE, 0x79, 0x60}, -100000},
		{"int64", SignedInt, 8, binary.LittleEndian, []byte{0x00, 0x0E, 0xFA, 0xD5, 0xFE, 0xFF, 0xFF, 0xFF}, -5000000000},
		{"uint8", UnsignedInt, 1, binary.LittleEndian, []byte{0xC8}, 200},
		{"uint16", UnsignedInt, 2, binary.BigEndian, []byte{0x9C, 0x40}, 40000},
		{"uint32", UnsignedInt, 4, binary.LittleEndian, []byte{0x00, 0x5E, 0xD0, 0xB2}, 3000000000},
		{"uint64", UnsignedInt, 8, binary.LittleEndian, []byte{0x00, 0xE4, 0x0B, 0x54, 0x02, 0x00, 0x00, 0x00}, 10000000000},
		{"float32", Float, 4, binary.LittleEndian, nil, 3.25},
		{"float64", Float, 8, binary.BigEndian, nil, -2.71828},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := tc.raw
			if raw == nil {
				raw = make([]byte, tc.size)
				if tc.size == 4 {
					tc.order.PutUint32(raw, math.Float32bits(float32(tc.expected)))
				} else {
					tc.order.PutUint64(raw, math.Float64bits(tc.expected))
				}
			}
			dec := &BinaryDecoder{
				NArrays:  1,
				DataSize: tc.size,
				DataType: tc.dataType,
				Order:    tc.order,
				Scale:    scale,
				Offset:   offset,
			}
			signal := make([]float64, 1)
			n, err := dec.DecodeBatch(raw, signal)
			require.NoError(t, err)
			require.Equal(t, int64(1), n)
			assert.InDelta(t, tc.expected*scale+offset, signal[0], 1e-10)
		})
	}
}

func TestDecodeBatchInterleavedArrays(t *testing.T) {
	dec := &BinaryDecoder{
		NArrays:    3,
		ArrayIndex: 1,
		DataSize:   2,
		DataType:   UnsignedInt,
		Order:      binary.LittleEndian,
		Scale:      1,
	}
	require.Equal(t, 6, dec.SampleSize())

	// Two samples of three interleaved channels each.
	raw := []byte{
		1, 0, 2, 0, 3, 0,
		4, 0, 5, 0, 6, 0,
	}
	signal := make([]float64, 2)
	n, err := dec.DecodeBatch(raw, signal)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
	assert.Equal(t, 2.0, signal[0])
	assert.Equal(t, 5.0, signal[1])
}

func TestDecodeBatchBitmask(t *testing.T) {
	dec := &BinaryDecoder{
		NArrays:  1,
		DataSize: 2,
		DataType: UnsignedInt,
		Order:    binary.LittleEndian,
		Bitmask:  0x3FFF,
		Scale:    1,
	}
	signal := make([]float64, 1)
	n, err := dec.DecodeBatch([]byte{0x05, 0xC0}, signal)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	assert.Equal(t, 5.0, signal[0])
}

func TestResolveDecoderRejectsBadLayouts(t *testing.T) {
	config := Configuration{SampleType: SignedInt, SampleSize: 3, NArrays: 1}
	_, err := ResolveDecoder(config)
	require.Error(t, err)
	assert.Equal(t, ErrData, Classify(err))

	config = Configuration{SampleType: Float, SampleSize: 2, NArrays: 1}
	_, err = ResolveDecoder(config)
	require.Error(t, err)

	config = Configuration{SampleType: UnsignedInt, SampleSize: 2, NArrays: 2, ArrayIndex: 2}
	_, err = ResolveDecoder(config)
	require.Error(t, err)
	assert.Equal(t, ErrString, Classify(err))
}

func TestResolveDecoderDefaultsByteOrder(t *testing.T) {
	config := Configuration{SampleType: UnsignedInt, SampleSize: 2, NArrays: 1, SampleScale: 1}
	dec, err := ResolveDecoder(config)
	require.NoError(t, err)
	assert.Equal(t, binary.ByteOrder(binary.LittleEndian), dec.Order)
}
