package cusum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalBufferGeometry(t *testing.T) {
	config := Configuration{
		ReadLength: 1000,
		DataOrder:  8,
		EventOrder: 4,
		DataType:   FormatChimera,
	}
	sig, err := NewSignalBuffer(config, 10, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(18), sig.Pad())
	assert.Len(t, sig.Padded(), 1000+2*18)
	assert.Len(t, sig.Signal, 1000)
	assert.Len(t, sig.Raw, 2000)
}

func TestSignalBufferGuardIndexing(t *testing.T) {
	config := Configuration{
		ReadLength: 100,
		DataOrder:  4,
		EventOrder: 4,
		DataType:   FormatChimera,
	}
	sig, err := NewSignalBuffer(config, 2, nil)
	require.NoError(t, err)

	pad := sig.Pad()
	for i := -pad; i < int64(len(sig.Signal))+pad; i++ {
		sig.SetAt(i, float64(i))
	}
	assert.Equal(t, float64(-pad), sig.At(-pad))
	assert.Equal(t, 0.0, sig.At(0))
	assert.Equal(t, sig.Signal[0], sig.At(0))
	assert.Equal(t, sig.Signal[99], sig.At(99))
	assert.Equal(t, float64(99+pad), sig.At(99+pad))
}

func TestSignalBufferRejectsBadConfig(t *testing.T) {
	_, err := NewSignalBuffer(Configuration{ReadLength: 0, DataType: FormatChimera}, 0, nil)
	require.Error(t, err)
	assert.Equal(t, ErrString, Classify(err))

	_, err = NewSignalBuffer(Configuration{ReadLength: 10, DataType: FormatBinary}, 0, nil)
	require.Error(t, err)
}

func TestSignalBufferBinaryRawSize(t *testing.T) {
	dec := &BinaryDecoder{NArrays: 2, DataSize: 4}
	config := Configuration{ReadLength: 50, DataType: FormatBinary}
	sig, err := NewSignalBuffer(config, 0, dec)
	require.NoError(t, err)
	assert.Len(t, sig.Raw, 50*8)
}
