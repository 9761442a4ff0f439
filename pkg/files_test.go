package cusum

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBinaryTrace(t *testing.T, name string, first, count uint16) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	raw := make([]byte, 2*count)
	for i := uint16(0); i < count; i++ {
		binary.LittleEndian.PutUint16(raw[2*i:], first+i)
	}
	require.NoError(t, os.WriteFile(path, raw, 0644))
	return path
}

func testBinaryDecoder() *BinaryDecoder {
	return &BinaryDecoder{
		NArrays:  1,
		DataSize: 2,
		DataType: UnsignedInt,
		Order:    binary.LittleEndian,
		Scale:    1,
	}
}

func TestRegistrySampleCountFromFileSize(t *testing.T) {
	// 1000 bytes of 2-byte samples with no header is 500 samples.
	path := writeBinaryTrace(t, "trace.bin", 0, 500)
	registry := NewFileRegistry(FormatBinary, testBinaryDecoder())

	file, err := registry.AddFile(path, "")
	require.NoError(t, err)
	assert.Equal(t, int64(500), file.Length)
	assert.Equal(t, int64(500), registry.TotalLength())
}

func TestRegistryHeaderBytesExcluded(t *testing.T) {
	dec := testBinaryDecoder()
	dec.HeaderBytes = 100
	path := writeBinaryTrace(t, "trace.bin", 0, 500)
	registry := NewFileRegistry(FormatBinary, dec)

	file, err := registry.AddFile(path, "")
	require.NoError(t, err)
	assert.Equal(t, int64(450), file.Length)
}

func TestRegistrySyntheticTimestamps(t *testing.T) {
	registry := NewFileRegistry(FormatBinary, testBinaryDecoder())

	first, err := registry.AddFile(writeBinaryTrace(t, "a.bin", 0, 10), "")
	require.NoError(t, err)
	second, err := registry.AddFile(writeBinaryTrace(t, "b.bin", 10, 10), "")
	require.NoError(t, err)

	assert.Equal(t, 1.0, first.Timestamp)
	assert.Equal(t, 2.0, second.Timestamp)
}

func TestRegistryMissingFile(t *testing.T) {
	registry := NewFileRegistry(FormatBinary, testBinaryDecoder())
	_, err := registry.AddFile("/nonexistent/trace.bin", "")
	require.Error(t, err)
	assert.Equal(t, ErrFile, Classify(err))
	assert.Empty(t, registry.Files())
}

func TestReadBatchDecodesCalibratedSamples(t *testing.T) {
	path := writeBinaryTrace(t, "trace.bin", 100, 50)
	registry := NewFileRegistry(FormatBinary, testBinaryDecoder())
	file, err := registry.AddFile(path, "")
	require.NoError(t, err)

	config := Configuration{ReadLength: 20, DataType: FormatBinary}
	sig, err := NewSignalBuffer(config, 0, testBinaryDecoder())
	require.NoError(t, err)

	n, err := file.ReadBatch(sig, 5, 20)
	require.NoError(t, err)
	require.Equal(t, int64(20), n)
	for i := int64(0); i < n; i++ {
		assert.Equal(t, float64(105+i), sig.Signal[i])
	}

	// Short read at end of file.
	n, err = file.ReadBatch(sig, 45, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}

func TestReadWindowSpansFiles(t *testing.T) {
	registry := NewFileRegistry(FormatBinary, testBinaryDecoder())
	_, err := registry.AddFile(writeBinaryTrace(t, "a.bin", 0, 500), "")
	require.NoError(t, err)
	_, err = registry.AddFile(writeBinaryTrace(t, "b.bin", 500, 500), "")
	require.NoError(t, err)

	config := Configuration{ReadLength: 20, DataType: FormatBinary}
	sig, err := NewSignalBuffer(config, 0, testBinaryDecoder())
	require.NoError(t, err)

	n, err := registry.ReadWindow(sig, 490, 20)
	require.NoError(t, err)
	require.Equal(t, int64(20), n)
	for i := int64(0); i < n; i++ {
		assert.Equal(t, float64(490+i), sig.Signal[i])
	}

	// Runs off the end of the last file.
	n, err = registry.ReadWindow(sig, 990, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)
}
