package cusum

import (
	"fmt"
	"io"
	"os"
)

// InputFile is one registered source file in an acquisition run. The
// underlying handle is held open only while a read is in progress.
type InputFile struct {
	Filename  string
	Timestamp float64
	Length    int64
	Offset    int64
	DaqSetup  *ChimeraSetup

	format  FormatTag
	bincfg  *BinaryDecoder
	file    *os.File
}

// FileRegistry keeps the ordered set of input files spanning one
// acquisition run. Registration order is concatenation order.
type FileRegistry struct {
	files  []*InputFile
	format FormatTag
	bincfg *BinaryDecoder
}

func NewFileRegistry(format FormatTag, bincfg *BinaryDecoder) *FileRegistry {
	return &FileRegistry{format: format, bincfg: bincfg}
}

// sampleSizeBytes returns the per-sample byte footprint and leading
// header size for the registry's format.
func (r *FileRegistry) sampleSizeBytes() (int64, int64, error) {
	switch r.format {
	case FormatChimera:
		return 2, 0, nil
	case FormatBinary:
		return int64(r.bincfg.SampleSize()), r.bincfg.HeaderBytes, nil
	}
	return 0, 0, &ErrBadData{Reason: fmt.Sprintf("cannot recognize data type %d to detect sample size", r.format)}
}

// AddFile registers one data file, resolving its sample count and
// timestamp. For the Chimera format the companion settings file is
// parsed for the calibration block. Files without a timestamp key are
// ordered after the previously registered file.
func (r *FileRegistry) AddFile(filename string, settingsname string) (*InputFile, error) {
	insert := &InputFile{
		Filename: filename,
		format:   r.format,
		bincfg:   r.bincfg,
	}

	if r.format == FormatChimera {
		setup, timestamp, err := ParseChimeraSettings(settingsname)
		if err != nil {
			return nil, err
		}
		insert.DaqSetup = setup
		insert.Timestamp = timestamp
	}

	sampleSize, headerBytes, err := r.sampleSizeBytes()
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	insert.Length = (info.Size() - headerBytes) / sampleSize

	if insert.Timestamp == 0 {
		if prev := r.last(); prev != nil {
			insert.Timestamp = prev.Timestamp + 1
		} else {
			insert.Timestamp = 1
		}
	}

	r.files = append(r.files, insert)
	if configuration.Verbosity > 0 && logger != nil {
		message := fmt.Sprintf("Registered %s: %d samples, timestamp %g", filename, insert.Length, insert.Timestamp)
		logger.Info(message, "files")
	}
	return insert, nil
}

func (r *FileRegistry) last() *InputFile {
	if len(r.files) == 0 {
		return nil
	}
	return r.files[len(r.files)-1]
}

// Files returns the registered files in concatenation order.
func (r *FileRegistry) Files() []*InputFile {
	return r.files
}

// TotalLength sums the decoded sample counts of all registered files.
func (r *FileRegistry) TotalLength() int64 {
	var length int64
	for _, f := range r.files {
		length += f.Length
	}
	return length
}

// Close releases any handle still held by a registered file.
func (r *FileRegistry) Close() error {
	var firstErr error
	for _, f := range r.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f *InputFile) open() error {
	if f.file != nil {
		return nil
	}
	file, err := os.Open(f.Filename)
	if err != nil {
		return &ErrOpenFile{Filename: f.Filename, Err: err}
	}
	f.file = file
	return nil
}

// Close drops the open handle, if any.
func (f *InputFile) Close() error {
	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}

// ReadBatch decodes up to n calibrated samples starting at sample
// index start into the buffer's inner signal view. It returns the
// number of samples decoded, which is short at end of file.
func (f *InputFile) ReadBatch(sig *SignalBuffer, start, n int64) (int64, error) {
	if n > int64(len(sig.Signal)) {
		n = int64(len(sig.Signal))
	}
	return f.readInto(sig, 0, start, n)
}

// readInto decodes up to n samples from sample index start into the
// inner view at dstOffset. The staging buffer is shared with the
// destination offset so that spanning reads never overlap.
func (f *InputFile) readInto(sig *SignalBuffer, dstOffset, start, n int64) (int64, error) {
	if start >= f.Length || n <= 0 {
		return 0, nil
	}
	if n > f.Length-start {
		n = f.Length - start
	}

	var sampleSize, headerBytes int64
	switch f.format {
	case FormatChimera:
		sampleSize, headerBytes = 2, 0
	case FormatBinary:
		sampleSize, headerBytes = int64(f.bincfg.SampleSize()), f.bincfg.HeaderBytes
	default:
		return 0, &ErrBadData{Reason: fmt.Sprintf("cannot recognize data type %d", f.format)}
	}

	if err := f.open(); err != nil {
		return 0, err
	}
	defer f.Close()

	raw := sig.Raw[dstOffset*sampleSize : (dstOffset+n)*sampleSize]
	nRead, err := f.file.ReadAt(raw, headerBytes+start*sampleSize)
	if err != nil && err != io.EOF {
		return 0, &ErrReadFile{Filename: f.Filename, Err: err}
	}
	n = int64(nRead) / sampleSize
	raw = raw[:n*sampleSize]
	dst := sig.Signal[dstOffset : dstOffset+n]

	switch f.format {
	case FormatChimera:
		staging := sig.rawChimera[dstOffset : dstOffset+n]
		for i := int64(0); i < n; i++ {
			staging[i] = uint16(raw[2*i]) | uint16(raw[2*i+1])<<8
		}
		f.DaqSetup.Gain(dst, staging)
	case FormatBinary:
		decoded, err := f.bincfg.DecodeBatch(raw, dst)
		if err != nil {
			return decoded, err
		}
	}
	return n, nil
}

// ReadWindow decodes up to n concatenated samples starting at the
// global sample index start, spanning file boundaries in registration
// order. It returns the number of samples decoded.
func (r *FileRegistry) ReadWindow(sig *SignalBuffer, start, n int64) (int64, error) {
	if n > int64(len(sig.Signal)) {
		n = int64(len(sig.Signal))
	}
	var total int64
	fileStart := int64(0)
	for _, f := range r.files {
		if total >= n {
			break
		}
		fileEnd := fileStart + f.Length
		globalPos := start + total
		if globalPos >= fileEnd {
			fileStart = fileEnd
			continue
		}
		read, err := f.readInto(sig, total, globalPos-fileStart, n-total)
		if err != nil {
			return total, err
		}
		if read == 0 {
			break
		}
		total += read
		fileStart = fileEnd
	}
	return total, nil
}
