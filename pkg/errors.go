package cusum

import (
	"errors"
	"fmt"
	"math"
)

// ErrorCode classifies a failure the way the analysis reports it: one
// code per run-ending condition, attached to whatever typed error
// produced it.
type ErrorCode int

const (
	ErrNone ErrorCode = iota
	ErrBits
	ErrMemory
	ErrFile
	ErrData
	ErrString
)

var errorCodeStrings = []string{
	"none",
	"bit-width",
	"out-of-memory",
	"file",
	"data",
	"invalid-argument",
}

func (e ErrorCode) String() string {
	if e < ErrNone || e > ErrString {
		return "UNKNOWN"
	}
	return errorCodeStrings[e]
}

// ErrOpenFile represents an error when opening a file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

func (e *ErrOpenFile) Unwrap() error { return e.Err }

// ErrReadFile represents an error reading or seeking a data file.
type ErrReadFile struct {
	Filename string
	Err      error
}

func (e *ErrReadFile) Error() string {
	return fmt.Sprintf("error reading file %q: %v", e.Filename, e.Err)
}

func (e *ErrReadFile) Unwrap() error { return e.Err }

// ErrBadData represents malformed input data or an unsupported sample
// encoding.
type ErrBadData struct {
	Reason string
}

func (e *ErrBadData) Error() string {
	return fmt.Sprintf("bad data: %s", e.Reason)
}

// ErrBadArgument represents an invalid caller-supplied parameter.
type ErrBadArgument struct {
	Name   string
	Reason string
}

func (e *ErrBadArgument) Error() string {
	return fmt.Sprintf("invalid argument %s: %s", e.Name, e.Reason)
}

// ErrBadBitWidth is returned by CheckBits on an unsupported platform.
type ErrBadBitWidth struct {
	Type string
	Bits int
}

func (e *ErrBadBitWidth) Error() string {
	return fmt.Sprintf("analysis requires %d-bit %s support", e.Bits, e.Type)
}

// Classify maps an error to its run-ending classification code.
func Classify(err error) ErrorCode {
	if err == nil {
		return ErrNone
	}
	var openErr *ErrOpenFile
	var readErr *ErrReadFile
	var dataErr *ErrBadData
	var argErr *ErrBadArgument
	var bitErr *ErrBadBitWidth
	switch {
	case errors.As(err, &bitErr):
		return ErrBits
	case errors.As(err, &openErr), errors.As(err, &readErr):
		return ErrFile
	case errors.As(err, &dataErr):
		return ErrData
	case errors.As(err, &argErr):
		return ErrString
	}
	return ErrData
}

// CheckBits verifies the IEEE-754 layout the decoders rely on. Run once
// at startup.
func CheckBits() error {
	if math.Float64bits(1.0) != 0x3FF0000000000000 {
		return &ErrBadBitWidth{Type: "float64", Bits: 64}
	}
	if math.Float32bits(1.0) != 0x3F800000 {
		return &ErrBadBitWidth{Type: "float32", Bits: 32}
	}
	return nil
}
