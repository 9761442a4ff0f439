package cusum

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// FormatTag selects one of the supported on-disk trace encodings.
type FormatTag int

const (
	FormatChimera FormatTag = iota
	FormatBinary
)

var formatTagStrings = []string{
	"chimera",
	"binary",
}

func (f FormatTag) String() string {
	if f < FormatChimera || f > FormatBinary {
		return "UNKNOWN"
	}
	return formatTagStrings[f]
}

func (f FormatTag) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

func (f *FormatTag) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for i, v := range formatTagStrings {
		if v == s {
			*f = FormatTag(i)
			return nil
		}
	}
	return fmt.Errorf("invalid FormatTag: %s", s)
}

// DataType tags the numeric encoding of raw samples in a generic
// binary trace.
type DataType int

const (
	SignedInt DataType = iota
	UnsignedInt
	Float
)

var dataTypeStrings = []string{
	"signed",
	"unsigned",
	"float",
}

func (d DataType) String() string {
	if d < SignedInt || d > Float {
		return "UNKNOWN"
	}
	return dataTypeStrings[d]
}

func (d DataType) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *DataType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for i, v := range dataTypeStrings {
		if v == s {
			*d = DataType(i)
			return nil
		}
	}
	return fmt.Errorf("invalid DataType: %s", s)
}

// ByteOrder wraps the element byte order so it can live in a JSON
// configuration file.
type ByteOrder struct {
	Name  string
	Order binary.ByteOrder
}

var byteOrderStrings = []string{
	"little",
	"big",
}

func (b ByteOrder) String() string {
	return b.Name
}

func (b ByteOrder) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b *ByteOrder) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "little":
		*b = ByteOrder{Name: s, Order: binary.LittleEndian}
	case "big":
		*b = ByteOrder{Name: s, Order: binary.BigEndian}
	default:
		return fmt.Errorf("invalid ByteOrder: %s", s)
	}
	return nil
}

// byteOrder falls back to little endian when the configuration leaves
// the field unset.
func (b ByteOrder) byteOrder() binary.ByteOrder {
	if b.Order == nil {
		return binary.LittleEndian
	}
	return b.Order
}
