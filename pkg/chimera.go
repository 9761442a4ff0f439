package cusum

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ChimeraSetup holds the per-file acquisition metadata parsed from the
// companion settings file of a Chimera VC100 trace.
type ChimeraSetup struct {
	SampleRate    float64
	TIAGain       float64
	PreADCGain    float64
	CurrentOffset float64
	ADCVref       float64
	ADCBits       int
}

// ParseChimeraSettings reads a key=value settings file. Unrecognized
// keys are ignored and missing keys leave their fields at zero. The
// returned timestamp is zero when the file carries no mytimestamp key.
func ParseChimeraSettings(filename string) (*ChimeraSetup, float64, error) {
	settings, err := os.Open(filename)
	if err != nil {
		return nil, 0, &ErrOpenFile{Filename: filename, Err: err}
	}
	defer settings.Close()

	setup := &ChimeraSetup{}
	timestamp := 0.0

	scanner := bufio.NewScanner(settings)
	for scanner.Scan() {
		name, value, found := strings.Cut(scanner.Text(), "=")
		if !found {
			continue
		}
		value = strings.TrimRight(value, "\r\n")
		switch name {
		case "SETUP_TIAgain":
			setup.TIAGain, _ = strconv.ParseFloat(value, 64)
		case "ADCSAMPLERATE":
			setup.SampleRate, _ = strconv.ParseFloat(value, 64)
		case "SETUP_preADCgain":
			setup.PreADCGain, _ = strconv.ParseFloat(value, 64)
		case "SETUP_pAoffset":
			setup.CurrentOffset, _ = strconv.ParseFloat(value, 64)
		case "SETUP_ADCVREF":
			setup.ADCVref, _ = strconv.ParseFloat(value, 64)
		case "SETUP_ADCBITS":
			setup.ADCBits, _ = strconv.Atoi(strings.TrimSpace(value))
			if setup.ADCBits < 1 || setup.ADCBits > 16 {
				return nil, 0, &ErrBadData{Reason: fmt.Sprintf(
					"%s: SETUP_ADCBITS=%q outside the 16-bit converter range", filename, strings.TrimSpace(value))}
			}
		case "mytimestamp":
			timestamp, _ = strconv.ParseFloat(value, 64)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, &ErrReadFile{Filename: filename, Err: err}
	}

	if configuration.Verbosity > 1 && logger != nil {
		message := fmt.Sprintf("Chimera settings %s: samplerate=%g, TIAgain=%g, ADCbits=%d",
			filename, setup.SampleRate, setup.TIAGain, setup.ADCBits)
		logger.Info(message, "chimera")
	}
	return setup, timestamp, nil
}

// bitmask keeps the top ADCBits bits of a 16-bit code. Bit counts
// outside [0, 16] saturate at the converter width.
func (c *ChimeraSetup) bitmask() uint16 {
	bits := c.ADCBits
	if bits < 0 {
		bits = 0
	}
	if bits > 16 {
		bits = 16
	}
	return uint16((1<<16)-1) - uint16((1<<(16-bits))-1)
}

// Gain converts masked 16-bit ADC codes to calibrated current in
// picoamps, mapping the code through the bipolar reference range and
// the closed-loop amplifier gain.
func (c *ChimeraSetup) Gain(signal []float64, rawsignal []uint16) {
	closedLoopGain := c.TIAGain * c.PreADCGain
	mask := c.bitmask()
	for i, raw := range rawsignal {
		if i >= len(signal) {
			break
		}
		code := float64(raw & mask)
		volts := 2.0*c.ADCVref*code/(1<<16) - c.ADCVref
		signal[i] = AmpsToPicoamps * (volts/closedLoopGain + c.CurrentOffset)
	}
}
