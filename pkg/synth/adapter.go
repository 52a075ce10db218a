package synth

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceICSP/pkg/jtag"
	"github.com/OpenTraceLab/OpenTraceICSP/pkg/tap"
)

// Info describes the synthesizer as an adapter.
func (w *Waveform) Info() (jtag.AdapterInfo, error) {
	wire := jtag.WireICSP
	if w.mode == ModeJTAG {
		wire = jtag.WireJTAG
	}
	return jtag.AdapterInfo{
		Name:         "pic32-synth",
		Vendor:       "OpenTraceLab",
		Model:        "waveform synthesizer",
		Wire:         wire,
		MinFrequency: 1,
		MaxFrequency: SampleRate / 4,
		SupportsMCLR: w.mode == ModeICSP,
		Notes:        "records samples instead of driving hardware",
	}, nil
}

// ShiftIR implements jtag.Adapter.
func (w *Waveform) ShiftIR(tms, tdi []byte, bits int) ([]byte, error) {
	return w.shift(tap.StateShiftIR, tms, tdi, bits)
}

// ShiftDR implements jtag.Adapter.
func (w *Waveform) ShiftDR(tms, tdi []byte, bits int) ([]byte, error) {
	return w.shift(tap.StateShiftDR, tms, tdi, bits)
}

func (w *Waveform) shift(state tap.State, tms, tdi []byte, bits int) ([]byte, error) {
	if _, err := jtag.ValidateShiftBuffers(tms, tdi, bits); err != nil {
		return nil, err
	}
	var m tap.Bits
	if len(tms) > 0 {
		m = tap.BitsFromBytes(tms, bits)
	}
	return w.scan(state, tap.BitsFromBytes(tdi, bits), m).Bytes(), nil
}

// ResetTAP implements jtag.Adapter. A hard reset pulses the reset line and,
// on ICSP, re-enters programming mode; a soft reset is TAPReset.
func (w *Waveform) ResetTAP(hard bool) error {
	if hard {
		w.Reset()
		w.EnterICSP()
	}
	w.TAPReset()
	return nil
}

// SetSpeed implements jtag.Adapter. The clock period is rounded to whole
// samples.
func (w *Waveform) SetSpeed(hz int) error {
	if hz <= 0 || hz > SampleRate/4 {
		return fmt.Errorf("synth: invalid speed %dHz", hz)
	}
	w.setSpeed(hz)
	return nil
}

func (w *Waveform) setSpeed(hz int) {
	w.speed = hz
	w.tick = int64(SampleRate / (hz * 4))
	if w.tick < 1 {
		w.tick = 1
	}
}
