// Package synth produces sampled PIC32 programming waveforms. A Waveform
// drives a simulated jtag.Target through 2-wire 4-phase ICSP or 5-wire JTAG
// clocking and records every level change as a capture.Sample, so the result
// can be fed straight into a decoder or written out as a VCD file.
package synth

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTraceICSP/pkg/capture"
	"github.com/OpenTraceLab/OpenTraceICSP/pkg/jtag"
	"github.com/OpenTraceLab/OpenTraceICSP/pkg/mchp"
	"github.com/OpenTraceLab/OpenTraceICSP/pkg/tap"
)

// Mode selects the physical interface a Waveform drives.
type Mode uint8

const (
	// ModeICSP is 2-wire 4-phase ICSP on MCLR, PGEC and PGED.
	ModeICSP Mode = iota
	// ModeJTAG is 5-wire JTAG on SYSRST, TMS, TCK, TDI and TDO.
	ModeJTAG
)

func (m Mode) String() string {
	switch m {
	case ModeICSP:
		return "icsp"
	case ModeJTAG:
		return "jtag"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// ParseMode maps "icsp" or "jtag" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "icsp", "legacy":
		return ModeICSP, nil
	case "jtag":
		return ModeJTAG, nil
	}
	return 0, fmt.Errorf("synth: unknown mode %q", s)
}

// Binding returns the channel names a written trace uses for the mode.
func (m Mode) Binding() capture.Binding {
	if m == ModeJTAG {
		return capture.Binding{
			capture.SignalReset: "SYSRST",
			capture.SignalTMS:   "TMS",
			capture.SignalClock: "TCK",
			capture.SignalTDI:   "TDI",
			capture.SignalTDO:   "TDO",
		}
	}
	return capture.Binding{
		capture.SignalReset: "MCLR",
		capture.SignalClock: "PGEC",
		capture.SignalData:  "PGED",
	}
}

const (
	// SampleRate is the rate of the synthesized sample axis in Hz.
	SampleRate = 10_000_000
	// Timescale is the duration of one sample as written to a VCD header.
	Timescale = "100 ns"
	// DefaultSpeed is the initial clock frequency in Hz.
	DefaultSpeed = 1_000_000
)

// Waveform records the sample stream of a programmer talking to a Target.
// The host keeps its own TAP state machine and walks it with GoTo, exactly as
// a probe would, while the Target answers every bit period.
type Waveform struct {
	mode   Mode
	target *jtag.Target
	host   *tap.StateMachine

	levels  capture.Levels
	index   int64
	tick    int64
	speed   int
	samples []capture.Sample
	entered bool
}

var _ jtag.Adapter = (*Waveform)(nil)

// New returns a waveform with the reset line released and the clock low.
func New(mode Mode, target *jtag.Target) *Waveform {
	w := &Waveform{
		mode:   mode,
		target: target,
		host:   tap.NewStateMachine(),
		levels: capture.Levels(0).With(capture.SignalReset, true),
	}
	w.setSpeed(DefaultSpeed)
	w.samples = append(w.samples, capture.Sample{Index: 0, Levels: w.levels})
	return w
}

// Mode reports the interface the waveform drives.
func (w *Waveform) Mode() Mode { return w.mode }

// Target returns the simulated device.
func (w *Waveform) Target() *jtag.Target { return w.target }

// State reports the host's view of the TAP controller.
func (w *Waveform) State() tap.State { return w.host.State() }

// Samples returns a copy of the recorded samples.
func (w *Waveform) Samples() []capture.Sample {
	return append([]capture.Sample(nil), w.samples...)
}

// Trace lays the recorded samples out under the mode's channel names.
func (w *Waveform) Trace() *capture.Trace {
	return capture.TraceFromSamples(w.mode.Binding(), w.samples, Timescale)
}

// set drives one signal and advances the time axis. Samples are only
// recorded when a level actually changes.
func (w *Waveform) set(s capture.Signal, high bool) {
	w.index += w.tick
	w.levels = w.levels.With(s, high)
	if n := len(w.samples); n > 0 && w.samples[n-1].Levels == w.levels {
		return
	}
	w.samples = append(w.samples, capture.Sample{Index: w.index, Levels: w.levels})
}

func (w *Waveform) pulse() {
	w.set(capture.SignalClock, true)
	w.set(capture.SignalClock, false)
}

// Enter pulls MCLR low, clocks bits of key MSB-first on rising PGEC and
// releases MCLR. The device only enters ICSP mode for the 32-bit MCHP key;
// other keys leave it unresponsive until the next attempt. In JTAG mode the
// TAP needs no entry sequence and Enter does nothing.
func (w *Waveform) Enter(key uint32, bits int) {
	if w.mode == ModeJTAG {
		return
	}
	w.set(capture.SignalClock, false)
	w.set(capture.SignalData, false)
	w.set(capture.SignalReset, false)
	for i := bits - 1; i >= 0; i-- {
		w.set(capture.SignalData, i < 32 && key&(1<<uint(i)) != 0)
		w.pulse()
	}
	w.set(capture.SignalData, false)
	w.set(capture.SignalReset, true)

	w.target.Reset()
	w.host.Force()
	w.entered = bits == mchp.EntryKeyBits && key == mchp.EntryKey
}

// EnterICSP performs the standard entry sequence with the MCHP key.
func (w *Waveform) EnterICSP() {
	w.Enter(mchp.EntryKey, mchp.EntryKeyBits)
}

// Entered reports whether the last Enter used the correct key.
func (w *Waveform) Entered() bool {
	return w.mode == ModeJTAG || w.entered
}

// Reset pulses the reset line. On ICSP this drops the device out of
// programming mode; on JTAG SYSRST does not touch the TAP.
func (w *Waveform) Reset() {
	w.set(capture.SignalReset, false)
	w.set(capture.SignalReset, true)
	if w.mode == ModeICSP {
		w.target.Reset()
		w.host.Force()
		w.entered = false
	}
}

// InterruptBit starts a 4-phase bit period and asserts MCLR after the given
// number of completed phases (0 to 4). The reset line is left low, so the next
// call is normally Enter. It does nothing in JTAG mode.
func (w *Waveform) InterruptBit(tdi, tms bool, phases int) {
	if w.mode == ModeJTAG {
		return
	}
	for i, d := range [4]bool{tdi, tms, false, false} {
		if i >= phases {
			break
		}
		w.set(capture.SignalData, d)
		w.set(capture.SignalClock, true)
		if i < 3 {
			w.set(capture.SignalClock, false)
		}
	}
	w.set(capture.SignalReset, false)
	w.set(capture.SignalClock, false)
	w.target.Reset()
	w.host.Force()
	w.entered = false
}

// drive clocks one bit period on the wire and in the target. The host state
// machine is advanced by the caller.
func (w *Waveform) drive(tms, tdi bool) bool {
	now, ahead := w.target.Clock(tms, tdi)
	if w.mode == ModeJTAG {
		w.set(capture.SignalTMS, tms)
		w.set(capture.SignalTDI, tdi)
		w.set(capture.SignalTDO, now)
		w.pulse()
		return now
	}
	for _, d := range [3]bool{tdi, tms, false} {
		w.set(capture.SignalData, d)
		w.pulse()
	}
	// The target drives PGED for the fourth phase, one period ahead.
	w.set(capture.SignalData, ahead)
	w.pulse()
	return now
}

// clock runs one bit period and returns the TDO level of that period.
func (w *Waveform) clock(tms, tdi bool) bool {
	w.host.Clock(tms)
	return w.drive(tms, tdi)
}

func (w *Waveform) goTo(s tap.State) {
	seq, err := w.host.GoTo(s)
	if err != nil {
		panic(err)
	}
	for _, tms := range seq.TMS {
		w.drive(tms, false)
	}
}

// scan moves to shift, clocks tdi through it and returns to Run-Test/Idle.
// Without an explicit tms vector the last bit leaves the Shift state.
func (w *Waveform) scan(shift tap.State, tdi, tms tap.Bits) tap.Bits {
	w.goTo(shift)
	var tdo tap.Bits
	n := tdi.Len()
	for i := 0; i < n; i++ {
		m := i == n-1
		if tms.Len() > 0 {
			m = tms.Bit(i)
		}
		tdo = tdo.Append(w.clock(m, tdi.Bit(i)))
	}
	w.goTo(tap.StateRunTestIdle)
	return tdo
}

// ShiftInstruction loads an arbitrary IR value of n bits.
func (w *Waveform) ShiftInstruction(v uint64, n int) tap.Bits {
	return w.scan(tap.StateShiftIR, tap.BitsFromUint64(v, n), tap.Bits{})
}

// ShiftData scans an arbitrary DR value of n bits.
func (w *Waveform) ShiftData(v uint64, n int) tap.Bits {
	return w.scan(tap.StateShiftDR, tap.BitsFromUint64(v, n), tap.Bits{})
}
