package synth

import (
	"github.com/OpenTraceLab/OpenTraceICSP/pkg/mchp"
)

// The operations below follow the programmer pseudo-ops of the PIC32 flash
// programming procedure. Each starts and ends in Run-Test/Idle.

// SetMode clocks n TMS bits of v LSB-first with TDI low.
func (w *Waveform) SetMode(v uint64, n int) {
	for i := 0; i < n; i++ {
		w.clock(v&(1<<uint(i)) != 0, false)
	}
}

// TAPReset is SetMode(6'b011111): five ones to Test-Logic-Reset, then one
// zero to Run-Test/Idle.
func (w *Waveform) TAPReset() {
	w.SetMode(0x1F, 6)
}

// SendCommand loads a 5-bit instruction into the selected TAP.
func (w *Waveform) SendCommand(inst mchp.Instruction) {
	w.ShiftInstruction(uint64(inst), mchp.IRLength)
}

// XferCommand shifts an 8-bit MCHP command through MTAP_COMMAND and returns
// the status byte captured in the same scan.
func (w *Waveform) XferCommand(cmd mchp.Command) mchp.Status {
	return mchp.Status(w.ShiftData(uint64(cmd), mchp.CommandWidth).Uint64())
}

// XferData shifts a 32-bit data word and returns the word read back.
func (w *Waveform) XferData(v uint32) uint32 {
	return uint32(w.ShiftData(uint64(v), 32).Uint64())
}

// XferFastData shifts a 33-bit ETAP_FASTDATA word: the probe's PrAcc bit
// (always 0) followed by v. It returns the target's PrAcc bit and data word.
func (w *Waveform) XferFastData(v uint32) (pracc bool, data uint32) {
	tdo := w.ShiftData(uint64(v)<<1, 33)
	return tdo.Bit(0), uint32(tdo.Field(1, 32))
}

// Idle clocks n periods with TMS low, staying in Run-Test/Idle.
func (w *Waveform) Idle(n int) {
	for i := 0; i < n; i++ {
		w.clock(false, false)
	}
}

// ReadStatus is the usual status poll: select MTAP_COMMAND and shift
// MTAP_DR_MCHP_STATUS.
func (w *Waveform) ReadStatus() mchp.Status {
	w.SendCommand(mchp.MTAPCommand)
	return w.XferCommand(mchp.CmdStatus)
}
