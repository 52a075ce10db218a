package jtag

import (
	"github.com/OpenTraceLab/OpenTraceICSP/pkg/mchp"
	"github.com/OpenTraceLab/OpenTraceICSP/pkg/tap"
)

// DefaultStatus is the MCHP status byte of an unprotected, configured device
// that is not held in reset.
const DefaultStatus = mchp.StatusCPS | mchp.StatusCFGRDY

// Target is a bit-level model of the PIC32 programming TAPs. It is clocked one
// bit period at a time and answers with the TDO level a real device would
// drive, which is what a waveform synthesizer needs to produce believable
// captures.
//
// Both the MTAP and the ETAP use a 5-bit IR. MTAP_SW_ETAP and MTAP_SW_MTAP
// switch the active TAP. Data registers:
//
//	E_MTAP_IDCODE   32 bits, captures IDCode
//	MTAP_COMMAND     8 bits, captures the status byte, executes on Update-DR
//	ETAP_ADDRESS    32 bits, loopback
//	ETAP_DATA       32 bits, loopback
//	ETAP_CONTROL    32 bits, loopback
//	ETAP_FASTDATA   33 bits, PrAcc in bit 0 followed by the data word
//
// Any other instruction selects a 1-bit bypass register.
type Target struct {
	IDCode uint32

	sm     *tap.StateMachine
	tap    mchp.TAP
	inst   mchp.Instruction
	status mchp.Status

	reg   uint64
	width int

	address, data, control uint32
	fastData               uint32
	fastWrites             []uint32
	commands               []mchp.Command
}

// NewTarget returns a target in its power-up state reporting the given
// IDCODE.
func NewTarget(idcode uint32) *Target {
	t := &Target{IDCode: idcode, sm: tap.NewStateMachine(), status: DefaultStatus}
	t.Reset()
	return t
}

// Reset models MCLR: the TAP controller returns to Test-Logic-Reset with the
// MTAP selected and IDCODE in the data path. Register contents survive.
func (t *Target) Reset() {
	t.sm.Force()
	t.tap = mchp.MTAP
	t.inst = mchp.EMTAPIDCode
	t.reg, t.width = 0, 0
}

// State reports the TAP controller state.
func (t *Target) State() tap.State { return t.sm.State() }

// SelectedTAP reports which TAP the IR currently decodes into.
func (t *Target) SelectedTAP() mchp.TAP { return t.tap }

// Instruction reports the instruction in effect.
func (t *Target) Instruction() mchp.Instruction { return t.inst }

// Status reports the MCHP status byte.
func (t *Target) Status() mchp.Status { return t.status }

// Commands returns every MCHP command executed through MTAP_COMMAND.
func (t *Target) Commands() []mchp.Command {
	return append([]mchp.Command(nil), t.commands...)
}

// FastWrites returns every word the probe delivered through ETAP_FASTDATA.
func (t *Target) FastWrites() []uint32 {
	return append([]uint32(nil), t.fastWrites...)
}

// SetFastData sets the word the next ETAP_FASTDATA capture returns.
func (t *Target) SetFastData(v uint32) { t.fastData = v }

// Clock runs one bit period spent in the current TAP state and then advances
// the controller with tms.
//
// tdo is the level driven during this period: the register LSB while
// shifting, low otherwise. ahead is the level for the following period when
// that period is a Shift state. Targets on a 4-phase ICSP link drive ahead
// instead of tdo.
func (t *Target) Clock(tms, tdi bool) (tdo, ahead bool) {
	switch cur := t.sm.State(); cur {
	case tap.StateTestLogicReset:
		t.inst = mchp.EMTAPIDCode

	case tap.StateCaptureIR:
		t.reg, t.width = 0x01, mchp.IRLength

	case tap.StateCaptureDR:
		t.reg, t.width = t.captureDR()

	case tap.StateShiftIR, tap.StateShiftDR:
		tdo = t.reg&1 != 0
		t.reg >>= 1
		if tdi && t.width > 0 {
			t.reg |= 1 << uint(t.width-1)
		}

	case tap.StateUpdateIR:
		t.inst = mchp.Instruction(t.reg & (1<<mchp.IRLength - 1))
		if sel, ok := t.inst.Selects(); ok {
			t.tap = sel
		}

	case tap.StateUpdateDR:
		t.updateDR()
	}

	if t.sm.Clock(tms).IsShift() {
		ahead = t.reg&1 != 0
	}
	return tdo, ahead
}

func (t *Target) captureDR() (uint64, int) {
	switch t.inst {
	case mchp.EMTAPIDCode:
		return uint64(t.IDCode), 32
	case mchp.MTAPCommand:
		return uint64(t.status), mchp.CommandWidth
	case mchp.ETAPAddress:
		return uint64(t.address), 32
	case mchp.ETAPData:
		return uint64(t.data), 32
	case mchp.ETAPControl:
		return uint64(t.control), 32
	case mchp.ETAPFastData:
		return uint64(t.fastData)<<1 | 1, 33
	}
	return 0, 1
}

func (t *Target) updateDR() {
	v := uint32(t.reg)
	switch t.inst {
	case mchp.MTAPCommand:
		cmd := mchp.Command(t.reg & 0xFF)
		t.commands = append(t.commands, cmd)
		switch cmd {
		case mchp.CmdAssertReset:
			t.status |= mchp.StatusDEVRST
		case mchp.CmdDeassertReset:
			t.status &^= mchp.StatusDEVRST
		}
	case mchp.ETAPAddress:
		t.address = v
	case mchp.ETAPData:
		t.data = v
	case mchp.ETAPControl:
		t.control = v
	case mchp.ETAPFastData:
		t.fastWrites = append(t.fastWrites, uint32(t.reg>>1))
	}
}
