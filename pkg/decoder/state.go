package decoder

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceICSP/pkg/mchp"
	"github.com/OpenTraceLab/OpenTraceICSP/pkg/tap"
)

// Entry is the ICSP entry handshake state.
type Entry uint8

const (
	EntryNotEntered Entry = iota
	EntryEntered
	EntryFailed
)

func (e Entry) String() string {
	switch e {
	case EntryNotEntered:
		return "not-entered"
	case EntryEntered:
		return "entered"
	case EntryFailed:
		return "failed"
	default:
		return fmt.Sprintf("Entry(%d)", uint8(e))
	}
}

// Session is the protocol context that outlives individual scans.
type Session struct {
	SelectedTAP      mchp.TAP
	SelectedRegister mchp.Instruction
	Entry            Entry
}

// DefaultSession is the context after power-up or any reset: MTAP selected
// with IDCODE in the data register path.
func DefaultSession() Session {
	return Session{SelectedTAP: mchp.MTAP, SelectedRegister: mchp.EMTAPIDCode}
}

// StepKind distinguishes the events a bit lane delivers to the engine.
type StepKind uint8

const (
	// StepBit is one complete bit period.
	StepBit StepKind = iota
	// StepReset is the reset line being asserted. It interrupts any bit in
	// progress.
	StepReset
	// StepEntry concludes an ICSP key sequence, successfully or not.
	StepEntry
)

func (k StepKind) String() string {
	switch k {
	case StepBit:
		return "bit"
	case StepReset:
		return "reset"
	case StepEntry:
		return "entry"
	default:
		return fmt.Sprintf("StepKind(%d)", uint8(k))
	}
}

// Step is one event from a bit lane. Start and End are sample indices; for
// StepBit they bound the bit period.
type Step struct {
	Kind  StepKind
	Start int64
	End   int64

	// StepBit
	TDI, TMS, TDO bool

	// StepReset: a bit period was in progress and has been discarded.
	Aborted bool

	// StepEntry
	Key     uint32
	KeyBits int
	Entered bool
}

// Bit builds a StepBit.
func Bit(start, end int64, tdi, tms, tdo bool) Step {
	return Step{Kind: StepBit, Start: start, End: end, TDI: tdi, TMS: tms, TDO: tdo}
}

// State is everything the engine carries from one step to the next. It is a
// value: Engine.Step never mutates its input.
type State struct {
	TAP     tap.State
	Shift   tap.ShiftRegister
	Session Session

	frame legacyFrame
}

// NewState returns the power-up state: Test-Logic-Reset, empty shift
// register and DefaultSession.
func NewState() State {
	return State{
		TAP:     tap.StateTestLogicReset,
		Session: DefaultSession(),
	}
}

// horizon returns the earliest start sample an annotation from a later step
// can carry. It reports false when no scan or legacy frame is open, in which
// case later annotations never start before the steps already seen.
func (s State) horizon() (int64, bool) {
	if s.frame.TMS.Len() > 0 {
		return s.frame.Start, true
	}
	switch s.TAP {
	case tap.StateShiftDR, tap.StateExit1DR, tap.StatePauseDR, tap.StateExit2DR, tap.StateUpdateDR,
		tap.StateShiftIR, tap.StateExit1IR, tap.StatePauseIR, tap.StateExit2IR, tap.StateUpdateIR:
		return s.Shift.Start, true
	}
	return 0, false
}
