package tap

import (
	"fmt"
)

// State represents one of the 16 defined IEEE 1149.1 TAP controller states.
type State uint8

const (
	StateTestLogicReset State = iota
	StateRunTestIdle
	StateSelectDRScan
	StateCaptureDR
	StateShiftDR
	StateExit1DR
	StatePauseDR
	StateExit2DR
	StateUpdateDR
	StateSelectIRScan
	StateCaptureIR
	StateShiftIR
	StateExit1IR
	StatePauseIR
	StateExit2IR
	StateUpdateIR
)

// NumStates is the number of defined TAP states.
const NumStates = 16

type stateInfo struct {
	name  string // identifier form, e.g. "ShiftDR"
	label string // logic analyzer form, e.g. "Shift-DR"
}

var stateNames = [NumStates]stateInfo{
	StateTestLogicReset: {"TestLogicReset", "Test-Logic-Reset"},
	StateRunTestIdle:    {"RunTestIdle", "Run-Test-Idle"},
	StateSelectDRScan:   {"SelectDRScan", "Select-DR-Scan"},
	StateCaptureDR:      {"CaptureDR", "Capture-DR"},
	StateShiftDR:        {"ShiftDR", "Shift-DR"},
	StateExit1DR:        {"Exit1DR", "Exit1-DR"},
	StatePauseDR:        {"PauseDR", "Pause-DR"},
	StateExit2DR:        {"Exit2DR", "Exit2-DR"},
	StateUpdateDR:       {"UpdateDR", "Update-DR"},
	StateSelectIRScan:   {"SelectIRScan", "Select-IR-Scan"},
	StateCaptureIR:      {"CaptureIR", "Capture-IR"},
	StateShiftIR:        {"ShiftIR", "Shift-IR"},
	StateExit1IR:        {"Exit1IR", "Exit1-IR"},
	StatePauseIR:        {"PauseIR", "Pause-IR"},
	StateExit2IR:        {"Exit2IR", "Exit2-IR"},
	StateUpdateIR:       {"UpdateIR", "Update-IR"},
}

func (s State) String() string {
	if s.Valid() {
		return stateNames[s].name
	}
	return fmt.Sprintf("State(%d)", s)
}

// Label returns the hyphenated name logic analyzers use for the state.
func (s State) Label() string {
	if s.Valid() {
		return stateNames[s].label
	}
	return s.String()
}

// Valid reports whether s is one of the 16 defined states.
func (s State) Valid() bool {
	return s < NumStates
}

// IsDR reports whether the state belongs to the data register column.
func (s State) IsDR() bool {
	return s >= StateSelectDRScan && s <= StateUpdateDR
}

// IsIR reports whether the state belongs to the instruction register column.
func (s State) IsIR() bool {
	return s >= StateSelectIRScan && s <= StateUpdateIR
}

// IsShift reports whether TDI/TDO are being shifted in this state.
func (s State) IsShift() bool {
	return s == StateShiftDR || s == StateShiftIR
}

// IsCapture reports whether the state is Capture-DR or Capture-IR.
func (s State) IsCapture() bool {
	return s == StateCaptureDR || s == StateCaptureIR
}

// IsUpdate reports whether the state is Update-DR or Update-IR.
func (s State) IsUpdate() bool {
	return s == StateUpdateDR || s == StateUpdateIR
}

// Sequence captures the TMS drive pattern and the sequence of states that result
// from applying that pattern to the TAP controller.
type Sequence struct {
	TMS    []bool
	States []State
}

type stateTransitions struct {
	onZero State
	onOne  State
}

var transitions = [NumStates]stateTransitions{
	StateTestLogicReset: {onZero: StateRunTestIdle, onOne: StateTestLogicReset},
	StateRunTestIdle:    {onZero: StateRunTestIdle, onOne: StateSelectDRScan},
	StateSelectDRScan:   {onZero: StateCaptureDR, onOne: StateSelectIRScan},
	StateCaptureDR:      {onZero: StateShiftDR, onOne: StateExit1DR},
	StateShiftDR:        {onZero: StateShiftDR, onOne: StateExit1DR},
	StateExit1DR:        {onZero: StatePauseDR, onOne: StateUpdateDR},
	StatePauseDR:        {onZero: StatePauseDR, onOne: StateExit2DR},
	StateExit2DR:        {onZero: StateShiftDR, onOne: StateUpdateDR},
	StateUpdateDR:       {onZero: StateRunTestIdle, onOne: StateSelectDRScan},
	StateSelectIRScan:   {onZero: StateCaptureIR, onOne: StateTestLogicReset},
	StateCaptureIR:      {onZero: StateShiftIR, onOne: StateExit1IR},
	StateShiftIR:        {onZero: StateShiftIR, onOne: StateExit1IR},
	StateExit1IR:        {onZero: StatePauseIR, onOne: StateUpdateIR},
	StatePauseIR:        {onZero: StatePauseIR, onOne: StateExit2IR},
	StateExit2IR:        {onZero: StateShiftIR, onOne: StateUpdateIR},
	StateUpdateIR:       {onZero: StateRunTestIdle, onOne: StateSelectDRScan},
}

// InvalidStateError is the panic value raised by NextState when it is handed a
// state outside the defined 16. Reaching it means the caller corrupted its own
// state variable.
type InvalidStateError struct {
	State State
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("tap: unhandled state %d", uint8(e.State))
}

// NextState returns the next TAP state after clocking TCK with the provided TMS
// value. It panics with *InvalidStateError if an invalid state is supplied, which
// should never happen when interacting through the exported API.
func NextState(current State, tms bool) State {
	if !current.Valid() {
		panic(&InvalidStateError{State: current})
	}
	row := transitions[current]
	if tms {
		return row.onOne
	}
	return row.onZero
}

// StateMachine tracks the TAP controller state locally. It does not perform any
// I/O; instead it produces the sequences of TMS bits needed so a waveform or
// adapter can be driven separately.
type StateMachine struct {
	state State
}

// NewStateMachine creates a TAP state machine initialized to Test-Logic-Reset.
func NewStateMachine() *StateMachine {
	return &StateMachine{state: StateTestLogicReset}
}

// State reports the current TAP state tracked by the machine.
func (m *StateMachine) State() State {
	return m.state
}

// Clock advances the machine one TCK cycle with the provided TMS bit and
// returns the new state.
func (m *StateMachine) Clock(tms bool) State {
	next := NextState(m.state, tms)
	m.state = next
	return next
}

// Force puts the machine into Test-Logic-Reset without clocking, the way an
// asserted TRST or a protocol-level reset does.
func (m *StateMachine) Force() {
	m.state = StateTestLogicReset
}

// Reset applies the IEEE recommendation of clocking five consecutive TMS=1
// cycles. It returns the sequence for convenience so it can be forwarded to a
// waveform or adapter.
func (m *StateMachine) Reset() Sequence {
	seq := Sequence{
		TMS:    make([]bool, 5),
		States: make([]State, 6),
	}
	seq.States[0] = m.state
	for i := 0; i < 5; i++ {
		seq.TMS[i] = true
		seq.States[i+1] = m.Clock(true)
	}
	return seq
}

// GoTo computes the minimal sequence of TMS values needed to reach the target
// state from the current state. It updates the machine as a side effect and
// returns the generated sequence.
func (m *StateMachine) GoTo(target State) (Sequence, error) {
	path, err := Path(m.state, target)
	if err != nil {
		return Sequence{}, err
	}
	for _, bit := range path.TMS {
		m.Clock(bit)
	}
	return path, nil
}

// Path uses BFS across the TAP state diagram to find the shortest set of
// transitions between two states.
func Path(from, to State) (Sequence, error) {
	if !from.Valid() {
		return Sequence{}, fmt.Errorf("tap: invalid start state %d", from)
	}
	if !to.Valid() {
		return Sequence{}, fmt.Errorf("tap: invalid target state %d", to)
	}
	if from == to {
		return Sequence{States: []State{from}}, nil
	}

	type node struct {
		state  State
		tms    []bool
		states []State
	}

	queue := []node{{
		state:  from,
		states: []State{from},
	}}
	var visited [NumStates]bool
	visited[from] = true

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, bit := range [2]bool{false, true} {
			next := NextState(current.state, bit)
			if visited[next] {
				continue
			}

			newTMS := append(append([]bool{}, current.tms...), bit)
			newStates := append(append([]State{}, current.states...), next)

			if next == to {
				return Sequence{TMS: newTMS, States: newStates}, nil
			}

			visited[next] = true
			queue = append(queue, node{state: next, tms: newTMS, states: newStates})
		}
	}

	return Sequence{}, fmt.Errorf("tap: no path from %s to %s", from, to)
}
