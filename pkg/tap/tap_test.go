package tap

import "testing"

func TestNextStateTable(t *testing.T) {
	type transition struct {
		start State
		tms   bool
		end   State
	}

	cases := []transition{
		{StateTestLogicReset, false, StateRunTestIdle},
		{StateTestLogicReset, true, StateTestLogicReset},
		{StateRunTestIdle, false, StateRunTestIdle},
		{StateRunTestIdle, true, StateSelectDRScan},
		{StateSelectDRScan, false, StateCaptureDR},
		{StateSelectDRScan, true, StateSelectIRScan},
		{StateSelectIRScan, false, StateCaptureIR},
		{StateSelectIRScan, true, StateTestLogicReset},
		{StateCaptureDR, false, StateShiftDR},
		{StateCaptureDR, true, StateExit1DR},
		{StateCaptureIR, false, StateShiftIR},
		{StateCaptureIR, true, StateExit1IR},
		{StateShiftDR, false, StateShiftDR},
		{StateShiftDR, true, StateExit1DR},
		{StateShiftIR, false, StateShiftIR},
		{StateShiftIR, true, StateExit1IR},
		{StateExit1DR, false, StatePauseDR},
		{StateExit1DR, true, StateUpdateDR},
		{StateExit1IR, false, StatePauseIR},
		{StateExit1IR, true, StateUpdateIR},
		{StatePauseDR, false, StatePauseDR},
		{StatePauseDR, true, StateExit2DR},
		{StatePauseIR, false, StatePauseIR},
		{StatePauseIR, true, StateExit2IR},
		{StateExit2DR, false, StateShiftDR},
		{StateExit2DR, true, StateUpdateDR},
		{StateExit2IR, false, StateShiftIR},
		{StateExit2IR, true, StateUpdateIR},
		{StateUpdateDR, false, StateRunTestIdle},
		{StateUpdateDR, true, StateSelectDRScan},
		{StateUpdateIR, false, StateRunTestIdle},
		{StateUpdateIR, true, StateSelectDRScan},
	}

	if len(cases) != 2*NumStates {
		t.Fatalf("table covers %d edges, want %d", len(cases), 2*NumStates)
	}
	for _, tc := range cases {
		got := NextState(tc.start, tc.tms)
		if got != tc.end {
			t.Fatalf("NextState(%s, %v) = %s, want %s", tc.start, tc.tms, got, tc.end)
		}
	}
}

func TestNextStatePanicsOnInvalidState(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("NextState did not panic on an undefined state")
		}
		if _, ok := r.(*InvalidStateError); !ok {
			t.Fatalf("panic value = %T, want *InvalidStateError", r)
		}
	}()
	NextState(State(NumStates), false)
}

func TestStateLabels(t *testing.T) {
	cases := map[State]string{
		StateTestLogicReset: "Test-Logic-Reset",
		StateSelectIRScan:   "Select-IR-Scan",
		StateExit2DR:        "Exit2-DR",
		StateUpdateIR:       "Update-IR",
	}
	for s, want := range cases {
		if got := s.Label(); got != want {
			t.Errorf("%s.Label() = %q, want %q", s, got, want)
		}
	}
	if got := State(42).String(); got != "State(42)" {
		t.Errorf("String() of undefined state = %q", got)
	}
}

func TestStateColumns(t *testing.T) {
	for s := State(0); s < NumStates; s++ {
		if s.IsDR() && s.IsIR() {
			t.Fatalf("%s is in both columns", s)
		}
	}
	if StateTestLogicReset.IsDR() || StateRunTestIdle.IsIR() {
		t.Fatal("TLR/RTI must not belong to a register column")
	}
	if !StateCaptureIR.IsCapture() || !StateShiftDR.IsShift() || !StateUpdateDR.IsUpdate() {
		t.Fatal("state predicates disagree with the state names")
	}
}

func TestStateMachineReset(t *testing.T) {
	m := NewStateMachine()
	// Move out of reset to ensure Reset() actually travels back.
	m.Clock(false) // -> Run-Test/Idle
	if m.State() != StateRunTestIdle {
		t.Fatalf("State() = %s, want %s", m.State(), StateRunTestIdle)
	}

	seq := m.Reset()

	if len(seq.TMS) != 5 {
		t.Fatalf("Reset sequence length = %d, want 5", len(seq.TMS))
	}
	if want := StateTestLogicReset; m.State() != want {
		t.Fatalf("State after reset = %s, want %s", m.State(), want)
	}
	if seq.States[len(seq.States)-1] != StateTestLogicReset {
		t.Fatalf("Final sequence state = %s, want %s", seq.States[len(seq.States)-1], StateTestLogicReset)
	}
}

func TestStateMachineForce(t *testing.T) {
	m := NewStateMachine()
	if _, err := m.GoTo(StatePauseDR); err != nil {
		t.Fatalf("GoTo returned error: %v", err)
	}
	m.Force()
	if m.State() != StateTestLogicReset {
		t.Fatalf("State after Force = %s", m.State())
	}
}

func TestGoToProducesExpectedPattern(t *testing.T) {
	m := NewStateMachine()
	// Move into Run-Test/Idle so GoTo has to traverse more than one edge.
	m.Clock(false)

	path, err := m.GoTo(StateShiftIR)
	if err != nil {
		t.Fatalf("GoTo returned error: %v", err)
	}

	wantBits := []bool{true, true, false, false}
	if len(path.TMS) != len(wantBits) {
		t.Fatalf("GoTo length = %d, want %d", len(path.TMS), len(wantBits))
	}
	for i, want := range wantBits {
		if path.TMS[i] != want {
			t.Fatalf("path bit %d = %v, want %v", i, path.TMS[i], want)
		}
	}
	if m.State() != StateShiftIR {
		t.Fatalf("State() = %s, want %s", m.State(), StateShiftIR)
	}

	// Go back to Run-Test/Idle to ensure BFS works from IR path.
	if _, err := m.GoTo(StateRunTestIdle); err != nil {
		t.Fatalf("GoTo RunTestIdle returned error: %v", err)
	}
	if m.State() != StateRunTestIdle {
		t.Fatalf("State() = %s, want %s", m.State(), StateRunTestIdle)
	}
}

func TestPathRejectsInvalidStates(t *testing.T) {
	if _, err := Path(State(99), StateRunTestIdle); err == nil {
		t.Fatal("expected error for invalid start state")
	}
	if _, err := Path(StateRunTestIdle, State(99)); err == nil {
		t.Fatal("expected error for invalid target state")
	}
}

// TestPathReachesEveryState walks from every state to every other state and
// replays the produced TMS pattern through NextState.
func TestPathReachesEveryState(t *testing.T) {
	for from := State(0); from < NumStates; from++ {
		for to := State(0); to < NumStates; to++ {
			seq, err := Path(from, to)
			if err != nil {
				t.Fatalf("Path(%s, %s): %v", from, to, err)
			}
			s := from
			for _, bit := range seq.TMS {
				s = NextState(s, bit)
			}
			if s != to {
				t.Fatalf("Path(%s, %s) ends in %s", from, to, s)
			}
			if len(seq.States) != len(seq.TMS)+1 {
				t.Fatalf("Path(%s, %s) has %d states for %d bits", from, to, len(seq.States), len(seq.TMS))
			}
		}
	}
}
