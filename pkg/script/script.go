// Package script reads PIC32 programmer stimulus scripts. A script is a
// sequence of s-expressions, one programmer operation each:
//
//	; read the device ID
//	(enter-icsp)
//	(tap-reset)
//	(instruction E_MTAP_IDCODE)
//	(data 0)
//	(repeat 3 (instruction MTAP_COMMAND) (command STATUS))
//
// Scripts are compiled into Steps and played onto a synth.Waveform.
package script

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceICSP/pkg/mchp"
	"github.com/OpenTraceLab/OpenTraceICSP/pkg/synth"
)

// Op names one script operation.
type Op string

const (
	OpEnterICSP   Op = "enter-icsp"   // ()
	OpEnter       Op = "enter"        // (key bits)
	OpTAPReset    Op = "tap-reset"    // ()
	OpSetMode     Op = "set-mode"     // (value bits)
	OpInstruction Op = "instruction"  // (name|code)
	OpCommand     Op = "command"      // (name|code)
	OpStatus      Op = "status"       // ()
	OpData        Op = "data"         // (word)
	OpFastData    Op = "fastdata"     // (word)
	OpSetFastData Op = "set-fastdata" // (word)
	OpIdle        Op = "idle"         // (count)
	OpReset       Op = "reset"        // ()
	OpInterrupt   Op = "interrupt"    // (phases)
	OpRepeat      Op = "repeat"       // (count step...)
)

// arity is the number of numeric or named arguments each operation takes.
// repeat is variadic and handled separately.
var arity = map[Op]int{
	OpEnterICSP:   0,
	OpEnter:       2,
	OpTAPReset:    0,
	OpSetMode:     2,
	OpInstruction: 1,
	OpCommand:     1,
	OpStatus:      0,
	OpData:        1,
	OpFastData:    1,
	OpSetFastData: 1,
	OpIdle:        1,
	OpReset:       0,
	OpInterrupt:   1,
}

// Step is one compiled operation.
type Step struct {
	Op   Op
	Args []uint64
	Body []Step // OpRepeat only
	Line int
}

func (s Step) String() string {
	var sb strings.Builder
	sb.WriteString("(" + string(s.Op))
	for _, a := range s.Args {
		fmt.Fprintf(&sb, " %#x", a)
	}
	for _, b := range s.Body {
		sb.WriteString(" " + b.String())
	}
	sb.WriteString(")")
	return sb.String()
}

// Script is a compiled stimulus script.
type Script struct {
	Steps []Step
}

// Parse reads and compiles a script.
func Parse(r io.Reader) (*Script, error) {
	exprs, err := ParseSexp(r)
	if err != nil {
		return nil, fmt.Errorf("script: %w", err)
	}
	steps, err := compileAll(exprs)
	if err != nil {
		return nil, err
	}
	return &Script{Steps: steps}, nil
}

// ParseString compiles a script held in memory.
func ParseString(s string) (*Script, error) {
	return Parse(strings.NewReader(s))
}

// ParseFile compiles a script file.
func ParseFile(filename string) (*Script, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("script: open %s: %w", filename, err)
	}
	defer f.Close()
	return Parse(f)
}

func compileAll(exprs []Sexp) ([]Step, error) {
	steps := make([]Step, 0, len(exprs))
	for _, e := range exprs {
		st, err := compile(e)
		if err != nil {
			return nil, err
		}
		steps = append(steps, st)
	}
	return steps, nil
}

func compile(e Sexp) (Step, error) {
	list, ok := e.(*List)
	if !ok || list.Len() == 0 {
		return Step{}, fmt.Errorf("script: line %d: expected (operation ...), got %s", e.Line(), e)
	}
	head, ok := list.Head().(Atom)
	if !ok {
		return Step{}, fmt.Errorf("script: line %d: operation name must be a word, got %s", list.Line(), list.Head())
	}
	st := Step{Op: Op(strings.ToLower(head.Value)), Line: list.Line()}

	if st.Op == OpRepeat {
		if list.Len() < 2 {
			return Step{}, fmt.Errorf("script: line %d: repeat needs a count", st.Line)
		}
		n, err := number(list.Get(1))
		if err != nil {
			return Step{}, err
		}
		st.Args = []uint64{n}
		body := make([]Sexp, 0, list.Len()-2)
		for i := 2; i < list.Len(); i++ {
			body = append(body, list.Get(i))
		}
		if st.Body, err = compileAll(body); err != nil {
			return Step{}, err
		}
		return st, nil
	}

	want, ok := arity[st.Op]
	if !ok {
		return Step{}, fmt.Errorf("script: line %d: unknown operation %q", st.Line, head.Value)
	}
	if got := list.Len() - 1; got != want {
		return Step{}, fmt.Errorf("script: line %d: %s takes %d argument(s), got %d", st.Line, st.Op, want, got)
	}

	for i := 1; i < list.Len(); i++ {
		v, err := argument(st.Op, list.Get(i))
		if err != nil {
			return Step{}, err
		}
		st.Args = append(st.Args, v)
	}
	return st, nil
}

func argument(op Op, e Sexp) (uint64, error) {
	a, ok := e.(Atom)
	if !ok {
		return 0, fmt.Errorf("script: line %d: %s argument must be a word, got %s", e.Line(), op, e)
	}
	switch op {
	case OpInstruction:
		inst, err := mchp.ParseInstruction(a.Value)
		if err != nil {
			return 0, fmt.Errorf("script: line %d: %w", a.Line(), err)
		}
		return uint64(inst), nil
	case OpCommand:
		cmd, err := mchp.ParseCommand(a.Value)
		if err != nil {
			return 0, fmt.Errorf("script: line %d: %w", a.Line(), err)
		}
		return uint64(cmd), nil
	}
	v, err := number(a)
	if err != nil {
		return 0, err
	}
	switch op {
	case OpData, OpFastData, OpSetFastData:
		if v > math.MaxUint32 {
			return 0, fmt.Errorf("script: line %d: %s word %#x wider than 32 bits", a.Line(), op, v)
		}
	}
	return v, nil
}

func number(e Sexp) (uint64, error) {
	a, ok := e.(Atom)
	if !ok {
		return 0, fmt.Errorf("script: line %d: expected a number, got %s", e.Line(), e)
	}
	v, err := strconv.ParseUint(strings.ReplaceAll(a.Value, "_", ""), 0, 64)
	if err != nil {
		return 0, fmt.Errorf("script: line %d: bad number %q", a.Line(), a.Value)
	}
	return v, nil
}

// Play performs every step on w in order.
func (s *Script) Play(w *synth.Waveform) error {
	return play(w, s.Steps)
}

func play(w *synth.Waveform, steps []Step) error {
	for _, st := range steps {
		if err := st.play(w); err != nil {
			return err
		}
	}
	return nil
}

func (s Step) play(w *synth.Waveform) error {
	arg := func(i int) uint64 { return s.Args[i] }
	switch s.Op {
	case OpEnterICSP:
		w.EnterICSP()
	case OpEnter:
		w.Enter(uint32(arg(0)), int(arg(1)))
	case OpTAPReset:
		w.TAPReset()
	case OpSetMode:
		w.SetMode(arg(0), int(arg(1)))
	case OpInstruction:
		w.SendCommand(mchp.Instruction(arg(0)))
	case OpCommand:
		w.XferCommand(mchp.Command(arg(0)))
	case OpStatus:
		w.ReadStatus()
	case OpData:
		w.XferData(uint32(arg(0)))
	case OpFastData:
		w.XferFastData(uint32(arg(0)))
	case OpSetFastData:
		w.Target().SetFastData(uint32(arg(0)))
	case OpIdle:
		w.Idle(int(arg(0)))
	case OpReset:
		w.Reset()
	case OpInterrupt:
		if arg(0) > 4 {
			return fmt.Errorf("script: line %d: interrupt after %d phases, a bit has 4", s.Line, arg(0))
		}
		w.InterruptBit(false, false, int(arg(0)))
	case OpRepeat:
		for i := uint64(0); i < arg(0); i++ {
			if err := play(w, s.Body); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("script: line %d: unknown operation %q", s.Line, s.Op)
	}
	return nil
}
