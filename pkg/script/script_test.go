package script

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/OpenTraceLab/OpenTraceICSP/pkg/jtag"
	"github.com/OpenTraceLab/OpenTraceICSP/pkg/mchp"
	"github.com/OpenTraceLab/OpenTraceICSP/pkg/synth"
)

const readStatus = `
; poll status twice, then read the ID
(enter-icsp)
(tap-reset)
(repeat 2
  (instruction MTAP_COMMAND)
  (command status))
(instruction 0x01)   # E_MTAP_IDCODE
(data 0)
`

func TestParseSexpTracksLines(t *testing.T) {
	exprs, err := ParseSexp(strings.NewReader("(a b)\n; note\n(c \"d e\" (f))"))
	if err != nil {
		t.Fatalf("ParseSexp: %v", err)
	}
	if len(exprs) != 2 {
		t.Fatalf("got %d expressions", len(exprs))
	}
	if got := exprs[1].String(); got != "(c d e (f))" {
		t.Fatalf("String = %q", got)
	}
	if exprs[0].Line() != 1 || exprs[1].Line() != 3 {
		t.Fatalf("lines = %d, %d", exprs[0].Line(), exprs[1].Line())
	}
	inner := exprs[1].(*List).Get(1).(Atom)
	if inner.Value != "d e" {
		t.Fatalf("quoted atom = %q", inner.Value)
	}
}

func TestParseSexpErrors(t *testing.T) {
	for _, in := range []string{"(a", ")", "(a \"b)"} {
		if _, err := ParseSexp(strings.NewReader(in)); err == nil {
			t.Fatalf("ParseSexp(%q) succeeded", in)
		}
	}
}

func TestCompile(t *testing.T) {
	s, err := ParseString(readStatus)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	want := []Step{
		{Op: OpEnterICSP, Line: 3},
		{Op: OpTAPReset, Line: 4},
		{Op: OpRepeat, Args: []uint64{2}, Line: 5, Body: []Step{
			{Op: OpInstruction, Args: []uint64{uint64(mchp.MTAPCommand)}, Line: 6},
			{Op: OpCommand, Args: []uint64{uint64(mchp.CmdStatus)}, Line: 7},
		}},
		{Op: OpInstruction, Args: []uint64{uint64(mchp.EMTAPIDCode)}, Line: 8},
		{Op: OpData, Args: []uint64{0}, Line: 9},
	}
	if diff := cmp.Diff(want, s.Steps); diff != "" {
		t.Fatalf("steps mismatch (-want +got):\n%s", diff)
	}
	if got := s.Steps[2].String(); got != "(repeat 0x2 (instruction 0x7) (command 0x0))" {
		t.Fatalf("String = %q", got)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := map[string]string{
		"(frobnicate)":             "unknown operation",
		"(instruction)":            "takes 1 argument",
		"(instruction NOPE)":       "unknown instruction",
		"(command 0x100)":          "unknown command",
		"(data 0x1_0000_0000)":     "wider than 32 bits",
		"(idle many)":              "bad number",
		"enter-icsp":               "expected (operation",
		"((tap-reset))":            "must be a word",
		"(repeat)":                 "needs a count",
		"(repeat 2 (tap-reset) x)": "expected (operation",
	}
	for in, want := range tests {
		_, err := ParseString(in)
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Errorf("ParseString(%q) = %v, want error containing %q", in, err, want)
		}
	}
}

func TestPlay(t *testing.T) {
	s, err := ParseString(readStatus + "(instruction MTAP_SW_ETAP)\n(instruction ETAP_FASTDATA)\n(fastdata 0xDEADBEEF)\n")
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	target := jtag.NewTarget(0x04307053)
	w := synth.New(synth.ModeICSP, target)
	if err := s.Play(w); err != nil {
		t.Fatalf("Play: %v", err)
	}

	if diff := cmp.Diff([]mchp.Command{mchp.CmdStatus, mchp.CmdStatus}, target.Commands()); diff != "" {
		t.Fatalf("commands mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]uint32{0xDEADBEEF}, target.FastWrites()); diff != "" {
		t.Fatalf("fast writes mismatch (-want +got):\n%s", diff)
	}
	if target.SelectedTAP() != mchp.ETAP {
		t.Fatalf("SelectedTAP = %v", target.SelectedTAP())
	}
}

func TestPlayRejectsLongInterrupt(t *testing.T) {
	s, err := ParseString("(enter-icsp) (interrupt 5)")
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	w := synth.New(synth.ModeICSP, jtag.NewTarget(0))
	if err := s.Play(w); err == nil {
		t.Fatalf("expected error for 5 phases")
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.pic32")
	if err := os.WriteFile(path, []byte(readStatus), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	s, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(s.Steps) != 5 {
		t.Fatalf("got %d steps", len(s.Steps))
	}
	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
