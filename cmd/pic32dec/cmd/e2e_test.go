package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceICSP/pkg/synth"
)

const programScript = `; status poll and device ID
(enter-icsp)
(tap-reset)
(instruction MTAP_SW_MTAP)
(instruction MTAP_COMMAND)
(command STATUS)
(instruction E_MTAP_IDCODE)
(data 0)
`

// resetFlags restores every flag variable to its default so tests do not
// leak settings into each other.
func resetFlags() {
	verbose = false
	decodeVariant = "icsp"
	decodeFormat = "text"
	decodeRows = ""
	decodeNoColor = false
	bindReset, bindClock, bindData = "", "", ""
	bindTMS, bindTDI, bindTDO = "", "", ""
	synthVariant = "icsp"
	synthOutput = ""
	synthIDCode = "0x04307053"
	synthSpeed = synth.DefaultSpeed
}

// execute runs the root command with args and returns what it printed to
// stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	// Read in background to prevent pipe buffer from blocking
	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		buf.ReadFrom(r)
		close(done)
	}()

	resetFlags()
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()

	w.Close()
	os.Stdout = old
	<-done
	return buf.String(), err
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "program.pic32")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

// synthesize renders programScript for variant and returns the VCD path.
func synthesize(t *testing.T, variant string) string {
	t.Helper()
	vcd := filepath.Join(t.TempDir(), variant+".vcd")
	out, err := execute(t, "synth", "--variant", variant, "-o", vcd, writeScript(t, programScript))
	if err != nil {
		t.Fatalf("synth: %v\nOutput: %s", err, out)
	}
	if !strings.Contains(out, "Wrote") {
		t.Fatalf("synth output = %q, want a Wrote line", out)
	}
	return vcd
}

// TestDecodeE2E synthesizes a capture per variant and decodes it back.
func TestDecodeE2E(t *testing.T) {
	icsp := synthesize(t, "icsp")
	jtag := synthesize(t, "jtag")

	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		wantContain []string
		wantAbsent  []string
	}{
		{
			name: "icsp",
			args: []string{"decode", "--no-color", icsp},
			wantContain: []string{
				"KEY 32b 0x4D434850",
				"ICSP ENTER",
				"Test-Logic-Reset",
				"MTAP COMMAND: MTAP_SW_MTAP",
				"MTAP COMMAND: MTAP_COMMAND",
				"COMMAND_DR: MTAP_DR_MCHP_STATUS",
				"STATUS: 0x88 CPS CFGRDY",
				"IDCODE 0x04307053: PIC32MX795F512L (Microchip Technology, rev 0)",
			},
		},
		{
			name: "legacy",
			args: []string{"decode", "--no-color", "--variant", "legacy", icsp},
			wantContain: []string{
				"ICSP ENTER",
				"TAP reset",
				"COMMAND_DR: MTAP_DR_MCHP_STATUS",
				"IDCODE 0x04307053",
			},
			wantAbsent: []string{"Shift-DR"},
		},
		{
			name: "jtag",
			args: []string{"decode", "--no-color", "--variant", "jtag", jtag},
			wantContain: []string{
				"MTAP COMMAND: MTAP_COMMAND",
				"STATUS: 0x88 CPS CFGRDY",
				"IDCODE 0x04307053",
			},
			wantAbsent: []string{"ICSP ENTER"},
		},
		{
			name:        "rows filter",
			args:        []string{"decode", "--no-color", "--rows", "Command", icsp},
			wantContain: []string{"COMMAND_DR: MTAP_DR_MCHP_STATUS", "IDCODE 0x04307053"},
			wantAbsent:  []string{"Shift-IR", "TDI 5b", "Normal data transfer"},
		},
		{
			name:        "json",
			args:        []string{"decode", "--format", "json", "--rows", "Command", icsp},
			wantContain: []string{`"row":"Command"`, `"text":"COMMAND_DR: MTAP_DR_MCHP_STATUS"`},
		},
		{
			name:       "renamed channels",
			args:       []string{"decode", "--no-color", "--variant", "jtag", "--clock", "TMS", "--tms", "TCK", jtag},
			wantAbsent: []string{"IDCODE 0x04307053"},
		},
		{
			name:    "wrong variant for capture",
			args:    []string{"decode", "--variant", "jtag", icsp},
			wantErr: true,
		},
		{
			name:    "unknown variant",
			args:    []string{"decode", "--variant", "swd", icsp},
			wantErr: true,
		},
		{
			name:    "unknown format",
			args:    []string{"decode", "--format", "csv", icsp},
			wantErr: true,
		},
		{
			name:    "unknown row",
			args:    []string{"decode", "--rows", "Bogus", icsp},
			wantErr: true,
		},
		{
			name:    "missing file",
			args:    []string{"decode", filepath.Join(t.TempDir(), "missing.vcd")},
			wantErr: true,
		},
		{
			name:    "no arguments",
			args:    []string{"decode"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := execute(t, tt.args...)

			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v\nOutput: %s", err, output)
			}

			for _, want := range tt.wantContain {
				if !strings.Contains(output, want) {
					t.Errorf("Output missing expected string: %q\nGot:\n%s", want, output)
				}
			}
			for _, absent := range tt.wantAbsent {
				if strings.Contains(output, absent) {
					t.Errorf("Output unexpectedly contains %q", absent)
				}
			}
		})
	}
}

// TestSynthE2E tests the synth command end-to-end
func TestSynthE2E(t *testing.T) {
	script := writeScript(t, programScript)

	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		wantContain []string
	}{
		{
			name: "icsp to stdout",
			args: []string{"synth", script},
			wantContain: []string{
				"$timescale 100 ns $end",
				"$var wire 1 ! MCLR $end",
				"PGEC",
				"PGED",
				"$enddefinitions $end",
			},
		},
		{
			name:        "jtag to stdout",
			args:        []string{"synth", "--variant", "jtag", script},
			wantContain: []string{"SYSRST", "TCK", "TMS", "TDI", "TDO"},
		},
		{
			name:    "bad idcode",
			args:    []string{"synth", "--idcode", "pic32", script},
			wantErr: true,
		},
		{
			name:    "bad speed",
			args:    []string{"synth", "--speed", "0", script},
			wantErr: true,
		},
		{
			name:    "bad variant",
			args:    []string{"synth", "--variant", "swd", script},
			wantErr: true,
		},
		{
			name:    "script error",
			args:    []string{"synth", writeScript(t, "(enter-icsp)\n(instruction NOPE)\n")},
			wantErr: true,
		},
		{
			name:    "missing script",
			args:    []string{"synth", filepath.Join(t.TempDir(), "missing.pic32")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := execute(t, tt.args...)

			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v\nOutput: %s", err, output)
			}
			for _, want := range tt.wantContain {
				if !strings.Contains(output, want) {
					t.Errorf("Output missing expected string: %q", want)
				}
			}
		})
	}
}

// TestSynthIDCodeE2E checks that --idcode reaches the decoded IDCODE.
func TestSynthIDCodeE2E(t *testing.T) {
	vcd := filepath.Join(t.TempDir(), "mx360.vcd")
	if _, err := execute(t, "synth", "--idcode", "0x10938053", "-o", vcd, writeScript(t, programScript)); err != nil {
		t.Fatalf("synth: %v", err)
	}
	out, err := execute(t, "decode", "--no-color", "--rows", "Command", vcd)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if want := "IDCODE 0x10938053: PIC32MX360F512L (Microchip Technology, rev 1)"; !strings.Contains(out, want) {
		t.Errorf("Output missing %q\nGot:\n%s", want, out)
	}
}

// TestTablesE2E tests the tables and parts commands end-to-end
func TestTablesE2E(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		wantContain []string
	}{
		{
			name: "tables",
			args: []string{"tables"},
			wantContain: []string{
				"Instructions (5-bit IR):",
				"MTAP_SW_ETAP",
				"MTAP -> ETAP",
				"ETAP_FASTDATA",
				"MTAP_DR_MCHP_ERASE",
				"CFGRDY",
			},
		},
		{
			name:        "parts",
			args:        []string{"parts"},
			wantContain: []string{"Known parts", "PIC32MX795F512L", "0x04307053"},
		},
		{
			name:        "identify part",
			args:        []string{"parts", "0x14307053"},
			wantContain: []string{"Microchip Technology (JEP106 bank 0, ID 0x29)", "PIC32MX795F512L", "512 KB flash"},
		},
		{
			name:        "part by name",
			args:        []string{"parts", "pic32mx795f512l"},
			wantContain: []string{"0x04307053", "PIC32MX795F512L"},
		},
		{
			name:    "unknown part name",
			args:    []string{"parts", "PIC32MZ9999"},
			wantErr: true,
		},
		{
			name:        "unknown part",
			args:        []string{"parts", "0x0FFFF053"},
			wantContain: []string{"Unknown device"},
		},
		{
			name:    "invalid idcode",
			args:    []string{"parts", "xyz"},
			wantErr: true,
		},
		{
			name:    "tables takes no arguments",
			args:    []string{"tables", "extra"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := execute(t, tt.args...)

			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v\nOutput: %s", err, output)
			}
			for _, want := range tt.wantContain {
				if !strings.Contains(output, want) {
					t.Errorf("Output missing expected string: %q\nGot:\n%s", want, output)
				}
			}
		})
	}
}
