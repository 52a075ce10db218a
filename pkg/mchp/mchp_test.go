package mchp

import "testing"

func TestInstructionNames(t *testing.T) {
	cases := []struct {
		code  Instruction
		name  string
		owner TAP
	}{
		{EMTAPIDCode, "E_MTAP_IDCODE", MTAP},
		{MTAPSwMTAP, "MTAP_SW_MTAP", MTAP},
		{MTAPSwETAP, "MTAP_SW_ETAP", MTAP},
		{MTAPCommand, "MTAP_COMMAND", MTAP},
		{ETAPAddress, "ETAP_ADDRESS", ETAP},
		{ETAPData, "ETAP_DATA", ETAP},
		{ETAPControl, "ETAP_CONTROL", ETAP},
		{ETAPEJTAGBoot, "ETAP_EJTAGBOOT", ETAP},
		{ETAPFastData, "ETAP_FASTDATA", ETAP},
	}
	for _, tc := range cases {
		if !tc.code.Known() {
			t.Errorf("%#x not known", uint8(tc.code))
		}
		if got := tc.code.Name(); got != tc.name {
			t.Errorf("Name(%#x) = %q, want %q", uint8(tc.code), got, tc.name)
		}
		if got := tc.code.Owner(); got != tc.owner {
			t.Errorf("Owner(%s) = %s, want %s", tc.code, got, tc.owner)
		}
	}
	if len(Instructions()) != len(cases) {
		t.Fatalf("Instructions() returned %d entries, want %d", len(Instructions()), len(cases))
	}
}

func TestUnknownInstructionIsTotal(t *testing.T) {
	i := Instruction(0x1F)
	if i.Known() {
		t.Fatal("0x1f reported as known")
	}
	if got := i.Name(); got != "UNKNOWN_0x1f" {
		t.Fatalf("Name() = %q", got)
	}
}

func TestInstructionSelects(t *testing.T) {
	if tap, ok := MTAPSwETAP.Selects(); !ok || tap != ETAP {
		t.Fatalf("MTAP_SW_ETAP.Selects() = %s, %v", tap, ok)
	}
	if tap, ok := MTAPSwMTAP.Selects(); !ok || tap != MTAP {
		t.Fatalf("MTAP_SW_MTAP.Selects() = %s, %v", tap, ok)
	}
	if _, ok := ETAPFastData.Selects(); ok {
		t.Fatal("ETAP_FASTDATA must not switch TAPs")
	}
}

func TestParseInstruction(t *testing.T) {
	cases := map[string]Instruction{
		"MTAP_COMMAND":  MTAPCommand,
		"etap_fastdata": ETAPFastData,
		"0x05":          MTAPSwETAP,
		"31":            Instruction(31),
	}
	for in, want := range cases {
		got, err := ParseInstruction(in)
		if err != nil {
			t.Fatalf("ParseInstruction(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseInstruction(%q) = %s, want %s", in, got, want)
		}
	}
	for _, bad := range []string{"", "NOPE", "0x20"} {
		if _, err := ParseInstruction(bad); err == nil {
			t.Errorf("ParseInstruction(%q) succeeded", bad)
		}
	}
}

func TestCommands(t *testing.T) {
	if got := CmdErase.Name(); got != "MTAP_DR_MCHP_ERASE" {
		t.Fatalf("Name() = %q", got)
	}
	if Command(0x42).Known() {
		t.Fatal("0x42 reported as known")
	}
	if got := Command(0x42).Name(); got != "UNKNOWN_0x42" {
		t.Fatalf("Name() = %q", got)
	}
	for _, in := range []string{"MTAP_DR_MCHP_ASSERT_RST", "assert_rst", "0xd1"} {
		c, err := ParseCommand(in)
		if err != nil || c != CmdAssertReset {
			t.Fatalf("ParseCommand(%q) = %s, %v", in, c, err)
		}
	}
	if _, err := ParseCommand("0x100"); err == nil {
		t.Fatal("ParseCommand accepted a 9-bit value")
	}
	if n := len(Commands()); n != 6 {
		t.Fatalf("Commands() returned %d entries", n)
	}
}

func TestStatusFlags(t *testing.T) {
	s := StatusCPS | StatusCFGRDY
	if got := s.String(); got != "0x88 CPS CFGRDY" {
		t.Fatalf("String() = %q", got)
	}
	if !s.Ready() {
		t.Fatal("CFGRDY without FCBUSY should be ready")
	}
	if (s | StatusFCBUSY).Ready() {
		t.Fatal("FCBUSY must not be ready")
	}
	all := StatusCPS | StatusNVMERR | StatusCFGRDY | StatusFCBUSY | StatusDEVRST
	if got := len(all.Flags()); got != 5 {
		t.Fatalf("Flags() returned %d names", got)
	}
}
