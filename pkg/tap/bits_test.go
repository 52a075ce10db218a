package tap

import "testing"

func TestBitsAppendIsLSBFirst(t *testing.T) {
	b := BitsFromBools([]bool{true, false, true, true, false})
	if b.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", b.Len())
	}
	if got := b.Uint64(); got != 0x0D {
		t.Fatalf("Uint64() = %#x, want 0xd", got)
	}
	if got := b.String(); got != "0xd" {
		t.Fatalf("String() = %q, want 0xd", got)
	}
}

func TestBitsAppendDoesNotAlias(t *testing.T) {
	base := BitsFromUint64(0, 3)
	a := base.Append(true)
	b := base.Append(false)
	if !a.Bit(3) || b.Bit(3) {
		t.Fatalf("appends share storage: a=%s b=%s", a, b)
	}
	if base.Len() != 3 {
		t.Fatalf("base mutated: len %d", base.Len())
	}
}

func TestBitsWide(t *testing.T) {
	var b Bits
	for i := 0; i < 70; i++ {
		b = b.Append(i == 0 || i == 69)
	}
	if b.Len() != 70 {
		t.Fatalf("Len() = %d", b.Len())
	}
	if got, want := b.String(), "0x200000000000000001"; got != want {
		t.Fatalf("String() = %s, want %s", got, want)
	}
	if got := b.Field(64, 6); got != 0x20 {
		t.Fatalf("Field(64, 6) = %#x, want 0x20", got)
	}
	if got := b.Slice(1, 70).Len(); got != 69 {
		t.Fatalf("Slice length = %d", got)
	}
}

func TestBitsZero(t *testing.T) {
	var b Bits
	if b.String() != "0x0" || b.Uint64() != 0 || b.Bit(3) {
		t.Fatalf("zero vector misbehaves: %s", b)
	}
	if got := BitsFromUint64(0, 8).String(); got != "0x0" {
		t.Fatalf("String() = %q", got)
	}
}

func TestBitsField(t *testing.T) {
	b := BitsFromUint64(0x4D434850, 32)
	if got := b.Field(0, 8); got != 0x50 {
		t.Fatalf("Field(0,8) = %#x", got)
	}
	if got := b.Field(24, 8); got != 0x4D {
		t.Fatalf("Field(24,8) = %#x", got)
	}
	if got := b.Field(30, 8); got != 0x1 {
		t.Fatalf("Field past end = %#x", got)
	}
}

func TestShiftRegisterDirect(t *testing.T) {
	r := NewShiftRegister(10)
	tdi := []bool{true, false, true, true, false}
	for i, bit := range tdi {
		r = r.Shift(bit, i == len(tdi)-1, !bit)
	}
	if r.Cycles != 5 || r.TDI.Len() != 5 || r.TDO.Len() != 5 || r.TMS.Len() != 5 {
		t.Fatalf("lengths: cycles=%d tdi=%d tdo=%d tms=%d", r.Cycles, r.TDI.Len(), r.TDO.Len(), r.TMS.Len())
	}
	if r.TDI.Uint64() != 0x0D {
		t.Fatalf("TDI = %s", r.TDI)
	}
	if r.TDO.Uint64() != 0x12 {
		t.Fatalf("TDO = %s, want 0x12", r.TDO)
	}
	if r.TMS.Uint64() != 0x10 {
		t.Fatalf("TMS = %s, want 0x10", r.TMS)
	}
	if r.Start != 10 {
		t.Fatalf("Start = %d", r.Start)
	}
}

func TestShiftRegisterPreloadRunsTDOOnePeriodEarly(t *testing.T) {
	// Target value 0b1011: bit 0 arrives with the capture period, bits 1..3 with
	// shift periods 0..2, and the exit period carries a bit for the next scan.
	r := NewShiftRegister(0).Preload(true)
	r = r.Shift(false, false, true)  // bit 1
	r = r.Shift(false, false, false) // bit 2
	r = r.Shift(false, false, true)  // bit 3
	r = r.Shift(false, true, true)   // exit; discarded
	if r.Cycles != 4 || r.TDO.Len() != 4 {
		t.Fatalf("cycles=%d tdo len=%d", r.Cycles, r.TDO.Len())
	}
	if got := r.TDO.Uint64(); got != 0x0B {
		t.Fatalf("TDO = %#x, want 0xb", got)
	}
}

func TestBitsBytes(t *testing.T) {
	b := BitsFromBytes([]byte{0x50, 0x48, 0x43, 0x4D, 0x01}, 33)
	if b.Len() != 33 {
		t.Fatalf("Len = %d", b.Len())
	}
	if got := b.Uint64(); got != 0x14D434850 {
		t.Fatalf("Uint64 = %#x", got)
	}
	if got := b.Bytes(); len(got) != 5 || got[0] != 0x50 || got[4] != 0x01 {
		t.Fatalf("Bytes = % X", got)
	}
	if got := BitsFromBytes(nil, 3); got.Len() != 3 || got.Uint64() != 0 {
		t.Fatalf("short buffer = %v (%d bits)", got, got.Len())
	}
}
