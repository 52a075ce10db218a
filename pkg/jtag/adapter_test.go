package jtag

import (
	"errors"
	"testing"
)

func TestValidateShiftBuffers(t *testing.T) {
	tests := []struct {
		name      string
		tms, tdi  []byte
		bits      int
		want      int
		wantShort bool
		wantErr   bool
	}{
		{name: "instruction", tdi: []byte{0x07}, bits: 5, want: 1},
		{name: "fast data", tdi: make([]byte, 5), bits: 33, want: 5},
		{name: "explicit tms", tms: []byte{0x10}, tdi: []byte{0x01}, bits: 5, want: 1},
		{name: "zero bits", bits: 0, wantErr: true},
		{name: "too long", tdi: make([]byte, 1024), bits: MaxShiftBits + 1, wantErr: true},
		{name: "short tms", tms: []byte{0x00}, tdi: []byte{0, 0}, bits: 16, wantShort: true},
		{name: "fast data missing PrAcc byte", tdi: make([]byte, 4), bits: 33, wantShort: true},
		{name: "no tdi", bits: 8, wantShort: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := ValidateShiftBuffers(tt.tms, tt.tdi, tt.bits)
			switch {
			case tt.wantShort:
				if !errors.Is(err, ErrShortBuffer) {
					t.Fatalf("err = %v, want ErrShortBuffer", err)
				}
			case tt.wantErr:
				if err == nil || errors.Is(err, ErrShortBuffer) {
					t.Fatalf("err = %v, want a range error", err)
				}
			case err != nil:
				t.Fatalf("unexpected error: %v", err)
			case n != tt.want:
				t.Fatalf("required = %d, want %d", n, tt.want)
			}
		})
	}
}
