package jtag

import (
	"errors"
	"fmt"
)

// Wire identifies how a programmer reaches the PIC32 TAPs.
type Wire string

const (
	WireICSP Wire = "icsp" // 2-wire 4-phase over PGEC/PGED
	WireJTAG Wire = "jtag" // 5-wire TCK/TMS/TDI/TDO
)

// AdapterInfo describes a programmer backend.
type AdapterInfo struct {
	Name         string
	Vendor       string
	Model        string
	Wire         Wire
	MinFrequency int // Hertz
	MaxFrequency int // Hertz
	SupportsMCLR bool
	Notes        string
}

// Adapter is a programmer that can scan the PIC32 MTAP/ETAP registers. TMS and
// TDI are packed LSB-first; a nil TMS buffer asks the adapter to leave the
// shift state on the last bit.
type Adapter interface {
	Info() (AdapterInfo, error)
	ShiftIR(tms, tdi []byte, bits int) (tdo []byte, err error)
	ShiftDR(tms, tdi []byte, bits int) (tdo []byte, err error)
	ResetTAP(hard bool) error
	SetSpeed(hz int) error
}

// ErrShortBuffer reports a TMS or TDI buffer that holds fewer than the
// requested number of bits.
var ErrShortBuffer = errors.New("jtag: shift buffer too short")

// MaxShiftBits bounds a single scan. The longest PIC32 register is the
// 33-bit ETAP_FASTDATA; anything far beyond it is a caller bug.
const MaxShiftBits = 4096

// ValidateShiftBuffers checks a scan request and returns the number of bytes
// each packed buffer must hold.
func ValidateShiftBuffers(tms, tdi []byte, bits int) (int, error) {
	if bits <= 0 || bits > MaxShiftBits {
		return 0, fmt.Errorf("jtag: shift length %d out of range 1..%d", bits, MaxShiftBits)
	}
	required := (bits + 7) / 8
	if len(tms) > 0 && len(tms) < required {
		return 0, fmt.Errorf("%w: tms has %d bytes, need %d", ErrShortBuffer, len(tms), required)
	}
	if len(tdi) < required {
		return 0, fmt.Errorf("%w: tdi has %d bytes, need %d", ErrShortBuffer, len(tdi), required)
	}
	return required, nil
}
