package tap

import (
	"fmt"
	"strings"
)

// Bits is an LSB-first bit vector: the first bit appended is bit 0. Values are
// immutable; Append returns a new vector and never writes into storage shared
// with the receiver.
type Bits struct {
	words []uint64
	n     int
}

// BitsFromUint64 returns the low n bits of v as a vector. n may exceed 64, in
// which case the upper bits are zero.
func BitsFromUint64(v uint64, n int) Bits {
	var b Bits
	for i := 0; i < n; i++ {
		b = b.Append(i < 64 && v&(1<<uint(i)) != 0)
	}
	return b
}

// BitsFromBools builds a vector from bools in shift order.
func BitsFromBools(bits []bool) Bits {
	var b Bits
	for _, bit := range bits {
		b = b.Append(bit)
	}
	return b
}

// BitsFromBytes reads n bits from an LSB-first byte buffer, the layout
// adapters use for shift data. Missing bytes read as zero.
func BitsFromBytes(buf []byte, n int) Bits {
	var b Bits
	for i := 0; i < n; i++ {
		b = b.Append(i/8 < len(buf) && buf[i/8]&(1<<uint(i%8)) != 0)
	}
	return b
}

// Bytes packs the vector LSB-first into (Len()+7)/8 bytes.
func (b Bits) Bytes() []byte {
	out := make([]byte, (b.n+7)/8)
	for i := 0; i < b.n; i++ {
		if b.Bit(i) {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return out
}

// Len returns the number of bits in the vector.
func (b Bits) Len() int {
	return b.n
}

// Bit returns bit i. Bits beyond Len read as zero.
func (b Bits) Bit(i int) bool {
	if i < 0 || i >= b.n {
		return false
	}
	return b.words[i/64]&(1<<uint(i%64)) != 0
}

// Append returns a copy of b with bit appended at position Len().
func (b Bits) Append(bit bool) Bits {
	words := b.words
	if b.n%64 == 0 {
		words = make([]uint64, len(b.words)+1)
		copy(words, b.words)
	} else {
		words = append([]uint64(nil), b.words...)
	}
	if bit {
		words[b.n/64] |= 1 << uint(b.n%64)
	}
	return Bits{words: words, n: b.n + 1}
}

// Uint64 returns the low 64 bits of the vector.
func (b Bits) Uint64() uint64 {
	if len(b.words) == 0 {
		return 0
	}
	return b.words[0]
}

// Field extracts width bits starting at bit lo. Width is capped at 64.
func (b Bits) Field(lo, width int) uint64 {
	if width > 64 {
		width = 64
	}
	var v uint64
	for i := 0; i < width; i++ {
		if b.Bit(lo + i) {
			v |= 1 << uint(i)
		}
	}
	return v
}

// Slice returns bits [lo, hi) as a new vector.
func (b Bits) Slice(lo, hi int) Bits {
	if lo < 0 {
		lo = 0
	}
	if hi > b.n {
		hi = b.n
	}
	var out Bits
	for i := lo; i < hi; i++ {
		out = out.Append(b.Bit(i))
	}
	return out
}

// String formats the vector as a hexadecimal number without leading zeros,
// e.g. "0x0" or "0x4d434850".
func (b Bits) String() string {
	top := len(b.words) - 1
	for top > 0 && b.words[top] == 0 {
		top--
	}
	if top < 0 {
		return "0x0"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%#x", b.words[top])
	for i := top - 1; i >= 0; i-- {
		fmt.Fprintf(&sb, "%016x", b.words[i])
	}
	return sb.String()
}

// ShiftRegister accumulates the TDI, TDO and TMS lanes while the TAP sits in
// Shift-DR or Shift-IR. All three vectors always hold Cycles bits.
type ShiftRegister struct {
	TDI    Bits
	TDO    Bits
	TMS    Bits
	Cycles int
	// Start is the sample index where the first shifted bit period began.
	Start int64

	// early holds a TDO bit delivered one period ahead of its slot, as on
	// 4-phase ICSP where the target drives TDO before the matching TDI.
	early    bool
	hasEarly bool
}

// NewShiftRegister returns an empty accumulator starting at sample start.
func NewShiftRegister(start int64) ShiftRegister {
	return ShiftRegister{Start: start}
}

// Preload seeds the TDO lane with a bit captured during the Capture period.
// The bit lands in the slot of the next shifted cycle.
func (r ShiftRegister) Preload(tdo bool) ShiftRegister {
	r.early = tdo
	r.hasEarly = true
	return r
}

// Shift appends one bit period. When the register was preloaded, TDO runs one
// period behind TDI: the stored early bit fills this slot and tdo is held for
// the next one. A shift with tms set is the exit cycle; its early TDO belongs
// to whatever register is scanned next and is dropped.
func (r ShiftRegister) Shift(tdi, tms, tdo bool) ShiftRegister {
	r.TDI = r.TDI.Append(tdi)
	r.TMS = r.TMS.Append(tms)
	if r.hasEarly {
		r.TDO = r.TDO.Append(r.early)
		r.early = tdo
		if tms {
			r.early = false
			r.hasEarly = false
		}
	} else {
		r.TDO = r.TDO.Append(tdo)
	}
	r.Cycles++
	return r
}
