package decoder

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceICSP/pkg/annotation"
	"github.com/OpenTraceLab/OpenTraceICSP/pkg/idcode/deviceinfo"
	"github.com/OpenTraceLab/OpenTraceICSP/pkg/mchp"
	"github.com/OpenTraceLab/OpenTraceICSP/pkg/tap"
)

// DataWidth is the length of a standard PIC32 data register transfer.
const DataWidth = 32

// DecodeRegister classifies a finished scan by its length and the currently
// selected register, the way a PIC32 programmer's pseudo-ops line up:
//
//  1. 5 cycles: an instruction load. Selects the register and possibly the TAP.
//  2. MTAP_COMMAND selected: an MCHP command-DR load.
//  3. ETAP_FASTDATA selected: a fast-data transfer with a leading PrAcc bit.
//     Some programmers drop the 33rd cycle, so 32 cycles decode the same way.
//  4. 32 cycles: a plain data transfer.
//
// The first matching rule wins. Annotations span [reg.Start, end]. An empty
// scan (Capture straight to Exit1) decodes to nothing.
func DecodeRegister(sess Session, reg tap.ShiftRegister, end int64) (Session, []annotation.Annotation) {
	if reg.Cycles == 0 {
		return sess, nil
	}
	var out []annotation.Annotation
	emit := func(c annotation.Category, format string, args ...any) {
		out = append(out, annotation.Annotation{
			Start:    reg.Start,
			End:      end,
			Category: c,
			Text:     fmt.Sprintf(format, args...),
		})
	}

	switch {
	case reg.Cycles == mchp.IRLength:
		inst := mchp.Instruction(reg.TDI.Field(0, mchp.IRLength))
		switch {
		case !inst.Known():
			emit(annotation.CategoryUnknown, "Unknown command: %s", reg.TDI)
		case sess.SelectedTAP == mchp.ETAP:
			emit(annotation.CategoryETAPInstruction, "ETAP COMMAND: %s", inst.Name())
		default:
			emit(annotation.CategoryMTAPInstruction, "MTAP COMMAND: %s", inst.Name())
		}
		if t, ok := inst.Selects(); ok {
			sess.SelectedTAP = t
		}
		sess.SelectedRegister = inst

	case sess.SelectedRegister == mchp.MTAPCommand:
		v, fits := fitsIn(reg.TDI, mchp.CommandWidth)
		cmd := mchp.Command(v)
		if !fits || !cmd.Known() {
			emit(annotation.CategoryMTAPCommand, "COMMAND_DR: Unknown %s", reg.TDI)
			break
		}
		emit(annotation.CategoryMTAPCommand, "COMMAND_DR: %s", cmd.Name())
		if cmd == mchp.CmdStatus && reg.Cycles >= mchp.CommandWidth {
			st := mchp.Status(reg.TDO.Field(0, mchp.CommandWidth))
			emit(annotation.CategoryStatus, "STATUS: %s", st)
		}

	case sess.SelectedRegister == mchp.ETAPFastData:
		n := reg.Cycles
		emit(annotation.CategoryFastData, "Fast data transfer TDI: %s TDO: %s PrAcc PIC: %d PrAcc PROBE: %d",
			reg.TDI.Slice(1, n), reg.TDO.Slice(1, n), bit(reg.TDO.Bit(0)), bit(reg.TDI.Bit(0)))

	case reg.Cycles == DataWidth:
		emit(annotation.CategoryData, "Normal data transfer TDI: %s TDO: %s", reg.TDI, reg.TDO)
		if sess.SelectedRegister == mchp.EMTAPIDCode {
			raw := uint32(reg.TDO.Uint64())
			info := deviceinfo.Lookup(raw)
			if info.IDCode.Valid() {
				emit(annotation.CategoryIDCode, "IDCODE 0x%08X: %s (%s, rev %d)",
					raw, info.Name, info.Manufacturer.Name, info.IDCode.Version)
			}
		}
	}

	return sess, out
}

// fitsIn returns the value of b and whether it is representable in width
// bits.
func fitsIn(b tap.Bits, width int) (uint64, bool) {
	for i := width; i < b.Len(); i++ {
		if b.Bit(i) {
			return 0, false
		}
	}
	return b.Field(0, width), true
}

func bit(b bool) int {
	if b {
		return 1
	}
	return 0
}
