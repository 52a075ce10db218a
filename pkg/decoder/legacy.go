package decoder

import (
	"github.com/OpenTraceLab/OpenTraceICSP/pkg/annotation"
	"github.com/OpenTraceLab/OpenTraceICSP/pkg/mchp"
	"github.com/OpenTraceLab/OpenTraceICSP/pkg/tap"
)

// maxLegacyFrame bounds a frame that never closes, e.g. a long idle run.
const maxLegacyFrame = 4096

// TMS patterns in shift order.
var (
	legacyFooter   = []bool{true, true, false}                   // Exit1 -> Update -> Run-Test/Idle
	legacyTAPReset = []bool{true, true, true, true, true, false} // five ones to TLR, then Run-Test/Idle
	legacyIRHeader = []bool{true, true, false, false}            // Select-DR, Select-IR, Capture-IR, Shift-IR
	legacyDRHeader = []bool{true, false, false}                  // Select-DR, Capture-DR, Shift-DR
)

// legacyMinFrame is the shortest trace that may close a frame. It keeps the
// IR header itself from matching the footer.
const legacyMinFrame = 5

// legacyFrame accumulates the raw lanes of one programmer pseudo-op
// (SetMode, SendCommand, XferData, XferFastData) without tracking TAP states.
// A frame closes when its TMS trace ends in Exit1/Update/Run-Test-Idle.
type legacyFrame struct {
	TDI, TDO, TMS tap.Bits
	Start         int64
}

func (f legacyFrame) startsWith(p []bool) bool {
	if f.TMS.Len() < len(p) {
		return false
	}
	for i, b := range p {
		if f.TMS.Bit(i) != b {
			return false
		}
	}
	return true
}

func (f legacyFrame) endsWith(p []bool) bool {
	n := f.TMS.Len()
	if n < len(p) {
		return false
	}
	for i, b := range p {
		if f.TMS.Bit(n-len(p)+i) != b {
			return false
		}
	}
	return true
}

// register cuts the scanned field out of the frame: TDI after the header and
// before the two footer periods, TDO one period earlier since it is driven
// ahead of TDI.
func (f legacyFrame) register(header int) tap.ShiftRegister {
	n := f.TMS.Len()
	tdi := f.TDI.Slice(header, n-2)
	return tap.ShiftRegister{
		TDI:    tdi,
		TDO:    f.TDO.Slice(header-1, n-3),
		TMS:    f.TMS.Slice(header, n-2),
		Cycles: tdi.Len(),
		Start:  f.Start,
	}
}

func (e Engine) legacyBit(s State, st Step) (State, []annotation.Annotation) {
	f := s.frame
	if f.TMS.Len() == 0 {
		f.Start = st.Start
	}
	f.TDI = f.TDI.Append(st.TDI)
	f.TMS = f.TMS.Append(st.TMS)
	f.TDO = f.TDO.Append(st.TDO)

	var out []annotation.Annotation
	closed := true
	switch {
	case f.TMS.Len() >= legacyMinFrame && f.endsWith(legacyFooter):
		switch {
		case f.endsWith(legacyTAPReset):
			s.Session.SelectedRegister = mchp.EMTAPIDCode
			out = append(out, annotation.Annotation{
				Start: f.Start, End: st.End, Category: annotation.CategoryTAPReset, Text: "TAP reset",
			})
		case f.startsWith(legacyIRHeader):
			s.Session, out = DecodeRegister(s.Session, f.register(len(legacyIRHeader)), st.End)
		case f.startsWith(legacyDRHeader):
			s.Session, out = DecodeRegister(s.Session, f.register(len(legacyDRHeader)), st.End)
		default:
			out = append(out, unrecognizedFrame(f, st.End))
		}
	case f.TMS.Len() >= maxLegacyFrame:
		out = append(out, unrecognizedFrame(f, st.End))
	default:
		closed = false
	}

	if closed {
		f = legacyFrame{}
	}
	s.frame = f
	return s, out
}

func unrecognizedFrame(f legacyFrame, end int64) annotation.Annotation {
	return annotation.Annotation{
		Start:    f.Start,
		End:      end,
		Category: annotation.CategoryUnknown,
		Text:     "Unrecognized frame " + rawText("TMS", f.TMS),
	}
}
