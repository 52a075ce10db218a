package decoder

import (
	"fmt"
	"sort"

	"github.com/OpenTraceLab/OpenTraceICSP/pkg/annotation"
	"github.com/OpenTraceLab/OpenTraceICSP/pkg/mchp"
	"github.com/OpenTraceLab/OpenTraceICSP/pkg/tap"
)

// Engine is the pure transition function of the decoder. It holds only
// configuration, so one Engine can drive any number of independent States.
type Engine struct {
	Variant Variant
}

// Step applies one lane event to s and returns the successor state and the
// annotations the event produced, ordered by start sample.
//
// A bit period is processed in the TAP state it was spent in; its TMS value
// then selects the next state. Register content is therefore decoded during
// the period spent in Update-DR or Update-IR.
func (e Engine) Step(s State, st Step) (State, []annotation.Annotation) {
	var out []annotation.Annotation
	switch st.Kind {
	case StepReset:
		s, out = e.reset(s, st)
	case StepEntry:
		s, out = e.entry(s, st)
	case StepBit:
		if e.Variant == VariantLegacy {
			s, out = e.legacyBit(s, st)
		} else {
			s, out = e.bit(s, st)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return s, out
}

func (e Engine) reset(s State, st Step) (State, []annotation.Annotation) {
	text := "RESET"
	if st.Aborted {
		text = "RESET (bit aborted)"
	}
	return State{TAP: tap.StateTestLogicReset, Session: DefaultSession()}, []annotation.Annotation{
		{Start: st.Start, End: st.End, Category: annotation.CategoryJTAGState, Text: text},
	}
}

func (e Engine) entry(s State, st Step) (State, []annotation.Annotation) {
	out := []annotation.Annotation{{
		Start:    st.Start,
		End:      st.End,
		Category: annotation.CategorySync,
		Text:     fmt.Sprintf("KEY %db 0x%08X", st.KeyBits, st.Key),
	}}
	next := State{TAP: tap.StateTestLogicReset, Session: DefaultSession()}
	if st.Entered {
		next.Session.Entry = EntryEntered
		out = append(out, annotation.Annotation{
			Start:    st.Start,
			End:      st.End,
			Category: annotation.CategoryEnterICSP,
			Text:     "ICSP ENTER",
		})
	} else {
		next.Session.Entry = EntryFailed
	}
	return next, out
}

func (e Engine) bit(s State, st Step) (State, []annotation.Annotation) {
	cur := s.TAP
	out := []annotation.Annotation{stateAnnotation(cur, st.Start, st.End)}

	switch cur {
	case tap.StateTestLogicReset:
		s.Session.SelectedRegister = mchp.EMTAPIDCode

	case tap.StateCaptureDR, tap.StateCaptureIR:
		s.Shift = tap.NewShiftRegister(st.End)

	case tap.StateShiftDR, tap.StateShiftIR:
		s.Shift = s.Shift.Shift(st.TDI, st.TMS, st.TDO)

	case tap.StateUpdateDR, tap.StateUpdateIR:
		reg := s.Shift
		out = append(out,
			rawAnnotation(annotation.CategoryTMS, "TMS", reg.TMS, reg, st.End),
			rawAnnotation(annotation.CategoryTDI, "TDI", reg.TDI, reg, st.End),
			rawAnnotation(annotation.CategoryTDO, "TDO", reg.TDO, reg, st.End),
		)
		var decoded []annotation.Annotation
		s.Session, decoded = DecodeRegister(s.Session, reg, st.End)
		out = append(out, decoded...)
		out = append(out, tapAnnotation(s.Session.SelectedTAP, reg.Start, st.End))
		s.Shift = tap.NewShiftRegister(st.End)
	}

	next := tap.NextState(cur, st.TMS)

	// On 4-phase ICSP the target drives TDO one bit period ahead, so the
	// period that leads into a Shift state already carries the first TDO bit.
	if e.Variant.FourPhase() && next.IsShift() && !cur.IsShift() {
		s.Shift = s.Shift.Preload(st.TDO)
	}

	s.TAP = next
	return s, out
}

func stateAnnotation(s tap.State, start, end int64) annotation.Annotation {
	c := annotation.CategoryStateDR
	switch {
	case s == tap.StateTestLogicReset:
		c = annotation.CategoryStateTLR
	case s == tap.StateRunTestIdle:
		c = annotation.CategoryStateRTI
	case s.IsIR():
		c = annotation.CategoryStateIR
	}
	return annotation.Annotation{Start: start, End: end, Category: c, Text: s.Label()}
}

func rawAnnotation(c annotation.Category, lane string, v tap.Bits, reg tap.ShiftRegister, end int64) annotation.Annotation {
	return annotation.Annotation{Start: reg.Start, End: end, Category: c, Text: rawText(lane, v)}
}

// rawText formats a lane vector as "TDI 5b 0x5".
func rawText(lane string, v tap.Bits) string {
	return fmt.Sprintf("%s %db %s", lane, v.Len(), v)
}

func tapAnnotation(t mchp.TAP, start, end int64) annotation.Annotation {
	c := annotation.CategoryTAPStateMTAP
	if t == mchp.ETAP {
		c = annotation.CategoryTAPStateETAP
	}
	return annotation.Annotation{Start: start, End: end, Category: c, Text: t.String()}
}
