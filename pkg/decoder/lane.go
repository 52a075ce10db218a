package decoder

import (
	"github.com/OpenTraceLab/OpenTraceICSP/pkg/capture"
	"github.com/OpenTraceLab/OpenTraceICSP/pkg/mchp"
)

// lane turns edge waits on a Source into engine steps. Every call blocks in
// Source.Wait and returns exactly one step.
type lane interface {
	next() (Step, error)
}

func newLane(v Variant, src capture.Source) lane {
	if v.FourPhase() {
		return &icspLane{src: src}
	}
	return &jtagLane{src: src}
}

// jtagLane reads 5-wire JTAG: TMS, TDI and TDO are sampled on the rising TCK
// edge and the bit period ends on the following falling edge. The reset line
// is not consulted.
type jtagLane struct {
	src     capture.Source
	prevEnd int64
	started bool
}

func (l *jtagLane) next() (Step, error) {
	rise, err := l.src.Wait(capture.Rising(capture.SignalClock))
	if err != nil {
		return Step{}, err
	}
	if !l.started {
		l.prevEnd = rise.Index
		l.started = true
	}
	fall, err := l.src.Wait(capture.Falling(capture.SignalClock))
	if err != nil {
		return Step{}, err
	}
	st := Bit(l.prevEnd, fall.Index,
		rise.High(capture.SignalTDI), rise.High(capture.SignalTMS), rise.High(capture.SignalTDO))
	l.prevEnd = fall.Index
	return st, nil
}

// maxKeyBits caps the entry clock counter so a capture full of clocks under
// reset cannot overflow it.
const maxKeyBits = 100

type icspPhase uint8

const (
	phaseStart      icspPhase = iota // first sample not yet read
	phaseAwaitReset                  // entry failed; wait for MCLR to be asserted again
	phaseKey                         // MCLR low, collecting the key on rising PGEC
	phaseBits                        // entered, demultiplexing 4-phase bits
)

// icspLane reads 2-wire 4-phase ICSP. Before entry it collects the MCHP key
// clocked MSB-first on rising PGEC while MCLR is low. After entry every bit
// period takes four PGEC cycles: TDI on the first falling edge, TMS on the
// second, a turnaround on the third, TDO on the following rising edge, and
// one more falling edge to close the period.
//
// MCLR falling interrupts every phase. A partially clocked bit is dropped and
// a StepReset is delivered; the lane then returns to key collection.
type icspLane struct {
	src   capture.Source
	phase icspPhase

	key      uint32
	keyBits  int
	keyStart int64
	prevEnd  int64
}

func (l *icspLane) next() (Step, error) {
	for {
		switch l.phase {
		case phaseStart:
			s, err := l.src.Wait()
			if err != nil {
				return Step{}, err
			}
			if s.High(capture.SignalReset) {
				if s, err = l.src.Wait(capture.Falling(capture.SignalReset)); err != nil {
					return Step{}, err
				}
			}
			return l.resetAsserted(s.Index, s.Index, false), nil

		case phaseAwaitReset:
			s, err := l.src.Wait(capture.Falling(capture.SignalReset))
			if err != nil {
				return Step{}, err
			}
			return l.resetAsserted(s.Index, s.Index, false), nil

		case phaseKey:
			s, err := l.src.Wait(capture.Rising(capture.SignalClock), capture.Rising(capture.SignalReset))
			if err != nil {
				return Step{}, err
			}
			if s.High(capture.SignalReset) {
				return l.concludeEntry(s.Index), nil
			}
			l.key = l.key<<1 | uint32(s.Levels.Bit(capture.SignalData))
			if l.keyBits < maxKeyBits {
				l.keyBits++
			}

		case phaseBits:
			return l.bit()
		}
	}
}

func (l *icspLane) resetAsserted(start, end int64, aborted bool) Step {
	l.phase = phaseKey
	l.key = 0
	l.keyBits = 0
	l.keyStart = end
	return Step{Kind: StepReset, Start: start, End: end, Aborted: aborted}
}

func (l *icspLane) concludeEntry(at int64) Step {
	ok := l.keyBits == mchp.EntryKeyBits && l.key == mchp.EntryKey
	st := Step{
		Kind:    StepEntry,
		Start:   l.keyStart,
		End:     at,
		Key:     l.key,
		KeyBits: l.keyBits,
		Entered: ok,
	}
	if ok {
		l.phase = phaseBits
	} else {
		l.phase = phaseAwaitReset
	}
	l.prevEnd = at
	return st
}

// bit demultiplexes one 4-phase period. Each wait also wakes on MCLR
// falling, which takes priority over the clock edge on the same sample.
func (l *icspLane) bit() (Step, error) {
	fallOrReset := []capture.Condition{capture.Falling(capture.SignalClock), capture.Falling(capture.SignalReset)}
	riseOrReset := []capture.Condition{capture.Rising(capture.SignalClock), capture.Falling(capture.SignalReset)}

	var levels [4]bool
	for phase, conds := range [...][]capture.Condition{fallOrReset, fallOrReset, fallOrReset, riseOrReset, fallOrReset} {
		s, err := l.src.Wait(conds...)
		if err != nil {
			return Step{}, err
		}
		if !s.High(capture.SignalReset) {
			if phase == 0 {
				return l.resetAsserted(s.Index, s.Index, false), nil
			}
			return l.resetAsserted(l.prevEnd, s.Index, true), nil
		}
		if phase < len(levels) {
			levels[phase] = s.High(capture.SignalData)
			continue
		}
		st := Bit(l.prevEnd, s.Index, levels[0], levels[1], levels[3])
		l.prevEnd = s.Index
		return st, nil
	}
	panic("unreachable")
}
