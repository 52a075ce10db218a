// Package capture models a sampled logic-analyzer waveform as a pull-based
// stream of edge events.
//
// A decoder never walks the samples itself. It asks a Source for the next
// sample that satisfies one of a set of edge conditions, and resumes with
// exactly that sample.
package capture

import (
	"errors"
	"fmt"
	"strings"
)

// Signal is the protocol role of a channel.
type Signal uint8

const (
	SignalReset Signal = iota
	SignalClock
	SignalData
	SignalTMS
	SignalTDI
	SignalTDO

	NumSignals = 6
)

var signalNames = [NumSignals]string{
	SignalReset: "reset",
	SignalClock: "clock",
	SignalData:  "data",
	SignalTMS:   "tms",
	SignalTDI:   "tdi",
	SignalTDO:   "tdo",
}

func (s Signal) String() string {
	if s < NumSignals {
		return signalNames[s]
	}
	return fmt.Sprintf("Signal(%d)", uint8(s))
}

// ParseSignal maps a role name such as "reset" or "tdo" to a Signal.
func ParseSignal(name string) (Signal, error) {
	for i, n := range signalNames {
		if strings.EqualFold(n, name) {
			return Signal(i), nil
		}
	}
	return 0, fmt.Errorf("capture: unknown signal role %q", name)
}

// Levels holds the logic level of every role, one bit per Signal.
type Levels uint8

// High reports whether s is at logic 1.
func (l Levels) High(s Signal) bool {
	return l&(1<<s) != 0
}

// Bit returns the level of s as 0 or 1.
func (l Levels) Bit(s Signal) uint8 {
	if l.High(s) {
		return 1
	}
	return 0
}

// With returns l with s driven to the given level.
func (l Levels) With(s Signal, high bool) Levels {
	if high {
		return l | 1<<s
	}
	return l &^ (1 << s)
}

// Sample is the level of every bound role at one point on the time axis.
// Index is monotonic but not necessarily dense: file sources only produce a
// sample where some channel changes.
type Sample struct {
	Index  int64
	Levels Levels
}

// High reports whether s is at logic 1 in this sample.
func (s Sample) High(sig Signal) bool {
	return s.Levels.High(sig)
}

// Edge is the predicate a Condition applies to one signal.
type Edge uint8

const (
	EdgeRising Edge = iota
	EdgeFalling
	EdgeHigh
	EdgeLow
	EdgeEither
)

func (e Edge) String() string {
	switch e {
	case EdgeRising:
		return "r"
	case EdgeFalling:
		return "f"
	case EdgeHigh:
		return "h"
	case EdgeLow:
		return "l"
	case EdgeEither:
		return "e"
	default:
		return fmt.Sprintf("Edge(%d)", uint8(e))
	}
}

// Condition is a single-signal wait predicate.
type Condition struct {
	Signal Signal
	Edge   Edge
}

// Rising is shorthand for a rising-edge condition on s.
func Rising(s Signal) Condition { return Condition{Signal: s, Edge: EdgeRising} }

// Falling is shorthand for a falling-edge condition on s.
func Falling(s Signal) Condition { return Condition{Signal: s, Edge: EdgeFalling} }

func (c Condition) String() string {
	return fmt.Sprintf("%s:%s", c.Signal, c.Edge)
}

// Match evaluates the condition on the transition prev -> cur. Edge
// predicates never match the first sample of a capture (hasPrev false).
func (c Condition) Match(prev, cur Levels, hasPrev bool) bool {
	now := cur.High(c.Signal)
	switch c.Edge {
	case EdgeHigh:
		return now
	case EdgeLow:
		return !now
	}
	if !hasPrev {
		return false
	}
	was := prev.High(c.Signal)
	switch c.Edge {
	case EdgeRising:
		return !was && now
	case EdgeFalling:
		return was && !now
	case EdgeEither:
		return was != now
	}
	return false
}

// ErrEndOfCapture is returned by Source.Wait once no further sample can
// satisfy the request.
var ErrEndOfCapture = errors.New("capture: end of capture")

// Source is the edge-event stream a decoder pulls from.
//
// Wait with no conditions returns the next sample unconditionally. With
// conditions it skips forward to the first sample on which any of them
// holds (OR semantics) and returns it.
type Source interface {
	Wait(conds ...Condition) (Sample, error)
}
