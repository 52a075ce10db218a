package capture

import (
	"fmt"
	"sort"
	"strings"
)

// MaxChannels is the largest number of 1-bit channels a Trace can hold.
const MaxChannels = 64

// Row is the state of every trace channel from Time until the next row.
// Bit i of Bits is channel i.
type Row struct {
	Time int64
	Bits uint64
}

// Trace is a named multi-channel capture as stored in a file, before any
// channel has been given a protocol role.
type Trace struct {
	Channels  []string
	Timescale string
	Rows      []Row
}

// Channel returns the column of the named channel. Names compare
// case-insensitively.
func (t *Trace) Channel(name string) (int, bool) {
	for i, ch := range t.Channels {
		if strings.EqualFold(ch, name) {
			return i, true
		}
	}
	return 0, false
}

// Binding maps protocol roles onto trace channel names.
type Binding map[Signal]string

// Signals returns the bound roles in Signal order.
func (b Binding) Signals() []Signal {
	out := make([]Signal, 0, len(b))
	for s := range b {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Validate checks that every required role has a channel name.
func (b Binding) Validate(required ...Signal) error {
	for _, s := range required {
		if strings.TrimSpace(b[s]) == "" {
			return fmt.Errorf("capture: no channel bound to %s", s)
		}
	}
	return nil
}

// Source resolves the binding against a trace and returns a replayable
// source of role levels. Rows on which none of the bound channels change are
// folded into the previous sample.
func (b Binding) Source(t *Trace, required ...Signal) (*SliceSource, error) {
	if err := b.Validate(required...); err != nil {
		return nil, err
	}

	type column struct {
		signal Signal
		index  int
	}
	var cols []column
	for _, s := range b.Signals() {
		name := b[s]
		if name == "" {
			continue
		}
		idx, ok := t.Channel(name)
		if !ok {
			return nil, fmt.Errorf("capture: channel %q for %s not found (have %s)", name, s, strings.Join(t.Channels, ", "))
		}
		cols = append(cols, column{signal: s, index: idx})
	}

	samples := make([]Sample, 0, len(t.Rows))
	for _, row := range t.Rows {
		var lv Levels
		for _, c := range cols {
			lv = lv.With(c.signal, row.Bits&(1<<uint(c.index)) != 0)
		}
		if n := len(samples); n > 0 && samples[n-1].Levels == lv {
			continue
		}
		samples = append(samples, Sample{Index: row.Time, Levels: lv})
	}
	return NewSliceSource(samples), nil
}

// TraceFromSamples is the inverse of Binding.Source: it lays role samples out
// as named channels, one per bound role in Signal order.
func TraceFromSamples(b Binding, samples []Sample, timescale string) *Trace {
	signals := b.Signals()
	t := &Trace{Timescale: timescale}
	for _, s := range signals {
		t.Channels = append(t.Channels, b[s])
	}
	t.Rows = make([]Row, 0, len(samples))
	for _, smp := range samples {
		var bits uint64
		for i, s := range signals {
			if smp.High(s) {
				bits |= 1 << uint(i)
			}
		}
		t.Rows = append(t.Rows, Row{Time: smp.Index, Bits: bits})
	}
	return t
}
