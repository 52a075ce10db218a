package decoder

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/OpenTraceLab/OpenTraceICSP/pkg/annotation"
	"github.com/OpenTraceLab/OpenTraceICSP/pkg/capture"
	"github.com/OpenTraceLab/OpenTraceICSP/pkg/tap"
)

// ErrInternal reports a decoder defect, such as the TAP state variable
// leaving the 16 defined states. It is never caused by malformed input.
var ErrInternal = errors.New("decoder: internal consistency fault")

// Decoder decodes one capture. Construct a new Decoder per capture.
type Decoder struct {
	cfg    Config
	engine Engine
	log    *log.Logger
	state  State
	steps  int

	// held keeps annotations that start after an open scan began.
	held []annotation.Annotation
}

// New validates cfg and returns a decoder for it.
func New(cfg *Config, opts Options) (*Decoder, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := *cfg
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &Decoder{
		cfg:    c,
		engine: Engine{Variant: c.Variant},
		log:    opts.logger(),
		state:  NewState(),
	}, nil
}

// Config returns the validated configuration.
func (d *Decoder) Config() Config {
	return d.cfg
}

// State returns the engine state after the last processed step.
func (d *Decoder) State() State {
	return d.state
}

// Steps reports how many lane events have been processed.
func (d *Decoder) Steps() int {
	return d.steps
}

// Run pulls samples from src until it is exhausted and emits every decoded
// annotation to sink in nondecreasing start order. It continues from the
// decoder's current State.
//
// Running out of samples is normal termination and a partially received bit
// period is dropped. Run stops early on context cancellation, on a sink
// error and on an internal fault.
func (d *Decoder) Run(ctx context.Context, src capture.Source, sink annotation.Sink) (err error) {
	defer func() {
		if r := recover(); r != nil {
			ise, ok := r.(*tap.InvalidStateError)
			if !ok {
				panic(r)
			}
			err = fmt.Errorf("%w: %v", ErrInternal, ise)
		}
	}()

	ln := newLane(d.cfg.Variant, src)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		step, err := ln.next()
		if errors.Is(err, capture.ErrEndOfCapture) {
			return d.flush(sink, 0, false)
		}
		if err != nil {
			return fmt.Errorf("decoder: read capture: %w", err)
		}

		var anns []annotation.Annotation
		d.state, anns = d.engine.Step(d.state, step)
		d.steps++
		d.trace(step, anns)

		d.held = append(d.held, anns...)
		h, open := d.state.horizon()
		if err := d.flush(sink, h, open); err != nil {
			return err
		}
	}
}

// flush emits the held annotations in start order. While a scan is open only
// those starting at or before its start h are released, since the scan's own
// annotations will start at h once it is decoded.
func (d *Decoder) flush(sink annotation.Sink, h int64, open bool) error {
	sort.SliceStable(d.held, func(i, j int) bool { return d.held[i].Start < d.held[j].Start })
	n := 0
	for n < len(d.held) && (!open || d.held[n].Start <= h) {
		if err := sink.Emit(d.held[n]); err != nil {
			d.held = d.held[n+1:]
			return fmt.Errorf("decoder: emit: %w", err)
		}
		n++
	}
	d.held = append(d.held[:0], d.held[n:]...)
	return nil
}

func (d *Decoder) trace(step Step, anns []annotation.Annotation) {
	switch step.Kind {
	case StepReset:
		if step.Aborted {
			d.log.Printf("reset asserted mid-bit at sample %d, period from %d dropped", step.End, step.Start)
		}
	case StepEntry:
		if !step.Entered {
			d.log.Printf("ICSP entry failed at sample %d: %d bits, key 0x%08X", step.End, step.KeyBits, step.Key)
		}
	}
	for _, a := range anns {
		if a.Category == annotation.CategoryUnknown {
			d.log.Printf("samples %d-%d: %s", a.Start, a.End, a.Text)
		}
	}
}

// DecodeSamples runs a fresh decoder over an in-memory sample stream and
// collects the result.
func DecodeSamples(ctx context.Context, cfg *Config, samples []capture.Sample) ([]annotation.Annotation, State, error) {
	d, err := New(cfg, Options{})
	if err != nil {
		return nil, State{}, err
	}
	var c annotation.Collector
	if err := d.Run(ctx, capture.NewSliceSource(samples), &c); err != nil {
		return c.Annotations, d.State(), err
	}
	return c.Annotations, d.State(), nil
}
