// Package decoder reconstructs the Microchip PIC32 programming protocol from a
// sampled waveform.
//
// # Overview
//
// Decoding is a pull loop over a capture.Source. A bit lane waits for the
// edges its variant needs and turns them into Steps; a pure Engine folds each
// Step into a State and returns the annotations it produced:
//
//	lane (edge waits) -> Step -> Engine.Step(State) -> annotations -> Sink
//
// Three lanes exist:
//   - 5-wire JTAG: TMS/TDI/TDO sampled on rising TCK.
//   - 4-phase ICSP: the MCHP entry key under MCLR, then TDI, TMS, a
//     turnaround and TDO multiplexed on PGED across four PGEC cycles.
//   - Legacy: the ICSP lane feeding a framer that recognizes programmer
//     pseudo-ops by their raw TMS pattern instead of tracking TAP states.
//
// The Engine tracks the 16-state TAP controller, accumulates Shift-DR and
// Shift-IR bits LSB-first and classifies every finished scan with
// DecodeRegister: MTAP/ETAP instruction loads, MCHP command-DR loads, plain
// 32-bit data and EJTAG fast data with its PrAcc bit.
//
// # Usage
//
//	cfg := decoder.DefaultConfig()
//	cfg.Variant = decoder.VariantICSP
//
//	trace, err := capture.ReadVCD("capture.vcd")
//	src, err := cfg.Binding.Source(trace, cfg.Variant.Signals()...)
//
//	d, err := decoder.New(cfg, decoder.Options{Logger: logger})
//	err = d.Run(ctx, src, annotation.NewTextWriter(os.Stdout, false))
//
// # Errors
//
// Malformed input never stops a decode. Unknown instructions and commands
// are annotated with their raw value, failed ICSP entries are retried on the
// next MCLR cycle and MCLR asserted mid-bit discards the partial bit. Run
// only fails on context cancellation, sink errors and ErrInternal.
package decoder
