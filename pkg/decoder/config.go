package decoder

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/OpenTraceLab/OpenTraceICSP/pkg/capture"
)

// Variant selects the physical interface and framing of a capture.
type Variant string

const (
	// VariantICSP is 2-wire 4-phase ICSP: MCLR, PGEC, PGED.
	VariantICSP Variant = "icsp"
	// VariantJTAG is 5-wire JTAG: TMS, TCK, TDI, TDO and an optional reset.
	VariantJTAG Variant = "jtag"
	// VariantLegacy is 4-phase ICSP decoded by raw TMS framing instead of TAP
	// state tracking.
	VariantLegacy Variant = "legacy"
)

// Variants lists every supported variant.
func Variants() []Variant {
	return []Variant{VariantICSP, VariantJTAG, VariantLegacy}
}

// ParseVariant maps a name to a Variant.
func ParseVariant(s string) (Variant, error) {
	v := Variant(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Variants() {
		if v == known {
			return v, nil
		}
	}
	return "", fmt.Errorf("decoder: unknown variant %q", s)
}

// Signals returns the roles the variant requires from a capture.
func (v Variant) Signals() []capture.Signal {
	switch v {
	case VariantJTAG:
		return []capture.Signal{capture.SignalTMS, capture.SignalClock, capture.SignalTDI, capture.SignalTDO}
	default:
		return []capture.Signal{capture.SignalReset, capture.SignalClock, capture.SignalData}
	}
}

// FourPhase reports whether TDI, TMS and TDO share one data wire.
func (v Variant) FourPhase() bool {
	return v == VariantICSP || v == VariantLegacy
}

// DefaultBinding returns the conventional channel names for the variant:
// MCLR/PGEC/PGED for ICSP, SYSRST/TMS/TCK/TDI/TDO for JTAG.
func DefaultBinding(v Variant) capture.Binding {
	if v == VariantJTAG {
		return capture.Binding{
			capture.SignalReset: "SYSRST",
			capture.SignalTMS:   "TMS",
			capture.SignalClock: "TCK",
			capture.SignalTDI:   "TDI",
			capture.SignalTDO:   "TDO",
		}
	}
	return capture.Binding{
		capture.SignalReset: "MCLR",
		capture.SignalClock: "PGEC",
		capture.SignalData:  "PGED",
	}
}

// Config controls which variant is decoded and how capture channels map onto
// protocol roles. It is fixed for the lifetime of a decoder.
type Config struct {
	Variant Variant         // default: icsp
	Binding capture.Binding // default: DefaultBinding(Variant)
}

// DefaultConfig returns the ICSP configuration with the conventional
// MCLR/PGEC/PGED channel names.
func DefaultConfig() *Config {
	return &Config{
		Variant: VariantICSP,
		Binding: DefaultBinding(VariantICSP),
	}
}

// Validate fills in defaults and checks that every role the variant needs is
// bound.
func (c *Config) Validate() error {
	if c.Variant == "" {
		c.Variant = VariantICSP
	}
	v, err := ParseVariant(string(c.Variant))
	if err != nil {
		return err
	}
	c.Variant = v

	if len(c.Binding) == 0 {
		c.Binding = DefaultBinding(v)
	}
	if err := c.Binding.Validate(v.Signals()...); err != nil {
		return fmt.Errorf("decoder: %s variant: %w", v, err)
	}
	return nil
}

// Options carries the ambient dependencies of a Decoder.
type Options struct {
	// Logger receives protocol desync diagnostics. Nil discards them.
	Logger *log.Logger
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.New(io.Discard, "", 0)
}
