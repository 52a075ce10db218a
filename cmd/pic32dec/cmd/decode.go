package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"

	"github.com/OpenTraceLab/OpenTraceICSP/pkg/annotation"
	"github.com/OpenTraceLab/OpenTraceICSP/pkg/capture"
	"github.com/OpenTraceLab/OpenTraceICSP/pkg/decoder"
	"github.com/spf13/cobra"
)

var (
	decodeVariant string
	decodeFormat  string
	decodeRows    string
	decodeNoColor bool
	bindReset     string
	bindClock     string
	bindData      string
	bindTMS       string
	bindTDI       string
	bindTDO       string
)

var decodeCmd = &cobra.Command{
	Use:   "decode <capture.vcd>",
	Short: "Decode a PIC32 programming capture",
	Long: `Decode a VCD capture of a PIC32 programming session into annotations.

Channels are looked up by name. ICSP captures default to MCLR, PGEC and PGED;
JTAG captures to SYSRST, TMS, TCK, TDI and TDO. Use the binding flags when a
capture names them differently. Pass "-" to read the capture from stdin.

Examples:
  # Decode an ICSP capture
  pic32dec decode capture.vcd

  # Legacy framing, commands and data only
  pic32dec decode --variant legacy --rows Command,Data capture.vcd

  # JTAG capture recorded on differently named channels
  pic32dec decode --variant jtag --clock D0 --tms D1 --tdi D2 --tdo D3 trace.vcd

  # JSON lines for scripting
  pic32dec decode --format json capture.vcd`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)

	decodeCmd.Flags().StringVar(&decodeVariant, "variant", "icsp",
		"protocol variant (icsp, jtag, legacy)")
	decodeCmd.Flags().StringVarP(&decodeFormat, "format", "f", "text",
		"output format (text, json)")
	decodeCmd.Flags().StringVar(&decodeRows, "rows", "",
		"comma separated rows to print (JS, TAP, Command, Data, TMS, TDI, TDO, WTF)")
	decodeCmd.Flags().BoolVar(&decodeNoColor, "no-color", false,
		"disable colored text output")
	decodeCmd.Flags().StringVar(&bindReset, "reset", "", "channel carrying MCLR/SYSRST")
	decodeCmd.Flags().StringVar(&bindClock, "clock", "", "channel carrying PGEC/TCK")
	decodeCmd.Flags().StringVar(&bindData, "data", "", "channel carrying PGED")
	decodeCmd.Flags().StringVar(&bindTMS, "tms", "", "channel carrying TMS")
	decodeCmd.Flags().StringVar(&bindTDI, "tdi", "", "channel carrying TDI")
	decodeCmd.Flags().StringVar(&bindTDO, "tdo", "", "channel carrying TDO")
}

func runDecode(cmd *cobra.Command, args []string) error {
	variant, err := decoder.ParseVariant(decodeVariant)
	if err != nil {
		return err
	}
	rows, err := annotation.ParseRows(decodeRows)
	if err != nil {
		return err
	}

	var sink annotation.Sink
	switch decodeFormat {
	case "text":
		sink = annotation.NewTextWriter(os.Stdout, decodeNoColor)
	case "json":
		sink = annotation.NewJSONWriter(os.Stdout)
	default:
		return fmt.Errorf("unknown format %q (want text or json)", decodeFormat)
	}
	sink = annotation.FilterRows(sink, rows...)

	trace, err := readCapture(args[0])
	if err != nil {
		return err
	}

	cfg := &decoder.Config{Variant: variant, Binding: bindingFor(variant, trace)}
	d, err := decoder.New(cfg, decoder.Options{Logger: logger()})
	if err != nil {
		return err
	}
	src, err := cfg.Binding.Source(trace, variant.Signals()...)
	if err != nil {
		return err
	}

	log := logger()
	log.Printf("%s: %d channels, %d rows, timescale %s", args[0], len(trace.Channels), len(trace.Rows), trace.Timescale)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := d.Run(ctx, src, sink); err != nil {
		return fmt.Errorf("decode %s: %w", args[0], err)
	}
	log.Printf("decoded %d steps, final state %s", d.Steps(), d.State().TAP.Label())
	return nil
}

func readCapture(path string) (*capture.Trace, error) {
	if path != "-" {
		return capture.ReadVCD(path)
	}
	p, err := capture.NewVCDParser()
	if err != nil {
		return nil, err
	}
	return p.Parse(os.Stdin)
}

// bindingFor applies the binding flags over the variant's default channel
// names. An optional role whose default channel is absent from the trace is
// left unbound.
func bindingFor(v decoder.Variant, t *capture.Trace) capture.Binding {
	b := decoder.DefaultBinding(v)
	for sig, name := range map[capture.Signal]string{
		capture.SignalReset: bindReset,
		capture.SignalClock: bindClock,
		capture.SignalData:  bindData,
		capture.SignalTMS:   bindTMS,
		capture.SignalTDI:   bindTDI,
		capture.SignalTDO:   bindTDO,
	} {
		if name != "" {
			b[sig] = name
		}
	}

	required := v.Signals()
	for sig, name := range b {
		if _, ok := t.Channel(name); !ok && !slices.Contains(required, sig) {
			delete(b, sig)
		}
	}
	return b
}
