package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "pic32dec",
	Short: "PIC32 ICSP/JTAG protocol decoder",
	Long: `Decode Microchip PIC32 programming traffic from logic analyzer captures.

Captures are read as VCD. The 2-wire 4-phase ICSP interface (MCLR, PGEC, PGED)
and 5-wire JTAG (TMS, TCK, TDI, TDO) are supported; the decoder reports TAP
states, MTAP/ETAP instructions, MCHP commands, status bytes and data words.

Examples:
  pic32dec decode capture.vcd                        # Decode an ICSP capture
  pic32dec decode --variant jtag --rows Command,Data trace.vcd
  pic32dec synth -o program.vcd program.pic32        # Render a stimulus script
  pic32dec tables                                    # Show instruction tables`,
	Version: "0.9.0",
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// logger returns the diagnostics logger: stderr with verbose, silent
// otherwise.
func logger() *log.Logger {
	if verbose {
		return log.New(os.Stderr, "pic32dec: ", 0)
	}
	return log.New(io.Discard, "", 0)
}
