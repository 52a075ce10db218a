package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/OpenTraceLab/OpenTraceICSP/pkg/mchp"
	"github.com/spf13/cobra"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Print the MTAP/ETAP instruction and MCHP command tables",
	Long: `Print the 5-bit instructions the PIC32 MTAP and ETAP accept, the 8-bit
MCHP commands loaded through MTAP_COMMAND and the status byte flags. These are
the names the decoder uses in its annotations.`,
	Args: cobra.NoArgs,
	RunE: runTables,
}

func init() {
	rootCmd.AddCommand(tablesCmd)
}

func runTables(cmd *cobra.Command, args []string) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "Instructions (5-bit IR):")
	fmt.Fprintln(tw, "  CODE\tNAME\tTAP")
	for _, i := range mchp.Instructions() {
		owner := i.Owner().String()
		if to, ok := i.Selects(); ok {
			owner = fmt.Sprintf("%s -> %s", owner, to)
		}
		fmt.Fprintf(tw, "  0x%02X\t%s\t%s\n", uint8(i), i, owner)
	}

	fmt.Fprintln(tw, "\nCommands (8-bit MTAP_COMMAND DR):")
	fmt.Fprintln(tw, "  CODE\tNAME\t")
	for _, c := range mchp.Commands() {
		fmt.Fprintf(tw, "  0x%02X\t%s\t\n", uint8(c), c)
	}

	fmt.Fprintln(tw, "\nStatus flags:")
	fmt.Fprintln(tw, "  BIT\tNAME\t")
	for bit := 7; bit >= 0; bit-- {
		flags := mchp.Status(1 << uint(bit)).Flags()
		if len(flags) == 0 {
			continue
		}
		fmt.Fprintf(tw, "  %d\t%s\t\n", bit, flags[0])
	}
	return tw.Flush()
}
