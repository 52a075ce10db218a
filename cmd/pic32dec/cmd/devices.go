package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/OpenTraceLab/OpenTraceICSP/pkg/capture/usb"
	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List USB logic analyzers",
	Long: `Scan the host for USB logic analyzers that can record PGEC/PGED or
TCK/TMS/TDI/TDO (fx2lafw clones, Saleae, sigrok) and print a summary. Record
with your analyzer software, export VCD and pass the file to "pic32dec decode".`,
	Args: cobra.NoArgs,
	RunE: runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	infos, err := usb.DiscoverAnalyzers(ctx)
	if err != nil {
		return fmt.Errorf("discover analyzers: %w", err)
	}

	if len(infos) == 0 {
		fmt.Println("No logic analyzers found.")
		return nil
	}

	fmt.Println("Detected logic analyzers:")
	for _, a := range infos {
		fmt.Printf("  - %s [%s] (VID:PID %04X:%04X, bus %d addr %d)\n",
			a.Label(), a.Kind, a.VendorID, a.ProductID, a.Bus, a.Address)
	}
	return nil
}
