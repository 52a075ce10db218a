package cmd

import (
	"fmt"
	"strconv"

	"github.com/OpenTraceLab/OpenTraceICSP/pkg/idcode/deviceinfo"
	"github.com/spf13/cobra"
)

var partsCmd = &cobra.Command{
	Use:   "parts [idcode|name]",
	Short: "List PIC32 parts the decoder identifies by IDCODE",
	Long: `Without arguments, list every PIC32 part in the device database with its
revision 0 IDCODE. With an IDCODE argument, identify that value. With a part
name, show that part.

Examples:
  pic32dec parts
  pic32dec parts 0x14307053
  pic32dec parts pic32mx795f512l`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParts,
}

func init() {
	rootCmd.AddCommand(partsCmd)
}

func runParts(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		info, err := findPart(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("IDCODE:       %s\n", info.IDCode)
		fmt.Printf("Manufacturer: %s (JEP106 bank %d, ID 0x%02X)\n",
			info.Manufacturer.Name, info.IDCode.Bank(), info.IDCode.ManufacturerCode&0x7F)
		fmt.Printf("Device:       %s\n", info.Name)
		if info.Family != "" {
			fmt.Printf("Family:       %s\n", info.Family)
		}
		if info.FlashKB > 0 {
			fmt.Printf("Memory:       %d KB flash, %d KB RAM\n", info.FlashKB, info.RAMKB)
		}
		if info.Package != "" {
			fmt.Printf("Package:      %s\n", info.Package)
		}
		if info.Description != "" {
			fmt.Printf("Description:  %s\n", info.Description)
		}
		return nil
	}

	all := deviceinfo.All()
	fmt.Printf("Known parts (%d):\n", len(all))
	for _, info := range all {
		fmt.Printf("  0x%08X  %-18s %4d KB flash  %3d KB RAM  %s\n",
			info.IDCode.Raw, info.Name, info.FlashKB, info.RAMKB, info.Package)
	}
	return nil
}

// findPart resolves an IDCODE value or a part name.
func findPart(arg string) (deviceinfo.DeviceInfo, error) {
	if arg != "" && arg[0] >= '0' && arg[0] <= '9' {
		raw, err := strconv.ParseUint(arg, 0, 32)
		if err != nil {
			return deviceinfo.DeviceInfo{}, fmt.Errorf("invalid IDCODE %q: %w", arg, err)
		}
		return deviceinfo.Lookup(uint32(raw)), nil
	}
	info, ok := deviceinfo.ByName(arg)
	if !ok {
		return deviceinfo.DeviceInfo{}, fmt.Errorf("unknown part %q", arg)
	}
	return info, nil
}
