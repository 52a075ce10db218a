package deviceinfo

import "github.com/OpenTraceLab/OpenTraceICSP/pkg/idcode"

// DeviceInfo contains rich information about a JTAG device
type DeviceInfo struct {
	// Key fields
	IDCode       idcode.IDCode
	Manufacturer idcode.Manufacturer

	// Human-friendly
	Name        string // "PIC32MX795F512L"
	Family      string // "PIC32MX7"
	Description string // "MIPS32 M4K MCU, USB, Ethernet, CAN"
	Package     string // "TQFP-100", if known

	// Memory
	FlashKB int
	RAMKB   int

	// JTAG specifics
	Core         string // "MIPS32 M4K"
	IRLength     int
	DatasheetURL string
}
