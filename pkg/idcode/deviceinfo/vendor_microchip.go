package deviceinfo

import "github.com/OpenTraceLab/OpenTraceICSP/pkg/idcode"

// Microchip PIC32MX device entries
func init() {
	const mchp = idcode.ManufacturerMicrochip

	// PIC32MX3xx/4xx: M4K core, no USB on 3xx
	register(key{ManufacturerCode: mchp, PartNumber: 0x0934}, DeviceInfo{
		Name:        "PIC32MX360F256L",
		Family:      "PIC32MX3",
		Description: "MIPS32 M4K MCU",
		Package:     "TQFP-100",
		FlashKB:     256,
		RAMKB:       32,
		Core:        "MIPS32 M4K",
		IRLength:    5,
	})

	register(key{ManufacturerCode: mchp, PartNumber: 0x0938}, DeviceInfo{
		Name:        "PIC32MX360F512L",
		Family:      "PIC32MX3",
		Description: "MIPS32 M4K MCU",
		Package:     "TQFP-100",
		FlashKB:     512,
		RAMKB:       32,
		Core:        "MIPS32 M4K",
		IRLength:    5,
	})

	register(key{ManufacturerCode: mchp, PartNumber: 0x0952}, DeviceInfo{
		Name:        "PIC32MX440F256H",
		Family:      "PIC32MX4",
		Description: "MIPS32 M4K MCU with USB OTG",
		Package:     "TQFP-64",
		FlashKB:     256,
		RAMKB:       32,
		Core:        "MIPS32 M4K",
		IRLength:    5,
	})

	register(key{ManufacturerCode: mchp, PartNumber: 0x0978}, DeviceInfo{
		Name:        "PIC32MX460F512L",
		Family:      "PIC32MX4",
		Description: "MIPS32 M4K MCU with USB OTG",
		Package:     "TQFP-100",
		FlashKB:     512,
		RAMKB:       32,
		Core:        "MIPS32 M4K",
		IRLength:    5,
	})

	// PIC32MX1xx/2xx: small pin count, USB on 2xx
	register(key{ManufacturerCode: mchp, PartNumber: 0x4A00}, DeviceInfo{
		Name:        "PIC32MX220F032B",
		Family:      "PIC32MX2",
		Description: "MIPS32 M4K MCU with USB",
		Package:     "SPDIP-28",
		FlashKB:     32,
		RAMKB:       8,
		Core:        "MIPS32 M4K",
		IRLength:    5,
	})

	register(key{ManufacturerCode: mchp, PartNumber: 0x4D00}, DeviceInfo{
		Name:        "PIC32MX250F128B",
		Family:      "PIC32MX2",
		Description: "MIPS32 M4K MCU with USB",
		Package:     "SPDIP-28",
		FlashKB:     128,
		RAMKB:       32,
		Core:        "MIPS32 M4K",
		IRLength:    5,
	})

	register(key{ManufacturerCode: mchp, PartNumber: 0x4D0A}, DeviceInfo{
		Name:        "PIC32MX270F256B",
		Family:      "PIC32MX2",
		Description: "MIPS32 M4K MCU with USB",
		Package:     "SPDIP-28",
		FlashKB:     256,
		RAMKB:       64,
		Core:        "MIPS32 M4K",
		IRLength:    5,
	})

	// PIC32MX5xx/6xx/7xx: USB, Ethernet, CAN
	register(key{ManufacturerCode: mchp, PartNumber: 0x4307}, DeviceInfo{
		Name:         "PIC32MX795F512L",
		Family:       "PIC32MX7",
		Description:  "MIPS32 M4K MCU with USB, Ethernet, CAN",
		Package:      "TQFP-100",
		FlashKB:      512,
		RAMKB:        128,
		Core:         "MIPS32 M4K",
		IRLength:     5,
		DatasheetURL: "https://ww1.microchip.com/downloads/en/DeviceDoc/PIC32MX5XX6XX7XX_Family_Datasheet_DS60001156K.pdf",
	})

	register(key{ManufacturerCode: mchp, PartNumber: 0x430E}, DeviceInfo{
		Name:        "PIC32MX795F512H",
		Family:      "PIC32MX7",
		Description: "MIPS32 M4K MCU with USB, Ethernet, CAN",
		Package:     "TQFP-64",
		FlashKB:     512,
		RAMKB:       128,
		Core:        "MIPS32 M4K",
		IRLength:    5,
	})
}
