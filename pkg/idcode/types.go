package idcode

import "fmt"

// IDCode is a parsed IEEE 1149.1 IDCODE as read from E_MTAP_IDCODE.
type IDCode struct {
	Raw              uint32
	Version          uint8  // silicon revision on PIC32
	PartNumber       uint16 // device ID without the revision
	ManufacturerCode uint16 // 11-bit JEP106 code
	HasIDCode        bool   // bit 0 set
}

// Valid reports whether the value can be an IDCODE at all: bit 0 set and a
// manufacturer field other than the reserved all-ones ID. A floating or
// bypassed TDO reads back as 0x00000000 or 0xFFFFFFFF and fails this test.
func (id IDCode) Valid() bool {
	return id.HasIDCode && id.ManufacturerCode&0x7F != invalidManufacturer
}

// Bank returns the JEP106 continuation count.
func (id IDCode) Bank() int {
	return int(id.ManufacturerCode >> 7)
}

func (id IDCode) String() string {
	return fmt.Sprintf("0x%08X (rev %d, part 0x%04X, mfr 0x%03X)", id.Raw, id.Version, id.PartNumber, id.ManufacturerCode)
}

// Manufacturer is a JEP106 manufacturer entry.
type Manufacturer struct {
	Code         uint16 // 11-bit code as found in an IDCODE
	Name         string // "Microchip Technology"
	Abbreviation string // "Microchip"
}
