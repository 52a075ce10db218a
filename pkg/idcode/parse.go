package idcode

// Field layout of a 32-bit IEEE 1149.1 IDCODE, LSB first:
//
//	[0]     always 1
//	[11:1]  JEP106 manufacturer (bank in [11:8], ID in [7:1])
//	[27:12] part number
//	[31:28] version
const (
	mfrShift     = 1
	mfrBits      = 0x7FF
	partShift    = 12
	partBits     = 0xFFFF
	versionShift = 28
	versionBits  = 0xF
)

// invalidManufacturer is the pattern IEEE 1149.1 reserves so that a scan
// chain of ones is never read as an IDCODE.
const invalidManufacturer = 0x07F

// ParseIDCode splits a raw IDCODE into its fields. It never fails; use
// IDCode.Valid to reject values that cannot be an IDCODE.
func ParseIDCode(raw uint32) IDCode {
	return IDCode{
		Raw:              raw,
		Version:          uint8(raw >> versionShift & versionBits),
		PartNumber:       uint16(raw >> partShift & partBits),
		ManufacturerCode: uint16(raw >> mfrShift & mfrBits),
		HasIDCode:        raw&1 == 1,
	}
}

// Build assembles a raw IDCODE from its fields. The mandatory bit 0 is set.
func Build(version uint8, part uint16, manufacturer uint16) uint32 {
	return uint32(version&versionBits)<<versionShift |
		uint32(part)<<partShift |
		uint32(manufacturer&mfrBits)<<mfrShift | 1
}
