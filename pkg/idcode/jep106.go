package idcode

import "fmt"

// ManufacturerMicrochip is the JEP106 code PIC32 parts report.
const ManufacturerMicrochip uint16 = 0x029

// jep106 lists the manufacturers whose parts commonly share a board or a
// programmer with a PIC32. Codes are bank<<7 | ID.
var jep106 = []Manufacturer{
	{Code: 0x015, Name: "NXP (Philips)", Abbreviation: "NXP"},
	{Code: 0x017, Name: "Texas Instruments", Abbreviation: "TI"},
	{Code: 0x01F, Name: "Atmel", Abbreviation: "Atmel"},
	{Code: 0x020, Name: "STMicroelectronics", Abbreviation: "STM"},
	{Code: ManufacturerMicrochip, Name: "Microchip Technology", Abbreviation: "Microchip"},
	{Code: 0x031, Name: "Xilinx", Abbreviation: "Xilinx"},
	{Code: 0x03D, Name: "Altera", Abbreviation: "Altera"},
	{Code: 0x049, Name: "Infineon", Abbreviation: "Infineon"},
	{Code: 0x093, Name: "ARM", Abbreviation: "ARM"},
}

var manufacturers = func() map[uint16]Manufacturer {
	m := make(map[uint16]Manufacturer, len(jep106))
	for _, e := range jep106 {
		m[e.Code] = e
	}
	return m
}()

// LookupManufacturer returns the manufacturer for an 11-bit JEP106 code. For
// codes outside the table it returns a placeholder naming the code and false.
func LookupManufacturer(code uint16) (Manufacturer, bool) {
	if m, ok := manufacturers[code]; ok {
		return m, true
	}
	return Manufacturer{
		Code:         code,
		Name:         fmt.Sprintf("Unknown (0x%03X)", code),
		Abbreviation: "Unknown",
	}, false
}
