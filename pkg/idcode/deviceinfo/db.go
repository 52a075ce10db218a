package deviceinfo

import (
	"sort"
	"strings"

	"github.com/OpenTraceLab/OpenTraceICSP/pkg/idcode"
)

// key is used for device database lookups. The version nibble is a silicon
// revision and does not take part.
type key struct {
	ManufacturerCode uint16
	PartNumber       uint16
}

// db is the in-memory device database
var db = make(map[key]DeviceInfo)

// register adds a device entry to the database
func register(k key, info DeviceInfo) {
	db[k] = info
}

// Lookup returns device information for a given IDCODE
// Falls back to generic info if device is not in database
func Lookup(rawID uint32) DeviceInfo {
	id := idcode.ParseIDCode(rawID)
	m, _ := idcode.LookupManufacturer(id.ManufacturerCode)

	k := key{ManufacturerCode: id.ManufacturerCode, PartNumber: id.PartNumber}
	if info, ok := db[k]; ok {
		// Enrich with parsed ID and manufacturer
		info.IDCode = id
		info.Manufacturer = m
		return info
	}

	// Unknown device, return minimal info
	return DeviceInfo{
		IDCode:       id,
		Manufacturer: m,
		Name:         "Unknown device",
		Description:  "No entry in device database",
	}
}

// All returns every registered device with its revision-0 IDCODE, sorted by
// name.
func All() []DeviceInfo {
	out := make([]DeviceInfo, 0, len(db))
	for k, info := range db {
		info.IDCode = idcode.ParseIDCode(idcode.Build(0, k.PartNumber, k.ManufacturerCode))
		info.Manufacturer, _ = idcode.LookupManufacturer(k.ManufacturerCode)
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ByName finds a registered device by its part name, ignoring case.
func ByName(name string) (DeviceInfo, bool) {
	for _, info := range All() {
		if strings.EqualFold(info.Name, name) {
			return info, true
		}
	}
	return DeviceInfo{}, false
}
