// Package usb finds USB logic analyzers that can record PIC32 programming
// traffic. It needs libusb through gousb, so it is kept apart from the
// decoding packages.
package usb

import (
	"context"
	"fmt"

	"github.com/google/gousb"
)

// AnalyzerKind categorizes logic analyzer families.
type AnalyzerKind string

const (
	AnalyzerKindFX2    AnalyzerKind = "fx2lafw"
	AnalyzerKindSaleae AnalyzerKind = "saleae"
	AnalyzerKindSigrok AnalyzerKind = "sigrok"
)

// AnalyzerInfo describes a USB logic analyzer that can record PGEC/PGED or
// TCK/TMS/TDI/TDO for later decoding.
type AnalyzerInfo struct {
	Kind        AnalyzerKind
	Description string
	VendorID    uint16
	ProductID   uint16
	Bus         int
	Address     int
}

// Label returns a user-friendly description for the analyzer.
func (a AnalyzerInfo) Label() string {
	if a.Description != "" {
		return a.Description
	}
	return fmt.Sprintf("%s (%04X:%04X)", string(a.Kind), a.VendorID, a.ProductID)
}

// DiscoverAnalyzers enumerates connected USB logic analyzers that match known
// VID/PID pairs. Devices are only inspected, never opened.
func DiscoverAnalyzers(ctx context.Context) ([]AnalyzerInfo, error) {
	var results []AnalyzerInfo
	uc := gousb.NewContext()
	defer uc.Close()

	_, err := uc.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}

		if info, ok := classifyAnalyzer(desc); ok {
			info.Bus = desc.Bus
			info.Address = desc.Address
			results = append(results, info)
		}
		return false
	})
	if err != nil && err != gousb.ErrorAccess {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

func classifyAnalyzer(desc *gousb.DeviceDesc) (AnalyzerInfo, bool) {
	for _, known := range knownAnalyzers {
		if uint16(desc.Vendor) == known.VendorID && uint16(desc.Product) == known.ProductID {
			return AnalyzerInfo{
				Kind:        known.Kind,
				Description: known.Description,
				VendorID:    known.VendorID,
				ProductID:   known.ProductID,
			}, true
		}
	}
	return AnalyzerInfo{}, false
}

type knownUSBDevice struct {
	Kind        AnalyzerKind
	VendorID    uint16
	ProductID   uint16
	Description string
}

var knownAnalyzers = []knownUSBDevice{
	{Kind: AnalyzerKindFX2, VendorID: 0x0925, ProductID: 0x3881, Description: "Saleae Logic clone (fx2lafw)"},
	{Kind: AnalyzerKindSigrok, VendorID: 0x1d50, ProductID: 0x608c, Description: "sigrok fx2lafw"},
	{Kind: AnalyzerKindSaleae, VendorID: 0x21a9, ProductID: 0x1001, Description: "Saleae Logic"},
	{Kind: AnalyzerKindSaleae, VendorID: 0x21a9, ProductID: 0x1004, Description: "Saleae Logic 8"},
	{Kind: AnalyzerKindSaleae, VendorID: 0x21a9, ProductID: 0x1005, Description: "Saleae Logic Pro 8"},
	{Kind: AnalyzerKindSaleae, VendorID: 0x21a9, ProductID: 0x1006, Description: "Saleae Logic Pro 16"},
}
