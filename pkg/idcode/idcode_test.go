package idcode

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseIDCode(t *testing.T) {
	got := ParseIDCode(0x14307053)
	want := IDCode{
		Raw:              0x14307053,
		Version:          1,
		PartNumber:       0x4307,
		ManufacturerCode: ManufacturerMicrochip,
		HasIDCode:        true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ParseIDCode mismatch (-want +got):\n%s", diff)
	}
	if got.Bank() != 0 {
		t.Fatalf("Bank = %d, want 0", got.Bank())
	}
}

func TestBuildRoundTrip(t *testing.T) {
	raw := Build(3, 0x0938, ManufacturerMicrochip)
	if raw != 0x30938053 {
		t.Fatalf("Build = 0x%08X, want 0x30938053", raw)
	}
	id := ParseIDCode(raw)
	if id.Version != 3 || id.PartNumber != 0x0938 || id.ManufacturerCode != ManufacturerMicrochip {
		t.Fatalf("round trip = %+v", id)
	}
}

func TestIDCodeValid(t *testing.T) {
	tests := []struct {
		raw  uint32
		want bool
	}{
		{0x04307053, true},
		{0x00000000, false}, // bit 0 clear
		{0xFFFFFFFF, false}, // reserved manufacturer
		{0x000000FF, false},
		{0x00000001, true},
	}
	for _, tt := range tests {
		if got := ParseIDCode(tt.raw).Valid(); got != tt.want {
			t.Errorf("ParseIDCode(0x%08X).Valid() = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestLookupManufacturer(t *testing.T) {
	m, ok := LookupManufacturer(ManufacturerMicrochip)
	if !ok || m.Abbreviation != "Microchip" {
		t.Fatalf("LookupManufacturer(Microchip) = %+v, %v", m, ok)
	}
	m, ok = LookupManufacturer(0x7FF)
	if ok || m.Name != "Unknown (0x7FF)" {
		t.Fatalf("LookupManufacturer(0x7FF) = %+v, %v", m, ok)
	}
}
