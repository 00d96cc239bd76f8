package domain

import "testing"

func TestNormalizeLicensePlate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"lowercase uppercased", "abc123", "ABC123", false},
		{"surrounding whitespace trimmed", "  xy-42  ", "XY-42", false},
		{"dots and spaces allowed", "AB 12.CD", "AB 12.CD", false},
		{"empty rejected", "", "", true},
		{"whitespace only rejected", "   ", "", true},
		{"single character rejected", "A", "", true},
		{"eleven characters rejected", "ABCDEFGHIJK", "", true},
		{"ten characters accepted", "ABCDEFGHIJ", "ABCDEFGHIJ", false},
		{"underscore rejected", "AB_12", "", true},
		{"unicode rejected", "ÅB12", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeLicensePlate(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("NormalizeLicensePlate(%q) = %q, want error", tc.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeLicensePlate(%q): %v", tc.raw, err)
			}
			if got != tc.want {
				t.Errorf("NormalizeLicensePlate(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestVehicleTypesOfClasses(t *testing.T) {
	got := VehicleTypesOfClasses([]VehicleClass{VehicleClassB})
	if len(got) != 2 || got[0] != VehicleTypeSUV || got[1] != VehicleTypeVan {
		t.Errorf("class B types = %v, want [SUV VAN]", got)
	}

	all := VehicleTypesOfClasses([]VehicleClass{VehicleClassA, VehicleClassB, VehicleClassC})
	if len(all) != len(AllVehicleTypes()) {
		t.Errorf("all classes should cover the full catalogue, got %v", all)
	}
}
