package obd2

import "testing"

func TestSupportedPIDs(t *testing.T) {
	tests := []struct {
		name    string
		base    uint16
		payload []byte
		want    []uint16
	}{
		{
			name:    "empty payload",
			base:    0,
			payload: nil,
			want:    nil,
		},
		{
			name:    "lowest bit is pid 1",
			base:    0,
			payload: []byte{0x01},
			want:    []uint16{1},
		},
		{
			name:    "bit 3 of the first byte is pid 4",
			base:    0,
			payload: []byte{0x08},
			want:    []uint16{4},
		},
		{
			name:    "highest bit of the first byte is pid 8",
			base:    0,
			payload: []byte{0x80},
			want:    []uint16{8},
		},
		{
			name:    "high bits come out first within a byte",
			base:    0,
			payload: []byte{0x00, 0x81},
			want:    []uint16{16, 9},
		},
		{
			name:    "base offsets every pid",
			base:    0x20,
			payload: []byte{0x08, 0x80},
			want:    []uint16{0x24, 0x30},
		},
		{
			name:    "full four byte mask",
			base:    0,
			payload: []byte{0x00, 0x00, 0x00, 0x01},
			want:    []uint16{25},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SupportedPIDs(tt.base, tt.payload)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestRegistryFindsWatchedPIDs(t *testing.T) {
	for _, id := range []uint16{EngineSpeedPID, VehicleSpeedPID} {
		desc, ok := Find(id)
		if !ok {
			t.Fatalf("pid 0x%02X not in registry", id)
		}
		if desc.Frequency <= 0 {
			t.Errorf("pid 0x%02X has no poll frequency", id)
		}
	}
	if _, ok := Find(0x01); ok {
		t.Error("found a descriptor for an unregistered pid")
	}
}
