package idhash

import (
	"testing"
)

func TestComputeSnapshotID(t *testing.T) {
	tests := []struct {
		name       string
		address    string
		recordedAt int64
	}{
		{"mainnet wallet", "0x1234567890abcdef1234567890abcdef12345678", 1700000000000},
		{"zero time", "0x00000000000000000000000000000000000000ff", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeSnapshotID(tt.address, tt.recordedAt)

			if len(got) != 64 {
				t.Errorf("ComputeSnapshotID() length = %d, want 64", len(got))
			}

			// Verify determinism: same inputs should produce same output
			got2 := ComputeSnapshotID(tt.address, tt.recordedAt)
			if got != got2 {
				t.Errorf("ComputeSnapshotID() not deterministic: %s != %s", got, got2)
			}
		})
	}
}

func TestComputeSnapshotID_CaseInsensitiveAddress(t *testing.T) {
	lower := ComputeSnapshotID("0xabcdef0000000000000000000000000000000001", 42)
	mixed := ComputeSnapshotID("0xABCDEF0000000000000000000000000000000001", 42)

	if lower != mixed {
		t.Errorf("checksummed and lowercase addresses should map to the same id")
	}
}

func TestComputeSnapshotID_DifferentTimes(t *testing.T) {
	a := ComputeSnapshotID("0xabc", 1)
	b := ComputeSnapshotID("0xabc", 2)

	if a == b {
		t.Errorf("different recorded_at should produce different ids")
	}
}
