package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// ComputeSnapshotID computes a deterministic snapshot_id using SHA256.
// Formula: SHA256(lower(address)|recorded_at)
// Returns hex-encoded hash (64 characters).
func ComputeSnapshotID(address string, recordedAt int64) string {
	data := fmt.Sprintf("%s|%d", strings.ToLower(address), recordedAt)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
