package core

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// Domain-specific hash types
type (
	RecordHash  Hash
	Fingerprint Hash
)

func (h RecordHash) String() string  { return Hash(h).String() }
func (h Fingerprint) String() string { return Hash(h).String() }

// ComputeRecordHash hashes an attribute map independently of key order.
func ComputeRecordHash(attrs map[string]string) RecordHash {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	for _, key := range keys {
		data.WriteString(key)
		data.WriteByte(0x1f)
		data.WriteString(attrs[key])
		data.WriteByte(0x1e)
	}
	return RecordHash(NewHash([]byte(data.String())))
}

// ComputeFingerprint combines ordered parts into a single hash. Order matters:
// the same parts in a different order give a different fingerprint.
func ComputeFingerprint(parts ...string) Fingerprint {
	var data strings.Builder
	for _, part := range parts {
		data.WriteString(part)
		data.WriteByte(0x1d)
	}
	return Fingerprint(NewHash([]byte(data.String())))
}
