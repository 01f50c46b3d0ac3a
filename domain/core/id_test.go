package core

import (
	"errors"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}
	if ID("not-empty").IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

// TestParseSessionKey tests session key validation
func TestParseSessionKey(t *testing.T) {
	tests := []struct {
		input    string
		expected SessionKey
		hasError bool
	}{
		{"0190c6a2-session", SessionKey("0190c6a2-session"), false},
		{"", "", true},
		{"   ", "", true},
		{"a:b", "", true},
		{"a/b", "", true},
	}

	for _, test := range tests {
		result, err := ParseSessionKey(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

func TestNewSessionKeyParses(t *testing.T) {
	key := NewSessionKey()
	if _, err := ParseSessionKey(key.String()); err != nil {
		t.Errorf("generated session key %s does not parse: %v", key, err)
	}
}

func TestComputeRecordHashIgnoresKeyOrder(t *testing.T) {
	a := ComputeRecordHash(map[string]string{"Normalized Name": "PC 34:1", "Level": "SPECIES"})
	b := ComputeRecordHash(map[string]string{"Level": "SPECIES", "Normalized Name": "PC 34:1"})
	if a != b {
		t.Errorf("expected equal hashes, got %s and %s", a, b)
	}
	c := ComputeRecordHash(map[string]string{"Level": "SPECIES", "Normalized Name": "PC 34:2"})
	if a == c {
		t.Error("expected different hashes for different values")
	}
}

func TestComputeFingerprintIsOrderSensitive(t *testing.T) {
	if ComputeFingerprint("a", "b") == ComputeFingerprint("b", "a") {
		t.Error("expected fingerprint to depend on part order")
	}
	if ComputeFingerprint("ab") == ComputeFingerprint("a", "b") {
		t.Error("expected part boundaries to matter")
	}
	if len(ComputeFingerprint("x").String()) != 64 {
		t.Error("expected sha256 hex digest")
	}
}

func TestValidationErrorsWrapSentinel(t *testing.T) {
	if !IsValidationError(ErrUnknownCorrectionMethod) {
		t.Error("unknown correction method should be a validation error")
	}
	err := NewValidationError("alpha", "out of range")
	if !errors.Is(err, ErrInvalidParams) {
		t.Error("expected wrapped ErrInvalidParams")
	}
	if !IsNotFoundError(ErrReportNotFound) {
		t.Error("report not found should be a not-found error")
	}
}
