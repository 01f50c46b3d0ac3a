package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	SessionKey ID
	RunID      ID
)

func (id SessionKey) String() string { return ID(id).String() }
func (id RunID) String() string      { return ID(id).String() }

// NewSessionKey returns a fresh opaque session key.
func NewSessionKey() SessionKey { return SessionKey(NewID()) }

// NewRunID returns a fresh identifier for one analysis invocation.
func NewRunID() RunID { return RunID(NewID()) }

// ParseSessionKey validates a caller supplied session key. Keys end up inside
// cache keys, so separators and whitespace are rejected.
func ParseSessionKey(s string) (SessionKey, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("session key cannot be empty")
	}
	if strings.ContainsAny(s, ": \t\n/") {
		return "", fmt.Errorf("session key %q contains reserved characters", s)
	}
	return SessionKey(s), nil
}
