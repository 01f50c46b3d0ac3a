package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrSessionNotFound = fmt.Errorf("%w: session", ErrNotFound)
	ErrReportNotFound  = fmt.Errorf("%w: report", ErrNotFound)

	// Configuration errors: programmer errors, surfaced unmodified
	ErrInvalidParams           = errors.New("invalid analysis parameters")
	ErrUnknownCorrectionMethod = fmt.Errorf("%w: unknown correction method", ErrInvalidParams)
	ErrUnknownTestType         = fmt.Errorf("%w: unknown test type", ErrInvalidParams)
	ErrUnknownAlternative      = fmt.Errorf("%w: unknown alternative hypothesis", ErrInvalidParams)
	ErrUnknownLevel            = fmt.Errorf("%w: unknown level", ErrInvalidParams)
	ErrInvalidAlpha            = fmt.Errorf("%w: alpha must lie in (0,1)", ErrInvalidParams)
	ErrInvalidFilterCount      = fmt.Errorf("%w: filter count must be non-negative", ErrInvalidParams)

	// Data errors
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrEmptyInput       = errors.New("empty input")
	ErrMissingColumn    = errors.New("missing column")

	// Collaborator errors
	ErrNormalizerUnavailable = errors.New("lipid name normalizer unavailable")
	ErrNormalizerFailed      = errors.New("lipid name normalizer failed")
)

// Error constructors with context
func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidParams, field, reason)
}

func NewMissingColumnError(column string) error {
	return fmt.Errorf("%w: %s", ErrMissingColumn, column)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidParams)
}

func IsDataError(err error) bool {
	return errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrEmptyInput) ||
		errors.Is(err, ErrMissingColumn)
}
