package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrColumnNotFound = fmt.Errorf("%w: column", ErrNotFound)

	// Contract errors: an upstream guarantee was broken
	ErrContractViolation = errors.New("analysis contract violated")
	ErrNonNumericColumn  = fmt.Errorf("%w: column is not numeric", ErrContractViolation)
	ErrTooFewColumns     = fmt.Errorf("%w: not enough columns", ErrContractViolation)

	// Recoverable per-column conditions
	ErrUnknownStrategy  = errors.New("unknown outlier detection method")
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrUnsupportedType  = errors.New("unsupported column type")
)

// NewColumnNotFoundError reports a column missing from the dataset schema
func NewColumnNotFoundError(column string) error {
	return fmt.Errorf("%w: %q", ErrColumnNotFound, column)
}

// NewContractError wraps a contract violation with the analysis that detected it
func NewContractError(analysis string, err error) error {
	return fmt.Errorf("%s: %w", analysis, err)
}

// IsNotFoundError reports whether err is a not-found condition
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsContractError reports whether err signals a broken upstream contract
func IsContractError(err error) bool {
	return errors.Is(err, ErrContractViolation)
}
