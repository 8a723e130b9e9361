// Package errors provides structured error types for the terraces tool.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - Stable process exit codes matching the legacy analysis contract
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Analysis error codes mirror the validation stages of a terrace analysis:
// input shape checks (matrix, species counts), structural checks (tree not
// binary, no root species candidate), and resource checks (missing output
// stream). Ambient codes (INVALID_INPUT, INTERNAL_ERROR) cover everything
// outside the analysis contract.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMatrixNotBinary, "entry (%d,%d) is %d", i, j, v)
//	if errors.Is(err, errors.ErrCodeMatrixNotBinary) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNewickParse, origErr, "parse %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the terrace analysis contract.
const (
	// Input validation errors
	ErrCodeNewickParse          Code = "NEWICK_PARSE_ERROR"
	ErrCodeSpeciesCountMismatch Code = "SPECIES_COUNT_MISMATCH"
	ErrCodeMatrixNotBinary      Code = "MATRIX_NOT_BINARY"
	ErrCodeTooFewSpecies        Code = "TOO_FEW_SPECIES"
	ErrCodeTooFewPartitions     Code = "TOO_FEW_PARTITIONS"

	// Structural impossibility errors
	ErrCodeNoFullDataSpecies  Code = "NO_FULL_DATA_SPECIES"
	ErrCodeSpeciesWithoutData Code = "SPECIES_WITHOUT_DATA"
	ErrCodeTreeNotBinary      Code = "TREE_NOT_BINARY"
	ErrCodeSpeciesMismatch    Code = "SPECIES_MISMATCH"

	// Resource errors
	ErrCodeNoOutputStream Code = "NO_OUTPUT_STREAM"

	// Ambient errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeInternal     Code = "INTERNAL_ERROR"
)

// exitCodes maps analysis error codes to the distinct integers returned by
// the analysis entry point. Success is 0; codes outside this table report
// the generic internal value.
var exitCodes = map[Code]int{
	ErrCodeNewickParse:          1,
	ErrCodeSpeciesCountMismatch: 2,
	ErrCodeMatrixNotBinary:      3,
	ErrCodeTooFewSpecies:        4,
	ErrCodeTooFewPartitions:     5,
	ErrCodeNoFullDataSpecies:    6,
	ErrCodeNoOutputStream:       7,
	ErrCodeSpeciesWithoutData:   8,
	ErrCodeTreeNotBinary:        9,
	ErrCodeSpeciesMismatch:      10,
}

// ExitSuccess is the exit code of a completed analysis.
const ExitSuccess = 0

// exitInternal is returned for errors with no dedicated exit code.
const exitInternal = 99

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// ExitCode maps an error to the analysis exit code contract.
// A nil error maps to ExitSuccess. Errors without a structured code, or
// with a code outside the analysis table, map to a generic internal value.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var e *Error
	if errors.As(err, &e) {
		if code, ok := exitCodes[e.Code]; ok {
			return code
		}
	}
	return exitInternal
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
