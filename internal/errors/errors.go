package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrTypeUnknownTable   ErrorType = "unknown_table"
	ErrTypeParse          ErrorType = "parse"
	ErrTypeValidation     ErrorType = "validation"
	ErrTypeUnsafeMutation ErrorType = "unsafe_mutation"
	ErrTypeSynthesis      ErrorType = "synthesis"
	ErrTypeExecution      ErrorType = "execution"
	ErrTypeDatabase       ErrorType = "database"
	ErrTypeConfig         ErrorType = "config"
	ErrTypeTimeout        ErrorType = "timeout"
	ErrTypeInternal       ErrorType = "internal"
)

// Error represents a structured error with type and optional suggestions
type Error struct {
	Type        ErrorType
	Message     string
	Cause       error
	Suggestions []string
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithSuggestion adds a suggestion for resolving the error
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// New creates a new structured error
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new structured error with formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with formatted message
func Wrapf(err error, errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	var structErr *Error
	if errors.As(err, &structErr) {
		return structErr.Type == errType
	}

	return false
}

// GetType returns the error type if it's a structured error
func GetType(err error) ErrorType {
	var structErr *Error
	if errors.As(err, &structErr) {
		return structErr.Type
	}

	return ErrTypeInternal
}

// NewUnknownTable creates a schema lookup miss error with suggestions
func NewUnknownTable(table string, known []string) *Error {
	err := Newf(ErrTypeUnknownTable, "no schema registered for table %q", table)
	if len(known) > 0 {
		err = err.WithSuggestion(fmt.Sprintf("known tables: %v", known))
	}

	return err.WithSuggestion("check the schema file or run introspection against the database")
}

// NewUnsafeMutation creates the hard-invariant error for an unconditioned
// UPDATE or DELETE statement.
func NewUnsafeMutation(operation, table string) *Error {
	return Newf(
		ErrTypeUnsafeMutation,
		"refusing to %s on table %q without a WHERE clause",
		operation, table,
	).WithSuggestion("add a condition identifying the rows to modify")
}
