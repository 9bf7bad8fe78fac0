// Package errors provides structured error handling for tablediff
package errors

import (
	"fmt"
	"strings"
)

// ErrorType represents the category of error
type ErrorType string

const (
	ErrorTypeConfig    ErrorType = "CONFIG"
	ErrorTypeIO        ErrorType = "IO"
	ErrorTypeParse     ErrorType = "PARSE"
	ErrorTypeStructure ErrorType = "STRUCTURE"
	ErrorTypeStorage   ErrorType = "STORAGE"
	ErrorTypeSystem    ErrorType = "SYSTEM"
)

// Severity represents the severity level of an error
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Error represents a structured error with context and recovery guidance
type Error struct {
	Type        ErrorType              `json:"type"`
	Severity    Severity               `json:"severity"`
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	Guidance    string                 `json:"guidance,omitempty"`
	Cause       error                  `json:"cause,omitempty"`
	Context     map[string]interface{} `json:"context,omitempty"`
	Recoverable bool                   `json:"recoverable"`
}

// Error implements the error interface
func (e *Error) Error() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("[%s:%s]", e.Type, e.Code))
	parts = append(parts, e.Message)

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("caused by: %v", e.Cause))
	}

	return strings.Join(parts, " ")
}

// Unwrap returns the underlying cause error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error type
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Type == t.Type && e.Code == t.Code
	}
	return false
}

// WithContext adds context information to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithGuidance adds recovery guidance to the error
func (e *Error) WithGuidance(guidance string) *Error {
	e.Guidance = guidance
	return e
}

// WithSeverity sets the severity level of the error
func (e *Error) WithSeverity(severity Severity) *Error {
	e.Severity = severity
	return e
}

// WithRecoverable sets whether the error is recoverable
func (e *Error) WithRecoverable(recoverable bool) *Error {
	e.Recoverable = recoverable
	return e
}

// NewError creates a new Error
func NewError(errorType ErrorType, code, message string) *Error {
	return &Error{
		Type:        errorType,
		Code:        code,
		Message:     message,
		Severity:    SeverityMedium,
		Recoverable: false,
		Context:     make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with tablediff error context
func WrapError(err error, errorType ErrorType, code, message string) *Error {
	return &Error{
		Type:        errorType,
		Code:        code,
		Message:     message,
		Cause:       err,
		Severity:    SeverityMedium,
		Recoverable: false,
		Context:     make(map[string]interface{}),
	}
}

// Configuration Errors
var (
	ErrConfigNotFound = NewError(ErrorTypeConfig, "CONFIG_NOT_FOUND", "configuration file not found").
				WithGuidance("Run 'tablediff config init' to create a default configuration file")

	ErrConfigInvalid = NewError(ErrorTypeConfig, "CONFIG_INVALID", "configuration file is invalid").
				WithGuidance("Run 'tablediff config validate' to see detailed validation errors")
)

// File I/O Errors
var (
	ErrFileOpen = NewError(ErrorTypeIO, "FILE_OPEN", "failed to open input file").
			WithSeverity(SeverityHigh).
			WithGuidance("Check that the file exists and is readable")

	ErrFileRead = NewError(ErrorTypeIO, "FILE_READ", "failed to read input file").
			WithSeverity(SeverityHigh).
			WithGuidance("Check file permissions and that the file is a plain text file")
)

// Parse Errors
var (
	ErrFileEmpty = NewError(ErrorTypeParse, "FILE_EMPTY", "input file is empty").
			WithGuidance("The first line must start with the number of header lines")

	ErrHeaderCount = NewError(ErrorTypeParse, "HEADER_COUNT", "first token of the first line is not an integer").
			WithGuidance("The first whitespace-separated token must be the total number of header lines")

	ErrHeaderTruncated = NewError(ErrorTypeParse, "HEADER_TRUNCATED", "declared header line count exceeds the file length").
				WithGuidance("Check that the header count on the first line matches the actual header block")

	ErrRowWidth = NewError(ErrorTypeParse, "ROW_WIDTH", "data row has a different number of values than there are columns").
			WithGuidance("Every data row must have exactly one value per column name")
)

// Structural comparison Errors
var (
	ErrColumnMissing = NewError(ErrorTypeStructure, "COLUMN_MISSING", "column present in the expected table is missing from the new table").
				WithSeverity(SeverityHigh).
				WithGuidance("The two files must share the same column names; regenerate the new file or update the expected file")

	ErrRowMissing = NewError(ErrorTypeStructure, "ROW_MISSING", "row present in the expected table is missing from the new table").
			WithSeverity(SeverityHigh).
			WithGuidance("The two files must have the same number of data rows; regenerate the new file or update the expected file")
)

// Storage Errors
var (
	ErrStorageConnection = NewError(ErrorTypeStorage, "STORAGE_CONNECTION", "failed to open history database").
				WithSeverity(SeverityCritical).
				WithGuidance("Check database file permissions and available disk space")

	ErrRunNotFound = NewError(ErrorTypeStorage, "RUN_NOT_FOUND", "comparison run not found").
			WithGuidance("Use 'tablediff history' to list recorded runs")
)

// IsRecoverable checks if an error is recoverable
func IsRecoverable(err error) bool {
	if te, ok := err.(*Error); ok {
		return te.Recoverable
	}
	return false
}

// GetSeverity returns the severity of an error
func GetSeverity(err error) Severity {
	if te, ok := err.(*Error); ok {
		return te.Severity
	}
	return SeverityMedium
}

// GetErrorType returns the type of an error
func GetErrorType(err error) ErrorType {
	if te, ok := err.(*Error); ok {
		return te.Type
	}
	return ErrorTypeSystem
}

// GetGuidance returns recovery guidance for an error
func GetGuidance(err error) string {
	if te, ok := err.(*Error); ok {
		return te.Guidance
	}
	return "Check the error message and logs for more information"
}
