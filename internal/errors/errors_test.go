package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewError(t *testing.T) {
	err := NewError(ErrorTypeParse, "HEADER_COUNT", "first token is not an integer")

	assert.Equal(t, ErrorTypeParse, err.Type)
	assert.Equal(t, "HEADER_COUNT", err.Code)
	assert.Equal(t, SeverityMedium, err.Severity)
	assert.False(t, err.Recoverable)
	assert.Contains(t, err.Error(), "[PARSE:HEADER_COUNT]")
	assert.Contains(t, err.Error(), "first token is not an integer")
}

func TestWrapError(t *testing.T) {
	cause := fmt.Errorf("underlying failure")
	err := WrapError(cause, ErrorTypeIO, "FILE_OPEN", "failed to open input file")

	assert.Equal(t, cause, err.Unwrap())
	assert.Contains(t, err.Error(), "caused by: underlying failure")
	assert.True(t, stderrors.Is(err, cause))
}

func TestErrorIs(t *testing.T) {
	err := NewError(ErrorTypeStructure, "COLUMN_MISSING", "column gone")

	assert.True(t, stderrors.Is(err, ErrColumnMissing))
	assert.False(t, stderrors.Is(err, ErrRowMissing))
}

func TestBuilderMethods(t *testing.T) {
	err := NewError(ErrorTypeStorage, "TEST", "test error").
		WithSeverity(SeverityCritical).
		WithRecoverable(true).
		WithGuidance("try again").
		WithContext("file", "a.out")

	assert.Equal(t, SeverityCritical, err.Severity)
	assert.True(t, err.Recoverable)
	assert.Equal(t, "try again", err.Guidance)
	assert.Equal(t, "a.out", err.Context["file"])
}

func TestHelpers(t *testing.T) {
	structured := NewError(ErrorTypeParse, "TEST", "test").
		WithSeverity(SeverityHigh).
		WithRecoverable(true).
		WithGuidance("do the thing")

	assert.Equal(t, ErrorTypeParse, GetErrorType(structured))
	assert.Equal(t, SeverityHigh, GetSeverity(structured))
	assert.Equal(t, "do the thing", GetGuidance(structured))
	assert.True(t, IsRecoverable(structured))
}

func TestHelpers_PlainError(t *testing.T) {
	plain := fmt.Errorf("plain")

	assert.Equal(t, ErrorTypeSystem, GetErrorType(plain))
	assert.Equal(t, SeverityMedium, GetSeverity(plain))
	assert.False(t, IsRecoverable(plain))
	assert.NotEmpty(t, GetGuidance(plain))
}

func TestPredefinedErrors(t *testing.T) {
	require.NotEmpty(t, ErrHeaderCount.Guidance)
	assert.Equal(t, ErrorTypeParse, ErrHeaderCount.Type)
	assert.Equal(t, SeverityHigh, ErrColumnMissing.Severity)
	assert.Equal(t, SeverityCritical, ErrStorageConnection.Severity)
}
