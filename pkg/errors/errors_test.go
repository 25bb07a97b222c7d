package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	// Test without cause
	err := New(CodeMediaEncodeFailed, "Test error")
	assert.Equal(t, "[1801] Test error", err.Error())

	// Test with cause
	cause := errors.New("underlying error")
	errWithCause := Wrap(CodeMediaEncodeFailed, "Test error", cause)
	assert.Contains(t, errWithCause.Error(), "underlying error")
	assert.Contains(t, errWithCause.Error(), "1801")
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(CodeTranscribeFailed, "Transcription failed", cause)

	// Test Unwrap
	assert.Equal(t, cause, err.Unwrap())

	// Test errors.Is
	assert.True(t, errors.Is(err, cause))
}

func TestIs(t *testing.T) {
	err := New(CodeCaptionHallucination, "Hallucinated caption word")

	assert.True(t, Is(err, CodeCaptionHallucination))
	assert.False(t, Is(err, CodeMediaProbeFailed))

	// Test with regular error
	regularErr := errors.New("regular error")
	assert.False(t, Is(regularErr, CodeCaptionHallucination))
}

func TestGetCode(t *testing.T) {
	// AppError
	appErr := New(CodeHighlightDetectionFailed, "Highlight detection failed")
	assert.Equal(t, CodeHighlightDetectionFailed, GetCode(appErr))

	// Regular error returns CodeUnknown
	regularErr := errors.New("regular error")
	assert.Equal(t, CodeUnknown, GetCode(regularErr))
}

func TestGetMessage(t *testing.T) {
	// AppError
	appErr := New(CodeFileNotFound, "File not found")
	assert.Equal(t, "File not found", GetMessage(appErr))

	// Regular error returns error message
	regularErr := errors.New("regular error message")
	assert.Equal(t, "regular error message", GetMessage(regularErr))
}

func TestWrapWithDetail(t *testing.T) {
	cause := errors.New("exit status 1")
	err := WrapWithDetail(CodeMediaEncodeFailed, "Encode failed", "stage: crop", cause)

	assert.Equal(t, CodeMediaEncodeFailed, err.Code)
	assert.Equal(t, "Encode failed", err.Message)
	assert.Equal(t, "stage: crop", err.Detail)
	assert.Equal(t, cause, err.Cause)

	assert.Equal(t, "stage: crop", GetDetail(err))
	assert.Equal(t, "", GetDetail(cause))
}

func TestPredefinedErrors(t *testing.T) {
	// Verify predefined errors have correct codes
	assert.Equal(t, CodeInvalidParams, ErrInvalidParams.Code)
	assert.Equal(t, CodeVideoNotFound, ErrVideoNotFound.Code)
	assert.Equal(t, CodeTranscribeFailed, ErrTranscribeFailed.Code)
	assert.Equal(t, CodeHighlightDetectionFailed, ErrHighlightDetectionFailed.Code)
	assert.Equal(t, CodeDBError, ErrDBError.Code)
}
