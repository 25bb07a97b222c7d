// Package errors provides structured error handling for the application.
// It defines AppError type with error codes for consistent API responses.
package errors

import (
	"errors"
	"fmt"
)

// Error codes organized by category
const (
	// General errors (1000-1099)
	CodeSuccess       = 0
	CodeUnknown       = 1000
	CodeInvalidParams = 1001
	CodeNotFound      = 1002

	// Source ingestion errors (1100-1199)
	CodeVideoNotFound  = 1100
	CodeUnsupportedSrc = 1101

	// Transcription errors (1200-1299)
	CodeTranscribeFailed  = 1200
	CodeNoWordTimestamps  = 1201
	CodeInvalidTranscript = 1202

	// Storage errors (1500-1599)
	CodeDBError             = 1500
	CodeFileNotFound        = 1501
	CodeStorageUploadFailed = 1502

	// Highlight detection errors (1600-1699)
	CodeHighlightDetectionFailed = 1600
	CodeHighlightParseFailed     = 1601

	// Caption errors (1700-1799)
	CodeCaptionGenerationFailed = 1700
	CodeCaptionHallucination    = 1701
	CodeCaptionInvalidSegment   = 1702

	// Media engine errors (1800-1899)
	CodeMediaProbeFailed  = 1800
	CodeMediaEncodeFailed = 1801
)

// AppError represents a structured application error
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code int, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithDetail wraps an error with additional detail
func WrapWithDetail(code int, message string, detail string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Detail:  detail,
		Cause:   cause,
	}
}

// Is checks if the target error is an AppError with the specified code
func Is(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts error code from error, returns CodeUnknown if not AppError
func GetCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetMessage extracts message from error
func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// GetDetail extracts detail from error, empty if not AppError
func GetDetail(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Detail
	}
	return ""
}

// Predefined common errors
var (
	ErrInvalidParams = New(CodeInvalidParams, "Invalid parameters")
	ErrNotFound      = New(CodeNotFound, "Resource not found")

	ErrVideoNotFound    = New(CodeVideoNotFound, "Source video not found")
	ErrTranscribeFailed = New(CodeTranscribeFailed, "Transcription failed")
	ErrNoWordTimestamps = New(CodeNoWordTimestamps, "Transcription returned no word-level timestamps")

	ErrDBError      = New(CodeDBError, "Database error")
	ErrFileNotFound = New(CodeFileNotFound, "File not found")

	ErrHighlightDetectionFailed = New(CodeHighlightDetectionFailed, "Highlight detection failed")
	ErrCaptionGenerationFailed  = New(CodeCaptionGenerationFailed, "Caption generation failed")
)
