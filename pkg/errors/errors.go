// Package errors provides structured error handling for the application.
// It defines AppError type with error codes so every pipeline stage failure
// carries enough context to diagnose which unit of work failed.
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
	CodeConfigMissing = 1001
	CodeConfigInvalid = 1002

	// Script parsing errors (1100-1199)
	CodeScriptRead   = 1100
	CodeEmptyContent = 1101

	// Speech synthesis errors (1200-1299)
	CodeSynthesis        = 1200
	CodeSynthesisTimeout = 1201
	CodeVoiceNotFound    = 1202

	// Clip rendering errors (1300-1399)
	CodeRender         = 1300
	CodeFontNotFound   = 1301
	CodeSourceNotFound = 1302

	// Concatenation errors (1400-1499)
	CodeConcat        = 1400
	CodeManifestWrite = 1401

	// Storage errors (1500-1599)
	CodeDBError        = 1500
	CodeFileWriteError = 1501
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

// Predefined common errors
var (
	ErrConfigMissing = New(CodeConfigMissing, "Required configuration missing")

	// Script
	ErrScriptRead   = New(CodeScriptRead, "Script file unreadable")
	ErrEmptyContent = New(CodeEmptyContent, "Section has no content to synthesize")

	// Synthesis
	ErrSynthesis     = New(CodeSynthesis, "Speech synthesis failed")
	ErrVoiceNotFound = New(CodeVoiceNotFound, "Voice not found")

	// Render
	ErrRender = New(CodeRender, "Clip render failed")

	// Concat
	ErrConcat = New(CodeConcat, "Video concat failed")

	// Storage
	ErrDBError = New(CodeDBError, "Database error")
)
