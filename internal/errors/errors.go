package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrConfig = "CONFIG"
	ErrStore  = "STORE"
	ErrSSH    = "SSH"
	ErrExec   = "EXEC"
	ErrSync   = "SYNC"
	ErrDevice = "DEVICE"
	ErrAuth   = "AUTH"
)

// Error represents a structured error with code, message, suggestion, and optional cause.
// Rendered as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message, defaulting to ErrSSH code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrSSH,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// NewDuplicateTitle creates the conflict error returned when a profile or
// command title is already taken. Kept distinct from generic store failures
// so the CLI can show a specific conflict message.
func NewDuplicateTitle(kind, title string) *Error {
	return &Error{
		Code:       ErrStore,
		Message:    fmt.Sprintf("A %s named '%s' already exists", kind, title),
		Suggestion: "Pick a different title, or remove the existing one first.",
	}
}

// NewProfileNotFound creates the error for a command whose profile reference
// no longer resolves. Raised before any network connection is attempted.
func NewProfileNotFound(title string) *Error {
	return &Error{
		Code:       ErrStore,
		Message:    fmt.Sprintf("Profile '%s' not found", title),
		Suggestion: "The profile may have been renamed or deleted. Update the command to point at an existing profile.",
	}
}

// NewDeviceNotFound creates the error for single-device operations against
// an unknown device id. Batch staging skips unknown ids instead.
func NewDeviceNotFound(deviceID string) *Error {
	return &Error{
		Code:       ErrDevice,
		Message:    fmt.Sprintf("Device '%s' is not registered", deviceID),
		Suggestion: "Run 'sshdeck devices' to see registered devices.",
	}
}

// Error implements the error interface with formatted output.
func (e *Error) Error() string {
	var b strings.Builder

	// First line: failure symbol + main message
	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	// Include cause if present (why it failed)
	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	// Include suggestion if present (how to fix)
	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var sdErr *Error
	if errors.As(err, &sdErr) {
		return sdErr.Code == code
	}
	return false
}

// IsDuplicateTitle reports whether err is a duplicate-title conflict.
func IsDuplicateTitle(err error) bool {
	var sdErr *Error
	if errors.As(err, &sdErr) {
		return sdErr.Code == ErrStore && strings.Contains(sdErr.Message, "already exists")
	}
	return false
}

// IsProfileNotFound reports whether err is a missing-profile reference.
func IsProfileNotFound(err error) bool {
	var sdErr *Error
	if errors.As(err, &sdErr) {
		return sdErr.Code == ErrStore && strings.Contains(sdErr.Message, "not found")
	}
	return false
}
