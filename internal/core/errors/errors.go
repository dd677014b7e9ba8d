// Package errors provides centralized error definitions for the application.
// Errors are organized by domain to avoid duplication and provide consistent naming.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// Process lifecycle errors.
var (
	// ErrAlreadyRunning indicates another live process holds the PID file.
	ErrAlreadyRunning = errors.New("another instance is already running")

	// ErrRunningAsRoot indicates the process was started with euid 0.
	ErrRunningAsRoot = errors.New("refusing to run as root")
)

// Provider errors.
var (
	// ErrUnknownProvider indicates an unsupported LLM provider name.
	ErrUnknownProvider = errors.New("unknown llm provider")
)

// Response and parsing errors.
var (
	// ErrEmptyResponse indicates an empty response was received.
	ErrEmptyResponse = errors.New("empty response")

	// ErrMalformedDocument indicates a persisted document could not be parsed.
	ErrMalformedDocument = errors.New("malformed document")
)

// Validation errors.
var (
	// ErrInvalidVariant indicates an unsupported bot variant.
	ErrInvalidVariant = errors.New("invalid bot variant")

	// ErrInvalidOffset indicates a non-numeric or negative update offset.
	ErrInvalidOffset = errors.New("invalid update offset")
)
