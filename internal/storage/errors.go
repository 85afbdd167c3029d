package storage

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the type of storage error.
type ErrorType int

const (
	// ErrorTypeNotFound indicates the path does not exist.
	ErrorTypeNotFound ErrorType = iota
	// ErrorTypeIO indicates a read or list operation failed.
	ErrorTypeIO
	// ErrorTypeConfiguration indicates the storage configuration is unusable.
	ErrorTypeConfiguration
)

// Error represents a storage-specific error.
type Error struct {
	Type    ErrorType
	Op      string
	Path    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	var parts []string
	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("operation: %s", e.Op))
	}
	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path: %s", e.Path))
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Err != nil {
		parts = append(parts, fmt.Sprintf("cause: %v", e.Err))
	}
	return fmt.Sprintf("storage error [%s]: %s", e.typeString(), strings.Join(parts, ", "))
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) typeString() string {
	switch e.Type {
	case ErrorTypeNotFound:
		return "not_found"
	case ErrorTypeIO:
		return "io"
	case ErrorTypeConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

// NewNotFoundError creates a new not found error.
func NewNotFoundError(op, path string) *Error {
	return &Error{
		Type:    ErrorTypeNotFound,
		Op:      op,
		Path:    path,
		Message: "path does not exist",
	}
}

// NewIOError creates a new I/O error.
func NewIOError(op, path string, err error) *Error {
	return &Error{
		Type:    ErrorTypeIO,
		Op:      op,
		Path:    path,
		Message: "storage operation failed",
		Err:     err,
	}
}

// NewConfigurationError creates a new configuration error.
func NewConfigurationError(message string, err error) *Error {
	return &Error{
		Type:    ErrorTypeConfiguration,
		Message: message,
		Err:     err,
	}
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	var storageErr *Error
	if errors.As(err, &storageErr) {
		return storageErr.Type == ErrorTypeNotFound
	}
	return false
}
