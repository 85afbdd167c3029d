package cache

import (
	"errors"
	"strings"
)

// ErrorType classifies cache failures.
type ErrorType string

const (
	ErrorTypeNotFound      ErrorType = "entry not found"
	ErrorTypeInvalidData   ErrorType = "invalid entry"
	ErrorTypeDatabase      ErrorType = "database failure"
	ErrorTypeConfiguration ErrorType = "invalid configuration"
)

// Error is returned by cache operations. Entry names the cache key or
// bucket the operation touched.
type Error struct {
	Type   ErrorType
	Op     string
	Entry  string
	Detail string
	Err    error
}

// Error renders "row count cache: <op> <entry>: <detail>: <cause>".
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString("row count cache")
	if e.Op != "" {
		sb.WriteString(": " + e.Op)
		if e.Entry != "" {
			sb.WriteString(" " + e.Entry)
		}
	}
	sb.WriteString(": ")
	if e.Detail != "" {
		sb.WriteString(e.Detail)
	} else {
		sb.WriteString(string(e.Type))
	}
	if e.Err != nil {
		sb.WriteString(": " + e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewNotFoundError reports a missing entry.
func NewNotFoundError(op, entry string) *Error {
	return &Error{Type: ErrorTypeNotFound, Op: op, Entry: entry}
}

// NewInvalidDataError reports a stored entry that cannot be decoded.
func NewInvalidDataError(op, entry, detail string, err error) *Error {
	return &Error{Type: ErrorTypeInvalidData, Op: op, Entry: entry, Detail: detail, Err: err}
}

// NewDatabaseError wraps a bbolt failure.
func NewDatabaseError(op, entry string, err error) *Error {
	return &Error{Type: ErrorTypeDatabase, Op: op, Entry: entry, Err: err}
}

// NewConfigurationError reports an unusable cache configuration.
func NewConfigurationError(detail string, err error) *Error {
	return &Error{Type: ErrorTypeConfiguration, Detail: detail, Err: err}
}

// IsNotFound reports whether err is a missing entry.
func IsNotFound(err error) bool {
	return hasType(err, ErrorTypeNotFound)
}

// IsInvalidData reports whether err is an undecodable entry.
func IsInvalidData(err error) bool {
	return hasType(err, ErrorTypeInvalidData)
}

// IsDatabaseError reports whether err came from the database.
func IsDatabaseError(err error) bool {
	return hasType(err, ErrorTypeDatabase)
}

func hasType(err error, t ErrorType) bool {
	var cacheErr *Error
	return errors.As(err, &cacheErr) && cacheErr.Type == t
}
