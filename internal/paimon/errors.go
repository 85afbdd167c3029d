package paimon

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of catalog error.
type ErrorType int

const (
	// ErrorTypeDatabaseNotExist indicates the database directory is missing.
	ErrorTypeDatabaseNotExist ErrorType = iota
	// ErrorTypeTableNotExist indicates the table directory or schema is missing.
	ErrorTypeTableNotExist
	// ErrorTypeCorrupt indicates metadata or data files could not be decoded.
	ErrorTypeCorrupt
	// ErrorTypeUnsupported indicates a table feature this reader cannot handle.
	ErrorTypeUnsupported
	// ErrorTypeIO indicates the underlying storage failed.
	ErrorTypeIO
	// ErrorTypeInvalidPredicate indicates a filter value cannot be compared with its column.
	ErrorTypeInvalidPredicate
)

// Error represents a catalog or scan error.
type Error struct {
	Type    ErrorType
	Name    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch e.Type {
	case ErrorTypeDatabaseNotExist:
		return "Database does not exist: " + e.Name
	case ErrorTypeTableNotExist:
		return "Table does not exist: " + e.Name
	}

	msg := e.Message
	if e.Name != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Name)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newDatabaseNotExistError(db string) *Error {
	return &Error{Type: ErrorTypeDatabaseNotExist, Name: db}
}

func newTableNotExistError(fullName string) *Error {
	return &Error{Type: ErrorTypeTableNotExist, Name: fullName}
}

func newCorruptError(name, message string, err error) *Error {
	return &Error{Type: ErrorTypeCorrupt, Name: name, Message: message, Err: err}
}

func newUnsupportedError(name, message string) *Error {
	return &Error{Type: ErrorTypeUnsupported, Name: name, Message: message}
}

func newIOError(name string, err error) *Error {
	return &Error{Type: ErrorTypeIO, Name: name, Message: "storage access failed", Err: err}
}

func newInvalidPredicateError(field, message string) *Error {
	return &Error{Type: ErrorTypeInvalidPredicate, Name: field, Message: message}
}

func hasType(err error, t ErrorType) bool {
	var pErr *Error
	if errors.As(err, &pErr) {
		return pErr.Type == t
	}
	return false
}

// IsDatabaseNotExist checks if an error reports a missing database.
func IsDatabaseNotExist(err error) bool {
	return hasType(err, ErrorTypeDatabaseNotExist)
}

// IsTableNotExist checks if an error reports a missing table.
func IsTableNotExist(err error) bool {
	return hasType(err, ErrorTypeTableNotExist)
}

// IsUnsupported checks if an error reports an unsupported table feature.
func IsUnsupported(err error) bool {
	return hasType(err, ErrorTypeUnsupported)
}

// IsInvalidPredicate checks if an error reports an uncomparable filter value.
func IsInvalidPredicate(err error) bool {
	return hasType(err, ErrorTypeInvalidPredicate)
}
