package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error for HTTP mapping and logging.
type Kind int

const (
	Internal Kind = iota
	Invalid
	NotFound
	Conflict
	Unavailable
)

var kindNames = map[Kind]string{
	Internal:    "INTERNAL",
	Invalid:     "INVALID",
	NotFound:    "NOT_FOUND",
	Conflict:    "CONFLICT",
	Unavailable: "UNAVAILABLE",
}

// String returns the canonical name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "INTERNAL"
}

// Error wraps an underlying error with a classification and a client-safe message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error without an underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a classified error around an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Newf creates a classified error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the classification of err, defaulting to Internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// MessageOf returns the client-safe message of err, or the raw error text.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// IsConnectionError reports whether the error text looks like a database
// connectivity failure rather than a query-level failure.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection") ||
		strings.Contains(msg, "connect") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "database")
}
