// Package errors provides centralized error definitions for the application.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import (
	"errors"
	"fmt"
)

// Ledger errors.
var (
	// ErrLedgerCorrupt indicates the persisted processed-set exists but cannot
	// be parsed. Starting with an empty ledger in that state would cause
	// duplicate delivery, so this error is fatal at startup.
	ErrLedgerCorrupt = errors.New("ledger store is corrupt")
)

// Response and parsing errors.
var (
	// ErrEmptyResponse indicates an empty response was received.
	ErrEmptyResponse = errors.New("empty response")

	// ErrMalformedAttachment indicates an attachment payload did not match its
	// declared kind.
	ErrMalformedAttachment = errors.New("malformed attachment")
)

// Validation errors.
var (
	// ErrInvalidMarkPolicy indicates an unknown mark policy value in config.
	ErrInvalidMarkPolicy = errors.New("invalid mark policy")
)

// RemoteAPIError is a structured error payload returned by the feed or the
// destination channel API.
type RemoteAPIError struct {
	Service string
	Code    int
	Message string
}

func (e *RemoteAPIError) Error() string {
	return fmt.Sprintf("%s api error %d: %s", e.Service, e.Code, e.Message)
}

// Is is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
