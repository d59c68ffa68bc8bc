// Package businessflow contains the core business logic for segment
// resolution, mentor resolution, and bot mapping workflows.
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Selection errors
	ErrActorsRequired     = errors.New("actors are compulsory and should not be empty")
	ErrSegmentIDsRequired = errors.New("at least one segment id is required")
	ErrInvalidSegmentID   = errors.New("invalid segment id")
	ErrInvalidBotID       = errors.New("invalid bot id")
	ErrBotIDsRequired     = errors.New("at least one bot id is required")

	// Segment errors
	ErrSegmentNameRequired = errors.New("segment name is required")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsInvalidSelection reports whether the error is a caller-input
// precondition failure rather than a backend one.
func IsInvalidSelection(err error) bool {
	return errors.Is(err, ErrActorsRequired) ||
		errors.Is(err, ErrSegmentIDsRequired) ||
		errors.Is(err, ErrInvalidSegmentID) ||
		errors.Is(err, ErrInvalidBotID) ||
		errors.Is(err, ErrBotIDsRequired) ||
		errors.Is(err, ErrSegmentNameRequired)
}

func IsActorsRequired(err error) bool {
	return errors.Is(err, ErrActorsRequired)
}

func IsInvalidBotID(err error) bool {
	return errors.Is(err, ErrInvalidBotID)
}
