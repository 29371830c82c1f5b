// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Database errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Model errors.
	ErrModelUnavailable  = errors.New("model unavailable")
	ErrNotTrained        = errors.New("model not trained")
	ErrInsufficientData  = errors.New("insufficient data")
	ErrVocabularyChanged = errors.New("label vocabulary changed")

	// Feedback errors.
	ErrInvalidFeedback = errors.New("invalid feedback")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsModelFailure reports whether an error belongs to the recoverable model
// taxonomy. These are never surfaced to callers of the prediction path; the
// orchestrator converts them into the rule-based fallback.
func IsModelFailure(err error) bool {
	return errors.Is(err, ErrModelUnavailable) || errors.Is(err, ErrNotTrained)
}
