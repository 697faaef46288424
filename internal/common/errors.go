// Package common provides shared utilities and types used across the resolver.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Input errors.
	ErrMalformedInput = errors.New("malformed input")
	ErrEmptyDocument  = errors.New("document text is empty")

	// Resolution errors.
	ErrNoCandidateFound = errors.New("no viable value candidate")
	ErrValidationFailed = errors.New("portfolio validation failed")

	// Storage errors.
	ErrNotFound           = errors.New("not found")
	ErrCorrectionNotFound = fmt.Errorf("correction %w", ErrNotFound)

	// Configuration errors.
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
