package domain

import (
	"errors"
	"fmt"
)

// Authentication outcomes. Every client-triggered failure wraps
// ErrInvalidCredentials; operational faults wrap ErrUnexpected.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnexpected         = errors.New("unexpected authentication error")
)

var (
	ErrUserExists   = errors.New("user already exists")
	ErrForbidden    = errors.New("access forbidden")
	ErrNotOwner     = errors.New("identity does not own resource")
	ErrLairNotFound = errors.New("lair not found")
	ErrInvalidLair  = errors.New("invalid lair")
)

// InvalidCredentials wraps cause so that errors.Is matches both the cause
// and ErrInvalidCredentials.
func InvalidCredentials(cause error) error {
	if cause == nil {
		return ErrInvalidCredentials
	}
	return fmt.Errorf("%w: %w", ErrInvalidCredentials, cause)
}

// Unexpected wraps an operational fault.
func Unexpected(cause error) error {
	if cause == nil {
		return ErrUnexpected
	}
	return fmt.Errorf("%w: %w", ErrUnexpected, cause)
}
