// Package errors provides common, reusable error values and helpers.
package errors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrClientNotFound      = errors.New("client not found")
	ErrClientAlreadyExists = errors.New("client already exists")

	// KYC lifecycle errors
	ErrKYCStatusNotFound  = errors.New("kyc status not found")
	ErrKYCCycleInProgress = errors.New("kyc cycle already in progress")
	ErrKYCCycleNotStarted = errors.New("kyc cycle not started")

	// Risk errors
	ErrRiskProfileNotFound = errors.New("risk profile not found")
	ErrConfigUnavailable   = errors.New("scoring configuration unavailable")
	ErrNoActiveConfig      = errors.New("no active scoring configuration")

	// Screening errors
	ErrScreeningNotFound = errors.New("screening result not found")

	// Staff auth errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTOTPRequired       = errors.New("totp code required")
	ErrInvalidTOTP        = errors.New("invalid totp code")
)

// New creates a new error with the given message
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
