package services

import "errors"

var (
	// ErrMissingFields means a verification request lacked one of the three
	// inputs. "Couldn't check" is never conflated with "checked and failed".
	ErrMissingFields = errors.New("missing payment verification details")

	// ErrVerificationFailed is a final, non-retryable signature mismatch.
	ErrVerificationFailed = errors.New("payment signature verification failed")

	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotRegistered      = errors.New("account not registered")
)
