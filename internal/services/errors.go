package services

import "errors"

var (
	// ErrCodeNotFound means no authorization attempt exists for the code.
	ErrCodeNotFound = errors.New("code not found")

	// ErrCodeExpired means the attempt exists but its window has passed.
	ErrCodeExpired = errors.New("code expired")

	// ErrCodeAlreadyUsed means the code was already claimed, possibly by a
	// concurrent verification racing this one.
	ErrCodeAlreadyUsed = errors.New("code already used")

	// ErrTooManyRequests means the CLI polled faster than the advertised
	// interval allows.
	ErrTooManyRequests = errors.New("polling too frequently")

	// ErrSessionNotFound covers both a missing session and one owned by a
	// different user, to avoid existence leakage.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired means a presented bearer token is past its
	// notAfter bound.
	ErrSessionExpired = errors.New("session expired")
)
