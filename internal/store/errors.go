package store

import "errors"

var (
	// ErrRecordNotFound wraps GORM's not found error for consistency
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicateCode is returned when a generated device or user code
	// collides with an existing row. Callers regenerate and retry.
	ErrDuplicateCode = errors.New("device authorization code already exists")

	// ErrClaimConflict is returned by ClaimDeviceAuthCode when the
	// conditional update matched no row (0 rows updated): the code is
	// missing, expired, or already claimed by a concurrent request. The
	// caller classifies the reason with a follow-up read.
	ErrClaimConflict = errors.New("device authorization code could not be claimed")

	// ErrSessionNotFound is returned when a CLI session does not exist or
	// is not owned by the caller. Ownership failures deliberately look
	// identical to missing rows.
	ErrSessionNotFound = errors.New("cli session not found")
)
