package models

import (
	"time"
)

// DeviceAuthCode is one CLI authorization attempt. The device code is the
// opaque secret handed to the CLI for polling; the user code is the short
// code the user types into the browser.
type DeviceAuthCode struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	DeviceCode string `gorm:"uniqueIndex;not null"`
	UserCode   string `gorm:"uniqueIndex;not null"` // stored without dashes

	ExpiresAt time.Time `gorm:"not null"`

	// IsUsed, UserID and CliSessionID transition together, exactly once,
	// via the store's atomic claim.
	IsUsed       bool `gorm:"not null;default:false"`
	UserID       *string
	CliSessionID *string

	// LastPolledAt drives the poll rate limit only; it is never consulted
	// for claim correctness.
	LastPolledAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (d *DeviceAuthCode) IsExpired(now time.Time) bool {
	return !d.ExpiresAt.After(now)
}

// IsClaimed reports whether the code has been bound to a user and session.
func (d *DeviceAuthCode) IsClaimed() bool {
	return d.IsUsed && d.UserID != nil && d.CliSessionID != nil
}
