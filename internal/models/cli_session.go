package models

import (
	"time"
)

// CliSession is a long-lived CLI credential. The primary key is the bearer
// token itself (256 bits of randomness, base64url, unpadded), so it must
// never appear in logs or error messages.
type CliSession struct {
	ID     string `gorm:"primaryKey"`
	UserID string `gorm:"index;not null"`

	// BrowserSessionID links back to the browser session that authorized
	// this credential. Audit/traceability only.
	BrowserSessionID string

	NotAfter  time.Time `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *CliSession) IsExpired(now time.Time) bool {
	return !s.NotAfter.After(now)
}
