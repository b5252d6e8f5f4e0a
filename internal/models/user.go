package models

import (
	"time"
)

type User struct {
	ID           string `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	FullName     string
	PasswordHash string
	Role         string `gorm:"not null;default:'user'"` // "admin" or "user"

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin returns true if the user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}

// PublicProfile is the user shape exposed to the CLI once polling completes.
type PublicProfile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Public returns the externally visible profile of the user.
func (u *User) Public() PublicProfile {
	return PublicProfile{ID: u.ID, Email: u.Email, Name: u.FullName}
}
