package auth

import (
	"context"
	"errors"

	"github.com/tambo-ai/cliauth/internal/models"
	"github.com/tambo-ai/cliauth/internal/store"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials covers unknown users and wrong passwords alike.
var ErrInvalidCredentials = errors.New("invalid username or password")

// LocalAuthProvider verifies browser login credentials against the local
// user table. The device authorization flow only requires that some
// authenticated browser session exists; this is the built-in way to get one.
type LocalAuthProvider struct {
	store *store.Store
}

func NewLocalAuthProvider(s *store.Store) *LocalAuthProvider {
	return &LocalAuthProvider{store: s}
}

// Authenticate verifies credentials against the local database.
func (p *LocalAuthProvider) Authenticate(
	ctx context.Context,
	username, password string,
) (*models.User, error) {
	user, err := p.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(
		[]byte(user.PasswordHash),
		[]byte(password),
	); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
