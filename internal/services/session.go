package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tambo-ai/cliauth/internal/metrics"
	"github.com/tambo-ai/cliauth/internal/models"
	"github.com/tambo-ai/cliauth/internal/store"

	"go.uber.org/zap"
)

// SessionService lists, revokes, and authenticates issued CLI sessions.
type SessionService struct {
	store   *store.Store
	metrics metrics.Recorder
	log     *zap.Logger

	now func() time.Time
}

func NewSessionService(s *store.Store, recorder metrics.Recorder, log *zap.Logger) *SessionService {
	return &SessionService{
		store:   s,
		metrics: recorder,
		log:     log,
		now:     time.Now,
	}
}

// List returns the caller's non-expired sessions, oldest first.
func (s *SessionService) List(ctx context.Context, userID string) ([]models.CliSession, error) {
	sessions, err := s.store.ListCliSessions(ctx, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list cli sessions: %w", err)
	}
	return sessions, nil
}

// Revoke deletes one session. A session that does not exist or belongs to
// another user reads as ErrSessionNotFound either way.
func (s *SessionService) Revoke(ctx context.Context, userID, sessionID string) error {
	err := s.store.DeleteCliSession(ctx, userID, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to revoke cli session: %w", err)
	}
	s.metrics.RecordSessionRevocations(1)
	s.log.Info("cli session revoked", zap.String("user_id", userID))
	return nil
}

// RevokeAll deletes every session owned by the caller and returns the count.
func (s *SessionService) RevokeAll(ctx context.Context, userID string) (int64, error) {
	count, err := s.store.DeleteAllCliSessions(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke cli sessions: %w", err)
	}
	s.metrics.RecordSessionRevocations(int(count))
	s.log.Info("all cli sessions revoked",
		zap.String("user_id", userID),
		zap.Int64("count", count))
	return count, nil
}

// Authenticate resolves a presented bearer token to its owner. The token is
// the session's primary key and never appears in logs or error messages.
func (s *SessionService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	session, err := s.store.GetCliSession(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load cli session: %w", err)
	}

	if session.IsExpired(s.now()) {
		return nil, ErrSessionExpired
	}

	user, err := s.store.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session owner: %w", err)
	}
	return user, nil
}
