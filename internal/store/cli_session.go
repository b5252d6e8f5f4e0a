package store

import (
	"context"
	"errors"
	"time"

	"github.com/tambo-ai/cliauth/internal/models"

	"gorm.io/gorm"
)

// GetCliSession resolves a bearer token to its session row.
func (s *Store) GetCliSession(ctx context.Context, token string) (*models.CliSession, error) {
	var session models.CliSession
	err := s.db.WithContext(ctx).Where("id = ?", token).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// ListCliSessions returns the caller's non-expired sessions ordered by
// creation time ascending. The owner filter is mandatory.
func (s *Store) ListCliSessions(ctx context.Context, userID string, now time.Time) ([]models.CliSession, error) {
	var sessions []models.CliSession
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND not_after > ?", userID, now).
		Order("created_at ASC").
		Find(&sessions).Error
	return sessions, err
}

// DeleteCliSession revokes one session. Ownership is enforced inside the
// DELETE's WHERE clause; a missing row and a row owned by someone else are
// indistinguishable to the caller.
func (s *Store) DeleteCliSession(ctx context.Context, userID, sessionID string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", sessionID, userID).
		Delete(&models.CliSession{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteAllCliSessions revokes every session owned by the caller and
// returns the number deleted.
func (s *Store) DeleteAllCliSessions(ctx context.Context, userID string) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CliSession{})
	return res.RowsAffected, res.Error
}

// DeleteExpiredCliSessions removes sessions past their notAfter bound.
func (s *Store) DeleteExpiredCliSessions(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("not_after < ?", now).
		Delete(&models.CliSession{})
	return res.RowsAffected, res.Error
}
