package store

import (
	"context"
	"errors"
	"time"

	"github.com/tambo-ai/cliauth/internal/models"

	"gorm.io/gorm"
)

// CreateDeviceAuthCode inserts a new authorization attempt. A collision on
// either code's unique index comes back as ErrDuplicateCode.
func (s *Store) CreateDeviceAuthCode(ctx context.Context, dc *models.DeviceAuthCode) error {
	if err := s.db.WithContext(ctx).Create(dc).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateCode
		}
		return err
	}
	return nil
}

// FindByDeviceCode retrieves an authorization attempt by its device code.
func (s *Store) FindByDeviceCode(ctx context.Context, deviceCode string) (*models.DeviceAuthCode, error) {
	var dc models.DeviceAuthCode
	err := s.db.WithContext(ctx).Where("device_code = ?", deviceCode).First(&dc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &dc, nil
}

// FindByUserCode retrieves an authorization attempt by its normalized user
// code. Used only to classify why a claim failed, never to decide a claim.
func (s *Store) FindByUserCode(ctx context.Context, userCode string) (*models.DeviceAuthCode, error) {
	var dc models.DeviceAuthCode
	err := s.db.WithContext(ctx).Where("user_code = ?", userCode).First(&dc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &dc, nil
}

// ClaimDeviceAuthCode binds a user to a pending code and creates the CLI
// session in one transaction. The conditional UPDATE is the single place
// concurrent verification attempts are resolved: only the request whose
// update matches the still-unclaimed row wins; everyone else gets
// ErrClaimConflict. The session insert rides in the same transaction, so a
// claimed code without a session cannot be observed.
func (s *Store) ClaimDeviceAuthCode(
	ctx context.Context,
	userCode, userID string,
	session *models.CliSession,
	now time.Time,
) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.DeviceAuthCode{}).
			Where("user_code = ? AND is_used = ? AND user_id IS NULL AND expires_at > ?",
				userCode, false, now).
			Updates(map[string]interface{}{
				"is_used":        true,
				"user_id":        userID,
				"cli_session_id": session.ID,
				"updated_at":     now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrClaimConflict
		}
		return tx.Create(session).Error
	})
}

// TouchPoll records the poll timestamp used for rate limiting. Best effort:
// callers log failures and move on.
func (s *Store) TouchPoll(ctx context.Context, deviceCode string, now time.Time) error {
	return s.db.WithContext(ctx).Model(&models.DeviceAuthCode{}).
		Where("device_code = ?", deviceCode).
		UpdateColumn("last_polled_at", now).Error
}

// DeleteExpiredDeviceAuthCodes removes rows past their expiry. Run by the
// housekeeping job; expiry itself is enforced by time comparison at read.
func (s *Store) DeleteExpiredDeviceAuthCodes(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&models.DeviceAuthCode{})
	return res.RowsAffected, res.Error
}
