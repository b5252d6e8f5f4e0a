package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/tambo-ai/cliauth/internal/cache"
	"github.com/tambo-ai/cliauth/internal/config"
	"github.com/tambo-ai/cliauth/internal/metrics"
	"github.com/tambo-ai/cliauth/internal/models"
	"github.com/tambo-ai/cliauth/internal/store"
	"github.com/tambo-ai/cliauth/internal/util"

	"go.uber.org/zap"
)

// Poll statuses reported to the CLI.
const (
	StatusPending  = "pending"
	StatusComplete = "complete"
	StatusExpired  = "expired"
)

const (
	// deviceCodeBytes gives 256 bits of entropy, hex-encoded to 64 chars.
	deviceCodeBytes = 32
	// sessionTokenBytes gives 256 bits of entropy, base64url-encoded.
	sessionTokenBytes = 32
	// createRetries bounds regeneration attempts on code collisions.
	createRetries = 3
	// pollGrace absorbs network jitter around the advertised interval.
	pollGrace = time.Second
)

// DeviceAuthService orchestrates the device authorization flow: initiate,
// browser-side verify, and CLI-side poll.
type DeviceAuthService struct {
	store    *store.Store
	config   *config.Config
	profiles cache.Cache[models.PublicProfile]
	metrics  metrics.Recorder
	log      *zap.Logger

	// now is swapped out in tests.
	now func() time.Time
}

func NewDeviceAuthService(
	s *store.Store,
	cfg *config.Config,
	profiles cache.Cache[models.PublicProfile],
	recorder metrics.Recorder,
	log *zap.Logger,
) *DeviceAuthService {
	return &DeviceAuthService{
		store:    s,
		config:   cfg,
		profiles: profiles,
		metrics:  recorder,
		log:      log,
		now:      time.Now,
	}
}

// Initiate creates a new authorization attempt. Code collisions are
// surfaced by the store's unique indexes and retried with fresh codes.
func (s *DeviceAuthService) Initiate(ctx context.Context) (*models.DeviceAuthCode, error) {
	now := s.now()

	for attempt := 0; attempt < createRetries; attempt++ {
		deviceCode, err := util.CryptoRandomHex(deviceCodeBytes)
		if err != nil {
			s.metrics.RecordInitiation("error")
			return nil, fmt.Errorf("failed to generate device code: %w", err)
		}
		userCode, err := generateUserCode(s.config.UserCodeLength)
		if err != nil {
			s.metrics.RecordInitiation("error")
			return nil, fmt.Errorf("failed to generate user code: %w", err)
		}

		dc := &models.DeviceAuthCode{
			DeviceCode: deviceCode,
			UserCode:   userCode,
			ExpiresAt:  now.Add(s.config.DeviceCodeExpiration),
		}
		if err := s.store.CreateDeviceAuthCode(ctx, dc); err != nil {
			if errors.Is(err, store.ErrDuplicateCode) {
				s.metrics.RecordInitiation("duplicate_retry")
				continue
			}
			s.metrics.RecordInitiation("error")
			return nil, fmt.Errorf("failed to store device authorization code: %w", err)
		}

		s.metrics.RecordInitiation("success")
		return dc, nil
	}

	s.metrics.RecordInitiation("error")
	return nil, fmt.Errorf("code generation collided %d times", createRetries)
}

// Verify claims a pending code on behalf of an authenticated browser user
// and issues the CLI session. The claim and the session insert run in one
// store transaction; concurrent attempts on the same code leave exactly one
// winner and the losers get ErrCodeAlreadyUsed.
func (s *DeviceAuthService) Verify(ctx context.Context, userCode, userID, browserSessionID string) error {
	normalized := NormalizeUserCode(userCode)
	now := s.now()

	token, err := util.CryptoRandomBase64URL(sessionTokenBytes)
	if err != nil {
		s.metrics.RecordVerification("error")
		return fmt.Errorf("failed to generate session token: %w", err)
	}

	session := &models.CliSession{
		ID:               token,
		UserID:           userID,
		BrowserSessionID: browserSessionID,
		NotAfter:         now.Add(s.config.CliSessionLifetime),
	}

	err = s.store.ClaimDeviceAuthCode(ctx, normalized, userID, session, now)
	if err == nil {
		s.metrics.RecordVerification("success")
		s.log.Info("device authorization verified", zap.String("user_id", userID))
		return nil
	}
	if !errors.Is(err, store.ErrClaimConflict) {
		s.metrics.RecordVerification("error")
		return fmt.Errorf("failed to claim device authorization code: %w", err)
	}

	// The conditional update matched nothing. Classify why with a
	// follow-up read; the read never decides the claim itself.
	dc, lookupErr := s.store.FindByUserCode(ctx, normalized)
	switch {
	case errors.Is(lookupErr, store.ErrRecordNotFound):
		s.metrics.RecordVerification("not_found")
		return ErrCodeNotFound
	case lookupErr != nil:
		s.metrics.RecordVerification("error")
		return fmt.Errorf("failed to look up device authorization code: %w", lookupErr)
	case dc.IsUsed:
		s.metrics.RecordVerification("already_used")
		return ErrCodeAlreadyUsed
	case dc.IsExpired(now):
		s.metrics.RecordVerification("expired")
		return ErrCodeExpired
	default:
		s.metrics.RecordVerification("error")
		return fmt.Errorf("claim rejected for pending code")
	}
}

// PollResult is the outcome of one CLI poll request.
type PollResult struct {
	Status       string
	SessionToken string
	ExpiresAt    time.Time
	User         models.PublicProfile
}

// Poll reports the state of an authorization attempt to the CLI. Completed
// attempts keep returning the same token until the row is garbage
// collected; the CLI persists it after first receipt.
func (s *DeviceAuthService) Poll(ctx context.Context, deviceCode string) (*PollResult, error) {
	now := s.now()

	dc, err := s.store.FindByDeviceCode(ctx, deviceCode)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			s.metrics.RecordPoll("not_found")
			return nil, ErrCodeNotFound
		}
		s.metrics.RecordPoll("error")
		return nil, fmt.Errorf("failed to look up device authorization code: %w", err)
	}

	// Rate limit before any mutation. The grace band keeps clients that
	// poll exactly on the advertised interval from tripping the limit.
	if dc.LastPolledAt != nil && now.Sub(*dc.LastPolledAt) < s.config.PollingInterval-pollGrace {
		s.metrics.RecordPoll("rate_limited")
		return nil, ErrTooManyRequests
	}

	// Best effort; a failed timestamp write never fails the poll.
	if err := s.store.TouchPoll(ctx, deviceCode, now); err != nil {
		s.log.Warn("failed to record poll timestamp", zap.Error(err))
	}

	if dc.IsExpired(now) {
		s.metrics.RecordPoll("expired")
		return &PollResult{Status: StatusExpired}, nil
	}

	if dc.IsClaimed() {
		session, err := s.store.GetCliSession(ctx, *dc.CliSessionID)
		if err != nil {
			if errors.Is(err, store.ErrSessionNotFound) {
				// The session was revoked before the CLI collected
				// it; the code is unredeemable.
				s.metrics.RecordPoll("expired")
				return &PollResult{Status: StatusExpired}, nil
			}
			s.metrics.RecordPoll("error")
			return nil, fmt.Errorf("failed to load cli session: %w", err)
		}

		profile, err := cache.GetWithFetch(ctx, s.profiles, *dc.UserID, s.config.CacheUserTTL,
			func(ctx context.Context, userID string) (models.PublicProfile, error) {
				user, err := s.store.GetUserByID(ctx, userID)
				if err != nil {
					return models.PublicProfile{}, err
				}
				return user.Public(), nil
			})
		if err != nil {
			s.metrics.RecordPoll("error")
			return nil, fmt.Errorf("failed to load user profile: %w", err)
		}

		s.metrics.RecordPoll("complete")
		return &PollResult{
			Status:       StatusComplete,
			SessionToken: session.ID,
			ExpiresAt:    session.NotAfter,
			User:         profile,
		}, nil
	}

	s.metrics.RecordPoll("pending")
	return &PollResult{Status: StatusPending}, nil
}

// userCodeCharset avoids visually ambiguous characters: 0, O, 1, I, L
const userCodeCharset = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// generateUserCode creates a user-friendly code like "ABCDEFGH", each
// character drawn uniformly from the reduced alphabet.
func generateUserCode(length int) (string, error) {
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(userCodeCharset))))
		if err != nil {
			return "", err
		}
		code[i] = userCodeCharset[n.Int64()]
	}
	return string(code), nil
}

// FormatUserCode formats a user code for display (e.g., "ABCDEFGH" -> "ABCD-EFGH")
func FormatUserCode(code string) string {
	if len(code) != 8 {
		return code
	}
	return code[:4] + "-" + code[4:]
}

// NormalizeUserCode strips dashes and whitespace before lookups. The
// alphabet is uppercase-only by construction, so uppercasing makes typed
// input forgiving without loosening matching.
func NormalizeUserCode(code string) string {
	code = strings.TrimSpace(code)
	code = strings.ReplaceAll(code, "-", "")
	code = strings.ReplaceAll(code, " ", "")
	return strings.ToUpper(code)
}
