package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tambo-ai/cliauth/internal/config"
	"github.com/tambo-ai/cliauth/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testAppConfig() *config.Config {
	return &config.Config{
		ServerAddr:           ":0",
		FallbackURL:          "http://localhost:8080",
		SessionSecret:        "test-secret",
		SessionMaxAge:        3600,
		DeviceCodeExpiration: 15 * time.Minute,
		PollingInterval:      5 * time.Second,
		UserCodeLength:       8,
		CliSessionLifetime:   90 * 24 * time.Hour,
		DatabaseDriver:       "sqlite",
		DatabaseDSN:          ":memory:",
		CacheBackend:         "memory",
		CacheUserTTL:         time.Minute,
	}
}

func TestInitializeMetrics(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		cfg := &config.Config{MetricsEnabled: enabled}
		m := initializeMetrics(cfg, zap.NewNop())
		require.NotNil(t, m)
	}
}

func TestInitializeProfileCache(t *testing.T) {
	t.Run("memory backend", func(t *testing.T) {
		c, closer, err := initializeProfileCache(
			&config.Config{CacheBackend: "memory"},
			zap.NewNop(),
		)
		require.NoError(t, err)
		require.NotNil(t, c)
		require.NotNil(t, closer)
		assert.NoError(t, closer())
	})

	t.Run("disabled installs noop cache", func(t *testing.T) {
		c, closer, err := initializeProfileCache(
			&config.Config{CacheDisabled: true, CacheBackend: "redis"},
			zap.NewNop(),
		)
		require.NoError(t, err)
		require.NotNil(t, closer)

		// Nothing may be retained: a Set followed by a Get still misses.
		ctx := context.Background()
		require.NoError(t, c.Set(ctx, "u1", models.PublicProfile{ID: "u1"}, time.Minute))
		_, err = c.Get(ctx, "u1")
		assert.Error(t, err)
	})
}

func TestApplicationWiring(t *testing.T) {
	app := &Application{
		Config: testAppConfig(),
		Log:    zap.NewNop(),
	}

	require.NoError(t, app.initializeInfrastructure())
	sqlDB, err := app.Store.DB().DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	app.initializeBusinessLayer()
	app.initializeHTTPLayer()

	require.NotNil(t, app.DeviceService)
	require.NotNil(t, app.SessionService)
	require.NotNil(t, app.Router)
	require.NotNil(t, app.Server)

	t.Run("health endpoint", func(t *testing.T) {
		w := httptest.NewRecorder()
		app.Router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "healthy")
	})

	t.Run("initiate endpoint wired", func(t *testing.T) {
		w := httptest.NewRecorder()
		app.Router.ServeHTTP(w, httptest.NewRequest("POST", "/api/cli/login", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "deviceCode")
	})

	t.Run("session registry requires auth", func(t *testing.T) {
		w := httptest.NewRecorder()
		app.Router.ServeHTTP(w, httptest.NewRequest("GET", "/api/cli/sessions", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRunCleanup(t *testing.T) {
	app := &Application{
		Config: testAppConfig(),
		Log:    zap.NewNop(),
	}
	require.NoError(t, app.initializeInfrastructure())
	sqlDB, err := app.Store.DB().DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	expired := &models.DeviceAuthCode{
		DeviceCode: "expired-device-code",
		UserCode:   "EXPIRED1",
		ExpiresAt:  time.Now().Add(-time.Hour),
	}
	require.NoError(t, app.Store.DB().Create(expired).Error)

	runCleanup(context.Background(), app.Store, app.Log)

	var count int64
	require.NoError(t, app.Store.DB().Model(&models.DeviceAuthCode{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
