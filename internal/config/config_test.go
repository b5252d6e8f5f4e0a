package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, 15*time.Minute, cfg.DeviceCodeExpiration)
	assert.Equal(t, 5*time.Second, cfg.PollingInterval)
	assert.Equal(t, 8, cfg.UserCodeLength)
	assert.Equal(t, 90*24*time.Hour, cfg.CliSessionLifetime)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9090")
	t.Setenv("DEVICE_CODE_EXPIRATION", "5m")
	t.Setenv("POLLING_INTERVAL", "10s")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_DSN", "host=db user=app dbname=cliauth")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.ServerAddr)
	assert.Equal(t, 5*time.Minute, cfg.DeviceCodeExpiration)
	assert.Equal(t, 10*time.Second, cfg.PollingInterval)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	require.NoError(t, cfg.Validate())
}

func TestLoadInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("DEVICE_CODE_EXPIRATION", "not-a-duration")

	cfg := Load()
	assert.Equal(t, 15*time.Minute, cfg.DeviceCodeExpiration)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.DatabaseDriver = "oracle" },
			wantErr: "unsupported database driver",
		},
		{
			name: "postgres requires dsn",
			mutate: func(c *Config) {
				c.DatabaseDriver = "postgres"
				c.DatabaseDSN = ""
			},
			wantErr: "DATABASE_DSN",
		},
		{
			name:    "polling interval too small",
			mutate:  func(c *Config) { c.PollingInterval = time.Second },
			wantErr: "POLLING_INTERVAL",
		},
		{
			name:    "user code too short",
			mutate:  func(c *Config) { c.UserCodeLength = 4 },
			wantErr: "USER_CODE_LENGTH",
		},
		{
			name: "redis backend requires addr",
			mutate: func(c *Config) {
				c.CacheBackend = "redis"
				c.RedisAddr = ""
			},
			wantErr: "REDIS_ADDR",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
