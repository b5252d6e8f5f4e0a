package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/tambo-ai/cliauth/internal/cache"
	"github.com/tambo-ai/cliauth/internal/config"
	"github.com/tambo-ai/cliauth/internal/metrics"
	"github.com/tambo-ai/cliauth/internal/models"

	"go.uber.org/zap"
)

const cacheInitTimeout = 5 * time.Second

// initializeMetrics initializes the Prometheus recorder, or a noop when
// metrics are disabled.
func initializeMetrics(cfg *config.Config, log *zap.Logger) metrics.Recorder {
	recorder := metrics.Init(cfg.MetricsEnabled)
	if cfg.MetricsEnabled {
		log.Info("prometheus metrics initialized")
	} else {
		log.Info("metrics disabled")
	}
	return recorder
}

// initializeProfileCache builds the user profile cache used when reporting
// a completed authorization to the CLI.
func initializeProfileCache(
	cfg *config.Config,
	log *zap.Logger,
) (cache.Cache[models.PublicProfile], func() error, error) {
	if cfg.CacheDisabled {
		c := cache.NewNoopCache[models.PublicProfile]()
		log.Info("profile cache disabled, every poll fetches fresh")
		return c, c.Close, nil
	}

	switch cfg.CacheBackend {
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), cacheInitTimeout)
		defer cancel()

		c, err := cache.NewRueidisCache[models.PublicProfile](
			ctx,
			cfg.RedisAddr,
			cfg.RedisPassword,
			cfg.RedisDB,
			"cliauth:profiles:",
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize redis profile cache: %w", err)
		}
		log.Info("profile cache: redis",
			zap.String("addr", cfg.RedisAddr),
			zap.Int("db", cfg.RedisDB),
		)
		return c, c.Close, nil

	default: // memory
		c := cache.NewMemoryCache[models.PublicProfile]()
		log.Info("profile cache: memory (single instance only)")
		return c, c.Close, nil
	}
}
