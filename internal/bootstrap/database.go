package bootstrap

import (
	"fmt"

	"github.com/tambo-ai/cliauth/internal/config"
	"github.com/tambo-ai/cliauth/internal/store"

	"go.uber.org/zap"
)

// initializeDatabase creates the database connection, runs migrations, and
// seeds the default admin user on first run.
func initializeDatabase(cfg *config.Config, log *zap.Logger) (*store.Store, error) {
	s, err := store.New(cfg.DatabaseDriver, cfg.DatabaseDSN, log, store.Options{
		DefaultAdminPassword: cfg.DefaultAdminPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	log.Info("database initialized",
		zap.String("driver", cfg.DatabaseDriver),
	)
	return s, nil
}
