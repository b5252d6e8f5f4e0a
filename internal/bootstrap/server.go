package bootstrap

import (
	"context"
	"net/http"
	"time"

	"github.com/tambo-ai/cliauth/internal/config"
	"github.com/tambo-ai/cliauth/internal/store"

	"github.com/appleboy/graceful"
	"go.uber.org/zap"
)

// createHTTPServer creates the HTTP server instance.
func createHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// addServerRunningJob adds the HTTP server running job.
func addServerRunningJob(m *graceful.Manager, srv *http.Server, log *zap.Logger) {
	m.AddRunningJob(func(ctx context.Context) error {
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatal("failed to start server", zap.Error(err))
			}
		}()
		<-ctx.Done()
		return nil
	})
}

// addServerShutdownJob adds the HTTP server shutdown handler.
func addServerShutdownJob(m *graceful.Manager, srv *http.Server, log *zap.Logger) {
	m.AddShutdownJob(func() error {
		log.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
			return err
		}

		log.Info("server exited")
		return nil
	})
}

// addHousekeepingJob periodically deletes expired device codes and CLI
// sessions. Completed codes stay until their expiry passes so the CLI can
// collect its token even after a slow approval.
func addHousekeepingJob(
	m *graceful.Manager,
	cfg *config.Config,
	s *store.Store,
	log *zap.Logger,
) {
	if cfg.CleanupInterval <= 0 {
		return
	}

	m.AddRunningJob(func(ctx context.Context) error {
		ticker := time.NewTicker(cfg.CleanupInterval)
		defer ticker.Stop()

		runCleanup(ctx, s, log)
		for {
			select {
			case <-ticker.C:
				runCleanup(ctx, s, log)
			case <-ctx.Done():
				return nil
			}
		}
	})
}

func runCleanup(ctx context.Context, s *store.Store, log *zap.Logger) {
	now := time.Now()

	codes, err := s.DeleteExpiredDeviceAuthCodes(ctx, now)
	if err != nil {
		log.Warn("failed to delete expired device codes", zap.Error(err))
	}
	sessions, err := s.DeleteExpiredCliSessions(ctx, now)
	if err != nil {
		log.Warn("failed to delete expired cli sessions", zap.Error(err))
	}

	if codes > 0 || sessions > 0 {
		log.Info("housekeeping pass complete",
			zap.Int64("device_codes_deleted", codes),
			zap.Int64("cli_sessions_deleted", sessions),
		)
	}
}

// addCacheShutdownJob closes the profile cache on shutdown.
func addCacheShutdownJob(m *graceful.Manager, closer func() error, log *zap.Logger) {
	if closer == nil {
		return
	}

	m.AddShutdownJob(func() error {
		if err := closer(); err != nil {
			log.Warn("error closing profile cache", zap.Error(err))
			return err
		}
		log.Info("profile cache closed")
		return nil
	})
}
