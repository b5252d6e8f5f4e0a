package bootstrap

import (
	"net/http"
	"time"

	"github.com/tambo-ai/cliauth/internal/config"
	"github.com/tambo-ai/cliauth/internal/metrics"
	"github.com/tambo-ai/cliauth/internal/middleware"
	"github.com/tambo-ai/cliauth/internal/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// setupRouter configures the Gin router with all routes and middleware.
func setupRouter(app *Application) *gin.Engine {
	cfg := app.Config
	log := app.Log

	setupGinMode(cfg)
	r := gin.New()

	r.Use(metrics.HTTPMetricsMiddleware(app.Metrics))
	r.Use(ginzap.Ginzap(log, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(log, true))

	setupSessionMiddleware(r, cfg)

	r.GET("/health", createHealthCheckHandler(app.Store))
	setupMetricsEndpoint(r, cfg, log)

	rateLimit := setupRateLimiting(cfg, log)
	setupRoutes(r, app, rateLimit)

	logServerStartup(cfg, log)
	return r
}

// setupSessionMiddleware configures the browser cookie session.
func setupSessionMiddleware(r *gin.Engine, cfg *config.Config) {
	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("cliauth_session", sessionStore))
}

// setupMetricsEndpoint exposes Prometheus metrics, optionally behind a token.
func setupMetricsEndpoint(r *gin.Engine, cfg *config.Config, log *zap.Logger) {
	switch {
	case !cfg.MetricsEnabled:
		log.Info("prometheus endpoint disabled")
	case cfg.MetricsToken != "":
		log.Info("prometheus endpoint enabled at /metrics with bearer token")
		r.GET(
			"/metrics",
			middleware.MetricsAuth(cfg.MetricsToken),
			gin.WrapH(promhttp.Handler()),
		)
	default:
		log.Info("prometheus endpoint enabled at /metrics (no authentication)")
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// setupRateLimiting builds the IP-level limiter for unauthenticated
// endpoints. The per-code poll limit lives in the device service.
func setupRateLimiting(cfg *config.Config, log *zap.Logger) gin.HandlerFunc {
	if !cfg.RateLimitEnabled {
		return func(c *gin.Context) { c.Next() }
	}

	limiter, err := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RequestsPerMinute: cfg.RateLimitPerMinute,
		StoreType:         middleware.RateLimitStoreType(cfg.RateLimitStore),
		RedisAddr:         cfg.RedisAddr,
		RedisPassword:     cfg.RedisPassword,
		RedisDB:           cfg.RedisDB,
	})
	if err != nil {
		log.Fatal("failed to initialize rate limiter", zap.Error(err))
	}

	log.Info("rate limiting enabled",
		zap.Int("per_minute", cfg.RateLimitPerMinute),
		zap.String("store", cfg.RateLimitStore),
	)
	return limiter
}

// setupRoutes wires all application routes.
func setupRoutes(r *gin.Engine, app *Application, rateLimit gin.HandlerFunc) {
	h := app.Handlers

	api := r.Group("/api")
	api.POST("/login", rateLimit, h.auth.Login)
	api.POST("/logout", h.auth.Logout)
	api.GET("/me", middleware.RequireBrowserAuth(), h.auth.Me)

	cli := api.Group("/cli")
	cli.POST("/login", rateLimit, h.device.Initiate)
	cli.POST("/login/poll", h.device.Poll)
	cli.POST("/verify", middleware.RequireBrowserAuth(), h.verify.Verify)

	registry := cli.Group("/sessions", middleware.RequireAuth(app.SessionService))
	registry.GET("", h.session.List)
	registry.DELETE("", h.session.RevokeAll)
	registry.DELETE("/:id", h.session.Revoke)
}

// createHealthCheckHandler reports server and database health.
func createHealthCheckHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch err := s.Health(); err {
		case nil:
			c.JSON(http.StatusOK, gin.H{
				"status":   "healthy",
				"database": "connected",
			})
		default:
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "disconnected",
			})
		}
	}
}

func setupGinMode(cfg *config.Config) {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
}

func logServerStartup(cfg *config.Config, log *zap.Logger) {
	log.Info("device authorization server starting",
		zap.String("addr", cfg.ServerAddr),
		zap.Duration("code_expiration", cfg.DeviceCodeExpiration),
		zap.Duration("polling_interval", cfg.PollingInterval),
		zap.Duration("session_lifetime", cfg.CliSessionLifetime),
	)
}
