package bootstrap

import (
	"net/http"

	"github.com/tambo-ai/cliauth/internal/auth"
	"github.com/tambo-ai/cliauth/internal/cache"
	"github.com/tambo-ai/cliauth/internal/config"
	"github.com/tambo-ai/cliauth/internal/handlers"
	"github.com/tambo-ai/cliauth/internal/metrics"
	"github.com/tambo-ai/cliauth/internal/models"
	"github.com/tambo-ai/cliauth/internal/services"
	"github.com/tambo-ai/cliauth/internal/store"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Application holds all initialized components.
type Application struct {
	Config *config.Config
	Log    *zap.Logger

	// Core infrastructure
	Store              *store.Store
	Metrics            metrics.Recorder
	ProfileCache       cache.Cache[models.PublicProfile]
	profileCacheCloser func() error

	// Services
	AuthProvider   *auth.LocalAuthProvider
	DeviceService  *services.DeviceAuthService
	SessionService *services.SessionService

	// HTTP
	Handlers handlerSet
	Router   *gin.Engine
	Server   *http.Server
}

type handlerSet struct {
	auth    *handlers.AuthHandler
	device  *handlers.DeviceHandler
	verify  *handlers.VerifyHandler
	session *handlers.SessionHandler
}

// Run initializes all components and blocks until shutdown.
func Run(cfg *config.Config, log *zap.Logger) error {
	app := &Application{
		Config: cfg,
		Log:    log,
	}

	if err := app.initializeInfrastructure(); err != nil {
		return err
	}

	app.initializeBusinessLayer()
	app.initializeHTTPLayer()
	app.startWithGracefulShutdown()

	return nil
}

// initializeInfrastructure sets up database, metrics, and cache.
func (app *Application) initializeInfrastructure() error {
	var err error

	app.Store, err = initializeDatabase(app.Config, app.Log)
	if err != nil {
		return err
	}

	app.Metrics = initializeMetrics(app.Config, app.Log)

	app.ProfileCache, app.profileCacheCloser, err = initializeProfileCache(app.Config, app.Log)
	if err != nil {
		return err
	}

	return nil
}

// initializeBusinessLayer sets up services.
func (app *Application) initializeBusinessLayer() {
	app.AuthProvider = auth.NewLocalAuthProvider(app.Store)
	app.DeviceService = services.NewDeviceAuthService(
		app.Store,
		app.Config,
		app.ProfileCache,
		app.Metrics,
		app.Log,
	)
	app.SessionService = services.NewSessionService(app.Store, app.Metrics, app.Log)
}

// initializeHTTPLayer sets up handlers, router, and server.
func (app *Application) initializeHTTPLayer() {
	app.Handlers = handlerSet{
		auth:    handlers.NewAuthHandler(app.AuthProvider, app.Log),
		device:  handlers.NewDeviceHandler(app.DeviceService, app.Config),
		verify:  handlers.NewVerifyHandler(app.DeviceService),
		session: handlers.NewSessionHandler(app.SessionService),
	}

	app.Router = setupRouter(app)
	app.Server = createHTTPServer(app.Config, app.Router)
}

// startWithGracefulShutdown runs the server and background jobs until a
// termination signal arrives.
func (app *Application) startWithGracefulShutdown() {
	m := graceful.NewManager()

	addServerRunningJob(m, app.Server, app.Log)
	addServerShutdownJob(m, app.Server, app.Log)
	addHousekeepingJob(m, app.Config, app.Store, app.Log)
	addCacheShutdownJob(m, app.profileCacheCloser, app.Log)

	<-m.Done()
}
