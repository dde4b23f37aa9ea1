package server

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PortalOS/backend/internal/catalog"
	"github.com/GriffinCanCode/PortalOS/backend/internal/host"
	"github.com/GriffinCanCode/PortalOS/backend/internal/http"
	"github.com/GriffinCanCode/PortalOS/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/PortalOS/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PortalOS/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PortalOS/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/PortalOS/backend/internal/loader"
	"github.com/GriffinCanCode/PortalOS/backend/internal/middleware"
	"github.com/GriffinCanCode/PortalOS/backend/internal/remote"
	"github.com/GriffinCanCode/PortalOS/backend/internal/ws"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router      *gin.Engine
	registry    *remote.Registry
	coordinator *remote.Coordinator
	hostMgr     *host.Manager
	logger      *logging.Logger
	config      *config.Config
	metrics     *monitoring.Metrics
}

// New creates a new server instance
func New(cfg *config.Config) (*Server, error) {
	// Initialize logger
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		logger = logging.NewDefault()
	}

	logger.Info("Initializing portal host",
		zap.String("port", cfg.Server.Port),
		zap.String("catalog", cfg.Catalog.Path),
	)

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics()

	// Initialize distributed tracing
	tracer := tracing.New("host", logger.Logger)

	// Load the remote catalog; a missing manifest is not fatal, the
	// host can still serve explicit attach-by-URL requests.
	cat, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		logger.Warn("catalog unavailable, starting empty",
			zap.String("path", cfg.Catalog.Path),
			zap.Error(err),
		)
		cat = catalog.Empty()
	} else {
		logger.Info("catalog loaded", zap.Int("remotes", cat.Len()))
	}

	// Build the load/mount pipeline
	fetcher := loader.NewHTTPFetcher(loader.FetchOptions{
		Timeout:     time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second,
		MaxRetries:  cfg.Fetch.MaxRetries,
		RetryWait:   1 * time.Second,
		RateLimit:   cfg.Fetch.RateLimit,
		BearerToken: cfg.Fetch.BearerToken,
		UserAgent:   cfg.Fetch.UserAgent,
	})
	engine := loader.NewEngine(fetcher, logger)

	registry := remote.NewRegistry()
	resolver := remote.NewResolver(registry, engine, logger).WithMetrics(metrics)
	coordinator := remote.NewCoordinator(registry, resolver, logger).WithMetrics(metrics)
	hostMgr := host.NewManager(resolver, coordinator, cat, logger)

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	// Create handlers
	handlers := http.NewHandlers(registry, resolver, coordinator, cat, hostMgr)
	wsHandler := ws.NewHandler(hostMgr, logger).WithMetrics(metrics)

	// Register routes
	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// Remote management
	router.GET("/remotes", handlers.ListRemotes)
	router.GET("/remotes/:scope", handlers.GetRemote)
	router.POST("/remotes/:scope/load", handlers.LoadRemote)
	router.POST("/remotes/:scope/mount", handlers.MountRemote)
	router.POST("/remotes/:scope/unmount", handlers.UnmountRemote)

	// Container bindings
	router.GET("/containers", handlers.ListBindings)
	router.GET("/containers/:id", handlers.GetBinding)
	router.POST("/containers/:id/attach", handlers.AttachContainer)
	router.POST("/containers/:id/detach", handlers.DetachContainer)
	router.POST("/containers/:id/retry", handlers.RetryContainer)

	// WebSocket
	router.GET("/stream", wsHandler.HandleConnection)

	// Metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	logger.Info("Server initialized successfully")

	return &Server{
		router:      router,
		registry:    registry,
		coordinator: coordinator,
		hostMgr:     hostMgr,
		logger:      logger,
		config:      cfg,
		metrics:     metrics,
	}, nil
}

// Run starts the HTTP server
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Router exposes the gin engine, primarily for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Close gracefully shuts down the server, unmounting every remote so
// lifecycle teardown hooks run before the process exits.
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	for _, rec := range s.registry.List() {
		if !rec.Mounted() {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := s.coordinator.Unmount(ctx, rec.Scope)
		cancel()
		if err != nil {
			s.logger.Error("Failed to unmount during shutdown",
				zap.String("scope", rec.Scope),
				zap.Error(err),
			)
		}
	}

	s.logger.Sync()
	return nil
}
