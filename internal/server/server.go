package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/AgentOS/modulegate/internal/api/http"
	"github.com/GriffinCanCode/AgentOS/modulegate/internal/api/middleware"
	"github.com/GriffinCanCode/AgentOS/modulegate/internal/assets"
	"github.com/GriffinCanCode/AgentOS/modulegate/internal/gateway"
	"github.com/GriffinCanCode/AgentOS/modulegate/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/modulegate/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/modulegate/internal/logging"
	"github.com/GriffinCanCode/AgentOS/modulegate/internal/modules"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	guard      *gateway.Guard
	logger     *logging.Logger
	config     *config.Config
	metrics    *monitoring.Metrics
}

// NewLogger builds the process logger from the logging section.
func NewLogger(cfg config.LogConfig) (*logging.Logger, error) {
	logCfg := logging.DefaultConfig()
	if cfg.Development {
		logCfg = logging.DevelopmentConfig()
	}
	logCfg.Level = cfg.Level
	return logging.New(logCfg)
}

// NewServer creates a new server instance. The gateway is not initialized
// until Run.
func NewServer(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewDefault()
	}

	logger.Info("Initializing module gateway server",
		zap.String("addr", cfg.Address()),
		zap.String("assets_dir", cfg.Assets.Dir),
		zap.Duration("eval_timeout", cfg.Sandbox.EvalTimeout),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics(registry)

	store := assets.NewDir(cfg.Assets.Dir)
	checkAssets(store, logger)
	guard := gateway.NewGuard(gateway.NewFactory(cfg.SandboxSettings(), store, logger, metrics))

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORS.Origins)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rateCfg := middleware.DefaultRateLimitConfig()
		rateCfg.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rateCfg.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rateCfg))
	}

	apihttp.NewHandlers(guard, logger).Register(router)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return &Server{
		router: router,
		httpServer: &http.Server{
			Addr:              cfg.Address(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		guard:   guard,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

// checkAssets warns about missing files up front. Contexts still fail on use.
func checkAssets(store *assets.Store, logger *logging.Logger) {
	if _, err := store.Glue(); err != nil {
		logger.Warn("Glue script unavailable", zap.Error(err))
	}
	for _, module := range modules.Modules() {
		if !store.Has(module) {
			logger.Warn("Module bundle not found",
				logging.Module(string(module)),
				zap.String("path", store.ModulePath(module)))
		}
	}
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Guard returns the lifecycle guard of the gateway.
func (s *Server) Guard() *gateway.Guard {
	return s.guard
}

// Initialize prepares the gateway. Contexts are still created lazily.
func (s *Server) Initialize() error {
	if err := s.guard.Initialize(); err != nil {
		return err
	}
	s.logger.Info("Gateway initialized")
	return nil
}

// Run initializes the gateway and serves HTTP until Close is called.
func (s *Server) Run() error {
	if err := s.Initialize(); err != nil {
		return err
	}
	s.logger.Info("Starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Close stops accepting requests, then tears down every module context.
func (s *Server) Close(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Failed to stop HTTP server", zap.Error(err))
		errs = append(errs, fmt.Errorf("failed to stop http server: %w", err))
	}
	if err := s.guard.Teardown(); err != nil {
		s.logger.Error("Failed to tear down gateway", zap.Error(err))
		errs = append(errs, fmt.Errorf("failed to tear down gateway: %w", err))
	}

	// Sync logger before exit
	s.logger.Sync()

	return errors.Join(errs...)
}
