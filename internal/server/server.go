package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/average-weather/internal/aggregator"
	"github.com/vzahanych/average-weather/internal/config"
	"github.com/vzahanych/average-weather/internal/server/handlers"
	"github.com/vzahanych/average-weather/internal/server/middlewares"
	"github.com/vzahanych/average-weather/internal/service"
	"github.com/vzahanych/average-weather/pkg/telemetry"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

type Server struct {
	engine *gin.Engine
	server *http.Server
	agg    *aggregator.Aggregator
	logger *zap.Logger
	tele   *telemetry.Telemetry
}

func New(cfg config.ServerConfig, agg *aggregator.Aggregator, logger *zap.Logger, tele *telemetry.Telemetry) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	engine := gin.New()

	metrics := middlewares.NewMetricsMiddleware()

	engine.Use(middlewares.RequestIDMiddleware(logger))
	engine.Use(middlewares.LoggingMiddleware(logger, true))
	engine.Use(middlewares.RecoveryMiddleware(logger, true))
	engine.Use(middlewares.TelemetryMiddleware(logger, tele))
	engine.Use(metrics.Handler())

	s := &Server{
		engine: engine,
		agg:    agg,
		logger: logger,
		tele:   tele,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      engine,
			ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
			IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
		},
	}

	s.setupRoutes(metrics.GetHTTPMetrics())

	return s
}

func (s *Server) setupRoutes(httpMetrics *middlewares.HTTPMetrics) {
	metricsHandler := handlers.NewMetricsHandler(s.logger, httpMetrics)
	s.agg.SetMetricsRecorder(metricsHandler)

	s.engine.GET("/", handlers.Index)

	// Business endpoints
	forecast := handlers.NewForecastHandler(s.agg, s.logger)
	group := s.engine.Group("/forecast")
	for _, w := range []service.Window{service.Today, service.Tomorrow, service.FiveDays} {
		group.GET("/"+w.String()+"/:location", forecast.Window(w))
	}

	// Health endpoints (Kubernetes friendly)
	health := handlers.NewHealthHandler(s.logger, s.agg.Providers())
	s.engine.GET("/health", health.Health)
	s.engine.GET("/health/live", health.Liveness)
	s.engine.GET("/health/ready", health.Readiness)

	// Monitoring endpoints
	s.engine.GET("/metrics", metricsHandler.ServeMetrics)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr is the listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("Starting server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	return s.server.Shutdown(ctx)
}
