package cmd

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/vzahanych/average-weather/internal/config"
	"github.com/vzahanych/average-weather/internal/server"
	"go.uber.org/zap"
)

func serverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Start the forecast HTTP server",
		Long:  `Start the HTTP server exposing /forecast/today, /forecast/tomorrow and /forecast/five-days.`,
		Args:  cobra.NoArgs,
		RunE:  runServer,
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info("Starting average weather server",
		zap.String("config_path", configPath),
		zap.String("environment", cfg.Environment),
		zap.Bool("telemetry_enabled", cfg.Telemetry.Enabled),
		zap.Int("server_port", cfg.Server.Port))

	agg := newAggregator(cfg)
	if len(agg.Providers()) == 0 {
		log.Warn("No weather providers enabled, every forecast will fail")
	}

	srv := server.New(cfg.Server, agg, log.Logger, tele)
	log.Info("Forecast endpoints ready",
		zap.String("addr", srv.Addr()),
		zap.Strings("providers", agg.Providers()))

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			log.Error("Server error", zap.Error(err))
		}
		return err
	case <-cmd.Context().Done():
		log.Info("Shutting down server")

		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during server shutdown", zap.Error(err))
			return err
		}

		log.Info("Server shutdown complete")
		return nil
	}
}
