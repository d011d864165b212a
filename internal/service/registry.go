package service

import (
	"time"

	"github.com/vzahanych/average-weather/internal/config"
	"github.com/vzahanych/average-weather/pkg/telemetry"
	"go.uber.org/zap"
)

// NewProviders builds the enabled providers in iteration order: open-meteo,
// weatherbit, weather-api.
func NewProviders(cfg config.WeatherConfig, logger *zap.Logger, tele *telemetry.Telemetry) []Provider {
	if logger == nil {
		logger = zap.NewNop()
	}

	tc := TransportConfig{
		Timeout:         time.Duration(cfg.Timeout) * time.Second,
		BreakerFailures: uint32(cfg.BreakerFailures),
		BreakerTimeout:  time.Duration(cfg.BreakerTimeout) * time.Second,
		BreakerHalfOpen: uint32(cfg.BreakerHalfOpen),
	}

	var providers []Provider

	if p := cfg.Providers.OpenMeteo; p.Enabled {
		providers = append(providers, NewOpenMeteoServiceWithConfig(p, tc, logger, tele))
	}

	if p := cfg.Providers.WeatherBit; p.Enabled {
		if p.APIKey == "" {
			logger.Warn("WeatherBit enabled without an API key, every call will report InvalidApiKey")
		}
		providers = append(providers, NewWeatherBitServiceWithConfig(p, tc, logger, tele))
	}

	if p := cfg.Providers.WeatherAPI; p.Enabled {
		if p.APIKey == "" {
			logger.Warn("WeatherAPI enabled without an API key, every call will report InvalidApiKey")
		}
		providers = append(providers, NewWeatherAPIServiceWithConfig(p, tc, logger, tele))
	}

	for _, p := range providers {
		logger.Info("Registered weather provider", zap.String("provider", p.Name()))
	}

	return providers
}
