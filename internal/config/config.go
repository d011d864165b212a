package config

import (
	"sync/atomic"
)

var configValue atomic.Value

func GetConfig() *Config {
	cfg, _ := configValue.Load().(*Config)
	return cfg
}

func SetConfig(cfg *Config) {
	configValue.Store(cfg)
}

type Config struct {
	Version     string          `mapstructure:"version"`
	Environment string          `mapstructure:"environment" validate:"required"`
	Server      ServerConfig    `mapstructure:"server"`
	Weather     WeatherConfig   `mapstructure:"weather"`
	Logging     LoggingConfig   `mapstructure:"logging"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port" validate:"min=0,max=65535"`
	Host         string `mapstructure:"host"`
	ReadTimeout  int    `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout int    `mapstructure:"write_timeout" validate:"min=0"`
	IdleTimeout  int    `mapstructure:"idle_timeout" validate:"min=0"`
}

// WeatherConfig controls the provider set and how each request fans out to it.
// Timeout is the per-provider budget in seconds. BreakerFailures is the number of
// consecutive transport failures that opens a provider's circuit (0 disables it),
// BreakerTimeout the seconds it stays open, BreakerHalfOpen the calls allowed through
// while it tests a recovering backend.
type WeatherConfig struct {
	Providers       ProvidersConfig `mapstructure:"providers"`
	Timeout         int             `mapstructure:"timeout" validate:"min=1"`
	BreakerFailures int             `mapstructure:"breaker_failures" validate:"min=0"`
	BreakerTimeout  int             `mapstructure:"breaker_timeout" validate:"min=0"`
	BreakerHalfOpen int             `mapstructure:"breaker_half_open" validate:"min=0"`
}

// ProvidersConfig lists every known backend. Field order is the provider iteration order.
type ProvidersConfig struct {
	OpenMeteo  ProviderConfig `mapstructure:"open_meteo"`
	WeatherBit ProviderConfig `mapstructure:"weatherbit"`
	WeatherAPI ProviderConfig `mapstructure:"weather_api"`
}

type ProviderConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	BaseURL      string `mapstructure:"base_url" validate:"required_if=Enabled true,omitempty,url"`
	GeocodingURL string `mapstructure:"geocoding_url" validate:"omitempty,url"`
	APIKey       string `mapstructure:"api_key"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"omitempty,oneof=json console"`
	OutputPath string `mapstructure:"output_path"`
}

type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint" validate:"required_if=Enabled true"`
	ServiceName string `mapstructure:"service_name"`
}

func NewDefaultConfig() *Config {
	return &Config{
		Version:     "1.0.0",
		Environment: "development",
		Server: ServerConfig{
			Port:         8000,
			Host:         "0.0.0.0",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  60,
		},
		Weather: WeatherConfig{
			Providers: ProvidersConfig{
				OpenMeteo: ProviderConfig{
					Enabled:      true,
					BaseURL:      "https://api.open-meteo.com/v1",
					GeocodingURL: "https://geocoding-api.open-meteo.com/v1",
				},
				WeatherBit: ProviderConfig{
					Enabled: true,
					BaseURL: "https://api.weatherbit.io/v2.0",
				},
				WeatherAPI: ProviderConfig{
					Enabled: false,
					BaseURL: "https://api.weatherapi.com/v1",
				},
			},
			Timeout:         10,
			BreakerFailures: 5,
			BreakerTimeout:  60,
			BreakerHalfOpen: 5,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "",
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			Endpoint:    "tempo:4317",
			ServiceName: "average-weather",
		},
	}
}
