package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/vzahanych/average-weather/internal/config"
	"github.com/vzahanych/average-weather/pkg/telemetry"
	"go.uber.org/zap"
)

const WeatherBitName = "weatherbit"

type WeatherBitService struct {
	baseProvider
	baseURL string
	apiKey  Credential
}

type weatherBitForecast struct {
	CityName string `json:"city_name"`
	Data     []struct {
		ValidDate string   `json:"valid_date"`
		Temp      *float64 `json:"temp"`
	} `json:"data"`
}

func NewWeatherBitServiceWithConfig(cfg config.ProviderConfig, tc TransportConfig, logger *zap.Logger, tele *telemetry.Telemetry) *WeatherBitService {
	return &WeatherBitService{
		baseProvider: newBaseProvider(WeatherBitName, tc, logger, tele),
		baseURL:      cfg.BaseURL,
		apiKey:       NewCredential(cfg.APIKey),
	}
}

func (s *WeatherBitService) ForecastWindow(ctx context.Context, location string, days int) (samples []Sample, err error) {
	ctx, span := s.startSpan(ctx, location, days)
	defer func() {
		s.finish(ctx, span, samples, err)
		span.End()
	}()

	if !s.apiKey.Configured() {
		return nil, NewProviderError(s.name, InvalidAPIKey, ErrCredentialNotConfigured)
	}

	if days <= 0 {
		return []Sample{}, nil
	}

	s.reqLogger(ctx).Debug("Fetching forecast from WeatherBit",
		zap.String("location", location),
		zap.Int("days", days))

	q := url.Values{}
	q.Set("city", location)
	q.Set("days", strconv.Itoa(days))
	q.Set("key", s.apiKey.Value())

	resp, err := s.http.get(ctx, s.baseURL+"/forecast/daily", q)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent:
		// WeatherBit answers an unknown city with an empty 204.
		drain(resp)
		return nil, NewProviderError(s.name, InvalidLocation, fmt.Errorf("no match for %q", location))
	case http.StatusUnauthorized, http.StatusForbidden:
		drain(resp)
		return nil, NewProviderError(s.name, InvalidAPIKey, fmt.Errorf("status %d", resp.StatusCode))
	default:
		return nil, s.http.unexpectedStatus(resp)
	}

	var result weatherBitForecast
	if err := s.http.decode(resp, &result); err != nil {
		return nil, err
	}

	samples = make([]Sample, 0, len(result.Data))
	for i, day := range result.Data {
		if day.Temp == nil {
			return nil, NewProviderError(s.name, InvalidJSON, fmt.Errorf("missing temperature for day %d", i))
		}
		samples = append(samples, NewSample(*day.Temp))
	}

	return s.firstDays(samples, days)
}
