package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/vzahanych/average-weather/internal/config"
	"github.com/vzahanych/average-weather/pkg/telemetry"
	"go.uber.org/zap"
)

const WeatherAPIName = "weather-api"

// WeatherAPI error codes that mean the q parameter did not resolve.
const (
	weatherAPICodeMissingQuery = 1003
	weatherAPICodeUnknownPlace = 1006
)

type WeatherAPIService struct {
	baseProvider
	baseURL string
	apiKey  Credential
}

type weatherAPIForecast struct {
	Forecast *struct {
		ForecastDay []struct {
			Date string `json:"date"`
			Day  struct {
				AvgTempC *float64 `json:"avgtemp_c"`
			} `json:"day"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

type weatherAPIError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func NewWeatherAPIServiceWithConfig(cfg config.ProviderConfig, tc TransportConfig, logger *zap.Logger, tele *telemetry.Telemetry) *WeatherAPIService {
	return &WeatherAPIService{
		baseProvider: newBaseProvider(WeatherAPIName, tc, logger, tele),
		baseURL:      cfg.BaseURL,
		apiKey:       NewCredential(cfg.APIKey),
	}
}

func (s *WeatherAPIService) ForecastWindow(ctx context.Context, location string, days int) (samples []Sample, err error) {
	ctx, span := s.startSpan(ctx, location, days)
	defer func() {
		s.finish(ctx, span, samples, err)
		span.End()
	}()

	if !s.apiKey.Configured() {
		s.reqLogger(ctx).Warn("WeatherAPI service called without API key",
			zap.String("location", location))
		return nil, NewProviderError(s.name, InvalidAPIKey, ErrCredentialNotConfigured)
	}

	if days <= 0 {
		return []Sample{}, nil
	}

	s.reqLogger(ctx).Debug("Fetching forecast from WeatherAPI",
		zap.String("location", location),
		zap.Int("days", days))

	q := url.Values{}
	q.Set("key", s.apiKey.Value())
	q.Set("q", location)
	q.Set("days", strconv.Itoa(days))
	q.Set("aqi", "no")
	q.Set("alerts", "no")

	resp, err := s.http.get(ctx, s.baseURL+"/forecast.json", q)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		drain(resp)
		return nil, NewProviderError(s.name, InvalidAPIKey, fmt.Errorf("status %d", resp.StatusCode))
	case http.StatusBadRequest:
		return nil, s.badRequest(resp, location)
	default:
		return nil, s.http.unexpectedStatus(resp)
	}

	var result weatherAPIForecast
	if err := s.http.decode(resp, &result); err != nil {
		return nil, err
	}

	if result.Forecast == nil {
		return nil, NewProviderError(s.name, InvalidJSON, errors.New("missing forecast block"))
	}

	samples = make([]Sample, 0, len(result.Forecast.ForecastDay))
	for i, day := range result.Forecast.ForecastDay {
		if day.Day.AvgTempC == nil {
			return nil, NewProviderError(s.name, InvalidJSON, fmt.Errorf("missing temperature for day %d", i))
		}
		samples = append(samples, NewSample(*day.Day.AvgTempC))
	}

	return s.firstDays(samples, days)
}

func (s *WeatherAPIService) badRequest(resp *http.Response, location string) error {
	var body weatherAPIError
	if err := s.http.decode(resp, &body); err != nil {
		return err
	}

	switch body.Error.Code {
	case weatherAPICodeMissingQuery, weatherAPICodeUnknownPlace:
		return NewProviderError(s.name, InvalidLocation, fmt.Errorf("no match for %q: %s", location, body.Error.Message))
	default:
		return NewProviderError(s.name, InvalidJSON, fmt.Errorf("code %d: %s", body.Error.Code, body.Error.Message))
	}
}
