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

const OpenMeteoName = "open-meteo"

// OpenMeteoService resolves a place name with the Open-Meteo geocoding API and then
// asks the forecast API for daily extremes at those coordinates.
type OpenMeteoService struct {
	baseProvider
	baseURL      string
	geocodingURL string
}

type openMeteoPlace struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Country   string  `json:"country"`
}

type openMeteoGeocoding struct {
	Results []openMeteoPlace `json:"results"`
}

type openMeteoForecast struct {
	Daily *struct {
		Time           []string   `json:"time"`
		TemperatureMax []*float64 `json:"temperature_2m_max"`
		TemperatureMin []*float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

func NewOpenMeteoServiceWithConfig(cfg config.ProviderConfig, tc TransportConfig, logger *zap.Logger, tele *telemetry.Telemetry) *OpenMeteoService {
	return &OpenMeteoService{
		baseProvider: newBaseProvider(OpenMeteoName, tc, logger, tele),
		baseURL:      cfg.BaseURL,
		geocodingURL: cfg.GeocodingURL,
	}
}

func (s *OpenMeteoService) ForecastWindow(ctx context.Context, location string, days int) (samples []Sample, err error) {
	ctx, span := s.startSpan(ctx, location, days)
	defer func() {
		s.finish(ctx, span, samples, err)
		span.End()
	}()

	if days <= 0 {
		return []Sample{}, nil
	}

	s.reqLogger(ctx).Debug("Fetching forecast from Open-Meteo",
		zap.String("location", location),
		zap.Int("days", days))

	place, err := s.geocode(ctx, location)
	if err != nil {
		return nil, err
	}

	return s.fetchDaily(ctx, place, days)
}

func (s *OpenMeteoService) geocode(ctx context.Context, location string) (openMeteoPlace, error) {
	q := url.Values{}
	q.Set("name", location)
	q.Set("count", "1")
	q.Set("language", "en")
	q.Set("format", "json")

	resp, err := s.http.get(ctx, s.geocodingURL+"/search", q)
	if err != nil {
		return openMeteoPlace{}, err
	}

	if resp.StatusCode != http.StatusOK {
		return openMeteoPlace{}, s.http.unexpectedStatus(resp)
	}

	var result openMeteoGeocoding
	if err := s.http.decode(resp, &result); err != nil {
		return openMeteoPlace{}, err
	}

	// Unknown names come back as 200 without a results array.
	if len(result.Results) == 0 {
		return openMeteoPlace{}, NewProviderError(s.name, InvalidLocation, fmt.Errorf("no match for %q", location))
	}

	place := result.Results[0]
	s.reqLogger(ctx).Debug("Resolved location",
		zap.String("location", location),
		zap.String("name", place.Name),
		zap.String("country", place.Country),
		zap.Float64("lat", place.Latitude),
		zap.Float64("lon", place.Longitude))

	return place, nil
}

func (s *OpenMeteoService) fetchDaily(ctx context.Context, place openMeteoPlace, days int) ([]Sample, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(place.Latitude, 'f', 6, 64))
	q.Set("longitude", strconv.FormatFloat(place.Longitude, 'f', 6, 64))
	q.Set("daily", "temperature_2m_max,temperature_2m_min")
	q.Set("forecast_days", strconv.Itoa(days))
	q.Set("timezone", "auto")

	resp, err := s.http.get(ctx, s.baseURL+"/forecast", q)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, s.http.unexpectedStatus(resp)
	}

	var result openMeteoForecast
	if err := s.http.decode(resp, &result); err != nil {
		return nil, err
	}

	if result.Daily == nil {
		return nil, NewProviderError(s.name, InvalidJSON, errors.New("missing daily block"))
	}

	n := len(result.Daily.TemperatureMax)
	if len(result.Daily.TemperatureMin) < n {
		n = len(result.Daily.TemperatureMin)
	}

	samples := make([]Sample, 0, n)
	for i := 0; i < n; i++ {
		hi, lo := result.Daily.TemperatureMax[i], result.Daily.TemperatureMin[i]
		if hi == nil || lo == nil {
			return nil, NewProviderError(s.name, InvalidJSON, fmt.Errorf("missing temperature for day %d", i))
		}
		samples = append(samples, NewSample((*hi+*lo)/2))
	}

	return s.firstDays(samples, days)
}
