package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	applog "github.com/vzahanych/average-weather/pkg/logger"
	"github.com/vzahanych/average-weather/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var errServerStatus = errors.New("backend unavailable")

// TransportConfig bundles the HTTP client and circuit breaker settings shared by
// every provider. BreakerHalfOpen is the number of calls let through while a breaker tests a
// recovering backend; further concurrent calls fail fast as FailedConnection.
type TransportConfig struct {
	Client          *http.Client
	Timeout         time.Duration
	BreakerFailures uint32
	BreakerTimeout  time.Duration
	BreakerHalfOpen uint32
}

// transport performs GET requests for one provider and translates transport level
// failures into FailedConnection. The breaker only counts failures to reach the
// backend; answers such as "unknown location" leave it closed.
type transport struct {
	origin  string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

func newTransport(origin string, cfg TransportConfig) *transport {
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	t := &transport{
		origin: origin,
		client: client,
	}

	if cfg.BreakerFailures > 0 {
		threshold := cfg.BreakerFailures
		halfOpen := cfg.BreakerHalfOpen
		if halfOpen == 0 {
			halfOpen = 1
		}
		t.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        origin,
			MaxRequests: halfOpen,
			Timeout:     cfg.BreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			// A caller giving up says nothing about the backend.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
		})
	}

	return t
}

func (t *transport) get(ctx context.Context, endpoint string, query url.Values) (*http.Response, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, NewProviderError(t.origin, FailedConnection, err)
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, NewProviderError(t.origin, FailedConnection, err)
	}
	req.Header.Set("Accept", "application/json")

	do := func() (interface{}, error) {
		resp, err := t.client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			drain(resp)
			return nil, fmt.Errorf("%w: status %d", errServerStatus, resp.StatusCode)
		}
		return resp, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, NewProviderError(t.origin, FailedConnection, err)
	}

	var result interface{}
	if t.breaker != nil {
		result, err = t.breaker.Execute(do)
	} else {
		result, err = do()
	}
	if err != nil {
		return nil, NewProviderError(t.origin, FailedConnection, err)
	}

	return result.(*http.Response), nil
}

func (t *transport) decode(resp *http.Response, v interface{}) error {
	defer drain(resp)

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return NewProviderError(t.origin, InvalidJSON, err)
	}
	return nil
}

func (t *transport) unexpectedStatus(resp *http.Response) error {
	drain(resp)
	return NewProviderError(t.origin, InvalidJSON, fmt.Errorf("unexpected status %d", resp.StatusCode))
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}

// baseProvider holds what every concrete provider shares.
type baseProvider struct {
	name   string
	http   *transport
	logger *zap.Logger
	tele   *telemetry.Telemetry
}

func newBaseProvider(name string, cfg TransportConfig, logger *zap.Logger, tele *telemetry.Telemetry) baseProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseProvider{
		name:   name,
		http:   newTransport(name, cfg),
		logger: logger,
		tele:   tele,
	}
}

func (b *baseProvider) Name() string {
	return b.name
}

// reqLogger prefers the request scoped logger carried by ctx.
func (b *baseProvider) reqLogger(ctx context.Context) *zap.Logger {
	return applog.FromContext(ctx, b.logger).With(zap.String("provider", b.name))
}

func (b *baseProvider) startSpan(ctx context.Context, location string, days int) (context.Context, trace.Span) {
	ctx, span := b.tele.GetTracer().Start(ctx, b.name+".ForecastWindow")
	span.SetAttributes(
		attribute.String("service", b.name),
		attribute.String("location", location),
		attribute.Int("days", days),
	)
	return ctx, span
}

// finish records the outcome of a ForecastWindow call on its span.
func (b *baseProvider) finish(ctx context.Context, span trace.Span, samples []Sample, err error) {
	if err != nil {
		span.SetAttributes(attribute.Bool("success", false))
		b.tele.RecordError(ctx, err, map[string]interface{}{"provider": b.name})
		return
	}
	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("days_fetched", len(samples)),
	)
}

// firstDays keeps the first days entries of a backend answer, or reports the answer
// as malformed when it is shorter than requested.
func (b *baseProvider) firstDays(samples []Sample, days int) ([]Sample, error) {
	if len(samples) < days {
		return nil, NewProviderError(b.name, InvalidJSON,
			fmt.Errorf("expected %d days, got %d", days, len(samples)))
	}
	return samples[:days], nil
}
