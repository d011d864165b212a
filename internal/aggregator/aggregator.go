package aggregator

import (
	"context"
	"fmt"
	"time"

	"github.com/vzahanych/average-weather/internal/service"
	"github.com/vzahanych/average-weather/pkg/logger"
	"github.com/vzahanych/average-weather/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MetricsRecorder receives one observation per provider call. outcome is
// "success" or the name of the error kind.
type MetricsRecorder interface {
	RecordProviderCall(ctx context.Context, provider, outcome string, elapsed time.Duration)
}

type Aggregator struct {
	workers []*ProviderWorker
	logger  *zap.Logger
	tele    *telemetry.Telemetry
}

// NewAggregator fans requests out to providers in the given order. timeout bounds
// every single provider call; zero disables it.
func NewAggregator(providers []service.Provider, timeout time.Duration, logger *zap.Logger, tele *telemetry.Telemetry) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}

	workers := make([]*ProviderWorker, 0, len(providers))
	for _, p := range providers {
		workers = append(workers, NewProviderWorker(p, timeout, logger, tele))
	}

	return &Aggregator{
		workers: workers,
		logger:  logger,
		tele:    tele,
	}
}

// SetMetricsRecorder must be called before the aggregator serves requests.
func (a *Aggregator) SetMetricsRecorder(metrics MetricsRecorder) {
	for _, w := range a.workers {
		w.metrics = metrics
	}
}

// Providers returns the provider names in iteration order.
func (a *Aggregator) Providers() []string {
	names := make([]string, 0, len(a.workers))
	for _, w := range a.workers {
		names = append(names, w.provider.Name())
	}
	return names
}

// Forecast queries every provider concurrently for window at location, waits for
// all of them and averages the successful answers.
func (a *Aggregator) Forecast(ctx context.Context, window service.Window, location string) Result {
	ctx, span := a.tele.GetTracer().Start(ctx, "aggregator.Forecast")
	defer span.End()

	span.SetAttributes(
		attribute.String("window", window.String()),
		attribute.String("location", location),
		attribute.Int("providers", len(a.workers)),
	)

	log := logger.FromContext(ctx, a.logger)
	log.Debug("Forecast requested",
		zap.String("window", window.String()),
		zap.String("location", location),
		zap.Int("providers", len(a.workers)))

	outcomes := make([]Outcome, len(a.workers))

	var g errgroup.Group
	for i, w := range a.workers {
		i, w := i, w
		g.Go(func() error {
			outcomes[i] = w.Run(ctx, window, location)
			return nil
		})
	}
	_ = g.Wait()

	want := window.Len()
	for i, o := range outcomes {
		if o.Failed() || len(o.Samples) == want {
			continue
		}
		log.Warn("Provider answer has unexpected length",
			zap.String("provider", o.Origin),
			zap.Int("expected", want),
			zap.Int("got", len(o.Samples)))
		outcomes[i] = Outcome{
			Origin: o.Origin,
			Err: service.NewProviderError(o.Origin, service.InvalidJSON,
				fmt.Errorf("%w: expected %d samples, got %d", ErrLengthMismatch, want, len(o.Samples))),
		}
	}

	successes, errs := Partition(outcomes)

	data, err := Average(successes)
	if err != nil {
		// unreachable after the length check above
		log.Error("Failed to average forecasts", zap.Error(err))
		data = nil
	}

	result := BuildResponse(data, errs)

	span.SetAttributes(
		attribute.String("status", string(result.Status)),
		attribute.Int("succeeded", len(successes)),
		attribute.Int("failed", len(errs)),
	)

	log.Info("Forecast aggregated",
		zap.String("window", window.String()),
		zap.String("location", location),
		zap.String("status", string(result.Status)),
		zap.Int("succeeded", len(successes)),
		zap.Int("failed", len(errs)))

	return result
}
