package aggregator

import (
	"context"
	"time"

	"github.com/vzahanych/average-weather/internal/service"
	"github.com/vzahanych/average-weather/pkg/logger"
	"github.com/vzahanych/average-weather/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ProviderWorker runs one provider call for one request. The call is bounded by
// timeout; a provider that does not return in time is reported as
// FailedConnection and its late answer is discarded.
type ProviderWorker struct {
	provider service.Provider
	timeout  time.Duration
	logger   *zap.Logger
	tele     *telemetry.Telemetry
	metrics  MetricsRecorder
}

func NewProviderWorker(provider service.Provider, timeout time.Duration, logger *zap.Logger, tele *telemetry.Telemetry) *ProviderWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProviderWorker{
		provider: provider,
		timeout:  timeout,
		logger:   logger,
		tele:     tele,
	}
}

type fetchResult struct {
	samples []service.Sample
	err     error
}

func (w *ProviderWorker) Run(ctx context.Context, window service.Window, location string) Outcome {
	name := w.provider.Name()

	ctx, span := w.tele.GetTracer().Start(ctx, "aggregator.ProviderWorker.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("provider", name),
		attribute.String("window", window.String()),
	)

	log := logger.FromContext(ctx, w.logger).With(zap.String("provider", name))

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	start := time.Now()
	done := make(chan fetchResult, 1)
	go func() {
		samples, err := window.Fetch(ctx, w.provider, location)
		done <- fetchResult{samples: samples, err: err}
	}()

	var res fetchResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res = fetchResult{err: ctx.Err()}
	}
	elapsed := time.Since(start)

	if res.err != nil {
		pe := service.AsProviderError(name, res.err)
		span.SetAttributes(
			attribute.Bool("success", false),
			attribute.String("error_kind", pe.Kind.String()),
		)
		w.tele.RecordError(ctx, pe, map[string]interface{}{"provider": name})
		w.record(ctx, name, elapsed, pe.Kind.String())

		log.Warn("Provider failed",
			zap.String("kind", pe.Kind.String()),
			zap.Duration("elapsed", elapsed),
			zap.Error(res.err))

		return Outcome{Origin: name, Err: pe}
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("samples", len(res.samples)),
	)
	w.record(ctx, name, elapsed, "success")

	log.Debug("Provider answered",
		zap.Int("samples", len(res.samples)),
		zap.Duration("elapsed", elapsed))

	return Outcome{Origin: name, Samples: res.samples}
}

func (w *ProviderWorker) record(ctx context.Context, provider string, elapsed time.Duration, outcome string) {
	if w.metrics != nil {
		w.metrics.RecordProviderCall(ctx, provider, outcome, elapsed)
	}
}
