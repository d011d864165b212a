package aggregator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/average-weather/internal/service"
	"github.com/vzahanych/average-weather/pkg/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestProviderWorker_Creation(t *testing.T) {
	p := ok("x", 1)
	worker := NewProviderWorker(p, time.Second, nil, nil)

	require.NotNil(t, worker)
	assert.Equal(t, time.Second, worker.timeout)
	assert.NotNil(t, worker.logger)
}

func TestProviderWorker_Success(t *testing.T) {
	worker := NewProviderWorker(ok("x", 1, 2, 3, 4, 5), time.Second, zaptest.NewLogger(t), nil)

	out := worker.Run(context.Background(), service.Tomorrow, "Moscow")

	assert.False(t, out.Failed())
	assert.Equal(t, "x", out.Origin)
	assert.Equal(t, samples(2), out.Samples)
}

func TestProviderWorker_ProviderError(t *testing.T) {
	worker := NewProviderWorker(failing("x", service.InvalidLocation), time.Second, zaptest.NewLogger(t), nil)

	out := worker.Run(context.Background(), service.Today, "Nowhere")

	require.True(t, out.Failed())
	assert.Equal(t, "x", out.Err.Origin)
	assert.Equal(t, service.InvalidLocation, out.Err.Kind)
}

type plainErrorProvider struct{}

func (plainErrorProvider) Name() string { return "plain" }

func (plainErrorProvider) ForecastWindow(ctx context.Context, location string, days int) ([]service.Sample, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func TestProviderWorker_UntypedErrorIsFailedConnection(t *testing.T) {
	worker := NewProviderWorker(plainErrorProvider{}, time.Second, zaptest.NewLogger(t), nil)

	out := worker.Run(context.Background(), service.Today, "Moscow")

	require.True(t, out.Failed())
	assert.Equal(t, "plain", out.Err.Origin)
	assert.Equal(t, service.FailedConnection, out.Err.Kind)
}

// stuckProvider ignores cancellation.
type stuckProvider struct{ release chan struct{} }

func (stuckProvider) Name() string { return "stuck" }

func (p stuckProvider) ForecastWindow(ctx context.Context, location string, days int) ([]service.Sample, error) {
	<-p.release
	return samples(1), nil
}

func TestProviderWorker_TimeoutWithUncooperativeProvider(t *testing.T) {
	p := stuckProvider{release: make(chan struct{})}
	defer close(p.release)

	worker := NewProviderWorker(p, 50*time.Millisecond, zaptest.NewLogger(t), nil)

	out := worker.Run(context.Background(), service.Today, "Moscow")

	require.True(t, out.Failed())
	assert.Equal(t, service.FailedConnection, out.Err.Kind)
	assert.ErrorIs(t, out.Err, context.DeadlineExceeded)
}

func TestProviderWorker_UsesRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	reqLogger := zap.New(core).With(zap.String("request_id", "req-1"))

	worker := NewProviderWorker(failing("x", service.InvalidJSON), time.Second, zaptest.NewLogger(t), nil)

	ctx := logger.WithContext(context.Background(), reqLogger)
	worker.Run(ctx, service.Today, "Moscow")

	entries := logs.FilterMessage("Provider failed").All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "x", fields["provider"])
	assert.Equal(t, "InvalidJSON", fields["kind"])
}
