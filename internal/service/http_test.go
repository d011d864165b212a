package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/average-weather/internal/config"
	"go.uber.org/zap/zaptest"
)

func TestTransport_BreakerOpensOnConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewWeatherBitServiceWithConfig(
		config.ProviderConfig{Enabled: true, BaseURL: srv.URL, APIKey: "k3y"},
		TransportConfig{BreakerFailures: 2, BreakerTimeout: time.Minute},
		zaptest.NewLogger(t),
		nil,
	)

	for i := 0; i < 2; i++ {
		_, err := p.ForecastWindow(context.Background(), "Moscow", 1)
		requireKind(t, err, WeatherBitName, FailedConnection)
	}
	require.Equal(t, int32(2), hits.Load())

	_, err := p.ForecastWindow(context.Background(), "Moscow", 1)
	requireKind(t, err, WeatherBitName, FailedConnection)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), hits.Load(), "open breaker must not reach the backend")
}

func TestTransport_BackendAnswersDoNotTripBreaker(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	p := NewWeatherBitServiceWithConfig(
		config.ProviderConfig{Enabled: true, BaseURL: srv.URL, APIKey: "k3y"},
		TransportConfig{BreakerFailures: 1, BreakerTimeout: time.Minute},
		zaptest.NewLogger(t),
		nil,
	)

	for i := 0; i < 3; i++ {
		_, err := p.ForecastWindow(context.Background(), "Atlantis", 1)
		requireKind(t, err, WeatherBitName, InvalidLocation)
	}
	assert.Equal(t, int32(3), hits.Load())
}

func TestTransport_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	p := NewWeatherBitServiceWithConfig(
		config.ProviderConfig{Enabled: true, BaseURL: srv.URL, APIKey: "k3y"},
		TransportConfig{},
		zaptest.NewLogger(t),
		nil,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.ForecastWindow(ctx, "Moscow", 1)
	requireKind(t, err, WeatherBitName, FailedConnection)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func weatherBitOK(w http.ResponseWriter) {
	fmt.Fprint(w, `{"data":[{"valid_date":"2026-10-19","temp":3.5}]}`)
}

func TestTransport_CancelledCallsDoNotTripBreaker(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		weatherBitOK(w)
	}))
	defer srv.Close()

	p := NewWeatherBitServiceWithConfig(
		config.ProviderConfig{Enabled: true, BaseURL: srv.URL, APIKey: "k3y"},
		TransportConfig{BreakerFailures: 2, BreakerTimeout: time.Minute},
		zaptest.NewLogger(t),
		nil,
	)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 5; i++ {
		_, err := p.ForecastWindow(cancelled, "Moscow", 1)
		requireKind(t, err, WeatherBitName, FailedConnection)
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Zero(t, hits.Load(), "a cancelled call must not reach the backend")

	samples, err := p.ForecastWindow(context.Background(), "Moscow", 1)
	require.NoError(t, err)
	assert.Equal(t, []Sample{{3.5}}, samples)
}

func TestTransport_CancelledInFlightDoesNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("city") == "slow" {
			<-r.Context().Done()
			return
		}
		weatherBitOK(w)
	}))
	defer srv.Close()

	p := NewWeatherBitServiceWithConfig(
		config.ProviderConfig{Enabled: true, BaseURL: srv.URL, APIKey: "k3y"},
		TransportConfig{BreakerFailures: 1, BreakerTimeout: time.Minute},
		zaptest.NewLogger(t),
		nil,
	)

	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(20*time.Millisecond, cancel)

		_, err := p.ForecastWindow(ctx, "slow", 1)
		requireKind(t, err, WeatherBitName, FailedConnection)
		assert.ErrorIs(t, err, context.Canceled)
		cancel()
	}

	_, err := p.ForecastWindow(context.Background(), "Moscow", 1)
	require.NoError(t, err)
}

func TestTransport_HalfOpenAdmitsConfiguredConcurrency(t *testing.T) {
	var healthy atomic.Bool
	arrived := make(chan struct{}, 2)
	release := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		arrived <- struct{}{}
		<-release
		weatherBitOK(w)
	}))
	defer srv.Close()

	var releaseOnce sync.Once
	releaseAll := func() { releaseOnce.Do(func() { close(release) }) }
	defer releaseAll()

	p := NewWeatherBitServiceWithConfig(
		config.ProviderConfig{Enabled: true, BaseURL: srv.URL, APIKey: "k3y"},
		TransportConfig{BreakerFailures: 1, BreakerTimeout: 50 * time.Millisecond, BreakerHalfOpen: 2},
		zaptest.NewLogger(t),
		nil,
	)

	_, err := p.ForecastWindow(context.Background(), "Moscow", 1)
	requireKind(t, err, WeatherBitName, FailedConnection)

	_, err = p.ForecastWindow(context.Background(), "Moscow", 1)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)

	healthy.Store(true)
	time.Sleep(100 * time.Millisecond)

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := p.ForecastWindow(context.Background(), "Moscow", 1)
			errs <- err
		}()
	}

	for i := 0; i < 2; i++ {
		select {
		case <-arrived:
		case <-time.After(5 * time.Second):
			t.Fatal("half-open breaker rejected a concurrent call")
		}
	}
	releaseAll()

	for i := 0; i < 2; i++ {
		assert.NoError(t, <-errs)
	}
}
