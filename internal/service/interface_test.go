package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider answers every window with the first days entries of forecast.
type stubProvider struct {
	name     string
	forecast []Sample
	err      error
	calls    []int
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) ForecastWindow(_ context.Context, _ string, days int) ([]Sample, error) {
	p.calls = append(p.calls, days)
	if p.err != nil {
		return nil, p.err
	}
	if days > len(p.forecast) {
		days = len(p.forecast)
	}
	return append([]Sample(nil), p.forecast[:days]...), nil
}

func week() []Sample {
	return []Sample{{1}, {2}, {3}, {4}, {5}, {6}, {7}}
}

func TestWindowArithmetic(t *testing.T) {
	tests := []struct {
		window Window
		name   string
		days   int
		length int
	}{
		{Today, "today", 1, 1},
		{Tomorrow, "tomorrow", 2, 1},
		{FiveDays, "five-days", 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.window.String())
			assert.Equal(t, tt.days, tt.window.Days())
			assert.Equal(t, tt.length, tt.window.Len())

			parsed, err := ParseWindow(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.window, parsed)
		})
	}

	_, err := ParseWindow("next-week")
	assert.Error(t, err)
}

func TestDerivedOperations(t *testing.T) {
	ctx := context.Background()
	p := &stubProvider{name: "stub", forecast: week()}

	today, err := ForecastToday(ctx, p, "Moscow")
	require.NoError(t, err)
	assert.Equal(t, []Sample{{1}}, today)

	tomorrow, err := ForecastTomorrow(ctx, p, "Moscow")
	require.NoError(t, err)
	assert.Equal(t, []Sample{{2}}, tomorrow)

	five, err := ForecastFiveDays(ctx, p, "Moscow")
	require.NoError(t, err)
	assert.Equal(t, []Sample{{1}, {2}, {3}, {4}, {5}}, five)

	assert.Equal(t, []int{1, 2, 5}, p.calls)
}

func TestTomorrowIsSecondDayOfTwoDayWindow(t *testing.T) {
	ctx := context.Background()
	forecasts := [][]Sample{
		{{-4.5}, {3.25}},
		{{0}, {0}},
		{{12}, {-12}, {99}},
	}

	for _, forecast := range forecasts {
		p := &stubProvider{name: "stub", forecast: forecast}

		window, err := p.ForecastWindow(ctx, "Oslo", 2)
		require.NoError(t, err)

		tomorrow, err := ForecastTomorrow(ctx, p, "Oslo")
		require.NoError(t, err)
		assert.Equal(t, []Sample{window[1]}, tomorrow)
	}
}

func TestWindowFetchPropagatesProviderError(t *testing.T) {
	p := &stubProvider{name: "stub", err: NewProviderError("stub", InvalidLocation, nil)}

	_, err := FiveDays.Fetch(context.Background(), p, "Atlantis")
	requireKind(t, err, "stub", InvalidLocation)
}

func TestWindowFetchRejectsEmptyTomorrow(t *testing.T) {
	p := &stubProvider{name: "stub", forecast: nil}

	_, err := Tomorrow.Fetch(context.Background(), p, "Oslo")
	requireKind(t, err, "stub", InvalidJSON)
}
