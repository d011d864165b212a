package service

import (
	"context"
	"fmt"
)

// Provider is a weather backend able to forecast a contiguous window of days
// starting today.
//
// ForecastWindow returns exactly days samples in chronological order, or a
// *ProviderError describing why it could not. Implementations must be safe for
// concurrent use.
type Provider interface {
	ForecastWindow(ctx context.Context, location string, days int) ([]Sample, error)
	Name() string
}

// Window is one of the forecast ranges exposed to clients.
type Window int

const (
	Today Window = iota
	Tomorrow
	FiveDays
)

var windowNames = map[Window]string{
	Today:    "today",
	Tomorrow: "tomorrow",
	FiveDays: "five-days",
}

func ParseWindow(s string) (Window, error) {
	for w, name := range windowNames {
		if name == s {
			return w, nil
		}
	}
	return 0, fmt.Errorf("unknown forecast window %q", s)
}

func (w Window) String() string {
	if name, ok := windowNames[w]; ok {
		return name
	}
	return fmt.Sprintf("Window(%d)", int(w))
}

// Days is the size of the window requested from a provider. None of the backends
// accepts a start offset, so tomorrow is fetched as a two day window.
func (w Window) Days() int {
	switch w {
	case Tomorrow:
		return 2
	case FiveDays:
		return 5
	default:
		return 1
	}
}

// Skip is the number of leading days dropped from the fetched window.
func (w Window) Skip() int {
	if w == Tomorrow {
		return 1
	}
	return 0
}

// Len is the number of samples a successful Fetch returns.
func (w Window) Len() int {
	return w.Days() - w.Skip()
}

// Fetch runs the window against p.
func (w Window) Fetch(ctx context.Context, p Provider, location string) ([]Sample, error) {
	samples, err := p.ForecastWindow(ctx, location, w.Days())
	if err != nil {
		return nil, err
	}
	if len(samples) < w.Skip() {
		return nil, NewProviderError(p.Name(), InvalidJSON,
			fmt.Errorf("expected %d days, got %d", w.Days(), len(samples)))
	}
	return samples[w.Skip():], nil
}

func ForecastToday(ctx context.Context, p Provider, location string) ([]Sample, error) {
	return Today.Fetch(ctx, p, location)
}

func ForecastTomorrow(ctx context.Context, p Provider, location string) ([]Sample, error) {
	return Tomorrow.Fetch(ctx, p, location)
}

func ForecastFiveDays(ctx context.Context, p Provider, location string) ([]Sample, error) {
	return FiveDays.Fetch(ctx, p, location)
}
