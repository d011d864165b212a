package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vzahanych/average-weather/internal/aggregator"
	"github.com/vzahanych/average-weather/internal/config"
	"github.com/vzahanych/average-weather/internal/service"
	"go.uber.org/zap"
)

var errForecastFailed = errors.New("every provider failed")

func forecastCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "forecast <today|tomorrow|five-days> <location>",
		Short:     "Run one aggregation and print the result as JSON",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"today", "tomorrow", "five-days"},
		RunE:      runForecast,
	}
}

func runForecast(cmd *cobra.Command, args []string) error {
	window, err := service.ParseWindow(args[0])
	if err != nil {
		return err
	}
	location := args[1]

	agg := newAggregator(config.GetConfig())
	result := agg.Forecast(cmd.Context(), window, location)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	if result.Status != aggregator.StatusSuccess {
		log.Debug("Forecast failed",
			zap.String("window", window.String()),
			zap.String("location", location),
			zap.Int("errors", len(result.Errors)))
		return errForecastFailed
	}
	return nil
}
