package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/average-weather/internal/aggregator"
	"github.com/vzahanych/average-weather/internal/server/utils"
	"github.com/vzahanych/average-weather/internal/service"
	"go.uber.org/zap"
)

// Forecaster is the part of the aggregator the HTTP layer depends on.
type Forecaster interface {
	Forecast(ctx context.Context, window service.Window, location string) aggregator.Result
	Providers() []string
}

type ForecastHandler struct {
	forecaster Forecaster
	logger     *zap.Logger
}

func NewForecastHandler(forecaster Forecaster, logger *zap.Logger) *ForecastHandler {
	return &ForecastHandler{
		forecaster: forecaster,
		logger:     logger,
	}
}

// Window returns the gin handler serving one forecast window.
func (h *ForecastHandler) Window(window service.Window) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.serve(c, window)
	}
}

func (h *ForecastHandler) serve(c *gin.Context, window service.Window) {
	ctx := utils.GetContextFromGinContext(c)
	reqLogger := utils.GetLoggerFromGinContext(c, h.logger)

	var req ForecastRequest
	if err := c.ShouldBindUri(&req); err != nil {
		reqLogger.Warn("Invalid request path", zap.Error(err))
		h.rejectLocation(c)
		return
	}

	if verrs := utils.ValidateStruct(req); len(verrs) > 0 {
		messages := make([]string, 0, len(verrs))
		for _, v := range verrs {
			messages = append(messages, v.Message)
		}
		reqLogger.Warn("Invalid location", zap.Strings("errors", messages))
		h.rejectLocation(c)
		return
	}

	reqLogger.Info("Processing forecast request",
		zap.String("window", window.String()),
		zap.String("location", req.Location))

	result := h.forecaster.Forecast(ctx, window, req.Location)

	status := http.StatusOK
	if result.Status != aggregator.StatusSuccess {
		status = http.StatusBadRequest
	}

	c.JSON(status, result)
}

// rejectLocation answers a malformed location the way every provider would: a
// failed aggregate with one InvalidLocation per provider.
func (h *ForecastHandler) rejectLocation(c *gin.Context) {
	providers := h.forecaster.Providers()
	errs := make([]service.ProviderError, 0, len(providers))
	for _, name := range providers {
		errs = append(errs, *service.NewProviderError(name, service.InvalidLocation, nil))
	}
	c.JSON(http.StatusBadRequest, aggregator.BuildResponse(nil, errs))
}
