package utils

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/average-weather/pkg/logger"
	"go.uber.org/zap"
)

const (
	SpanContextKey = "span_context"
	RequestIDKey   = "request_id"
)

// GetContextFromGinContext returns the traced request context.
func GetContextFromGinContext(c *gin.Context) context.Context {
	if spanCtx, exists := c.Get(SpanContextKey); exists {
		if ctx, ok := spanCtx.(context.Context); ok {
			return ctx
		}
	}
	return c.Request.Context()
}

func GetRequestIDFromGinContext(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// GetLoggerFromGinContext returns the request scoped logger installed by the
// request ID middleware.
func GetLoggerFromGinContext(c *gin.Context, fallback *zap.Logger) *zap.Logger {
	return logger.FromContext(c.Request.Context(), fallback)
}
