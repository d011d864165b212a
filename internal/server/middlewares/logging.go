package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/average-weather/internal/server/utils"
	"go.uber.org/zap"
)

func LoggingMiddleware(log *zap.Logger, utc bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		param := gin.LogFormatterParams{
			Request:      c.Request,
			TimeStamp:    time.Now(),
			Latency:      time.Since(start),
			ClientIP:     c.ClientIP(),
			Method:       c.Request.Method,
			StatusCode:   c.Writer.Status(),
			ErrorMessage: c.Errors.ByType(gin.ErrorTypePrivate).String(),
			BodySize:     c.Writer.Size(),
		}

		if utc {
			param.TimeStamp = param.TimeStamp.UTC()
		}

		if raw != "" {
			path = path + "?" + raw
		}

		fields := []zap.Field{
			zap.String("method", param.Method),
			zap.String("path", path),
			zap.String("route", c.FullPath()),
			zap.Int("status", param.StatusCode),
			zap.Duration("latency", param.Latency),
			zap.Time("finished_at", param.TimeStamp),
			zap.String("client_ip", param.ClientIP),
			zap.Int("body_size", param.BodySize),
		}

		if userAgent := c.Request.UserAgent(); userAgent != "" {
			fields = append(fields, zap.String("user_agent", userAgent))
		}

		if param.ErrorMessage != "" {
			fields = append(fields, zap.String("error", param.ErrorMessage))
		}

		reqLogger := utils.GetLoggerFromGinContext(c, log)

		switch {
		case param.StatusCode >= 400 && param.StatusCode < 500:
			reqLogger.Warn("HTTP request", fields...)
		case param.StatusCode >= 500:
			reqLogger.Error("HTTP request", fields...)
		default:
			reqLogger.Info("HTTP request", fields...)
		}
	}
}

func RecoveryMiddleware(log *zap.Logger, stack bool) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("client_ip", c.ClientIP()),
			zap.Any("recovered", recovered),
		}

		if stack {
			fields = append(fields, zap.Stack("stack"))
		}

		utils.GetLoggerFromGinContext(c, log).Error("HTTP panic recovered", fields...)
		c.AbortWithStatus(500)
	})
}
