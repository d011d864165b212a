package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HealthHandler struct {
	logger    *zap.Logger
	startTime time.Time
	providers []string
}

// NewHealthHandler reports ready only when at least one provider is configured.
func NewHealthHandler(logger *zap.Logger, providers []string) *HealthHandler {
	return &HealthHandler{
		logger:    logger,
		startTime: time.Now(),
		providers: providers,
	}
}

func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "alive",
		Uptime: time.Since(h.startTime).String(),
	})
}

func (h *HealthHandler) Readiness(c *gin.Context) {
	if len(h.providers) == 0 {
		h.logger.Warn("Readiness check failed, no weather providers enabled")
		c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status: "unavailable",
			Uptime: time.Since(h.startTime).String(),
		})
		return
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ready",
		Uptime:    time.Since(h.startTime).String(),
		Providers: h.providers,
	})
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Providers: h.providers,
	})
}
