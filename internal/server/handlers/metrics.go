package handlers

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/average-weather/internal/server/middlewares"
	"go.uber.org/zap"
)

// HTTPMetricsSource supplies request counters collected by the metrics middleware.
type HTTPMetricsSource interface {
	Snapshot() middlewares.HTTPSnapshot
}

type providerKey struct {
	provider string
	outcome  string
}

// AppMetrics holds provider call counters.
type AppMetrics struct {
	mutex         sync.RWMutex
	providerCalls map[providerKey]int64
	providerTime  map[string]float64
}

type MetricsHandler struct {
	logger     *zap.Logger
	http       HTTPMetricsSource
	appMetrics *AppMetrics
}

func NewMetricsHandler(logger *zap.Logger, source HTTPMetricsSource) *MetricsHandler {
	return &MetricsHandler{
		logger: logger,
		http:   source,
		appMetrics: &AppMetrics{
			providerCalls: make(map[providerKey]int64),
			providerTime:  make(map[string]float64),
		},
	}
}

// RecordProviderCall counts one provider call by outcome.
func (h *MetricsHandler) RecordProviderCall(ctx context.Context, provider, outcome string, elapsed time.Duration) {
	h.appMetrics.mutex.Lock()
	h.appMetrics.providerCalls[providerKey{provider: provider, outcome: outcome}]++
	h.appMetrics.providerTime[provider] += elapsed.Seconds()
	h.appMetrics.mutex.Unlock()
}

// ServeMetrics exposes counters in the Prometheus text format.
func (h *MetricsHandler) ServeMetrics(c *gin.Context) {
	var b strings.Builder

	if h.http != nil {
		snap := h.http.Snapshot()

		b.WriteString("# HELP http_requests_total Total number of HTTP requests\n")
		b.WriteString("# TYPE http_requests_total counter\n")
		for _, key := range sortedKeys(snap.RequestsTotal) {
			b.WriteString("http_requests_total{route_status=\"" + key + "\"} " + strconv.FormatInt(snap.RequestsTotal[key], 10) + "\n")
		}

		b.WriteString("\n# HELP http_request_duration_seconds_avg Average duration of HTTP requests\n")
		b.WriteString("# TYPE http_request_duration_seconds_avg gauge\n")
		b.WriteString("http_request_duration_seconds_avg " + strconv.FormatFloat(snap.AvgDuration, 'f', 6, 64) + "\n")

		b.WriteString("\n# HELP http_active_requests Number of active HTTP requests\n")
		b.WriteString("# TYPE http_active_requests gauge\n")
		b.WriteString("http_active_requests " + strconv.FormatInt(snap.ActiveRequests, 10) + "\n\n")
	}

	h.appMetrics.mutex.RLock()
	keys := make([]providerKey, 0, len(h.appMetrics.providerCalls))
	for k := range h.appMetrics.providerCalls {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].provider != keys[j].provider {
			return keys[i].provider < keys[j].provider
		}
		return keys[i].outcome < keys[j].outcome
	})

	b.WriteString("# HELP weather_provider_calls_total Total weather provider calls by outcome\n")
	b.WriteString("# TYPE weather_provider_calls_total counter\n")
	for _, k := range keys {
		b.WriteString("weather_provider_calls_total{provider=\"" + k.provider + "\",outcome=\"" + k.outcome + "\"} " +
			strconv.FormatInt(h.appMetrics.providerCalls[k], 10) + "\n")
	}

	b.WriteString("\n# HELP weather_provider_duration_seconds_total Time spent waiting for weather providers\n")
	b.WriteString("# TYPE weather_provider_duration_seconds_total counter\n")
	for _, p := range sortedKeys(h.appMetrics.providerTime) {
		b.WriteString("weather_provider_duration_seconds_total{provider=\"" + p + "\"} " +
			strconv.FormatFloat(h.appMetrics.providerTime[p], 'f', 6, 64) + "\n")
	}
	h.appMetrics.mutex.RUnlock()

	c.Header("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	c.String(http.StatusOK, b.String())
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
