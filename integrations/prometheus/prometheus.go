package prometheus

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/KiloProjects/blogfront/internal/config"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	enabled = config.GenFlag[bool]("integrations.prometheus.enabled", false, "Enable Prometheus metrics")
	port    = config.GenFlag[int]("integrations.prometheus.port", 8071, "Prometheus metrics port")
)

var (
	apiRequests = promauto.NewCounterVec(prom.CounterOpts{
		Namespace: "blogfront",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Requests made to the remote blog API, by endpoint and status code",
	}, []string{"endpoint", "code"})

	apiDuration = promauto.NewHistogramVec(prom.HistogramOpts{
		Namespace: "blogfront",
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "Latency of remote blog API calls",
		Buckets:   prom.DefBuckets,
	}, []string{"endpoint"})

	sessionsStarted = promauto.NewCounter(prom.CounterOpts{
		Namespace: "blogfront",
		Name:      "sessions_started_total",
		Help:      "Successful logins",
	})
)

// ObserveAPICall records a finished remote call. code is 0 if no response was received.
func ObserveAPICall(endpoint string, code int, took time.Duration) {
	apiRequests.WithLabelValues(endpoint, strconv.Itoa(code)).Inc()
	apiDuration.WithLabelValues(endpoint).Observe(took.Seconds())
}

func SessionStarted() {
	sessionsStarted.Inc()
}

func InitMetrics() {
	if !enabled.Value() {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	go func() {
		slog.Info("Serving Prometheus metrics", slog.Int("port", port.Value()))
		if err := http.ListenAndServe(fmt.Sprintf(":%d", port.Value()), mux); err != nil {
			slog.Error("Error with Prometheus metrics", slog.Any("err", err))
		}
	}()
}
