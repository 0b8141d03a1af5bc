// Package metrics provides Prometheus instrumentation for the asset manager.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// OperationsTotal counts manager operations by kind and outcome.
	OperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aam_operations_total",
		Help: "Total manager operations executed",
	}, []string{"kind", "outcome"})

	// OperationDuration tracks how long each operation kind takes.
	OperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aam_operation_duration_seconds",
		Help:    "Manager operation duration in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"kind"})

	// InvestedBalance tracks the principal currently deployed at the venue,
	// in settlement token base units.
	InvestedBalance = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "aam_invested_balance",
		Help: "Principal deployed at the yield venue in base units",
	})

	// IdleBalance tracks the investable capital sitting at the pool, as read
	// at the start of the latest rebalance cycle.
	IdleBalance = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "aam_idle_balance",
		Help: "Investable pool capital in base units",
	})

	// UnclaimedRewards tracks rewards accrued at the venue but not claimed,
	// in reward token base units.
	UnclaimedRewards = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "aam_unclaimed_rewards",
		Help: "Accrued unclaimed rewards in reward base units",
	})

	// RewardsClaimed counts reward tokens claimed from the venue.
	RewardsClaimed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aam_rewards_claimed_total",
		Help: "Cumulative rewards claimed in reward base units",
	})

	// RewardsReinvested counts reward tokens deposited back into the venue.
	RewardsReinvested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aam_rewards_reinvested_total",
		Help: "Cumulative rewards reinvested in reward base units",
	})

	// SwapsTotal counts reward conversions by outcome.
	SwapsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aam_swaps_total",
		Help: "Total reward conversions attempted",
	}, []string{"outcome"})

	// ParameterChanges counts accepted governance mutations by action and by
	// which change path authorized them (full or tweak).
	ParameterChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aam_parameter_changes_total",
		Help: "Accepted parameter changes",
	}, []string{"action", "path"})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aam_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aam_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		// Middleware only runs on matched routes, so the raw path label
		// stays bounded by the route table.
		path := r.URL.Path
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
