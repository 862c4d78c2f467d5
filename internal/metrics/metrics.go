package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/katyella/kconsole/internal/constants"
	apperrors "github.com/katyella/kconsole/internal/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	backendRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kconsole",
		Subsystem: "backend",
		Name:      "requests_total",
		Help:      "Total backend calls by backend, verb, resource and outcome.",
	}, []string{"backend", "verb", "resource", "outcome"})

	backendRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kconsole",
		Subsystem: "backend",
		Name:      "request_duration_seconds",
		Help:      "Backend call duration in seconds.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"backend", "verb"})

	queryCacheEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kconsole",
		Subsystem: "query_cache",
		Name:      "events_total",
		Help:      "Query cache lookups by event (hit, miss, stale, evict).",
	}, []string{"event"})

	fanoutFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kconsole",
		Subsystem: "cluster",
		Name:      "fanout_failures_total",
		Help:      "Per-cluster failures during multi-cluster list fan-out.",
	}, []string{"cluster"})
)

func init() {
	prometheus.MustRegister(
		backendRequestsTotal,
		backendRequestDuration,
		queryCacheEventsTotal,
		fanoutFailuresTotal,
	)
}

// Cache events
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheStale = "stale"
	CacheEvict = "evict"
)

// ObserveRequest records one backend call
func ObserveRequest(backend, verb, resource string, err error, elapsed time.Duration) {
	backendRequestsTotal.WithLabelValues(backend, verb, resource, Outcome(err)).Inc()
	backendRequestDuration.WithLabelValues(backend, verb).Observe(elapsed.Seconds())
}

// Outcome reduces an error to a low-cardinality label
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorNotFound:
		return "not_found"
	case apperrors.ErrorConflict:
		return "conflict"
	case apperrors.ErrorAuthentication, apperrors.ErrorPermission:
		return "denied"
	case apperrors.ErrorValidation:
		return "invalid"
	case apperrors.ErrorUnsupported:
		return "unsupported"
	default:
		return "error"
	}
}

// CacheEvent records a query cache event
func CacheEvent(event string) {
	queryCacheEventsTotal.WithLabelValues(event).Inc()
}

// FanoutFailure records a failed cluster during aggregation
func FanoutFailure(cluster string) {
	fanoutFailuresTotal.WithLabelValues(cluster).Inc()
}

// Serve exposes the metrics endpoint on addr until ctx is done. An empty addr
// disables the listener.
func Serve(ctx context.Context, addr string) error {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle(constants.MetricsEndpoint, promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: constants.DefaultRequestTimeout}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.MetricsShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("metrics server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
