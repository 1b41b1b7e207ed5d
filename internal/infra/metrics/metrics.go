package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	FeedRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feed_requests_total",
		Help: "Total feed page requests",
	})
	FeedBuildSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "feed_build_seconds",
		Help:    "Time spent building one feed page",
		Buckets: prometheus.DefBuckets,
	})
	CandidateFetchErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "candidate_fetch_errors_total",
		Help: "Candidate fetches that failed after retries",
	})
	InteractionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "interactions_total",
		Help: "Recorded interaction events by type",
	}, []string{"interaction_type"})
	InteractionWriteErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "interaction_write_errors_total",
		Help: "Interaction events lost because the append failed",
	})
	PreferenceUpdatesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "preference_updates_total",
		Help: "Preference updates by origin (explicit or implicit)",
	}, []string{"origin"})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Duration of outbound requests",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Count of outbound requests",
	}, []string{"component", "operation", "target", "status"})
)

// MustRegister registers all metric families.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		FeedRequestsTotal,
		FeedBuildSeconds,
		CandidateFetchErrors,
		InteractionsTotal,
		InteractionWriteErrors,
		PreferenceUpdatesTotal,
		NetworkRequestDuration,
		NetworkRequestTotal,
	)
}

// StartServer starts an HTTP server with the /metrics endpoint.
func StartServer(ctx context.Context, logger zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	shutdownCtx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-ctx.Done():
		case <-shutdownCtx.Done():
		}
		shutdownTimeout, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer timeoutCancel()
		if err := srv.Shutdown(shutdownTimeout); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: graceful shutdown failed")
		}
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics: server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: server stopped")
		}
		cancel()
	}()
}

// ObserveNetworkRequest records the duration and status of an outbound call.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// IncInteraction counts one recorded interaction event.
func IncInteraction(interactionType string) {
	InteractionsTotal.WithLabelValues(interactionType).Inc()
}

// IncPreferenceUpdate counts one preference update.
func IncPreferenceUpdate(origin string) {
	PreferenceUpdatesTotal.WithLabelValues(origin).Inc()
}
