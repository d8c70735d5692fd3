// Package metrics exposes Prometheus collectors for stream acquisition and
// catalog synchronization.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Label values for acquisition results.
const (
	ResultSuccess         = "success"
	ResultFallbackSuccess = "fallback_success"
	ResultFailure         = "failure"
)

var (
	// ProbeOutcomes counts stream probe classifications by class
	// (ok, soft_error, hard_error, inconclusive).
	ProbeOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tvdeckd_probe_outcomes_total",
		Help: "Stream probe outcomes by classification.",
	}, []string{"class"})

	// AcquisitionResults counts stream acquisition results.
	AcquisitionResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tvdeckd_acquisition_results_total",
		Help: "Stream acquisition results (success, fallback_success, failure).",
	}, []string{"result"})

	// FallbackAttempts counts individual fallback URL load attempts.
	FallbackAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tvdeckd_fallback_attempts_total",
		Help: "Fallback URL load attempts after a failed primary load.",
	})

	// SyncTasks counts per-source sync task completions.
	SyncTasks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tvdeckd_sync_tasks_total",
		Help: "Per-source sync task completions by kind and result.",
	}, []string{"kind", "result"})

	// SyncBatches counts scheduled sync batches by kind.
	SyncBatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tvdeckd_sync_batches_total",
		Help: "Sync batches dispatched by kind.",
	}, []string{"kind"})

	// SyncRuns counts orchestrator sessions.
	SyncRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tvdeckd_sync_runs_total",
		Help: "Sync orchestrator sessions started.",
	})

	// SyncTasksInFlight tracks currently running sync tasks.
	SyncTasksInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tvdeckd_sync_tasks_in_flight",
		Help: "Sync tasks currently in flight.",
	})
)

// Handler returns the HTTP handler serving the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
