// Package metrics exposes Prometheus collectors for the validation engine.
//
// Metrics:
//   - <ns>_runs_total: Validation runs by grid and outcome
//   - <ns>_run_duration_seconds: Duration of evaluated runs
//   - <ns>_messages_total: Messages produced by grid and key kind
//   - <ns>_stale_results_total: Results discarded because a newer run started
//   - <ns>_filter_requests_total: Filter evaluations by grid and kind
//   - <ns>_paste_cells_total: Cells coerced by bulk paste
//   - <ns>_active_runs: Runs currently holding a limiter slot
//   - <ns>_schema_reloads_total: Schema reloads by outcome
//   - <ns>_grids_registered: Grids currently in the registry
package metrics

import (
	"net/http"

	"github.com/JonMunkholm/gridcheck/internal/config"
	"github.com/JonMunkholm/gridcheck/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run outcomes.
const (
	OutcomeValid    = "valid"
	OutcomeInvalid  = "invalid"
	OutcomeClean    = "clean"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Collector holds every collector and the registry they are registered on.
type Collector struct {
	registry *prometheus.Registry

	runsTotal       *prometheus.CounterVec
	runDuration     *prometheus.HistogramVec
	messagesTotal   *prometheus.CounterVec
	staleTotal      *prometheus.CounterVec
	filtersTotal    *prometheus.CounterVec
	pasteCells      *prometheus.CounterVec
	activeRuns      prometheus.Gauge
	schemaReloads   *prometheus.CounterVec
	gridsRegistered prometheus.Gauge
}

// NewCollector creates and registers the collectors. A nil registry gets a
// fresh one.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	ns := cfg.Namespace

	c := &Collector{
		registry: registry,
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "runs_total",
				Help:      "Total number of validation runs",
			},
			[]string{"grid", "outcome"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "run_duration_seconds",
				Help:      "Duration of evaluated validation runs in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10), // 100µs to 26s
			},
			[]string{"grid"},
		),
		messagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "messages_total",
				Help:      "Total number of validation messages produced",
			},
			[]string{"grid", "kind"},
		),
		staleTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "stale_results_total",
				Help:      "Results discarded because a newer run was requested",
			},
			[]string{"grid"},
		),
		filtersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "filter_requests_total",
				Help:      "Total number of filter evaluations",
			},
			[]string{"grid", "kind"},
		),
		pasteCells: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "paste_cells_total",
				Help:      "Total number of pasted cells coerced",
			},
			[]string{"grid"},
		),
		activeRuns: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: ns,
				Name:      "active_runs",
				Help:      "Validation runs currently executing",
			},
		),
		schemaReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "schema_reloads_total",
				Help:      "Grid schema reloads by outcome",
			},
			[]string{"outcome"},
		),
		gridsRegistered: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: ns,
				Name:      "grids_registered",
				Help:      "Number of grids in the registry",
			},
		),
	}

	registry.MustRegister(
		c.runsTotal,
		c.runDuration,
		c.messagesTotal,
		c.staleTotal,
		c.filtersTotal,
		c.pasteCells,
		c.activeRuns,
		c.schemaReloads,
		c.gridsRegistered,
	)

	return c
}

// Registry returns the registry the collectors live on.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns an HTTP handler for the Prometheus metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}

// ObserveRun records a finished run.
func (c *Collector) ObserveRun(grid string, res core.RunResult, evaluated bool) {
	if !evaluated {
		c.runsTotal.WithLabelValues(grid, OutcomeClean).Inc()
		return
	}

	outcome := OutcomeValid
	if res.IsError {
		outcome = OutcomeInvalid
	}
	c.runsTotal.WithLabelValues(grid, outcome).Inc()
	c.runDuration.WithLabelValues(grid).Observe(res.Duration.Seconds())

	for key := range res.Messages {
		c.messagesTotal.WithLabelValues(grid, string(core.KindOf(key))).Inc()
	}
}

// ObserveRejected records a run turned away by the limiter.
func (c *Collector) ObserveRejected(grid string) {
	c.runsTotal.WithLabelValues(grid, OutcomeRejected).Inc()
}

// ObserveFailed records a run whose task failed.
func (c *Collector) ObserveFailed(grid string) {
	c.runsTotal.WithLabelValues(grid, OutcomeFailed).Inc()
}

// ObserveStale records a result discarded for a newer generation.
func (c *Collector) ObserveStale(grid string) {
	c.staleTotal.WithLabelValues(grid).Inc()
}

// ObserveFilter records one filter evaluation.
func (c *Collector) ObserveFilter(grid, kind string) {
	c.filtersTotal.WithLabelValues(grid, kind).Inc()
}

// ObservePaste records coerced paste cells.
func (c *Collector) ObservePaste(grid string, cells int) {
	c.pasteCells.WithLabelValues(grid).Add(float64(cells))
}

// RunStarted and RunFinished track in-flight runs.
func (c *Collector) RunStarted()  { c.activeRuns.Inc() }
func (c *Collector) RunFinished() { c.activeRuns.Dec() }

// ObserveSchemaReload records a schema reload and the resulting grid count.
func (c *Collector) ObserveSchemaReload(err error, grids int) {
	if err != nil {
		c.schemaReloads.WithLabelValues(OutcomeFailed).Inc()
		return
	}
	c.schemaReloads.WithLabelValues("ok").Inc()
	c.gridsRegistered.Set(float64(grids))
}
