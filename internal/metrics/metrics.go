// Package metrics records packing run statistics in a dedicated Prometheus
// registry. The CLI is short-lived, so metrics are written to a
// node_exporter textfile instead of being served.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/piwi3910/labelnest/internal/model"
)

const namespace = "labelnest"

// Run outcomes used as the "outcome" label.
const (
	OutcomeOK         = "ok"
	OutcomeValidation = "validation_error"
	OutcomeInvariant  = "invariant_error"
	OutcomeError      = "error"
)

// Recorder owns the collectors for one process.
type Recorder struct {
	registry *prometheus.Registry

	Runs           *prometheus.CounterVec
	Duration       *prometheus.HistogramVec
	Pages          prometheus.Gauge
	Placed         prometheus.Gauge
	Efficiency     prometheus.Gauge
	PageEfficiency *prometheus.GaugeVec
	LastRun        prometheus.Gauge
}

// New creates a Recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "runs_total", Help: "Packing runs by heuristic and outcome."},
			[]string{"heuristic", "outcome"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pack_duration_seconds",
				Help:      "Time spent in the packer, in seconds.",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"heuristic"},
		),
		Pages: prometheus.NewGauge(
			prometheus.GaugeOpts{Namespace: namespace, Name: "pages", Help: "Sheets used by the last run."},
		),
		Placed: prometheus.NewGauge(
			prometheus.GaugeOpts{Namespace: namespace, Name: "items_placed", Help: "Copies placed by the last run."},
		),
		Efficiency: prometheus.NewGauge(
			prometheus.GaugeOpts{Namespace: namespace, Name: "efficiency_ratio", Help: "Overall used/usable area of the last run."},
		),
		PageEfficiency: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Namespace: namespace, Name: "page_efficiency_ratio", Help: "Used/usable area per page of the last run."},
			[]string{"page"},
		),
		LastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{Namespace: namespace, Name: "last_run_timestamp_seconds", Help: "Unix time of the last completed run."},
		),
	}

	r.registry.MustRegister(r.Runs, r.Duration, r.Pages, r.Placed, r.Efficiency, r.PageEfficiency, r.LastRun)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveRun records a successful run.
func (r *Recorder) ObserveRun(heuristic string, result model.PackingResult, elapsed time.Duration) {
	r.Runs.WithLabelValues(heuristic, OutcomeOK).Inc()
	r.Duration.WithLabelValues(heuristic).Observe(elapsed.Seconds())

	pages := result.PageCount()
	r.Pages.Set(float64(pages))
	r.Placed.Set(float64(result.TotalItemsPlaced()))
	r.Efficiency.Set(result.OverallEfficiency())

	r.PageEfficiency.Reset()
	for i := 0; i < pages; i++ {
		r.PageEfficiency.WithLabelValues(strconv.Itoa(i + 1)).Set(result.PageEfficiency(i))
	}
	r.LastRun.SetToCurrentTime()
}

// ObserveFailure records a run that ended with the given outcome.
func (r *Recorder) ObserveFailure(heuristic, outcome string) {
	r.Runs.WithLabelValues(heuristic, outcome).Inc()
}

// WriteTextfile writes every metric in the text exposition format. The
// file is written atomically, as node_exporter expects.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
