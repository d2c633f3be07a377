package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run statuses.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Element actions.
const (
	ActionCreated = "created"
	ActionReused  = "reused"
)

var (
	// Run metrics
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "product_sync_runs_total",
			Help: "Total number of synchronization runs",
		},
		[]string{"configuration", "direction", "status"},
	)

	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "product_sync_run_duration_seconds",
			Help:    "Duration of synchronization runs",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
		[]string{"configuration", "direction"},
	)

	// Mapping metrics
	ElementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "product_sync_elements_total",
			Help: "Total number of elements mapped",
		},
		[]string{"configuration", "direction", "element", "action"},
	)

	ParametersSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "product_sync_parameters_skipped_total",
			Help: "Total number of parameters skipped by soft failures",
		},
		[]string{"configuration", "reason"},
	)

	// Store metrics
	Correspondences = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "product_sync_correspondences",
			Help: "Number of correspondence records after the last run",
		},
		[]string{"configuration"},
	)

	OrphansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "product_sync_orphans_total",
			Help: "Total number of orphaned correspondences detected",
		},
		[]string{"configuration"},
	)
)

// Recorder records metrics for one mapping configuration.
type Recorder struct {
	configuration string
}

// NewRecorder creates a recorder labeled with the configuration name.
func NewRecorder(configuration string) *Recorder {
	return &Recorder{configuration: configuration}
}

// RecordRun records a finished run.
func (r *Recorder) RecordRun(direction, status string, duration time.Duration) {
	RunsTotal.WithLabelValues(r.configuration, direction, status).Inc()
	RunDuration.WithLabelValues(r.configuration, direction).Observe(duration.Seconds())
}

// RecordElement records one mapped element.
func (r *Recorder) RecordElement(direction, element, action string) {
	ElementsTotal.WithLabelValues(r.configuration, direction, element, action).Inc()
}

// RecordSkip records a skipped parameter.
func (r *Recorder) RecordSkip(reason string) {
	ParametersSkipped.WithLabelValues(r.configuration, reason).Inc()
}

// RecordOrphans records detected orphans.
func (r *Recorder) RecordOrphans(n int) {
	OrphansTotal.WithLabelValues(r.configuration).Add(float64(n))
}

// SetCorrespondences records the size of the correspondence store.
func (r *Recorder) SetCorrespondences(n int) {
	Correspondences.WithLabelValues(r.configuration).Set(float64(n))
}

// WriteTextfile writes every registered metric to path in the text
// exposition format.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}

	return nil
}

// Timer is a helper for measuring duration.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
