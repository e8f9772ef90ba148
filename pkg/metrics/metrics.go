// Package metrics provides Prometheus metrics for download runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/glorpus-work/blockfetch/pkg/model"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "blockfetch"

// Recorder holds the download metrics on its own registry, so several
// recorders can coexist in one process (and in tests).
type Recorder struct {
	registry *prometheus.Registry

	TasksTotal    *prometheus.CounterVec
	BytesTotal    prometheus.Counter
	TaskDuration  prometheus.Histogram
	TasksInFlight prometheus.Gauge
}

// New creates a Recorder with its metrics registered under namespace.
func New(namespace string) *Recorder {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		TasksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tasks_total",
				Help:      "Download tasks that reached a terminal state",
			},
			[]string{"state"},
		),
		BytesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bytes_downloaded_total",
				Help:      "Bytes written to destination files",
			},
		),
		TaskDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "task_duration_seconds",
				Help:      "Wall time of a single download task",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
			},
		),
		TasksInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "tasks_in_flight",
				Help:      "Download tasks currently transferring",
			},
		),
	}
}

// TaskStarted records a task leaving the queue.
func (r *Recorder) TaskStarted() {
	r.TasksInFlight.Inc()
}

// TaskFinished records a task reaching a terminal state.
func (r *Recorder) TaskFinished(state model.TaskState, bytes int64, elapsed time.Duration) {
	r.TasksInFlight.Dec()
	r.TasksTotal.WithLabelValues(state.String()).Inc()
	r.BytesTotal.Add(float64(bytes))
	r.TaskDuration.Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteToTextfile writes every metric in the text exposition format, for
// pickup by a node exporter textfile collector.
func (r *Recorder) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
