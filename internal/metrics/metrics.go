// Package metrics provides a small, backend-agnostic abstraction for recording
// what a bomstrip run did.
//
// It exposes a narrow Backend interface (counters and timings) behind a
// global, pluggable backend that defaults to a no-op implementation, so
// recording is always safe even when nothing is configured. Concrete systems
// live in subpackages (prompush, datadog).
package metrics

import "time"

// Metric names shared by every backend.
const (
	FilesTotal         = "bomstrip_files_total"
	RunTotal           = "bomstrip_run_total"
	RunDurationSeconds = "bomstrip_run_duration_seconds"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordFile counts one file outcome (e.g. "removed", "no_bom", "not_found").
func RecordFile(job, outcome string) {
	backend.IncCounter(FilesTotal, 1, Labels{
		"job":     job,
		"outcome": outcome,
	})
}

// RecordRun counts a finished run and observes its duration.
// A run with at least one failed file is reported with status "partial".
func RecordRun(job string, failed int, d time.Duration) {
	status := "success"
	if failed > 0 {
		status = "partial"
	}

	lbls := Labels{
		"job":    job,
		"status": status,
	}

	backend.IncCounter(RunTotal, 1, lbls)
	backend.ObserveHistogram(RunDurationSeconds, d.Seconds(), lbls)
}
