// Package metrics records crawler runs as Prometheus metrics.
//
// A Recorder owns its own registry so that one-shot crawls can dump it to a
// node_exporter textfile and the long running server can expose it on
// /metrics. All methods are safe on a nil *Recorder.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "latin_events"

// Run status label values.
const (
	StatusSuccess = "success"
	StatusNoData  = "no_data"
	StatusError   = "error"
)

// Recorder collects crawl metrics on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	fetched     *prometheus.CounterVec
	fetchErrors *prometheus.CounterVec
	published   prometheus.Gauge
	duplicates  prometheus.Gauge
	invalid     prometheus.Gauge
	runDuration prometheus.Summary
	runs        *prometheus.CounterVec
	lastSuccess prometheus.Gauge
}

// New creates a Recorder. With process set, Go runtime and process
// collectors are registered as well.
func New(process bool) *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.fetched = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetched_total",
		Help:      "Records returned by each source",
	}, []string{"source"})
	r.fetchErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_errors_total",
		Help:      "Failed fetches by source",
	}, []string{"source"})
	r.published = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "published",
		Help:      "Records in the last published feed",
	})
	r.duplicates = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "duplicates",
		Help:      "Records dropped as duplicates in the last run",
	})
	r.invalid = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "invalid",
		Help:      "Records dropped for a missing name or date in the last run",
	})
	r.runDuration = prometheus.NewSummary(prometheus.SummaryOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Time spent on a full crawl run",
	})
	r.runs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Crawl runs by outcome",
	}, []string{"status"})
	r.lastSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix timestamp of the last published feed",
	})

	r.registry.MustRegister(
		r.fetched, r.fetchErrors,
		r.published, r.duplicates, r.invalid,
		r.runDuration, r.runs, r.lastSuccess,
	)
	if process {
		r.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Fetched adds n events fetched from source.
func (r *Recorder) Fetched(source string, n int) {
	if r == nil {
		return
	}
	r.fetched.WithLabelValues(source).Add(float64(n))
}

// FetchFailed counts a failed fetch of source.
func (r *Recorder) FetchFailed(source string) {
	if r == nil {
		return
	}
	r.fetchErrors.WithLabelValues(source).Inc()
}

// Aggregated records the outcome of deduplication.
func (r *Recorder) Aggregated(output, duplicates, invalid int) {
	if r == nil {
		return
	}
	r.duplicates.Set(float64(duplicates))
	r.invalid.Set(float64(invalid))
	r.published.Set(float64(output))
}

// RunFinished records the duration and status of a run. A successful run
// also moves the last-success timestamp.
func (r *Recorder) RunFinished(status string, d time.Duration, at time.Time) {
	if r == nil {
		return
	}
	r.runDuration.Observe(d.Seconds())
	r.runs.WithLabelValues(status).Inc()
	if status == StatusSuccess {
		r.lastSuccess.Set(float64(at.Unix()))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// WriteTextfile dumps the registry for the node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
