// Package metrics exposes Prometheus collectors for the download server.
// Every collector lives on a private registry so tests and multiple servers
// in one process never collide.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "ytweb"

// Metrics holds the server's collectors.
type Metrics struct {
	registry *prometheus.Registry

	// downloadsStarted counts accepted downloads by format
	downloadsStarted *prometheus.CounterVec
	// downloadsFinished counts downloads by terminal status
	downloadsFinished *prometheus.CounterVec
	// inProgress is the number of downloads running right now
	inProgress prometheus.Gauge
	// fileSize tracks stored file sizes
	fileSize prometheus.Histogram
	// httpRequests counts requests by route and status code
	httpRequests *prometheus.CounterVec
	// httpDuration tracks request latency by route
	httpDuration *prometheus.HistogramVec
}

// New creates and registers the collectors under namespace.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	m := &Metrics{registry: prometheus.NewRegistry()}

	m.downloadsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_downloads_started_total", namespace),
			Help: "Downloads accepted, by format",
		},
		[]string{"format"},
	)

	m.downloadsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_downloads_finished_total", namespace),
			Help: "Downloads that reached a terminal status",
		},
		[]string{"status"},
	)

	m.inProgress = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_downloads_in_progress", namespace),
			Help: "Downloads currently running",
		},
	)

	// Buckets: 1MB, 10MB, 100MB, 1GB, 10GB
	m.fileSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    fmt.Sprintf("%s_file_size_bytes", namespace),
			Help:    "Sizes of stored files",
			Buckets: prometheus.ExponentialBuckets(1048576, 10, 5),
		},
	)

	m.httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_http_requests_total", namespace),
			Help: "HTTP requests by route and status code",
		},
		[]string{"route", "code"},
	)

	m.httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    fmt.Sprintf("%s_http_request_duration_seconds", namespace),
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	m.registry.MustRegister(
		m.downloadsStarted,
		m.downloadsFinished,
		m.inProgress,
		m.fileSize,
		m.httpRequests,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// DownloadStarted records an accepted download.
func (m *Metrics) DownloadStarted(format string) {
	m.downloadsStarted.WithLabelValues(format).Inc()
}

// DownloadRunning adjusts the in-progress gauge by delta.
func (m *Metrics) DownloadRunning(delta int) {
	m.inProgress.Add(float64(delta))
}

// DownloadFinished records a terminal status.
func (m *Metrics) DownloadFinished(status string) {
	m.downloadsFinished.WithLabelValues(status).Inc()
}

// FileStored records the size of a stored file.
func (m *Metrics) FileStored(size int64) {
	m.fileSize.Observe(float64(size))
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(route string, code int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
