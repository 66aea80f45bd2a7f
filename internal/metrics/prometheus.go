package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gnsslog/internal/parser"
)

// Metrics contains all Prometheus metrics for the gnsslog service.
// Each instance owns its registry so several can coexist in tests.
type Metrics struct {
	Registry *prometheus.Registry

	// Parse task metrics
	TasksStarted   prometheus.Counter
	TasksCompleted prometheus.Counter
	TasksFailed    prometheus.Counter
	TasksInFlight  prometheus.Gauge
	ParseDuration  prometheus.Histogram

	// Recording content metrics
	BytesParsed   prometheus.Counter
	BytesSkipped  prometheus.Counter
	EpochsEmitted prometheus.Counter
	Messages      *prometheus.CounterVec

	// HTTP API metrics
	HTTPRequests *prometheus.CounterVec
}

// New creates and registers all metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,

		TasksStarted: f.NewCounter(prometheus.CounterOpts{
			Name: "gnsslog_tasks_started_total",
			Help: "Total number of parse tasks started",
		}),
		TasksCompleted: f.NewCounter(prometheus.CounterOpts{
			Name: "gnsslog_tasks_completed_total",
			Help: "Total number of parse tasks that produced a result",
		}),
		TasksFailed: f.NewCounter(prometheus.CounterOpts{
			Name: "gnsslog_tasks_failed_total",
			Help: "Total number of parse tasks that could not read their input",
		}),
		TasksInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "gnsslog_tasks_in_flight",
			Help: "Current number of running parse tasks",
		}),
		ParseDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "gnsslog_parse_duration_seconds",
			Help:    "Time spent parsing one recording",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),

		BytesParsed: f.NewCounter(prometheus.CounterOpts{
			Name: "gnsslog_bytes_parsed_total",
			Help: "Total recording bytes scanned",
		}),
		BytesSkipped: f.NewCounter(prometheus.CounterOpts{
			Name: "gnsslog_bytes_skipped_total",
			Help: "Total recording bytes skipped while resynchronizing",
		}),
		EpochsEmitted: f.NewCounter(prometheus.CounterOpts{
			Name: "gnsslog_epochs_total",
			Help: "Total epochs reconstructed",
		}),
		Messages: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gnsslog_messages_total",
			Help: "Decoded messages by protocol",
		}, []string{"protocol"}),

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gnsslog_http_requests_total",
			Help: "HTTP API requests by endpoint and status code",
		}, []string{"endpoint", "code"}),
	}
}

// ObserveResult records one finished parse. A nil receiver is a no-op.
func (m *Metrics) ObserveResult(res parser.Result, d time.Duration) {
	if m == nil {
		return
	}
	m.TasksCompleted.Inc()
	m.ParseDuration.Observe(d.Seconds())
	m.BytesParsed.Add(float64(res.Stats.Bytes))
	m.BytesSkipped.Add(float64(res.Stats.SkippedBytes))
	m.EpochsEmitted.Add(float64(len(res.Epochs)))
	m.Messages.WithLabelValues("nmea").Add(float64(res.Stats.NMEASentences))
	m.Messages.WithLabelValues("ubx").Add(float64(res.Stats.UBXFrames))
	m.Messages.WithLabelValues("sbf").Add(float64(res.Stats.SBFBlocks))
}

func (m *Metrics) TaskStarted() {
	if m == nil {
		return
	}
	m.TasksStarted.Inc()
	m.TasksInFlight.Inc()
}

func (m *Metrics) TaskDone(failed bool) {
	if m == nil {
		return
	}
	m.TasksInFlight.Dec()
	if failed {
		m.TasksFailed.Inc()
	}
}

func (m *Metrics) HTTPRequest(endpoint string, code int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(endpoint, strconv.Itoa(code)).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
