package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector registers and records the service's Prometheus metrics.
type Collector struct {
	httpRequests   *prometheus.CounterVec
	httpLatency    prometheus.Histogram
	chatRequests   prometheus.Counter
	chatFailures   prometheus.Counter
	importedEvents prometheus.Counter
	importedRows   prometheus.Counter
	skippedBlocks  prometheus.Counter
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bizmate_http_requests_total",
			Help: "HTTP responses by status code",
		}, []string{"status_code"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bizmate_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		chatRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bizmate_chat_requests_total",
			Help: "Chat messages sent to the LLM backend",
		}),
		chatFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bizmate_chat_failures_total",
			Help: "Chat requests that ended in an LLM or tool error",
		}),
		importedEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bizmate_calendar_imported_events_total",
			Help: "Calendar events imported from ICS files",
		}),
		importedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bizmate_employee_imported_rows_total",
			Help: "Employee rows imported from CSV files",
		}),
		skippedBlocks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bizmate_import_skipped_total",
			Help: "Malformed import blocks or rows skipped",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.chatRequests,
		c.chatFailures,
		c.importedEvents,
		c.importedRows,
		c.skippedBlocks,
	)

	return c
}

func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpRequests.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

func (c *Collector) RecordHTTPLatency(d time.Duration) {
	c.httpLatency.Observe(d.Seconds())
}

func (c *Collector) RecordChatRequest()         { c.chatRequests.Inc() }
func (c *Collector) RecordChatFailure()         { c.chatFailures.Inc() }
func (c *Collector) RecordImportedEvents(n int) { c.importedEvents.Add(float64(n)) }
func (c *Collector) RecordImportedRows(n int)   { c.importedRows.Add(float64(n)) }
func (c *Collector) RecordSkipped(n int)        { c.skippedBlocks.Add(float64(n)) }

// Handler returns the /metrics endpoint for the given registry.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// statusRecorder captures the response code written by downstream handlers.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records status code and latency for every request.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		c.RecordHTTPStatus(rec.status)
		c.RecordHTTPLatency(time.Since(start))
	})
}
