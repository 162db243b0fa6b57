// Package metrics records download outcomes as Prometheus metrics.
//
// A Recorder owns its registry, so several recorders (one per test, say)
// never collide. Metrics are exposed either through Handler for a long
// running watch process or written with WriteTextfile for the node
// exporter's textfile collector after a one-shot cron run.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"

	"github.com/handiism/chmirad/internal/download"
)

// Recorder tracks download outcomes.
type Recorder struct {
	registry *prometheus.Registry
	mu       sync.Mutex

	downloadsTotal   *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
	bytesTotal       *prometheus.CounterVec
	lastSuccess      *prometheus.GaugeVec
	rangeDuration    *prometheus.HistogramVec
	rangesInProgress prometheus.Gauge
}

// NewRecorder creates a Recorder with all metrics registered.
func NewRecorder() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.downloadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chmirad_downloads_total",
		Help: "Instants processed, by product and outcome (fetched, skipped, failed).",
	}, []string{"product", "outcome"})

	r.errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chmirad_download_errors_total",
		Help: "Failed instants by product and reason.",
	}, []string{"product", "reason"})

	r.bytesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chmirad_downloaded_bytes_total",
		Help: "Bytes written to the cache, by product.",
	}, []string{"product"})

	r.lastSuccess = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "chmirad_last_success_timestamp_seconds",
		Help: "Unix time of the newest instant fetched or found in the cache, by product.",
	}, []string{"product"})

	r.rangeDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chmirad_range_duration_seconds",
		Help:    "Wall time of DownloadRange calls, by product.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"product"})

	r.rangesInProgress = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chmirad_ranges_in_progress",
		Help: "Ranges currently being downloaded.",
	})

	r.registry.MustRegister(
		r.downloadsTotal,
		r.errorsTotal,
		r.bytesTotal,
		r.lastSuccess,
		r.rangeDuration,
		r.rangesInProgress,
	)
	return r
}

// Registry returns the registry holding the recorder's metrics.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observe accounts one outcome.
func (r *Recorder) Observe(o download.Outcome) {
	r.downloadsTotal.WithLabelValues(o.Product, o.Kind.String()).Inc()

	switch o.Kind {
	case download.Fetched:
		r.bytesTotal.WithLabelValues(o.Product).Add(float64(o.Size))
		r.markSuccess(o)
	case download.Skipped:
		r.markSuccess(o)
	case download.Failed:
		r.errorsTotal.WithLabelValues(o.Product, Reason(o.Err)).Inc()
	}
}

// ObserveAll accounts a batch of outcomes.
func (r *Recorder) ObserveAll(outcomes []download.Outcome) {
	for _, o := range outcomes {
		r.Observe(o)
	}
}

// StartRange marks a range as running and returns a function that records
// its duration when called.
func (r *Recorder) StartRange(product string) func() {
	start := time.Now()
	r.rangesInProgress.Inc()
	return func() {
		r.rangesInProgress.Dec()
		r.rangeDuration.WithLabelValues(product).Observe(time.Since(start).Seconds())
	}
}

// WriteTextfile writes all metrics to path in the text exposition format.
// The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

// Handler serves the recorder's metrics over HTTP.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Reason classifies a per-instant error for the reason label.
func Reason(err error) string {
	var (
		statusErr    *download.StatusError
		transportErr *download.TransportError
		fsErr        *download.FilesystemError
	)
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		if errors.As(err, &transportErr) {
			return "transport"
		}
		return "cancelled"
	case errors.As(err, &statusErr):
		return "status_" + strconv.Itoa(statusErr.Code)
	case errors.As(err, &transportErr):
		return "transport"
	case errors.As(err, &fsErr):
		return "filesystem"
	default:
		return "other"
	}
}

// markSuccess moves the product's last-success gauge forward, never back:
// outcomes of a concurrent range arrive out of time order.
func (r *Recorder) markSuccess(o download.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g := r.lastSuccess.WithLabelValues(o.Product)
	ts := float64(o.Time.Unix())
	if ts > gaugeValue(g) {
		g.Set(ts)
	}
}

func gaugeValue(g prometheus.Gauge) float64 {
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		return 0
	}
	return m.GetGauge().GetValue()
}
