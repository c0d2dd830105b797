// Package metrics exposes Prometheus collectors for the watcher service.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	probesTotal          *prometheus.CounterVec
	probeDurationSeconds *prometheus.HistogramVec
	frontierCurrent      prometheus.Gauge
	notificationsTotal   prometheus.Counter
	catchupItems         prometheus.Histogram

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		probesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "itemwatch_probes_total",
				Help: "Total number of probe attempts, labeled by classification outcome.",
			},
			[]string{"outcome"},
		)

		probeDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "itemwatch_probe_duration_seconds",
				Help:    "Histogram of fetch+classify latencies, labeled by outcome.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15},
			},
			[]string{"outcome"},
		)

		frontierCurrent = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "itemwatch_frontier",
				Help: "Highest item ID currently confirmed to exist.",
			},
		)

		notificationsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "itemwatch_notifications_total",
				Help: "Total number of notification log lines emitted.",
			},
		)

		catchupItems = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "itemwatch_catchup_items",
				Help:    "Histogram of newly confirmed items drained per catch-up cycle.",
				Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
			},
		)
	})
}

// ObserveProbe records one probe attempt and its latency.
func ObserveProbe(outcome string, d time.Duration) {
	Init()
	probesTotal.WithLabelValues(outcome).Inc()
	probeDurationSeconds.WithLabelValues(outcome).Observe(d.Seconds())
}

// SetFrontier records the current confirmed frontier.
func SetFrontier(id uint64) {
	Init()
	frontierCurrent.Set(float64(id))
}

// IncNotification counts an emitted notification line.
func IncNotification() {
	Init()
	notificationsTotal.Inc()
}

// ObserveCatchup records how many items one catch-up cycle confirmed.
func ObserveCatchup(n int) {
	Init()
	catchupItems.Observe(float64(n))
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}
