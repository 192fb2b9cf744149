package infra

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector exports a Metrics instance to Prometheus. The atomic
// counters stay the source of truth; this adapter reads a snapshot on
// every scrape.
type MetricsCollector struct {
	metrics *Metrics

	bookFrames     *prometheus.Desc
	controlFrames  *prometheus.Desc
	unknownFrames  *prometheus.Desc
	reconnects     *prometheus.Desc
	syntheticTicks *prometheus.Desc
	simulations    *prometheus.Desc
	errorsTotal    *prometheus.Desc
	liveFeed       *prometheus.Desc
}

// NewMetricsCollector wraps the given metrics for scraping
func NewMetricsCollector(m *Metrics) *MetricsCollector {
	ns := "depth"
	return &MetricsCollector{
		metrics:        m,
		bookFrames:     prometheus.NewDesc(ns+"_book_frames_total", "Frames that produced a normalized snapshot", nil, nil),
		controlFrames:  prometheus.NewDesc(ns+"_control_frames_total", "Ignored ack/pong/heartbeat frames", nil, nil),
		unknownFrames:  prometheus.NewDesc(ns+"_unknown_frames_total", "Dropped unrecognized-shape frames", nil, nil),
		reconnects:     prometheus.NewDesc(ns+"_reconnects_total", "Scheduled reconnect attempts", nil, nil),
		syntheticTicks: prometheus.NewDesc(ns+"_synthetic_ticks_total", "Generated fallback snapshots", nil, nil),
		simulations:    prometheus.NewDesc(ns+"_simulations_total", "Execution simulations run", nil, nil),
		errorsTotal:    prometheus.NewDesc(ns+"_errors_total", "Errors recorded", nil, nil),
		liveFeed:       prometheus.NewDesc(ns+"_live_feed", "1 when a live transport is up", nil, nil),
	}
}

func (c *MetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.bookFrames
	ch <- c.controlFrames
	ch <- c.unknownFrames
	ch <- c.reconnects
	ch <- c.syntheticTicks
	ch <- c.simulations
	ch <- c.errorsTotal
	ch <- c.liveFeed
}

func (c *MetricsCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.metrics.Snapshot()
	ch <- prometheus.MustNewConstMetric(c.bookFrames, prometheus.CounterValue, float64(s.BookFrames))
	ch <- prometheus.MustNewConstMetric(c.controlFrames, prometheus.CounterValue, float64(s.ControlFrames))
	ch <- prometheus.MustNewConstMetric(c.unknownFrames, prometheus.CounterValue, float64(s.UnknownFrames))
	ch <- prometheus.MustNewConstMetric(c.reconnects, prometheus.CounterValue, float64(s.Reconnects))
	ch <- prometheus.MustNewConstMetric(c.syntheticTicks, prometheus.CounterValue, float64(s.SyntheticTicks))
	ch <- prometheus.MustNewConstMetric(c.simulations, prometheus.CounterValue, float64(s.Simulations))
	ch <- prometheus.MustNewConstMetric(c.errorsTotal, prometheus.CounterValue, float64(s.ErrorsTotal))
	live := 0.0
	if s.LiveFeed {
		live = 1.0
	}
	ch <- prometheus.MustNewConstMetric(c.liveFeed, prometheus.GaugeValue, live)
}

// MetricsHandler returns an HTTP handler serving /metrics for the
// global metrics instance.
func MetricsHandler() http.Handler {
	registry := prometheus.NewRegistry()
	registry.MustRegister(NewMetricsCollector(GlobalMetrics))
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
