package metrics_config

import (
	"errors"
	"net/http"
	"time"

	"github.com/dominant-strategies/eth-light-client/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// enabled only gates the HTTP exporter. Metrics are always created and
// registered so that callers never deal with nil collectors.
var enabled = false

func EnableMetrics() {
	enabled = true
}

func MetricsEnabled() bool {
	return enabled
}

func NewCounterVec(name string, help string, labels ...string) *prometheus.CounterVec {
	counterVec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: name,
		Help: help,
	}, labels)
	prometheus.MustRegister(counterVec)
	return counterVec
}

func NewGauge(name string, help string) prometheus.Gauge {
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: name,
		Help: help,
	})
	prometheus.MustRegister(gauge)
	return gauge
}

// NewHistogram registers a histogram with the given buckets, the prometheus
// default buckets if none are given.
func NewHistogram(name string, help string, buckets ...float64) prometheus.Histogram {
	opts := prometheus.HistogramOpts{
		Name: name,
		Help: help,
	}
	if len(buckets) > 0 {
		opts.Buckets = buckets
	}
	histogram := prometheus.NewHistogram(opts)
	prometheus.MustRegister(histogram)
	return histogram
}

// Handler serves every registered metric, including the Go runtime and
// process collectors of the default registry.
func Handler() http.Handler {
	return promhttp.InstrumentMetricHandler(prometheus.DefaultRegisterer, promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{}))
}

// StartMetricsServer exposes the metrics on addr under /metrics. It returns
// nil if metrics are disabled.
func StartMetricsServer(addr string, logger log.Logger) *http.Server {
	// Short circuit if the metrics system is disabled
	if !enabled {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.WithField("addr", addr).Info("Starting metrics server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithField("err", err).Error("Metrics server failed")
		}
	}()
	return server
}
