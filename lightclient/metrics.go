package lightclient

import (
	"github.com/dominant-strategies/eth-light-client/metrics_config"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	headerMetrics  *prometheus.CounterVec
	receiptMetrics *prometheus.CounterVec
	tipGauge       prometheus.Gauge
	powTimer       prometheus.Histogram
)

func init() {
	registerMetrics()
}

func registerMetrics() {
	headerMetrics = metrics_config.NewCounterVec("lightclient_headers_total", "Submitted headers by result", "result")
	receiptMetrics = metrics_config.NewCounterVec("lightclient_receipts_total", "Receipt verifications by result", "result")
	tipGauge = metrics_config.NewGauge("lightclient_chain_tip_number", "Block number of the light chain tip")
	powTimer = metrics_config.NewHistogram("lightclient_pow_seconds", "Time spent recomputing ethash mix digests",
		0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30)
}

func resultLabel(err error) string {
	if err != nil {
		return "rejected"
	}
	return "accepted"
}
