// Package metrics provides a metrics collector that stores metrics in Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// promMetrics is a metrics collector that stores metrics in Prometheus.
type promMetrics struct {
	requestDuration *prometheus.HistogramVec
	probeDuration   *prometheus.HistogramVec
	fetchSpeed      *prometheus.HistogramVec
	imports         *prometheus.CounterVec
}

var _ Metrics = &promMetrics{}

// RecordRequest records the duration of a request for a specific method and handler.
func (m *promMetrics) RecordRequest(method string, handler string, duration float64) {
	m.requestDuration.WithLabelValues(method, handler).Observe(duration)
}

// RecordProbe records the duration of a range capability probe against a host.
func (m *promMetrics) RecordProbe(host string, outcome string, duration float64) {
	m.probeDuration.WithLabelValues(host, outcome).Observe(duration)
}

// RecordFetch records the response time and byte count of an origin fetch.
// It calculates the speed (count/duration) and updates the Prometheus metric.
func (m *promMetrics) RecordFetch(host string, op string, duration float64, count int64) {
	bps := float64(count) / duration
	m.fetchSpeed.WithLabelValues(host, op).Observe(bps / float64(1024*1024))
}

// RecordImport records the outcome of one import decision.
func (m *promMetrics) RecordImport(outcome string) {
	m.imports.WithLabelValues(outcome).Inc()
}

// NewPromMetrics creates a new instance of promMetrics.
func NewPromMetrics(reg prometheus.Registerer, prefix string) *promMetrics {

	requestDurationHist := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    prefix + "_request_duration_seconds",
		Help:    "Duration of requests in seconds.",
		Buckets: prometheus.LinearBuckets(0.005, 0.025, 200),
	}, []string{"method", "handler"})
	reg.MustRegister(requestDurationHist)

	probeDurationHist := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    prefix + "_probe_duration_seconds",
		Help:    "Duration of range capability probes in seconds.",
		Buckets: prometheus.LinearBuckets(0.001, 0.002, 200),
	}, []string{"host", "outcome"})
	reg.MustRegister(probeDurationHist)

	fetchSpeedHist := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    prefix + "_fetch_speed_mib_per_second",
		Help:    "Speed of origin fetches in MiB per second.",
		Buckets: prometheus.LinearBuckets(1, 15, 200),
	}, []string{"host", "op"})
	reg.MustRegister(fetchSpeedHist)

	importsCounter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: prefix + "_imports_total",
		Help: "Import decisions by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(importsCounter)

	return &promMetrics{
		requestDuration: requestDurationHist,
		probeDuration:   probeDurationHist,
		fetchSpeed:      fetchSpeedHist,
		imports:         importsCounter,
	}
}
