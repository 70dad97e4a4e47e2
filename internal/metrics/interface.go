// Copyright (c) The lazyfile Authors.
// Licensed under the MIT License.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics defines an interface to collect HTTP backend metrics.
type Metrics interface {
	// RecordRequest records the time it takes to process a request.
	RecordRequest(method, handler string, duration float64)

	// RecordProbe records the outcome and duration of a range capability probe.
	RecordProbe(host, outcome string, duration float64)

	// RecordFetch records the time it takes to fetch bytes from an origin.
	RecordFetch(host, op string, duration float64, count int64)

	// RecordImport records the outcome of an import decision.
	RecordImport(outcome string)
}

// Global is the global metrics collector.
var Global Metrics = NewPromMetrics(prometheus.DefaultRegisterer, "lazyfile")
