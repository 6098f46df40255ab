// Package metrics exposes Prometheus instrumentation for a buddyd device:
// per-request-kind counters split by outcome, and a gauge tracking bytes
// currently allocated. The allocator core stays free of metrics concerns —
// the request counters are recorded by the carriers after Dispatch
// returns, and the gauges are set by internal/stats from Device.Stats
// snapshots on its reporting schedule.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome buckets the error taxonomy of spec §7 into request outcomes. The
// carriers record only Success and Failure: Dispatch reports every failure
// as ReturnVal -1, so a cross-boundary WRITE/READ is counted as Failure.
// CrossBoundary is defined but not recorded by any carrier.
type Outcome string

const (
	Success       Outcome = "success"
	Failure       Outcome = "failure"
	CrossBoundary Outcome = "cross_boundary"
)

var (
	Requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "buddyd",
		Name:      "requests_total",
		Help:      "Total requests handled by the request surface, by kind and outcome.",
	}, []string{"kind", "outcome"})

	BytesAllocated = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "buddyd",
		Name:      "bytes_allocated",
		Help:      "Bytes currently allocated in the device's pool.",
	})

	BytesFree = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "buddyd",
		Name:      "bytes_free",
		Help:      "Bytes currently free in the device's pool.",
	})

	LargestFreeBlock = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "buddyd",
		Name:      "largest_free_block_bytes",
		Help:      "Size in bytes of the largest single free block.",
	})
)

// ObserveRequest records one request's outcome.
func ObserveRequest(kind string, outcome Outcome) {
	Requests.WithLabelValues(kind, string(outcome)).Inc()
}

// ObserveStats updates the pool utilization gauges from a device.Stats
// snapshot. Takes plain ints rather than importing pkg/device, so this
// package has no dependency on the core beyond the numbers themselves.
func ObserveStats(allocated, free, largestFree int) {
	BytesAllocated.Set(float64(allocated))
	BytesFree.Set(float64(free))
	LargestFreeBlock.Set(float64(largestFree))
}
