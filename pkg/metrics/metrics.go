// Package metrics provides performance tracking and observability for Prefab
// using Prometheus metrics. It offers collectors for pool activity including
// acquire/release throughput, pool growth, occupancy, and integrity
// violations.
//
// # Basic Usage
//
//	// Record an acquire served from the idle queue
//	metrics.Acquires.WithLabelValues("bullet", "reuse").Inc()
//
//	// Track acquire latency
//	start := time.Now()
//	inst, err := registry.Acquire("bullet", placement)
//	metrics.AcquireLatency.WithLabelValues("bullet").
//	    Observe(float64(time.Since(start).Nanoseconds()))
//
// Most callers should use a Collector bound to a registry instead of the raw
// package-level vectors.
//
// # Metric Types
//
// Counter: Monotonically increasing values (e.g., total acquires)
// Gauge: Values that can go up or down (e.g., idle instances)
// Histogram: Distribution of values (e.g., acquire latency percentiles)
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Acquires tracks the total number of acquire calls served.
	// Labels: pool_id, mode (reuse when served from the idle queue,
	// growth when a new instance had to be constructed)
	Acquires = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prefab_pool_acquires_total",
			Help: "Total number of instances acquired",
		},
		[]string{"pool_id", "mode"},
	)

	// Releases tracks the total number of successful release calls.
	// Labels: pool_id
	Releases = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prefab_pool_releases_total",
			Help: "Total number of instances released back to the idle queue",
		},
		[]string{"pool_id"},
	)

	// Constructed tracks the total number of instances built by templates,
	// both during eager pre-population and on pool growth.
	Constructed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prefab_pool_constructed_total",
			Help: "Total number of instances constructed via templates",
		},
		[]string{"pool_id"},
	)

	// Destroyed tracks instances destroyed on clear or orphan recovery.
	Destroyed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prefab_pool_destroyed_total",
			Help: "Total number of instances destroyed",
		},
		[]string{"pool_id"},
	)

	// IntegrityViolations tracks rejected caller bugs.
	// Labels: kind (double_release, unmanaged_instance)
	IntegrityViolations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prefab_pool_integrity_violations_total",
			Help: "Total number of rejected integrity violations",
		},
		[]string{"kind"},
	)

	// IdleInstances tracks the current idle queue depth per pool.
	IdleInstances = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "prefab_pool_idle_instances",
			Help: "Current number of idle instances",
		},
		[]string{"pool_id"},
	)

	// IssuedInstances tracks instances currently lent to callers per pool.
	IssuedInstances = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "prefab_pool_issued_instances",
			Help: "Current number of issued instances",
		},
		[]string{"pool_id"},
	)

	// AcquireLatency tracks the distribution of acquire latencies in
	// nanoseconds. The buckets are optimized for sub-millisecond tracking
	// since acquire is a synchronous in-memory operation.
	AcquireLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "prefab_pool_acquire_latency_nanoseconds",
			Help: "Acquire latency in nanoseconds",
			Buckets: []float64{
				100,    // 100ns - idle queue hit
				1000,   // 1μs - hook + placement
				10000,  // 10μs - growth with cheap template
				100000, // 100μs - growth with expensive template
				1e6,    // 1ms
				1e7,    // 10ms
			},
		},
		[]string{"pool_id"},
	)
)

// Collector provides a centralized metrics recording interface for one pool
// registry. It wraps the package-level Prometheus vectors with convenience
// methods so the registry hot path stays free of label plumbing.
type Collector struct {
	name string
}

// NewCollector creates a new metrics collector. The name parameter identifies
// the owning registry; pool identifiers are carried as labels on the
// individual metrics.
func NewCollector(name string) *Collector {
	return &Collector{name: name}
}

// Name returns the owning registry's name.
func (c *Collector) Name() string {
	return c.name
}

// ObserveAcquire records a served acquire and its latency.
func (c *Collector) ObserveAcquire(poolID string, reused bool, elapsed time.Duration) {
	mode := "growth"
	if reused {
		mode = "reuse"
	}
	Acquires.WithLabelValues(poolID, mode).Inc()
	AcquireLatency.WithLabelValues(poolID).Observe(float64(elapsed.Nanoseconds()))
}

// ObserveRelease records a successful release.
func (c *Collector) ObserveRelease(poolID string) {
	Releases.WithLabelValues(poolID).Inc()
}

// ObserveConstructed records template constructions.
func (c *Collector) ObserveConstructed(poolID string, count int) {
	Constructed.WithLabelValues(poolID).Add(float64(count))
}

// ObserveDestroyed records destroyed instances.
func (c *Collector) ObserveDestroyed(poolID string, count int) {
	Destroyed.WithLabelValues(poolID).Add(float64(count))
}

// ObserveViolation records a rejected integrity violation.
func (c *Collector) ObserveViolation(kind string) {
	IntegrityViolations.WithLabelValues(kind).Inc()
}

// SetOccupancy updates the idle/issued gauges for a pool.
func (c *Collector) SetOccupancy(poolID string, idle, issued int) {
	IdleInstances.WithLabelValues(poolID).Set(float64(idle))
	IssuedInstances.WithLabelValues(poolID).Set(float64(issued))
}

// ForgetPool removes the gauges for a cleared pool so dashboards do not show
// stale occupancy.
func (c *Collector) ForgetPool(poolID string) {
	IdleInstances.DeleteLabelValues(poolID)
	IssuedInstances.DeleteLabelValues(poolID)
}

// Timer provides a simple timing mechanism for measuring operation durations.
// It captures the start time on creation and calculates elapsed time on stop.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately.
// The name parameter is for identification in logs or metrics.
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Stop returns the elapsed time since the timer was created.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
