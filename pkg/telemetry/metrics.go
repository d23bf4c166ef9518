package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "loom").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// DurationBuckets are the histogram buckets for pump duration.
	// Default: prometheus.DefBuckets
	DurationBuckets []float64

	// RoundBuckets are the histogram buckets for pump rounds.
	RoundBuckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithDurationBuckets sets the pump duration histogram buckets.
func WithDurationBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.DurationBuckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace:       "loom",
		Subsystem:       "",
		ConstLabels:     nil,
		DurationBuckets: prometheus.DefBuckets,
		RoundBuckets:    []float64{1, 2, 3, 5, 8, 13, 21},
		Registry:        prometheus.DefaultRegisterer,
	}
}

// PumpObservation is one pump's worth of numbers for Metrics.
type PumpObservation struct {
	Duration time.Duration

	// Flags is the number of store watchers that fired.
	Flags int

	// Applied and Dropped count processed messages.
	Applied int
	Dropped int

	// Rounds is the number of drain rounds until quiescence.
	Rounds int

	// Renders is the number of component renders performed.
	Renders int

	// Nodes is the mounted node count after the pump.
	Nodes int
}

// Metrics holds the Prometheus metrics for a Loom engine.
//
// Metrics collected:
//   - loom_pumps_total: Counter of pump invocations
//   - loom_pump_duration_seconds: Histogram of pump wall time
//   - loom_pump_rounds: Histogram of drain rounds per pump
//   - loom_renders_total: Counter of component renders
//   - loom_watcher_flags_total: Counter of store watchers fired
//   - loom_messages_applied_total: Counter of state messages applied
//   - loom_messages_dropped_total: Counter of messages to unmounted targets
//   - loom_mounted_nodes: Gauge of live tree nodes
//   - loom_active_roots: Gauge of mounted roots
type Metrics struct {
	pumpsTotal      prometheus.Counter
	pumpDuration    prometheus.Histogram
	pumpRounds      prometheus.Histogram
	rendersTotal    prometheus.Counter
	flagsTotal      prometheus.Counter
	messagesApplied prometheus.Counter
	messagesDropped prometheus.Counter
	mountedNodes    prometheus.Gauge
	activeRoots     prometheus.Gauge
}

// NewMetrics registers the engine metrics and returns a recorder.
//
// Example:
//
//	m := telemetry.NewMetrics(
//	    telemetry.WithNamespace("myapp"),
//	)
//	engine := loom.New(loom.Config{Metrics: m})
//
//	// Expose metrics endpoint
//	http.Handle("/metrics", promhttp.Handler())
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		pumpsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "pumps_total",
			Help:        "Total number of engine pumps",
			ConstLabels: config.ConstLabels,
		}),

		pumpDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "pump_duration_seconds",
			Help:        "Pump wall time in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.DurationBuckets,
		}),

		pumpRounds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "pump_rounds",
			Help:        "Drain rounds per pump until quiescence",
			ConstLabels: config.ConstLabels,
			Buckets:     config.RoundBuckets,
		}),

		rendersTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total number of component renders",
			ConstLabels: config.ConstLabels,
		}),

		flagsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "watcher_flags_total",
			Help:        "Total number of store watchers fired",
			ConstLabels: config.ConstLabels,
		}),

		messagesApplied: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "messages_applied_total",
			Help:        "Total number of state messages applied",
			ConstLabels: config.ConstLabels,
		}),

		messagesDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "messages_dropped_total",
			Help:        "Total number of messages addressed to unmounted targets",
			ConstLabels: config.ConstLabels,
		}),

		mountedNodes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "mounted_nodes",
			Help:        "Number of live nodes in the mounted tree",
			ConstLabels: config.ConstLabels,
		}),

		activeRoots: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_roots",
			Help:        "Number of mounted roots",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// ObservePump records one pump. Safe to call on a nil receiver.
func (m *Metrics) ObservePump(o PumpObservation) {
	if m == nil {
		return
	}
	m.pumpsTotal.Inc()
	m.pumpDuration.Observe(o.Duration.Seconds())
	m.pumpRounds.Observe(float64(o.Rounds))
	m.rendersTotal.Add(float64(o.Renders))
	m.flagsTotal.Add(float64(o.Flags))
	m.messagesApplied.Add(float64(o.Applied))
	m.messagesDropped.Add(float64(o.Dropped))
	m.mountedNodes.Set(float64(o.Nodes))
}

// RootMounted records a root mount. Safe to call on a nil receiver.
func (m *Metrics) RootMounted(nodes int) {
	if m == nil {
		return
	}
	m.activeRoots.Inc()
	m.mountedNodes.Set(float64(nodes))
}

// RootUnmounted records a root unmount. Safe to call on a nil receiver.
func (m *Metrics) RootUnmounted(nodes int) {
	if m == nil {
		return
	}
	m.activeRoots.Dec()
	m.mountedNodes.Set(float64(nodes))
}
