package inspect

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/scrollkit-dev/scrollkit/pkg/prop"
)

// MetricsConfig configures the engine metrics collector.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "scrollkit").
	Namespace string

	// Subsystem is the metrics subsystem (default: "prop").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Lock, when set, is held around every scrape. Hosts that share a
	// manager across goroutines pass the same lock they serialize
	// manager calls with.
	Lock sync.Locker
}

// MetricsOption configures the engine metrics collector.
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

// WithLock sets the lock held around every scrape.
func WithLock(l sync.Locker) MetricsOption {
	return func(c *MetricsConfig) {
		c.Lock = l
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "scrollkit",
		Subsystem: "prop",
	}
}

// Collector exposes a manager's counters and per-property versions as
// Prometheus metrics:
//
//   - scrollkit_prop_propagation_passes_total
//   - scrollkit_prop_recomputes_total
//   - scrollkit_prop_reuses_total
//   - scrollkit_prop_writes_total
//   - scrollkit_prop_version_bumps_total
//   - scrollkit_prop_version{property="..."}
//
// The collector reads the manager at scrape time; it holds no state of
// its own.
type Collector struct {
	m    *prop.Manager
	lock sync.Locker

	passes     *prometheus.Desc
	recomputes *prometheus.Desc
	reuses     *prometheus.Desc
	writes     *prometheus.Desc
	bumps      *prometheus.Desc
	version    *prometheus.Desc
}

// NewCollector builds a collector for the manager. The manager's
// single-writer rule applies to scrapes too: pass WithLock when other
// goroutines touch the manager.
func NewCollector(m *prop.Manager, opts ...MetricsOption) *Collector {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	name := func(n string) string {
		return prometheus.BuildFQName(config.Namespace, config.Subsystem, n)
	}
	return &Collector{
		m:    m,
		lock: config.Lock,
		passes: prometheus.NewDesc(name("propagation_passes_total"),
			"Propagation passes triggered by external changes.",
			nil, config.ConstLabels),
		recomputes: prometheus.NewDesc(name("recomputes_total"),
			"Reader executions, construction probe included.",
			nil, config.ConstLabels),
		reuses: prometheus.NewDesc(name("reuses_total"),
			"Reads satisfied by a reuse predicate.",
			nil, config.ConstLabels),
		writes: prometheus.NewDesc(name("writes_total"),
			"Stores of a changed value.",
			nil, config.ConstLabels),
		bumps: prometheus.NewDesc(name("version_bumps_total"),
			"Explicit version bumps without a value change.",
			nil, config.ConstLabels),
		version: prometheus.NewDesc(name("version"),
			"Current version counter per property.",
			[]string{"property"}, config.ConstLabels),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.passes
	ch <- c.recomputes
	ch <- c.reuses
	ch <- c.writes
	ch <- c.bumps
	ch <- c.version
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c.lock != nil {
		c.lock.Lock()
		defer c.lock.Unlock()
	}

	stats := c.m.Stats()
	ch <- prometheus.MustNewConstMetric(c.passes, prometheus.CounterValue, float64(stats.Passes))
	ch <- prometheus.MustNewConstMetric(c.recomputes, prometheus.CounterValue, float64(stats.Recomputes))
	ch <- prometheus.MustNewConstMetric(c.reuses, prometheus.CounterValue, float64(stats.Reuses))
	ch <- prometheus.MustNewConstMetric(c.writes, prometheus.CounterValue, float64(stats.Writes))
	ch <- prometheus.MustNewConstMetric(c.bumps, prometheus.CounterValue, float64(stats.Bumps))

	for _, name := range c.m.Names() {
		ver, err := c.m.Version(name)
		if err != nil {
			continue
		}
		ch <- prometheus.MustNewConstMetric(c.version, prometheus.GaugeValue, float64(ver), name)
	}
}
