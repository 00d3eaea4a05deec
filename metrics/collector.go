// Package metrics exports interner statistics to Prometheus.
package metrics

import (
	"github.com/on-the-ground/hashcons/intern"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hashcons"

// StatsSource is implemented by *intern.Interner of any value type.
type StatsSource interface {
	Stats() intern.Stats
}

type metric struct {
	desc      *prometheus.Desc
	valueType prometheus.ValueType
	value     func(intern.Stats) float64
}

// Collector reads a StatsSource on every scrape.
type Collector struct {
	src     StatsSource
	metrics []metric
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector builds a collector whose series carry the constant label
// interner=name.
func NewCollector(name string, src StatsSource) *Collector {
	labels := prometheus.Labels{"interner": name}
	desc := func(metricName, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "interner", metricName), help, nil, labels)
	}
	counter := func(metricName, help string, value func(intern.Stats) float64) metric {
		return metric{desc: desc(metricName, help), valueType: prometheus.CounterValue, value: value}
	}
	gauge := func(metricName, help string, value func(intern.Stats) float64) metric {
		return metric{desc: desc(metricName, help), valueType: prometheus.GaugeValue, value: value}
	}

	return &Collector{
		src: src,
		metrics: []metric{
			gauge("entries", "Number of live interned values.",
				func(s intern.Stats) float64 { return float64(s.Entries) }),
			gauge("arena_blocks", "Number of arena blocks held.",
				func(s intern.Stats) float64 { return float64(s.Blocks) }),
			counter("allocations_total", "Entries allocated.",
				func(s intern.Stats) float64 { return float64(s.Allocations) }),
			counter("hits_total", "Intern calls answered with an existing entry.",
				func(s intern.Stats) float64 { return float64(s.Hits) }),
			counter("misses_total", "Intern calls that published a new entry.",
				func(s intern.Stats) float64 { return float64(s.Misses) }),
			counter("waits_total", "Intern calls that joined an in-flight allocation.",
				func(s intern.Stats) float64 { return float64(s.Waits) }),
			counter("comparisons_total", "Equality checks performed while interning.",
				func(s intern.Stats) float64 { return float64(s.Comparisons) }),
			counter("reclaimed_total", "Entries reclaimed.",
				func(s intern.Stats) float64 { return float64(s.Reclaimed) }),
			counter("exhausted_total", "Intern calls that failed because the arena was full.",
				func(s intern.Stats) float64 { return float64(s.Exhausted) }),
		},
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.metrics {
		ch <- m.desc
	}
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.src.Stats()
	for _, m := range c.metrics {
		ch <- prometheus.MustNewConstMetric(m.desc, m.valueType, m.value(stats))
	}
}
