package mimeresolver

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Method labels for Metrics.LookupCountByMethodAndOutcome.
const (
	MethodFilename = "filename"
	MethodData     = "data"
	MethodFile     = "file"
	MethodPath     = "path"
)

// Outcome labels for Metrics.LookupCountByMethodAndOutcome: which stage
// produced the answer.
const (
	OutcomeName     = "name"
	OutcomeMagic    = "magic"
	OutcomeXattr    = "xattr"
	OutcomeInode    = "inode"
	OutcomeFallback = "fallback"
	OutcomeUnknown  = "unknown"
)

const metricsSubsystem = "resolver"

// type Metrics {{{

// Metrics holds the Prometheus collectors updated by a Resolver.
type Metrics struct {
	LookupCountByMethodAndOutcome *prometheus.CounterVec
	RebuildCount                  prometheus.Counter
	LoadErrorCount                prometheus.Counter
	GlobRules                     prometheus.Gauge
	MagicRules                    prometheus.Gauge
	ReadSize                      prometheus.Histogram
}

// NewMetrics builds unregistered collectors under the given namespace.
func NewMetrics(namespace string) *Metrics {
	m := new(Metrics)

	m.LookupCountByMethodAndOutcome = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: metricsSubsystem,
			Name:      "lookups_total",
			Help:      "the number of classification requests",
		},
		[]string{"method", "outcome"},
	)

	m.RebuildCount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: metricsSubsystem,
			Name:      "rebuilds_total",
			Help:      "the number of times the rule tables were (re)loaded",
		},
	)

	m.LoadErrorCount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: metricsSubsystem,
			Name:      "load_errors_total",
			Help:      "the number of rule files that failed to load",
		},
	)

	m.GlobRules = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: metricsSubsystem,
			Name:      "glob_rules",
			Help:      "the number of glob rules currently loaded",
		},
	)

	m.MagicRules = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: metricsSubsystem,
			Name:      "magic_rules",
			Help:      "the number of magic rules currently loaded",
		},
	)

	m.ReadSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: metricsSubsystem,
			Name:      "read_bytes",
			Help:      "the number of bytes read from a file for content sniffing",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 8),
		},
	)

	for _, method := range []string{MethodFilename, MethodData, MethodFile, MethodPath} {
		for _, outcome := range []string{OutcomeName, OutcomeMagic, OutcomeFallback, OutcomeUnknown} {
			m.LookupCountByMethodAndOutcome.WithLabelValues(method, outcome)
		}
	}
	m.LookupCountByMethodAndOutcome.WithLabelValues(MethodPath, OutcomeXattr)
	m.LookupCountByMethodAndOutcome.WithLabelValues(MethodPath, OutcomeInode)

	return m
}

// All returns every collector, for registration.
func (m *Metrics) All() []prometheus.Collector {
	return []prometheus.Collector{
		m.LookupCountByMethodAndOutcome,
		m.RebuildCount,
		m.LoadErrorCount,
		m.GlobRules,
		m.MagicRules,
		m.ReadSize,
	}
}

// MustRegister registers every collector with reg.
func (m *Metrics) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(m.All()...)
}

func (m *Metrics) observeLookup(method string, outcome string) {
	if m == nil {
		return
	}
	m.LookupCountByMethodAndOutcome.WithLabelValues(method, outcome).Inc()
}

func (m *Metrics) observeRead(n int) {
	if m == nil {
		return
	}
	m.ReadSize.Observe(float64(n))
}

func (m *Metrics) observeRebuild(st *state, numErrors int) {
	if m == nil {
		return
	}
	m.RebuildCount.Inc()
	m.LoadErrorCount.Add(float64(numErrors))
	m.GlobRules.Set(float64(st.globs.Len()))
	m.MagicRules.Set(float64(st.magic.Len()))
}

// }}}
