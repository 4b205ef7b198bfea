package menucache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "menu_cache"

// Metrics counts cache traffic of the service. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	hits          *prometheus.CounterVec
	misses        *prometheus.CounterVec
	invalidations prometheus.Counter
	errors        *prometheus.CounterVec
}

// NewMetrics registers the service counters on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		hits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "hits_total",
				Help:      "Cache reads answered from the cache, by entity kind.",
			},
			[]string{"kind"},
		),
		misses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "misses_total",
				Help:      "Cache reads that fell through to the store, by entity kind.",
			},
			[]string{"kind"},
		),
		invalidations: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "invalidations_total",
				Help:      "Cache keys dropped after successful writes.",
			},
		),
		errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "errors_total",
				Help:      "Cache operations that failed, by operation.",
			},
			[]string{"op"},
		),
	}
}

func (m *Metrics) hit(kind string) {
	if m == nil {
		return
	}
	m.hits.WithLabelValues(kind).Inc()
}

func (m *Metrics) miss(kind string) {
	if m == nil {
		return
	}
	m.misses.WithLabelValues(kind).Inc()
}

func (m *Metrics) invalidated() {
	if m == nil {
		return
	}
	m.invalidations.Inc()
}

func (m *Metrics) failed(op string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(op).Inc()
}
