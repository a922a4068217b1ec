package metrics

import "github.com/prometheus/client_golang/prometheus"

// Eviction reasons reported by the page cache.
const (
	EvictionExpired  = "expired"
	EvictionCapacity = "capacity"
)

// PageCacheMetrics tracks lookups and evictions of rendered viewer pages.
type PageCacheMetrics struct {
	lookups   *prometheus.CounterVec
	evictions *prometheus.CounterVec
	entries   prometheus.Gauge
}

// NewPageCacheMetrics registers the page cache metrics on the provided registerer.
func NewPageCacheMetrics(reg prometheus.Registerer) *PageCacheMetrics {
	if reg == nil {
		return &PageCacheMetrics{}
	}
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "page_cache",
		Name:      "lookups_total",
		Help:      "Cached page lookups by result.",
	}, []string{"result"})
	evictions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "page_cache",
		Name:      "evictions_total",
		Help:      "Cached pages removed by reason.",
	}, []string{"reason"})
	entries := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "page_cache",
		Name:      "entries",
		Help:      "Pages currently held by the in-memory cache.",
	})
	reg.MustRegister(lookups, evictions, entries)
	return &PageCacheMetrics{lookups: lookups, evictions: evictions, entries: entries}
}

func (m *PageCacheMetrics) IncHit() {
	if m == nil || m.lookups == nil {
		return
	}
	m.lookups.WithLabelValues("hit").Inc()
}

func (m *PageCacheMetrics) IncMiss() {
	if m == nil || m.lookups == nil {
		return
	}
	m.lookups.WithLabelValues("miss").Inc()
}

// AddEvictions counts n pages removed for reason.
func (m *PageCacheMetrics) AddEvictions(reason string, n int) {
	if m == nil || m.evictions == nil || n <= 0 {
		return
	}
	m.evictions.WithLabelValues(normalizeLabel(reason)).Add(float64(n))
}

func (m *PageCacheMetrics) SetEntries(n int) {
	if m == nil || m.entries == nil {
		return
	}
	m.entries.Set(float64(n))
}
