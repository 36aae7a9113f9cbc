package cache

import "github.com/prometheus/client_golang/prometheus"

// cacheMetrics 缓存读路径的 Prometheus 指标。
// reg 为 nil 时注册到一个局部 Registry，指标仍被记录但不对外暴露。
type cacheMetrics struct {
	hits         prometheus.Counter
	misses       prometheus.Counter
	negativeHits prometheus.Counter
	staleServed  prometheus.Counter
	fallbacks    prometheus.Counter
	rebuilds     prometheus.Counter
	rebuildFails prometheus.Counter
}

func newCacheMetrics(reg prometheus.Registerer) *cacheMetrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "seckill",
			Subsystem: "cache",
			Name:      name,
			Help:      help,
		})
	}
	m := &cacheMetrics{
		hits:         counter("hits_total", "Fresh cache hits"),
		misses:       counter("misses_total", "Cache misses"),
		negativeHits: counter("negative_hits_total", "Hits on the empty-value marker"),
		staleServed:  counter("stale_served_total", "Logically expired values served"),
		fallbacks:    counter("fallback_total", "Reads that reached the durable store"),
		rebuilds:     counter("rebuilds_total", "Background rebuild jobs submitted"),
		rebuildFails: counter("rebuild_failures_total", "Background rebuild jobs that failed"),
	}
	reg.MustRegister(m.hits, m.misses, m.negativeHits, m.staleServed,
		m.fallbacks, m.rebuilds, m.rebuildFails)
	return m
}
