package dlock

import "github.com/prometheus/client_golang/prometheus"

// lockMetrics 锁操作的 Prometheus 指标。
// reg 为 nil 时注册到一个局部 Registry，指标仍被记录但不对外暴露。
type lockMetrics struct {
	acquired  prometheus.Counter
	contended prometheus.Counter
	released  prometheus.Counter
	lost      prometheus.Counter
}

func newLockMetrics(reg prometheus.Registerer) *lockMetrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &lockMetrics{
		acquired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "seckill",
			Subsystem: "dlock",
			Name:      "acquired_total",
			Help:      "Locks successfully acquired",
		}),
		contended: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "seckill",
			Subsystem: "dlock",
			Name:      "contended_total",
			Help:      "Lock acquisitions rejected because the lock was held",
		}),
		released: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "seckill",
			Subsystem: "dlock",
			Name:      "released_total",
			Help:      "Locks released by their holder",
		}),
		lost: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "seckill",
			Subsystem: "dlock",
			Name:      "ownership_lost_total",
			Help:      "Unlock attempts that found the lock expired or re-acquired",
		}),
	}
	reg.MustRegister(m.acquired, m.contended, m.released, m.lost)
	return m
}
