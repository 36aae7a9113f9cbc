package order

import "github.com/prometheus/client_golang/prometheus"

// orderMetrics 下单协议的 Prometheus 指标。
// reg 为 nil 时注册到一个局部 Registry，指标仍被记录但不对外暴露。
type orderMetrics struct {
	created  prometheus.Counter
	rejected *prometheus.CounterVec
}

func newOrderMetrics(reg prometheus.Registerer) *orderMetrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &orderMetrics{
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "seckill",
			Subsystem: "order",
			Name:      "created_total",
			Help:      "Orders successfully persisted",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seckill",
			Subsystem: "order",
			Name:      "rejected_total",
			Help:      "Purchase attempts rejected, partitioned by reason",
		}, []string{"reason"}),
	}
	reg.MustRegister(m.created, m.rejected)
	return m
}
