package cache

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wenqiu/seckill/clog"
)

// Options 组件选项
type Options struct {
	Logger     clog.Logger
	Registerer prometheus.Registerer
}

// Option 选项函数
type Option func(*Options)

// WithLogger 设置日志记录器
func WithLogger(logger clog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithMetrics 设置 Prometheus 注册器，启用指标上报
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *Options) {
		o.Registerer = reg
	}
}

func applyOptions(opts ...Option) *Options {
	opt := &Options{}
	for _, o := range opts {
		o(opt)
	}
	if opt.Logger == nil {
		opt.Logger = clog.Default()
	}
	return opt
}
