package dlock

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wenqiu/seckill/clog"
)

// Options 组件级选项
type Options struct {
	Logger     clog.Logger
	Registerer prometheus.Registerer
}

// Option 组件级选项函数
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

// lockOptions Lock/TryLock 操作的运行时选项
type lockOptions struct {
	TTL time.Duration
}

// LockOption Lock/TryLock 操作的选项函数
type LockOption func(*lockOptions)

// WithTTL 覆盖配置中的 DefaultTTL
//
// 使用示例:
//
//	locker.TryLock(ctx, "key", dlock.WithTTL(5*time.Second))
func WithTTL(d time.Duration) LockOption {
	return func(o *lockOptions) {
		o.TTL = d
	}
}
