package db

import "github.com/wenqiu/seckill/clog"

// Option 配置 DB 实例的选项
type Option func(*options)

type options struct {
	logger     clog.Logger
	silentMode bool
}

// WithLogger 注入日志记录器
func WithLogger(l clog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l.With(clog.String("component", "db"))
		}
	}
}

// WithSilentMode 启用静默模式，禁用 SQL 日志输出
// 适用于测试环境或不需要 SQL 日志的场景
func WithSilentMode() Option {
	return func(o *options) {
		o.silentMode = true
	}
}

func applyOptions(opts ...Option) *options {
	opt := &options{}
	for _, o := range opts {
		o(opt)
	}
	if opt.logger == nil {
		opt.logger = clog.Default().With(clog.String("component", "db"))
	}
	return opt
}
