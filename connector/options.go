package connector

import "github.com/wenqiu/seckill/clog"

type options struct {
	logger clog.Logger
}

// Option 配置连接器的选项
type Option func(*options)

// WithLogger 设置日志记录器
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func (o *options) applyDefaults() {
	if o.logger == nil {
		o.logger = clog.Default()
	}
}
