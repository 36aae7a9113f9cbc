// Package clog 提供基于 slog 的结构化日志组件。
//
// 特性：
//   - 抽象接口，不暴露底层实现（slog）
//   - 支持 json / console 两种输出格式
//   - 采用函数式选项模式，与其他组件保持一致
//
// 基本使用：
//
//	logger, _ := clog.New(&clog.Config{
//	    Level:  "info",
//	    Format: "console",
//	    Output: "stdout",
//	})
//	logger.Info("order created", clog.Int64("order_id", id))
//
// 组件内部通过 With 派生带固定字段的子 Logger：
//
//	cacheLogger := logger.With(clog.String("component", "cache"))
package clog

import (
	"fmt"
	"sync"
)

// New 创建一个新的 Logger 实例。
// config 为 nil 时使用默认配置。
func New(config *Config) (Logger, error) {
	if config == nil {
		config = NewDevDefaultConfig("seckill")
	}
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid log config: %w", err)
	}
	return newLogger(config)
}

var (
	defaultOnce   sync.Once
	defaultLogger Logger
)

// Default 返回进程级默认 Logger。
// 未显式配置时，使用开发环境默认配置（console 格式，info 级别）。
func Default() Logger {
	defaultOnce.Do(func() {
		logger, err := New(nil)
		if err != nil {
			logger = Discard()
		}
		defaultLogger = logger
	})
	return defaultLogger
}
