// Package testkit 提供测试用的公共依赖构造函数。
// 所有资源的生命周期由 t.Cleanup 管理。
package testkit

import (
	"github.com/google/uuid"

	"github.com/wenqiu/seckill/clog"
)

// NewLogger 返回一个用于测试的 logger
// 输出到开发环境格式，适合本地调试
func NewLogger() clog.Logger {
	logger, err := clog.New(clog.NewDevDefaultConfig("seckill-test"))
	if err != nil {
		return clog.Discard()
	}
	return logger
}

// NewID 生成一个短随机标识，用于隔离测试间的 key 空间
func NewID() string {
	return uuid.NewString()[:8]
}
