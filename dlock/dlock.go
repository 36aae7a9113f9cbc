// Package dlock 提供基于 Redis 的分布式互斥锁。
//
// 加锁通过 SET NX 原子写入持有者令牌实现，解锁通过 Lua 脚本
// 在服务端原子地比较令牌后删除，避免误删其他持有者的锁。
// TTL 是持有者崩溃后的兜底手段，不做自动续期：
// 调用方应保证临界区执行时间远小于 TTL。
//
// 基本使用：
//
//	locker, _ := dlock.New(redisConn, &dlock.Config{
//	    Prefix:     "lock:",
//	    DefaultTTL: 10 * time.Second,
//	}, dlock.WithLogger(logger))
//
//	ok, err := locker.TryLock(ctx, "order:1001")
//	if err != nil || !ok {
//	    return // 未抢到锁，调用方决定重试策略
//	}
//	defer locker.Unlock(ctx, "order:1001")
package dlock

import (
	"context"
	"time"

	"github.com/wenqiu/seckill/connector"
)

// Locker 分布式锁接口。
type Locker interface {
	// TryLock 尝试加锁，立即返回。
	// 返回 true 表示获得锁；false 表示锁已被持有（包括本进程内重复加锁）。
	TryLock(ctx context.Context, key string, opts ...LockOption) (bool, error)

	// Lock 阻塞式加锁，按 RetryInterval 轮询直到成功或 ctx 取消。
	Lock(ctx context.Context, key string, opts ...LockOption) error

	// Unlock 释放锁。仅当存储中的令牌与本持有者一致时删除；
	// 锁已过期或被他人持有时返回 ErrOwnershipLost，不影响新持有者。
	Unlock(ctx context.Context, key string) error
}

// Config 组件静态配置
type Config struct {
	// Prefix 锁 Key 的全局前缀，例如 "lock:"
	Prefix string `json:"prefix" yaml:"prefix" mapstructure:"prefix"`

	// DefaultTTL 默认锁超时时间 (默认: 10s)
	DefaultTTL time.Duration `json:"default_ttl" yaml:"default_ttl" mapstructure:"default_ttl"`

	// RetryInterval 阻塞式加锁的重试间隔 (默认: 100ms)
	RetryInterval time.Duration `json:"retry_interval" yaml:"retry_interval" mapstructure:"retry_interval"`
}

func (c *Config) setDefaults() {
	if c.DefaultTTL <= 0 {
		c.DefaultTTL = 10 * time.Second
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = 100 * time.Millisecond
	}
}

// New 创建 Redis 分布式锁。
func New(conn connector.RedisConnector, cfg *Config, opts ...Option) (Locker, error) {
	if conn == nil {
		return nil, ErrConnectorNil
	}
	if cfg == nil {
		return nil, ErrConfigNil
	}
	cfg.setDefaults()

	opt := applyOptions(opts...)
	return newRedisLocker(conn, cfg, opt)
}
