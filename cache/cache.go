// Package cache 提供带穿透与击穿防护的旁路缓存（cache-aside）组件。
//
// 两种读策略：
//
//   - GetWithPassThrough：常规旁路读。未命中时回源数据库；
//     数据库也没有时写入短 TTL 的空值标记，阻断对同一个不存在 Key 的
//     反复回源（缓存穿透）。并发未命中通过 singleflight 合并，
//     同一个 Key 的一波并发请求只触发一次回源（缓存击穿）。
//
//   - GetWithLogicalExpire：逻辑过期读，面向预热过的热点数据。
//     缓存值内嵌逻辑过期时间，物理上不过期。逻辑过期后仍立即返回
//     旧值（stale-but-available），同时由抢到重建锁的请求向有界
//     协程池提交一个异步重建任务；未抢到锁的请求直接返回旧值，
//     绝不阻塞。Key 不存在时直接返回未命中，不回源。
//
// 读路径上的序列化失败与重建异常只记录日志，不向调用方传播：
// 返回旧值优于返回错误。
//
// 基本使用：
//
//	client, _ := cache.New(redisConn, &cache.Config{Prefix: "app:"},
//	    cache.WithLogger(logger))
//	defer client.Close()
//
//	voucher, err := cache.GetWithPassThrough(ctx, client, "voucher:", id,
//	    30*time.Minute, store.FindVoucher)
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/wenqiu/seckill/cache/serializer"
	"github.com/wenqiu/seckill/clog"
	"github.com/wenqiu/seckill/connector"
	"github.com/wenqiu/seckill/dlock"
	"github.com/wenqiu/seckill/xerrors"
)

// ErrNotFound 缓存与数据源中均不存在该 Key。
var ErrNotFound = xerrors.New("cache: not found")

// Config 缓存组件配置
type Config struct {
	// Prefix 全局 Key 前缀 (如 "seckill:")
	Prefix string `json:"prefix" yaml:"prefix" mapstructure:"prefix"`

	// Serializer 序列化器类型: "json" | "msgpack" (默认: "json")
	Serializer string `json:"serializer" yaml:"serializer" mapstructure:"serializer"`

	// NullTTL 空值标记的 TTL (默认: 30s)。
	// 短于正常数据的 TTL，数据补录后很快恢复可见。
	NullTTL time.Duration `json:"null_ttl" yaml:"null_ttl" mapstructure:"null_ttl"`

	// RebuildLockTTL 重建锁的 TTL (默认: 10s)
	RebuildLockTTL time.Duration `json:"rebuild_lock_ttl" yaml:"rebuild_lock_ttl" mapstructure:"rebuild_lock_ttl"`

	// RebuildWorkers 重建协程池大小 (默认: 10)，
	// 限制同时进行的缓存重建总量
	RebuildWorkers int `json:"rebuild_workers" yaml:"rebuild_workers" mapstructure:"rebuild_workers"`
}

func (c *Config) setDefaults() {
	if c.Serializer == "" {
		c.Serializer = "json"
	}
	if c.NullTTL <= 0 {
		c.NullTTL = 30 * time.Second
	}
	if c.RebuildLockTTL <= 0 {
		c.RebuildLockTTL = 10 * time.Second
	}
	if c.RebuildWorkers <= 0 {
		c.RebuildWorkers = 10
	}
}

// Client 旁路缓存客户端。并发安全。
type Client struct {
	client      *redis.Client
	serializer  serializer.Serializer
	cfg         *Config
	logger      clog.Logger
	metrics     *cacheMetrics
	rebuildLock dlock.Locker
	pool        *ants.Pool
	group       singleflight.Group
	now         func() time.Time
}

// New 创建缓存客户端。
// 重建协程池与重建锁由 Client 持有，Close 时释放协程池；
// Redis 连接归 Connector 所有，Close 不关闭连接。
func New(conn connector.RedisConnector, cfg *Config, opts ...Option) (*Client, error) {
	if conn == nil {
		return nil, xerrors.New("cache: connector is nil")
	}
	if cfg == nil {
		return nil, xerrors.New("cache: config is nil")
	}
	cfg.setDefaults()

	opt := applyOptions(opts...)

	s, err := serializer.New(cfg.Serializer)
	if err != nil {
		return nil, err
	}

	// 重建锁短 TTL，持有者崩溃后其他请求很快能再次触发重建
	rebuildLock, err := dlock.New(conn, &dlock.Config{
		Prefix:     cfg.Prefix + "rebuild:",
		DefaultTTL: cfg.RebuildLockTTL,
	}, dlock.WithLogger(opt.Logger))
	if err != nil {
		return nil, err
	}

	// 非阻塞提交：池满时 Submit 返回错误而不是让读请求排队
	pool, err := ants.NewPool(cfg.RebuildWorkers, ants.WithNonblocking(true))
	if err != nil {
		return nil, xerrors.Wrap(err, "cache: failed to create rebuild pool")
	}

	return &Client{
		client:      conn.GetClient(),
		serializer:  s,
		cfg:         cfg,
		logger:      opt.Logger.With(clog.String("component", "cache")),
		metrics:     newCacheMetrics(opt.Registerer),
		rebuildLock: rebuildLock,
		pool:        pool,
		now:         time.Now,
	}, nil
}

// Close 释放重建协程池。已提交的重建任务执行完毕后退出。
func (c *Client) Close() error {
	c.pool.Release()
	return nil
}

// Set 序列化并写入缓存。
func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := c.serializer.Marshal(value)
	if err != nil {
		return xerrors.Wrapf(err, "cache: marshal %s", key)
	}
	return c.client.Set(ctx, c.redisKey(key), data, ttl).Err()
}

// SetWithLogicalExpire 写入带逻辑过期时间的缓存值。
// 物理上不设置过期，旧值在重建完成前始终可读。
func (c *Client) SetWithLogicalExpire(ctx context.Context, key string, value any, ttl time.Duration) error {
	inner, err := c.serializer.Marshal(value)
	if err != nil {
		return xerrors.Wrapf(err, "cache: marshal %s", key)
	}
	payload, err := c.serializer.Marshal(&logicalEntry{
		ExpireAt: c.now().Add(ttl),
		Data:     inner,
	})
	if err != nil {
		return xerrors.Wrapf(err, "cache: marshal envelope %s", key)
	}
	return c.client.Set(ctx, c.redisKey(key), payload, 0).Err()
}

// Delete 删除缓存，用于写库后的失效。
func (c *Client) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.redisKey(key)).Err()
}

// RPush 将若干值序列化后追加到列表尾部。
func (c *Client) RPush(ctx context.Context, key string, values ...any) error {
	serialized := make([]any, len(values))
	for i, v := range values {
		data, err := c.serializer.Marshal(v)
		if err != nil {
			return xerrors.Wrapf(err, "cache: marshal list element %s", key)
		}
		serialized[i] = data
	}
	return c.client.RPush(ctx, c.redisKey(key), serialized...).Err()
}

// logicalEntry 逻辑过期封装，内层数据保持序列化形态，
// 避免反序列化时丢失具体类型。
type logicalEntry struct {
	ExpireAt time.Time `json:"expire_at" msgpack:"expire_at"`
	Data     []byte    `json:"data" msgpack:"data"`
}

func (c *Client) redisKey(key string) string {
	return c.cfg.Prefix + key
}

func cacheKey(keyPrefix string, id any) string {
	return keyPrefix + fmt.Sprint(id)
}
