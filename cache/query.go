package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wenqiu/seckill/clog"
	"github.com/wenqiu/seckill/xerrors"
)

// Fallback 回源函数，从持久层按 id 加载数据。
// 数据不存在时返回 (nil, nil)；返回 error 视为持久层故障并向调用方传播。
type Fallback[T any, ID any] func(ctx context.Context, id ID) (*T, error)

// GetWithPassThrough 旁路读，带空值缓存与并发回源合并。
//
// 命中非空值直接返回；命中空值标记立即返回 ErrNotFound（穿透防护）；
// 未命中时回源，并发的未命中通过 singleflight 合并为一次回源（击穿防护）。
// 回源结果写回缓存：有值则按 ttl 缓存，无值则写入短 TTL 的空值标记。
func GetWithPassThrough[T any, ID any](ctx context.Context, c *Client, keyPrefix string, id ID,
	ttl time.Duration, fallback Fallback[T, ID]) (*T, error) {

	key := cacheKey(keyPrefix, id)
	rk := c.redisKey(key)

	data, err := c.client.Get(ctx, rk).Bytes()
	switch {
	case err == nil:
		if len(data) == 0 {
			// 空值标记：该 Key 已确认不存在，不再回源
			c.metrics.negativeHits.Inc()
			return nil, ErrNotFound
		}
		var v T
		uerr := c.serializer.Unmarshal(data, &v)
		if uerr == nil {
			c.metrics.hits.Inc()
			return &v, nil
		}
		// 损坏的缓存值当作未命中处理，回源后覆盖
		c.logger.WarnContext(ctx, "corrupt cache entry, falling back",
			clog.Error(uerr), clog.String("key", key))
		c.metrics.misses.Inc()
	case errors.Is(err, redis.Nil):
		c.metrics.misses.Inc()
	default:
		// Redis 故障降级为未命中，读路径不因缓存层失败而报错
		c.logger.WarnContext(ctx, "cache read failed, falling back",
			clog.Error(err), clog.String("key", key))
		c.metrics.misses.Inc()
	}

	// 同一 Key 的并发回源合并为一次
	result, err, _ := c.group.Do(key, func() (any, error) {
		c.metrics.fallbacks.Inc()
		val, err := fallback(ctx, id)
		if err != nil {
			return nil, err
		}
		if val == nil {
			if serr := c.client.Set(ctx, rk, "", c.cfg.NullTTL).Err(); serr != nil {
				c.logger.WarnContext(ctx, "failed to cache empty marker",
					clog.Error(serr), clog.String("key", key))
			}
			return (*T)(nil), nil
		}
		if serr := c.Set(ctx, key, val, ttl); serr != nil {
			// 写缓存失败不影响本次读
			c.logger.WarnContext(ctx, "failed to fill cache",
				clog.Error(serr), clog.String("key", key))
		}
		return val, nil
	})
	if err != nil {
		return nil, xerrors.Wrapf(err, "cache: fallback for %s", key)
	}

	val := result.(*T)
	if val == nil {
		return nil, ErrNotFound
	}
	return val, nil
}

// GetWithLogicalExpire 逻辑过期读，面向预热过的热点数据。
//
// Key 不存在时直接返回 ErrNotFound，不回源（冷启动预热不在此路径内）。
// 命中且未逻辑过期时返回缓存值；已逻辑过期时仍立即返回旧值，
// 同时尝试获取该 Key 的重建锁，抢到锁的请求向有界协程池提交异步重建，
// 其余请求直接返回旧值，不等待。
func GetWithLogicalExpire[T any, ID any](ctx context.Context, c *Client, keyPrefix string, id ID,
	ttl time.Duration, fallback Fallback[T, ID]) (*T, error) {

	key := cacheKey(keyPrefix, id)

	data, err := c.client.Get(ctx, c.redisKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "cache read failed",
				clog.Error(err), clog.String("key", key))
		}
		c.metrics.misses.Inc()
		return nil, ErrNotFound
	}

	var entry logicalEntry
	if err := c.serializer.Unmarshal(data, &entry); err != nil {
		c.logger.WarnContext(ctx, "corrupt logical-expire envelope",
			clog.Error(err), clog.String("key", key))
		c.metrics.misses.Inc()
		return nil, ErrNotFound
	}
	var v T
	if err := c.serializer.Unmarshal(entry.Data, &v); err != nil {
		c.logger.WarnContext(ctx, "corrupt logical-expire payload",
			clog.Error(err), clog.String("key", key))
		c.metrics.misses.Inc()
		return nil, ErrNotFound
	}

	if c.now().Before(entry.ExpireAt) {
		c.metrics.hits.Inc()
		return &v, nil
	}

	// 已逻辑过期：返回旧值，同时触发异步重建
	c.metrics.staleServed.Inc()
	c.tryRebuild(ctx, key, func(jobCtx context.Context) error {
		fresh, err := fallback(jobCtx, id)
		if err != nil {
			return err
		}
		if fresh == nil {
			// 数据源已删除该记录，移除缓存而不是续写旧值
			return c.Delete(jobCtx, key)
		}
		return c.SetWithLogicalExpire(jobCtx, key, fresh, ttl)
	})

	return &v, nil
}

// tryRebuild 竞争重建锁，抢到后把重建任务提交到协程池。
// 锁在任务结束后释放（无论成功失败），池满时放弃本轮重建并立即释放锁。
func (c *Client) tryRebuild(ctx context.Context, key string, job func(context.Context) error) {
	ok, err := c.rebuildLock.TryLock(ctx, key)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to acquire rebuild lock",
			clog.Error(err), clog.String("key", key))
		return
	}
	if !ok {
		// 已有请求在重建
		return
	}

	submitErr := c.pool.Submit(func() {
		// 任务脱离请求生命周期执行，超时控制在重建锁 TTL 之内
		jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.RebuildLockTTL/2)
		defer cancel()
		defer func() {
			if uerr := c.rebuildLock.Unlock(jobCtx, key); uerr != nil {
				c.logger.WarnContext(jobCtx, "failed to release rebuild lock",
					clog.Error(uerr), clog.String("key", key))
			}
		}()

		c.metrics.rebuilds.Inc()
		if jerr := job(jobCtx); jerr != nil {
			c.metrics.rebuildFails.Inc()
			c.logger.ErrorContext(jobCtx, "cache rebuild failed",
				clog.Error(jerr), clog.String("key", key))
		}
	})
	if submitErr != nil {
		if uerr := c.rebuildLock.Unlock(ctx, key); uerr != nil {
			c.logger.WarnContext(ctx, "failed to release rebuild lock",
				clog.Error(uerr), clog.String("key", key))
		}
		c.logger.WarnContext(ctx, "rebuild pool overloaded, rebuild skipped",
			clog.String("key", key))
	}
}

// LRange 读取列表区间并反序列化为 []T。列表不存在时返回空切片。
func LRange[T any](ctx context.Context, c *Client, key string, start, stop int64) ([]T, error) {
	raw, err := c.client.LRange(ctx, c.redisKey(key), start, stop).Result()
	if err != nil {
		return nil, xerrors.Wrapf(err, "cache: lrange %s", key)
	}
	result := make([]T, 0, len(raw))
	for _, item := range raw {
		var v T
		if err := c.serializer.Unmarshal([]byte(item), &v); err != nil {
			return nil, xerrors.Wrapf(err, "cache: unmarshal list element %s", key)
		}
		result = append(result, v)
	}
	return result, nil
}
