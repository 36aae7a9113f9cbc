package dlock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/wenqiu/seckill/clog"
	"github.com/wenqiu/seckill/connector"
	"github.com/wenqiu/seckill/xerrors"
)

// unlockScript 原子地比较令牌并删除。
// 必须在服务端一次执行：GET 与 DEL 拆成两次调用会产生
// 经典的误删窗口——A 的锁过期后 B 加锁，A 延迟到达的 DEL 删掉 B 的锁。
const unlockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`

type redisLocker struct {
	client  *redis.Client
	cfg     *Config
	logger  clog.Logger
	metrics *lockMetrics

	mu    sync.Mutex
	locks map[string]*lockEntry
}

// lockEntry 本进程持有的锁及其令牌。
// 令牌在加锁时生成，在锁的整个生命周期内保持不变。
type lockEntry struct {
	token string
	ttl   time.Duration
}

func newRedisLocker(conn connector.RedisConnector, cfg *Config, opt *Options) (*redisLocker, error) {
	return &redisLocker{
		client:  conn.GetClient(),
		cfg:     cfg,
		logger:  opt.Logger.With(clog.String("component", "dlock")),
		metrics: newLockMetrics(opt.Registerer),
		locks:   make(map[string]*lockEntry),
	}, nil
}

func (l *redisLocker) TryLock(ctx context.Context, key string, opts ...LockOption) (bool, error) {
	return l.acquire(ctx, key, opts...)
}

func (l *redisLocker) Lock(ctx context.Context, key string, opts ...LockOption) error {
	for {
		ok, err := l.acquire(ctx, key, opts...)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.cfg.RetryInterval):
		}
	}
}

func (l *redisLocker) Unlock(ctx context.Context, key string) error {
	l.mu.Lock()
	entry, exists := l.locks[key]
	if !exists {
		l.mu.Unlock()
		return xerrors.Wrapf(ErrLockNotHeld, "key: %s", key)
	}
	delete(l.locks, key)
	l.mu.Unlock()

	result, err := l.client.Eval(ctx, unlockScript, []string{l.redisKey(key)}, entry.token).Result()
	if err != nil {
		return xerrors.Wrap(err, "failed to release lock")
	}

	if result.(int64) == 0 {
		// 锁已过期或已被新的持有者占有，删除未执行
		l.metrics.lost.Inc()
		l.logger.WarnContext(ctx, "lock ownership lost on unlock", clog.String("key", key))
		return xerrors.Wrapf(ErrOwnershipLost, "key: %s", key)
	}

	l.metrics.released.Inc()
	l.logger.DebugContext(ctx, "lock released", clog.String("key", key))
	return nil
}

func (l *redisLocker) acquire(ctx context.Context, key string, opts ...LockOption) (bool, error) {
	options := &lockOptions{TTL: l.cfg.DefaultTTL}
	for _, opt := range opts {
		opt(options)
	}
	if options.TTL <= 0 {
		options.TTL = l.cfg.DefaultTTL
	}

	// 本进程内重复加锁视为锁被持有，与跨进程冲突同样返回 false
	l.mu.Lock()
	if _, exists := l.locks[key]; exists {
		l.mu.Unlock()
		l.metrics.contended.Inc()
		return false, nil
	}
	l.mu.Unlock()

	token := uuid.NewString()

	success, err := l.client.SetNX(ctx, l.redisKey(key), token, options.TTL).Result()
	if err != nil {
		return false, xerrors.Wrap(err, "failed to acquire lock")
	}
	if !success {
		l.metrics.contended.Inc()
		return false, nil
	}

	l.mu.Lock()
	l.locks[key] = &lockEntry{token: token, ttl: options.TTL}
	l.mu.Unlock()

	l.metrics.acquired.Inc()
	l.logger.DebugContext(ctx, "lock acquired",
		clog.String("key", key), clog.Duration("ttl", options.TTL))
	return true, nil
}

func (l *redisLocker) redisKey(key string) string {
	return l.cfg.Prefix + key
}
