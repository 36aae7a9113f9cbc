// Package idgen 提供基于 Redis 自增的分布式 ID 生成器。
//
// ID 为 64 位整数：高位是相对固定纪元的秒级时间戳（左移 32 位），
// 低 32 位是「业务前缀 + 当天日期」计数器的原子自增值。
// 只要自增是原子的，所有进程生成的 ID 即全局唯一；
// 排序只保证到秒级粒度，同一秒内的先后顺序不保证。
//
// 计数器按天分 Key，新的一天自动从 1 重新计数，
// 同时方便按日统计业务量。
//
// 基本使用：
//
//	worker, _ := idgen.New(redisConn, nil, idgen.WithLogger(logger))
//	id, err := worker.NextID(ctx, "order")
package idgen

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wenqiu/seckill/clog"
	"github.com/wenqiu/seckill/connector"
	"github.com/wenqiu/seckill/xerrors"
)

const (
	// defaultEpoch 2022-01-01 00:00:00 UTC，固定纪元偏移
	defaultEpoch = 1640995200

	// sequenceBits 序列号占用的位数
	sequenceBits = 32
)

// ErrConnectorNil 连接器为空
var ErrConnectorNil = xerrors.New("idgen: connector is nil")

// Config ID 生成器配置。零值可用。
type Config struct {
	// KeyPrefix 计数器 Key 前缀 (默认: "seq:")
	KeyPrefix string `json:"key_prefix" yaml:"key_prefix" mapstructure:"key_prefix"`

	// Epoch 纪元偏移，Unix 秒 (默认: 2022-01-01 00:00:00 UTC)
	Epoch int64 `json:"epoch" yaml:"epoch" mapstructure:"epoch"`

	// CounterTTL 计数器 Key 的过期时间 (默认: 48h)。
	// 当天的计数器只需要活到当天结束，48 小时留足余量。
	CounterTTL time.Duration `json:"counter_ttl" yaml:"counter_ttl" mapstructure:"counter_ttl"`
}

func (c *Config) setDefaults() {
	if c.KeyPrefix == "" {
		c.KeyPrefix = "seq:"
	}
	if c.Epoch == 0 {
		c.Epoch = defaultEpoch
	}
	if c.CounterTTL <= 0 {
		c.CounterTTL = 48 * time.Hour
	}
}

// Options 组件选项
type Options struct {
	Logger clog.Logger
}

// Option 选项函数
type Option func(*Options)

// WithLogger 设置日志记录器
func WithLogger(logger clog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// Worker 分布式 ID 生成器。并发安全。
type Worker struct {
	client *redis.Client
	cfg    *Config
	logger clog.Logger
	now    func() time.Time
}

// New 创建 ID 生成器。cfg 为 nil 时使用默认配置。
func New(conn connector.RedisConnector, cfg *Config, opts ...Option) (*Worker, error) {
	if conn == nil {
		return nil, ErrConnectorNil
	}
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.setDefaults()

	opt := &Options{}
	for _, o := range opts {
		o(opt)
	}
	if opt.Logger == nil {
		opt.Logger = clog.Default()
	}

	return &Worker{
		client: conn.GetClient(),
		cfg:    cfg,
		logger: opt.Logger.With(clog.String("component", "idgen")),
		now:    time.Now,
	}, nil
}

// NextID 生成下一个全局唯一 ID。
// namespace 区分业务（如 "order"），不同 namespace 的计数器互不影响。
func (w *Worker) NextID(ctx context.Context, namespace string) (int64, error) {
	now := w.now().UTC()
	timestamp := now.Unix() - w.cfg.Epoch

	// 计数器按天分 Key，跨天自动重新计数
	key := w.cfg.KeyPrefix + namespace + ":" + now.Format("2006:01:02")
	count, err := w.client.Incr(ctx, key).Result()
	if err != nil {
		w.logger.ErrorContext(ctx, "failed to increment sequence",
			clog.Error(err), clog.String("key", key))
		return 0, xerrors.Wrap(err, "idgen: redis incr failed")
	}

	// 首次自增时设置过期，计数器不会无限堆积
	if count == 1 {
		if err := w.client.Expire(ctx, key, w.cfg.CounterTTL).Err(); err != nil {
			w.logger.WarnContext(ctx, "failed to set counter ttl",
				clog.Error(err), clog.String("key", key))
		}
	}

	// 单日序列超过 32 位会侵入时间戳位，按日计数量级远未达到
	return timestamp<<sequenceBits | count, nil
}
