// Package order 实现秒杀下单协议。
//
// 下单路径: 资格校验(活动存在/时间窗口/库存预检) → 获取用户级分布式锁 →
// 一人一单复查 → 条件扣减库存 → 生成订单 ID → 持久化订单，锁在所有出口
// 统一释放。锁按用户而非按券加锁：不同用户之间互不串行，超卖由条件扣减
// (stock > 0 才扣) 在持久层兜底。
//
// 业务拒绝(未开始/已结束/售罄/重复购买/请求竞争)以带错误码的哨兵错误返回，
// 基础设施故障(数据库不可达/ID 生成失败)包装后向上传播。
package order

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/wenqiu/seckill/cache"
	"github.com/wenqiu/seckill/clog"
	"github.com/wenqiu/seckill/db"
	"github.com/wenqiu/seckill/dlock"
	"github.com/wenqiu/seckill/idgen"
	"github.com/wenqiu/seckill/xerrors"
	"gorm.io/gorm"
)

const (
	voucherKeyPrefix    = "voucher:"
	voucherHotKeyPrefix = "voucher:hot:"
)

// Config 下单服务配置
type Config struct {
	// LockPrefix 用户锁的 key 前缀
	// 默认值: "order:"
	LockPrefix string `json:"lock_prefix" yaml:"lock_prefix"`

	// LockTTL 用户锁的过期时间，是持有者崩溃时的安全网。
	// 下单操作耗时必须远小于该值。
	// 默认值: 10s
	LockTTL time.Duration `json:"lock_ttl" yaml:"lock_ttl"`

	// IDNamespace 订单 ID 的序列命名空间
	// 默认值: "order"
	IDNamespace string `json:"id_namespace" yaml:"id_namespace"`

	// VoucherCacheTTL GetVoucher 旁路缓存的过期时间
	// 默认值: 30m
	VoucherCacheTTL time.Duration `json:"voucher_cache_ttl" yaml:"voucher_cache_ttl"`
}

func (c *Config) setDefaults() {
	if c.LockPrefix == "" {
		c.LockPrefix = "order:"
	}
	if c.LockTTL == 0 {
		c.LockTTL = 10 * time.Second
	}
	if c.IDNamespace == "" {
		c.IDNamespace = "order"
	}
	if c.VoucherCacheTTL == 0 {
		c.VoucherCacheTTL = 30 * time.Minute
	}
}

// Service 秒杀下单服务
type Service struct {
	db      db.DB
	locker  dlock.Locker
	ids     *idgen.Worker
	cache   *cache.Client
	cfg     *Config
	logger  clog.Logger
	metrics *orderMetrics

	now func() time.Time
}

// New 创建下单服务。
//
// 参数:
//   - database: 持久层(券/订单表)
//   - locker: 用户级互斥锁
//   - ids: 订单 ID 生成器
//   - cacheClient: 券信息的读缓存，传 nil 则读路径直达数据库
func New(database db.DB, locker dlock.Locker, ids *idgen.Worker, cacheClient *cache.Client, cfg *Config, opts ...Option) (*Service, error) {
	if database == nil {
		return nil, xerrors.New("order: db is required")
	}
	if locker == nil {
		return nil, xerrors.New("order: locker is required")
	}
	if ids == nil {
		return nil, xerrors.New("order: id worker is required")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.setDefaults()

	opt := applyOptions(opts...)

	return &Service{
		db:      database,
		locker:  locker,
		ids:     ids,
		cache:   cacheClient,
		cfg:     cfg,
		logger:  opt.Logger.With(clog.String("component", "order")),
		metrics: newOrderMetrics(opt.Registerer),
		now:     time.Now,
	}, nil
}

// Migrate 同步券表和订单表结构
func (s *Service) Migrate(ctx context.Context) error {
	return s.db.AutoMigrate(ctx, &Voucher{}, &VoucherOrder{})
}

// Purchase 执行一次秒杀下单，成功时返回订单 ID。
//
// 时间窗口和库存的预检查基于可能过期的读，真正的防线在后面：
// 一人一单由用户锁内的存在性复查保证，不超卖由条件扣减保证。
func (s *Service) Purchase(ctx context.Context, userID, voucherID int64) (int64, error) {
	voucher, err := findVoucherByID(s.db.DB(ctx), voucherID)
	if err != nil {
		return 0, xerrors.Wrap(err, "order: query voucher")
	}
	if voucher == nil {
		return 0, s.reject("not_found", ErrVoucherNotFound)
	}

	now := s.now()
	if now.Before(voucher.BeginTime) {
		return 0, s.reject("not_started", ErrNotStarted)
	}
	if !now.Before(voucher.EndTime) {
		return 0, s.reject("ended", ErrEnded)
	}
	if voucher.Stock < 1 {
		return 0, s.reject("sold_out", ErrSoldOut)
	}

	lockKey := s.cfg.LockPrefix + strconv.FormatInt(userID, 10)
	ok, err := s.locker.TryLock(ctx, lockKey, dlock.WithTTL(s.cfg.LockTTL))
	if err != nil {
		return 0, xerrors.Wrap(err, "order: acquire user lock")
	}
	if !ok {
		return 0, s.reject("contended", ErrContended)
	}
	defer func() {
		// 请求取消也要放锁，否则同一用户要等 TTL 到期才能重试
		if uerr := s.locker.Unlock(context.WithoutCancel(ctx), lockKey); uerr != nil {
			s.logger.WarnContext(ctx, "failed to release user lock",
				clog.String("key", lockKey), clog.Error(uerr))
		}
	}()

	return s.createOrder(ctx, userID, voucherID)
}

// createOrder 锁内的事务单元：一人一单复查、条件扣减、生成 ID、落库。
// 任何一步失败整个事务回滚，已扣的库存随之恢复。
func (s *Service) createOrder(ctx context.Context, userID, voucherID int64) (int64, error) {
	var orderID int64
	err := s.db.Transaction(ctx, func(ctx context.Context, tx *gorm.DB) error {
		exists, err := orderExists(tx, userID, voucherID)
		if err != nil {
			return xerrors.Wrap(err, "order: check existing order")
		}
		if exists {
			return ErrAlreadyPurchased
		}

		deducted, err := decrementStock(tx, voucherID)
		if err != nil {
			return xerrors.Wrap(err, "order: decrement stock")
		}
		if !deducted {
			return ErrSoldOut
		}

		orderID, err = s.ids.NextID(ctx, s.cfg.IDNamespace)
		if err != nil {
			return xerrors.Wrap(err, "order: generate order id")
		}

		return insertOrder(tx, &VoucherOrder{ID: orderID, UserID: userID, VoucherID: voucherID})
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyPurchased):
			return 0, s.reject("already_purchased", ErrAlreadyPurchased)
		case errors.Is(err, ErrSoldOut):
			return 0, s.reject("sold_out", ErrSoldOut)
		}
		return 0, err
	}

	s.metrics.created.Inc()
	s.logger.InfoContext(ctx, "order created",
		clog.Int64("order_id", orderID),
		clog.Int64("user_id", userID),
		clog.Int64("voucher_id", voucherID))
	return orderID, nil
}

func (s *Service) reject(reason string, err error) error {
	s.metrics.rejected.WithLabelValues(reason).Inc()
	return err
}

// CreateVoucher 创建秒杀活动
func (s *Service) CreateVoucher(ctx context.Context, voucher *Voucher) error {
	if voucher == nil {
		return xerrors.New("order: voucher is nil")
	}
	if voucher.Title == "" {
		return xerrors.New("order: voucher title is required")
	}
	if voucher.Stock < 0 {
		return xerrors.New("order: voucher stock cannot be negative")
	}
	if !voucher.BeginTime.Before(voucher.EndTime) {
		return xerrors.New("order: voucher window is empty")
	}
	return insertVoucher(s.db.DB(ctx), voucher)
}

// GetVoucher 查询券信息，非下单关键路径。
// 配置了缓存时走旁路缓存(含空值缓存)，否则直达数据库。
func (s *Service) GetVoucher(ctx context.Context, voucherID int64) (*Voucher, error) {
	if s.cache == nil {
		voucher, err := findVoucherByID(s.db.DB(ctx), voucherID)
		if err != nil {
			return nil, xerrors.Wrap(err, "order: query voucher")
		}
		if voucher == nil {
			return nil, ErrVoucherNotFound
		}
		return voucher, nil
	}

	voucher, err := cache.GetWithPassThrough(ctx, s.cache, voucherKeyPrefix, voucherID,
		s.cfg.VoucherCacheTTL, s.voucherFallback)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, ErrVoucherNotFound
		}
		return nil, err
	}
	return voucher, nil
}

// GetHotVoucher 查询已预热的热点券，逻辑过期后返回旧值并触发后台重建。
// 未预热的券返回 ErrVoucherNotFound。
func (s *Service) GetHotVoucher(ctx context.Context, voucherID int64) (*Voucher, error) {
	if s.cache == nil {
		return nil, xerrors.New("order: cache is required for hot voucher reads")
	}
	voucher, err := cache.GetWithLogicalExpire(ctx, s.cache, voucherHotKeyPrefix, voucherID,
		s.cfg.VoucherCacheTTL, s.voucherFallback)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, ErrVoucherNotFound
		}
		return nil, err
	}
	return voucher, nil
}

// WarmVoucher 把券信息以逻辑过期方式预热进缓存
func (s *Service) WarmVoucher(ctx context.Context, voucherID int64, ttl time.Duration) error {
	if s.cache == nil {
		return xerrors.New("order: cache is required for warming")
	}
	voucher, err := findVoucherByID(s.db.DB(ctx), voucherID)
	if err != nil {
		return xerrors.Wrap(err, "order: query voucher")
	}
	if voucher == nil {
		return ErrVoucherNotFound
	}
	key := voucherHotKeyPrefix + strconv.FormatInt(voucherID, 10)
	return s.cache.SetWithLogicalExpire(ctx, key, voucher, ttl)
}

func (s *Service) voucherFallback(ctx context.Context, voucherID int64) (*Voucher, error) {
	return findVoucherByID(s.db.DB(ctx), voucherID)
}
