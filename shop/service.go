// Package shop 提供带缓存的商铺查询。
//
// 普通商铺走旁路缓存(空值缓存挡穿透)，热点商铺走逻辑过期(旧值可用 +
// 后台重建)，更新走先改库后删缓存，分类列表整体缓存为 Redis list。
package shop

import (
	"context"
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/wenqiu/seckill/cache"
	"github.com/wenqiu/seckill/clog"
	"github.com/wenqiu/seckill/db"
	"github.com/wenqiu/seckill/xerrors"
)

const (
	shopKeyPrefix    = "shop:"
	shopHotKeyPrefix = "shop:hot:"
	typeListKey      = "shop:types"
)

var (
	// ErrShopNotFound 商铺不存在
	ErrShopNotFound = xerrors.WithCode(xerrors.New("shop: shop not found"), "SHOP_NOT_FOUND")

	// ErrIDRequired 更新操作缺少商铺 ID
	ErrIDRequired = xerrors.New("shop: shop id is required")
)

// Config 商铺服务配置
type Config struct {
	// CacheTTL 旁路缓存的过期时间
	// 默认值: 30m
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`
}

func (c *Config) setDefaults() {
	if c.CacheTTL == 0 {
		c.CacheTTL = 30 * time.Minute
	}
}

// Service 商铺服务
type Service struct {
	db     db.DB
	cache  *cache.Client
	cfg    *Config
	logger clog.Logger
}

// Option 组件级选项函数
type Option func(*Service)

// WithLogger 设置日志记录器
func WithLogger(logger clog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New 创建商铺服务
func New(database db.DB, cacheClient *cache.Client, cfg *Config, opts ...Option) (*Service, error) {
	if database == nil {
		return nil, xerrors.New("shop: db is required")
	}
	if cacheClient == nil {
		return nil, xerrors.New("shop: cache is required")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.setDefaults()

	s := &Service{
		db:     database,
		cache:  cacheClient,
		cfg:    cfg,
		logger: clog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	s.logger = s.logger.With(clog.String("component", "shop"))
	return s, nil
}

// Migrate 同步商铺表和分类表结构
func (s *Service) Migrate(ctx context.Context) error {
	return s.db.AutoMigrate(ctx, &Shop{}, &ShopType{})
}

// GetByID 查询商铺，旁路缓存，不存在的 ID 写入空值标记挡穿透
func (s *Service) GetByID(ctx context.Context, shopID int64) (*Shop, error) {
	shop, err := cache.GetWithPassThrough(ctx, s.cache, shopKeyPrefix, shopID,
		s.cfg.CacheTTL, s.shopFallback)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, err
	}
	return shop, nil
}

// GetHotByID 查询已预热的热点商铺。逻辑过期后返回旧值并触发后台重建，
// 未预热的商铺返回 ErrShopNotFound 而不回源。
func (s *Service) GetHotByID(ctx context.Context, shopID int64) (*Shop, error) {
	shop, err := cache.GetWithLogicalExpire(ctx, s.cache, shopHotKeyPrefix, shopID,
		s.cfg.CacheTTL, s.shopFallback)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, err
	}
	return shop, nil
}

// Warm 把商铺信息以逻辑过期方式预热进缓存
func (s *Service) Warm(ctx context.Context, shopID int64, ttl time.Duration) error {
	shop, err := s.shopFallback(ctx, shopID)
	if err != nil {
		return err
	}
	if shop == nil {
		return ErrShopNotFound
	}
	key := shopHotKeyPrefix + strconv.FormatInt(shopID, 10)
	return s.cache.SetWithLogicalExpire(ctx, key, shop, ttl)
}

// Update 更新商铺：先改库再删缓存，同一事务内完成。
// 缓存删除失败会回滚数据库更新，避免缓存长期与库不一致。
func (s *Service) Update(ctx context.Context, shop *Shop) error {
	if shop == nil || shop.ID == 0 {
		return ErrIDRequired
	}
	return s.db.Transaction(ctx, func(ctx context.Context, tx *gorm.DB) error {
		result := tx.Model(&Shop{}).Where("id = ?", shop.ID).Updates(shop)
		if result.Error != nil {
			return xerrors.Wrap(result.Error, "shop: update shop")
		}
		if result.RowsAffected == 0 {
			return ErrShopNotFound
		}
		key := shopKeyPrefix + strconv.FormatInt(shop.ID, 10)
		return s.cache.Delete(ctx, key)
	})
}

// ListTypes 查询商铺分类，整体缓存为 Redis list，按 Sort 升序
func (s *Service) ListTypes(ctx context.Context) ([]ShopType, error) {
	cached, err := cache.LRange[ShopType](ctx, s.cache, typeListKey, 0, -1)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to read type list from cache", clog.Error(err))
	}
	if len(cached) > 0 {
		return cached, nil
	}

	var types []ShopType
	if err := s.db.DB(ctx).Order("sort ASC").Find(&types).Error; err != nil {
		return nil, xerrors.Wrap(err, "shop: query shop types")
	}
	if len(types) == 0 {
		return types, nil
	}

	values := make([]any, len(types))
	for i := range types {
		values[i] = types[i]
	}
	if err := s.cache.RPush(ctx, typeListKey, values...); err != nil {
		// 填缓存失败不影响本次返回
		s.logger.WarnContext(ctx, "failed to cache type list", clog.Error(err))
	}
	return types, nil
}

func (s *Service) shopFallback(ctx context.Context, shopID int64) (*Shop, error) {
	var shop Shop
	if err := s.db.DB(ctx).First(&shop, shopID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, xerrors.Wrap(err, "shop: query shop")
	}
	return &shop, nil
}
