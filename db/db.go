// Package db 提供基于 GORM 的数据库组件。
//
// db 组件在 MySQL/SQLite 连接器之上提供：
// - GORM ORM 能力封装
// - 事务管理支持
// - SQL 日志接入 clog（含慢查询告警）
//
// ## 基本使用
//
//	mysqlConn, _ := connector.NewMySQL(&cfg.MySQL, connector.WithLogger(logger))
//	defer mysqlConn.Close()
//	mysqlConn.Connect(ctx)
//
//	database, _ := db.New(mysqlConn, &db.Config{}, db.WithLogger(logger))
//
//	// 使用 GORM 进行数据库操作
//	var vouchers []Voucher
//	database.DB(ctx).Where("stock > ?", 0).Find(&vouchers)
//
//	// 事务操作
//	err := database.Transaction(ctx, func(ctx context.Context, tx *gorm.DB) error {
//		return tx.Create(&Voucher{Title: "test"}).Error
//	})
//
// ## 设计原则
//
// - **借用模型**：db 组件借用连接器的连接，不负责连接的生命周期
// - **显式依赖**：通过构造函数显式注入连接器和选项
package db

import (
	"context"

	"gorm.io/gorm"

	"github.com/wenqiu/seckill/xerrors"
)

// Conn 抽象提供 *gorm.DB 的连接器。
// connector.MySQLConnector 与 connector.SQLiteConnector 均满足该接口。
type Conn interface {
	GetClient() *gorm.DB
}

// DB 定义了数据库组件的核心能力
type DB interface {
	// DB 获取底层的 *gorm.DB 实例
	// 绝大多数业务查询直接使用此方法返回的对象
	DB(ctx context.Context) *gorm.DB

	// Transaction 执行事务操作
	// fn 中的 tx 对象仅在当前事务范围内有效
	Transaction(ctx context.Context, fn func(ctx context.Context, tx *gorm.DB) error) error

	// AutoMigrate 按模型同步表结构
	AutoMigrate(ctx context.Context, models ...any) error

	// Close 关闭组件
	Close() error
}

// database 是 DB 接口的实现
type database struct {
	client *gorm.DB
}

// New 创建数据库组件实例
//
// 参数:
//   - conn: 已建立连接的 MySQL 或 SQLite 连接器
//   - cfg: DB 配置
//   - opts: 可选参数 (Logger, SilentMode)
func New(conn Conn, cfg *Config, opts ...Option) (DB, error) {
	if conn == nil {
		return nil, ErrConnectorRequired
	}
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Wrap(err, "db: invalid config")
	}

	opt := applyOptions(opts...)

	gormDB := conn.GetClient()
	if gormDB == nil {
		return nil, ErrConnectorNotConnected
	}

	// 将 SQL 日志重定向到 clog
	gormDB = gormDB.Session(&gorm.Session{
		Logger: newGormLogger(opt.logger, cfg.SlowThreshold, opt.silentMode),
	})

	return &database{client: gormDB}, nil
}

// DB 获取底层的 *gorm.DB 实例
func (d *database) DB(ctx context.Context) *gorm.DB {
	return d.client.WithContext(ctx)
}

// Transaction 执行事务操作
func (d *database) Transaction(ctx context.Context, fn func(ctx context.Context, tx *gorm.DB) error) error {
	return d.client.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, tx)
	})
}

// AutoMigrate 按模型同步表结构
func (d *database) AutoMigrate(ctx context.Context, models ...any) error {
	return d.client.WithContext(ctx).AutoMigrate(models...)
}

// Close 关闭组件
func (d *database) Close() error {
	// GORM 的连接由连接器管理，这里不需要额外关闭
	return nil
}
