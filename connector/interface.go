// Package connector 提供统一的连接管理能力。
//
// 核心特性：
//   - 统一抽象：通过 Connector 接口提供一致的连接管理 API
//   - 多数据源支持：Redis、MySQL、SQLite
//   - 并发安全：所有公开方法均为并发安全
//   - 延迟连接：NewXXX() 创建连接器但不立即建立连接，Connect() 时才连接
//
// 资源所有权：
//
//	Connector 拥有底层连接的生命周期，应通过 defer 确保 Close() 被调用。
//	组件（如 cache、dlock、db）仅借用 Connector，不应调用它的 Close()。
//
// 基本使用：
//
//	conn, err := connector.NewRedis(&connector.RedisConfig{Addr: "127.0.0.1:6379"})
//	if err != nil {
//	    panic(err)
//	}
//	defer conn.Close()
//	if err := conn.Connect(ctx); err != nil {
//	    panic(err)
//	}
//	client := conn.GetClient()
package connector

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Connector 定义所有连接器的通用行为。
type Connector interface {
	// Connect 建立连接。幂等，可安全重复调用。
	Connect(ctx context.Context) error

	// Close 关闭连接并释放资源。幂等。
	Close() error

	// HealthCheck 检查连接健康状态。
	HealthCheck(ctx context.Context) error

	// Name 返回连接器名称，用于日志与多实例区分。
	Name() string
}

// RedisConnector Redis 连接器。
type RedisConnector interface {
	Connector
	// GetClient 返回 go-redis 客户端。未连接时返回 nil。
	GetClient() *redis.Client
}

// MySQLConnector MySQL 连接器。
type MySQLConnector interface {
	Connector
	// GetClient 返回 GORM 客户端。未连接时返回 nil。
	GetClient() *gorm.DB
}

// SQLiteConnector SQLite 连接器，主要用于测试与本地开发。
type SQLiteConnector interface {
	Connector
	GetClient() *gorm.DB
}
