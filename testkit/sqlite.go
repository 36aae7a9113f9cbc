package testkit

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/wenqiu/seckill/clog"
	"github.com/wenqiu/seckill/connector"
	"github.com/wenqiu/seckill/db"
)

// NewSQLiteConnector 创建并连接一个基于临时文件的 SQLite 连接器
// 生命周期由 t.Cleanup 管理
func NewSQLiteConnector(t *testing.T) connector.SQLiteConnector {
	t.Helper()
	conn, err := connector.NewSQLite(&connector.SQLiteConfig{
		Name: "test-sqlite",
		Path: filepath.Join(t.TempDir(), "test.db"),
	}, connector.WithLogger(clog.Discard()))
	require.NoError(t, err, "failed to create sqlite connector")

	require.NoError(t, conn.Connect(context.Background()), "failed to open sqlite")
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

// NewSQLiteDB 返回一个测试用的 db 组件，SQL 日志静默
func NewSQLiteDB(t *testing.T) db.DB {
	t.Helper()
	database, err := db.New(NewSQLiteConnector(t), &db.Config{},
		db.WithLogger(clog.Discard()), db.WithSilentMode())
	require.NoError(t, err, "failed to create db component")
	return database
}

// NewGormDB 返回测试用的原生 *gorm.DB
func NewGormDB(t *testing.T) *gorm.DB {
	t.Helper()
	return NewSQLiteDB(t).DB(context.Background())
}
