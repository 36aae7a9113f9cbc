package testkit

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/wenqiu/seckill/clog"
	"github.com/wenqiu/seckill/connector"
)

// NewMiniRedis 启动一个进程内 Redis
// 生命周期由 t.Cleanup 管理
func NewMiniRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")
	t.Cleanup(mr.Close)
	return mr
}

// NewRedisConnector 创建并连接一个指向进程内 Redis 的连接器
// 生命周期由 t.Cleanup 管理
func NewRedisConnector(t *testing.T, mr *miniredis.Miniredis) connector.RedisConnector {
	t.Helper()
	conn, err := connector.NewRedis(&connector.RedisConfig{
		Name: "test-redis",
		Addr: mr.Addr(),
	}, connector.WithLogger(clog.Discard()))
	require.NoError(t, err, "failed to create redis connector")

	require.NoError(t, conn.Connect(context.Background()), "failed to connect to miniredis")
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

// NewRedisClient 返回一个指向进程内 Redis 的原生客户端
func NewRedisClient(t *testing.T, mr *miniredis.Miniredis) *redis.Client {
	t.Helper()
	return NewRedisConnector(t, mr).GetClient()
}
