package connector

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wenqiu/seckill/clog"
)

func TestRedisConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *RedisConfig
		expectError bool
	}{
		{name: "valid", cfg: &RedisConfig{Addr: "127.0.0.1:6379"}},
		{name: "missing addr", cfg: &RedisConfig{}, expectError: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRedis(tt.cfg, WithLogger(clog.Discard()))
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestRedisConnector(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	conn, err := NewRedis(&RedisConfig{Name: "test", Addr: mr.Addr()}, WithLogger(clog.Discard()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ctx := context.Background()
	require.NoError(t, conn.Connect(ctx))
	// Connect 幂等
	require.NoError(t, conn.Connect(ctx))
	require.NoError(t, conn.HealthCheck(ctx))
	assert.Equal(t, "test", conn.Name())

	client := conn.GetClient()
	require.NotNil(t, client)
	require.NoError(t, client.Set(ctx, "k", "v", 0).Err())
	v, err := client.Get(ctx, "k").Result()
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close())
	assert.Nil(t, conn.GetClient())
}

func TestMySQLConfigValidate(t *testing.T) {
	_, err := NewMySQL(&MySQLConfig{}, WithLogger(clog.Discard()))
	require.Error(t, err)

	_, err = NewMySQL(&MySQLConfig{DSN: "user:pass@tcp(127.0.0.1:3306)/app"}, WithLogger(clog.Discard()))
	require.NoError(t, err)

	cfg := &MySQLConfig{Host: "127.0.0.1", Username: "root", Password: "secret", Database: "app"}
	_, err = NewMySQL(cfg, WithLogger(clog.Discard()))
	require.NoError(t, err)
	assert.Contains(t, cfg.buildDSN(), "tcp(127.0.0.1:3306)/app")
}

func TestSQLiteConnector(t *testing.T) {
	_, err := NewSQLite(&SQLiteConfig{}, WithLogger(clog.Discard()))
	require.Error(t, err)

	conn, err := NewSQLite(&SQLiteConfig{Path: t.TempDir() + "/test.db"}, WithLogger(clog.Discard()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ctx := context.Background()
	require.NoError(t, conn.Connect(ctx))
	require.NoError(t, conn.HealthCheck(ctx))
	require.NotNil(t, conn.GetClient())
	require.NoError(t, conn.Close())
}
