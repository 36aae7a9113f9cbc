package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "config.yaml", `
redis:
  addr: "127.0.0.1:6379"
  db: 1
app:
  name: seckill
`)

	loader, err := New(
		WithConfigName("config"),
		WithConfigPaths(dir),
	)
	require.NoError(t, err)
	require.NoError(t, loader.Load(context.Background()))

	assert.Equal(t, "127.0.0.1:6379", loader.Get("redis.addr"))
	assert.Equal(t, "seckill", loader.Get("app.name"))
	assert.Nil(t, loader.Get("missing.key"))
}

func TestUnmarshal(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "config.yaml", `
redis:
  addr: "localhost:6379"
  db: 2
`)

	type redisSection struct {
		Addr string `mapstructure:"addr"`
		DB   int    `mapstructure:"db"`
	}
	type appConfig struct {
		Redis redisSection `mapstructure:"redis"`
	}

	loader := MustLoad(WithConfigName("config"), WithConfigPaths(dir))

	var cfg appConfig
	require.NoError(t, loader.Unmarshal(&cfg))
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)

	var section redisSection
	require.NoError(t, loader.UnmarshalKey("redis", &section))
	assert.Equal(t, 2, section.DB)
}

func TestEnvOverride(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "config.yaml", `
redis:
  addr: "from-file:6379"
`)

	t.Setenv("SECKILL_REDIS_ADDR", "from-env:6379")

	loader := MustLoad(
		WithConfigName("config"),
		WithConfigPaths(dir),
		WithEnvPrefix("SECKILL"),
	)
	assert.Equal(t, "from-env:6379", loader.Get("redis.addr"))
}

func TestMissingConfigFileIsNotFatal(t *testing.T) {
	loader, err := New(WithConfigName("nonexistent"), WithConfigPaths(t.TempDir()))
	require.NoError(t, err)
	require.NoError(t, loader.Load(context.Background()))
}

func TestWatchRequiresOption(t *testing.T) {
	loader := MustLoad(WithConfigName("nonexistent"), WithConfigPaths(t.TempDir()))
	_, err := loader.Watch(context.Background(), "any.key")
	require.Error(t, err)
}
