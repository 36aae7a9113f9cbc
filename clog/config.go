package clog

import (
	"fmt"
	"log/slog"
	"strings"
)

// Config 日志配置。
//
//	Level:  日志级别 (debug|info|warn|error)
//	Format: 输出格式 (json|console)
//	Output: 输出目标 (stdout|stderr|文件路径)
type Config struct {
	Level     string `json:"level" yaml:"level" mapstructure:"level"`
	Format    string `json:"format" yaml:"format" mapstructure:"format"`
	Output    string `json:"output" yaml:"output" mapstructure:"output"`
	AddSource bool   `json:"add_source" yaml:"add_source" mapstructure:"add_source"`

	// Service 服务名，非空时作为固定字段出现在每条日志中
	Service string `json:"service" yaml:"service" mapstructure:"service"`
}

// NewDevDefaultConfig 返回适合开发环境的默认配置（console 格式）。
func NewDevDefaultConfig(service string) *Config {
	return &Config{
		Level:   "info",
		Format:  "console",
		Output:  "stdout",
		Service: service,
	}
}

// NewProdDefaultConfig 返回适合生产环境的默认配置（json 格式）。
func NewProdDefaultConfig(service string) *Config {
	return &Config{
		Level:   "info",
		Format:  "json",
		Output:  "stdout",
		Service: service,
	}
}

// validate 校验配置并填充默认值（内部使用）。
func (c *Config) validate() error {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "console"
	}
	if c.Output == "" {
		c.Output = "stdout"
	}

	if _, err := parseLevel(c.Level); err != nil {
		return err
	}
	format := strings.ToLower(c.Format)
	if format != "json" && format != "console" {
		return fmt.Errorf("invalid format: %s, must be json or console", c.Format)
	}
	return nil
}

// parseLevel 将字符串级别解析为 slog.Level。
func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", level)
	}
}
