package db

import (
	"time"

	"github.com/wenqiu/seckill/xerrors"
)

// Config DB 组件配置
type Config struct {
	// SlowThreshold 慢查询判定阈值
	// 默认值: 200ms
	SlowThreshold time.Duration `json:"slow_threshold" yaml:"slow_threshold"`
}

func (c *Config) setDefaults() {
	if c.SlowThreshold == 0 {
		c.SlowThreshold = 200 * time.Millisecond
	}
}

func (c *Config) validate() error {
	if c.SlowThreshold < 0 {
		return xerrors.New("slow threshold cannot be negative")
	}
	return nil
}
