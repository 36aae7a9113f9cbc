package config

// Options 加载器配置项
type Options struct {
	// Name 配置文件名（不含扩展名），默认 "config"
	Name string
	// FileType 配置文件类型，默认 "yaml"
	FileType string
	// Paths 配置文件搜索路径，默认 ["."]
	Paths []string
	// EnvPrefix 环境变量前缀，如 "SECKILL" → SECKILL_REDIS_ADDR
	EnvPrefix string
	// DotEnvPath .env 文件路径，空则跳过
	DotEnvPath string
	// WatchEnabled 是否监听配置文件变化
	WatchEnabled bool
}

// Option 函数式选项
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		Name:     "config",
		FileType: "yaml",
		Paths:    []string{"."},
	}
}

// WithConfigName 设置配置文件名（不含扩展名）
func WithConfigName(name string) Option {
	return func(o *Options) {
		o.Name = name
	}
}

// WithConfigType 设置配置文件类型 (yaml|json|toml)
func WithConfigType(t string) Option {
	return func(o *Options) {
		o.FileType = t
	}
}

// WithConfigPaths 设置配置文件搜索路径
func WithConfigPaths(paths ...string) Option {
	return func(o *Options) {
		o.Paths = paths
	}
}

// WithEnvPrefix 设置环境变量前缀
func WithEnvPrefix(prefix string) Option {
	return func(o *Options) {
		o.EnvPrefix = prefix
	}
}

// WithDotEnv 设置 .env 文件路径
func WithDotEnv(path string) Option {
	return func(o *Options) {
		o.DotEnvPath = path
	}
}

// WithWatch 启用配置文件热更新
func WithWatch() Option {
	return func(o *Options) {
		o.WatchEnabled = true
	}
}
