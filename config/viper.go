package config

import (
	"context"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/wenqiu/seckill/xerrors"
)

// loader 实现 Loader 接口
type loader struct {
	v         *viper.Viper
	opts      *Options
	mu        sync.RWMutex
	watches   map[string][]chan Event
	oldValues map[string]any
}

func newLoader(opts ...Option) (*loader, error) {
	options := defaultOptions()
	for _, o := range opts {
		o(options)
	}

	return &loader{
		v:         viper.New(),
		opts:      options,
		watches:   make(map[string][]chan Event),
		oldValues: make(map[string]any),
	}, nil
}

// Load 初始化并从所有来源加载配置。
func (l *loader) Load(ctx context.Context) error {
	l.v.SetConfigName(l.opts.Name)
	l.v.SetConfigType(l.opts.FileType)
	for _, path := range l.opts.Paths {
		l.v.AddConfigPath(path)
	}

	// 环境变量优先级最高
	if l.opts.EnvPrefix != "" {
		l.v.SetEnvPrefix(l.opts.EnvPrefix)
	}
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	// .env 文件次之
	if l.opts.DotEnvPath != "" {
		if err := godotenv.Load(l.opts.DotEnvPath); err != nil {
			return xerrors.Wrapf(err, "failed to load dotenv file %s", l.opts.DotEnvPath)
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return xerrors.Wrapf(err, "failed to read config file %s", l.opts.Name)
		}
		// 找不到配置文件不是错误，允许纯环境变量运行
	}

	l.captureCurrentValues()

	if l.opts.WatchEnabled {
		l.v.OnConfigChange(func(e fsnotify.Event) {
			l.notifyChanges()
		})
		l.v.WatchConfig()
	}

	return nil
}

func (l *loader) Get(key string) any {
	return l.v.Get(key)
}

func (l *loader) Unmarshal(v any) error {
	if err := l.v.Unmarshal(v); err != nil {
		return xerrors.Wrap(err, "failed to unmarshal config")
	}
	return nil
}

func (l *loader) UnmarshalKey(key string, v any) error {
	if err := l.v.UnmarshalKey(key, v); err != nil {
		return xerrors.Wrapf(err, "failed to unmarshal config key %s", key)
	}
	return nil
}

// Watch 监听指定 Key 的变化。ctx 取消后通道关闭。
func (l *loader) Watch(ctx context.Context, key string) (<-chan Event, error) {
	if !l.opts.WatchEnabled {
		return nil, xerrors.New("config: watch is not enabled, use WithWatch()")
	}

	ch := make(chan Event, 4)

	l.mu.Lock()
	l.watches[key] = append(l.watches[key], ch)
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.mu.Lock()
		defer l.mu.Unlock()
		chans := l.watches[key]
		for i, c := range chans {
			if c == ch {
				l.watches[key] = append(chans[:i], chans[i+1:]...)
				close(ch)
				break
			}
		}
	}()

	return ch, nil
}

// captureCurrentValues 保存当前所有被监听 Key 的值作为比较基线。
func (l *loader) captureCurrentValues() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, key := range l.v.AllKeys() {
		l.oldValues[key] = l.v.Get(key)
	}
}

// notifyChanges 在配置文件变化后比较新旧值并通知监听者。
func (l *loader) notifyChanges() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for key, chans := range l.watches {
		newVal := l.v.Get(key)
		oldVal := l.oldValues[key]
		if reflect.DeepEqual(newVal, oldVal) {
			continue
		}
		event := Event{Key: key, Value: newVal, OldValue: oldVal, At: now}
		for _, ch := range chans {
			select {
			case ch <- event:
			default:
				// 监听者处理过慢时丢弃事件，避免阻塞重载流程
			}
		}
	}
	for _, key := range l.v.AllKeys() {
		l.oldValues[key] = l.v.Get(key)
	}
}
