package config

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jeffpollockjr/unique-number-api/xerrors"
)

// Options 加载器选项
type Options struct {
	Name      string   // 配置文件名（不含扩展名，默认: "config"）
	FileType  string   // 配置文件类型（默认: "yaml"）
	Paths     []string // 搜索路径（默认: ["."]）
	EnvPrefix string   // 环境变量前缀（默认: "UNA"）
}

// setDefaults 设置默认值
func (o *Options) setDefaults() {
	if o.Name == "" {
		o.Name = "config"
	}
	if o.FileType == "" {
		o.FileType = "yaml"
	}
	if len(o.Paths) == 0 {
		o.Paths = []string{"."}
	}
	if o.EnvPrefix == "" {
		o.EnvPrefix = "UNA"
	}
}

// Loader 配置加载器
type Loader struct {
	v    *viper.Viper
	opts *Options

	mu               sync.Mutex
	logLevelWatchers []func(level string)
	lastLogLevel     string
}

// NewLoader 创建配置加载器
func NewLoader(opts *Options) *Loader {
	if opts == nil {
		opts = &Options{}
	}
	opts.setDefaults()

	return &Loader{
		v:    viper.New(),
		opts: opts,
	}
}

// Load 初始化并从所有来源加载配置
//
// 找不到配置文件不是错误：默认值加环境变量足以启动服务。
func (l *Loader) Load() (*AppConfig, error) {
	// 1. 配置 Viper
	l.v.SetConfigName(l.opts.Name)
	l.v.SetConfigType(l.opts.FileType)
	for _, path := range l.opts.Paths {
		l.v.AddConfigPath(path)
	}

	// 2. 环境变量（最高优先级）- 先设置，确保能捕获所有环境变量
	l.v.SetEnvPrefix(l.opts.EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	// AutomaticEnv 只覆盖 Viper 已知的键，必须先注册全部默认值
	l.registerDefaults()

	// 3. 尝试加载 .env 文件 - 在配置文件之前加载
	l.loadDotEnv()

	// 4. 加载配置文件（最低优先级）
	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, xerrors.Wrapf(err, "failed to read config file %s", l.opts.Name)
		}
	}

	cfg, err := l.unmarshal()
	if err != nil {
		return nil, err
	}
	l.lastLogLevel = cfg.Log.Level

	// 5. 启动文件监听，目前仅日志级别支持热更新
	l.v.OnConfigChange(func(e fsnotify.Event) {
		l.notifyLogLevel()
	})
	l.v.WatchConfig()

	return cfg, nil
}

// OnLogLevelChange 注册日志级别变更回调
//
// 配置文件被修改且 log.level 实际发生变化时触发。
func (l *Loader) OnLogLevelChange(fn func(level string)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logLevelWatchers = append(l.logLevelWatchers, fn)
}

// registerDefaults 向 Viper 注册所有已知配置键的默认值（内部使用）
func (l *Loader) registerDefaults() {
	l.v.SetDefault("server.addr", ":8080")
	l.v.SetDefault("server.mode", "release")
	l.v.SetDefault("server.read_timeout", "10s")
	l.v.SetDefault("server.write_timeout", "10s")
	l.v.SetDefault("server.shutdown_timeout", "10s")

	l.v.SetDefault("database.driver", "sqlite")
	l.v.SetDefault("database.sqlite.path", "data/numbers.db")

	l.v.SetDefault("allocator.max_attempts", 10)

	l.v.SetDefault("log.level", "info")
	l.v.SetDefault("log.format", "json")
	l.v.SetDefault("log.output", "stdout")

	l.v.SetDefault("metrics.enabled", false)
	l.v.SetDefault("metrics.service_name", "unique-number-api")
	l.v.SetDefault("metrics.port", 9090)
	l.v.SetDefault("metrics.path", "/metrics")
}

// unmarshal 反序列化并补全默认值（内部使用）
func (l *Loader) unmarshal() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, xerrors.Wrap(err, "failed to unmarshal config")
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, xerrors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// loadDotEnv 尝试从搜索路径加载 .env 文件（内部使用）
//
// .env 不存在是正常情况，静默忽略。
func (l *Loader) loadDotEnv() {
	_ = godotenv.Load()
	for _, path := range l.opts.Paths {
		_ = godotenv.Load(filepath.Join(path, ".env"))
	}
}

// notifyLogLevel 配置文件变更后比对日志级别并通知监听者（内部使用）
func (l *Loader) notifyLogLevel() {
	newLevel := l.v.GetString("log.level")

	l.mu.Lock()
	defer l.mu.Unlock()

	if newLevel == "" || newLevel == l.lastLogLevel {
		return
	}
	l.lastLogLevel = newLevel

	for _, fn := range l.logLevelWatchers {
		fn(newLevel)
	}
}
