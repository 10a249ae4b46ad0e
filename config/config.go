// Package config 提供应用配置的加载与热更新能力。
//
// 配置来源与优先级（从高到低）：
//  1. 环境变量（UNA_ 前缀，"." 映射为 "_"，如 UNA_SERVER_ADDR）
//  2. .env 文件（godotenv 加载后进入环境变量）
//  3. 配置文件（yaml，默认 config.yaml）
//  4. 代码内默认值
//
// 基本使用：
//
//	loader := config.NewLoader(&config.Options{Paths: []string{"."}})
//	cfg, err := loader.Load()
//	if err != nil {
//	    panic(err)
//	}
//
// 日志级别热更新：
//
//	loader.OnLogLevelChange(func(level string) {
//	    _ = logger.SetLevel(mustParse(level))
//	})
package config

import (
	"fmt"
	"time"

	"github.com/jeffpollockjr/unique-number-api/clog"
	"github.com/jeffpollockjr/unique-number-api/connector"
	"github.com/jeffpollockjr/unique-number-api/metrics"
)

// AppConfig 应用的完整配置
type AppConfig struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Allocator AllocatorConfig `mapstructure:"allocator"`
	Log       clog.Config     `mapstructure:"log"`
	Metrics   metrics.Config  `mapstructure:"metrics"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`             // 监听地址 (默认: ":8080")
	Mode            string        `mapstructure:"mode"`             // gin 模式: debug|release|test (默认: "release")
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`     // 读超时 (默认: 10s)
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`    // 写超时 (默认: 10s)
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"` // 优雅关闭超时 (默认: 10s)
}

// DatabaseConfig 数据库配置，Driver 决定使用哪个连接器
type DatabaseConfig struct {
	Driver   string                     `mapstructure:"driver"` // sqlite|mysql|postgres (默认: "sqlite")
	SQLite   connector.SQLiteConfig     `mapstructure:"sqlite"`
	MySQL    connector.MySQLConfig      `mapstructure:"mysql"`
	Postgres connector.PostgreSQLConfig `mapstructure:"postgres"`
}

// AllocatorConfig 分配器配置
type AllocatorConfig struct {
	MaxAttempts int `mapstructure:"max_attempts"` // 单次分配最大尝试次数 (默认: 10)
}

// SetDefaults 设置配置的默认值
func (c *AppConfig) SetDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}

	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.SQLite.Path == "" {
		c.Database.SQLite.Path = "data/numbers.db"
	}

	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "unique-number-api"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// Validate 验证配置的有效性
func (c *AppConfig) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported database driver: %s (must be sqlite, mysql or postgres)", c.Database.Driver)
	}

	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unsupported server mode: %s", c.Server.Mode)
	}

	if c.Allocator.MaxAttempts < 0 {
		return fmt.Errorf("allocator max_attempts cannot be negative")
	}

	return nil
}
