package connector

import (
	"fmt"
	"time"
)

// SQLiteConfig SQLite连接配置
type SQLiteConfig struct {
	// 基础配置（可选，有默认值）
	Name string `mapstructure:"name"` // 连接器名称 (默认: "default")

	// 核心配置
	Path string `mapstructure:"path"` // [必填] 数据库文件路径，或 "file::memory:?cache=shared"
}

// setDefaults 设置默认值
func (c *SQLiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "default"
	}
}

// validate 实现 Configurable 接口
func (c *SQLiteConfig) validate() error {
	c.setDefaults()
	if c.Path == "" {
		return fmt.Errorf("sqlite path cannot be empty")
	}
	return nil
}

// MySQLConfig MySQL连接配置
type MySQLConfig struct {
	// 基础配置（可选，有默认值）
	Name string `mapstructure:"name"` // 连接器名称 (默认: "default")

	// 核心配置
	DSN      string `mapstructure:"dsn"`      // 完整 DSN (可选，若提供则忽略 Host/Port 等，优先级最高)
	Host     string `mapstructure:"host"`     // [必填] 主机地址
	Port     int    `mapstructure:"port"`     // [必填] 端口 (默认: 3306)
	Username string `mapstructure:"username"` // [必填] 用户名
	Password string `mapstructure:"password"` // [必填] 密码
	Database string `mapstructure:"database"` // [必填] 数据库名

	// 高级配置（可选，有默认值）
	Charset         string        `mapstructure:"charset"`           // 字符集 (默认: "utf8mb4")
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数 (默认: 10)
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数 (默认: 100)
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大生命周期 (默认: 1h)
}

// setDefaults 设置默认值
func (c *MySQLConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "default"
	}
	if c.Port == 0 {
		c.Port = 3306
	}
	if c.Charset == "" {
		c.Charset = "utf8mb4"
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = 10
	}
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = 100
	}
	if c.ConnMaxLifetime == 0 {
		c.ConnMaxLifetime = time.Hour
	}
}

// validate 实现 Configurable 接口
func (c *MySQLConfig) validate() error {
	c.setDefaults()
	if c.DSN != "" {
		return nil
	}
	if c.Host == "" {
		return fmt.Errorf("mysql host cannot be empty")
	}
	if c.Port <= 0 {
		return fmt.Errorf("mysql port must be greater than 0")
	}
	if c.Username == "" {
		return fmt.Errorf("mysql username cannot be empty")
	}
	if c.Database == "" {
		return fmt.Errorf("mysql database cannot be empty")
	}
	return nil
}

// PostgreSQLConfig PostgreSQL连接配置
type PostgreSQLConfig struct {
	// 基础配置（可选，有默认值）
	Name string `mapstructure:"name"` // 连接器名称 (默认: "default")

	// 核心配置
	DSN      string `mapstructure:"dsn"`      // 完整 DSN (可选，优先级最高)
	Host     string `mapstructure:"host"`     // [必填] 主机地址
	Port     int    `mapstructure:"port"`     // [必填] 端口 (默认: 5432)
	Username string `mapstructure:"username"` // [必填] 用户名
	Password string `mapstructure:"password"` // [必填] 密码
	Database string `mapstructure:"database"` // [必填] 数据库名

	// 高级配置（可选，有默认值）
	SSLMode         string        `mapstructure:"ssl_mode"`          // SSL 模式 (默认: "disable")
	Timezone        string        `mapstructure:"timezone"`          // 时区 (默认: "UTC")
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数 (默认: 10)
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数 (默认: 100)
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大生命周期 (默认: 1h)
}

// setDefaults 设置默认值
func (c *PostgreSQLConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "default"
	}
	if c.Port == 0 {
		c.Port = 5432
	}
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = 10
	}
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = 100
	}
	if c.ConnMaxLifetime == 0 {
		c.ConnMaxLifetime = time.Hour
	}
}

// validate 实现 Configurable 接口
func (c *PostgreSQLConfig) validate() error {
	c.setDefaults()
	if c.DSN != "" {
		return nil
	}
	if c.Host == "" {
		return fmt.Errorf("postgresql host cannot be empty")
	}
	if c.Port <= 0 {
		return fmt.Errorf("postgresql port must be greater than 0")
	}
	if c.Username == "" {
		return fmt.Errorf("postgresql username cannot be empty")
	}
	if c.Database == "" {
		return fmt.Errorf("postgresql database cannot be empty")
	}
	return nil
}
