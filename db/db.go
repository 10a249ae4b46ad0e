// Package db 提供基于 GORM 的数据库组件。
//
// db 组件在关系型连接器的基础上提供：
// - GORM ORM 功能封装
// - 事务管理支持
// - 与日志组件的深度集成（SQL 日志桥接到 clog）
//
// ## 基本使用
//
//	conn, _ := connector.NewSQLite(&cfg.SQLite, connector.WithLogger(logger))
//	conn.Connect(ctx)
//	defer conn.Close()
//
//	database, _ := db.New(conn, db.WithLogger(logger))
//
//	gormDB := database.DB(ctx)
//	var rows []Number
//	gormDB.Where("value = ?", v).Find(&rows)
//
//	err := database.Transaction(ctx, func(ctx context.Context, tx *gorm.DB) error {
//		return tx.Create(&Number{Value: v}).Error
//	})
//
// ## 设计原则
//
// - **借用模型**：db 组件借用连接器的连接，不负责连接的生命周期
// - **显式依赖**：通过构造函数显式注入连接器和选项
// - **简单设计**：使用 Go 原生模式，避免复杂的抽象
package db

import (
	"context"

	"github.com/jeffpollockjr/unique-number-api/clog"
	"github.com/jeffpollockjr/unique-number-api/connector"
	"github.com/jeffpollockjr/unique-number-api/xerrors"
	"gorm.io/gorm"
)

// database 是 DB 接口的实现
type database struct {
	client *gorm.DB
	logger clog.Logger
}

// DB 定义了数据库组件的核心能力
type DB interface {
	// DB 获取底层的 *gorm.DB 实例
	// 绝大多数业务查询直接使用此方法返回的对象
	DB(ctx context.Context) *gorm.DB

	// Transaction 执行事务操作
	// fn 中的 tx 对象仅在当前事务范围内有效
	Transaction(ctx context.Context, fn func(ctx context.Context, tx *gorm.DB) error) error

	// Close 关闭组件
	Close() error
}

// New 创建数据库组件实例
//
// 参数:
//   - conn: 关系型连接器（SQLite/MySQL/PostgreSQL 均可）
//   - opts: 可选参数 (Logger, SilentMode)
func New(conn connector.TypedConnector[*gorm.DB], opts ...Option) (DB, error) {
	if conn == nil {
		return nil, ErrConnectorRequired
	}

	// 应用选项
	opt := options{}
	for _, o := range opts {
		o(&opt)
	}

	// 如果没有提供 Logger，使用默认配置创建
	if opt.logger == nil {
		logger, err := clog.New(&clog.Config{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		})
		if err != nil {
			return nil, xerrors.Wrapf(err, "failed to create default logger")
		}
		opt.logger = logger.WithNamespace("db")
	}

	gormDB := conn.GetClient()
	if gormDB == nil {
		return nil, ErrNotConnected
	}

	// 将 GORM 的 SQL 日志桥接到 clog
	gormDB = gormDB.Session(&gorm.Session{
		Logger: newGormLogger(opt.logger, opt.silentMode),
	})

	return &database{
		client: gormDB,
		logger: opt.logger,
	}, nil
}

// DB 获取底层的 *gorm.DB 实例
func (d *database) DB(ctx context.Context) *gorm.DB {
	return d.client.WithContext(ctx)
}

// Transaction 执行事务操作
func (d *database) Transaction(ctx context.Context, fn func(ctx context.Context, tx *gorm.DB) error) error {
	return d.client.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, tx)
	})
}

// Close 关闭组件
func (d *database) Close() error {
	// GORM 的连接由连接器管理，这里不需要额外关闭
	return nil
}
