// 唯一随机数服务入口。
//
// 启动顺序：加载配置 -> 初始化日志与指标 -> 连接数据库并建表 ->
// 构建分配器与 HTTP 服务 -> 优雅关停。
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/jeffpollockjr/unique-number-api/api"
	"github.com/jeffpollockjr/unique-number-api/clog"
	"github.com/jeffpollockjr/unique-number-api/config"
	"github.com/jeffpollockjr/unique-number-api/connector"
	"github.com/jeffpollockjr/unique-number-api/db"
	"github.com/jeffpollockjr/unique-number-api/metrics"
	"github.com/jeffpollockjr/unique-number-api/number"
	"github.com/jeffpollockjr/unique-number-api/xerrors"
)

func main() {
	// 1. 配置
	loader := config.NewLoader(nil)
	cfg, err := loader.Load()
	if err != nil {
		panic(err)
	}

	// 2. 日志
	logger, err := clog.New(&cfg.Log, clog.WithNamespace("server"))
	if err != nil {
		panic(err)
	}
	defer logger.Flush()

	// 配置文件中的 log.level 支持热更新
	loader.OnLogLevelChange(func(level string) {
		lv, err := clog.ParseLevel(level)
		if err != nil {
			logger.Warn("invalid log level in config", clog.String("level", level))
			return
		}
		if err := logger.SetLevel(lv); err != nil {
			logger.Warn("failed to apply log level", clog.Error(err))
			return
		}
		logger.Info("log level updated", clog.String("level", level))
	})

	// 3. 指标
	meter, err := metrics.New(&cfg.Metrics, metrics.WithLogger(logger))
	if err != nil {
		logger.Fatal("failed to init metrics", clog.Error(err))
	}
	defer meter.Shutdown(context.Background())

	// 4. 数据库
	conn, err := newConnector(cfg, logger)
	if err != nil {
		logger.Fatal("failed to create database connector", clog.Error(err))
	}
	if err := conn.Connect(context.Background()); err != nil {
		logger.Fatal("failed to connect to database", clog.Error(err))
	}
	defer conn.Close()

	database, err := db.New(conn, db.WithLogger(logger))
	if err != nil {
		logger.Fatal("failed to create db", clog.Error(err))
	}

	store := number.NewStore(database)
	// 建表失败直接退出，不能在没有唯一约束的表上提供服务
	if err := store.AutoMigrate(context.Background()); err != nil {
		logger.Fatal("failed to migrate numbers table", clog.Error(err))
	}

	// 5. 分配器与 HTTP 服务
	alloc, err := number.NewAllocator(store,
		&number.Config{MaxAttempts: cfg.Allocator.MaxAttempts},
		number.WithLogger(logger),
		number.WithMeter(meter),
	)
	if err != nil {
		logger.Fatal("failed to create allocator", clog.Error(err))
	}

	gin.SetMode(cfg.Server.Mode)

	serverOpts := []api.Option{api.WithLogger(logger)}
	if cfg.Metrics.Enabled {
		httpMetrics, err := metrics.NewHTTPServerMetrics(meter, cfg.Metrics.ServiceName)
		if err != nil {
			logger.Fatal("failed to create http metrics", clog.Error(err))
		}
		serverOpts = append(serverOpts, api.WithHTTPMetrics(httpMetrics))
	}

	server, err := api.NewServer(alloc, serverOpts...)
	if err != nil {
		logger.Fatal("failed to create api server", clog.Error(err))
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("http server listening", clog.String("addr", cfg.Server.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", clog.Error(err))
		}
	}()

	// 6. 优雅关停
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", clog.Error(err))
	}
	logger.Info("server stopped")
}

// newConnector 按配置的驱动类型创建数据库连接器
func newConnector(cfg *config.AppConfig, logger clog.Logger) (connector.TypedConnector[*gorm.DB], error) {
	switch cfg.Database.Driver {
	case "sqlite":
		return connector.NewSQLite(&cfg.Database.SQLite, connector.WithLogger(logger))
	case "mysql":
		return connector.NewMySQL(&cfg.Database.MySQL, connector.WithLogger(logger))
	case "postgres":
		return connector.NewPostgreSQL(&cfg.Database.Postgres, connector.WithLogger(logger))
	default:
		return nil, xerrors.New("unsupported database driver: " + cfg.Database.Driver)
	}
}
