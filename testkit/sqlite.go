package testkit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeffpollockjr/unique-number-api/connector"
	"github.com/jeffpollockjr/unique-number-api/db"
)

// NewSQLiteConfig 返回 SQLite 内存数据库配置
// 每次调用使用独立的内存库名，避免测试间数据串扰
func NewSQLiteConfig() *connector.SQLiteConfig {
	return &connector.SQLiteConfig{
		Path: "file:" + NewID() + "?mode=memory&cache=shared",
	}
}

// NewSQLiteConnector 获取 SQLite 连接器（内存数据库）
// 生命周期由 t.Cleanup 管理
func NewSQLiteConnector(t *testing.T) connector.SQLiteConnector {
	cfg := NewSQLiteConfig()
	conn, err := connector.NewSQLite(cfg, connector.WithLogger(NewLogger()))
	require.NoError(t, err, "failed to create sqlite connector")

	err = conn.Connect(context.Background())
	require.NoError(t, err, "failed to connect to sqlite")

	t.Cleanup(func() {
		_ = conn.Close()
	})

	return conn
}

// NewSQLiteDB 获取借用内存数据库连接的 db 实例
func NewSQLiteDB(t *testing.T) db.DB {
	conn := NewSQLiteConnector(t)
	database, err := db.New(conn, db.WithLogger(NewLogger()), db.WithSilentMode())
	require.NoError(t, err, "failed to create db")
	return database
}
