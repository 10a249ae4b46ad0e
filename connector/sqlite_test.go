package connector

import (
	"context"
	"testing"
)

func TestSQLiteConnector(t *testing.T) {
	t.Run("nil config rejected", func(t *testing.T) {
		if _, err := NewSQLite(nil); err == nil {
			t.Fatal("expected error for nil config")
		}
	})

	t.Run("empty path rejected", func(t *testing.T) {
		if _, err := NewSQLite(&SQLiteConfig{}); err == nil {
			t.Fatal("expected error for empty path")
		}
	})

	t.Run("connect and health check", func(t *testing.T) {
		conn, err := NewSQLite(&SQLiteConfig{Path: "file:conn_test?mode=memory&cache=shared"})
		if err != nil {
			t.Fatalf("failed to create connector: %v", err)
		}
		t.Cleanup(func() { _ = conn.Close() })

		ctx := context.Background()
		if err := conn.Connect(ctx); err != nil {
			t.Fatalf("connect failed: %v", err)
		}
		// Connect 幂等，重复调用不报错
		if err := conn.Connect(ctx); err != nil {
			t.Fatalf("second connect failed: %v", err)
		}

		if err := conn.HealthCheck(ctx); err != nil {
			t.Fatalf("health check failed: %v", err)
		}
		if !conn.IsHealthy() {
			t.Error("expected connector to be healthy")
		}
		if conn.GetClient() == nil {
			t.Error("expected non-nil gorm client after connect")
		}
	})

	t.Run("client nil before connect", func(t *testing.T) {
		conn, err := NewSQLite(&SQLiteConfig{Path: "file:conn_test2?mode=memory&cache=shared"})
		if err != nil {
			t.Fatalf("failed to create connector: %v", err)
		}
		if conn.GetClient() != nil {
			t.Error("expected nil client before connect")
		}
		if conn.IsHealthy() {
			t.Error("expected unhealthy before connect")
		}
	})
}
