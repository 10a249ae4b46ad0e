package number

import (
	"context"
	"testing"
	"time"

	"github.com/jeffpollockjr/unique-number-api/testkit"
	"github.com/jeffpollockjr/unique-number-api/xerrors"
)

// newTestStore 返回一个已建表的内存数据库存储
func newTestStore(t *testing.T) Store {
	t.Helper()
	store := NewStore(testkit.NewSQLiteDB(t))
	if err := store.AutoMigrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return store
}

func TestStoreInsert(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	t.Run("insert new value", func(t *testing.T) {
		n, err := store.Insert(ctx, 123456789, "test")
		if err != nil {
			t.Fatalf("insert failed: %v", err)
		}
		if n.ID == 0 {
			t.Error("expected non-zero id after insert")
		}
		if n.Value != 123456789 {
			t.Errorf("expected value 123456789, got %d", n.Value)
		}
		if n.CreatedAt.IsZero() {
			t.Error("expected created_at to be set")
		}
	})

	t.Run("duplicate value returns conflict", func(t *testing.T) {
		_, err := store.Insert(ctx, 123456789, "other")
		if !xerrors.Is(err, ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})
}

func TestStoreFindByValue(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.Insert(ctx, 222222222, ""); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	t.Run("found", func(t *testing.T) {
		n, err := store.FindByValue(ctx, 222222222)
		if err != nil {
			t.Fatalf("find failed: %v", err)
		}
		if n.Value != 222222222 {
			t.Errorf("expected value 222222222, got %d", n.Value)
		}
	})

	t.Run("not found", func(t *testing.T) {
		_, err := store.FindByValue(ctx, 333333333)
		if !xerrors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestStoreCount(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected empty store, got %d", count)
	}

	for _, v := range []int64{111111111, 555555555, 999999999} {
		if _, err := store.Insert(ctx, v, ""); err != nil {
			t.Fatalf("insert %d failed: %v", v, err)
		}
	}

	count, err = store.Count(ctx)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected count 3, got %d", count)
	}
}

func TestStoreDeleteByValue(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.Insert(ctx, 444444444, "to-delete"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	t.Run("returns deleted record", func(t *testing.T) {
		n, err := store.DeleteByValue(ctx, 444444444)
		if err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if n.Value != 444444444 || n.Tag != "to-delete" {
			t.Errorf("unexpected deleted record: %+v", n)
		}

		if _, err := store.FindByValue(ctx, 444444444); !xerrors.Is(err, ErrNotFound) {
			t.Error("expected value to be gone after delete")
		}
	})

	t.Run("missing value returns not found", func(t *testing.T) {
		_, err := store.DeleteByValue(ctx, 444444444)
		if !xerrors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestStoreDeleteOlderThan(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, v := range []int64{111111111, 222222222} {
		if _, err := store.Insert(ctx, v, ""); err != nil {
			t.Fatalf("insert %d failed: %v", v, err)
		}
	}

	t.Run("past cutoff deletes nothing", func(t *testing.T) {
		deleted, err := store.DeleteOlderThan(ctx, time.Now().Add(-time.Hour))
		if err != nil {
			t.Fatalf("delete older than failed: %v", err)
		}
		if deleted != 0 {
			t.Errorf("expected 0 deleted, got %d", deleted)
		}
	})

	t.Run("future cutoff deletes everything", func(t *testing.T) {
		deleted, err := store.DeleteOlderThan(ctx, time.Now().Add(time.Hour))
		if err != nil {
			t.Fatalf("delete older than failed: %v", err)
		}
		if deleted != 2 {
			t.Errorf("expected 2 deleted, got %d", deleted)
		}
	})
}

func TestStoreDeleteAll(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, v := range []int64{111111111, 222222222, 333333333} {
		if _, err := store.Insert(ctx, v, ""); err != nil {
			t.Fatalf("insert %d failed: %v", v, err)
		}
	}

	deleted, err := store.DeleteAll(ctx)
	if err != nil {
		t.Fatalf("delete all failed: %v", err)
	}
	if deleted != 3 {
		t.Errorf("expected 3 deleted, got %d", deleted)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected empty store after delete all, got %d", count)
	}
}

// TestAllocateAgainstStore 分配器与真实存储的端到端校验：
// 唯一约束是唯一的同步点，连续分配不得产生重复值。
func TestAllocateAgainstStore(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	alloc, err := NewAllocator(store, nil, WithLogger(testkit.NewLogger()))
	if err != nil {
		t.Fatalf("failed to create allocator: %v", err)
	}

	seen := make(map[int64]bool)
	for i := 0; i < 200; i++ {
		n, err := alloc.Allocate(ctx, "e2e")
		if err != nil {
			t.Fatalf("allocate %d failed: %v", i, err)
		}
		if !InRange(n.Value) {
			t.Fatalf("value %d outside keyspace", n.Value)
		}
		if seen[n.Value] {
			t.Fatalf("duplicate value allocated: %d", n.Value)
		}
		seen[n.Value] = true
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 200 {
		t.Errorf("expected 200 stored values, got %d", count)
	}
}
