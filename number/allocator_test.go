package number

import (
	"context"
	"testing"
	"time"

	"github.com/jeffpollockjr/unique-number-api/xerrors"
)

// stubStore 用函数字段打桩的 Store，未设置的方法直接 panic
type stubStore struct {
	insert          func(ctx context.Context, value int64, tag string) (*Number, error)
	findByValue     func(ctx context.Context, value int64) (*Number, error)
	count           func(ctx context.Context) (int64, error)
	deleteByValue   func(ctx context.Context, value int64) (*Number, error)
	deleteOlderThan func(ctx context.Context, cutoff time.Time) (int64, error)
	deleteAll       func(ctx context.Context) (int64, error)
}

func (s *stubStore) Insert(ctx context.Context, value int64, tag string) (*Number, error) {
	return s.insert(ctx, value, tag)
}

func (s *stubStore) FindByValue(ctx context.Context, value int64) (*Number, error) {
	return s.findByValue(ctx, value)
}

func (s *stubStore) Count(ctx context.Context) (int64, error) {
	return s.count(ctx)
}

func (s *stubStore) DeleteByValue(ctx context.Context, value int64) (*Number, error) {
	return s.deleteByValue(ctx, value)
}

func (s *stubStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.deleteOlderThan(ctx, cutoff)
}

func (s *stubStore) DeleteAll(ctx context.Context) (int64, error) {
	return s.deleteAll(ctx)
}

func (s *stubStore) AutoMigrate(ctx context.Context) error {
	return nil
}

func newTestAllocator(t *testing.T, store Store, cfg *Config) *Allocator {
	t.Helper()
	alloc, err := NewAllocator(store, cfg)
	if err != nil {
		t.Fatalf("failed to create allocator: %v", err)
	}
	return alloc
}

func TestNewAllocator(t *testing.T) {
	t.Run("nil store", func(t *testing.T) {
		_, err := NewAllocator(nil, nil)
		if err == nil {
			t.Fatal("expected error for nil store")
		}
	})

	t.Run("default max attempts", func(t *testing.T) {
		alloc := newTestAllocator(t, &stubStore{}, nil)
		if alloc.cfg.MaxAttempts != 10 {
			t.Errorf("expected default max attempts 10, got %d", alloc.cfg.MaxAttempts)
		}
	})
}

func TestAllocate(t *testing.T) {
	ctx := context.Background()

	t.Run("success first attempt", func(t *testing.T) {
		alloc := newTestAllocator(t, &stubStore{
			insert: func(ctx context.Context, value int64, tag string) (*Number, error) {
				return &Number{Value: value, Tag: tag}, nil
			},
		}, nil)

		n, err := alloc.Allocate(ctx, "order-service")
		if err != nil {
			t.Fatalf("allocate failed: %v", err)
		}
		if !InRange(n.Value) {
			t.Errorf("value %d outside keyspace", n.Value)
		}
		if n.Tag != "order-service" {
			t.Errorf("expected tag to pass through, got %q", n.Tag)
		}
	})

	t.Run("candidates always in range", func(t *testing.T) {
		alloc := newTestAllocator(t, &stubStore{
			insert: func(ctx context.Context, value int64, tag string) (*Number, error) {
				if !InRange(value) {
					t.Errorf("candidate %d outside keyspace", value)
				}
				return &Number{Value: value}, nil
			},
		}, nil)

		for i := 0; i < 1000; i++ {
			if _, err := alloc.Allocate(ctx, ""); err != nil {
				t.Fatalf("allocate failed: %v", err)
			}
		}
	})

	t.Run("retries on conflict", func(t *testing.T) {
		attempts := 0
		alloc := newTestAllocator(t, &stubStore{
			insert: func(ctx context.Context, value int64, tag string) (*Number, error) {
				attempts++
				if attempts < 3 {
					return nil, xerrors.Wrapf(ErrConflict, "value %d", value)
				}
				return &Number{Value: value}, nil
			},
		}, nil)

		if _, err := alloc.Allocate(ctx, ""); err != nil {
			t.Fatalf("allocate failed: %v", err)
		}
		if attempts != 3 {
			t.Errorf("expected 3 attempts, got %d", attempts)
		}
	})

	t.Run("exhausted after max attempts", func(t *testing.T) {
		attempts := 0
		alloc := newTestAllocator(t, &stubStore{
			insert: func(ctx context.Context, value int64, tag string) (*Number, error) {
				attempts++
				return nil, xerrors.Wrapf(ErrConflict, "value %d", value)
			},
		}, &Config{MaxAttempts: 5})

		_, err := alloc.Allocate(ctx, "")
		if !xerrors.Is(err, ErrExhausted) {
			t.Fatalf("expected ErrExhausted, got %v", err)
		}
		if attempts != 5 {
			t.Errorf("expected 5 attempts, got %d", attempts)
		}
	})

	t.Run("non-conflict error propagates immediately", func(t *testing.T) {
		storeErr := xerrors.New("connection reset")
		attempts := 0
		alloc := newTestAllocator(t, &stubStore{
			insert: func(ctx context.Context, value int64, tag string) (*Number, error) {
				attempts++
				return nil, storeErr
			},
		}, nil)

		_, err := alloc.Allocate(ctx, "")
		if !xerrors.Is(err, storeErr) {
			t.Fatalf("expected store error, got %v", err)
		}
		if xerrors.Is(err, ErrExhausted) {
			t.Error("store failure must not be reported as exhaustion")
		}
		if attempts != 1 {
			t.Errorf("expected no retry on store failure, got %d attempts", attempts)
		}
	})
}

func TestExists(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		alloc := newTestAllocator(t, &stubStore{
			findByValue: func(ctx context.Context, value int64) (*Number, error) {
				return &Number{Value: value}, nil
			},
		}, nil)

		n, exists, err := alloc.Exists(ctx, 123456789)
		if err != nil {
			t.Fatalf("exists failed: %v", err)
		}
		if !exists || n == nil {
			t.Fatal("expected value to exist")
		}
	})

	t.Run("not found is not an error", func(t *testing.T) {
		alloc := newTestAllocator(t, &stubStore{
			findByValue: func(ctx context.Context, value int64) (*Number, error) {
				return nil, xerrors.Wrapf(ErrNotFound, "value %d", value)
			},
		}, nil)

		n, exists, err := alloc.Exists(ctx, 123456789)
		if err != nil {
			t.Fatalf("exists failed: %v", err)
		}
		if exists || n != nil {
			t.Fatal("expected value to be absent")
		}
	})

	t.Run("store error propagates", func(t *testing.T) {
		storeErr := xerrors.New("timeout")
		alloc := newTestAllocator(t, &stubStore{
			findByValue: func(ctx context.Context, value int64) (*Number, error) {
				return nil, storeErr
			},
		}, nil)

		_, _, err := alloc.Exists(ctx, 123456789)
		if !xerrors.Is(err, storeErr) {
			t.Fatalf("expected store error, got %v", err)
		}
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("out of range rejected before store", func(t *testing.T) {
		alloc := newTestAllocator(t, &stubStore{
			deleteByValue: func(ctx context.Context, value int64) (*Number, error) {
				t.Fatal("store must not be touched for out-of-range values")
				return nil, nil
			},
		}, nil)

		for _, value := range []int64{0, -1, MinValue - 1, MaxValue + 1} {
			_, err := alloc.Delete(ctx, value)
			if !xerrors.Is(err, ErrOutOfRange) {
				t.Errorf("value %d: expected ErrOutOfRange, got %v", value, err)
			}
		}
	})

	t.Run("deletes in-range value", func(t *testing.T) {
		alloc := newTestAllocator(t, &stubStore{
			deleteByValue: func(ctx context.Context, value int64) (*Number, error) {
				return &Number{Value: value}, nil
			},
		}, nil)

		n, err := alloc.Delete(ctx, MinValue)
		if err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if n.Value != MinValue {
			t.Errorf("expected deleted value %d, got %d", MinValue, n.Value)
		}
	})
}

func TestDeleteOlderThan(t *testing.T) {
	ctx := context.Background()

	t.Run("negative age rejected before store", func(t *testing.T) {
		alloc := newTestAllocator(t, &stubStore{
			deleteOlderThan: func(ctx context.Context, cutoff time.Time) (int64, error) {
				t.Fatal("store must not be touched for negative age")
				return 0, nil
			},
		}, nil)

		_, err := alloc.DeleteOlderThan(ctx, -1)
		if !xerrors.Is(err, ErrOutOfRange) {
			t.Fatalf("expected ErrOutOfRange, got %v", err)
		}
	})

	t.Run("cutoff is now minus age days", func(t *testing.T) {
		var gotCutoff time.Time
		alloc := newTestAllocator(t, &stubStore{
			deleteOlderThan: func(ctx context.Context, cutoff time.Time) (int64, error) {
				gotCutoff = cutoff
				return 7, nil
			},
		}, nil)

		deleted, err := alloc.DeleteOlderThan(ctx, 30)
		if err != nil {
			t.Fatalf("delete older than failed: %v", err)
		}
		if deleted != 7 {
			t.Errorf("expected 7 deleted, got %d", deleted)
		}

		want := time.Now().AddDate(0, 0, -30)
		if diff := want.Sub(gotCutoff); diff < -time.Minute || diff > time.Minute {
			t.Errorf("cutoff %v too far from expected %v", gotCutoff, want)
		}
	})
}

func TestDeleteAll(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong token rejected before store", func(t *testing.T) {
		alloc := newTestAllocator(t, &stubStore{
			deleteAll: func(ctx context.Context) (int64, error) {
				t.Fatal("store must not be touched without valid token")
				return 0, nil
			},
		}, nil)

		for _, token := range []string{"", "delete_all_numbers", "DELETE_ALL", "DELETE_ALL_NUMBERS "} {
			_, err := alloc.DeleteAll(ctx, token)
			if !xerrors.Is(err, ErrForbidden) {
				t.Errorf("token %q: expected ErrForbidden, got %v", token, err)
			}
		}
	})

	t.Run("valid token clears collection", func(t *testing.T) {
		alloc := newTestAllocator(t, &stubStore{
			deleteAll: func(ctx context.Context) (int64, error) {
				return 42, nil
			},
		}, nil)

		deleted, err := alloc.DeleteAll(ctx, ConfirmationToken)
		if err != nil {
			t.Fatalf("delete all failed: %v", err)
		}
		if deleted != 42 {
			t.Errorf("expected 42 deleted, got %d", deleted)
		}
	})
}
