package number

import (
	"context"
	"testing"
)

func TestFormatPercentage(t *testing.T) {
	tests := []struct {
		name  string
		count int64
		want  string
	}{
		// 空集合输出裸 "0%"，非空集合固定六位小数
		{name: "empty collection", count: 0, want: "0%"},
		{name: "single value rounds to zero", count: 1, want: "0.000000%"},
		{name: "one percent-ish", count: 8888889, want: "1.000000%"},
		{name: "half keyspace", count: 444444445, want: "50.000000%"},
		{name: "full keyspace", count: KeyspaceSize, want: "100.000000%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatPercentage(tt.count)
			if got != tt.want {
				t.Errorf("formatPercentage(%d) = %q, want %q", tt.count, got, tt.want)
			}
		})
	}
}

func TestStats(t *testing.T) {
	alloc := newTestAllocator(t, &stubStore{
		count: func(ctx context.Context) (int64, error) {
			return 3, nil
		},
	}, nil)

	stats, err := alloc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}

	if stats.TotalGenerated != 3 {
		t.Errorf("expected total generated 3, got %d", stats.TotalGenerated)
	}
	if stats.TotalPossible != KeyspaceSize {
		t.Errorf("expected total possible %d, got %d", KeyspaceSize, stats.TotalPossible)
	}
	if stats.PercentageUsed != "0.000000%" {
		t.Errorf("expected percentage 0.000000%%, got %q", stats.PercentageUsed)
	}
}
