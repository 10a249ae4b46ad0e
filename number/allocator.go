package number

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/jeffpollockjr/unique-number-api/clog"
	"github.com/jeffpollockjr/unique-number-api/metrics"
	"github.com/jeffpollockjr/unique-number-api/xerrors"
)

// Config Allocator 配置
type Config struct {
	// MaxAttempts 单次分配允许的最大尝试次数 (默认: 10)
	MaxAttempts int `mapstructure:"max_attempts"`
}

// setDefaults 设置配置的默认值（内部使用）
func (c *Config) setDefaults() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 10
	}
}

// Allocator 唯一数值分配器。
//
// Allocator 自身无状态，多个请求可以并发调用其全部方法；
// 并发插入的正确性完全由存储层的唯一约束保证。
type Allocator struct {
	store  Store
	cfg    *Config
	logger clog.Logger

	allocAttempts  metrics.Counter
	allocExhausted metrics.Counter
}

// NewAllocator 创建分配器实例
//
// 参数:
//   - store: 存储实现
//   - cfg: 配置，nil 时使用默认值
//   - opts: 可选参数 (Logger, Meter)
func NewAllocator(store Store, cfg *Config, opts ...Option) (*Allocator, error) {
	if store == nil {
		return nil, xerrors.New("number: store is required")
	}

	if cfg == nil {
		cfg = &Config{}
	}
	cfg.setDefaults()

	opt := options{}
	for _, o := range opts {
		o(&opt)
	}
	if opt.logger == nil {
		opt.logger = clog.Discard()
	}
	if opt.meter == nil {
		opt.meter = metrics.Discard()
	}

	allocAttempts, err := opt.meter.Counter("number_alloc_attempts_total", "Total allocation attempts by outcome.")
	if err != nil {
		return nil, xerrors.Wrap(err, "create alloc attempts counter")
	}
	allocExhausted, err := opt.meter.Counter("number_alloc_exhausted_total", "Allocations that exhausted all attempts.")
	if err != nil {
		return nil, xerrors.Wrap(err, "create alloc exhausted counter")
	}

	return &Allocator{
		store:          store,
		cfg:            cfg,
		logger:         opt.logger,
		allocAttempts:  allocAttempts,
		allocExhausted: allocExhausted,
	}, nil
}

// Allocate 分配一个尚未被认领的随机数值。
//
// 有界循环：随机抽取候选值并尝试插入，唯一约束冲突则换一个值重试；
// 任何非冲突的存储错误立即向上传递，不做重试。
// 尝试次数耗尽返回 ErrExhausted。
func (a *Allocator) Allocate(ctx context.Context, tag string) (*Number, error) {
	for attempt := 1; attempt <= a.cfg.MaxAttempts; attempt++ {
		candidate := MinValue + rand.Int64N(KeyspaceSize)

		n, err := a.store.Insert(ctx, candidate, tag)
		if err == nil {
			a.allocAttempts.Inc(ctx, metrics.L("outcome", "success"))
			a.logger.Debug("value allocated",
				clog.Int64("value", n.Value),
				clog.Int("attempt", attempt),
			)
			return n, nil
		}

		if xerrors.Is(err, ErrConflict) {
			a.allocAttempts.Inc(ctx, metrics.L("outcome", "conflict"))
			a.logger.Debug("allocation collision, retrying",
				clog.Int64("value", candidate),
				clog.Int("attempt", attempt),
			)
			continue
		}

		a.allocAttempts.Inc(ctx, metrics.L("outcome", "error"))
		a.logger.Error("allocation store failure", clog.Error(err))
		return nil, err
	}

	a.allocExhausted.Inc(ctx)
	a.logger.Warn("allocation exhausted, keyspace approaching saturation",
		clog.Int("max_attempts", a.cfg.MaxAttempts),
	)
	return nil, xerrors.Wrapf(ErrExhausted, "%d attempts", a.cfg.MaxAttempts)
}

// Exists 检查某个值是否已被认领，存在时返回完整记录。
//
// 不做范围校验：键空间之外的值永远查不到，自然返回 false。
func (a *Allocator) Exists(ctx context.Context, value int64) (*Number, bool, error) {
	n, err := a.store.FindByValue(ctx, value)
	if err != nil {
		if xerrors.Is(err, ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return n, true, nil
}

// Stats 返回键空间占用统计
func (a *Allocator) Stats(ctx context.Context) (*Stats, error) {
	count, err := a.store.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &Stats{
		TotalGenerated: count,
		TotalPossible:  KeyspaceSize,
		PercentageUsed: formatPercentage(count),
	}, nil
}

// Delete 删除精确匹配的一条记录并返回它。
//
// 键空间之外的值在触达存储之前即被拒绝（ErrOutOfRange）。
func (a *Allocator) Delete(ctx context.Context, value int64) (*Number, error) {
	if !InRange(value) {
		return nil, xerrors.Wrapf(ErrOutOfRange, "value %d", value)
	}

	n, err := a.store.DeleteByValue(ctx, value)
	if err != nil {
		return nil, err
	}

	a.logger.Info("value deleted", clog.Int64("value", n.Value))
	return n, nil
}

// DeleteOlderThan 批量删除创建时间早于 now - ageDays 天的记录，返回删除数。
//
// ageDays 为 0 时删除所有已有记录（created_at 均早于当前时刻）。
func (a *Allocator) DeleteOlderThan(ctx context.Context, ageDays int) (int64, error) {
	if ageDays < 0 {
		return 0, xerrors.Wrapf(ErrOutOfRange, "age days %d", ageDays)
	}

	cutoff := time.Now().AddDate(0, 0, -ageDays)
	deleted, err := a.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	a.logger.Info("stale values deleted",
		clog.Int("age_days", ageDays),
		clog.Int64("deleted", deleted),
	)
	return deleted, nil
}

// DeleteAll 清空整个集合，返回删除数。
//
// token 必须与 ConfirmationToken 完全一致，否则返回 ErrForbidden
// 且不触达存储。字面量字符串比较是唯一的保护措施。
func (a *Allocator) DeleteAll(ctx context.Context, token string) (int64, error) {
	if token != ConfirmationToken {
		return 0, ErrForbidden
	}

	deleted, err := a.store.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}

	a.logger.Warn("all values deleted", clog.Int64("deleted", deleted))
	return deleted, nil
}
