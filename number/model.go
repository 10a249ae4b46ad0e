// Package number 实现唯一随机数的分配与管理。
//
// 核心组件是 Allocator：在固定键空间 [111111111, 999999999] 内随机抽取候选值，
// 依赖存储层的唯一约束做原子的"不存在则插入"，冲突时在有限次数内重试。
// 唯一性的正确性完全由存储层的冲突检测保证，重试循环只处理本地失败的后果；
// 进程内不持有任何锁或已见值缓存。
//
// ## 基本使用
//
//	store := number.NewStore(database)
//	alloc, _ := number.NewAllocator(store, nil, number.WithLogger(logger))
//
//	n, err := alloc.Allocate(ctx, "")
//	if xerrors.Is(err, number.ErrExhausted) {
//	    // 键空间接近饱和
//	}
package number

import "time"

// 键空间边界。所有分配的值都落在闭区间 [MinValue, MaxValue] 内。
const (
	MinValue int64 = 111111111
	MaxValue int64 = 999999999

	// KeyspaceSize 键空间大小：MaxValue - MinValue + 1
	KeyspaceSize int64 = MaxValue - MinValue + 1
)

// DefaultRetentionDays 年龄清理的默认阈值（五年）
const DefaultRetentionDays = 1825

// ConfirmationToken 全量删除的确认口令。
//
// 这只是字面量字符串比较，不是真正的鉴权，仅用于防止误触发；
// 为保持与既有客户端的兼容性而原样保留。
const ConfirmationToken = "DELETE_ALL_NUMBERS"

// Number 一条已被认领的唯一数值记录
type Number struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Value     int64     `gorm:"uniqueIndex;not null" json:"value"`
	Tag       string    `gorm:"size:255" json:"tag,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (Number) TableName() string {
	return "numbers"
}

// InRange 判断 v 是否落在键空间内
func InRange(v int64) bool {
	return v >= MinValue && v <= MaxValue
}
