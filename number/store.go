package number

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/jeffpollockjr/unique-number-api/db"
	"github.com/jeffpollockjr/unique-number-api/xerrors"
)

// Store 定义 Allocator 依赖的存储契约。
//
// 每个方法对应一条独立的数据库语句，不存在跨语句事务；
// 唯一约束冲突是 Insert 唯一需要区分的错误信号。
type Store interface {
	// Insert 原子地"不存在则插入"。
	// 唯一约束冲突返回 ErrConflict，其他存储错误原样向上传递。
	Insert(ctx context.Context, value int64, tag string) (*Number, error)

	// FindByValue 按精确值查找，不存在时返回 ErrNotFound。
	FindByValue(ctx context.Context, value int64) (*Number, error)

	// Count 返回当前存储的记录总数。
	Count(ctx context.Context) (int64, error)

	// DeleteByValue 删除精确匹配的一行并返回被删除的记录，
	// 没有匹配时返回 ErrNotFound。
	DeleteByValue(ctx context.Context, value int64) (*Number, error)

	// DeleteOlderThan 批量删除 created_at 早于 cutoff 的行，返回删除数。
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteAll 清空集合，返回删除数。
	DeleteAll(ctx context.Context) (int64, error)

	// AutoMigrate 建表并创建唯一索引。启动时调用一次，
	// 失败则服务不得开始接受请求。
	AutoMigrate(ctx context.Context) error
}

// gormStore 基于 GORM 的 Store 实现，借用 db 组件的连接
type gormStore struct {
	database db.DB
}

// NewStore 创建基于 GORM 的存储实例
//
// 借用模型：store 不负责连接的生命周期。
func NewStore(database db.DB) Store {
	return &gormStore{database: database}
}

// AutoMigrate 建表并创建唯一索引
func (s *gormStore) AutoMigrate(ctx context.Context) error {
	if err := s.database.DB(ctx).AutoMigrate(&Number{}); err != nil {
		return xerrors.Wrap(err, "migrate numbers table")
	}
	return nil
}

// Insert 单条插入，依赖唯一索引做冲突检测
func (s *gormStore) Insert(ctx context.Context, value int64, tag string) (*Number, error) {
	n := &Number{Value: value, Tag: tag}
	if err := s.database.DB(ctx).Create(n).Error; err != nil {
		// 连接器开启了 TranslateError，唯一约束冲突统一表现为 ErrDuplicatedKey
		if xerrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, xerrors.Wrapf(ErrConflict, "value %d", value)
		}
		return nil, err
	}
	return n, nil
}

// FindByValue 按精确值查找
func (s *gormStore) FindByValue(ctx context.Context, value int64) (*Number, error) {
	var n Number
	err := s.database.DB(ctx).Where("value = ?", value).First(&n).Error
	if err != nil {
		if xerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerrors.Wrapf(ErrNotFound, "value %d", value)
		}
		return nil, err
	}
	return &n, nil
}

// Count 返回记录总数
func (s *gormStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.database.DB(ctx).Model(&Number{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteByValue 删除精确匹配的一行并返回被删除的记录
func (s *gormStore) DeleteByValue(ctx context.Context, value int64) (*Number, error) {
	n, err := s.FindByValue(ctx, value)
	if err != nil {
		return nil, err
	}

	res := s.database.DB(ctx).Where("value = ?", value).Delete(&Number{})
	if res.Error != nil {
		return nil, res.Error
	}
	// 查找和删除之间被并发删除时按未找到处理
	if res.RowsAffected == 0 {
		return nil, xerrors.Wrapf(ErrNotFound, "value %d", value)
	}
	return n, nil
}

// DeleteOlderThan 批量删除早于 cutoff 的行
func (s *gormStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.database.DB(ctx).Where("created_at < ?", cutoff).Delete(&Number{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// DeleteAll 清空集合
func (s *gormStore) DeleteAll(ctx context.Context) (int64, error) {
	res := s.database.DB(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Number{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
