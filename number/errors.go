package number

import "github.com/jeffpollockjr/unique-number-api/xerrors"

var (
	// ErrConflict 存储层报告的唯一约束冲突，仅在 Allocate 内部消化
	ErrConflict = xerrors.New("number: value already claimed")

	// ErrExhausted 重试次数耗尽仍未分配成功，意味着键空间接近饱和
	ErrExhausted = xerrors.New("number: allocation attempts exhausted")

	// ErrNotFound 目标数值不存在
	ErrNotFound = xerrors.New("number: not found")

	// ErrOutOfRange 输入值落在键空间之外
	ErrOutOfRange = xerrors.New("number: value out of range")

	// ErrForbidden 全量删除的确认口令缺失或不匹配
	ErrForbidden = xerrors.New("number: confirmation token mismatch")
)
