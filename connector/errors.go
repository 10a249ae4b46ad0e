package connector

import "github.com/jeffpollockjr/unique-number-api/xerrors"

// Sentinel Errors - 连接器专用的哨兵错误
var (
	ErrConnection  = xerrors.New("connector: connection failed")
	ErrClientNil   = xerrors.New("connector: client is nil")
	ErrConfig      = xerrors.New("connector: invalid config")
	ErrHealthCheck = xerrors.New("connector: health check failed")
)
