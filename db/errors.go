package db

import "github.com/jeffpollockjr/unique-number-api/xerrors"

var (
	// ErrConnectorRequired 连接器未提供
	ErrConnectorRequired = xerrors.New("db: connector is required")

	// ErrNotConnected 连接器尚未建立连接
	ErrNotConnected = xerrors.New("db: connector is not connected")
)
