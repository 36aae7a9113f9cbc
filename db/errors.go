package db

import "github.com/wenqiu/seckill/xerrors"

var (
	// ErrConnectorRequired 连接器未提供
	ErrConnectorRequired = xerrors.New("db: connector is required")

	// ErrConnectorNotConnected 连接器尚未建立连接
	ErrConnectorNotConnected = xerrors.New("db: connector is not connected")
)
