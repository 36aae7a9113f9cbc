package dlock

import "github.com/wenqiu/seckill/xerrors"

var (
	// ErrConfigNil 配置为空
	ErrConfigNil = xerrors.New("dlock: config is nil")

	// ErrConnectorNil 连接器为空
	ErrConnectorNil = xerrors.New("dlock: connector is nil")

	// ErrLockNotHeld 本进程未持有该锁
	ErrLockNotHeld = xerrors.New("dlock: lock not held")

	// ErrOwnershipLost 锁所有权丢失（已过期或被其他持有者占有）
	ErrOwnershipLost = xerrors.New("dlock: ownership lost")
)
