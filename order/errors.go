package order

import "github.com/wenqiu/seckill/xerrors"

// 业务拒绝错误。调用方用 errors.Is 判定，HTTP 层用 xerrors.GetCode
// 提取错误码。这些不是故障：拒绝是协议的正常出口。
var (
	// ErrVoucherNotFound 活动不存在
	ErrVoucherNotFound = xerrors.WithCode(xerrors.New("order: voucher not found"), "VOUCHER_NOT_FOUND")

	// ErrNotStarted 秒杀尚未开始
	ErrNotStarted = xerrors.WithCode(xerrors.New("order: seckill has not started"), "NOT_STARTED")

	// ErrEnded 秒杀已经结束
	ErrEnded = xerrors.WithCode(xerrors.New("order: seckill has ended"), "ENDED")

	// ErrSoldOut 库存不足
	ErrSoldOut = xerrors.WithCode(xerrors.New("order: voucher sold out"), "SOLD_OUT")

	// ErrAlreadyPurchased 用户已购买过该券
	ErrAlreadyPurchased = xerrors.WithCode(xerrors.New("order: user already purchased this voucher"), "ALREADY_PURCHASED")

	// ErrContended 同一用户的请求正在处理中
	ErrContended = xerrors.WithCode(xerrors.New("order: duplicate in-flight request for this user"), "CONTENDED")
)
