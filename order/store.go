package order

import (
	"errors"

	"gorm.io/gorm"
)

// 数据访问层。所有函数接受 *gorm.DB，既可在普通会话中使用，
// 也可在事务 tx 中使用。

func findVoucherByID(tx *gorm.DB, voucherID int64) (*Voucher, error) {
	var voucher Voucher
	if err := tx.First(&voucher, voucherID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &voucher, nil
}

func insertVoucher(tx *gorm.DB, voucher *Voucher) error {
	return tx.Create(voucher).Error
}

func orderExists(tx *gorm.DB, userID, voucherID int64) (bool, error) {
	var count int64
	err := tx.Model(&VoucherOrder{}).
		Where("user_id = ? AND voucher_id = ?", userID, voucherID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// decrementStock 条件扣减库存：stock > 0 才扣，affected=0 视为扣减失败。
// 这是跨用户竞争下防止超卖的唯一保障，锁不参与。
func decrementStock(tx *gorm.DB, voucherID int64) (bool, error) {
	result := tx.Model(&Voucher{}).
		Where("id = ? AND stock > 0", voucherID).
		UpdateColumn("stock", gorm.Expr("stock - 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func insertOrder(tx *gorm.DB, record *VoucherOrder) error {
	return tx.Create(record).Error
}
