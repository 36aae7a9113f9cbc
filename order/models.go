package order

import "time"

// Voucher 限时限量的秒杀活动
type Voucher struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Stock     int       `gorm:"not null" json:"stock"`
	BeginTime time.Time `gorm:"not null" json:"begin_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Voucher) TableName() string {
	return "vouchers"
}

// VoucherOrder 一笔已确认的秒杀订单，创建后不可变。
// (user_id, voucher_id) 上的唯一索引在持久层兜底一人一单。
type VoucherOrder struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:uk_user_voucher,priority:1" json:"user_id"`
	VoucherID int64     `gorm:"not null;uniqueIndex:uk_user_voucher,priority:2" json:"voucher_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 指定表名
func (VoucherOrder) TableName() string {
	return "voucher_orders"
}
