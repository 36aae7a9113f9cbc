package shop

import "time"

// Shop 商铺信息
type Shop struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	TypeID    int64     `gorm:"index;not null" json:"type_id"`
	Address   string    `gorm:"size:255" json:"address"`
	AvgPrice  int64     `json:"avg_price"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Shop) TableName() string {
	return "shops"
}

// ShopType 商铺分类，按 Sort 升序展示
type ShopType struct {
	ID   int64  `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:32;not null" json:"name"`
	Icon string `gorm:"size:255" json:"icon"`
	Sort int    `gorm:"index" json:"sort"`
}

// TableName 指定表名
func (ShopType) TableName() string {
	return "shop_types"
}
