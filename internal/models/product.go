package models

import (
	"time"
)

// Product 商品（本模块只写库存字段）
type Product struct {
	ID            uint      `gorm:"primarykey" json:"id"`                                               // 主键
	MerchantID    uint      `gorm:"index;not null" json:"merchant_id"`                                  // 商户ID
	CategoryID    uint      `gorm:"index;not null;default:0" json:"category_id"`                        // 分类ID
	Name          string    `gorm:"type:varchar(200);not null" json:"name"`                             // 商品名称
	Price         Money     `gorm:"type:decimal(20,2);not null;default:0" json:"price"`                 // 单价
	StockQuantity int       `gorm:"not null;default:0;check:stock_quantity >= 0" json:"stock_quantity"` // 可售库存
	IsAvailable   bool      `gorm:"not null;default:true" json:"is_available"`                          // 是否上架
	CreatedAt     time.Time `gorm:"index" json:"created_at"`                                            // 创建时间
	UpdatedAt     time.Time `json:"updated_at"`                                                         // 更新时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
