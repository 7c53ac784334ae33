package models

import (
	"time"
)

// PromotionUsage 活动使用记录（只追加）
type PromotionUsage struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                         // 主键
	PromotionID    uint      `gorm:"index:idx_promotion_usage_customer;not null" json:"promotion_id"` // 活动ID
	OrderID        uint      `gorm:"uniqueIndex;not null" json:"order_id"`                         // 订单ID（每单至多一个活动）
	CustomerID     uint      `gorm:"index:idx_promotion_usage_customer;not null" json:"customer_id"`  // 顾客ID
	DiscountAmount Money     `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"` // 优惠金额
	ProductCount   int       `gorm:"not null;default:0" json:"product_count"`                      // 消耗商品件数
	CreatedAt      time.Time `gorm:"index" json:"created_at"`                                      // 创建时间
}

// TableName 指定表名
func (PromotionUsage) TableName() string {
	return "promotion_usages"
}
