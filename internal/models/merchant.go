package models

import (
	"time"

	"github.com/dujiao-next/marketcore/internal/constants"
)

// Merchant 商户
type Merchant struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                            // 主键
	Name           string    `gorm:"type:varchar(120);not null" json:"name"`                          // 商户名称
	Status         string    `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"` // 状态（pending/active/suspended）
	MinOrderAmount Money     `gorm:"type:decimal(20,2);not null;default:0" json:"min_order_amount"`   // 起订金额
	CreatedAt      time.Time `gorm:"index" json:"created_at"`                                         // 创建时间
	UpdatedAt      time.Time `json:"updated_at"`                                                      // 更新时间
}

// TableName 指定表名
func (Merchant) TableName() string {
	return "merchants"
}

// IsActive 是否可接单，由 Status 派生，不单独存储
func (m *Merchant) IsActive() bool {
	return m != nil && m.Status == constants.MerchantStatusActive
}
