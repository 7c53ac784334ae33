package models

import (
	"time"

	"github.com/dujiao-next/marketcore/internal/constants"
)

// Promotion 商户优惠活动（含拼手气红包池）
type Promotion struct {
	ID                       uint       `gorm:"primarykey" json:"id"`                                                                       // 主键
	MerchantID               uint       `gorm:"index;not null" json:"merchant_id"`                                                          // 商户ID
	Name                     string     `gorm:"type:varchar(120);not null" json:"name"`                                                     // 活动名称
	DiscountType             string     `gorm:"type:varchar(20);not null" json:"discount_type"`                                             // 折扣方式（percentage/fixed_amount）
	DiscountValue            Money      `gorm:"type:decimal(20,2);not null;default:0" json:"discount_value"`                                // 折扣数值（百分比/金额，红包为平均金额）
	PromotionType            string     `gorm:"type:varchar(32);index;not null" json:"promotion_type"`                                      // 活动类型
	MinimumAmount            Money      `gorm:"type:decimal(20,2);not null;default:0" json:"minimum_amount"`                                // 满额门槛
	ProductIDs               IDList     `gorm:"type:text" json:"product_ids"`                                                               // 适用商品
	CategoryIDs              IDList     `gorm:"type:text" json:"category_ids"`                                                              // 适用分类
	Status                   string     `gorm:"type:varchar(20);not null;default:'active'" json:"status"`                                   // 启停状态
	StartsAt                 *time.Time `gorm:"index" json:"starts_at"`                                                                     // 开始时间（空为不限）
	EndsAt                   *time.Time `gorm:"index" json:"ends_at"`                                                                       // 结束时间（空为不限）
	MaxUsageCount            int        `gorm:"not null;default:0" json:"max_usage_count"`                                                  // 全局使用次数上限（0 不限）
	MaxUsagePerCustomer      int        `gorm:"not null;default:0" json:"max_usage_per_customer"`                                           // 单个顾客商品件数上限（0 不限）
	MaxUsageProductCount     int        `gorm:"not null;default:0" json:"max_usage_product_count"`                                          // 全局商品件数上限（0 不限）
	CurrentUsageCount        int        `gorm:"not null;default:0" json:"current_usage_count"`                                              // 已使用次数
	CurrentUsageProductCount int        `gorm:"not null;default:0" json:"current_usage_product_count"`                                      // 已使用商品件数
	TotalRedPackets          int        `gorm:"not null;default:0" json:"total_red_packets"`                                                // 红包总数
	RemainingRedPackets      int        `gorm:"not null;default:0;check:remaining_red_packets >= 0" json:"remaining_red_packets"`           // 剩余红包数
	VoucherValidityDays      int        `gorm:"not null;default:0" json:"voucher_validity_days"`                                            // 代金券有效天数
	CreatedAt                time.Time  `gorm:"index" json:"created_at"`                                                                    // 创建时间
	UpdatedAt                time.Time  `json:"updated_at"`                                                                                 // 更新时间
}

// TableName 指定表名
func (Promotion) TableName() string {
	return "promotions"
}

// IsRedPacket 是否为拼手气红包活动
func (p *Promotion) IsRedPacket() bool {
	return p != nil && p.PromotionType == constants.PromotionTypeLuckyRedPacket
}

// WindowReason 判断活动在 now 时刻是否生效，不生效时返回原因
func (p *Promotion) WindowReason(now time.Time) (bool, string) {
	if p == nil || p.Status != constants.PromotionStatusActive {
		return false, constants.PromotionReasonNotActive
	}
	if p.StartsAt != nil && now.Before(*p.StartsAt) {
		return false, constants.PromotionReasonNotActive
	}
	if p.EndsAt != nil && !now.Before(*p.EndsAt) {
		return false, constants.PromotionReasonExpired
	}
	return true, ""
}

// IsActiveAt 活动在 now 时刻是否生效
func (p *Promotion) IsActiveAt(now time.Time) bool {
	ok, _ := p.WindowReason(now)
	return ok
}
