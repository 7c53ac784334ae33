package models

import (
	"time"

	"github.com/dujiao-next/marketcore/internal/constants"
)

// RedPacketClaim 红包领取记录，(promotion_id, user_id) 唯一
type RedPacketClaim struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                                      // 主键
	PromotionID uint      `gorm:"uniqueIndex:uk_red_packet_claim_promotion_user;not null" json:"promotion_id"` // 活动ID
	UserID      uint      `gorm:"uniqueIndex:uk_red_packet_claim_promotion_user;not null" json:"user_id"`      // 用户ID
	VoucherID   uint      `gorm:"index;not null" json:"voucher_id"`                                          // 代金券ID
	Amount      Money     `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`                       // 领取金额
	ClaimedAt   time.Time `gorm:"index" json:"claimed_at"`                                                   // 领取时间
}

// TableName 指定表名
func (RedPacketClaim) TableName() string {
	return "red_packet_claims"
}

// Voucher 代金券（单次使用）
type Voucher struct {
	ID          uint       `gorm:"primarykey" json:"id"`                                            // 主键
	Code        string     `gorm:"type:varchar(16);uniqueIndex;not null" json:"code"`               // 券码（V + 7 位数字）
	PromotionID uint       `gorm:"index;not null" json:"promotion_id"`                              // 来源活动ID
	MerchantID  uint       `gorm:"index;not null" json:"merchant_id"`                               // 商户ID
	UserID      uint       `gorm:"index;not null" json:"user_id"`                                   // 持有人
	Amount      Money      `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`             // 面值
	Status      string     `gorm:"type:varchar(20);index;not null" json:"status"`                   // 状态（active/used/expired）
	ExpiresAt   time.Time  `gorm:"index" json:"expires_at"`                                         // 过期时间
	UsedOrderID *uint      `gorm:"uniqueIndex" json:"used_order_id,omitempty"`                      // 核销订单ID
	UsedAmount  Money      `gorm:"type:decimal(20,2);not null;default:0" json:"used_amount"`        // 实际抵扣金额
	UsedAt      *time.Time `json:"used_at,omitempty"`                                               // 核销时间
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`                                         // 创建时间
	UpdatedAt   time.Time  `json:"updated_at"`                                                      // 更新时间
}

// TableName 指定表名
func (Voucher) TableName() string {
	return "vouchers"
}

// UsableAt 代金券在 now 时刻是否可用
func (v *Voucher) UsableAt(now time.Time) bool {
	return v != nil && v.Status == constants.VoucherStatusActive && now.Before(v.ExpiresAt)
}

// EffectiveStatus 返回考虑过期时间后的状态
func (v *Voucher) EffectiveStatus(now time.Time) string {
	if v == nil {
		return ""
	}
	if v.Status == constants.VoucherStatusActive && !now.Before(v.ExpiresAt) {
		return constants.VoucherStatusExpired
	}
	return v.Status
}
