package models

import (
	"time"

	"github.com/dujiao-next/marketcore/internal/constants"
)

// Order 订单表（只通过状态流转修改，不删除）
type Order struct {
	ID               uint       `gorm:"primarykey" json:"id"`                                                // 主键
	OrderNo          string     `gorm:"type:varchar(40);uniqueIndex;not null" json:"order_no"`               // 订单编号
	VerificationCode string     `gorm:"type:varchar(16);uniqueIndex;not null" json:"verification_code"`     // 核对码（商户线下核对付款）
	CustomerID       uint       `gorm:"index;not null" json:"customer_id"`                                   // 顾客ID
	MerchantID       uint       `gorm:"index;not null" json:"merchant_id"`                                   // 商户ID
	Status           string     `gorm:"type:varchar(32);index:idx_orders_status_close;not null" json:"status"` // 订单状态
	OriginalAmount   Money      `gorm:"type:decimal(20,2);not null;default:0" json:"original_amount"`        // 商品原价合计
	DiscountAmount   Money      `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"`        // 活动优惠金额
	VoucherAmount    Money      `gorm:"type:decimal(20,2);not null;default:0" json:"voucher_amount"`         // 代金券抵扣金额
	TotalAmount      Money      `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`           // 应付金额
	PromotionID      *uint      `gorm:"index" json:"promotion_id,omitempty"`                                 // 使用的活动ID
	VoucherID        *uint      `gorm:"index" json:"voucher_id,omitempty"`                                   // 使用的代金券ID
	DeliveryName     string     `gorm:"type:varchar(100);not null" json:"delivery_name"`                     // 收货人
	DeliveryPhone    string     `gorm:"type:varchar(40);not null" json:"delivery_phone"`                     // 收货电话
	DeliveryAddress  string     `gorm:"type:varchar(500);not null" json:"delivery_address"`                  // 收货地址
	PaymentDeadline  time.Time  `json:"payment_deadline"`                                                    // 付款截止时间
	AutoCloseAt      time.Time  `gorm:"index:idx_orders_status_close" json:"auto_close_at"`                  // 超时自动关闭时间
	StockRestored    bool       `gorm:"not null;default:false" json:"-"`                                     // 库存是否已回补
	CancelReason     string     `gorm:"type:varchar(255)" json:"cancel_reason,omitempty"`                    // 取消原因
	PaidAt           *time.Time `json:"paid_at,omitempty"`                                                   // 顾客声明付款时间
	ConfirmedAt      *time.Time `json:"confirmed_at,omitempty"`                                              // 商户确认时间
	ReceivedAt       *time.Time `json:"received_at,omitempty"`                                               // 顾客确认收货时间
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`                                              // 取消时间
	ClosedAt         *time.Time `json:"closed_at,omitempty"`                                                 // 超时关闭时间
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`                                             // 创建时间
	UpdatedAt        time.Time  `json:"updated_at"`                                                          // 更新时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// IsTerminal 是否处于终态
func (o *Order) IsTerminal() bool {
	if o == nil {
		return false
	}
	return IsTerminalOrderStatus(o.Status)
}

// IsTerminalOrderStatus 判断订单状态是否为终态
func IsTerminalOrderStatus(status string) bool {
	switch status {
	case constants.OrderStatusCustomerReceived, constants.OrderStatusTimeoutClosed, constants.OrderStatusCancelled:
		return true
	default:
		return false
	}
}
