package service

import (
	"errors"
	"fmt"
	"strings"
)

// 通用错误
var (
	ErrInvalidParams    = errors.New("invalid params")
	ErrForbidden        = errors.New("forbidden")
	ErrQueueUnavailable = errors.New("queue unavailable")
)

// 订单相关错误
var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderFetchFailed     = errors.New("order fetch failed")
	ErrOrderCreateFailed    = errors.New("order create failed")
	ErrOrderUpdateFailed    = errors.New("order update failed")
	ErrInvalidOrderItem     = errors.New("invalid order item")
	ErrInvalidTransition    = errors.New("invalid order status transition")
	ErrOrderPaymentExpired  = errors.New("order payment deadline passed")
	ErrOrderNotExpired      = errors.New("order not expired yet")
	ErrVerificationMismatch = errors.New("verification code mismatch")
	ErrAmountMismatch       = errors.New("order amount mismatch")
	ErrMinimumOrderNotMet   = errors.New("minimum order amount not met")
	ErrDeliveryInfoRequired = errors.New("delivery info required")
	ErrCodeGenerationFailed = errors.New("unique code generation failed")
)

// 商户与商品相关错误
var (
	ErrMerchantNotFound    = errors.New("merchant not found")
	ErrMerchantNotActive   = errors.New("merchant not active")
	ErrProductNotFound     = errors.New("product not found")
	ErrProductNotAvailable = errors.New("product not available")
	ErrProductMerchant     = errors.New("product does not belong to merchant")
	ErrInsufficientStock   = errors.New("insufficient stock")
)

// 活动与红包相关错误
var (
	ErrPromotionNotFound       = errors.New("promotion not found")
	ErrPromotionIneligible     = errors.New("promotion ineligible")
	ErrPromotionNotActive      = errors.New("promotion not active")
	ErrPromotionInvalid        = errors.New("promotion invalid")
	ErrPromotionPoolShrink     = errors.New("red packet pool below claimed count")
	ErrRedPacketExhausted      = errors.New("red packet exhausted")
	ErrRedPacketAlreadyClaimed = errors.New("red packet already claimed")
	ErrRedPacketClaimFailed    = errors.New("red packet claim failed")
)

// 代金券相关错误
var (
	ErrVoucherNotFound  = errors.New("voucher not found")
	ErrVoucherNotUsable = errors.New("voucher not usable")
)

// 鉴权相关错误
var (
	ErrTokenInvalid = errors.New("token invalid")
)

// StockShortage 单个商品的库存缺口
type StockShortage struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
}

// InsufficientStockError 库存不足，列出全部缺货商品
type InsufficientStockError struct {
	Items []StockShortage
}

func (e *InsufficientStockError) Error() string {
	if e == nil || len(e.Items) == 0 {
		return ErrInsufficientStock.Error()
	}
	parts := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		parts = append(parts, fmt.Sprintf("product %d requested %d available %d", item.ProductID, item.Requested, item.Available))
	}
	return fmt.Sprintf("%s: %s", ErrInsufficientStock.Error(), strings.Join(parts, "; "))
}

// Unwrap 返回哨兵错误
func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// PromotionIneligibleError 活动不可用，附带原因
type PromotionIneligibleError struct {
	PromotionID uint
	Reason      string
}

func (e *PromotionIneligibleError) Error() string {
	if e == nil {
		return ErrPromotionIneligible.Error()
	}
	return fmt.Sprintf("%s: promotion %d %s", ErrPromotionIneligible.Error(), e.PromotionID, e.Reason)
}

// Unwrap 返回哨兵错误
func (e *PromotionIneligibleError) Unwrap() error {
	return ErrPromotionIneligible
}

// TransitionError 非法状态流转，附带当前状态与目标状态
type TransitionError struct {
	OrderID uint
	From    string
	To      string
}

func (e *TransitionError) Error() string {
	if e == nil {
		return ErrInvalidTransition.Error()
	}
	return fmt.Sprintf("%s: order %d %s -> %s", ErrInvalidTransition.Error(), e.OrderID, e.From, e.To)
}

// Unwrap 返回哨兵错误
func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
