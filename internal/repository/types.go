package repository

import "time"

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	CustomerID  uint
	MerchantID  uint
	Status      string
	OrderNo     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// PromotionListFilter 活动列表筛选
type PromotionListFilter struct {
	MerchantID    uint
	PromotionType string
	Status        string
	Page          int
	PageSize      int
}

// VoucherListFilter 代金券列表筛选
type VoucherListFilter struct {
	UserID     uint
	MerchantID uint
	Status     string
	Page       int
	PageSize   int
}
