package constants

// 订单状态常量
const (
	OrderStatusPending           = "pending"
	OrderStatusCustomerPaid      = "customer_paid"
	OrderStatusMerchantConfirmed = "merchant_confirmed"
	OrderStatusCustomerReceived  = "customer_received"
	OrderStatusTimeoutClosed     = "timeout_closed"
	OrderStatusCancelled         = "cancelled"
)

// 商户状态常量
const (
	MerchantStatusPending   = "pending"
	MerchantStatusActive    = "active"
	MerchantStatusSuspended = "suspended"
)

// 折扣计算方式
const (
	DiscountTypePercentage  = "percentage"
	DiscountTypeFixedAmount = "fixed_amount"
)

// 活动类型
const (
	PromotionTypeGeneral          = "general"
	PromotionTypeMinimumAmount    = "minimum_amount"
	PromotionTypeProductSpecific  = "product_specific"
	PromotionTypeCategorySpecific = "category_specific"
	PromotionTypeLuckyRedPacket   = "lucky_red_packet"
)

// 活动启停状态
const (
	PromotionStatusActive   = "active"
	PromotionStatusDisabled = "disabled"
)

// 活动不可用原因
const (
	PromotionReasonNotActive     = "not_active"
	PromotionReasonExpired       = "expired"
	PromotionReasonBelowMinimum  = "below_minimum"
	PromotionReasonOverGlobalCap = "over_global_cap"
	PromotionReasonOverUserCap   = "over_customer_cap"
	PromotionReasonNotApplicable = "not_applicable"
)

// 代金券状态
const (
	VoucherStatusActive  = "active"
	VoucherStatusUsed    = "used"
	VoucherStatusExpired = "expired"
)

// 调用方角色
const (
	RoleCustomer = "customer"
	RoleMerchant = "merchant"
	RoleAdmin    = "admin"
)

// 队列名称
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 队列任务类型
const (
	TaskOrderTimeoutClose = "order:timeout_close"
	TaskOrderStatusEvent  = "order:status_event"
)

// 订单事件类型
const (
	OrderEventCreated       = "order.created"
	OrderEventStatusChanged = "order.status_changed"
)

// 分布式租约名称
const (
	LeaseOrderReaper = "order_reaper"
)
