package i18n

var messages = map[string]map[string]string{
	LocaleZH: {
		"error.bad_request":                "请求参数错误",
		"error.unauthorized":               "未登录或登录已失效",
		"error.forbidden":                  "无权访问",
		"error.not_found":                  "资源不存在",
		"error.internal":                   "服务器内部错误",
		"error.too_many_requests":          "请求过于频繁，请 %d 秒后重试",
		"error.rate_limit_unavailable":     "限流服务不可用",
		"error.jwt_secret_missing":         "服务端未配置令牌密钥",
		"error.auth_header_missing":        "缺少认证信息",
		"error.auth_header_invalid":        "认证信息格式错误",
		"error.token_invalid":              "令牌无效或已过期",
		"error.user_id_invalid":            "用户标识无效",
		"error.user_id_type_invalid":       "用户标识类型错误",
		"error.merchant_id_invalid":        "商家标识无效",
		"error.merchant_id_type_invalid":   "商家标识类型错误",
		"error.order_not_found":            "订单不存在",
		"error.order_fetch_failed":         "查询订单失败",
		"error.order_create_failed":        "创建订单失败",
		"error.order_update_failed":        "更新订单失败",
		"error.order_item_invalid":         "订单商品无效",
		"error.order_status_invalid":       "当前订单状态不允许该操作",
		"error.order_payment_expired":      "订单已超过支付期限",
		"error.order_not_expired":          "订单尚未超时",
		"error.verification_mismatch":      "核销码不正确",
		"error.amount_mismatch":            "确认金额与订单金额不一致",
		"error.minimum_order_not_met":      "未达到商家起送金额",
		"error.delivery_info_required":     "请填写完整的收货信息",
		"error.code_generation_failed":     "编号生成失败，请重试",
		"error.merchant_not_found":         "商家不存在",
		"error.merchant_not_active":        "商家暂停营业",
		"error.product_not_found":          "商品不存在",
		"error.product_not_available":      "商品已下架",
		"error.product_merchant_mismatch":  "商品不属于该商家",
		"error.insufficient_stock":         "商品库存不足",
		"error.promotion_not_found":        "活动不存在",
		"error.promotion_fetch_failed":     "查询活动失败",
		"error.promotion_ineligible":       "不满足活动条件",
		"error.promotion_not_active":       "活动未开始或已结束",
		"error.promotion_invalid":          "活动配置无效",
		"error.promotion_pool_shrink":      "红包总数不能少于已领取数量",
		"error.red_packet_exhausted":       "红包已领完",
		"error.red_packet_already_claimed": "您已领取过该红包",
		"error.red_packet_claim_failed":    "领取红包失败",
		"error.red_packet_rate_limited":    "领取过于频繁，请 %d 秒后重试",
		"error.voucher_not_found":          "代金券不存在",
		"error.voucher_not_usable":         "代金券不可用",
		"error.voucher_fetch_failed":       "查询代金券失败",
		"error.queue_unavailable":          "任务队列不可用",
		"error.reaper_busy":                "超时清理正在其他节点执行",
		"error.reaper_failed":              "超时清理执行失败",
		"error.role_unknown":               "角色不存在",
		"error.policy_invalid":             "权限策略缺少资源或动作",
		"error.policy_protected":           "该权限策略受保护，不可撤销",
		"error.authz_failed":               "权限配置操作失败",
	},
	LocaleTW: {
		"error.bad_request":                "請求參數錯誤",
		"error.unauthorized":               "未登入或登入已失效",
		"error.forbidden":                  "無權存取",
		"error.internal":                   "伺服器內部錯誤",
		"error.too_many_requests":          "請求過於頻繁，請 %d 秒後重試",
		"error.token_invalid":              "權杖無效或已過期",
		"error.order_not_found":            "訂單不存在",
		"error.order_status_invalid":       "目前訂單狀態不允許此操作",
		"error.insufficient_stock":         "商品庫存不足",
		"error.minimum_order_not_met":      "未達到商家起送金額",
		"error.red_packet_exhausted":       "紅包已領完",
		"error.red_packet_already_claimed": "您已領取過該紅包",
		"error.red_packet_rate_limited":    "領取過於頻繁，請 %d 秒後重試",
		"error.promotion_not_active":       "活動未開始或已結束",
		"error.voucher_not_usable":         "代金券不可用",
	},
	LocaleEN: {
		"error.bad_request":                "Invalid request parameters",
		"error.unauthorized":               "Not signed in or session expired",
		"error.forbidden":                  "Access denied",
		"error.not_found":                  "Resource not found",
		"error.internal":                   "Internal server error",
		"error.too_many_requests":          "Too many requests, retry in %d seconds",
		"error.rate_limit_unavailable":     "Rate limiter is unavailable",
		"error.jwt_secret_missing":         "Token secret is not configured",
		"error.auth_header_missing":        "Authorization header is missing",
		"error.auth_header_invalid":        "Authorization header is malformed",
		"error.token_invalid":              "Token is invalid or expired",
		"error.user_id_invalid":            "Invalid user id",
		"error.user_id_type_invalid":       "Unexpected user id type",
		"error.merchant_id_invalid":        "Invalid merchant id",
		"error.merchant_id_type_invalid":   "Unexpected merchant id type",
		"error.order_not_found":            "Order not found",
		"error.order_fetch_failed":         "Failed to load order",
		"error.order_create_failed":        "Failed to create order",
		"error.order_update_failed":        "Failed to update order",
		"error.order_item_invalid":         "Invalid order item",
		"error.order_status_invalid":       "Operation not allowed in the current order status",
		"error.order_payment_expired":      "Order payment window has expired",
		"error.order_not_expired":          "Order has not expired yet",
		"error.verification_mismatch":      "Verification code does not match",
		"error.amount_mismatch":            "Confirmed amount does not match the order total",
		"error.minimum_order_not_met":      "Minimum order amount not met",
		"error.delivery_info_required":     "Delivery information is required",
		"error.code_generation_failed":     "Failed to generate a unique code, please retry",
		"error.merchant_not_found":         "Merchant not found",
		"error.merchant_not_active":        "Merchant is not accepting orders",
		"error.product_not_found":          "Product not found",
		"error.product_not_available":      "Product is not available",
		"error.product_merchant_mismatch":  "Product does not belong to this merchant",
		"error.insufficient_stock":         "Insufficient stock",
		"error.promotion_not_found":        "Promotion not found",
		"error.promotion_fetch_failed":     "Failed to load promotion",
		"error.promotion_ineligible":       "Promotion conditions not met",
		"error.promotion_not_active":       "Promotion is not active",
		"error.promotion_invalid":          "Invalid promotion configuration",
		"error.promotion_pool_shrink":      "Red packet total cannot drop below claimed count",
		"error.red_packet_exhausted":       "Red packets are exhausted",
		"error.red_packet_already_claimed": "You have already claimed this red packet",
		"error.red_packet_claim_failed":    "Failed to claim red packet",
		"error.red_packet_rate_limited":    "Claiming too fast, retry in %d seconds",
		"error.voucher_not_found":          "Voucher not found",
		"error.voucher_not_usable":         "Voucher is not usable",
		"error.voucher_fetch_failed":       "Failed to load vouchers",
		"error.queue_unavailable":          "Task queue is unavailable",
		"error.reaper_busy":                "Timeout sweep is running on another node",
		"error.reaper_failed":              "Timeout sweep failed",
		"error.role_unknown":               "Unknown role",
		"error.policy_invalid":             "Policy requires an object and an action",
		"error.policy_protected":           "This policy is protected and cannot be revoked",
		"error.authz_failed":               "Permission update failed",
	},
}
