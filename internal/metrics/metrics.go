package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketcore"

var (
	// OrdersCreated 创建成功的订单数
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Orders created successfully.",
	})

	// OrderTransitions 订单状态流转次数
	OrderTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_transitions_total",
		Help:      "Order status transitions by target status.",
	}, []string{"to"})

	// OrderCreateRejected 下单被拒绝次数（按原因）
	OrderCreateRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_create_rejected_total",
		Help:      "Order creations rejected by reason.",
	}, []string{"reason"})

	// StockRestored 库存回补件数
	StockRestored = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_restored_units_total",
		Help:      "Product units returned to stock.",
	})

	// RedPacketClaims 红包领取结果
	RedPacketClaims = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "red_packet_claims_total",
		Help:      "Red packet claim attempts by result.",
	}, []string{"result"})

	// RateLimited 被限流拒绝的请求（按规则）
	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Requests rejected by a rate limit rule.",
	}, []string{"rule"})

	// PromotionRejections 活动不可用次数（按原因）
	PromotionRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "promotion_rejections_total",
		Help:      "Promotion availability rejections by reason.",
	}, []string{"reason"})

	// ReaperClosed 超时关闭的订单数
	ReaperClosed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reaper_closed_orders_total",
		Help:      "Orders closed by the timeout reaper.",
	})

	// ReaperFailures 超时关闭失败的订单数
	ReaperFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reaper_failed_orders_total",
		Help:      "Orders the timeout reaper failed to close.",
	})

	// ReaperSweepDuration 单次扫描耗时
	ReaperSweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "reaper_sweep_duration_seconds",
		Help:      "Duration of a timeout reaper sweep.",
		Buckets:   prometheus.DefBuckets,
	})

	// HTTPRequests HTTP 请求数
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})
)
