package admin

import (
	"time"

	"github.com/dujiao-next/marketcore/internal/provider"
)

// Handler 后台管理接口处理器入口
// 说明：覆盖跨商户订单查询与取消、活动巡检、手动触发超时扫描。
type Handler struct {
	*provider.Container
	now func() time.Time
}

// New 创建后台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c, now: time.Now}
}

// reaperLeaseTTL 手动扫描与后台任务共用的租约时长
func (h *Handler) reaperLeaseTTL() time.Duration {
	if h.Config == nil {
		return 2 * time.Minute
	}
	if ttl := time.Duration(h.Config.Order.ReaperLeaseSeconds) * time.Second; ttl > 0 {
		return ttl
	}
	return 2 * h.Config.Order.ReaperInterval()
}
