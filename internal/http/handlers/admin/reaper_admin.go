package admin

import (
	"github.com/dujiao-next/marketcore/internal/cache"
	"github.com/dujiao-next/marketcore/internal/constants"
	"github.com/dujiao-next/marketcore/internal/http/response"

	"github.com/gin-gonic/gin"
)

// RunReaper 手动触发一次超时订单扫描，与后台任务共用同一租约
func (h *Handler) RunReaper(c *gin.Context) {
	ctx := c.Request.Context()
	lease, err := cache.AcquireLease(ctx, constants.LeaseOrderReaper, h.reaperLeaseTTL())
	if err != nil {
		respondReaperError(c, err)
		return
	}
	defer func() {
		if err := lease.Release(ctx); err != nil {
			requestLog(c).Warnw("admin_reaper_lease_release_failed", "error", err)
		}
	}()

	result, err := h.TimeoutReaper.Sweep(ctx, h.now())
	if err != nil {
		respondReaperError(c, err)
		return
	}

	requestLog(c).Infow("admin_reaper_run",
		"scanned", result.Scanned,
		"closed", result.Closed,
		"failed", result.Failed,
	)
	response.Success(c, result)
}
