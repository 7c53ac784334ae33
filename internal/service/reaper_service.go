package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/dujiao-next/marketcore/internal/logger"
	"github.com/dujiao-next/marketcore/internal/metrics"
	"github.com/dujiao-next/marketcore/internal/repository"
	"github.com/dujiao-next/marketcore/internal/tracing"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const (
	defaultReaperBatchSize   = 100
	defaultReaperConcurrency = 4
)

// SweepResult 单次扫描结果
type SweepResult struct {
	Scanned         int   `json:"scanned"`
	Closed          int   `json:"closed"`
	Failed          int   `json:"failed"`
	VouchersExpired int64 `json:"vouchers_expired"`
}

// TimeoutReaper 超时未付款订单扫描关闭
type TimeoutReaper struct {
	orderRepo   repository.OrderRepository
	orders      *OrderService
	vouchers    *VoucherService
	batchSize   int
	concurrency int
}

// NewTimeoutReaper 创建超时扫描器
func NewTimeoutReaper(orderRepo repository.OrderRepository, orders *OrderService, vouchers *VoucherService, batchSize, concurrency int) *TimeoutReaper {
	if batchSize <= 0 {
		batchSize = defaultReaperBatchSize
	}
	if concurrency <= 0 {
		concurrency = defaultReaperConcurrency
	}
	return &TimeoutReaper{
		orderRepo:   orderRepo,
		orders:      orders,
		vouchers:    vouchers,
		batchSize:   batchSize,
		concurrency: concurrency,
	}
}

// Sweep 按 ID 游标分页关闭 auto_close_at <= now 的待付款订单
// 单个订单失败只记录日志，不影响其他订单；ctx 取消时在批次之间停止
func (r *TimeoutReaper) Sweep(ctx context.Context, now time.Time) (result SweepResult, err error) {
	ctx, span := tracing.Start(ctx, "reaper.sweep")
	started := time.Now()
	defer func() {
		metrics.ReaperSweepDuration.Observe(time.Since(started).Seconds())
		span.SetAttributes(
			attribute.Int("scanned", result.Scanned),
			attribute.Int("closed", result.Closed),
			attribute.Int("failed", result.Failed),
		)
		tracing.End(span, err)
	}()

	var afterID uint
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		ids, err := r.orderRepo.ListExpiredPendingIDs(now, afterID, r.batchSize)
		if err != nil {
			return result, err
		}
		if len(ids) == 0 {
			break
		}
		afterID = ids[len(ids)-1]
		result.Scanned += len(ids)

		var closed, failed int64
		group := new(errgroup.Group)
		group.SetLimit(r.concurrency)
		for _, id := range ids {
			orderID := id
			group.Go(func() error {
				applied, closeErr := r.orders.CloseExpiredOrder(ctx, orderID, now)
				if closeErr != nil {
					if errors.Is(closeErr, ErrInvalidTransition) {
						return nil
					}
					atomic.AddInt64(&failed, 1)
					metrics.ReaperFailures.Inc()
					logger.Warnw("reaper_order_close_failed",
						"order_id", orderID,
						"error", closeErr,
					)
					return nil
				}
				if applied {
					atomic.AddInt64(&closed, 1)
					metrics.ReaperClosed.Inc()
				}
				return nil
			})
		}
		_ = group.Wait()
		result.Closed += int(closed)
		result.Failed += int(failed)

		if len(ids) < r.batchSize {
			break
		}
	}

	if r.vouchers != nil {
		expired, expireErr := r.vouchers.ExpireDue()
		if expireErr != nil {
			logger.Warnw("reaper_voucher_expire_failed", "error", expireErr)
		} else {
			result.VouchersExpired = expired
		}
	}

	if result.Scanned > 0 || result.VouchersExpired > 0 {
		logger.Infow("reaper_sweep_done",
			"scanned", result.Scanned,
			"closed", result.Closed,
			"failed", result.Failed,
			"vouchers_expired", result.VouchersExpired,
		)
	}
	return result, nil
}
