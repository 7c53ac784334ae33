package worker

import (
	"context"
	"errors"
	"time"

	"github.com/dujiao-next/marketcore/internal/cache"
	"github.com/dujiao-next/marketcore/internal/constants"
	"github.com/dujiao-next/marketcore/internal/logger"
	"github.com/dujiao-next/marketcore/internal/service"
)

// sweeper 超时扫描能力
type sweeper interface {
	Sweep(ctx context.Context, now time.Time) (service.SweepResult, error)
}

// ReaperService 周期性执行超时订单扫描，多实例间通过租约互斥
type ReaperService struct {
	name     string
	reaper   sweeper
	interval time.Duration
	leaseTTL time.Duration
	now      func() time.Time
	stop     chan struct{}
	done     chan struct{}
}

// NewReaperService 创建扫描服务
func NewReaperService(reaper sweeper, interval, leaseTTL time.Duration) (*ReaperService, error) {
	if reaper == nil {
		return nil, errors.New("reaper is nil")
	}
	if interval <= 0 {
		interval = time.Minute
	}
	if leaseTTL <= 0 {
		leaseTTL = 2 * interval
	}
	return &ReaperService{
		name:     "order-reaper",
		reaper:   reaper,
		interval: interval,
		leaseTTL: leaseTTL,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Name 服务名称
func (s *ReaperService) Name() string {
	if s == nil || s.name == "" {
		return "order-reaper"
	}
	return s.name
}

// Start 启动扫描循环，阻塞直到 ctx 取消或 Stop 被调用
func (s *ReaperService) Start(ctx context.Context) error {
	if s == nil || s.reaper == nil {
		return errors.New("reaper service not initialized")
	}
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.stop:
			return nil
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// Stop 停止扫描循环并等待当前扫描结束
func (s *ReaperService) Stop(ctx context.Context) error {
	if s == nil {
		return nil
	}
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce 获取租约后执行一次扫描，返回是否实际执行
func (s *ReaperService) RunOnce(ctx context.Context) bool {
	lease, err := cache.AcquireLease(ctx, constants.LeaseOrderReaper, s.leaseTTL)
	if err != nil {
		if errors.Is(err, cache.ErrLeaseNotHeld) {
			logger.Debugw("reaper_lease_held_elsewhere")
			return false
		}
		logger.Warnw("reaper_lease_acquire_failed", "error", err)
		return false
	}
	defer func() {
		if err := lease.Release(context.Background()); err != nil {
			logger.Warnw("reaper_lease_release_failed", "error", err)
		}
	}()

	if _, err := s.reaper.Sweep(ctx, s.now()); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warnw("reaper_sweep_failed", "error", err)
	}
	return true
}
