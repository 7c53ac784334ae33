package worker

import (
	"context"
	"errors"
	"time"

	"github.com/dujiao-next/marketcore/internal/logger"
	"github.com/dujiao-next/marketcore/internal/provider"
	"github.com/dujiao-next/marketcore/internal/queue"
	"github.com/dujiao-next/marketcore/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
	now func() time.Time
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
		now:       time.Now,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderTimeoutClose, c.handleOrderTimeoutClose)
	mux.HandleFunc(queue.TaskOrderStatusEvent, c.handleOrderStatusEvent)
}

func (c *Consumer) handleOrderTimeoutClose(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_timeout_close_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseOrderTimeoutClosePayload(task)
	if err != nil {
		logger.Warnw("worker_order_timeout_close_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_timeout_close_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.OrderService == nil {
		logger.Warnw("worker_order_timeout_close_skip_order_service_nil", "order_id", payload.OrderID)
		return nil
	}
	closed, err := c.OrderService.CloseExpiredOrder(ctx, payload.OrderID, c.now())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			logger.Debugw("worker_order_timeout_close_skip_order_not_found", "order_id", payload.OrderID)
			return nil
		case errors.Is(err, service.ErrInvalidTransition):
			logger.Debugw("worker_order_timeout_close_skip_not_pending", "order_id", payload.OrderID)
			return nil
		case errors.Is(err, service.ErrOrderNotExpired):
			// 任务提前触发时交给扫描器兜底
			logger.Debugw("worker_order_timeout_close_skip_not_expired", "order_id", payload.OrderID)
			return nil
		default:
			logger.Warnw("worker_order_timeout_close_failed", "order_id", payload.OrderID, "error", err)
			return err
		}
	}
	if closed {
		logger.Infow("worker_order_timeout_closed", "order_id", payload.OrderID)
	}
	return nil
}

func (c *Consumer) handleOrderStatusEvent(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_status_event_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseOrderStatusEventPayload(task)
	if err != nil {
		logger.Warnw("worker_order_status_event_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_status_event_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.EventPublisher == nil {
		logger.Debugw("worker_order_status_event_skip_publisher_nil", "order_id", payload.OrderID)
		return nil
	}
	if err := c.EventPublisher.PublishOrderEvent(ctx, payload); err != nil {
		logger.Warnw("worker_order_status_event_publish_failed",
			"order_id", payload.OrderID,
			"event_type", payload.EventType,
			"to_status", payload.ToStatus,
			"error", err,
		)
		return err
	}
	return nil
}
