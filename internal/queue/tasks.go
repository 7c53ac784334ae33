package queue

import (
	"encoding/json"
	"time"

	"github.com/dujiao-next/marketcore/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderTimeoutClose 超时关闭任务
	TaskOrderTimeoutClose = constants.TaskOrderTimeoutClose
	// TaskOrderStatusEvent 订单状态事件投递任务
	TaskOrderStatusEvent = constants.TaskOrderStatusEvent
)

// OrderTimeoutClosePayload 超时关闭任务载荷
type OrderTimeoutClosePayload struct {
	OrderID uint `json:"order_id"`
}

// OrderStatusEventPayload 订单状态事件载荷
type OrderStatusEventPayload struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	OrderID    uint      `json:"order_id"`
	OrderNo    string    `json:"order_no"`
	CustomerID uint      `json:"customer_id"`
	MerchantID uint      `json:"merchant_id"`
	FromStatus string    `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewOrderTimeoutCloseTask 创建超时关闭任务
func NewOrderTimeoutCloseTask(payload OrderTimeoutClosePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderTimeoutClose, body), nil
}

// NewOrderStatusEventTask 创建订单状态事件任务
func NewOrderStatusEventTask(payload OrderStatusEventPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderStatusEvent, body), nil
}

// ParseOrderTimeoutClosePayload 解析超时关闭任务载荷
func ParseOrderTimeoutClosePayload(task *asynq.Task) (OrderTimeoutClosePayload, error) {
	var payload OrderTimeoutClosePayload
	err := json.Unmarshal(task.Payload(), &payload)
	return payload, err
}

// ParseOrderStatusEventPayload 解析订单状态事件载荷
func ParseOrderStatusEventPayload(task *asynq.Task) (OrderStatusEventPayload, error) {
	var payload OrderStatusEventPayload
	err := json.Unmarshal(task.Payload(), &payload)
	return payload, err
}
