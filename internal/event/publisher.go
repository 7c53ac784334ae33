package event

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/dujiao-next/marketcore/internal/config"
	"github.com/dujiao-next/marketcore/internal/logger"
	"github.com/dujiao-next/marketcore/internal/queue"

	"github.com/segmentio/kafka-go"
)

// Publisher 订单事件发布接口
type Publisher interface {
	PublishOrderEvent(ctx context.Context, payload queue.OrderStatusEventPayload) error
	Close() error
}

// NoopPublisher 未启用 Kafka 时仅记录日志
type NoopPublisher struct{}

// PublishOrderEvent 记录事件
func (NoopPublisher) PublishOrderEvent(_ context.Context, payload queue.OrderStatusEventPayload) error {
	logger.Debugw("order_event_publish_skipped",
		"event_type", payload.EventType,
		"order_id", payload.OrderID,
		"to_status", payload.ToStatus,
	)
	return nil
}

// Close 无操作
func (NoopPublisher) Close() error { return nil }

// messageWriter kafka.Writer 的最小接口
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher 基于 kafka-go 的订单事件发布
type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

// NewPublisher 按配置创建发布器
func NewPublisher(cfg config.KafkaConfig) (Publisher, error) {
	if !cfg.Enabled {
		return NoopPublisher{}, nil
	}
	brokers := make([]string, 0, len(cfg.Brokers))
	for _, broker := range cfg.Brokers {
		if trimmed := strings.TrimSpace(broker); trimmed != "" {
			brokers = append(brokers, trimmed)
		}
	}
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers are empty")
	}
	topic := strings.TrimSpace(cfg.Topic)
	if topic == "" {
		return nil, errors.New("kafka topic is empty")
	}
	timeout := time.Duration(cfg.WriteTimeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		WriteTimeout:           timeout,
		AllowAutoTopicCreation: true,
	}
	return newKafkaPublisher(writer, topic), nil
}

func newKafkaPublisher(writer messageWriter, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, topic: topic}
}

// PublishOrderEvent 以订单 ID 为 key 写入，保证同一订单事件有序
func (p *KafkaPublisher) PublishOrderEvent(ctx context.Context, payload queue.OrderStatusEventPayload) error {
	msg, err := BuildMessage(payload)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		logger.Warnw("order_event_publish_failed",
			"topic", p.topic,
			"event_id", payload.EventID,
			"order_id", payload.OrderID,
			"error", err,
		)
		return err
	}
	return nil
}

// Close 关闭写入器
func (p *KafkaPublisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// messageKey 以订单号分区，保证同一订单的事件有序；缺订单号时退回订单 ID
func messageKey(payload queue.OrderStatusEventPayload) []byte {
	if payload.OrderNo != "" {
		return []byte(payload.OrderNo)
	}
	return []byte(strconv.FormatUint(uint64(payload.OrderID), 10))
}

// BuildMessage 构建 Kafka 消息
func BuildMessage(payload queue.OrderStatusEventPayload) (kafka.Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   messageKey(payload),
		Value: body,
		Time:  payload.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(payload.EventType)},
			{Key: "event_id", Value: []byte(payload.EventID)},
		},
	}, nil
}
