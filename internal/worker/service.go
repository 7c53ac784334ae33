package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dujiao-next/marketcore/internal/config"
	"github.com/dujiao-next/marketcore/internal/logger"
	"github.com/dujiao-next/marketcore/internal/queue"

	"github.com/hibiken/asynq"
)

// taskServer asynq.Server 的启停能力
type taskServer interface {
	Start(handler asynq.Handler) error
	Shutdown()
}

// Service 订单事件队列消费服务
// 生命周期由 app.Runner 管理，不自行处理系统信号。
type Service struct {
	name   string
	server taskServer
	mux    *asynq.ServeMux

	mu       sync.Mutex
	started  bool
	shutdown sync.Once
}

// NewService 创建队列消费服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return newService(asynq.NewServer(opt, serverCfg), mux), nil
}

func newService(server taskServer, mux *asynq.ServeMux) *Service {
	return &Service{name: "worker", server: server, mux: mux}
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动消费并阻塞到 ctx 结束
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if err := s.server.Start(s.mux); err != nil {
		return fmt.Errorf("start task server: %w", err)
	}
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()
	logger.Infow("worker_consuming", "service", s.Name())

	<-ctx.Done()
	return nil
}

// Stop 等待在途任务结束后关闭；超过 ctx 期限时直接返回
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	if !s.isStarted() {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.shutdown.Do(s.server.Shutdown)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker shutdown: %w", ctx.Err())
	}
}

func (s *Service) isStarted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}
