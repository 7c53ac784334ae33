package app

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/dujiao-next/marketcore/internal/config"
	"github.com/dujiao-next/marketcore/internal/logger"
	"github.com/dujiao-next/marketcore/internal/provider"
	"github.com/dujiao-next/marketcore/internal/router"
	"github.com/dujiao-next/marketcore/internal/tracing"
	"github.com/dujiao-next/marketcore/internal/worker"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, mode string, container *provider.Container) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if container == nil {
		return nil, errors.New("container is nil")
	}

	var services []Service

	// 初始化 HTTP 服务
	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
		httpService := NewHTTPService(addr, engine)
		services = append(services, httpService)
	}

	if mode == ModeAll || mode == ModeWorker {
		// 超时扫描不依赖队列，始终启用
		if container.TimeoutReaper == nil {
			return nil, errors.New("timeout reaper not initialized")
		}
		leaseTTL := time.Duration(cfg.Order.ReaperLeaseSeconds) * time.Second
		reaperService, err := worker.NewReaperService(container.TimeoutReaper, cfg.Order.ReaperInterval(), leaseTTL)
		if err != nil {
			return nil, err
		}
		services = append(services, reaperService)

		if cfg.Queue.Enabled {
			consumer := worker.NewConsumer(container)
			workerService, err := worker.NewService(&cfg.Queue, consumer)
			if err != nil {
				return nil, err
			}
			services = append(services, workerService)
		} else {
			logger.Warnw("app_worker_queue_disabled", "mode", mode)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}

	return NewRunner(services...), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}
	if _, err := ParseMode(opts.Mode); err != nil {
		return err
	}

	shutdownTracing, err := tracing.Init(opts.Config.Tracing)
	if err != nil {
		opts.Logger.Warnw("app_tracing_init_failed", "error", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			opts.Logger.Warnw("app_tracing_shutdown_failed", "error", err)
		}
	}()

	container := provider.NewContainer(opts.Config)
	defer container.Close()

	runner, err := BuildRunner(opts.Config, opts.Mode, container)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode, "services", runner.Names())
	return RunWithOptions(runner, opts)
}
