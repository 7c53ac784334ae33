package provider

import (
	"time"

	"github.com/dujiao-next/marketcore/internal/authz"
	"github.com/dujiao-next/marketcore/internal/cache"
	"github.com/dujiao-next/marketcore/internal/config"
	"github.com/dujiao-next/marketcore/internal/event"
	"github.com/dujiao-next/marketcore/internal/logger"
	"github.com/dujiao-next/marketcore/internal/models"
	"github.com/dujiao-next/marketcore/internal/queue"
	"github.com/dujiao-next/marketcore/internal/repository"
	"github.com/dujiao-next/marketcore/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config         *config.Config
	QueueClient    *queue.Client
	EventPublisher event.Publisher

	// Repositories
	MerchantRepo       repository.MerchantRepository
	OrderRepo          repository.OrderRepository
	ProductRepo        repository.ProductRepository
	PromotionRepo      repository.PromotionRepository
	PromotionUsageRepo repository.PromotionUsageRepository
	RedPacketClaimRepo repository.RedPacketClaimRepository
	VoucherRepo        repository.VoucherRepository

	// Services
	AuthzService          *authz.Service
	AuthService           *service.AuthService
	InventoryService      *service.InventoryService
	PromotionService      *service.PromotionService
	PromotionAdminService *service.PromotionAdminService
	RedPacketService      *service.RedPacketService
	VoucherService        *service.VoucherService
	OrderService          *service.OrderService
	TimeoutReaper         *service.TimeoutReaper
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	publisher, err := event.NewPublisher(cfg.Kafka)
	if err != nil {
		logger.Errorw("provider_init_event_publisher_failed", "error", err)
		publisher = event.NoopPublisher{}
	}

	c := &Container{
		Config:         cfg,
		QueueClient:    queueClient,
		EventPublisher: publisher,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

// Close 释放容器持有的外部连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			logger.Warnw("provider_close_queue_client_failed", "error", err)
		}
	}
	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			logger.Warnw("provider_close_event_publisher_failed", "error", err)
		}
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}

func (c *Container) initRepositories() {
	db := models.DB
	c.MerchantRepo = repository.NewMerchantRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.PromotionRepo = repository.NewPromotionRepository(db)
	c.PromotionUsageRepo = repository.NewPromotionUsageRepository(db)
	c.RedPacketClaimRepo = repository.NewRedPacketClaimRepository(db)
	c.VoucherRepo = repository.NewVoucherRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	cfg := c.Config
	c.AuthService = service.NewAuthService(cfg.JWT)
	c.InventoryService = service.NewInventoryService(c.ProductRepo)
	c.PromotionService = service.NewPromotionService(c.PromotionRepo, c.PromotionUsageRepo, time.Duration(cfg.Promotion.CacheTTLSeconds)*time.Second)
	c.PromotionAdminService = service.NewPromotionAdminService(c.PromotionRepo, c.RedPacketClaimRepo, c.PromotionUsageRepo, c.PromotionService)
	c.VoucherService = service.NewVoucherService(c.VoucherRepo)
	c.RedPacketService = service.NewRedPacketService(c.PromotionRepo, c.RedPacketClaimRepo, c.VoucherRepo, cfg.RedPacket.VoucherCodeMaxAttempts)
	c.OrderService = service.NewOrderService(
		c.OrderRepo,
		c.ProductRepo,
		c.MerchantRepo,
		c.InventoryService,
		c.PromotionService,
		c.VoucherService,
		c.QueueClient,
		cfg.Order.PaymentExpire(),
	)
	c.TimeoutReaper = service.NewTimeoutReaper(c.OrderRepo, c.OrderService, c.VoucherService, cfg.Order.ReaperBatchSize, cfg.Order.ReaperConcurrency)
}
