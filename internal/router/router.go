package router

import (
	"fmt"
	"strings"

	"github.com/dujiao-next/marketcore/internal/cache"
	"github.com/dujiao-next/marketcore/internal/config"
	adminhandlers "github.com/dujiao-next/marketcore/internal/http/handlers/admin"
	merchanthandlers "github.com/dujiao-next/marketcore/internal/http/handlers/merchant"
	publichandlers "github.com/dujiao-next/marketcore/internal/http/handlers/public"
	"github.com/dujiao-next/marketcore/internal/http/response"
	"github.com/dujiao-next/marketcore/internal/logger"
	"github.com/dujiao-next/marketcore/internal/models"
	"github.com/dujiao-next/marketcore/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.Z()
	r := gin.New()

	// 初始化 Handler（按顾客/商户/管理端分组）
	publicHandler := publichandlers.New(c)
	merchantHandler := merchanthandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "mc"
	}
	redisClient := cache.Client()
	claimRule := RateLimitRule{
		Name:          "red_packet_claim",
		Prefix:        fmt.Sprintf("%s:rate:red_packet_claim", redisPrefix),
		WindowSeconds: cfg.RedPacket.ClaimRateLimit.WindowSeconds,
		MaxRequests:   cfg.RedPacket.ClaimRateLimit.MaxRequests,
		BlockSeconds:  cfg.RedPacket.ClaimRateLimit.BlockSeconds,
		MessageKey:    "error.red_packet_rate_limited",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))
	if cfg.Metrics.Enabled {
		r.Use(MetricsMiddleware())
	}

	r.GET("/healthz", healthCheck)
	if cfg.Metrics.Enabled {
		metricsPath := strings.TrimSpace(cfg.Metrics.Path)
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
		r.GET(metricsPath, gin.WrapH(promhttp.Handler()))
	}

	apiV1 := r.Group("/api/v1")
	authenticated := apiV1.Group("", JWTAuthMiddleware(cfg.JWT.SecretKey, c.AuthService), RoleRBACMiddleware(c.AuthzService))

	// 顾客接口
	{
		authenticated.POST("/orders/preview", publicHandler.PreviewOrder)
		authenticated.POST("/orders", publicHandler.CreateOrder)
		authenticated.GET("/orders", publicHandler.ListOrders)
		authenticated.GET("/orders/:id", publicHandler.GetOrder)
		authenticated.GET("/orders/no/:order_no", publicHandler.GetOrderByOrderNo)
		authenticated.POST("/orders/:id/pay", publicHandler.MarkPaid)
		authenticated.POST("/orders/:id/receive", publicHandler.ConfirmReceived)
		authenticated.POST("/orders/:id/cancel", publicHandler.CancelOrder)
		authenticated.POST("/promotions/evaluate", publicHandler.EvaluatePromotions)
		authenticated.POST("/red-packets/:promotion_id/claim", RateLimitMiddleware(redisClient, claimRule, KeyByUserID), publicHandler.ClaimRedPacket)
		authenticated.GET("/vouchers", publicHandler.ListVouchers)
		authenticated.GET("/vouchers/:code", publicHandler.GetVoucher)
	}

	// 商户接口
	merchant := authenticated.Group("/merchant")
	{
		merchant.GET("/orders", merchantHandler.ListOrders)
		merchant.GET("/orders/:id", merchantHandler.GetOrder)
		merchant.POST("/orders/:id/confirm", merchantHandler.ConfirmOrder)
		merchant.POST("/orders/:id/cancel", merchantHandler.CancelOrder)
		merchant.GET("/promotions", merchantHandler.ListPromotions)
		merchant.POST("/promotions", merchantHandler.CreatePromotion)
		merchant.GET("/promotions/:id", merchantHandler.GetPromotion)
		merchant.PUT("/promotions/:id", merchantHandler.UpdatePromotion)
		merchant.PATCH("/promotions/:id/status", merchantHandler.SetPromotionStatus)
		merchant.GET("/promotions/:id/usages", merchantHandler.ListPromotionUsages)
	}

	// 管理员接口
	admin := authenticated.Group("/admin")
	{
		admin.GET("/orders", adminHandler.GetAdminOrders)
		admin.GET("/orders/:id", adminHandler.GetAdminOrder)
		admin.POST("/orders/:id/cancel", adminHandler.CancelAdminOrder)
		admin.GET("/promotions", adminHandler.GetAdminPromotions)
		admin.POST("/reaper/run", adminHandler.RunReaper)
		admin.GET("/authz/roles", adminHandler.ListAuthzRoles)
		admin.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
		admin.POST("/authz/policies", adminHandler.GrantAuthzPolicy)
		admin.DELETE("/authz/policies", adminHandler.RevokeAuthzPolicy)
	}

	return r
}

func healthCheck(c *gin.Context) {
	status := gin.H{"database": "ok"}
	if models.DB != nil {
		if sqlDB, err := models.DB.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status["database"] = "unavailable"
			response.Error(c, response.CodeUnavailable, "database unavailable")
			return
		}
	}
	if cache.Enabled() {
		status["redis"] = "ok"
		if err := cache.Ping(c.Request.Context()); err != nil {
			status["redis"] = "unavailable"
		}
	}
	response.Success(c, status)
}
