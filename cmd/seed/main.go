package main

import (
	"time"

	"github.com/dujiao-next/marketcore/internal/config"
	"github.com/dujiao-next/marketcore/internal/constants"
	"github.com/dujiao-next/marketcore/internal/logger"
	"github.com/dujiao-next/marketcore/internal/models"
	"github.com/dujiao-next/marketcore/internal/service"

	"github.com/shopspring/decimal"
)

const demoMerchantName = "演示商户"

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(models.DBOptions{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN,
		Pool: models.DBPoolConfig{
			MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
			MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
			ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
			ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
		},
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加商户
	var merchant models.Merchant
	if err := models.DB.Where("name = ?", demoMerchantName).First(&merchant).Error; err != nil {
		merchant = models.Merchant{
			Name:           demoMerchantName,
			Status:         constants.MerchantStatusActive,
			MinOrderAmount: models.MustMoney("10"),
		}
		if err := models.DB.Create(&merchant).Error; err != nil {
			stdLog.Fatalf("Failed to create merchant: %v", err)
		}
		stdLog.Printf("Created merchant: %s (id=%d)", merchant.Name, merchant.ID)
	} else {
		stdLog.Printf("Merchant already exists: %s (id=%d)", merchant.Name, merchant.ID)
	}

	// 添加商品
	products := []models.Product{
		{Name: "手冲咖啡豆 250g", CategoryID: 1, Price: models.NewMoneyFromDecimal(decimal.NewFromFloat(58.00)), StockQuantity: 100, IsAvailable: true},
		{Name: "冷萃咖啡 500ml", CategoryID: 1, Price: models.NewMoneyFromDecimal(decimal.NewFromFloat(22.50)), StockQuantity: 40, IsAvailable: true},
		{Name: "陶瓷滤杯", CategoryID: 2, Price: models.NewMoneyFromDecimal(decimal.NewFromFloat(89.00)), StockQuantity: 5, IsAvailable: true},
		{Name: "限量挂耳礼盒（已售罄）", CategoryID: 1, Price: models.NewMoneyFromDecimal(decimal.NewFromFloat(128.00)), StockQuantity: 0, IsAvailable: true},
	}
	productIDs := make([]uint, 0, len(products))
	for _, prod := range products {
		prod.MerchantID = merchant.ID
		var existing models.Product
		if err := models.DB.Where("merchant_id = ? AND name = ?", merchant.ID, prod.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&prod).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", prod.Name, err)
				continue
			}
			stdLog.Printf("Created product: %s", prod.Name)
			productIDs = append(productIDs, prod.ID)
			continue
		}
		existing.Price = prod.Price
		existing.CategoryID = prod.CategoryID
		existing.StockQuantity = prod.StockQuantity
		existing.IsAvailable = prod.IsAvailable
		if err := models.DB.Save(&existing).Error; err != nil {
			stdLog.Printf("Failed to update product %s: %v", prod.Name, err)
		} else {
			stdLog.Printf("Updated product: %s", prod.Name)
		}
		productIDs = append(productIDs, existing.ID)
	}

	// 添加活动
	endsAt := time.Now().AddDate(0, 1, 0)
	promotions := []models.Promotion{
		{
			Name: "全场九折", PromotionType: constants.PromotionTypeGeneral,
			DiscountType: constants.DiscountTypePercentage, DiscountValue: models.MustMoney("10"),
			EndsAt: &endsAt,
		},
		{
			Name: "满 100 减 15", PromotionType: constants.PromotionTypeMinimumAmount,
			DiscountType: constants.DiscountTypeFixedAmount, DiscountValue: models.MustMoney("15"),
			MinimumAmount: models.MustMoney("100"), MaxUsageCount: 200,
		},
		{
			Name: "咖啡豆专享立减", PromotionType: constants.PromotionTypeProductSpecific,
			DiscountType: constants.DiscountTypeFixedAmount, DiscountValue: models.MustMoney("8"),
			ProductIDs: models.IDList(firstIDs(productIDs, 1)), MaxUsagePerCustomer: 3,
		},
		{
			Name: "咖啡品类 85 折", PromotionType: constants.PromotionTypeCategorySpecific,
			DiscountType: constants.DiscountTypePercentage, DiscountValue: models.MustMoney("15"),
			CategoryIDs: models.IDList{1}, MaxUsageProductCount: 50,
		},
		{
			Name: "开业拼手气红包", PromotionType: constants.PromotionTypeLuckyRedPacket,
			DiscountType: constants.DiscountTypeFixedAmount, DiscountValue: models.MustMoney("5"),
			TotalRedPackets: 20, RemainingRedPackets: 20, VoucherValidityDays: 7,
		},
	}
	for _, promo := range promotions {
		promo.MerchantID = merchant.ID
		promo.Status = constants.PromotionStatusActive
		var existing models.Promotion
		if err := models.DB.Where("merchant_id = ? AND name = ?", merchant.ID, promo.Name).First(&existing).Error; err == nil {
			stdLog.Printf("Promotion already exists: %s (id=%d)", existing.Name, existing.ID)
			continue
		}
		if err := models.DB.Create(&promo).Error; err != nil {
			stdLog.Printf("Failed to create promotion %s: %v", promo.Name, err)
			continue
		}
		stdLog.Printf("Created promotion: %s (id=%d)", promo.Name, promo.ID)
	}

	// 签发演示令牌
	auth := service.NewAuthService(cfg.JWT)
	identities := []service.Identity{
		{UserID: 1001, Role: constants.RoleCustomer},
		{UserID: 2001, Role: constants.RoleMerchant, MerchantID: merchant.ID},
		{UserID: 9001, Role: constants.RoleAdmin},
	}
	for _, identity := range identities {
		token, expiresAt, err := auth.GenerateJWT(identity)
		if err != nil {
			stdLog.Printf("Failed to issue %s token: %v", identity.Role, err)
			continue
		}
		stdLog.Printf("Demo %s token (user_id=%d, expires %s):\n%s", identity.Role, identity.UserID, expiresAt.Format(time.RFC3339), token)
	}

	stdLog.Println("Seed data completed successfully!")
}

func firstIDs(ids []uint, n int) []uint {
	if len(ids) < n {
		return ids
	}
	return ids[:n]
}
