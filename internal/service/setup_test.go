package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/dujiao-next/marketcore/internal/constants"
	"github.com/dujiao-next/marketcore/internal/models"
	"github.com/dujiao-next/marketcore/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type serviceTestEnv struct {
	db             *gorm.DB
	orderRepo      *repository.GormOrderRepository
	productRepo    *repository.GormProductRepository
	promotionRepo  *repository.GormPromotionRepository
	claimRepo      *repository.GormRedPacketClaimRepository
	voucherRepo    *repository.GormVoucherRepository
	inventory      *InventoryService
	promotions     *PromotionService
	promotionAdmin *PromotionAdminService
	redPackets     *RedPacketService
	vouchers       *VoucherService
	orders         *OrderService
	reaper         *TimeoutReaper
}

// setupServiceTest 单连接内存库，SQLite 串行化事务，与行锁下的并发语义一致
func setupServiceTest(t *testing.T, name string) *serviceTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	env := &serviceTestEnv{
		db:            db,
		orderRepo:     repository.NewOrderRepository(db),
		productRepo:   repository.NewProductRepository(db),
		promotionRepo: repository.NewPromotionRepository(db),
		claimRepo:     repository.NewRedPacketClaimRepository(db),
		voucherRepo:   repository.NewVoucherRepository(db),
	}
	usageRepo := repository.NewPromotionUsageRepository(db)
	merchantRepo := repository.NewMerchantRepository(db)

	env.inventory = NewInventoryService(env.productRepo)
	env.promotions = NewPromotionService(env.promotionRepo, usageRepo, time.Second)
	env.promotionAdmin = NewPromotionAdminService(env.promotionRepo, env.claimRepo, usageRepo, env.promotions)
	env.redPackets = NewRedPacketService(env.promotionRepo, env.claimRepo, env.voucherRepo, 5)
	env.vouchers = NewVoucherService(env.voucherRepo)
	env.orders = NewOrderService(env.orderRepo, env.productRepo, merchantRepo, env.inventory, env.promotions, env.vouchers, nil, 30*time.Minute)
	env.reaper = NewTimeoutReaper(env.orderRepo, env.orders, env.vouchers, 2, 3)
	return env
}

// setClock 固定所有服务的当前时间
func (e *serviceTestEnv) setClock(now time.Time) {
	clock := func() time.Time { return now }
	e.promotions.now = clock
	e.redPackets.now = clock
	e.vouchers.now = clock
	e.orders.now = clock
}

func createTestMerchant(t *testing.T, db *gorm.DB, status string, minOrder string) *models.Merchant {
	t.Helper()
	merchant := &models.Merchant{
		Name:           "merchant",
		Status:         status,
		MinOrderAmount: models.MustMoney(minOrder),
	}
	if err := db.Create(merchant).Error; err != nil {
		t.Fatalf("create merchant failed: %v", err)
	}
	return merchant
}

func createTestProduct(t *testing.T, db *gorm.DB, merchantID, categoryID uint, price string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		MerchantID:    merchantID,
		CategoryID:    categoryID,
		Name:          fmt.Sprintf("product-%d-%d", merchantID, time.Now().UnixNano()),
		Price:         models.MustMoney(price),
		StockQuantity: stock,
		IsAvailable:   true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func createTestPromotion(t *testing.T, db *gorm.DB, promotion models.Promotion) *models.Promotion {
	t.Helper()
	if promotion.Name == "" {
		promotion.Name = "promotion"
	}
	if promotion.Status == "" {
		promotion.Status = constants.PromotionStatusActive
	}
	if promotion.DiscountType == "" {
		promotion.DiscountType = constants.DiscountTypeFixedAmount
	}
	if err := db.Create(&promotion).Error; err != nil {
		t.Fatalf("create promotion failed: %v", err)
	}
	return &promotion
}

func stockOf(t *testing.T, db *gorm.DB, productID uint) int {
	t.Helper()
	var product models.Product
	if err := db.First(&product, productID).Error; err != nil {
		t.Fatalf("load product failed: %v", err)
	}
	return product.StockQuantity
}

func reloadPromotion(t *testing.T, db *gorm.DB, id uint) models.Promotion {
	t.Helper()
	var promotion models.Promotion
	if err := db.First(&promotion, id).Error; err != nil {
		t.Fatalf("load promotion failed: %v", err)
	}
	return promotion
}

func defaultOrderInput(customerID, merchantID uint, items ...CreateOrderItem) CreateOrderInput {
	return CreateOrderInput{
		CustomerID:      customerID,
		MerchantID:      merchantID,
		Items:           items,
		DeliveryName:    "Lin",
		DeliveryPhone:   "13800000000",
		DeliveryAddress: "1 Market Street",
	}
}

func dec(raw string) decimal.Decimal {
	return decimal.RequireFromString(raw)
}
