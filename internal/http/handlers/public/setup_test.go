package public

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dujiao-next/marketcore/internal/constants"
	"github.com/dujiao-next/marketcore/internal/models"
	"github.com/dujiao-next/marketcore/internal/provider"
	"github.com/dujiao-next/marketcore/internal/repository"
	"github.com/dujiao-next/marketcore/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

func setupPublicHandlerTest(t *testing.T, name string) (*gorm.DB, *Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:public_%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
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

	c := &provider.Container{
		MerchantRepo:       repository.NewMerchantRepository(db),
		OrderRepo:          repository.NewOrderRepository(db),
		ProductRepo:        repository.NewProductRepository(db),
		PromotionRepo:      repository.NewPromotionRepository(db),
		PromotionUsageRepo: repository.NewPromotionUsageRepository(db),
		RedPacketClaimRepo: repository.NewRedPacketClaimRepository(db),
		VoucherRepo:        repository.NewVoucherRepository(db),
	}
	c.InventoryService = service.NewInventoryService(c.ProductRepo)
	c.PromotionService = service.NewPromotionService(c.PromotionRepo, c.PromotionUsageRepo, time.Second)
	c.VoucherService = service.NewVoucherService(c.VoucherRepo)
	c.RedPacketService = service.NewRedPacketService(c.PromotionRepo, c.RedPacketClaimRepo, c.VoucherRepo, 5)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.ProductRepo, c.MerchantRepo,
		c.InventoryService, c.PromotionService, c.VoucherService, nil, 30*time.Minute)
	return db, New(c)
}

// newCustomerRouter 模拟鉴权中间件写入的顾客上下文
func newCustomerRouter(h *Handler, userID uint) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", constants.RoleCustomer)
		c.Next()
	})
	r.POST("/orders", h.CreateOrder)
	r.POST("/promotions/:promotion_id/red-packets/claim", h.ClaimRedPacket)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, locale string, body interface{}) envelope {
	t.Helper()
	var payload []byte
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		payload = raw
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if locale != "" {
		req.Header.Set("X-Locale", locale)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected http status: %d", w.Code)
	}
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response failed: %v body=%s", err, w.Body.String())
	}
	return resp
}

func createMerchant(t *testing.T, db *gorm.DB) *models.Merchant {
	t.Helper()
	merchant := &models.Merchant{Name: "merchant", Status: constants.MerchantStatusActive, MinOrderAmount: models.MustMoney("0")}
	if err := db.Create(merchant).Error; err != nil {
		t.Fatalf("create merchant failed: %v", err)
	}
	return merchant
}

func createProduct(t *testing.T, db *gorm.DB, merchantID uint, name string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		MerchantID:    merchantID,
		Name:          name,
		Price:         models.MustMoney("2.50"),
		StockQuantity: stock,
		IsAvailable:   true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}
