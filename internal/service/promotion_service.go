package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dujiao-next/marketcore/internal/cache"
	"github.com/dujiao-next/marketcore/internal/constants"
	"github.com/dujiao-next/marketcore/internal/logger"
	"github.com/dujiao-next/marketcore/internal/metrics"
	"github.com/dujiao-next/marketcore/internal/models"
	"github.com/dujiao-next/marketcore/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const defaultPromotionCacheTTL = 30 * time.Second

// PromotionService 活动引擎：匹配、可用性校验、折扣计算与使用登记
type PromotionService struct {
	promotionRepo repository.PromotionRepository
	usageRepo     repository.PromotionUsageRepository
	cacheTTL      time.Duration
	now           func() time.Time
}

// NewPromotionService 创建活动服务
func NewPromotionService(promotionRepo repository.PromotionRepository, usageRepo repository.PromotionUsageRepository, cacheTTL time.Duration) *PromotionService {
	if cacheTTL <= 0 {
		cacheTTL = defaultPromotionCacheTTL
	}
	return &PromotionService{
		promotionRepo: promotionRepo,
		usageRepo:     usageRepo,
		cacheTTL:      cacheTTL,
		now:           time.Now,
	}
}

// PromotionCartLine 参与活动匹配的购物行
type PromotionCartLine struct {
	ProductID  uint
	CategoryID uint
	Quantity   int
	LineTotal  decimal.Decimal
}

// PromotionCandidate 待评估的订单
type PromotionCandidate struct {
	MerchantID uint
	CustomerID uint
	Lines      []PromotionCartLine
}

// Subtotal 订单商品合计
func (c PromotionCandidate) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.LineTotal)
	}
	return models.RoundMoney(total)
}

// ProductCount 订单商品件数
func (c PromotionCandidate) ProductCount() int {
	count := 0
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

// ApplicablePromotion 可用活动及其折扣
type ApplicablePromotion struct {
	PromotionID    uint              `json:"promotion_id"`
	Name           string            `json:"name"`
	PromotionType  string            `json:"promotion_type"`
	DiscountType   string            `json:"discount_type"`
	BaseAmount     models.Money      `json:"base_amount"`
	DiscountAmount models.Money      `json:"discount_amount"`
	ProductCount   int               `json:"product_count"`
	Available      bool              `json:"available"`
	Reason         string            `json:"reason,omitempty"`
	Promotion      *models.Promotion `json:"-"`
}

// RecordUsageInput 登记活动使用
type RecordUsageInput struct {
	PromotionID    uint
	OrderID        uint
	CustomerID     uint
	OrderAmount    decimal.Decimal
	DiscountAmount decimal.Decimal
	ProductCount   int
}

// Evaluate 返回订单可匹配的活动，按可用性与折扣金额降序排列
func (s *PromotionService) Evaluate(ctx context.Context, candidate PromotionCandidate) ([]ApplicablePromotion, error) {
	if candidate.MerchantID == 0 || len(candidate.Lines) == 0 {
		return []ApplicablePromotion{}, nil
	}
	now := s.now()
	promotions, err := s.loadCandidates(ctx, candidate.MerchantID)
	if err != nil {
		return nil, err
	}

	subtotal := candidate.Subtotal()
	result := make([]ApplicablePromotion, 0, len(promotions))
	for i := range promotions {
		promotion := &promotions[i]
		if !promotion.IsActiveAt(now) {
			continue
		}
		base, productCount, ok := matchPromotion(promotion, candidate)
		if !ok {
			continue
		}
		item := ApplicablePromotion{
			PromotionID:    promotion.ID,
			Name:           promotion.Name,
			PromotionType:  promotion.PromotionType,
			DiscountType:   promotion.DiscountType,
			BaseAmount:     models.NewMoneyFromDecimal(base),
			DiscountAmount: s.ComputeDiscount(promotion, base),
			ProductCount:   productCount,
			Available:      true,
			Promotion:      promotion,
		}
		if candidate.CustomerID != 0 {
			if err := s.CheckAvailability(ctx, promotion.ID, candidate.CustomerID, subtotal, productCount); err != nil {
				reason, ok := ineligibleReason(err)
				if !ok {
					return nil, err
				}
				item.Available = false
				item.Reason = reason
			}
		}
		result = append(result, item)
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Available != result[j].Available {
			return result[i].Available
		}
		cmp := result[i].DiscountAmount.Decimal.Cmp(result[j].DiscountAmount.Decimal)
		if cmp != 0 {
			return cmp > 0
		}
		return result[i].PromotionID < result[j].PromotionID
	})
	return result, nil
}

// Match 计算指定活动对订单的折扣基数与消耗件数，不匹配时返回 not_applicable
func (s *PromotionService) Match(ctx context.Context, promotionID uint, candidate PromotionCandidate) (*ApplicablePromotion, error) {
	promotion, err := s.promotionRepo.GetByID(promotionID)
	if err != nil {
		return nil, err
	}
	if promotion == nil || promotion.MerchantID != candidate.MerchantID {
		return nil, ErrPromotionNotFound
	}
	if ok, reason := promotion.WindowReason(s.now()); !ok {
		return nil, &PromotionIneligibleError{PromotionID: promotion.ID, Reason: reason}
	}
	base, productCount, ok := matchPromotion(promotion, candidate)
	if !ok {
		if promotion.PromotionType == constants.PromotionTypeMinimumAmount {
			return nil, &PromotionIneligibleError{PromotionID: promotion.ID, Reason: constants.PromotionReasonBelowMinimum}
		}
		return nil, &PromotionIneligibleError{PromotionID: promotion.ID, Reason: constants.PromotionReasonNotApplicable}
	}
	return &ApplicablePromotion{
		PromotionID:    promotion.ID,
		Name:           promotion.Name,
		PromotionType:  promotion.PromotionType,
		DiscountType:   promotion.DiscountType,
		BaseAmount:     models.NewMoneyFromDecimal(base),
		DiscountAmount: s.ComputeDiscount(promotion, base),
		ProductCount:   productCount,
		Available:      true,
		Promotion:      promotion,
	}, nil
}

// CheckAvailability 依次校验：时间窗口、满额门槛、全局件数上限、全局次数上限、单客件数上限
func (s *PromotionService) CheckAvailability(ctx context.Context, promotionID, customerID uint, orderAmount decimal.Decimal, productCount int) error {
	_ = ctx
	promotion, err := s.promotionRepo.GetByID(promotionID)
	if err != nil {
		return err
	}
	if promotion == nil {
		return ErrPromotionNotFound
	}
	return checkPromotionAvailability(promotion, s.usageRepo, s.now(), customerID, orderAmount, productCount)
}

// ComputeDiscount 计算折扣，结果不超过订单金额且不为负
func (s *PromotionService) ComputeDiscount(promotion *models.Promotion, orderAmount decimal.Decimal) models.Money {
	if promotion == nil || orderAmount.LessThanOrEqual(decimal.Zero) {
		return models.NewMoneyFromDecimal(decimal.Zero)
	}
	value := promotion.DiscountValue.Decimal
	var computed decimal.Decimal
	switch promotion.DiscountType {
	case constants.DiscountTypePercentage:
		computed = orderAmount.Mul(value).Div(decimal.NewFromInt(100))
	case constants.DiscountTypeFixedAmount:
		computed = value
	default:
		computed = decimal.Zero
	}
	computed = models.RoundMoney(computed)
	if computed.LessThan(decimal.Zero) {
		computed = decimal.Zero
	}
	return models.NewMoneyFromDecimal(models.MinMoney(computed, models.RoundMoney(orderAmount)))
}

// RecordUsage 在调用方事务内加锁复核可用性并登记使用
func (s *PromotionService) RecordUsage(tx *gorm.DB, input RecordUsageInput) error {
	if input.PromotionID == 0 || input.OrderID == 0 || input.ProductCount < 0 {
		return ErrPromotionInvalid
	}
	promotionRepo := s.promotionRepo.WithTx(tx)
	usageRepo := s.usageRepo.WithTx(tx)

	promotion, err := promotionRepo.GetByIDForUpdate(input.PromotionID)
	if err != nil {
		return err
	}
	if promotion == nil {
		return ErrPromotionNotFound
	}
	if promotion.IsRedPacket() {
		return &PromotionIneligibleError{PromotionID: promotion.ID, Reason: constants.PromotionReasonNotApplicable}
	}
	if err := checkPromotionAvailability(promotion, usageRepo, s.now(), input.CustomerID, input.OrderAmount, input.ProductCount); err != nil {
		return err
	}

	affected, err := promotionRepo.IncrementUsage(promotion.ID, input.ProductCount)
	if err != nil {
		return err
	}
	if affected == 0 {
		metrics.PromotionRejections.WithLabelValues(constants.PromotionReasonOverGlobalCap).Inc()
		return &PromotionIneligibleError{PromotionID: promotion.ID, Reason: constants.PromotionReasonOverGlobalCap}
	}

	usage := &models.PromotionUsage{
		PromotionID:    promotion.ID,
		OrderID:        input.OrderID,
		CustomerID:     input.CustomerID,
		DiscountAmount: models.NewMoneyFromDecimal(input.DiscountAmount),
		ProductCount:   input.ProductCount,
		CreatedAt:      s.now(),
	}
	return usageRepo.Create(usage)
}

// InvalidateMerchantCache 清除商户活动候选缓存
func (s *PromotionService) InvalidateMerchantCache(ctx context.Context, merchantID uint) {
	if err := cache.Del(ctx, promotionCandidatesCacheKey(merchantID)); err != nil {
		logger.Warnw("promotion_cache_invalidate_failed", "merchant_id", merchantID, "error", err)
	}
}

// loadCandidates 读取商户启用中的活动（配置经缓存，计数以数据库为准）
func (s *PromotionService) loadCandidates(ctx context.Context, merchantID uint) ([]models.Promotion, error) {
	return cache.LoadJSON(ctx, promotionCandidatesCacheKey(merchantID), s.cacheTTL, func(context.Context) ([]models.Promotion, error) {
		return s.promotionRepo.ListCandidatesByMerchant(merchantID)
	})
}

func promotionCandidatesCacheKey(merchantID uint) string {
	return fmt.Sprintf("promotions:merchant:%d:candidates", merchantID)
}

func checkPromotionAvailability(promotion *models.Promotion, usageRepo repository.PromotionUsageRepository, now time.Time, customerID uint, orderAmount decimal.Decimal, productCount int) error {
	reject := func(reason string) error {
		metrics.PromotionRejections.WithLabelValues(reason).Inc()
		return &PromotionIneligibleError{PromotionID: promotion.ID, Reason: reason}
	}
	if ok, reason := promotion.WindowReason(now); !ok {
		return reject(reason)
	}
	if promotion.PromotionType == constants.PromotionTypeMinimumAmount &&
		orderAmount.LessThan(promotion.MinimumAmount.Decimal) {
		return reject(constants.PromotionReasonBelowMinimum)
	}
	if promotion.MaxUsageProductCount > 0 &&
		promotion.CurrentUsageProductCount+productCount > promotion.MaxUsageProductCount {
		return reject(constants.PromotionReasonOverGlobalCap)
	}
	if promotion.MaxUsageCount > 0 && promotion.CurrentUsageCount+1 > promotion.MaxUsageCount {
		return reject(constants.PromotionReasonOverGlobalCap)
	}
	if promotion.MaxUsagePerCustomer > 0 {
		used, err := usageRepo.SumProductCountByCustomer(promotion.ID, customerID)
		if err != nil {
			return err
		}
		if used+productCount > promotion.MaxUsagePerCustomer {
			return reject(constants.PromotionReasonOverUserCap)
		}
	}
	return nil
}

// matchPromotion 判断活动类型约束，返回折扣基数与消耗件数
func matchPromotion(promotion *models.Promotion, candidate PromotionCandidate) (decimal.Decimal, int, bool) {
	switch promotion.PromotionType {
	case constants.PromotionTypeGeneral:
		return candidate.Subtotal(), candidate.ProductCount(), true
	case constants.PromotionTypeMinimumAmount:
		subtotal := candidate.Subtotal()
		if subtotal.LessThan(promotion.MinimumAmount.Decimal) {
			return decimal.Zero, 0, false
		}
		return subtotal, candidate.ProductCount(), true
	case constants.PromotionTypeProductSpecific:
		return sumMatchingLines(candidate.Lines, func(line PromotionCartLine) bool {
			return promotion.ProductIDs.Contains(line.ProductID)
		})
	case constants.PromotionTypeCategorySpecific:
		return sumMatchingLines(candidate.Lines, func(line PromotionCartLine) bool {
			return line.CategoryID != 0 && promotion.CategoryIDs.Contains(line.CategoryID)
		})
	default:
		return decimal.Zero, 0, false
	}
}

func sumMatchingLines(lines []PromotionCartLine, match func(PromotionCartLine) bool) (decimal.Decimal, int, bool) {
	base := decimal.Zero
	count := 0
	for _, line := range lines {
		if !match(line) {
			continue
		}
		base = base.Add(line.LineTotal)
		count += line.Quantity
	}
	if count == 0 {
		return decimal.Zero, 0, false
	}
	return models.RoundMoney(base), count, true
}

func ineligibleReason(err error) (string, bool) {
	ineligible, ok := err.(*PromotionIneligibleError)
	if !ok || ineligible == nil {
		return "", false
	}
	return ineligible.Reason, true
}
