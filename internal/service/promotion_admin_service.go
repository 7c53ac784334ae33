package service

import (
	"context"
	"strings"
	"time"

	"github.com/dujiao-next/marketcore/internal/constants"
	"github.com/dujiao-next/marketcore/internal/logger"
	"github.com/dujiao-next/marketcore/internal/models"
	"github.com/dujiao-next/marketcore/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const defaultVoucherValidityDays = 7

// PromotionAdminService 商户活动管理服务
type PromotionAdminService struct {
	repo      repository.PromotionRepository
	claimRepo repository.RedPacketClaimRepository
	usageRepo repository.PromotionUsageRepository
	engine    *PromotionService
}

// NewPromotionAdminService 创建活动管理服务
func NewPromotionAdminService(
	repo repository.PromotionRepository,
	claimRepo repository.RedPacketClaimRepository,
	usageRepo repository.PromotionUsageRepository,
	engine *PromotionService,
) *PromotionAdminService {
	return &PromotionAdminService{repo: repo, claimRepo: claimRepo, usageRepo: usageRepo, engine: engine}
}

// SavePromotionInput 创建/更新活动输入
type SavePromotionInput struct {
	Name                 string
	PromotionType        string
	DiscountType         string
	DiscountValue        models.Money
	MinimumAmount        models.Money
	ProductIDs           []uint
	CategoryIDs          []uint
	StartsAt             *time.Time
	EndsAt               *time.Time
	IsActive             *bool
	MaxUsageCount        int
	MaxUsagePerCustomer  int
	MaxUsageProductCount int
	TotalRedPackets      int
	VoucherValidityDays  int
}

// Create 创建活动
func (s *PromotionAdminService) Create(ctx context.Context, merchantID uint, input SavePromotionInput) (*models.Promotion, error) {
	if merchantID == 0 {
		return nil, ErrPromotionInvalid
	}
	promotion := &models.Promotion{MerchantID: merchantID, Status: constants.PromotionStatusActive}
	if err := applyPromotionInput(promotion, input); err != nil {
		return nil, err
	}
	if promotion.IsRedPacket() {
		promotion.RemainingRedPackets = promotion.TotalRedPackets
	}
	if err := s.repo.Create(promotion); err != nil {
		return nil, err
	}
	s.invalidate(ctx, merchantID)
	logger.Infow("promotion_created",
		"promotion_id", promotion.ID,
		"merchant_id", merchantID,
		"promotion_type", promotion.PromotionType,
	)
	return promotion, nil
}

// Update 更新活动配置，红包总数不得低于已领取数
func (s *PromotionAdminService) Update(ctx context.Context, merchantID, id uint, input SavePromotionInput) (*models.Promotion, error) {
	if merchantID == 0 || id == 0 {
		return nil, ErrPromotionInvalid
	}
	var updated *models.Promotion
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if existing == nil || existing.MerchantID != merchantID {
			return ErrPromotionNotFound
		}
		previousType := existing.PromotionType
		if err := applyPromotionInput(existing, input); err != nil {
			return err
		}
		if existing.PromotionType != previousType && (previousType == constants.PromotionTypeLuckyRedPacket || existing.IsRedPacket()) {
			return ErrPromotionInvalid
		}
		if existing.IsRedPacket() {
			claimed, err := s.claimRepo.WithTx(tx).CountByPromotion(existing.ID)
			if err != nil {
				return err
			}
			if int64(existing.TotalRedPackets) < claimed {
				return ErrPromotionPoolShrink
			}
			existing.RemainingRedPackets = existing.TotalRedPackets - int(claimed)
		}
		existing.UpdatedAt = time.Now()
		if err := repo.Update(existing); err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, merchantID)
	return updated, nil
}

// SetActive 启用/停用活动
func (s *PromotionAdminService) SetActive(ctx context.Context, merchantID, id uint, active bool) (*models.Promotion, error) {
	if merchantID == 0 || id == 0 {
		return nil, ErrPromotionNotFound
	}
	status := constants.PromotionStatusDisabled
	if active {
		status = constants.PromotionStatusActive
	}
	affected, err := s.repo.UpdateStatus(id, merchantID, status, time.Now())
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrPromotionNotFound
	}
	s.invalidate(ctx, merchantID)
	return s.Get(merchantID, id)
}

// Get 获取商户自己的活动
func (s *PromotionAdminService) Get(merchantID, id uint) (*models.Promotion, error) {
	if id == 0 {
		return nil, ErrPromotionNotFound
	}
	promotion, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if promotion == nil || (merchantID != 0 && promotion.MerchantID != merchantID) {
		return nil, ErrPromotionNotFound
	}
	return promotion, nil
}

// List 活动列表，merchantID 为 0 时不限商户
func (s *PromotionAdminService) List(filter repository.PromotionListFilter) ([]models.Promotion, int64, error) {
	return s.repo.List(filter)
}

// ListUsages 活动使用记录
func (s *PromotionAdminService) ListUsages(merchantID, id uint, page, pageSize int) ([]models.PromotionUsage, int64, error) {
	if _, err := s.Get(merchantID, id); err != nil {
		return nil, 0, err
	}
	return s.usageRepo.ListByPromotion(id, page, pageSize)
}

func (s *PromotionAdminService) invalidate(ctx context.Context, merchantID uint) {
	if s.engine != nil {
		s.engine.InvalidateMerchantCache(ctx, merchantID)
	}
}

func applyPromotionInput(promotion *models.Promotion, input SavePromotionInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return ErrPromotionInvalid
	}
	promotionType := strings.ToLower(strings.TrimSpace(input.PromotionType))
	discountType := strings.ToLower(strings.TrimSpace(input.DiscountType))
	switch promotionType {
	case constants.PromotionTypeGeneral, constants.PromotionTypeMinimumAmount,
		constants.PromotionTypeProductSpecific, constants.PromotionTypeCategorySpecific,
		constants.PromotionTypeLuckyRedPacket:
	default:
		return ErrPromotionInvalid
	}
	if promotionType == constants.PromotionTypeLuckyRedPacket {
		discountType = constants.DiscountTypeFixedAmount
	}
	if discountType != constants.DiscountTypePercentage && discountType != constants.DiscountTypeFixedAmount {
		return ErrPromotionInvalid
	}
	value := models.RoundMoney(input.DiscountValue.Decimal)
	if value.LessThanOrEqual(decimal.Zero) {
		return ErrPromotionInvalid
	}
	if discountType == constants.DiscountTypePercentage && value.GreaterThan(decimal.NewFromInt(100)) {
		return ErrPromotionInvalid
	}
	minimum := models.RoundMoney(input.MinimumAmount.Decimal)
	if minimum.LessThan(decimal.Zero) {
		return ErrPromotionInvalid
	}
	if promotionType == constants.PromotionTypeMinimumAmount && minimum.LessThanOrEqual(decimal.Zero) {
		return ErrPromotionInvalid
	}
	productIDs := normalizeIDs(input.ProductIDs)
	categoryIDs := normalizeIDs(input.CategoryIDs)
	if promotionType == constants.PromotionTypeProductSpecific && len(productIDs) == 0 {
		return ErrPromotionInvalid
	}
	if promotionType == constants.PromotionTypeCategorySpecific && len(categoryIDs) == 0 {
		return ErrPromotionInvalid
	}
	if input.StartsAt != nil && input.EndsAt != nil && !input.EndsAt.After(*input.StartsAt) {
		return ErrPromotionInvalid
	}
	if input.MaxUsageCount < 0 || input.MaxUsagePerCustomer < 0 || input.MaxUsageProductCount < 0 {
		return ErrPromotionInvalid
	}

	validityDays := 0
	totalPackets := 0
	if promotionType == constants.PromotionTypeLuckyRedPacket {
		if input.TotalRedPackets <= 0 || input.VoucherValidityDays < 0 {
			return ErrPromotionInvalid
		}
		totalPackets = input.TotalRedPackets
		validityDays = input.VoucherValidityDays
		if validityDays == 0 {
			validityDays = defaultVoucherValidityDays
		}
	}

	promotion.Name = name
	promotion.PromotionType = promotionType
	promotion.DiscountType = discountType
	promotion.DiscountValue = models.NewMoneyFromDecimal(value)
	promotion.MinimumAmount = models.NewMoneyFromDecimal(minimum)
	promotion.ProductIDs = productIDs
	promotion.CategoryIDs = categoryIDs
	promotion.StartsAt = input.StartsAt
	promotion.EndsAt = input.EndsAt
	promotion.MaxUsageCount = input.MaxUsageCount
	promotion.MaxUsagePerCustomer = input.MaxUsagePerCustomer
	promotion.MaxUsageProductCount = input.MaxUsageProductCount
	promotion.TotalRedPackets = totalPackets
	promotion.VoucherValidityDays = validityDays
	if input.IsActive != nil {
		promotion.Status = constants.PromotionStatusDisabled
		if *input.IsActive {
			promotion.Status = constants.PromotionStatusActive
		}
	}
	return nil
}

func normalizeIDs(ids []uint) models.IDList {
	result := make(models.IDList, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
