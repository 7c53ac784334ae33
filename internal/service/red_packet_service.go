package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/dujiao-next/marketcore/internal/constants"
	"github.com/dujiao-next/marketcore/internal/logger"
	"github.com/dujiao-next/marketcore/internal/metrics"
	"github.com/dujiao-next/marketcore/internal/models"
	"github.com/dujiao-next/marketcore/internal/repository"
	"github.com/dujiao-next/marketcore/internal/tracing"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

var minRedPacketAmount = decimal.New(1, -2)

// RedPacketService 拼手气红包领取服务
type RedPacketService struct {
	promotionRepo   repository.PromotionRepository
	claimRepo       repository.RedPacketClaimRepository
	voucherRepo     repository.VoucherRepository
	codeMaxAttempts int
	nextCode        codeGenerator
	randFloat       func() float64
	now             func() time.Time
}

// NewRedPacketService 创建红包服务
func NewRedPacketService(
	promotionRepo repository.PromotionRepository,
	claimRepo repository.RedPacketClaimRepository,
	voucherRepo repository.VoucherRepository,
	codeMaxAttempts int,
) *RedPacketService {
	return &RedPacketService{
		promotionRepo:   promotionRepo,
		claimRepo:       claimRepo,
		voucherRepo:     voucherRepo,
		codeMaxAttempts: codeMaxAttempts,
		nextCode:        generateVoucherCode,
		randFloat:       rand.Float64,
		now:             time.Now,
	}
}

// ClaimResult 领取结果
type ClaimResult struct {
	PromotionID uint         `json:"promotion_id"`
	VoucherID   uint         `json:"voucher_id"`
	VoucherCode string       `json:"voucher_code"`
	Amount      models.Money `json:"amount"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

// Claim 领取红包：扣减剩余数、写入领取记录与代金券在同一事务内完成
func (s *RedPacketService) Claim(ctx context.Context, promotionID, userID uint) (result *ClaimResult, err error) {
	ctx, span := tracing.Start(ctx, "red_packet.claim",
		attribute.Int64("promotion_id", int64(promotionID)),
		attribute.Int64("user_id", int64(userID)),
	)
	defer func() { tracing.End(span, err) }()
	_ = ctx

	if promotionID == 0 || userID == 0 {
		return nil, ErrInvalidParams
	}
	now := s.now()

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		promotionRepo := s.promotionRepo.WithTx(tx)
		claimRepo := s.claimRepo.WithTx(tx)
		voucherRepo := s.voucherRepo.WithTx(tx)

		promotion, err := promotionRepo.GetByIDForUpdate(promotionID)
		if err != nil {
			return err
		}
		if promotion == nil {
			return ErrPromotionNotFound
		}
		if !promotion.IsRedPacket() || !promotion.IsActiveAt(now) {
			return ErrPromotionNotActive
		}
		if promotion.RemainingRedPackets <= 0 {
			return ErrRedPacketExhausted
		}
		existing, err := claimRepo.GetByPromotionAndUser(promotion.ID, userID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrRedPacketAlreadyClaimed
		}

		affected, err := promotionRepo.DecrementRedPacket(promotion.ID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrRedPacketExhausted
		}

		amount := s.drawAmount(promotion.DiscountValue.Decimal)
		validityDays := promotion.VoucherValidityDays
		if validityDays <= 0 {
			validityDays = defaultVoucherValidityDays
		}
		voucher := &models.Voucher{
			PromotionID: promotion.ID,
			MerchantID:  promotion.MerchantID,
			UserID:      userID,
			Amount:      models.NewMoneyFromDecimal(amount),
			Status:      constants.VoucherStatusActive,
			ExpiresAt:   now.AddDate(0, 0, validityDays),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if _, err := insertWithUniqueCode(tx, s.codeMaxAttempts, s.nextCode, func(sp *gorm.DB, code string) error {
			voucher.ID = 0
			voucher.Code = code
			return voucherRepo.WithTx(sp).Create(voucher)
		}); err != nil {
			return err
		}

		claim := &models.RedPacketClaim{
			PromotionID: promotion.ID,
			UserID:      userID,
			VoucherID:   voucher.ID,
			Amount:      voucher.Amount,
			ClaimedAt:   now,
		}
		if err := claimRepo.Create(claim); err != nil {
			if repository.IsUniqueViolation(err) {
				return ErrRedPacketAlreadyClaimed
			}
			return err
		}

		result = &ClaimResult{
			PromotionID: promotion.ID,
			VoucherID:   voucher.ID,
			VoucherCode: voucher.Code,
			Amount:      voucher.Amount,
			ExpiresAt:   voucher.ExpiresAt,
		}
		return nil
	})
	if err != nil {
		metrics.RedPacketClaims.WithLabelValues(claimResultLabel(err)).Inc()
		if !isExpectedClaimError(err) {
			logger.Errorw("red_packet_claim_failed",
				"promotion_id", promotionID,
				"user_id", userID,
				"error", err,
			)
			if errors.Is(err, ErrCodeGenerationFailed) {
				return nil, err
			}
			return nil, ErrRedPacketClaimFailed
		}
		return nil, err
	}
	metrics.RedPacketClaims.WithLabelValues("success").Inc()
	logger.Infow("red_packet_claimed",
		"promotion_id", promotionID,
		"user_id", userID,
		"voucher_id", result.VoucherID,
		"amount", result.Amount.String(),
	)
	return result, nil
}

// drawAmount 平均金额上下浮动 1 元，最低 0.01
func (s *RedPacketService) drawAmount(average decimal.Decimal) decimal.Decimal {
	offset := decimal.NewFromFloat(s.randFloat()*2 - 1)
	amount := models.RoundMoney(average.Add(offset))
	if amount.LessThan(minRedPacketAmount) {
		return minRedPacketAmount
	}
	return amount
}

func isExpectedClaimError(err error) bool {
	return errors.Is(err, ErrRedPacketExhausted) ||
		errors.Is(err, ErrRedPacketAlreadyClaimed) ||
		errors.Is(err, ErrPromotionNotActive) ||
		errors.Is(err, ErrPromotionNotFound) ||
		errors.Is(err, ErrInvalidParams)
}

func claimResultLabel(err error) string {
	switch {
	case errors.Is(err, ErrRedPacketExhausted):
		return "exhausted"
	case errors.Is(err, ErrRedPacketAlreadyClaimed):
		return "already_claimed"
	case errors.Is(err, ErrPromotionNotActive), errors.Is(err, ErrPromotionNotFound):
		return "not_active"
	default:
		return "error"
	}
}
