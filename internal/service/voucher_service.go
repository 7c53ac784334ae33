package service

import (
	"strings"
	"time"

	"github.com/dujiao-next/marketcore/internal/logger"
	"github.com/dujiao-next/marketcore/internal/models"
	"github.com/dujiao-next/marketcore/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VoucherService 代金券查询与核销
type VoucherService struct {
	voucherRepo repository.VoucherRepository
	now         func() time.Time
}

// NewVoucherService 创建代金券服务
func NewVoucherService(voucherRepo repository.VoucherRepository) *VoucherService {
	return &VoucherService{voucherRepo: voucherRepo, now: time.Now}
}

// ListByUser 用户代金券列表
func (s *VoucherService) ListByUser(userID uint, status string, page, pageSize int) ([]models.Voucher, int64, error) {
	if userID == 0 {
		return nil, 0, ErrInvalidParams
	}
	vouchers, total, err := s.voucherRepo.List(repository.VoucherListFilter{
		UserID:   userID,
		Status:   strings.TrimSpace(status),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, 0, err
	}
	now := s.now()
	for i := range vouchers {
		vouchers[i].Status = vouchers[i].EffectiveStatus(now)
	}
	return vouchers, total, nil
}

// GetForUser 获取用户自己的代金券
func (s *VoucherService) GetForUser(userID uint, code string) (*models.Voucher, error) {
	voucher, err := s.voucherRepo.GetByCode(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	if voucher == nil || voucher.UserID != userID {
		return nil, ErrVoucherNotFound
	}
	voucher.Status = voucher.EffectiveStatus(s.now())
	return voucher, nil
}

// Resolve 在事务内读取并校验待核销的代金券
func (s *VoucherService) Resolve(tx *gorm.DB, code string, userID, merchantID uint) (*models.Voucher, error) {
	voucher, err := s.voucherRepo.WithTx(tx).GetByCode(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	if voucher == nil || voucher.UserID != userID {
		return nil, ErrVoucherNotFound
	}
	if voucher.MerchantID != merchantID || !voucher.UsableAt(s.now()) {
		return nil, ErrVoucherNotUsable
	}
	return voucher, nil
}

// AppliedAmount 抵扣金额不超过应付金额
func (s *VoucherService) AppliedAmount(voucher *models.Voucher, payable decimal.Decimal) decimal.Decimal {
	if voucher == nil || payable.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return models.RoundMoney(models.MinMoney(voucher.Amount.Decimal, payable))
}

// Redeem 条件核销，影响行数为 0 说明已被使用或已过期
func (s *VoucherService) Redeem(tx *gorm.DB, voucherID, orderID uint, amount decimal.Decimal) error {
	affected, err := s.voucherRepo.WithTx(tx).MarkUsed(voucherID, orderID, models.NewMoneyFromDecimal(amount), s.now())
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrVoucherNotUsable
	}
	return nil
}

// ExpireDue 批量标记过期代金券
func (s *VoucherService) ExpireDue() (int64, error) {
	affected, err := s.voucherRepo.ExpireDue(s.now())
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		logger.Infow("voucher_expired_batch", "count", affected)
	}
	return affected, nil
}
