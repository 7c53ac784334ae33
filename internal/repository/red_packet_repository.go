package repository

import (
	"errors"
	"time"

	"github.com/dujiao-next/marketcore/internal/constants"
	"github.com/dujiao-next/marketcore/internal/models"

	"gorm.io/gorm"
)

// RedPacketClaimRepository 红包领取记录数据访问接口
type RedPacketClaimRepository interface {
	Create(claim *models.RedPacketClaim) error
	GetByPromotionAndUser(promotionID, userID uint) (*models.RedPacketClaim, error)
	CountByPromotion(promotionID uint) (int64, error)
	WithTx(tx *gorm.DB) *GormRedPacketClaimRepository
}

// GormRedPacketClaimRepository GORM 实现
type GormRedPacketClaimRepository struct {
	db *gorm.DB
}

// NewRedPacketClaimRepository 创建红包领取记录仓库
func NewRedPacketClaimRepository(db *gorm.DB) *GormRedPacketClaimRepository {
	return &GormRedPacketClaimRepository{db: db}
}

// WithTx 绑定事务
func (r *GormRedPacketClaimRepository) WithTx(tx *gorm.DB) *GormRedPacketClaimRepository {
	if tx == nil {
		return r
	}
	return &GormRedPacketClaimRepository{db: tx}
}

// Create 写入领取记录
func (r *GormRedPacketClaimRepository) Create(claim *models.RedPacketClaim) error {
	return r.db.Create(claim).Error
}

// GetByPromotionAndUser 查询用户在活动下的领取记录
func (r *GormRedPacketClaimRepository) GetByPromotionAndUser(promotionID, userID uint) (*models.RedPacketClaim, error) {
	var claim models.RedPacketClaim
	if err := r.db.Where("promotion_id = ? AND user_id = ?", promotionID, userID).First(&claim).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &claim, nil
}

// CountByPromotion 统计活动已领取数量
func (r *GormRedPacketClaimRepository) CountByPromotion(promotionID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.RedPacketClaim{}).Where("promotion_id = ?", promotionID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// VoucherRepository 代金券数据访问接口
type VoucherRepository interface {
	Create(voucher *models.Voucher) error
	GetByID(id uint) (*models.Voucher, error)
	GetByCode(code string) (*models.Voucher, error)
	List(filter VoucherListFilter) ([]models.Voucher, int64, error)
	MarkUsed(id uint, orderID uint, usedAmount models.Money, now time.Time) (int64, error)
	ExpireDue(now time.Time) (int64, error)
	WithTx(tx *gorm.DB) *GormVoucherRepository
}

// GormVoucherRepository GORM 实现
type GormVoucherRepository struct {
	db *gorm.DB
}

// NewVoucherRepository 创建代金券仓库
func NewVoucherRepository(db *gorm.DB) *GormVoucherRepository {
	return &GormVoucherRepository{db: db}
}

// WithTx 绑定事务
func (r *GormVoucherRepository) WithTx(tx *gorm.DB) *GormVoucherRepository {
	if tx == nil {
		return r
	}
	return &GormVoucherRepository{db: tx}
}

// Create 创建代金券
func (r *GormVoucherRepository) Create(voucher *models.Voucher) error {
	return r.db.Create(voucher).Error
}

// GetByID 根据 ID 获取代金券
func (r *GormVoucherRepository) GetByID(id uint) (*models.Voucher, error) {
	if id == 0 {
		return nil, nil
	}
	var voucher models.Voucher
	if err := r.db.First(&voucher, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &voucher, nil
}

// GetByCode 根据券码获取代金券
func (r *GormVoucherRepository) GetByCode(code string) (*models.Voucher, error) {
	if code == "" {
		return nil, nil
	}
	var voucher models.Voucher
	if err := r.db.Where("code = ?", code).First(&voucher).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &voucher, nil
}

// List 代金券列表
func (r *GormVoucherRepository) List(filter VoucherListFilter) ([]models.Voucher, int64, error) {
	query := r.db.Model(&models.Voucher{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.MerchantID != 0 {
		query = query.Where("merchant_id = ?", filter.MerchantID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var vouchers []models.Voucher
	if err := query.Scopes(paginate(filter.Page, filter.PageSize)).Order("id desc").Find(&vouchers).Error; err != nil {
		return nil, 0, err
	}
	return vouchers, total, nil
}

// MarkUsed 条件核销代金券（active 且未过期）
func (r *GormVoucherRepository) MarkUsed(id uint, orderID uint, usedAmount models.Money, now time.Time) (int64, error) {
	if id == 0 || orderID == 0 {
		return 0, errors.New("invalid voucher redeem params")
	}
	result := r.db.Model(&models.Voucher{}).
		Where("id = ? AND status = ? AND expires_at > ?", id, constants.VoucherStatusActive, now).
		UpdateColumns(map[string]interface{}{
			"status":        constants.VoucherStatusUsed,
			"used_order_id": orderID,
			"used_amount":   usedAmount,
			"used_at":       now,
			"updated_at":    now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ExpireDue 将已到期的可用代金券标记为过期
func (r *GormVoucherRepository) ExpireDue(now time.Time) (int64, error) {
	result := r.db.Model(&models.Voucher{}).
		Where("status = ? AND expires_at <= ?", constants.VoucherStatusActive, now).
		UpdateColumns(map[string]interface{}{
			"status":     constants.VoucherStatusExpired,
			"updated_at": now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
