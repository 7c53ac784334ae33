package repository

import (
	"errors"
	"time"

	"github.com/dujiao-next/marketcore/internal/constants"
	"github.com/dujiao-next/marketcore/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PromotionRepository 活动数据访问接口
type PromotionRepository interface {
	GetByID(id uint) (*models.Promotion, error)
	GetByIDForUpdate(id uint) (*models.Promotion, error)
	ListCandidatesByMerchant(merchantID uint) ([]models.Promotion, error)
	List(filter PromotionListFilter) ([]models.Promotion, int64, error)
	Create(promotion *models.Promotion) error
	Update(promotion *models.Promotion) error
	UpdateStatus(id, merchantID uint, status string, updatedAt time.Time) (int64, error)
	IncrementUsage(id uint, productCount int) (int64, error)
	DecrementRedPacket(id uint) (int64, error)
	WithTx(tx *gorm.DB) *GormPromotionRepository
}

// GormPromotionRepository GORM 实现
type GormPromotionRepository struct {
	db *gorm.DB
}

// NewPromotionRepository 创建活动仓库
func NewPromotionRepository(db *gorm.DB) *GormPromotionRepository {
	return &GormPromotionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPromotionRepository) WithTx(tx *gorm.DB) *GormPromotionRepository {
	if tx == nil {
		return r
	}
	return &GormPromotionRepository{db: tx}
}

// GetByID 根据ID获取活动
func (r *GormPromotionRepository) GetByID(id uint) (*models.Promotion, error) {
	if id == 0 {
		return nil, nil
	}
	var promotion models.Promotion
	if err := r.db.First(&promotion, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &promotion, nil
}

// GetByIDForUpdate 加锁获取活动
func (r *GormPromotionRepository) GetByIDForUpdate(id uint) (*models.Promotion, error) {
	if id == 0 {
		return nil, nil
	}
	var promotion models.Promotion
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&promotion, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &promotion, nil
}

// ListCandidatesByMerchant 获取商户启用中的非红包活动
// 结果会被缓存，时间窗口由调用方按请求时刻判断。
func (r *GormPromotionRepository) ListCandidatesByMerchant(merchantID uint) ([]models.Promotion, error) {
	var promotions []models.Promotion
	if err := r.db.Where("merchant_id = ? AND status = ? AND promotion_type <> ?",
		merchantID, constants.PromotionStatusActive, constants.PromotionTypeLuckyRedPacket).
		Order("id asc").
		Find(&promotions).Error; err != nil {
		return nil, err
	}
	return promotions, nil
}

// List 活动列表
func (r *GormPromotionRepository) List(filter PromotionListFilter) ([]models.Promotion, int64, error) {
	query := r.db.Model(&models.Promotion{})
	if filter.MerchantID != 0 {
		query = query.Where("merchant_id = ?", filter.MerchantID)
	}
	if filter.PromotionType != "" {
		query = query.Where("promotion_type = ?", filter.PromotionType)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = query.Scopes(paginate(filter.Page, filter.PageSize))

	var promotions []models.Promotion
	if err := query.Order("id desc").Find(&promotions).Error; err != nil {
		return nil, 0, err
	}
	return promotions, total, nil
}

// Create 创建活动
func (r *GormPromotionRepository) Create(promotion *models.Promotion) error {
	return r.db.Create(promotion).Error
}

// Update 更新活动配置（不覆盖使用计数与红包剩余数）
func (r *GormPromotionRepository) Update(promotion *models.Promotion) error {
	return r.db.Model(promotion).
		Select("name", "discount_type", "discount_value", "promotion_type", "minimum_amount",
			"product_ids", "category_ids", "status", "starts_at", "ends_at",
			"max_usage_count", "max_usage_per_customer", "max_usage_product_count",
			"total_red_packets", "remaining_red_packets", "voucher_validity_days", "updated_at").
		Updates(promotion).Error
}

// UpdateStatus 仅更新启停状态，不触碰计数列
func (r *GormPromotionRepository) UpdateStatus(id, merchantID uint, status string, updatedAt time.Time) (int64, error) {
	if id == 0 || merchantID == 0 {
		return 0, errors.New("invalid promotion status params")
	}
	result := r.db.Model(&models.Promotion{}).
		Where("id = ? AND merchant_id = ?", id, merchantID).
		UpdateColumns(map[string]interface{}{
			"status":     status,
			"updated_at": updatedAt,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// IncrementUsage 条件累加使用计数，超出全局上限时影响行数为 0
func (r *GormPromotionRepository) IncrementUsage(id uint, productCount int) (int64, error) {
	if id == 0 || productCount < 0 {
		return 0, errors.New("invalid promotion usage params")
	}
	result := r.db.Model(&models.Promotion{}).
		Where("id = ?", id).
		Where("max_usage_product_count = 0 OR current_usage_product_count + ? <= max_usage_product_count", productCount).
		Where("max_usage_count = 0 OR current_usage_count + 1 <= max_usage_count").
		UpdateColumns(map[string]interface{}{
			"current_usage_count":         gorm.Expr("current_usage_count + 1"),
			"current_usage_product_count": gorm.Expr("current_usage_product_count + ?", productCount),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// DecrementRedPacket 条件扣减红包剩余数量
func (r *GormPromotionRepository) DecrementRedPacket(id uint) (int64, error) {
	if id == 0 {
		return 0, errors.New("invalid red packet params")
	}
	result := r.db.Model(&models.Promotion{}).
		Where("id = ? AND remaining_red_packets > 0", id).
		UpdateColumn("remaining_red_packets", gorm.Expr("remaining_red_packets - 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
