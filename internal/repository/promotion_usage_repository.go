package repository

import (
	"github.com/dujiao-next/marketcore/internal/models"

	"gorm.io/gorm"
)

// PromotionUsageRepository 活动使用记录数据访问接口
type PromotionUsageRepository interface {
	Create(usage *models.PromotionUsage) error
	SumProductCountByCustomer(promotionID, customerID uint) (int, error)
	ListByPromotion(promotionID uint, page, pageSize int) ([]models.PromotionUsage, int64, error)
	WithTx(tx *gorm.DB) *GormPromotionUsageRepository
}

// GormPromotionUsageRepository GORM 实现
type GormPromotionUsageRepository struct {
	db *gorm.DB
}

// NewPromotionUsageRepository 创建活动使用记录仓库
func NewPromotionUsageRepository(db *gorm.DB) *GormPromotionUsageRepository {
	return &GormPromotionUsageRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPromotionUsageRepository) WithTx(tx *gorm.DB) *GormPromotionUsageRepository {
	if tx == nil {
		return r
	}
	return &GormPromotionUsageRepository{db: tx}
}

// Create 追加使用记录
func (r *GormPromotionUsageRepository) Create(usage *models.PromotionUsage) error {
	return r.db.Create(usage).Error
}

// SumProductCountByCustomer 统计顾客在活动下已消耗的商品件数
func (r *GormPromotionUsageRepository) SumProductCountByCustomer(promotionID, customerID uint) (int, error) {
	var total int64
	if err := r.db.Model(&models.PromotionUsage{}).
		Where("promotion_id = ? AND customer_id = ?", promotionID, customerID).
		Select("COALESCE(SUM(product_count), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return int(total), nil
}

// ListByPromotion 活动使用记录列表
func (r *GormPromotionUsageRepository) ListByPromotion(promotionID uint, page, pageSize int) ([]models.PromotionUsage, int64, error) {
	query := r.db.Model(&models.PromotionUsage{}).Where("promotion_id = ?", promotionID)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var usages []models.PromotionUsage
	if err := query.Scopes(paginate(page, pageSize)).Order("id desc").Find(&usages).Error; err != nil {
		return nil, 0, err
	}
	return usages, total, nil
}
