package merchant

import (
	"strings"
	"time"

	handlershared "github.com/dujiao-next/marketcore/internal/http/handlers/shared"
	"github.com/dujiao-next/marketcore/internal/http/response"
	"github.com/dujiao-next/marketcore/internal/models"
	"github.com/dujiao-next/marketcore/internal/repository"
	"github.com/dujiao-next/marketcore/internal/service"

	"github.com/gin-gonic/gin"
)

// PromotionRequest 活动创建/更新请求
type PromotionRequest struct {
	Name                 string       `json:"name" binding:"required"`
	PromotionType        string       `json:"promotion_type" binding:"required"`
	DiscountType         string       `json:"discount_type"`
	DiscountValue        models.Money `json:"discount_value"`
	MinimumAmount        models.Money `json:"minimum_amount"`
	ProductIDs           []uint       `json:"product_ids"`
	CategoryIDs          []uint       `json:"category_ids"`
	StartsAt             *time.Time   `json:"starts_at"`
	EndsAt               *time.Time   `json:"ends_at"`
	IsActive             *bool        `json:"is_active"`
	MaxUsageCount        int          `json:"max_usage_count"`
	MaxUsagePerCustomer  int          `json:"max_usage_per_customer"`
	MaxUsageProductCount int          `json:"max_usage_product_count"`
	TotalRedPackets      int          `json:"total_red_packets"`
	VoucherValidityDays  int          `json:"voucher_validity_days"`
}

// PromotionStatusRequest 活动启停请求
type PromotionStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

func (req PromotionRequest) toInput() service.SavePromotionInput {
	return service.SavePromotionInput{
		Name:                 req.Name,
		PromotionType:        req.PromotionType,
		DiscountType:         req.DiscountType,
		DiscountValue:        req.DiscountValue,
		MinimumAmount:        req.MinimumAmount,
		ProductIDs:           req.ProductIDs,
		CategoryIDs:          req.CategoryIDs,
		StartsAt:             req.StartsAt,
		EndsAt:               req.EndsAt,
		IsActive:             req.IsActive,
		MaxUsageCount:        req.MaxUsageCount,
		MaxUsagePerCustomer:  req.MaxUsagePerCustomer,
		MaxUsageProductCount: req.MaxUsageProductCount,
		TotalRedPackets:      req.TotalRedPackets,
		VoucherValidityDays:  req.VoucherValidityDays,
	}
}

func respondPromotionSaveError(c *gin.Context, err error) {
	handlershared.RespondWithMappedError(c, err, handlershared.PromotionSaveErrorRules, response.CodeInternal, "error.promotion_fetch_failed")
}

// ListPromotions 商户活动列表
func (h *Handler) ListPromotions(c *gin.Context) {
	merchantID, ok := getMerchantID(c)
	if !ok {
		return
	}

	page, pageSize := handlershared.ParsePagination(c)
	promotions, total, err := h.PromotionAdminService.List(repository.PromotionListFilter{
		MerchantID:    merchantID,
		PromotionType: strings.TrimSpace(c.Query("promotion_type")),
		Status:        strings.TrimSpace(c.Query("status")),
		Page:          page,
		PageSize:      pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.promotion_fetch_failed", err)
		return
	}

	response.SuccessWithPage(c, promotions, response.BuildPagination(page, pageSize, total))
}

// GetPromotion 商户活动详情
func (h *Handler) GetPromotion(c *gin.Context) {
	merchantID, ok := getMerchantID(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	promotion, err := h.PromotionAdminService.Get(merchantID, id)
	if err != nil {
		respondPromotionSaveError(c, err)
		return
	}

	response.Success(c, promotion)
}

// CreatePromotion 创建活动
func (h *Handler) CreatePromotion(c *gin.Context) {
	merchantID, ok := getMerchantID(c)
	if !ok {
		return
	}

	var req PromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	promotion, err := h.PromotionAdminService.Create(c.Request.Context(), merchantID, req.toInput())
	if err != nil {
		respondPromotionSaveError(c, err)
		return
	}

	response.Success(c, promotion)
}

// UpdatePromotion 更新活动
func (h *Handler) UpdatePromotion(c *gin.Context) {
	merchantID, ok := getMerchantID(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	var req PromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	promotion, err := h.PromotionAdminService.Update(c.Request.Context(), merchantID, id, req.toInput())
	if err != nil {
		respondPromotionSaveError(c, err)
		return
	}

	response.Success(c, promotion)
}

// SetPromotionStatus 启用/停用活动
func (h *Handler) SetPromotionStatus(c *gin.Context) {
	merchantID, ok := getMerchantID(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	var req PromotionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	promotion, err := h.PromotionAdminService.SetActive(c.Request.Context(), merchantID, id, *req.IsActive)
	if err != nil {
		respondPromotionSaveError(c, err)
		return
	}

	response.Success(c, promotion)
}

// ListPromotionUsages 活动使用记录
func (h *Handler) ListPromotionUsages(c *gin.Context) {
	merchantID, ok := getMerchantID(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	page, pageSize := handlershared.ParsePagination(c)
	usages, total, err := h.PromotionAdminService.ListUsages(merchantID, id, page, pageSize)
	if err != nil {
		respondPromotionSaveError(c, err)
		return
	}

	response.SuccessWithPage(c, usages, response.BuildPagination(page, pageSize, total))
}
