package public

import (
	"github.com/dujiao-next/marketcore/internal/http/response"
	"github.com/dujiao-next/marketcore/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// EvaluatePromotionsRequest 购物车活动评估请求
type EvaluatePromotionsRequest struct {
	MerchantID uint               `json:"merchant_id" binding:"required"`
	Items      []OrderItemRequest `json:"items" binding:"required"`
}

// EvaluatePromotions 评估购物车可用活动，不产生任何使用记录
func (h *Handler) EvaluatePromotions(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req EvaluatePromotionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	candidate, err := h.buildPromotionCandidate(uid, req)
	if err != nil {
		respondOrderPreviewError(c, err)
		return
	}

	promotions, err := h.PromotionService.Evaluate(c.Request.Context(), candidate)
	if err != nil {
		respondError(c, response.CodeInternal, "error.promotion_fetch_failed", err)
		return
	}

	response.Success(c, gin.H{"promotions": promotions})
}

func (h *Handler) buildPromotionCandidate(customerID uint, req EvaluatePromotionsRequest) (service.PromotionCandidate, error) {
	candidate := service.PromotionCandidate{MerchantID: req.MerchantID, CustomerID: customerID}
	if len(req.Items) == 0 {
		return candidate, service.ErrInvalidOrderItem
	}
	quantities := make(map[uint]int, len(req.Items))
	ids := make([]uint, 0, len(req.Items))
	for _, item := range req.Items {
		if item.ProductID == 0 || item.Quantity <= 0 {
			return candidate, service.ErrInvalidOrderItem
		}
		if _, seen := quantities[item.ProductID]; !seen {
			ids = append(ids, item.ProductID)
		}
		quantities[item.ProductID] += item.Quantity
	}

	products, err := h.ProductRepo.ListByIDs(ids)
	if err != nil {
		return candidate, err
	}
	if len(products) != len(ids) {
		return candidate, service.ErrProductNotFound
	}
	for _, product := range products {
		if product.MerchantID != req.MerchantID {
			return candidate, service.ErrProductMerchant
		}
		quantity := quantities[product.ID]
		candidate.Lines = append(candidate.Lines, service.PromotionCartLine{
			ProductID:  product.ID,
			CategoryID: product.CategoryID,
			Quantity:   quantity,
			LineTotal:  product.Price.Decimal.Mul(decimal.NewFromInt(int64(quantity))),
		})
	}
	return candidate, nil
}
