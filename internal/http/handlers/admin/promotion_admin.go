package admin

import (
	"strings"

	handlershared "github.com/dujiao-next/marketcore/internal/http/handlers/shared"
	"github.com/dujiao-next/marketcore/internal/http/response"
	"github.com/dujiao-next/marketcore/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetAdminPromotions 跨商户活动列表
func (h *Handler) GetAdminPromotions(c *gin.Context) {
	filter := repository.PromotionListFilter{
		PromotionType: strings.TrimSpace(c.Query("promotion_type")),
		Status:        strings.TrimSpace(c.Query("status")),
	}
	if id, ok := parseUintQuery(c, "merchant_id"); ok {
		filter.MerchantID = id
	}
	filter.Page, filter.PageSize = handlershared.ParsePagination(c)

	promotions, total, err := h.PromotionAdminService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.promotion_fetch_failed", err)
		return
	}

	response.SuccessWithPage(c, promotions, response.BuildPagination(filter.Page, filter.PageSize, total))
}
