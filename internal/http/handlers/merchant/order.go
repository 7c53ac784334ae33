package merchant

import (
	"strings"

	"github.com/dujiao-next/marketcore/internal/constants"
	handlershared "github.com/dujiao-next/marketcore/internal/http/handlers/shared"
	"github.com/dujiao-next/marketcore/internal/http/response"
	"github.com/dujiao-next/marketcore/internal/models"
	"github.com/dujiao-next/marketcore/internal/repository"
	"github.com/dujiao-next/marketcore/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ConfirmOrderRequest 商户确认收款请求
type ConfirmOrderRequest struct {
	VerificationCode string        `json:"verification_code" binding:"required"`
	Amount           *models.Money `json:"amount"`
}

// CancelOrderRequest 商户取消订单请求
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// ListOrders 商户订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	merchantID, ok := getMerchantID(c)
	if !ok {
		return
	}

	createdFrom, err := handlershared.ParseTimeQuery(c, "created_from")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	createdTo, err := handlershared.ParseTimeQuery(c, "created_to")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	page, pageSize := handlershared.ParsePagination(c)
	orders, total, err := h.OrderService.ListOrdersForMerchant(repository.OrderListFilter{
		Page:        page,
		PageSize:    pageSize,
		MerchantID:  merchantID,
		Status:      strings.TrimSpace(c.Query("status")),
		OrderNo:     strings.TrimSpace(c.Query("order_no")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		handlershared.RespondWithMappedError(c, err, handlershared.OrderLookupErrorRules, response.CodeInternal, "error.order_fetch_failed")
		return
	}

	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// GetOrder 商户订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	merchantID, ok := getMerchantID(c)
	if !ok {
		return
	}
	orderID, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	order, err := h.OrderService.GetOrderForMerchant(orderID, merchantID)
	if err != nil {
		handlershared.RespondWithMappedError(c, err, handlershared.OrderLookupErrorRules, response.CodeInternal, "error.order_fetch_failed")
		return
	}

	response.Success(c, order)
}

// ConfirmOrder 商户核对核对码与金额后确认收款
func (h *Handler) ConfirmOrder(c *gin.Context) {
	merchantID, ok := getMerchantID(c)
	if !ok {
		return
	}
	orderID, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	var req ConfirmOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	var amount *decimal.Decimal
	if req.Amount != nil {
		value := req.Amount.Decimal
		amount = &value
	}

	order, err := h.OrderService.ConfirmByMerchant(c.Request.Context(), service.ConfirmOrderInput{
		OrderID:          orderID,
		MerchantID:       merchantID,
		VerificationCode: req.VerificationCode,
		Amount:           amount,
	})
	if err != nil {
		handlershared.RespondWithMappedError(c, err, handlershared.OrderTransitionErrorRules, response.CodeInternal, "error.order_update_failed")
		return
	}

	response.Success(c, order)
}

// CancelOrder 商户取消订单
func (h *Handler) CancelOrder(c *gin.Context) {
	merchantID, ok := getMerchantID(c)
	if !ok {
		return
	}
	orderID, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	var req CancelOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
	}

	order, err := h.OrderService.CancelOrder(c.Request.Context(), service.CancelOrderInput{
		OrderID:   orderID,
		ActorRole: constants.RoleMerchant,
		ActorID:   merchantID,
		Reason:    req.Reason,
	})
	if err != nil {
		handlershared.RespondWithMappedError(c, err, handlershared.OrderTransitionErrorRules, response.CodeInternal, "error.order_update_failed")
		return
	}

	response.Success(c, order)
}
