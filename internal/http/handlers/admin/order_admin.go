package admin

import (
	"strconv"
	"strings"

	"github.com/dujiao-next/marketcore/internal/constants"
	handlershared "github.com/dujiao-next/marketcore/internal/http/handlers/shared"
	"github.com/dujiao-next/marketcore/internal/http/response"
	"github.com/dujiao-next/marketcore/internal/repository"
	"github.com/dujiao-next/marketcore/internal/service"

	"github.com/gin-gonic/gin"
)

// CancelOrderRequest 管理员取消订单请求
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// GetAdminOrders 获取订单列表
func (h *Handler) GetAdminOrders(c *gin.Context) {
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

	filter := repository.OrderListFilter{
		Status:      strings.TrimSpace(c.Query("status")),
		OrderNo:     strings.TrimSpace(c.Query("order_no")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	}
	if id, ok := parseUintQuery(c, "merchant_id"); ok {
		filter.MerchantID = id
	}
	if id, ok := parseUintQuery(c, "customer_id"); ok {
		filter.CustomerID = id
	}
	filter.Page, filter.PageSize = handlershared.ParsePagination(c)

	orders, total, err := h.OrderService.ListOrdersForAdmin(filter)
	if err != nil {
		respondOrderLookupError(c, err)
		return
	}

	response.SuccessWithPage(c, orders, response.BuildPagination(filter.Page, filter.PageSize, total))
}

// GetAdminOrder 获取订单详情
func (h *Handler) GetAdminOrder(c *gin.Context) {
	orderID, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	order, err := h.OrderService.GetOrderForAdmin(orderID)
	if err != nil {
		respondOrderLookupError(c, err)
		return
	}

	response.Success(c, order)
}

// CancelAdminOrder 管理员取消订单
func (h *Handler) CancelAdminOrder(c *gin.Context) {
	adminID, ok := getAdminID(c)
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
		ActorRole: constants.RoleAdmin,
		ActorID:   adminID,
		Reason:    req.Reason,
	})
	if err != nil {
		respondOrderCancelError(c, err)
		return
	}

	requestLog(c).Infow("admin_order_cancelled", "order_id", orderID, "admin_id", adminID)
	response.Success(c, order)
}

func parseUintQuery(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(strings.TrimSpace(c.Query(name)), 10, 64)
	if err != nil || value == 0 {
		return 0, false
	}
	return uint(value), true
}
