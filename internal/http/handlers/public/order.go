package public

import (
	"strings"

	"github.com/dujiao-next/marketcore/internal/constants"
	handlershared "github.com/dujiao-next/marketcore/internal/http/handlers/shared"
	"github.com/dujiao-next/marketcore/internal/http/response"
	"github.com/dujiao-next/marketcore/internal/repository"
	"github.com/dujiao-next/marketcore/internal/service"

	"github.com/gin-gonic/gin"
)

// OrderItemRequest 订单项请求
type OrderItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	MerchantID      uint               `json:"merchant_id" binding:"required"`
	Items           []OrderItemRequest `json:"items" binding:"required"`
	PromotionID     uint               `json:"promotion_id"`
	VoucherCode     string             `json:"voucher_code"`
	DeliveryName    string             `json:"delivery_name"`
	DeliveryPhone   string             `json:"delivery_phone"`
	DeliveryAddress string             `json:"delivery_address"`
}

// CancelOrderRequest 取消订单请求
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

func (req CreateOrderRequest) toInput(customerID uint) service.CreateOrderInput {
	items := make([]service.CreateOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.CreateOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return service.CreateOrderInput{
		CustomerID:      customerID,
		MerchantID:      req.MerchantID,
		Items:           items,
		PromotionID:     req.PromotionID,
		VoucherCode:     strings.TrimSpace(req.VoucherCode),
		DeliveryName:    req.DeliveryName,
		DeliveryPhone:   req.DeliveryPhone,
		DeliveryAddress: req.DeliveryAddress,
	}
}

// PreviewOrder 订单金额预览
func (h *Handler) PreviewOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	preview, err := h.OrderService.PreviewOrder(c.Request.Context(), req.toInput(uid))
	if err != nil {
		respondOrderPreviewError(c, err)
		return
	}

	response.Success(c, preview)
}

// CreateOrder 创建订单
func (h *Handler) CreateOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	order, err := h.OrderService.CreateOrder(c.Request.Context(), req.toInput(uid))
	if err != nil {
		respondOrderCreateError(c, err)
		return
	}

	response.Success(c, order)
}

// ListOrders 获取订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, pageSize := handlershared.ParsePagination(c)
	orders, total, err := h.OrderService.ListOrdersForCustomer(repository.OrderListFilter{
		Page:       page,
		PageSize:   pageSize,
		CustomerID: uid,
		Status:     strings.TrimSpace(c.Query("status")),
		OrderNo:    strings.TrimSpace(c.Query("order_no")),
	})
	if err != nil {
		respondOrderLookupError(c, err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, orders, pagination)
}

// GetOrder 获取订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	orderID, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	order, err := h.OrderService.GetOrderForCustomer(orderID, uid)
	if err != nil {
		respondOrderLookupError(c, err)
		return
	}

	response.Success(c, order)
}

// GetOrderByOrderNo 按订单号获取订单详情
func (h *Handler) GetOrderByOrderNo(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	orderNo := strings.TrimSpace(c.Param("order_no"))
	if orderNo == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	order, err := h.OrderService.GetOrderByOrderNo(orderNo, uid)
	if err != nil {
		respondOrderLookupError(c, err)
		return
	}

	response.Success(c, order)
}

// MarkPaid 顾客声明已线下付款
func (h *Handler) MarkPaid(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	orderID, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	order, err := h.OrderService.MarkPaid(c.Request.Context(), orderID, uid)
	if err != nil {
		respondOrderTransitionError(c, err)
		return
	}

	response.Success(c, order)
}

// ConfirmReceived 顾客确认收货
func (h *Handler) ConfirmReceived(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	orderID, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	order, err := h.OrderService.ConfirmReceived(c.Request.Context(), orderID, uid)
	if err != nil {
		respondOrderTransitionError(c, err)
		return
	}

	response.Success(c, order)
}

// CancelOrder 顾客取消订单
func (h *Handler) CancelOrder(c *gin.Context) {
	uid, ok := getUserID(c)
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
		ActorRole: constants.RoleCustomer,
		ActorID:   uid,
		Reason:    req.Reason,
	})
	if err != nil {
		respondOrderTransitionError(c, err)
		return
	}

	response.Success(c, order)
}
