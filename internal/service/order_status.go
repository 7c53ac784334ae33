package service

import (
	"github.com/dujiao-next/marketcore/internal/constants"
	"github.com/dujiao-next/marketcore/internal/models"
)

var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusPending: {
		constants.OrderStatusCustomerPaid:  true,
		constants.OrderStatusTimeoutClosed: true,
		constants.OrderStatusCancelled:     true,
	},
	constants.OrderStatusCustomerPaid: {
		constants.OrderStatusMerchantConfirmed: true,
		constants.OrderStatusCancelled:         true,
	},
	constants.OrderStatusMerchantConfirmed: {
		constants.OrderStatusCustomerReceived: true,
		constants.OrderStatusCancelled:        true,
	},
}

func isTransitionAllowed(current, target string) bool {
	next, ok := allowedTransitions[current]
	if !ok {
		return false
	}
	return next[target]
}

// IsValidOrderStatus 判断是否为合法订单状态
func IsValidOrderStatus(status string) bool {
	switch status {
	case constants.OrderStatusPending,
		constants.OrderStatusCustomerPaid,
		constants.OrderStatusMerchantConfirmed,
		constants.OrderStatusCustomerReceived,
		constants.OrderStatusTimeoutClosed,
		constants.OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// stockLinesOfOrder 订单项转为库存回补行
func stockLinesOfOrder(order *models.Order) []StockLine {
	if order == nil {
		return nil
	}
	lines := make([]StockLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, StockLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return lines
}
