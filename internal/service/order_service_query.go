package service

import (
	"strings"

	"github.com/dujiao-next/marketcore/internal/models"
	"github.com/dujiao-next/marketcore/internal/repository"
)

// GetOrderForCustomer 顾客获取自己的订单
func (s *OrderService) GetOrderForCustomer(orderID, customerID uint) (*models.Order, error) {
	return s.loadOrder(s.orderRepo.GetByIDAndCustomer(orderID, customerID))
}

// GetOrderForMerchant 商户获取自己的订单
func (s *OrderService) GetOrderForMerchant(orderID, merchantID uint) (*models.Order, error) {
	return s.loadOrder(s.orderRepo.GetByIDAndMerchant(orderID, merchantID))
}

// GetOrderForAdmin 管理端获取订单
func (s *OrderService) GetOrderForAdmin(orderID uint) (*models.Order, error) {
	return s.loadOrder(s.orderRepo.GetByID(orderID))
}

// GetOrderByOrderNo 按订单号获取顾客订单
func (s *OrderService) GetOrderByOrderNo(orderNo string, customerID uint) (*models.Order, error) {
	orderNo = strings.TrimSpace(orderNo)
	if orderNo == "" {
		return nil, ErrOrderNotFound
	}
	order, err := s.loadOrder(s.orderRepo.GetByOrderNo(orderNo))
	if err != nil {
		return nil, err
	}
	if customerID != 0 && order.CustomerID != customerID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListOrdersForCustomer 顾客订单列表
func (s *OrderService) ListOrdersForCustomer(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	if filter.CustomerID == 0 {
		return nil, 0, ErrInvalidParams
	}
	filter.MerchantID = 0
	return s.listOrders(filter)
}

// ListOrdersForMerchant 商户订单列表
func (s *OrderService) ListOrdersForMerchant(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	if filter.MerchantID == 0 {
		return nil, 0, ErrInvalidParams
	}
	return s.listOrders(filter)
}

// ListOrdersForAdmin 管理端订单列表
func (s *OrderService) ListOrdersForAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.listOrders(filter)
}

func (s *OrderService) listOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	filter.Status = strings.TrimSpace(filter.Status)
	if filter.Status != "" && !IsValidOrderStatus(filter.Status) {
		return nil, 0, ErrInvalidParams
	}
	orders, total, err := s.orderRepo.List(filter)
	if err != nil {
		return nil, 0, ErrOrderFetchFailed
	}
	return orders, total, nil
}
