package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dujiao-next/marketcore/internal/constants"
	"github.com/dujiao-next/marketcore/internal/logger"
	"github.com/dujiao-next/marketcore/internal/metrics"
	"github.com/dujiao-next/marketcore/internal/models"
	"github.com/dujiao-next/marketcore/internal/queue"
	"github.com/dujiao-next/marketcore/internal/repository"
	"github.com/dujiao-next/marketcore/internal/tracing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

const defaultPaymentExpire = 30 * time.Minute

// OrderService 订单状态机
type OrderService struct {
	orderRepo       repository.OrderRepository
	productRepo     repository.ProductRepository
	merchantRepo    repository.MerchantRepository
	inventory       *InventoryService
	promotions      *PromotionService
	vouchers        *VoucherService
	queueClient     *queue.Client
	paymentExpire   time.Duration
	codeMaxAttempts int
	nextOrderNo     codeGenerator
	nextVerifyCode  codeGenerator
	now             func() time.Time
}

// NewOrderService 创建订单服务
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	merchantRepo repository.MerchantRepository,
	inventory *InventoryService,
	promotions *PromotionService,
	vouchers *VoucherService,
	queueClient *queue.Client,
	paymentExpire time.Duration,
) *OrderService {
	if paymentExpire <= 0 {
		paymentExpire = defaultPaymentExpire
	}
	return &OrderService{
		orderRepo:       orderRepo,
		productRepo:     productRepo,
		merchantRepo:    merchantRepo,
		inventory:       inventory,
		promotions:      promotions,
		vouchers:        vouchers,
		queueClient:     queueClient,
		paymentExpire:   paymentExpire,
		codeMaxAttempts: defaultCodeMaxAttempts,
		nextOrderNo:     generateOrderNo,
		nextVerifyCode:  generateVerificationCode,
		now:             time.Now,
	}
}

// CreateOrderItem 下单商品
type CreateOrderItem struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// CreateOrderInput 创建订单输入
type CreateOrderInput struct {
	CustomerID      uint
	MerchantID      uint
	Items           []CreateOrderItem
	PromotionID     uint
	VoucherCode     string
	DeliveryName    string
	DeliveryPhone   string
	DeliveryAddress string
}

// OrderPreviewItem 预览订单项
type OrderPreviewItem struct {
	ProductID   uint         `json:"product_id"`
	ProductName string       `json:"product_name"`
	CategoryID  uint         `json:"category_id"`
	UnitPrice   models.Money `json:"unit_price"`
	Quantity    int          `json:"quantity"`
	LineTotal   models.Money `json:"line_total"`
}

// OrderPreview 订单金额预览
type OrderPreview struct {
	MerchantID          uint                  `json:"merchant_id"`
	Items               []OrderPreviewItem    `json:"items"`
	OriginalAmount      models.Money          `json:"original_amount"`
	DiscountAmount      models.Money          `json:"discount_amount"`
	VoucherAmount       models.Money          `json:"voucher_amount"`
	TotalAmount         models.Money          `json:"total_amount"`
	MinimumOrderAmount  models.Money          `json:"minimum_order_amount"`
	MeetsMinimum        bool                  `json:"meets_minimum"`
	AppliedPromotion    *ApplicablePromotion  `json:"applied_promotion,omitempty"`
	AvailablePromotions []ApplicablePromotion `json:"available_promotions"`
	StockShortages      []StockShortage       `json:"stock_shortages"`
}

// orderPlan 下单计价结果
type orderPlan struct {
	merchant  *models.Merchant
	lines     []StockLine
	items     []models.OrderItem
	candidate PromotionCandidate
	original  decimal.Decimal
	discount  decimal.Decimal
	voucherAt decimal.Decimal
	total     decimal.Decimal
	promotion *ApplicablePromotion
	voucher   *models.Voucher
}

// PreviewOrder 计算订单金额，不产生任何副作用
func (s *OrderService) PreviewOrder(ctx context.Context, input CreateOrderInput) (*OrderPreview, error) {
	plan, err := s.buildOrderPlan(ctx, input)
	if err != nil {
		return nil, err
	}
	shortages, err := s.inventory.CheckBatch(plan.lines)
	if err != nil {
		return nil, err
	}
	available, err := s.promotions.Evaluate(ctx, plan.candidate)
	if err != nil {
		return nil, err
	}

	preview := &OrderPreview{
		MerchantID:          plan.merchant.ID,
		Items:               make([]OrderPreviewItem, 0, len(plan.items)),
		OriginalAmount:      models.NewMoneyFromDecimal(plan.original),
		DiscountAmount:      models.NewMoneyFromDecimal(plan.discount),
		VoucherAmount:       models.NewMoneyFromDecimal(plan.voucherAt),
		TotalAmount:         models.NewMoneyFromDecimal(plan.total),
		MinimumOrderAmount:  plan.merchant.MinOrderAmount,
		MeetsMinimum:        !plan.total.LessThan(plan.merchant.MinOrderAmount.Decimal),
		AppliedPromotion:    plan.promotion,
		AvailablePromotions: available,
		StockShortages:      shortages,
	}
	for _, item := range plan.items {
		preview.Items = append(preview.Items, OrderPreviewItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			CategoryID:  item.CategoryID,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			LineTotal:   item.LineTotal,
		})
	}
	return preview, nil
}

// CreateOrder 创建订单：扣库存、登记活动使用、核销代金券在同一事务内完成
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (order *models.Order, err error) {
	ctx, span := tracing.Start(ctx, "order.create",
		attribute.Int64("customer_id", int64(input.CustomerID)),
		attribute.Int64("merchant_id", int64(input.MerchantID)),
	)
	defer func() {
		tracing.End(span, err)
		if err != nil {
			metrics.OrderCreateRejected.WithLabelValues(createRejectReason(err)).Inc()
		}
	}()

	deliveryName := strings.TrimSpace(input.DeliveryName)
	deliveryPhone := strings.TrimSpace(input.DeliveryPhone)
	deliveryAddress := strings.TrimSpace(input.DeliveryAddress)
	if deliveryName == "" || deliveryPhone == "" || deliveryAddress == "" {
		return nil, ErrDeliveryInfoRequired
	}

	plan, err := s.buildOrderPlan(ctx, input)
	if err != nil {
		return nil, err
	}
	if plan.total.LessThan(plan.merchant.MinOrderAmount.Decimal) {
		return nil, ErrMinimumOrderNotMet
	}
	shortages, err := s.inventory.CheckBatch(plan.lines)
	if err != nil {
		return nil, err
	}
	if len(shortages) > 0 {
		return nil, &InsufficientStockError{Items: shortages}
	}

	now := s.now()
	deadline := now.Add(s.paymentExpire)
	order = &models.Order{
		CustomerID:      input.CustomerID,
		MerchantID:      plan.merchant.ID,
		Status:          constants.OrderStatusPending,
		OriginalAmount:  models.NewMoneyFromDecimal(plan.original),
		DiscountAmount:  models.NewMoneyFromDecimal(plan.discount),
		VoucherAmount:   models.NewMoneyFromDecimal(plan.voucherAt),
		TotalAmount:     models.NewMoneyFromDecimal(plan.total),
		DeliveryName:    deliveryName,
		DeliveryPhone:   deliveryPhone,
		DeliveryAddress: deliveryAddress,
		PaymentDeadline: deadline,
		AutoCloseAt:     deadline,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if plan.promotion != nil {
		promotionID := plan.promotion.PromotionID
		order.PromotionID = &promotionID
	}
	if plan.voucher != nil {
		voucherID := plan.voucher.ID
		order.VoucherID = &voucherID
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		if _, err := insertWithUniqueCode(tx, s.codeMaxAttempts, s.nextOrderNo, func(sp *gorm.DB, code string) error {
			order.ID = 0
			order.OrderNo = code
			order.VerificationCode = s.nextVerifyCode()
			items := make([]models.OrderItem, len(plan.items))
			copy(items, plan.items)
			return orderRepo.WithTx(sp).Create(order, items)
		}); err != nil {
			return err
		}

		if err := s.inventory.ReserveItems(tx, plan.lines); err != nil {
			return err
		}
		if plan.promotion != nil {
			if err := s.promotions.RecordUsage(tx, RecordUsageInput{
				PromotionID:    plan.promotion.PromotionID,
				OrderID:        order.ID,
				CustomerID:     order.CustomerID,
				OrderAmount:    plan.original,
				DiscountAmount: plan.discount,
				ProductCount:   plan.promotion.ProductCount,
			}); err != nil {
				return err
			}
		}
		if plan.voucher != nil {
			if err := s.vouchers.Redeem(tx, plan.voucher.ID, order.ID, plan.voucherAt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isExpectedCreateError(err) {
			return nil, err
		}
		logger.Errorw("order_create_failed",
			"customer_id", input.CustomerID,
			"merchant_id", input.MerchantID,
			"error", err,
		)
		return nil, ErrOrderCreateFailed
	}

	metrics.OrdersCreated.Inc()
	logger.Infow("order_created",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"customer_id", order.CustomerID,
		"merchant_id", order.MerchantID,
		"total_amount", order.TotalAmount.String(),
	)
	if err := s.queueClient.EnqueueOrderTimeoutClose(queue.OrderTimeoutClosePayload{OrderID: order.ID}, order.AutoCloseAt.Sub(now)); err != nil {
		logger.Warnw("order_enqueue_timeout_close_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"error", err,
		)
	}
	s.publishStatusEvent(order, constants.OrderEventCreated, "", constants.OrderStatusPending, "")

	full, fetchErr := s.orderRepo.GetByID(order.ID)
	if fetchErr == nil && full != nil {
		return full, nil
	}
	return order, nil
}

// buildOrderPlan 校验商户与商品并计价
func (s *OrderService) buildOrderPlan(ctx context.Context, input CreateOrderInput) (*orderPlan, error) {
	if input.CustomerID == 0 || input.MerchantID == 0 {
		return nil, ErrInvalidParams
	}
	requested := make([]StockLine, 0, len(input.Items))
	for _, item := range input.Items {
		requested = append(requested, StockLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	lines, err := mergeStockLines(requested)
	if err != nil {
		return nil, err
	}

	merchant, err := s.merchantRepo.GetByID(input.MerchantID)
	if err != nil {
		return nil, err
	}
	if merchant == nil {
		return nil, ErrMerchantNotFound
	}
	if !merchant.IsActive() {
		return nil, ErrMerchantNotActive
	}

	ids := make([]uint, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	products, err := s.productRepo.ListByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	plan := &orderPlan{
		merchant:  merchant,
		lines:     lines,
		items:     make([]models.OrderItem, 0, len(lines)),
		candidate: PromotionCandidate{MerchantID: merchant.ID, CustomerID: input.CustomerID},
		original:  decimal.Zero,
	}
	for _, line := range lines {
		product, ok := byID[line.ProductID]
		if !ok {
			return nil, ErrProductNotFound
		}
		if product.MerchantID != merchant.ID {
			return nil, ErrProductMerchant
		}
		if !product.IsAvailable {
			return nil, ErrProductNotAvailable
		}
		lineTotal := models.RoundMoney(product.Price.Decimal.Mul(decimal.NewFromInt(int64(line.Quantity))))
		plan.items = append(plan.items, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			CategoryID:  product.CategoryID,
			UnitPrice:   product.Price,
			Quantity:    line.Quantity,
			LineTotal:   models.NewMoneyFromDecimal(lineTotal),
		})
		plan.candidate.Lines = append(plan.candidate.Lines, PromotionCartLine{
			ProductID:  product.ID,
			CategoryID: product.CategoryID,
			Quantity:   line.Quantity,
			LineTotal:  lineTotal,
		})
		plan.original = plan.original.Add(lineTotal)
	}
	plan.original = models.RoundMoney(plan.original)

	plan.discount = decimal.Zero
	if input.PromotionID != 0 {
		applied, err := s.promotions.Match(ctx, input.PromotionID, plan.candidate)
		if err != nil {
			return nil, err
		}
		if err := s.promotions.CheckAvailability(ctx, applied.PromotionID, input.CustomerID, plan.original, applied.ProductCount); err != nil {
			return nil, err
		}
		plan.promotion = applied
		plan.discount = models.MinMoney(applied.DiscountAmount.Decimal, plan.original)
	}
	discounted := models.RoundMoney(plan.original.Sub(plan.discount))

	plan.voucherAt = decimal.Zero
	if code := strings.TrimSpace(input.VoucherCode); code != "" {
		voucher, err := s.vouchers.Resolve(nil, code, input.CustomerID, merchant.ID)
		if err != nil {
			return nil, err
		}
		plan.voucher = voucher
		plan.voucherAt = s.vouchers.AppliedAmount(voucher, discounted)
	}
	plan.total = models.RoundMoney(discounted.Sub(plan.voucherAt))
	if plan.total.LessThan(decimal.Zero) {
		plan.total = decimal.Zero
	}
	return plan, nil
}

// MarkPaid 顾客声明已付款，已处于 customer_paid 时幂等返回
func (s *OrderService) MarkPaid(ctx context.Context, orderID, customerID uint) (*models.Order, error) {
	order, err := s.loadOrder(s.orderRepo.GetByIDAndCustomer(orderID, customerID))
	if err != nil {
		return nil, err
	}
	if order.Status == constants.OrderStatusCustomerPaid {
		return order, nil
	}
	now := s.now()
	if order.Status == constants.OrderStatusPending && !now.Before(order.PaymentDeadline) {
		return nil, ErrOrderPaymentExpired
	}
	return s.transition(ctx, order, constants.OrderStatusCustomerPaid, map[string]interface{}{
		"paid_at": now,
	}, false, "")
}

// ConfirmOrderInput 商户确认收款输入
type ConfirmOrderInput struct {
	OrderID          uint
	MerchantID       uint
	VerificationCode string
	Amount           *decimal.Decimal
}

// ConfirmByMerchant 商户核对核对码与金额后确认收款
func (s *OrderService) ConfirmByMerchant(ctx context.Context, input ConfirmOrderInput) (*models.Order, error) {
	order, err := s.loadOrder(s.orderRepo.GetByIDAndMerchant(input.OrderID, input.MerchantID))
	if err != nil {
		return nil, err
	}
	if !isTransitionAllowed(order.Status, constants.OrderStatusMerchantConfirmed) {
		return nil, &TransitionError{OrderID: order.ID, From: order.Status, To: constants.OrderStatusMerchantConfirmed}
	}
	if normalizeVerificationCode(input.VerificationCode) != order.VerificationCode {
		return nil, ErrVerificationMismatch
	}
	if input.Amount != nil && !models.RoundMoney(*input.Amount).Equal(order.TotalAmount.Decimal) {
		return nil, ErrAmountMismatch
	}
	return s.transition(ctx, order, constants.OrderStatusMerchantConfirmed, map[string]interface{}{
		"confirmed_at": s.now(),
	}, false, "")
}

// ConfirmReceived 顾客确认收货
func (s *OrderService) ConfirmReceived(ctx context.Context, orderID, customerID uint) (*models.Order, error) {
	order, err := s.loadOrder(s.orderRepo.GetByIDAndCustomer(orderID, customerID))
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, order, constants.OrderStatusCustomerReceived, map[string]interface{}{
		"received_at": s.now(),
	}, false, "")
}

// CancelOrderInput 取消订单输入
type CancelOrderInput struct {
	OrderID   uint
	ActorRole string
	ActorID   uint
	Reason    string
}

// CancelOrder 取消非终态订单并回补库存（仅一次），已取消时幂等返回
func (s *OrderService) CancelOrder(ctx context.Context, input CancelOrderInput) (*models.Order, error) {
	var (
		order *models.Order
		err   error
	)
	switch input.ActorRole {
	case constants.RoleCustomer:
		order, err = s.loadOrder(s.orderRepo.GetByIDAndCustomer(input.OrderID, input.ActorID))
	case constants.RoleMerchant:
		order, err = s.loadOrder(s.orderRepo.GetByIDAndMerchant(input.OrderID, input.ActorID))
	case constants.RoleAdmin:
		order, err = s.loadOrder(s.orderRepo.GetByID(input.OrderID))
	default:
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, err
	}
	if order.Status == constants.OrderStatusCancelled {
		return order, nil
	}
	if input.ActorRole == constants.RoleCustomer &&
		order.Status != constants.OrderStatusPending &&
		order.Status != constants.OrderStatusCustomerPaid &&
		!order.IsTerminal() {
		return nil, ErrForbidden
	}
	reason := strings.TrimSpace(input.Reason)
	if runes := []rune(reason); len(runes) > 200 {
		reason = string(runes[:200])
	}
	return s.transition(ctx, order, constants.OrderStatusCancelled, map[string]interface{}{
		"cancelled_at":  s.now(),
		"cancel_reason": reason,
	}, true, reason)
}

// CloseExpiredOrder 超时关闭待付款订单并回补库存，返回本次是否实际关闭
func (s *OrderService) CloseExpiredOrder(ctx context.Context, orderID uint, now time.Time) (bool, error) {
	order, err := s.loadOrder(s.orderRepo.GetByID(orderID))
	if err != nil {
		return false, err
	}
	if order.Status == constants.OrderStatusTimeoutClosed {
		return false, nil
	}
	if order.Status != constants.OrderStatusPending {
		return false, &TransitionError{OrderID: order.ID, From: order.Status, To: constants.OrderStatusTimeoutClosed}
	}
	if now.Before(order.AutoCloseAt) {
		return false, ErrOrderNotExpired
	}
	_, applied, err := s.applyTransition(ctx, order, constants.OrderStatusTimeoutClosed, map[string]interface{}{
		"closed_at": now,
	}, true, "payment_timeout")
	if err != nil {
		return false, err
	}
	return applied, nil
}

func (s *OrderService) transition(ctx context.Context, order *models.Order, to string, updates map[string]interface{}, restoreStock bool, reason string) (*models.Order, error) {
	current, _, err := s.applyTransition(ctx, order, to, updates, restoreStock, reason)
	return current, err
}

// applyTransition 条件更新状态；影响行数为 0 时重新读取订单判断是否已处于目标状态
// applied 表示本次调用是否实际完成了流转
func (s *OrderService) applyTransition(ctx context.Context, order *models.Order, to string, updates map[string]interface{}, restoreStock bool, reason string) (*models.Order, bool, error) {
	from := order.Status
	if !isTransitionAllowed(from, to) {
		return nil, false, &TransitionError{OrderID: order.ID, From: from, To: to}
	}
	_, span := tracing.Start(ctx, "order.transition",
		attribute.Int64("order_id", int64(order.ID)),
		attribute.String("from", from),
		attribute.String("to", to),
	)

	raced := false
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		values := make(map[string]interface{}, len(updates)+1)
		for key, value := range updates {
			values[key] = value
		}
		if restoreStock {
			values["stock_restored"] = true
		}
		affected, err := s.orderRepo.WithTx(tx).TransitionStatus(order.ID, []string{from}, to, values)
		if err != nil {
			return err
		}
		if affected == 0 {
			raced = true
			return nil
		}
		if restoreStock && len(order.Items) > 0 {
			return s.inventory.RestoreItems(tx, stockLinesOfOrder(order))
		}
		return nil
	})
	tracing.End(span, err)
	if err != nil {
		logger.Errorw("order_transition_failed",
			"order_id", order.ID,
			"from", from,
			"to", to,
			"error", err,
		)
		return nil, false, ErrOrderUpdateFailed
	}

	current, fetchErr := s.loadOrder(s.orderRepo.GetByID(order.ID))
	if fetchErr != nil {
		return nil, false, fetchErr
	}
	if raced {
		if current.Status == to {
			return current, false, nil
		}
		return nil, false, &TransitionError{OrderID: order.ID, From: current.Status, To: to}
	}

	metrics.OrderTransitions.WithLabelValues(to).Inc()
	logger.Infow("order_status_changed",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"from", from,
		"to", to,
		"stock_restored", restoreStock,
	)
	s.publishStatusEvent(current, constants.OrderEventStatusChanged, from, to, reason)
	return current, true, nil
}

// publishStatusEvent 入队订单状态事件，失败只记录日志
func (s *OrderService) publishStatusEvent(order *models.Order, eventType, from, to, reason string) {
	if order == nil || !s.queueClient.Enabled() {
		return
	}
	payload := queue.OrderStatusEventPayload{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OrderID:    order.ID,
		OrderNo:    order.OrderNo,
		CustomerID: order.CustomerID,
		MerchantID: order.MerchantID,
		FromStatus: from,
		ToStatus:   to,
		Reason:     reason,
		OccurredAt: s.now(),
	}
	if err := s.queueClient.EnqueueOrderStatusEvent(payload); err != nil {
		logger.Warnw("order_enqueue_status_event_failed",
			"order_id", order.ID,
			"to_status", to,
			"error", err,
		)
	}
}

func (s *OrderService) loadOrder(order *models.Order, err error) (*models.Order, error) {
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func isExpectedCreateError(err error) bool {
	return errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrPromotionIneligible) ||
		errors.Is(err, ErrPromotionNotFound) ||
		errors.Is(err, ErrVoucherNotUsable) ||
		errors.Is(err, ErrVoucherNotFound) ||
		errors.Is(err, ErrCodeGenerationFailed) ||
		errors.Is(err, ErrInvalidOrderItem)
}

func createRejectReason(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrMinimumOrderNotMet):
		return "minimum_not_met"
	case errors.Is(err, ErrMerchantNotActive), errors.Is(err, ErrMerchantNotFound):
		return "merchant_unavailable"
	case errors.Is(err, ErrPromotionIneligible), errors.Is(err, ErrPromotionNotFound):
		return "promotion_ineligible"
	case errors.Is(err, ErrVoucherNotUsable), errors.Is(err, ErrVoucherNotFound):
		return "voucher_unusable"
	case errors.Is(err, ErrProductNotFound), errors.Is(err, ErrProductNotAvailable),
		errors.Is(err, ErrProductMerchant), errors.Is(err, ErrInvalidOrderItem):
		return "invalid_item"
	default:
		return "error"
	}
}
