package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dujiao-next/marketcore/internal/constants"
	"github.com/dujiao-next/marketcore/internal/models"
	"github.com/dujiao-next/marketcore/internal/repository"
)

var verificationCodePattern = regexp.MustCompile(`^[ABCDEFGHJKMNPQRSTUVWXYZ2-9]{6}$`)

func TestAllowedTransitions(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{constants.OrderStatusPending, constants.OrderStatusCustomerPaid, true},
		{constants.OrderStatusPending, constants.OrderStatusTimeoutClosed, true},
		{constants.OrderStatusPending, constants.OrderStatusCancelled, true},
		{constants.OrderStatusPending, constants.OrderStatusCustomerReceived, false},
		{constants.OrderStatusPending, constants.OrderStatusMerchantConfirmed, false},
		{constants.OrderStatusCustomerPaid, constants.OrderStatusMerchantConfirmed, true},
		{constants.OrderStatusCustomerPaid, constants.OrderStatusPending, false},
		{constants.OrderStatusCustomerPaid, constants.OrderStatusTimeoutClosed, false},
		{constants.OrderStatusMerchantConfirmed, constants.OrderStatusCustomerReceived, true},
		{constants.OrderStatusMerchantConfirmed, constants.OrderStatusCancelled, true},
		{constants.OrderStatusCustomerReceived, constants.OrderStatusCancelled, false},
		{constants.OrderStatusTimeoutClosed, constants.OrderStatusCancelled, false},
		{constants.OrderStatusCancelled, constants.OrderStatusPending, false},
	}
	for _, tc := range cases {
		if got := isTransitionAllowed(tc.from, tc.to); got != tc.want {
			t.Fatalf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestCreateOrderWithPromotionAndVoucher(t *testing.T) {
	env := setupServiceTest(t, "order_create_full")
	now := time.Now()
	env.setClock(now)
	merchant := createTestMerchant(t, env.db, constants.MerchantStatusActive, "10.00")
	apple := createTestProduct(t, env.db, merchant.ID, 1, "12.50", 10)
	pear := createTestProduct(t, env.db, merchant.ID, 2, "5.00", 4)
	promotion := createTestPromotion(t, env.db, models.Promotion{
		MerchantID:    merchant.ID,
		PromotionType: constants.PromotionTypeGeneral,
		DiscountType:  constants.DiscountTypePercentage,
		DiscountValue: models.MustMoney("10"),
	})
	voucher := &models.Voucher{
		Code: "V1234567", PromotionID: 99, MerchantID: merchant.ID, UserID: 8,
		Amount: models.MustMoney("3.00"), Status: constants.VoucherStatusActive, ExpiresAt: now.Add(time.Hour),
	}
	if err := env.db.Create(voucher).Error; err != nil {
		t.Fatalf("create voucher failed: %v", err)
	}

	input := defaultOrderInput(8, merchant.ID,
		CreateOrderItem{ProductID: apple.ID, Quantity: 2},
		CreateOrderItem{ProductID: pear.ID, Quantity: 1},
		CreateOrderItem{ProductID: apple.ID, Quantity: 1},
	)
	input.PromotionID = promotion.ID
	input.VoucherCode = "v1234567"

	order, err := env.orders.CreateOrder(context.Background(), input)
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	// 12.50*3 + 5.00 = 42.50, 10% = 4.25, voucher 3.00
	if order.OriginalAmount.String() != "42.50" || order.DiscountAmount.String() != "4.25" ||
		order.VoucherAmount.String() != "3.00" || order.TotalAmount.String() != "35.25" {
		t.Fatalf("unexpected amounts: original %s discount %s voucher %s total %s",
			order.OriginalAmount, order.DiscountAmount, order.VoucherAmount, order.TotalAmount)
	}
	if order.Status != constants.OrderStatusPending {
		t.Fatalf("expected pending, got %s", order.Status)
	}
	if !verificationCodePattern.MatchString(order.VerificationCode) || order.OrderNo == "" {
		t.Fatalf("unexpected codes: %s %s", order.OrderNo, order.VerificationCode)
	}
	if order.PaymentDeadline.Sub(order.CreatedAt) != 30*time.Minute || !order.AutoCloseAt.Equal(order.PaymentDeadline) {
		t.Fatalf("deadline should be created + 30m: created %v deadline %v close %v", order.CreatedAt, order.PaymentDeadline, order.AutoCloseAt)
	}
	if len(order.Items) != 2 {
		t.Fatalf("duplicate lines should merge, got %d items", len(order.Items))
	}
	if got := stockOf(t, env.db, apple.ID); got != 7 {
		t.Fatalf("expected apple stock 7, got %d", got)
	}
	if got := stockOf(t, env.db, pear.ID); got != 3 {
		t.Fatalf("expected pear stock 3, got %d", got)
	}

	got := reloadPromotion(t, env.db, promotion.ID)
	if got.CurrentUsageCount != 1 || got.CurrentUsageProductCount != 4 {
		t.Fatalf("unexpected promotion counters: %d/%d", got.CurrentUsageCount, got.CurrentUsageProductCount)
	}
	used, _ := env.voucherRepo.GetByID(voucher.ID)
	if used.Status != constants.VoucherStatusUsed || used.UsedOrderID == nil || *used.UsedOrderID != order.ID || used.UsedAmount.String() != "3.00" {
		t.Fatalf("voucher not redeemed: %+v", used)
	}

	if _, err := env.orders.CreateOrder(context.Background(), input); !errors.Is(err, ErrVoucherNotUsable) {
		t.Fatalf("used voucher should not be reusable, got %v", err)
	}
}

func TestCreateOrderVoucherCappedAtDiscountedTotal(t *testing.T) {
	env := setupServiceTest(t, "order_voucher_cap")
	merchant := createTestMerchant(t, env.db, constants.MerchantStatusActive, "0")
	product := createTestProduct(t, env.db, merchant.ID, 0, "4.00", 5)
	voucher := &models.Voucher{
		Code: "V7654321", MerchantID: merchant.ID, UserID: 3,
		Amount: models.MustMoney("6.00"), Status: constants.VoucherStatusActive, ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := env.db.Create(voucher).Error; err != nil {
		t.Fatalf("create voucher failed: %v", err)
	}
	input := defaultOrderInput(3, merchant.ID, CreateOrderItem{ProductID: product.ID, Quantity: 1})
	input.VoucherCode = voucher.Code

	order, err := env.orders.CreateOrder(context.Background(), input)
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if order.VoucherAmount.String() != "4.00" || order.TotalAmount.String() != "0.00" {
		t.Fatalf("voucher should be capped at payable total: voucher %s total %s", order.VoucherAmount, order.TotalAmount)
	}
}

func TestCreateOrderVoucherOwnershipAndMerchant(t *testing.T) {
	env := setupServiceTest(t, "order_voucher_owner")
	merchant := createTestMerchant(t, env.db, constants.MerchantStatusActive, "0")
	product := createTestProduct(t, env.db, merchant.ID, 0, "4.00", 5)
	vouchers := []models.Voucher{
		{Code: "V0000010", MerchantID: merchant.ID, UserID: 99, Amount: models.MustMoney("1"), Status: constants.VoucherStatusActive, ExpiresAt: time.Now().Add(time.Hour)},
		{Code: "V0000011", MerchantID: merchant.ID + 1, UserID: 3, Amount: models.MustMoney("1"), Status: constants.VoucherStatusActive, ExpiresAt: time.Now().Add(time.Hour)},
		{Code: "V0000012", MerchantID: merchant.ID, UserID: 3, Amount: models.MustMoney("1"), Status: constants.VoucherStatusActive, ExpiresAt: time.Now().Add(-time.Minute)},
	}
	for i := range vouchers {
		if err := env.db.Create(&vouchers[i]).Error; err != nil {
			t.Fatalf("create voucher failed: %v", err)
		}
	}
	cases := []struct {
		code string
		want error
	}{
		{"V0000010", ErrVoucherNotFound},
		{"V0000011", ErrVoucherNotUsable},
		{"V0000012", ErrVoucherNotUsable},
	}
	for _, tc := range cases {
		input := defaultOrderInput(3, merchant.ID, CreateOrderItem{ProductID: product.ID, Quantity: 1})
		input.VoucherCode = tc.code
		if _, err := env.orders.CreateOrder(context.Background(), input); !errors.Is(err, tc.want) {
			t.Fatalf("voucher %s: expected %v, got %v", tc.code, tc.want, err)
		}
	}
	if got := stockOf(t, env.db, product.ID); got != 5 {
		t.Fatalf("rejected orders must not deduct stock, got %d", got)
	}
}

func TestCreateOrderRejections(t *testing.T) {
	env := setupServiceTest(t, "order_create_rejections")
	active := createTestMerchant(t, env.db, constants.MerchantStatusActive, "20.00")
	suspended := createTestMerchant(t, env.db, constants.MerchantStatusSuspended, "0")
	other := createTestMerchant(t, env.db, constants.MerchantStatusActive, "0")
	product := createTestProduct(t, env.db, active.ID, 0, "10.00", 5)
	foreign := createTestProduct(t, env.db, other.ID, 0, "10.00", 5)
	hidden := createTestProduct(t, env.db, active.ID, 0, "30.00", 5)
	if err := env.db.Model(hidden).Update("is_available", false).Error; err != nil {
		t.Fatalf("hide product failed: %v", err)
	}
	ineligible := createTestPromotion(t, env.db, models.Promotion{
		MerchantID: active.ID, PromotionType: constants.PromotionTypeMinimumAmount,
		DiscountValue: models.MustMoney("5"), MinimumAmount: models.MustMoney("100"),
	})

	withPromotion := defaultOrderInput(1, active.ID, CreateOrderItem{ProductID: product.ID, Quantity: 3})
	withPromotion.PromotionID = ineligible.ID
	noDelivery := defaultOrderInput(1, active.ID, CreateOrderItem{ProductID: product.ID, Quantity: 3})
	noDelivery.DeliveryAddress = "  "

	cases := []struct {
		name  string
		input CreateOrderInput
		want  error
	}{
		{"merchant not active", defaultOrderInput(1, suspended.ID, CreateOrderItem{ProductID: product.ID, Quantity: 1}), ErrMerchantNotActive},
		{"merchant missing", defaultOrderInput(1, 999, CreateOrderItem{ProductID: product.ID, Quantity: 1}), ErrMerchantNotFound},
		{"minimum order", defaultOrderInput(1, active.ID, CreateOrderItem{ProductID: product.ID, Quantity: 1}), ErrMinimumOrderNotMet},
		{"foreign product", defaultOrderInput(1, active.ID, CreateOrderItem{ProductID: foreign.ID, Quantity: 3}), ErrProductMerchant},
		{"unavailable product", defaultOrderInput(1, active.ID, CreateOrderItem{ProductID: hidden.ID, Quantity: 1}), ErrProductNotAvailable},
		{"missing product", defaultOrderInput(1, active.ID, CreateOrderItem{ProductID: 4040, Quantity: 1}), ErrProductNotFound},
		{"empty items", defaultOrderInput(1, active.ID), ErrInvalidOrderItem},
		{"promotion ineligible", withPromotion, ErrPromotionIneligible},
		{"delivery required", noDelivery, ErrDeliveryInfoRequired},
	}
	for _, tc := range cases {
		if _, err := env.orders.CreateOrder(context.Background(), tc.input); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
	var count int64
	env.db.Model(&models.Order{}).Count(&count)
	if count != 0 {
		t.Fatalf("rejected orders must not persist, got %d", count)
	}
}

func TestCreateOrderListsEveryShortItem(t *testing.T) {
	env := setupServiceTest(t, "order_short_items")
	merchant := createTestMerchant(t, env.db, constants.MerchantStatusActive, "0")
	a := createTestProduct(t, env.db, merchant.ID, 0, "1.00", 1)
	b := createTestProduct(t, env.db, merchant.ID, 0, "1.00", 10)
	c := createTestProduct(t, env.db, merchant.ID, 0, "1.00", 0)

	_, err := env.orders.CreateOrder(context.Background(), defaultOrderInput(1, merchant.ID,
		CreateOrderItem{ProductID: a.ID, Quantity: 2},
		CreateOrderItem{ProductID: b.ID, Quantity: 2},
		CreateOrderItem{ProductID: c.ID, Quantity: 1},
	))
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}
	if len(stockErr.Items) != 2 || stockErr.Items[0].ProductID != a.ID || stockErr.Items[1].ProductID != c.ID {
		t.Fatalf("expected both short items, got %+v", stockErr.Items)
	}
	if got := stockOf(t, env.db, b.ID); got != 10 {
		t.Fatalf("sufficient item must not be deducted, got %d", got)
	}
}

func TestCreateOrderConcurrentLastUnit(t *testing.T) {
	env := setupServiceTest(t, "order_last_unit")
	merchant := createTestMerchant(t, env.db, constants.MerchantStatusActive, "0")
	product := createTestProduct(t, env.db, merchant.ID, 0, "9.90", 1)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, customerID := range []uint{1, 2} {
		wg.Add(1)
		go func(customerID uint) {
			defer wg.Done()
			_, err := env.orders.CreateOrder(context.Background(), defaultOrderInput(customerID, merchant.ID, CreateOrderItem{ProductID: product.ID, Quantity: 1}))
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}(customerID)
	}
	wg.Wait()

	var succeeded, short int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrInsufficientStock):
			short++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || short != 1 {
		t.Fatalf("expected one success and one insufficient stock, got %d/%d", succeeded, short)
	}
	if got := stockOf(t, env.db, product.ID); got != 0 {
		t.Fatalf("expected stock 0, got %d", got)
	}
}

func createPendingOrder(t *testing.T, env *serviceTestEnv, customerID uint, quantity int) (*models.Order, *models.Product) {
	t.Helper()
	merchant := createTestMerchant(t, env.db, constants.MerchantStatusActive, "0")
	product := createTestProduct(t, env.db, merchant.ID, 0, "8.00", 10)
	order, err := env.orders.CreateOrder(context.Background(), defaultOrderInput(customerID, merchant.ID, CreateOrderItem{ProductID: product.ID, Quantity: quantity}))
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order, product
}

func TestOrderLifecycle(t *testing.T) {
	env := setupServiceTest(t, "order_lifecycle")
	ctx := context.Background()
	order, _ := createPendingOrder(t, env, 5, 2)

	if _, err := env.orders.ConfirmReceived(ctx, order.ID, 5); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("pending -> customer_received should fail with invalid transition, got %v", err)
	}
	if _, err := env.orders.ConfirmByMerchant(ctx, ConfirmOrderInput{OrderID: order.ID, MerchantID: order.MerchantID, VerificationCode: order.VerificationCode}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("merchant cannot confirm unpaid order, got %v", err)
	}

	paid, err := env.orders.MarkPaid(ctx, order.ID, 5)
	if err != nil || paid.Status != constants.OrderStatusCustomerPaid || paid.PaidAt == nil {
		t.Fatalf("mark paid failed: %v %+v", err, paid)
	}
	again, err := env.orders.MarkPaid(ctx, order.ID, 5)
	if err != nil || again.Status != constants.OrderStatusCustomerPaid {
		t.Fatalf("mark paid should be idempotent: %v", err)
	}
	if _, err := env.orders.MarkPaid(ctx, order.ID, 6); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("other customer should not see order, got %v", err)
	}

	if _, err := env.orders.ConfirmByMerchant(ctx, ConfirmOrderInput{OrderID: order.ID, MerchantID: order.MerchantID, VerificationCode: "000000x"}); !errors.Is(err, ErrVerificationMismatch) {
		t.Fatalf("expected verification mismatch, got %v", err)
	}
	wrongAmount := dec("1.00")
	if _, err := env.orders.ConfirmByMerchant(ctx, ConfirmOrderInput{OrderID: order.ID, MerchantID: order.MerchantID, VerificationCode: order.VerificationCode, Amount: &wrongAmount}); !errors.Is(err, ErrAmountMismatch) {
		t.Fatalf("expected amount mismatch, got %v", err)
	}
	amount := dec("16")
	typed := " " + strings.ToLower(order.VerificationCode) + " "
	confirmed, err := env.orders.ConfirmByMerchant(ctx, ConfirmOrderInput{OrderID: order.ID, MerchantID: order.MerchantID, VerificationCode: typed, Amount: &amount})
	if err != nil || confirmed.Status != constants.OrderStatusMerchantConfirmed || confirmed.ConfirmedAt == nil {
		t.Fatalf("merchant confirm failed: %v", err)
	}

	if _, err := env.orders.MarkPaid(ctx, order.ID, 5); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("cannot move backward to customer_paid, got %v", err)
	}
	received, err := env.orders.ConfirmReceived(ctx, order.ID, 5)
	if err != nil || received.Status != constants.OrderStatusCustomerReceived || received.ReceivedAt == nil {
		t.Fatalf("confirm received failed: %v", err)
	}
	if _, err := env.orders.CancelOrder(ctx, CancelOrderInput{OrderID: order.ID, ActorRole: constants.RoleAdmin, ActorID: 1}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("terminal order cannot be cancelled, got %v", err)
	}
}

func TestMarkPaidAfterDeadline(t *testing.T) {
	env := setupServiceTest(t, "order_paid_after_deadline")
	order, _ := createPendingOrder(t, env, 5, 1)
	env.setClock(order.PaymentDeadline.Add(time.Second))
	if _, err := env.orders.MarkPaid(context.Background(), order.ID, 5); !errors.Is(err, ErrOrderPaymentExpired) {
		t.Fatalf("expected payment expired, got %v", err)
	}
}

func TestCancelOrderRestoresStockOnce(t *testing.T) {
	env := setupServiceTest(t, "order_cancel_once")
	ctx := context.Background()
	order, product := createPendingOrder(t, env, 5, 3)
	if got := stockOf(t, env.db, product.ID); got != 7 {
		t.Fatalf("expected stock 7 after order, got %d", got)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cancelled, err := env.orders.CancelOrder(ctx, CancelOrderInput{OrderID: order.ID, ActorRole: constants.RoleCustomer, ActorID: 5, Reason: "changed mind"})
			if err != nil || cancelled.Status != constants.OrderStatusCancelled {
				t.Errorf("cancel should succeed idempotently: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := stockOf(t, env.db, product.ID); got != 10 {
		t.Fatalf("stock must be restored exactly once, got %d", got)
	}
	stored, _ := env.orderRepo.GetByID(order.ID)
	if !stored.StockRestored || stored.CancelReason != "changed mind" || stored.CancelledAt == nil {
		t.Fatalf("unexpected cancelled order: %+v", stored)
	}
}

func TestCancelOrderPermissions(t *testing.T) {
	env := setupServiceTest(t, "order_cancel_permissions")
	ctx := context.Background()
	order, product := createPendingOrder(t, env, 5, 1)

	if _, err := env.orders.MarkPaid(ctx, order.ID, 5); err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if _, err := env.orders.ConfirmByMerchant(ctx, ConfirmOrderInput{OrderID: order.ID, MerchantID: order.MerchantID, VerificationCode: order.VerificationCode}); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if _, err := env.orders.CancelOrder(ctx, CancelOrderInput{OrderID: order.ID, ActorRole: constants.RoleCustomer, ActorID: 5}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("customer cannot cancel a confirmed order, got %v", err)
	}
	if _, err := env.orders.CancelOrder(ctx, CancelOrderInput{OrderID: order.ID, ActorRole: constants.RoleMerchant, ActorID: order.MerchantID + 100}); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("other merchant should not see order, got %v", err)
	}
	if _, err := env.orders.CancelOrder(ctx, CancelOrderInput{OrderID: order.ID, ActorRole: "guest", ActorID: 5}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("unknown role should be forbidden, got %v", err)
	}
	cancelled, err := env.orders.CancelOrder(ctx, CancelOrderInput{OrderID: order.ID, ActorRole: constants.RoleMerchant, ActorID: order.MerchantID})
	if err != nil || cancelled.Status != constants.OrderStatusCancelled {
		t.Fatalf("merchant cancel failed: %v", err)
	}
	if got := stockOf(t, env.db, product.ID); got != 10 {
		t.Fatalf("expected stock restored to 10, got %d", got)
	}
}

func TestCloseExpiredOrder(t *testing.T) {
	env := setupServiceTest(t, "order_close_expired")
	ctx := context.Background()
	order, product := createPendingOrder(t, env, 5, 4)

	if _, err := env.orders.CloseExpiredOrder(ctx, order.ID, order.AutoCloseAt.Add(-time.Second)); !errors.Is(err, ErrOrderNotExpired) {
		t.Fatalf("expected not expired, got %v", err)
	}
	closed, err := env.orders.CloseExpiredOrder(ctx, order.ID, order.AutoCloseAt)
	if err != nil || !closed {
		t.Fatalf("close failed: %v %v", closed, err)
	}
	closed, err = env.orders.CloseExpiredOrder(ctx, order.ID, order.AutoCloseAt.Add(time.Minute))
	if err != nil || closed {
		t.Fatalf("second close should be a no-op: %v %v", closed, err)
	}
	if got := stockOf(t, env.db, product.ID); got != 10 {
		t.Fatalf("stock must be restored once, got %d", got)
	}
	if _, err := env.orders.CancelOrder(ctx, CancelOrderInput{OrderID: order.ID, ActorRole: constants.RoleAdmin, ActorID: 1}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("timeout closed is terminal, got %v", err)
	}
	if got := stockOf(t, env.db, product.ID); got != 10 {
		t.Fatalf("stock changed after rejected cancel: %d", got)
	}
}

func TestPreviewOrderHasNoSideEffects(t *testing.T) {
	env := setupServiceTest(t, "order_preview")
	merchant := createTestMerchant(t, env.db, constants.MerchantStatusActive, "50.00")
	product := createTestProduct(t, env.db, merchant.ID, 0, "10.00", 2)
	promotion := createTestPromotion(t, env.db, models.Promotion{
		MerchantID: merchant.ID, PromotionType: constants.PromotionTypeGeneral, DiscountValue: models.MustMoney("2"),
	})
	input := defaultOrderInput(1, merchant.ID, CreateOrderItem{ProductID: product.ID, Quantity: 3})
	input.PromotionID = promotion.ID

	preview, err := env.orders.PreviewOrder(context.Background(), input)
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if preview.TotalAmount.String() != "28.00" || preview.MeetsMinimum {
		t.Fatalf("unexpected preview totals: %+v", preview)
	}
	if len(preview.StockShortages) != 1 || preview.StockShortages[0].Available != 2 {
		t.Fatalf("expected shortage in preview: %+v", preview.StockShortages)
	}
	if len(preview.AvailablePromotions) != 1 || preview.AppliedPromotion == nil {
		t.Fatalf("expected promotion in preview: %+v", preview)
	}
	if got := stockOf(t, env.db, product.ID); got != 2 {
		t.Fatalf("preview must not touch stock, got %d", got)
	}
	if got := reloadPromotion(t, env.db, promotion.ID); got.CurrentUsageCount != 0 {
		t.Fatalf("preview must not record usage")
	}
}

func TestListOrders(t *testing.T) {
	env := setupServiceTest(t, "order_list")
	first, _ := createPendingOrder(t, env, 5, 1)
	createPendingOrder(t, env, 5, 1)
	createPendingOrder(t, env, 6, 1)

	orders, total, err := env.orders.ListOrdersForCustomer(repository.OrderListFilter{CustomerID: 5, Page: 1, PageSize: 10})
	if err != nil || total != 2 || len(orders) != 2 {
		t.Fatalf("unexpected customer list: %d %d %v", total, len(orders), err)
	}
	orders, total, err = env.orders.ListOrdersForMerchant(repository.OrderListFilter{MerchantID: first.MerchantID, Page: 1, PageSize: 10})
	if err != nil || total != 1 || orders[0].ID != first.ID {
		t.Fatalf("unexpected merchant list: %d %v", total, err)
	}
	if _, _, err := env.orders.ListOrdersForAdmin(repository.OrderListFilter{Status: "bogus"}); !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("invalid status filter should be rejected, got %v", err)
	}
	found, err := env.orders.GetOrderByOrderNo(first.OrderNo, 5)
	if err != nil || found.ID != first.ID {
		t.Fatalf("get by order no failed: %v", err)
	}
	if _, err := env.orders.GetOrderByOrderNo(first.OrderNo, 6); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("other customer should not see order, got %v", err)
	}
}
