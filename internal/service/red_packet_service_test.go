package service

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/dujiao-next/marketcore/internal/constants"
	"github.com/dujiao-next/marketcore/internal/models"
)

var voucherCodePattern = regexp.MustCompile(`^V\d{7}$`)

func createRedPacketPromotion(t *testing.T, env *serviceTestEnv, average string, remaining int) *models.Promotion {
	t.Helper()
	return createTestPromotion(t, env.db, models.Promotion{
		MerchantID:          1,
		PromotionType:       constants.PromotionTypeLuckyRedPacket,
		DiscountValue:       models.MustMoney(average),
		TotalRedPackets:     remaining,
		RemainingRedPackets: remaining,
		VoucherValidityDays: 3,
	})
}

func TestRedPacketClaim(t *testing.T) {
	env := setupServiceTest(t, "red_packet_claim")
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.Local)
	env.setClock(now)
	promotion := createRedPacketPromotion(t, env, "5.00", 3)

	result, err := env.redPackets.Claim(context.Background(), promotion.ID, 42)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if !voucherCodePattern.MatchString(result.VoucherCode) {
		t.Fatalf("unexpected voucher code: %s", result.VoucherCode)
	}
	if result.Amount.Decimal.LessThan(dec("4.00")) || result.Amount.Decimal.GreaterThan(dec("6.00")) {
		t.Fatalf("amount out of range: %s", result.Amount.String())
	}
	if !result.ExpiresAt.Equal(now.AddDate(0, 0, 3)) {
		t.Fatalf("unexpected expiry: %v", result.ExpiresAt)
	}
	if got := reloadPromotion(t, env.db, promotion.ID); got.RemainingRedPackets != 2 {
		t.Fatalf("expected remaining 2, got %d", got.RemainingRedPackets)
	}

	voucher, err := env.voucherRepo.GetByCode(result.VoucherCode)
	if err != nil || voucher == nil {
		t.Fatalf("voucher not persisted: %v", err)
	}
	if voucher.UserID != 42 || voucher.MerchantID != 1 || voucher.Status != constants.VoucherStatusActive {
		t.Fatalf("unexpected voucher: %+v", voucher)
	}

	_, err = env.redPackets.Claim(context.Background(), promotion.ID, 42)
	if !errors.Is(err, ErrRedPacketAlreadyClaimed) {
		t.Fatalf("expected already claimed, got %v", err)
	}
	if got := reloadPromotion(t, env.db, promotion.ID); got.RemainingRedPackets != 2 {
		t.Fatalf("duplicate claim must not decrement, got %d", got.RemainingRedPackets)
	}
}

func TestRedPacketClaimRejections(t *testing.T) {
	env := setupServiceTest(t, "red_packet_claim_rejections")
	now := time.Now()
	env.setClock(now)
	past := now.Add(-time.Hour)

	general := createTestPromotion(t, env.db, models.Promotion{
		MerchantID: 1, PromotionType: constants.PromotionTypeGeneral, DiscountValue: models.MustMoney("1"),
	})
	ended := createTestPromotion(t, env.db, models.Promotion{
		MerchantID: 1, PromotionType: constants.PromotionTypeLuckyRedPacket, DiscountValue: models.MustMoney("1"),
		TotalRedPackets: 5, RemainingRedPackets: 5, EndsAt: &past,
	})
	empty := createTestPromotion(t, env.db, models.Promotion{
		MerchantID: 1, PromotionType: constants.PromotionTypeLuckyRedPacket, DiscountValue: models.MustMoney("1"),
		TotalRedPackets: 5,
	})

	cases := []struct {
		name string
		id   uint
		want error
	}{
		{"not a red packet", general.ID, ErrPromotionNotActive},
		{"window elapsed", ended.ID, ErrPromotionNotActive},
		{"exhausted", empty.ID, ErrRedPacketExhausted},
		{"missing", 9999, ErrPromotionNotFound},
	}
	for _, tc := range cases {
		if _, err := env.redPackets.Claim(context.Background(), tc.id, 1); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestRedPacketLastPacketConcurrentClaims(t *testing.T) {
	env := setupServiceTest(t, "red_packet_last_packet")
	promotion := createRedPacketPromotion(t, env, "2.00", 1)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []error
	)
	for _, userID := range []uint{101, 102} {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			_, err := env.redPackets.Claim(context.Background(), promotion.ID, userID)
			mu.Lock()
			results = append(results, err)
			mu.Unlock()
		}(userID)
	}
	wg.Wait()

	var succeeded, exhausted int
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrRedPacketExhausted):
			exhausted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || exhausted != 1 {
		t.Fatalf("expected one success and one exhausted, got %d/%d", succeeded, exhausted)
	}
	if got := reloadPromotion(t, env.db, promotion.ID); got.RemainingRedPackets != 0 {
		t.Fatalf("remaining should be 0, got %d", got.RemainingRedPackets)
	}
	var vouchers int64
	env.db.Model(&models.Voucher{}).Where("promotion_id = ?", promotion.ID).Count(&vouchers)
	if vouchers != 1 {
		t.Fatalf("expected exactly one voucher, got %d", vouchers)
	}
}

func TestRedPacketSameUserConcurrentClaims(t *testing.T) {
	env := setupServiceTest(t, "red_packet_same_user")
	promotion := createRedPacketPromotion(t, env, "2.00", 10)

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.redPackets.Claim(context.Background(), promotion.ID, 7)
			if err != nil && !errors.Is(err, ErrRedPacketAlreadyClaimed) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	count, err := env.claimRepo.CountByPromotion(promotion.ID)
	if err != nil {
		t.Fatalf("count claims failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one claim, got %d", count)
	}
	if got := reloadPromotion(t, env.db, promotion.ID); got.RemainingRedPackets != 9 {
		t.Fatalf("expected remaining 9, got %d", got.RemainingRedPackets)
	}
}

func TestRedPacketVoucherCodeCollisionRetries(t *testing.T) {
	env := setupServiceTest(t, "red_packet_code_collision")
	promotion := createRedPacketPromotion(t, env, "2.00", 5)
	if err := env.db.Create(&models.Voucher{
		Code: "V0000001", PromotionID: promotion.ID, MerchantID: 1, UserID: 1,
		Amount: models.MustMoney("1"), Status: constants.VoucherStatusActive, ExpiresAt: time.Now().Add(time.Hour),
	}).Error; err != nil {
		t.Fatalf("seed voucher failed: %v", err)
	}

	codes := []string{"V0000001", "V0000001", "V0000002"}
	calls := 0
	env.redPackets.nextCode = func() string {
		code := codes[calls%len(codes)]
		calls++
		return code
	}
	result, err := env.redPackets.Claim(context.Background(), promotion.ID, 2)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if result.VoucherCode != "V0000002" || calls != 3 {
		t.Fatalf("expected retry to V0000002 after 3 attempts, got %s after %d", result.VoucherCode, calls)
	}

	env.redPackets.nextCode = func() string { return "V0000001" }
	_, err = env.redPackets.Claim(context.Background(), promotion.ID, 3)
	if !errors.Is(err, ErrCodeGenerationFailed) {
		t.Fatalf("expected code generation failure, got %v", err)
	}
	if got := reloadPromotion(t, env.db, promotion.ID); got.RemainingRedPackets != 4 {
		t.Fatalf("failed claim must roll back the decrement, remaining %d", got.RemainingRedPackets)
	}
}

func TestRedPacketDrawAmountFloor(t *testing.T) {
	svc := &RedPacketService{}
	cases := []struct {
		average string
		random  float64
		want    string
	}{
		{"5.00", 0.5, "5.00"},
		{"5.00", 0, "4.00"},
		{"5.00", 0.9999, "6.00"},
		{"0.50", 0, "0.01"},
		{"0.01", 0.2, "0.01"},
		{"3.00", 0.755, "3.51"},
	}
	for _, tc := range cases {
		svc.randFloat = func() float64 { return tc.random }
		got := svc.drawAmount(dec(tc.average))
		if got.StringFixed(2) != tc.want {
			t.Fatalf("average %s random %v: expected %s, got %s", tc.average, tc.random, tc.want, got.StringFixed(2))
		}
	}
}
