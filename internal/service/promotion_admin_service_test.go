package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dujiao-next/marketcore/internal/constants"
	"github.com/dujiao-next/marketcore/internal/models"
	"github.com/dujiao-next/marketcore/internal/repository"

	"gorm.io/gorm"
)

func TestApplyPromotionInputValidation(t *testing.T) {
	start := time.Now()
	before := start.Add(-time.Hour)
	base := func() SavePromotionInput {
		return SavePromotionInput{
			Name:          "spring",
			PromotionType: constants.PromotionTypeGeneral,
			DiscountType:  constants.DiscountTypeFixedAmount,
			DiscountValue: models.MustMoney("5"),
		}
	}
	cases := []struct {
		name   string
		mutate func(*SavePromotionInput)
		valid  bool
	}{
		{"ok", func(*SavePromotionInput) {}, true},
		{"empty name", func(in *SavePromotionInput) { in.Name = " " }, false},
		{"unknown type", func(in *SavePromotionInput) { in.PromotionType = "bundle" }, false},
		{"unknown discount type", func(in *SavePromotionInput) { in.DiscountType = "free" }, false},
		{"zero value", func(in *SavePromotionInput) { in.DiscountValue = models.MustMoney("0") }, false},
		{"percentage over 100", func(in *SavePromotionInput) {
			in.DiscountType = constants.DiscountTypePercentage
			in.DiscountValue = models.MustMoney("100.01")
		}, false},
		{"percentage 100", func(in *SavePromotionInput) {
			in.DiscountType = constants.DiscountTypePercentage
			in.DiscountValue = models.MustMoney("100")
		}, true},
		{"minimum type without minimum", func(in *SavePromotionInput) { in.PromotionType = constants.PromotionTypeMinimumAmount }, false},
		{"product type without products", func(in *SavePromotionInput) { in.PromotionType = constants.PromotionTypeProductSpecific }, false},
		{"category type with categories", func(in *SavePromotionInput) {
			in.PromotionType = constants.PromotionTypeCategorySpecific
			in.CategoryIDs = []uint{3, 3, 0}
		}, true},
		{"window reversed", func(in *SavePromotionInput) {
			in.StartsAt = &start
			in.EndsAt = &before
		}, false},
		{"negative cap", func(in *SavePromotionInput) { in.MaxUsagePerCustomer = -1 }, false},
		{"red packet without pool", func(in *SavePromotionInput) { in.PromotionType = constants.PromotionTypeLuckyRedPacket }, false},
	}
	for _, tc := range cases {
		input := base()
		tc.mutate(&input)
		promotion := &models.Promotion{}
		err := applyPromotionInput(promotion, input)
		if tc.valid && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.valid && !errors.Is(err, ErrPromotionInvalid) {
			t.Fatalf("%s: expected invalid, got %v", tc.name, err)
		}
		if tc.name == "category type with categories" && len(promotion.CategoryIDs) != 1 {
			t.Fatalf("category ids should be normalized, got %v", promotion.CategoryIDs)
		}
	}
}

func TestPromotionAdminCreateRedPacket(t *testing.T) {
	env := setupServiceTest(t, "promotion_admin_red_packet")
	promotion, err := env.promotionAdmin.Create(context.Background(), 4, SavePromotionInput{
		Name:            "lucky",
		PromotionType:   constants.PromotionTypeLuckyRedPacket,
		DiscountType:    constants.DiscountTypePercentage,
		DiscountValue:   models.MustMoney("3.5"),
		TotalRedPackets: 20,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if promotion.DiscountType != constants.DiscountTypeFixedAmount {
		t.Fatalf("red packet should use fixed amount, got %s", promotion.DiscountType)
	}
	if promotion.RemainingRedPackets != 20 || promotion.VoucherValidityDays != 7 {
		t.Fatalf("unexpected pool: remaining %d validity %d", promotion.RemainingRedPackets, promotion.VoucherValidityDays)
	}
	if !promotion.IsActiveAt(time.Now()) {
		t.Fatalf("new promotion should be active")
	}
}

func TestPromotionAdminUpdatePoolAgainstClaims(t *testing.T) {
	env := setupServiceTest(t, "promotion_admin_pool")
	ctx := context.Background()
	input := SavePromotionInput{
		Name:            "lucky",
		PromotionType:   constants.PromotionTypeLuckyRedPacket,
		DiscountValue:   models.MustMoney("2"),
		TotalRedPackets: 5,
	}
	promotion, err := env.promotionAdmin.Create(ctx, 1, input)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	for _, userID := range []uint{1, 2, 3} {
		if _, err := env.redPackets.Claim(ctx, promotion.ID, userID); err != nil {
			t.Fatalf("claim failed: %v", err)
		}
	}

	input.TotalRedPackets = 2
	if _, err := env.promotionAdmin.Update(ctx, 1, promotion.ID, input); !errors.Is(err, ErrPromotionPoolShrink) {
		t.Fatalf("expected pool shrink error, got %v", err)
	}
	input.TotalRedPackets = 8
	updated, err := env.promotionAdmin.Update(ctx, 1, promotion.ID, input)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.RemainingRedPackets != 5 {
		t.Fatalf("remaining should be total minus claimed, got %d", updated.RemainingRedPackets)
	}

	input.PromotionType = constants.PromotionTypeGeneral
	if _, err := env.promotionAdmin.Update(ctx, 1, promotion.ID, input); !errors.Is(err, ErrPromotionInvalid) {
		t.Fatalf("red packet type change should be rejected, got %v", err)
	}
	if _, err := env.promotionAdmin.Update(ctx, 2, promotion.ID, input); !errors.Is(err, ErrPromotionNotFound) {
		t.Fatalf("other merchant should not update, got %v", err)
	}
}

func TestPromotionAdminSetActiveAndList(t *testing.T) {
	env := setupServiceTest(t, "promotion_admin_active")
	ctx := context.Background()
	promotion, err := env.promotionAdmin.Create(ctx, 1, SavePromotionInput{
		Name:          "general",
		PromotionType: constants.PromotionTypeGeneral,
		DiscountType:  constants.DiscountTypeFixedAmount,
		DiscountValue: models.MustMoney("1"),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	disabled, err := env.promotionAdmin.SetActive(ctx, 1, promotion.ID, false)
	if err != nil || disabled.Status != constants.PromotionStatusDisabled {
		t.Fatalf("disable failed: %v", err)
	}
	results, err := env.promotions.Evaluate(ctx, PromotionCandidate{
		MerchantID: 1,
		Lines:      []PromotionCartLine{{ProductID: 1, Quantity: 1, LineTotal: dec("10")}},
	})
	if err != nil || len(results) != 0 {
		t.Fatalf("disabled promotion must not be evaluated: %v %+v", err, results)
	}
	if _, err := env.promotionAdmin.SetActive(ctx, 9, promotion.ID, true); !errors.Is(err, ErrPromotionNotFound) {
		t.Fatalf("other merchant should not toggle, got %v", err)
	}

	list, total, err := env.promotionAdmin.List(repository.PromotionListFilter{MerchantID: 1, Page: 1, PageSize: 10})
	if err != nil || total != 1 || len(list) != 1 {
		t.Fatalf("unexpected list: %d %v", total, err)
	}
	usages, total, err := env.promotionAdmin.ListUsages(1, promotion.ID, 1, 10)
	if err != nil || total != 0 || len(usages) != 0 {
		t.Fatalf("unexpected usages: %d %v", total, err)
	}
}

func TestPromotionAdminSetActiveKeepsRedPacketPool(t *testing.T) {
	env := setupServiceTest(t, "promotion_admin_active_pool")
	ctx := context.Background()
	promotion := createRedPacketPromotion(t, env, "2", 3)
	if _, err := env.redPackets.Claim(ctx, promotion.ID, 1); err != nil {
		t.Fatalf("first claim failed: %v", err)
	}

	// 状态切换过程中插入一次领取
	var armed atomic.Bool
	var fired atomic.Bool
	var claimErr error
	err := env.db.Callback().Query().After("gorm:query").Register("test:claim_during_toggle", func(db *gorm.DB) {
		if db.Statement.Table != "promotions" || !armed.CompareAndSwap(true, false) {
			return
		}
		fired.Store(true)
		_, claimErr = env.redPackets.Claim(ctx, promotion.ID, 42)
	})
	if err != nil {
		t.Fatalf("register callback failed: %v", err)
	}
	armed.Store(true)
	if _, err := env.promotionAdmin.SetActive(ctx, 1, promotion.ID, true); err != nil {
		t.Fatalf("set active failed: %v", err)
	}
	if !fired.Load() || claimErr != nil {
		t.Fatalf("interleaved claim did not run: fired=%v err=%v", fired.Load(), claimErr)
	}

	claimed, err := env.claimRepo.CountByPromotion(promotion.ID)
	if err != nil {
		t.Fatalf("count claims failed: %v", err)
	}
	stored := reloadPromotion(t, env.db, promotion.ID)
	if claimed != 2 || stored.RemainingRedPackets != 1 {
		t.Fatalf("pool drifted: total=%d claimed=%d remaining=%d", stored.TotalRedPackets, claimed, stored.RemainingRedPackets)
	}

	if _, err := env.promotionAdmin.SetActive(ctx, 1, promotion.ID, false); err != nil {
		t.Fatalf("disable failed: %v", err)
	}
	stored = reloadPromotion(t, env.db, promotion.ID)
	if stored.Status != constants.PromotionStatusDisabled || stored.RemainingRedPackets != 1 {
		t.Fatalf("disable must only touch status: %+v", stored)
	}
}
