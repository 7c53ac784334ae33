package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dujiao-next/marketcore/internal/constants"

	"github.com/shopspring/decimal"
)

func TestRoundMoneyHalfUp(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "1.005", want: "1.01"},
		{in: "1.004", want: "1.00"},
		{in: "2.345", want: "2.35"},
		{in: "0.125", want: "0.13"},
		{in: "10", want: "10.00"},
	}
	for _, tc := range cases {
		got := RoundMoney(decimal.RequireFromString(tc.in)).StringFixed(2)
		if got != tc.want {
			t.Fatalf("round %s want %s got %s", tc.in, tc.want, got)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	m := MustMoney("12.3")
	body, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal money failed: %v", err)
	}
	if string(body) != `"12.30"` {
		t.Fatalf("unexpected money json: %s", body)
	}

	var fromNumber Money
	if err := json.Unmarshal([]byte(`8.456`), &fromNumber); err != nil {
		t.Fatalf("unmarshal number failed: %v", err)
	}
	if fromNumber.String() != "8.46" {
		t.Fatalf("expected 8.46, got %s", fromNumber.String())
	}
}

func TestIDListScan(t *testing.T) {
	var list IDList
	if err := list.Scan([]byte("[1,2,3]")); err != nil {
		t.Fatalf("scan bytes failed: %v", err)
	}
	if !list.Contains(2) || list.Contains(4) {
		t.Fatalf("unexpected list: %v", list)
	}
	if err := list.Scan("[]"); err != nil {
		t.Fatalf("scan string failed: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %v", list)
	}
	value, err := IDList(nil).Value()
	if err != nil || value != "[]" {
		t.Fatalf("nil list should store [], got %v err=%v", value, err)
	}
}

func TestMerchantIsActiveDerivedFromStatus(t *testing.T) {
	for _, status := range []string{constants.MerchantStatusPending, constants.MerchantStatusSuspended, ""} {
		m := &Merchant{Status: status}
		if m.IsActive() {
			t.Fatalf("status %q should not be active", status)
		}
	}
	if !(&Merchant{Status: constants.MerchantStatusActive}).IsActive() {
		t.Fatalf("active merchant should be active")
	}
	var nilMerchant *Merchant
	if nilMerchant.IsActive() {
		t.Fatalf("nil merchant should not be active")
	}
}

func TestPromotionWindowReason(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	cases := []struct {
		name   string
		p      Promotion
		ok     bool
		reason string
	}{
		{name: "open", p: Promotion{Status: constants.PromotionStatusActive}, ok: true},
		{name: "disabled", p: Promotion{Status: constants.PromotionStatusDisabled}, reason: constants.PromotionReasonNotActive},
		{name: "not_started", p: Promotion{Status: constants.PromotionStatusActive, StartsAt: &future}, reason: constants.PromotionReasonNotActive},
		{name: "ended", p: Promotion{Status: constants.PromotionStatusActive, EndsAt: &past}, reason: constants.PromotionReasonExpired},
		{name: "end_boundary", p: Promotion{Status: constants.PromotionStatusActive, EndsAt: &now}, reason: constants.PromotionReasonExpired},
		{name: "inside", p: Promotion{Status: constants.PromotionStatusActive, StartsAt: &past, EndsAt: &future}, ok: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, reason := tc.p.WindowReason(now)
			if ok != tc.ok || reason != tc.reason {
				t.Fatalf("want (%v,%q) got (%v,%q)", tc.ok, tc.reason, ok, reason)
			}
		})
	}
}

func TestVoucherEffectiveStatus(t *testing.T) {
	now := time.Now()
	v := &Voucher{Status: constants.VoucherStatusActive, ExpiresAt: now.Add(-time.Second)}
	if v.UsableAt(now) {
		t.Fatalf("expired voucher should not be usable")
	}
	if v.EffectiveStatus(now) != constants.VoucherStatusExpired {
		t.Fatalf("expected expired, got %s", v.EffectiveStatus(now))
	}
	v.ExpiresAt = now.Add(time.Hour)
	if !v.UsableAt(now) {
		t.Fatalf("voucher should be usable")
	}
}
