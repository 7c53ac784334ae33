package repository

import (
	"fmt"
	"testing"

	"github.com/dujiao-next/marketcore/internal/constants"
	"github.com/dujiao-next/marketcore/internal/models"
)

func TestPromotionListPagination(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewPromotionRepository(db)
	for i := 0; i < 5; i++ {
		promotion := &models.Promotion{
			MerchantID:    1,
			Name:          fmt.Sprintf("promotion-%d", i),
			PromotionType: constants.PromotionTypeGeneral,
			DiscountType:  constants.DiscountTypeFixedAmount,
			DiscountValue: models.MustMoney("1"),
			Status:        constants.PromotionStatusActive,
		}
		if err := db.Create(promotion).Error; err != nil {
			t.Fatalf("create promotion failed: %v", err)
		}
	}

	page, total, err := repo.List(PromotionListFilter{MerchantID: 1, Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 5 || len(page) != 2 {
		t.Fatalf("expected 2 of 5, got %d of %d", len(page), total)
	}

	tail, _, err := repo.List(PromotionListFilter{MerchantID: 1, Page: 3, PageSize: 2})
	if err != nil || len(tail) != 1 {
		t.Fatalf("expected last page with one row, got %d err=%v", len(tail), err)
	}

	all, _, err := repo.List(PromotionListFilter{MerchantID: 1, Page: 0})
	if err != nil || len(all) != 5 {
		t.Fatalf("page size 0 should return everything, got %d err=%v", len(all), err)
	}

	clamped, _, err := repo.List(PromotionListFilter{MerchantID: 1, Page: -1, PageSize: maxPageSize + 50})
	if err != nil || len(clamped) != 5 {
		t.Fatalf("oversized page should clamp and start at page 1, got %d err=%v", len(clamped), err)
	}
}
