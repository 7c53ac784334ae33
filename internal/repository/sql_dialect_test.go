package repository

import (
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"
)

func TestLikeOperatorByDialect(t *testing.T) {
	if got := likeOperatorByDialect("postgres"); got != "ILIKE" {
		t.Fatalf("postgres want ILIKE got %s", got)
	}
	if got := likeOperatorByDialect("sqlite"); got != "LIKE" {
		t.Fatalf("sqlite want LIKE got %s", got)
	}
	if got := likeOperatorByDialect("mysql"); got != "LIKE" {
		t.Fatalf("mysql want LIKE got %s", got)
	}
}

func TestDBDialectNameNil(t *testing.T) {
	if got := dbDialectName(nil); got != "sqlite" {
		t.Fatalf("nil db should default to sqlite, got %s", got)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{err: nil, want: false},
		{err: gorm.ErrDuplicatedKey, want: true},
		{err: fmt.Errorf("insert voucher: %w", gorm.ErrDuplicatedKey), want: true},
		{err: errors.New("UNIQUE constraint failed: vouchers.code"), want: true},
		{err: errors.New(`ERROR: duplicate key value violates unique constraint "uk_red_packet_claim_promotion_user"`), want: true},
		{err: errors.New("Error 1062 (23000): Duplicate entry 'V1234567' for key 'code'"), want: true},
		{err: errors.New("database is locked"), want: false},
	}
	for _, tc := range cases {
		if got := IsUniqueViolation(tc.err); got != tc.want {
			t.Fatalf("err=%v want %v got %v", tc.err, tc.want, got)
		}
	}
}
