package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/dujiao-next/marketcore/internal/repository"

	"gorm.io/gorm"
)

const defaultCodeMaxAttempts = 5

const (
	digitAlphabet = "0123456789"
	// verificationAlphabet 去掉易混淆的 0/O、1/I/L
	verificationAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	verificationCodeLen  = 6
)

// codeGenerator 生成唯一编码（订单号、核对码、券码）
type codeGenerator func() string

func generateOrderNo() string {
	return fmt.Sprintf("MC%s%s", time.Now().Format("20060102150405"), randFromAlphabet(digitAlphabet, 6))
}

func generateVerificationCode() string {
	return randFromAlphabet(verificationAlphabet, verificationCodeLen)
}

func generateVoucherCode() string {
	return "V" + randFromAlphabet(digitAlphabet, 7)
}

// normalizeVerificationCode 商户手输时容忍空白与小写
func normalizeVerificationCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

func randFromAlphabet(alphabet string, length int) string {
	var b strings.Builder
	b.Grow(length)
	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			b.WriteByte(alphabet[0])
			continue
		}
		b.WriteByte(alphabet[n.Int64()])
	}
	return b.String()
}

// insertWithUniqueCode 在保存点内写入，唯一键冲突时换码重试
func insertWithUniqueCode(tx *gorm.DB, maxAttempts int, next codeGenerator, insert func(tx *gorm.DB, code string) error) (string, error) {
	if maxAttempts <= 0 {
		maxAttempts = defaultCodeMaxAttempts
	}
	for attempt := 0; attempt < maxAttempts; attempt++ {
		code := next()
		err := tx.Transaction(func(sp *gorm.DB) error {
			return insert(sp, code)
		})
		if err == nil {
			return code, nil
		}
		if !repository.IsUniqueViolation(err) {
			return "", err
		}
	}
	return "", ErrCodeGenerationFailed
}
