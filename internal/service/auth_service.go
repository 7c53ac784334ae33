package service

import (
	"strings"
	"time"

	"github.com/dujiao-next/marketcore/internal/config"
	"github.com/dujiao-next/marketcore/internal/constants"

	"github.com/golang-jwt/jwt/v5"
)

// Identity 已认证的调用方
type Identity struct {
	UserID     uint   `json:"user_id"`
	Role       string `json:"role"`
	MerchantID uint   `json:"merchant_id,omitempty"`
}

// JWTClaims JWT 声明
type JWTClaims struct {
	UserID     uint   `json:"user_id"`
	Role       string `json:"role"`
	MerchantID uint   `json:"merchant_id,omitempty"`
	jwt.RegisteredClaims
}

// AuthService 令牌签发与校验（身份本身由外部系统提供）
type AuthService struct {
	cfg config.JWTConfig
	now func() time.Time
}

// NewAuthService 创建认证服务实例
func NewAuthService(cfg config.JWTConfig) *AuthService {
	return &AuthService{cfg: cfg, now: time.Now}
}

// GenerateJWT 为调用方签发 Token
func (s *AuthService) GenerateJWT(identity Identity) (string, time.Time, error) {
	if identity.UserID == 0 || !isKnownRole(identity.Role) {
		return "", time.Time{}, ErrInvalidParams
	}
	if identity.Role == constants.RoleMerchant && identity.MerchantID == 0 {
		return "", time.Time{}, ErrInvalidParams
	}
	hours := s.cfg.ExpireHours
	if hours <= 0 {
		hours = 24
	}
	now := s.now()
	expiresAt := now.Add(time.Duration(hours) * time.Hour)

	claims := JWTClaims{
		UserID:     identity.UserID,
		Role:       identity.Role,
		MerchantID: identity.MerchantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseJWT 解析 Token 并返回调用方身份
func (s *AuthService) ParseJWT(tokenString string) (*Identity, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrTokenInvalid
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	token, err := parser.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.SecretKey), nil
	})
	if err != nil {
		return nil, ErrTokenInvalid
	}
	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid || claims.UserID == 0 || !isKnownRole(claims.Role) {
		return nil, ErrTokenInvalid
	}
	if claims.Role == constants.RoleMerchant && claims.MerchantID == 0 {
		return nil, ErrTokenInvalid
	}
	return &Identity{UserID: claims.UserID, Role: claims.Role, MerchantID: claims.MerchantID}, nil
}

func isKnownRole(role string) bool {
	switch role {
	case constants.RoleCustomer, constants.RoleMerchant, constants.RoleAdmin:
		return true
	default:
		return false
	}
}
