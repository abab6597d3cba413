package services

import (
	"fmt"
	"time"

	"dinetrack-http-service/internal/domain/models"
	"dinetrack-http-service/internal/error/code"
	"dinetrack-http-service/internal/infrastructure/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// InterfaceJWTService 定义JWT服务接口
type InterfaceJWTService interface {
	GenerateToken(user *models.User) (string, error)
	ValidateToken(tokenString string) (*jwt.Token, error)
	ExtractClaims(tokenString string) (*JWTClaims, error)
}

// JWTClaims 定义JWT令牌的声明结构。
// 令牌签发后不可撤销，用户记录变更或删除后旧令牌仍有效直到自然过期，
// 角色变更通过刷新接口传播。
type JWTClaims struct {
	UserID   uint   `json:"user_id"`
	UserName string `json:"user_name"`
	RoleID   int    `json:"role_id"`
	jwt.RegisteredClaims
}

// JWTService 提供JWT相关服务
type JWTService struct {
	secretKey  string
	issuer     string
	expiration time.Duration
}

// NewJWTService 创建一个新的JWT服务
func NewJWTService(cfg *config.Config) InterfaceJWTService {
	return &JWTService{
		secretKey:  cfg.JWTSecretKey,
		issuer:     "dinetrack-http-service",
		expiration: cfg.JWTExpiration,
	}
}

// GenerateToken 根据用户当前记录生成JWT令牌
func (s *JWTService) GenerateToken(user *models.User) (string, error) {
	now := time.Now()

	claims := &JWTClaims{
		UserID:   user.ID,
		UserName: user.UserName,
		RoleID:   user.RoleID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secretKey))
}

// ValidateToken 验证JWT令牌
func (s *JWTService) ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// 验证签名算法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secretKey), nil
	})
}

// ExtractClaims 从令牌中提取声明。签名错误、格式错误和过期统一返回令牌无效。
func (s *JWTService) ExtractClaims(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secretKey), nil
	})
	if err != nil {
		return nil, code.NewError(code.ErrTokenInvalid)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, code.NewError(code.ErrTokenInvalid)
	}

	return claims, nil
}
