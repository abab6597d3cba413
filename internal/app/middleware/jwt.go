package middleware

import (
	"net/http"
	"strings"

	"dinetrack-http-service/internal/domain/models"
	"dinetrack-http-service/internal/domain/services"
	"dinetrack-http-service/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
)

var jwtService services.InterfaceJWTService

// InitAuthMiddleware 初始化认证中间件
func InitAuthMiddleware(cfg *config.Config) {
	jwtService = services.NewJWTService(cfg)
}

// extractToken 从请求中提取令牌。
// 优先取Authorization头的Bearer令牌，没有时回退到token cookie。
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		if strings.HasPrefix(authHeader, "Bearer ") {
			return strings.TrimSpace(authHeader[7:])
		}
		return authHeader
	}

	if cookie, err := c.Cookie("token"); err == nil {
		return cookie
	}
	return ""
}

// authenticate 校验令牌并把身份声明写入上下文
func authenticate(c *gin.Context) (*services.JWTClaims, bool) {
	tokenString := extractToken(c)
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    401,
			"message": "Authorization header is required",
			"data":    nil,
		})
		c.Abort()
		return nil, false
	}

	claims, err := jwtService.ExtractClaims(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    401,
			"message": "Invalid or expired token",
			"data":    nil,
		})
		c.Abort()
		return nil, false
	}

	c.Set("userID", claims.UserID)
	c.Set("userName", claims.UserName)
	c.Set("roleID", claims.RoleID)
	c.Set("claims", claims)
	return claims, true
}

// Authentication 通用的认证中间件，任何持有效令牌的用户可通过
func Authentication() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticate(c); !ok {
			return
		}
		c.Next()
	}
}

// AuthenticateAdmin 验证管理员权限。
// 角色取自令牌声明，角色变更在下一次登录或刷新后生效。
func AuthenticateAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := authenticate(c)
		if !ok {
			return
		}

		if claims.RoleID != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{
				"code":    403,
				"message": "Insufficient permissions: requires admin role",
				"data":    nil,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
