package controllers

import (
	"net/http"

	"dinetrack-http-service/internal/domain/models"
	"dinetrack-http-service/internal/domain/services"
	"dinetrack-http-service/internal/domain/services/container"
	"dinetrack-http-service/internal/error/code"
	"dinetrack-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// InterfaceAuthController 定义认证控制器接口
type InterfaceAuthController interface {
	Login()
	Logout()
	Refresh()
	AdminBypass()
}

// AuthController 处理身份验证请求
type AuthController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewAuthController 创建一个新的认证控制器
func NewAuthController(ctx *gin.Context, container *container.ServiceContainer) *AuthController {
	return &AuthController{
		Ctx:       ctx,
		Container: container,
	}
}

// LoginRequest 表示登录请求
type LoginRequest struct {
	UserName string `json:"user_name" binding:"required,min=3,max=50" example:"admin"`
	Password string `json:"password" binding:"required,min=6,max=50" example:"admin123"`
}

// AdminBypassRequest 表示管理员初始化请求
type AdminBypassRequest struct {
	UserName  string `json:"user_name" binding:"required,min=3,max=50" example:"admin"`
	Password  string `json:"password" binding:"required,min=6,max=50" example:"admin123"`
	BypassKey string `json:"bypass_key" binding:"required" example:"TEMP_ADMIN_SETUP_2025"`
	Email     string `json:"email" binding:"omitempty,email" example:"admin@example.com"`
	Phone     string `json:"phone" example:"13800138000"`
}

// ErrorResponse 表示错误响应
type ErrorResponse struct {
	Code    int         `json:"code" example:"401"`
	Message string      `json:"message" example:"用户名或密码错误"`
	Data    interface{} `json:"data"`
}

// HandleAuthFunc 返回一个处理认证请求的Gin处理函数
func HandleAuthFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAuthController(ctx, container)

		switch method {
		case "login":
			controller.Login()
		case "logout":
			controller.Logout()
		case "refresh":
			controller.Refresh()
		case "adminBypass":
			controller.AdminBypass()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// setTokenCookie 把令牌写入cookie，浏览器客户端无需自行管理Authorization头
func (c *AuthController) setTokenCookie(token string) {
	cfg := c.Container.GetConfig()
	c.Ctx.SetSameSite(http.SameSiteStrictMode)
	c.Ctx.SetCookie("token", token, 86400, "/", "", cfg.IsProduction(), false)
}

// 1. Login 处理用户登录
// @Summary      用户登录
// @Description  校验用户名和密码，返回JWT令牌并写入cookie
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "登录请求参数"
// @Success      200  {object}  map[string]interface{}  "登录成功，返回令牌和用户信息"
// @Failure      400  {object}  ErrorResponse  "请求参数错误"
// @Failure      401  {object}  ErrorResponse  "用户名或密码错误"
// @Router       /auth/login [post]
func (c *AuthController) Login() {
	var req LoginRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数", nil)
		return
	}

	authService := c.Container.GetService("auth").(services.InterfaceAuthService)
	result, err := authService.Login(req.UserName, req.Password)
	if err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}

	c.setTokenCookie(result.Token)
	response.Success(c.Ctx, gin.H{
		"token": result.Token,
		"user":  result.User,
	})
}

// 2. Logout 处理用户登出，只清除cookie，令牌本身不回收
// @Summary      用户登出
// @Description  清除令牌cookie
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /auth/logout [post]
func (c *AuthController) Logout() {
	cfg := c.Container.GetConfig()
	c.Ctx.SetSameSite(http.SameSiteStrictMode)
	c.Ctx.SetCookie("token", "", -1, "/", "", cfg.IsProduction(), false)
	response.Success(c.Ctx, gin.H{"message": "已登出"})
}

// 3. Refresh 重新签发令牌，反映数据库中的最新角色和用户名
// @Summary      刷新令牌
// @Description  按用户当前记录重新签发JWT令牌
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /auth/refresh [post]
// @Security     BearerAuth
func (c *AuthController) Refresh() {
	userID, exists := c.Ctx.Get("userID")
	if !exists {
		response.Unauthorized(c.Ctx)
		return
	}

	authService := c.Container.GetService("auth").(services.InterfaceAuthService)
	result, err := authService.RefreshToken(userID.(uint))
	if err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}

	c.setTokenCookie(result.Token)
	response.Success(c.Ctx, gin.H{
		"token": result.Token,
		"user":  result.User,
	})
}

// 4. AdminBypass 一次性管理员引导通道
// @Summary      初始化管理员
// @Description  使用部署时配置的初始化密钥创建第一个管理员账户，系统中已有管理员时关闭
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body AdminBypassRequest true "初始化请求参数"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /auth/admin-bypass [post]
func (c *AuthController) AdminBypass() {
	var req AdminBypassRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数", nil)
		return
	}

	user := &models.User{
		UserName: req.UserName,
		Password: req.Password,
		Email:    req.Email,
		Phone:    req.Phone,
	}

	authService := c.Container.GetService("auth").(services.InterfaceAuthService)
	created, err := authService.CreateAdminBypass(user, req.BypassKey)
	if err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}

	response.Created(c.Ctx, gin.H{"user": created})
}
