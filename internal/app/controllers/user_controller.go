package controllers

import (
	"net/http"
	"strconv"

	"dinetrack-http-service/internal/app/middleware"
	"dinetrack-http-service/internal/domain/models"
	"dinetrack-http-service/internal/domain/services"
	"dinetrack-http-service/internal/domain/services/container"
	"dinetrack-http-service/internal/error/code"
	"dinetrack-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// InterfaceUserController 定义用户控制器接口
type InterfaceUserController interface {
	GetUsers()
	GetUser()
	CreateUser()
	DeleteUser()
	AdminUpdate()
	UpdateOwn()
}

// UserController 用户控制器
type UserController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewUserController 创建一个新的用户控制器
func NewUserController(ctx *gin.Context, container *container.ServiceContainer) *UserController {
	return &UserController{
		Ctx:       ctx,
		Container: container,
	}
}

// CreateUserRequest 创建用户请求
type CreateUserRequest struct {
	UserName string `json:"user_name" binding:"required,min=3,max=50" example:"alice"`
	Password string `json:"password" binding:"required,min=6,max=50" example:"alice123"`
	RoleID   int    `json:"role_id" binding:"omitempty,min=1" example:"4"`
	Email    string `json:"email" binding:"omitempty,email" example:"alice@example.com"`
	Phone    string `json:"phone" example:"13800138000"`
}

// AdminUpdateRequest 管理员更新用户请求，只有出现的字段会被更新
type AdminUpdateRequest struct {
	UserName *string `json:"user_name" binding:"omitempty,min=3,max=50" example:"alice"`
	Password *string `json:"password" binding:"omitempty,min=6,max=50" example:"newpass123"`
	RoleID   *int    `json:"role_id" example:"1"`
	Email    *string `json:"email" binding:"omitempty,email" example:"alice@example.com"`
	Phone    *string `json:"phone" example:"13800138000"`
}

// UpdateOwnRequest 自助更新请求，必须携带当前密码
type UpdateOwnRequest struct {
	CurrentPassword string  `json:"current_password" binding:"required" example:"alice123"`
	UserName        *string `json:"user_name" binding:"omitempty,min=3,max=50" example:"alice2"`
	NewPassword     *string `json:"new_password" binding:"omitempty,min=6,max=50" example:"newpass123"`
	Email           *string `json:"email" binding:"omitempty,email" example:"alice@example.com"`
	Phone           *string `json:"phone" example:"13800138000"`
}

// HandleUserFunc 返回一个处理用户请求的Gin处理函数
func HandleUserFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewUserController(ctx, container)

		switch method {
		case "getUsers":
			controller.GetUsers()
		case "getUser":
			controller.GetUser()
		case "createUser":
			controller.CreateUser()
		case "deleteUser":
			controller.DeleteUser()
		case "adminUpdate":
			controller.AdminUpdate()
		case "updateOwn":
			controller.UpdateOwn()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// purgeUserCaches 用户数据变更后清除列表缓存
func (c *UserController) purgeUserCaches() {
	middleware.PurgeCache()
	if redisService := c.Container.GetRedisService(); redisService != nil {
		_ = redisService.InvalidateUserPages()
	}
}

// 1. GetUsers 获取用户列表
// @Summary      获取用户列表
// @Description  分页获取所有用户，支持按用户名、邮箱、电话搜索
// @Tags         User
// @Produce      json
// @Param        page query int false "页码, 默认为1"
// @Param        page_size query int false "每页条数, 默认为10"
// @Param        search query string false "搜索关键词"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /users [get]
// @Security     BearerAuth
func (c *UserController) GetUsers() {
	var query models.PaginationQuery
	if err := c.Ctx.ShouldBindQuery(&query); err != nil {
		response.ParamError(c.Ctx, "无效的分页参数")
		return
	}
	query.Normalize()
	page, pageSize, search := query.Page, query.PageSize, query.Search

	userService := c.Container.GetService("user").(services.InterfaceUserService)
	redisService := c.Container.GetRedisService()

	var users []models.User
	var total int64
	var err error

	cached := false
	if redisService != nil {
		users, total, cached = redisService.GetUserPage(page, pageSize, search)
	}
	if !cached {
		users, total, err = userService.GetAllUsers(page, pageSize, search)
		if err != nil {
			response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询用户列表失败", nil)
			return
		}
		if redisService != nil {
			_ = redisService.CacheUserPage(page, pageSize, search, users, total)
		}
	}

	response.Success(c.Ctx, gin.H{
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
		"data":        users,
	})
}

// 2. GetUser 获取用户详情
// @Summary      获取用户详情
// @Description  根据ID获取特定用户的详细信息
// @Tags         User
// @Produce      json
// @Param        id path int true "用户ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [get]
// @Security     BearerAuth
func (c *UserController) GetUser() {
	id, err := c.parseIDParam()
	if err != nil {
		return
	}

	userService := c.Container.GetService("user").(services.InterfaceUserService)
	user, err := userService.GetUserByID(id)
	if err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, gin.H{"user": user})
}

// 3. CreateUser 创建新用户
// @Summary      创建用户
// @Description  创建新用户，角色默认为服务员
// @Tags         User
// @Accept       json
// @Produce      json
// @Param        request body CreateUserRequest true "创建用户请求参数"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse  "用户名已存在"
// @Router       /users [post]
// @Security     BearerAuth
func (c *UserController) CreateUser() {
	var req CreateUserRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数", nil)
		return
	}

	user := &models.User{
		UserName: req.UserName,
		Password: req.Password,
		RoleID:   req.RoleID,
		Email:    req.Email,
		Phone:    req.Phone,
	}

	authService := c.Container.GetService("auth").(services.InterfaceAuthService)
	created, err := authService.RegisterUser(user)
	if err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}

	c.purgeUserCaches()
	response.Created(c.Ctx, gin.H{"user": created})
}

// 4. DeleteUser 删除用户
// @Summary      删除用户
// @Description  根据ID删除用户并返回被删除的记录
// @Tags         User
// @Produce      json
// @Param        id path int true "用户ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [delete]
// @Security     BearerAuth
func (c *UserController) DeleteUser() {
	id, err := c.parseIDParam()
	if err != nil {
		return
	}

	userService := c.Container.GetService("user").(services.InterfaceUserService)
	removed, err := userService.DeleteUser(id)
	if err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}

	c.purgeUserCaches()
	response.Success(c.Ctx, gin.H{"user": removed})
}

// 5. AdminUpdate 管理员更新任意用户，不需要目标用户的当前密码。
// 管理员修改了自己的账户时返回新令牌并标记token_updated。
// @Summary      管理员更新用户
// @Description  更新指定用户的字段，只有请求中出现的字段会被修改
// @Tags         User
// @Accept       json
// @Produce      json
// @Param        id path int true "用户ID"
// @Param        request body AdminUpdateRequest true "更新请求参数"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse  "用户名已存在"
// @Router       /users/{id} [put]
// @Security     BearerAuth
func (c *UserController) AdminUpdate() {
	id, err := c.parseIDParam()
	if err != nil {
		return
	}

	var req AdminUpdateRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数", nil)
		return
	}

	actingID, exists := c.Ctx.Get("userID")
	if !exists {
		response.Unauthorized(c.Ctx)
		return
	}

	changeset := &services.UserChangeset{
		UserName: req.UserName,
		Password: req.Password,
		RoleID:   req.RoleID,
		Email:    req.Email,
		Phone:    req.Phone,
	}

	credentialService := c.Container.GetService("credential").(services.InterfaceCredentialService)
	result, err := credentialService.AdminUpdateCredentials(id, changeset, actingID.(uint))
	if err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}

	if result.TokenUpdated {
		c.Ctx.SetSameSite(http.SameSiteStrictMode)
		c.Ctx.SetCookie("token", result.Token, 86400, "/", "", c.Container.GetConfig().IsProduction(), false)
	}

	c.purgeUserCaches()
	response.Success(c.Ctx, gin.H{
		"user":          result.User,
		"token":         result.Token,
		"token_updated": result.TokenUpdated,
	})
}

// 6. UpdateOwn 用户自助更新凭证，必须先通过当前密码校验。
// 目标永远是令牌中的用户自己，无法通过该通道修改角色。
// @Summary      更新本人凭证
// @Description  校验当前密码后更新本人的用户名、密码或联系方式，返回重签的令牌
// @Tags         User
// @Accept       json
// @Produce      json
// @Param        request body UpdateOwnRequest true "自助更新请求参数"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse  "当前密码错误"
// @Failure      409  {object}  ErrorResponse  "用户名已存在"
// @Router       /users/profile [put]
// @Security     BearerAuth
func (c *UserController) UpdateOwn() {
	var req UpdateOwnRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数", nil)
		return
	}

	userID, exists := c.Ctx.Get("userID")
	if !exists {
		response.Unauthorized(c.Ctx)
		return
	}

	changeset := &services.UserChangeset{
		UserName: req.UserName,
		Password: req.NewPassword,
		Email:    req.Email,
		Phone:    req.Phone,
	}

	credentialService := c.Container.GetService("credential").(services.InterfaceCredentialService)
	result, err := credentialService.UpdateOwnCredentials(userID.(uint), req.CurrentPassword, changeset)
	if err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}

	c.Ctx.SetSameSite(http.SameSiteStrictMode)
	c.Ctx.SetCookie("token", result.Token, 86400, "/", "", c.Container.GetConfig().IsProduction(), false)

	c.purgeUserCaches()
	response.Success(c.Ctx, gin.H{
		"user":  result.User,
		"token": result.Token,
	})
}

// parseIDParam 解析URL中的用户ID参数
func (c *UserController) parseIDParam() (uint, error) {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return 0, err
	}
	return uint(id), nil
}
