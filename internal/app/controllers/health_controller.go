package controllers

import (
	"dinetrack-http-service/internal/app/middleware"
	"dinetrack-http-service/internal/domain/services/container"
	"dinetrack-http-service/internal/error/code"
	"dinetrack-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// HealthController 健康检查控制器
type HealthController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewHealthController 创建健康检查控制器实例
func NewHealthController(ctx *gin.Context, container *container.ServiceContainer) *HealthController {
	return &HealthController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleHealthFunc 返回一个处理健康检查请求的Gin处理函数
func HandleHealthFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewHealthController(ctx, container)

		switch method {
		case "ping":
			controller.Ping()
		case "status":
			controller.Status()
		case "cacheStats":
			controller.CacheStats()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// Ping 健康检查端点
func (h *HealthController) Ping() {
	response.Success(h.Ctx, gin.H{
		"status":  "healthy",
		"message": "pong",
	})
}

// Status 返回数据库连接状态和连接池统计
func (h *HealthController) Status() {
	sqlDB, err := h.Container.GetDB().DB()
	if err != nil {
		response.FailWithMessage(h.Ctx, code.ErrDatabase, "获取数据库连接失败", nil)
		return
	}
	if err := sqlDB.Ping(); err != nil {
		response.FailWithMessage(h.Ctx, code.ErrDatabase, "数据库连接异常", nil)
		return
	}

	stats := sqlDB.Stats()
	response.Success(h.Ctx, gin.H{
		"status": "healthy",
		"database": gin.H{
			"open_connections": stats.OpenConnections,
			"in_use":           stats.InUse,
			"idle":             stats.Idle,
			"max_open":         stats.MaxOpenConnections,
		},
	})
}

// CacheStats 返回进程内响应缓存的统计信息
func (h *HealthController) CacheStats() {
	response.Success(h.Ctx, middleware.CacheStats())
}
