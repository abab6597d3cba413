package routes

import (
	"time"

	_ "dinetrack-http-service/docs"
	"dinetrack-http-service/internal/app/controllers"
	"dinetrack-http-service/internal/app/middleware"
	"dinetrack-http-service/internal/domain/services/container"
	"dinetrack-http-service/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// SetupRouter 初始化并返回配置好的路由
func SetupRouter(db *gorm.DB, cfg *config.Config, redisClient *redis.Client) *gin.Engine {
	// 初始化 Gin
	r := gin.Default()

	// 添加 CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})
	// 设置正确的Content-Type，确保UTF-8编码
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
		c.Next()
	})
	// 创建服务容器
	serviceContainer := container.NewServiceContainer(db, cfg, redisClient)
	// 初始化中间件
	middleware.InitAuthMiddleware(cfg)
	// 添加 Swagger 文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 注册路由
	registerRoutes(r, serviceContainer)
	return r
}

// registerRoutes 配置所有API路由
func registerRoutes(
	r *gin.Engine,
	container *container.ServiceContainer,
) {
	// API 路由根路径
	api := r.Group("/api")
	// 注册公共路由
	registerPublicRoutes(api, container)
	// 注册需要认证的路由
	registerAuthenticatedRoutes(api, container)
}

// registerPublicRoutes 注册公共路由
func registerPublicRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	// 添加IP限流中间件 - 每秒允许10个请求，最多突发20个请求
	api.Use(middleware.IPRateLimiter(10, 20))

	// 健康检查路由
	api.GET("/ping", controllers.HandleHealthFunc(container, "ping"))
	api.GET("/health", controllers.HandleHealthFunc(container, "ping")) // 兼容Docker健康检查的路由

	// 健康状态路由组
	healthGroup := api.Group("/health")
	healthGroup.GET("/status", controllers.HandleHealthFunc(container, "status"))
	healthGroup.GET("/cache-stats", controllers.HandleHealthFunc(container, "cacheStats"))

	// 认证路由
	authGroup := api.Group("/auth")
	// 登录接口按路径单独限流，防止撞库 - 每秒5个请求，最多突发10个
	authGroup.POST("/login", middleware.PathRateLimiter(5, 10), controllers.HandleAuthFunc(container, "login"))
	authGroup.POST("/logout", controllers.HandleAuthFunc(container, "logout"))
	// 一次性管理员初始化通道，已有管理员后自动关闭
	authGroup.POST("/admin-bypass", middleware.PathRateLimiter(5, 10), controllers.HandleAuthFunc(container, "adminBypass"))
}

// registerAuthenticatedRoutes 注册需要认证的路由
func registerAuthenticatedRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	// 持有效令牌即可访问的路由
	auth := api.Group("/")
	auth.Use(middleware.Authentication())
	auth.POST("/auth/refresh", controllers.HandleAuthFunc(container, "refresh"))
	// 自助凭证更新，目标永远是令牌中的本人
	auth.PUT("/users/profile", controllers.HandleUserFunc(container, "updateOwn"))

	// 用户管理路由，仅管理员可用
	admin := api.Group("/")
	admin.Use(middleware.AuthenticateAdmin())
	// 添加通用限流中间件 - 每秒30个请求，最多突发50个请求
	admin.Use(middleware.IPRateLimiter(30, 50))

	usersGroup := admin.Group("/users")
	{
		usersGroup.GET("", middleware.Cache(1*time.Minute), controllers.HandleUserFunc(container, "getUsers"))
		usersGroup.GET("/:id", middleware.Cache(1*time.Minute), controllers.HandleUserFunc(container, "getUser"))
		usersGroup.POST("", controllers.HandleUserFunc(container, "createUser"))
		usersGroup.PUT("/:id", controllers.HandleUserFunc(container, "adminUpdate"))
		usersGroup.DELETE("/:id", controllers.HandleUserFunc(container, "deleteUser"))
	}
}
