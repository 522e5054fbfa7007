package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"social-system/config"
	"social-system/internal/handler"
	"social-system/internal/model"
	"social-system/internal/repository"
	"social-system/internal/service"
	dbPkg "social-system/pkg/db"
	"social-system/pkg/jwt"
	"social-system/pkg/logger"
	redisPkg "social-system/pkg/redis"
	"social-system/pkg/response"
	"social-system/pkg/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	cfg := config.LoadConfig()

	// 2. 初始化日志系统
	log := logger.InitLogger(cfg.Log)
	defer log.Sync()

	log.Info("=== 社交系统启动 ===")
	log.Info("服务器配置信息",
		zap.String("port", cfg.Server.Port),
		zap.String("database_host", cfg.Database.Host),
		zap.Int("database_port", cfg.Database.Port),
		zap.String("database_name", cfg.Database.Database),
		zap.Duration("jwt_expire_time", cfg.JWT.ExpireTime),
		zap.Int("moderation_flag_threshold", cfg.Moderation.FlagThreshold),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 初始化数据库连接
	if _, err := dbPkg.InitDB(cfg.Database); err != nil {
		log.Fatal("数据库连接失败", zap.Error(err))
	}
	defer func() {
		if err := dbPkg.CloseDB(); err != nil {
			log.Error("关闭数据库连接失败", zap.Error(err))
		}
	}()
	log.Info("数据库连接成功")

	// 3.1 自动迁移表结构
	if err := dbPkg.AutoMigrate(&model.User{}, &model.Relationship{}, &model.Post{}, &model.Flag{}); err != nil {
		log.Fatal("自动迁移失败", zap.Error(err))
	}
	log.Info("自动迁移完成")

	// 3.2 初始化Redis（失败不致命：离线通知与角标功能降级）
	if err := redisPkg.InitRedis(cfg.Redis); err != nil {
		log.Warn("Redis连接失败，离线通知功能不可用", zap.Error(err))
	} else {
		log.Info("Redis连接成功")
		defer redisPkg.Close()
	}

	// 3.3 初始化业务服务
	jwtSvc := jwt.NewJWTService(cfg.JWT)
	userRepo := repository.NewUserRepository(dbPkg.GetDB())
	relRepo := repository.NewRelationshipRepository(dbPkg.GetDB())
	postRepo := repository.NewPostRepository(dbPkg.GetDB())

	notifSvc := service.NewNotificationService(websocket.GetManager(), cfg.Notification)
	moderationSvc := service.NewModerationService(postRepo, notifSvc, cfg.Moderation)
	userSvc := service.NewUserService(userRepo, relRepo, cfg.JWT)
	relSvc := service.NewRelationshipService(relRepo, userRepo, notifSvc)
	postSvc := service.NewPostService(postRepo, userRepo, relRepo, moderationSvc)

	userHandler := handler.NewUserHandler(userSvc)
	relHandler := handler.NewRelationshipHandler(relSvc, userSvc)
	postHandler := handler.NewPostHandler(postSvc)
	notifHandler := handler.NewNotificationHandler(notifSvc)

	// 3.4 启动审核流水线
	moderationSvc.Start()
	defer moderationSvc.Stop()

	// 4. 设置Gin模式
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 5. 创建Gin路由
	router := gin.New()

	// 注入jwt_config和ws_config到Gin context，供WebSocket使用
	router.Use(func(c *gin.Context) {
		c.Set("jwt_config", cfg.JWT)
		c.Set("ws_config", cfg.WebSocket)
		c.Next()
	})

	// 使用中间件
	router.Use(logger.LoggerMiddleware())      // 自定义日志中间件
	router.Use(logger.ErrorLoggerMiddleware()) // 错误日志中间件

	// 6. 设置基础路由
	setupBasicRoutes(router)

	// 6.1 绑定业务路由
	v1 := router.Group("/api/v1")
	{
		users := v1.Group("/users")
		{
			// 公开接口（无需认证）
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)

			// 需要认证的接口
			authUsers := users.Group("")
			authUsers.Use(jwtSvc.AuthMiddleware()) // 应用JWT中间件
			{
				authUsers.GET("/me", userHandler.GetSelf)
				authUsers.GET("/:id", userHandler.GetUser)
				authUsers.PUT("/me/privacy", userHandler.SetPrivacyStatus)
				authUsers.PUT("/me/details", userHandler.SetDetails)
				authUsers.PUT("/me/mental-health", userHandler.SetMentalHealthSettings)
				authUsers.PUT("/me/language", userHandler.SetLanguageCode)
				authUsers.PUT("/me/theme", userHandler.SetThemeCode)
				authUsers.PUT("/me/eula", userHandler.SetAcceptedEULAVersion)
				authUsers.PUT("/me/apns-token", userHandler.SetAPNSToken)
				authUsers.POST("/me/disable", userHandler.DisableSelf)
			}
		}

		// 关注关系路由（需要认证）
		follows := v1.Group("/follows")
		follows.Use(jwtSvc.AuthMiddleware())
		{
			follows.POST("/:id", relHandler.RequestFollow)  // 发起关注请求
			follows.DELETE("/:id", relHandler.Unfollow)     // 取消关注/撤回请求
			follows.GET("", relHandler.ListFollowed)        // 列出已关注用户
		}
		followRequests := v1.Group("/follow-requests")
		followRequests.Use(jwtSvc.AuthMiddleware())
		{
			followRequests.GET("", relHandler.ListFollowRequests)          // 待处理请求列表
			followRequests.POST("/:id/accept", relHandler.AcceptRequest)   // 接受请求
			followRequests.POST("/:id/deny", relHandler.DenyRequest)       // 拒绝请求
		}

		// 帖子路由（需要认证）
		posts := v1.Group("/posts")
		posts.Use(jwtSvc.AuthMiddleware())
		{
			posts.POST("", postHandler.AddPost)           // 发帖
			posts.GET("/:id", postHandler.GetPost)        // 查询帖子
			posts.POST("/:id/flag", postHandler.FlagPost) // 举报帖子
		}

		// 通知路由（需要认证）
		notifications := v1.Group("/notifications")
		notifications.Use(jwtSvc.AuthMiddleware())
		{
			notifications.GET("/badge", notifHandler.GetBadgeCount)                // 未读角标
			notifications.GET("/offline", notifHandler.ListOfflineNotifications)   // 离线通知
			notifications.DELETE("/offline", notifHandler.ClearOfflineNotifications)
			notifications.GET("/presence/:id", notifHandler.GetPresence)           // 订阅在线状态
		}

		// 内部触发接口：JWT之外还要求内部密钥，外部调用一律拒绝
		internal := v1.Group("/internal")
		internal.Use(jwtSvc.AuthMiddleware())
		{
			internal.POST("/notifications", notifHandler.Trigger)
		}
	}

	// WebSocket路由
	router.GET("/ws", websocket.WsHandler)

	// 7. 创建HTTP服务器
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 8. 启动HTTP服务器
	go func() {
		log.Info("HTTP服务器启动", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP服务器启动失败", zap.Error(err))
		}
	}()

	// 9. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("正在关闭服务器...")

	// 设置关闭超时
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 关闭HTTP服务器
	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP服务器关闭失败", zap.Error(err))
	}

	log.Info("服务器已安全关闭")
}

// setupBasicRoutes 设置基础路由
func setupBasicRoutes(router *gin.Engine) {
	// 健康检查
	// 完整url为：http://localhost:8080/health
	router.GET("/health", func(c *gin.Context) {
		status := "ok"
		if err := dbPkg.HealthCheck(); err != nil {
			status = "db-down"
		}
		response.Success(c, gin.H{
			"status": status,
			"redis":  redisPkg.HealthCheck() == nil,
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// 根路径
	// 完整url为：http://localhost:8080/
	router.GET("/", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "社交系统",
			"version": "1.0.0",
		})
	})
}
