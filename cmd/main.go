package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"forum-backend/config"
	"forum-backend/internal/api/admin"
	"forum-backend/internal/api/announcement"
	"forum-backend/internal/api/comment"
	"forum-backend/internal/api/post"
	"forum-backend/internal/api/tag"
	"forum-backend/internal/api/user"
	"forum-backend/internal/errors"
	"forum-backend/internal/middleware"
	"forum-backend/internal/repository/mongo"
	"forum-backend/internal/service"
	"forum-backend/internal/storage"
	"forum-backend/internal/util"
	"forum-backend/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			util.Logger.Error("程序发生严重错误", zap.Any("error", r))
		}
	}()

	// 初始化配置
	config.Init()

	// 初始化日志
	util.InitLogger(config.AppConfig.LogLevel, config.AppConfig.Debug)
	defer util.Logger.Sync()

	util.Logger.Info("应用程序启动")

	// 连接数据库
	db, err := mongo.Connect(config.AppConfig.MongoURI, config.AppConfig.MongoDB)
	if err != nil {
		util.Logger.Fatal("连接数据库失败", zap.Error(err))
	}
	util.Logger.Info("数据库连接成功")

	if err := mongo.EnsureIndexes(db); err != nil {
		util.Logger.Fatal("创建索引失败", zap.Error(err))
	}

	// 注册自定义验证器
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("future_date", util.ValidateFutureDate)
		v.RegisterValidation("tagname", util.ValidateTagName)
	}

	// 初始化文件存储
	fileStorage, err := storage.New()
	if err != nil {
		util.Logger.Fatal("初始化文件存储失败", zap.Error(err))
	}

	// 实时推送 Hub
	hub := ws.NewHub()
	go hub.Run()

	// 初始化存储库、服务和处理器
	userRepo := mongo.NewUserRepository(db)
	postRepo := mongo.NewPostRepository(db)
	commentRepo := mongo.NewCommentRepository(db)
	tagRepo := mongo.NewTagRepository(db)
	announcementRepo := mongo.NewAnnouncementRepository(db)
	searchRepo := mongo.NewSearchRepository(db)

	userService := service.NewUserService(userRepo)
	tagService := service.NewTagService(tagRepo, postRepo)
	searchService := service.NewSearchService(searchRepo)
	postService := service.NewPostService(postRepo, userRepo, tagService, searchService, hub)
	commentService := service.NewCommentService(commentRepo, postRepo, userRepo, hub)
	announcementService := service.NewAnnouncementService(announcementRepo, hub)
	statsService := service.NewStatsService(userRepo, postRepo, commentRepo, tagRepo)
	adminService := service.NewAdminService(userRepo, postRepo)

	errorMonitor := middleware.NewErrorMonitor()

	authHandler := user.NewAuthHandler(userService)
	profileHandler := user.NewProfileHandler(userService, postService, fileStorage)
	postHandler := post.NewPostHandler(postService, searchService)
	commentHandler := comment.NewCommentHandler(commentService)
	tagHandler := tag.NewTagHandler(tagService)
	announcementHandler := announcement.NewAnnouncementHandler(announcementService)
	adminHandler := admin.NewAdminHandler(
		adminService,
		statsService,
		commentService,
		announcementService,
		tagService,
		searchService,
		errorMonitor,
	)

	// 启动后台定时任务
	startBackgroundJobs(announcementService, searchService, tagService)

	// 设置 Gin 路由
	r := gin.Default()

	// 添加中间件
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.ErrorMonitorMiddleware(errorMonitor))

	// 配置 CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{config.AppConfig.FrontendURL}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Length",
		"Content-Type",
		"Authorization",
		"X-Request-ID",
	}
	corsConfig.ExposeHeaders = []string{
		"Content-Length",
		"Content-Type",
		"X-Request-ID",
	}
	r.Use(cors.New(corsConfig))

	// 本地存储时由后端直接提供上传文件
	if config.AppConfig.StorageBackend == "" || config.AppConfig.StorageBackend == "local" {
		ensureUploadsFolder()

		// 静态文件不走 gin 的 CORS 中间件，单独放行
		r.Use(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/uploads/") {
				c.Header("Access-Control-Allow-Origin", config.AppConfig.FrontendURL)
				c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")

				if c.Request.Method == "OPTIONS" {
					c.AbortWithStatus(200)
					return
				}
			}
			c.Next()
		})
		r.Static("/uploads", config.AppConfig.LocalStoragePath)
	}

	authRequired := middleware.AuthMiddleware(userService)
	optionalAuth := middleware.OptionalAuthMiddleware(userService)

	// 写操作限流
	writeLimiter := middleware.NewIPRateLimiter(
		rate.Limit(config.AppConfig.RateLimitRPS),
		config.AppConfig.RateLimitRPS*2,
	)
	limited := middleware.RateLimitMiddleware(writeLimiter)

	// 定义 API 路由
	api := r.Group("/api")
	{
		// 认证相关路由
		auth := api.Group("/auth")
		{
			auth.POST("/register", limited, authHandler.Register)
			auth.POST("/login", limited, authHandler.Login)
			auth.POST("/google", limited, authHandler.GoogleLogin)
			auth.POST("/forgot-password", limited, authHandler.RequestPasswordReset)
			auth.POST("/reset-password", limited, authHandler.ResetPassword)
			auth.GET("/me", authRequired, authHandler.Me)
			auth.POST("/logout", authRequired, authHandler.Logout)
			auth.POST("/refresh-token", authRequired, authHandler.RefreshToken)
		}

		// 用户相关路由
		users := api.Group("/users")
		{
			users.GET("/:id", profileHandler.GetUser)
			users.GET("/:id/posts", optionalAuth, profileHandler.GetUserPosts)
			users.GET("/profile", authRequired, profileHandler.GetProfile)
			users.PUT("/profile", authRequired, profileHandler.UpdateProfile)
			users.POST("/avatar", authRequired, limited, profileHandler.UploadAvatar)
			users.POST("/membership/upgrade", authRequired, profileHandler.UpgradeMembership)
			users.DELETE("/account", authRequired, profileHandler.DeactivateAccount)
		}

		// 帖子相关路由
		posts := api.Group("/posts")
		{
			posts.GET("", postHandler.List)
			posts.GET("/popular-searches", postHandler.PopularSearches)
			posts.GET("/:id", optionalAuth, postHandler.Get)
			posts.POST("", authRequired, limited, postHandler.Create)
			posts.PUT("/:id", authRequired, postHandler.Update)
			posts.DELETE("/:id", authRequired, postHandler.Delete)
			posts.POST("/:id/vote", authRequired, postHandler.Vote)
			posts.GET("/:id/comments", commentHandler.ListByPost)
			posts.POST("/:id/comments", authRequired, limited, commentHandler.Create)
		}

		// 评论相关路由
		comments := api.Group("/comments")
		{
			comments.PUT("/:id", authRequired, commentHandler.Update)
			comments.DELETE("/:id", authRequired, commentHandler.Delete)
			comments.POST("/:id/report", authRequired, limited, commentHandler.Report)
		}

		api.GET("/tags", tagHandler.List)
		api.GET("/announcements", optionalAuth, announcementHandler.List)

		// 实时事件推送
		api.GET("/live", func(c *gin.Context) {
			ws.ServeWs(hub, c.Writer, c.Request)
		})

		// 管理员路由组
		adminRoutes := api.Group("/admin")
		adminRoutes.Use(authRequired, middleware.AdminMiddleware())
		{
			adminRoutes.GET("/dashboard", adminHandler.Dashboard)

			// 用户管理
			adminRoutes.GET("/users", adminHandler.ListUsers)
			adminRoutes.PUT("/users/:id/role", adminHandler.SetUserRole)
			adminRoutes.PUT("/users/:id/status", adminHandler.SetUserStatus)

			// 内容管理
			adminRoutes.GET("/posts", adminHandler.ListPosts)
			adminRoutes.GET("/comments/reported", adminHandler.ReportedComments)
			adminRoutes.PUT("/comments/:id/moderate", adminHandler.ModerateComment)
			adminRoutes.POST("/comments/bulk-moderate", adminHandler.BulkModerate)

			// 公告管理
			adminRoutes.GET("/announcements", adminHandler.ListAnnouncements)
			adminRoutes.POST("/announcements", adminHandler.CreateAnnouncement)
			adminRoutes.PUT("/announcements/:id", adminHandler.UpdateAnnouncement)
			adminRoutes.DELETE("/announcements/:id", adminHandler.DeleteAnnouncement)

			// 标签和系统管理
			adminRoutes.POST("/tags", adminHandler.CreateTag)
			adminRoutes.GET("/errors", adminHandler.GetErrors)
		}
	}

	if config.AppConfig.Debug {
		for _, route := range r.Routes() {
			util.Logger.Info("路由",
				zap.String("method", route.Method),
				zap.String("path", route.Path))
		}
	}

	srv := &http.Server{
		Addr:    ":" + config.AppConfig.Port,
		Handler: r,
	}

	// 在一个新的 goroutine 中启动服务器
	go func() {
		util.Logger.Info("服务器正在启动", zap.String("port", config.AppConfig.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.Logger.Fatal("启动服务器失败", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅地关闭服务器（设置 5 秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	util.Logger.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		util.Logger.Fatal("服务器强制关闭", zap.Error(err))
	}

	util.Logger.Info("服务器已优雅关闭")
}

// startBackgroundJobs 启动公告过期下线、搜索词清理和标签计数对账三个定时任务
func startBackgroundJobs(
	announcementService *service.AnnouncementService,
	searchService *service.SearchService,
	tagService *service.TagService,
) {
	// 过期公告下线
	go func() {
		ticker := time.NewTicker(time.Hour)
		for range ticker.C {
			if err := announcementService.DeactivateExpired(); err != nil {
				util.Logger.Error("停用过期公告失败", zap.Error(err))
			}
		}
	}()

	// 清理长期没人搜的词
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		for range ticker.C {
			if _, err := searchService.PruneStale(config.AppConfig.SearchRetentionDays); err != nil {
				util.Logger.Error("清理搜索词失败", zap.Error(err))
			}
		}
	}()

	// 标签计数对账，数据库抖动导致的失败自动重试
	recovery := errors.NewAutoRecovery()
	recovery.AddStrategy(errors.NewDatabaseRecoveryStrategy(3, tagService.ReconcileUsageCounts))
	go func() {
		ticker := time.NewTicker(time.Hour)
		for range ticker.C {
			if err := tagService.ReconcileUsageCounts(); err != nil {
				if err = recovery.TryRecover(err); err != nil {
					util.Logger.Error("标签计数对账失败", zap.Error(err))
				}
			}
		}
	}()
}

// 确保上传文件夹存在
func ensureUploadsFolder() {
	uploadsPath := config.AppConfig.LocalStoragePath
	if err := os.MkdirAll(uploadsPath, 0755); err != nil {
		util.Logger.Fatal("创建上传文件夹失败", zap.Error(err), zap.String("path", uploadsPath))
	}
}
