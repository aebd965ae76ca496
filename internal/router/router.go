// Package router 组装 HTTP 路由
package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/weiwangfds/keepsake/internal/admin"
	"github.com/weiwangfds/keepsake/internal/handler"
	"github.com/weiwangfds/keepsake/internal/middleware"
	"github.com/weiwangfds/keepsake/internal/notesboard"
	"github.com/weiwangfds/keepsake/internal/service/lovenote"
	"github.com/weiwangfds/keepsake/internal/service/media"
	"github.com/weiwangfds/keepsake/internal/settings"
	"github.com/weiwangfds/keepsake/internal/site"
)

// Deps 路由依赖的服务
type Deps struct {
	Media       media.MediaService
	Notes       lovenote.LoveNoteService
	Boards      *notesboard.Registry
	Coordinator *admin.Coordinator
	Settings    *settings.Store
	Site        *site.Site
	AdminToken  string
	// UploadsDir 本地存储目录，非空时在 /uploads 下提供静态访问
	UploadsDir string
}

// Router 路由配置
type Router struct {
	engine *gin.Engine
}

// NewRouter 创建路由实例，mode 为 gin 运行模式
func NewRouter(mode string, deps Deps) *Router {
	if mode != "" {
		gin.SetMode(mode)
	}
	engine := gin.New()

	// 使用中间件
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.AccessLog())
	engine.Use(middleware.RequestLogger(middleware.DefaultRequestLoggerConfig()))

	// 配置CORS
	engine.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Accept-Language", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        86400,
	}))

	if deps.UploadsDir != "" {
		engine.Static("/uploads", deps.UploadsDir)
	}

	contentHandler := handler.NewContentHandler(deps.Media, deps.Notes)
	boardHandler := handler.NewBoardHandler(deps.Boards)
	adminHandler := handler.NewAdminHandler(deps.Coordinator)
	settingsHandler := handler.NewSettingsHandler(deps.Settings)
	siteHandler := handler.NewSiteHandler(deps.Site)
	healthHandler := handler.NewHealthHandler(deps.Media, deps.Notes, deps.Boards.Len)

	// 健康检查
	engine.GET("/health", healthHandler.Health)

	// API路由组
	api := engine.Group("/api/v1")
	{
		api.GET("/site", siteHandler.Get)
		api.GET("/site/countdown", siteHandler.Countdown)

		api.GET("/settings", settingsHandler.Get)
		api.PUT("/settings", settingsHandler.Put)

		api.GET("/media", contentHandler.ListMedia)
		api.GET("/media/stream", contentHandler.StreamMedia)
		api.GET("/love-notes", contentHandler.ListLoveNotes)
		api.GET("/love-notes/stream", contentHandler.StreamLoveNotes)

		// 情书展示板会话
		boards := api.Group("/boards")
		{
			boards.POST("", boardHandler.Mount)
			boards.GET("/:id", boardHandler.View)
			boards.DELETE("/:id", boardHandler.Unmount)
			boards.GET("/:id/stream", boardHandler.Stream)
			boards.POST("/:id/notes", boardHandler.AddNote)
			boards.PUT("/:id/notes/:noteID", boardHandler.EditNote)
			boards.DELETE("/:id/notes/:noteID", boardHandler.DeleteNote)
			boards.POST("/:id/notes/:noteID/pin", boardHandler.TogglePin)
		}

		// 管理面板
		adminGroup := api.Group("/admin", middleware.AdminAuth(deps.AdminToken))
		{
			adminGroup.GET("/snapshot", adminHandler.Snapshot)
			adminGroup.GET("/stream", adminHandler.Stream)
			adminGroup.POST("/entries", adminHandler.SubmitEntry)
			adminGroup.DELETE("/entries/:id", adminHandler.DeleteEntry)
			adminGroup.POST("/uploads", adminHandler.Upload)
			adminGroup.POST("/notes", adminHandler.SubmitNote)
			adminGroup.POST("/notes/:id/pin", adminHandler.TogglePin)
			adminGroup.DELETE("/notes/:id", adminHandler.DeleteNote)
		}
	}

	return &Router{engine: engine}
}

// GetEngine 获取gin引擎
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
