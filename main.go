// @title Keepsake API
// @version 1.0
// @description 生日纪念站点的实时同步与管理接口

// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/weiwangfds/keepsake/config"
	"github.com/weiwangfds/keepsake/internal/admin"
	"github.com/weiwangfds/keepsake/internal/changefeed"
	"github.com/weiwangfds/keepsake/internal/database"
	"github.com/weiwangfds/keepsake/internal/logger"
	"github.com/weiwangfds/keepsake/internal/notesboard"
	"github.com/weiwangfds/keepsake/internal/router"
	"github.com/weiwangfds/keepsake/internal/service/lovenote"
	"github.com/weiwangfds/keepsake/internal/service/media"
	"github.com/weiwangfds/keepsake/internal/service/storage"
	"github.com/weiwangfds/keepsake/internal/settings"
	"github.com/weiwangfds/keepsake/internal/site"
	"golang.org/x/net/http2"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.Init(cfg.Log); err != nil {
		logger.Fatalf("Failed to initialize logger: %v", err)
	}

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}

	provider, err := storage.NewProvider(cfg.Storage)
	if err != nil {
		logger.Fatalf("初始化对象存储失败: %v", err)
	}
	if err := provider.Ping(context.Background()); err != nil {
		logger.Warnf("对象存储 %s 暂不可用: %v", provider.Name(), err)
	}

	notifier := changefeed.New(cfg.Redis)

	mediaService := media.NewMediaService(db, provider, notifier, media.Options{
		Folder:        cfg.Storage.Folder,
		MaxUploadSize: cfg.Storage.MaxUploadSize,
	})
	noteService := lovenote.NewLoveNoteService(db, notifier)

	siteInfo, err := site.New(cfg.Site)
	if err != nil {
		logger.Fatalf("站点配置错误: %v", err)
	}

	settingsStore, err := settings.NewStore(cfg.Settings.File)
	if err != nil {
		logger.Fatalf("读取界面设置失败: %v", err)
	}
	if cfg.Settings.Watch {
		if err := settingsStore.Watch(); err != nil {
			logger.Warnf("监听设置文件失败: %v", err)
		}
	}

	boards := notesboard.NewRegistry(noteService, cfg.Board.SessionTTL)
	coordinator := admin.NewCoordinator(mediaService, noteService)
	coordinator.Open()

	bgCtx, cancelBackground := context.WithCancel(context.Background())
	go boards.Run(bgCtx)

	// 其他实例写入后刷新本地订阅
	go func() {
		err := notifier.Listen(bgCtx, func(collection string) {
			var err error
			switch collection {
			case media.Collection:
				err = mediaService.Refresh(bgCtx)
			case lovenote.Collection:
				err = noteService.Refresh(bgCtx)
			default:
				return
			}
			if err != nil {
				logger.WithField("collection", collection).Errorf("刷新订阅失败: %v", err)
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Errorf("变更通知监听退出: %v", err)
		}
	}()

	deps := router.Deps{
		Media:       mediaService,
		Notes:       noteService,
		Boards:      boards,
		Coordinator: coordinator,
		Settings:    settingsStore,
		Site:        siteInfo,
		AdminToken:  cfg.Admin.Token,
	}
	if local, ok := provider.(*storage.LocalProvider); ok {
		deps.UploadsDir = local.Root()
	}
	r := router.NewRouter(cfg.Server.Mode, deps)

	srv := &http.Server{
		Addr:        ":" + strconv.Itoa(cfg.Server.Port),
		Handler:     r.GetEngine(),
		ReadTimeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
		// 为 0 时不限制，SSE 长连接需要
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		// 关闭时取消请求上下文，SSE 连接随之结束
		BaseContext: func(net.Listener) context.Context { return bgCtx },
	}

	if cfg.Server.EnableHTTPS {
		srv.TLSConfig = &tls.Config{
			NextProtos: []string{"h2", "http/1.1"}, // 支持HTTP/2和HTTP/1.1
		}
		if cfg.Server.EnableHTTP2 {
			if err := http2.ConfigureServer(srv, &http2.Server{}); err != nil {
				logger.Fatalf("配置HTTP/2失败: %v", err)
			}
		}
	}

	go func() {
		logger.WithField("https", cfg.Server.EnableHTTPS).Infof("服务器启动在端口 %d", cfg.Server.Port)
		var err error
		if cfg.Server.EnableHTTPS {
			err = srv.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("服务器启动失败: %v", err)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cancelBackground()
	coordinator.Close()
	boards.Close()
	mediaService.Close()
	noteService.Close()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("服务器强制关闭: %v", err)
	}

	if err := settingsStore.Save(); err != nil {
		logger.Errorf("保存界面设置失败: %v", err)
	}
	if err := notifier.Close(); err != nil {
		logger.Errorf("关闭变更通知失败: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("服务器已退出")
}
