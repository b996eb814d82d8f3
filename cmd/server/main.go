package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/config"
	"github.com/habitlog/internal/db"
	"github.com/habitlog/internal/handler"
	"github.com/habitlog/internal/logger"
	"github.com/habitlog/internal/router"
	"github.com/habitlog/internal/service"
	"github.com/habitlog/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := logger.Init(logger.Config{Debug: cfg.LogDebug, LogDir: cfg.LogDir}); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		logger.Fatal("failed to initialize database", "path", cfg.DatabasePath, "error", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	created, err := db.EnsureUser(ctx, db.DB, cfg.SuperRootUserName, cfg.SuperRootPassword)
	if err != nil {
		logger.Fatal("failed to ensure super user", "error", err)
	}
	if created {
		logger.Info("created super user", "username", cfg.SuperRootUserName)
	}

	// 已保存的布局优先于环境变量中的窗口大小
	window := cfg.DashboardWindow
	preferences := service.NewPreferenceService(db.DB)
	layout, ok, err := preferences.StoredLayout(ctx)
	if err != nil {
		logger.Warn("failed to load stored dashboard layout", "error", err)
	} else if ok {
		window = layout.WindowSize()
	}

	store := service.NewHabitStore(db.DB)
	reporter := telemetry.NewReporter(telemetry.NewGormStore(db.DB)).WithSwitch(preferences)
	dashboard := service.NewDashboardService(store, reporter, window)
	go dashboard.Run(ctx)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router.SetupRouter(cfg.SessionSecret, handler.NewAPI(db.DB, dashboard)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("habitlog server listening", "addr", cfg.ListenAddr, "window", window)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to run server", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	// 先关闭看板，结束所有 SSE 订阅，否则 Shutdown 会一直等待长连接
	dashboard.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
}
