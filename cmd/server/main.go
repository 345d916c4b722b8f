package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/habitroom/internal/config"
	"github.com/habitroom/internal/db"
	"github.com/habitroom/internal/handler"
	"github.com/habitroom/internal/realtime"
	"github.com/habitroom/internal/router"
	"github.com/habitroom/internal/scheduler"
	"github.com/habitroom/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// 按配置保证管理员账号存在
	if err := db.EnsureAdminUser(cfg.AdminUserName, cfg.AdminPassword); err != nil {
		log.Fatalf("failed to ensure admin user: %v", err)
	}

	hub := realtime.NewHub()
	defer hub.Stop()

	// 可选的补录定时任务
	backfill := scheduler.New(service.NewBackfillService(db.DB), cfg.BackfillCron)
	if err := backfill.Start(); err != nil {
		log.Fatalf("failed to start backfill scheduler: %v", err)
	}
	defer backfill.Stop()

	// 设置并运行 Gin 服务器
	api := handler.NewAPI(db.DB, hub, cfg.UploadDir, cfg.UploadURLPath, cfg.AllowedWSOrigins)
	r := router.SetupRouter(api, cfg.SessionSecret, cfg.UploadDir, cfg.UploadURLPath)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
