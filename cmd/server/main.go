package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/inklog/internal/config"
	"github.com/inklog/internal/db"
	"github.com/inklog/internal/router"
	"github.com/joho/godotenv"
)

func main() {
	// .env 仅在本地开发存在，缺失不算错误
	_ = godotenv.Load()

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// 确保管理员账号存在
	if err := db.EnsureUser(cfg.AdminUserName, cfg.AdminPassword); err != nil {
		log.Fatalf("failed to ensure admin user: %v", err)
	}

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(cfg)
	log.Printf("listening on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
