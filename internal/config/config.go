package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr      string
	Port            string
	DatabasePath    string
	SessionSecret   string
	GinMode         string
	TemplatePattern string
	StaticDir       string
	AdminUserName   string
	AdminPassword   string
	SiteBaseURL     string
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
// SESSION_SECRET 缺失时生成一次性的随机密钥，仅适合开发环境：
// 进程重启后已有会话全部失效。
func Load() AppConfig {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	databasePath := strings.TrimSpace(os.Getenv("DATABASE_PATH"))
	if databasePath == "" {
		databasePath = "inklog.db"
	}

	sessionSecret := strings.TrimSpace(os.Getenv("SESSION_SECRET"))
	if sessionSecret == "" {
		sessionSecret = uuid.NewString()
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))
	if ginMode == "" {
		ginMode = "release"
	}

	templatePattern := strings.TrimSpace(os.Getenv("TEMPLATE_PATTERN"))
	if templatePattern == "" {
		templatePattern = "web/template/*.html"
	}

	staticDir := strings.TrimSpace(os.Getenv("STATIC_DIR"))
	if staticDir == "" {
		staticDir = "web/static"
	}

	siteBaseURL := strings.TrimSpace(os.Getenv("SITE_BASE_URL"))
	if siteBaseURL == "" {
		siteBaseURL = "http://localhost:8080"
	}
	siteBaseURL = strings.TrimSuffix(siteBaseURL, "/")

	adminUserName := strings.TrimSpace(os.Getenv("ADMIN_USERNAME"))
	adminPassword := strings.TrimSpace(os.Getenv("ADMIN_PASSWORD"))

	return AppConfig{
		ListenAddr:      listenAddr,
		Port:            port,
		DatabasePath:    databasePath,
		SessionSecret:   sessionSecret,
		GinMode:         ginMode,
		TemplatePattern: templatePattern,
		StaticDir:       staticDir,
		AdminUserName:   adminUserName,
		AdminPassword:   adminPassword,
		SiteBaseURL:     siteBaseURL,
	}
}
