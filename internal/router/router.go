package router

import (
	"html/template"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/inklog/internal/config"
	"github.com/inklog/internal/db"
	"github.com/inklog/internal/handler"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(cfg config.AppConfig) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
	})
	r.Use(sessions.Sessions("inklog_session", store))

	// 加载模板并添加自定义函数
	r.SetFuncMap(template.FuncMap{
		"join": strings.Join,
	})
	r.LoadHTMLGlob(cfg.TemplatePattern)

	// 静态文件服务
	r.Static("/static", cfg.StaticDir)

	api := handler.NewAPI(db.DB, cfg.SiteBaseURL)

	// 公开路由
	r.GET("/", api.ShowHome)
	r.GET("/articles", api.ShowArticles)
	r.GET("/articles/:slug", api.ShowArticle)
	r.GET("/about", api.ShowAbout)
	r.GET("/sitemap.xml", api.Sitemap)
	r.GET("/robots.txt", api.Robots)

	// 后台管理路由
	admin := r.Group("/admin")
	{
		admin.GET("/login", api.ShowLoginPage)
		admin.POST("/login", api.Login)
		admin.GET("/logout", api.Logout)

		// 需要认证的后台路由
		auth := admin.Group("")
		auth.Use(handler.AuthRequired())
		{
			auth.GET("/dashboard", api.ShowDashboard)
			auth.GET("/posts/new", api.ShowPostEdit)
			auth.GET("/posts/:id/edit", api.ShowPostEdit)

			// API路由
			apiGroup := auth.Group("/api")
			{
				apiGroup.GET("/posts", api.ListPosts)
				apiGroup.GET("/posts/:id", api.GetPostByID)
				apiGroup.POST("/posts", api.CreatePost)
				apiGroup.PUT("/posts/:id", api.UpdatePost)
				apiGroup.DELETE("/posts/:id", api.DeletePost)
				apiGroup.GET("/stats", api.GetStats)
			}
		}
	}

	return r
}
