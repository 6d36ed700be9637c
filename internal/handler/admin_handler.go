package handler

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/inklog/internal/db"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionUserIDKey   = "user_id"
	sessionUsernameKey = "username"
)

// ShowLoginPage 渲染登录页面
func (a *API) ShowLoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"title": "Admin Login",
	})
}

// Login 校验表单中的用户名密码并写入会话。
func (a *API) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := db.FindUserByUsername(a.db, username)
	if err != nil {
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{
			"title": "Admin Login",
			"error": "invalid username or password",
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{
			"title": "Admin Login",
			"error": "invalid username or password",
		})
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserIDKey, user.ID)
	session.Set(sessionUsernameKey, user.Username)
	if err := session.Save(); err != nil {
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{
			"title": "Admin Login",
			"error": "failed to save session",
		})
		return
	}

	c.Redirect(http.StatusFound, "/admin/dashboard")
}

// Logout 清除会话并回到登录页。
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/admin/login")
}

// ShowDashboard 渲染后台主面板：统计数据加全部文章列表。
func (a *API) ShowDashboard(c *gin.Context) {
	session := sessions.Default(c)
	username := session.Get(sessionUsernameKey)

	stats, err := a.posts.GetStats()
	if err != nil {
		c.HTML(http.StatusInternalServerError, "dashboard.html", gin.H{
			"title":    "Dashboard",
			"username": username,
			"error":    err.Error(),
		})
		return
	}

	posts, err := a.posts.GetAllPosts()
	if err != nil {
		c.HTML(http.StatusInternalServerError, "dashboard.html", gin.H{
			"title":    "Dashboard",
			"username": username,
			"stats":    stats,
			"error":    err.Error(),
		})
		return
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"title":    "Dashboard",
		"username": username,
		"stats":    stats,
		"posts":    posts,
	})
}

// ShowPostEdit 渲染新建或编辑文章的表单页。
func (a *API) ShowPostEdit(c *gin.Context) {
	if c.Param("id") == "" {
		c.HTML(http.StatusOK, "post_edit.html", gin.H{
			"title": "New Post",
		})
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		c.Redirect(http.StatusFound, "/admin/dashboard")
		return
	}

	post, err := a.posts.GetPost(id)
	if err != nil {
		c.Redirect(http.StatusFound, "/admin/dashboard")
		return
	}

	c.HTML(http.StatusOK, "post_edit.html", gin.H{
		"title": "Edit Post",
		"post":  post,
	})
}

// AuthRequired 是一个简单的认证中间件：未登录访问一律重定向到登录页，
// 避免受保护内容被渲染。
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get(sessionUserIDKey)
		if userID == nil {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// currentUserID 从会话中取当前登录用户的 ID，未登录时返回 0。
func currentUserID(c *gin.Context) uint {
	session := sessions.Default(c)
	if id, ok := session.Get(sessionUserIDKey).(uint); ok {
		return id
	}
	return 0
}
