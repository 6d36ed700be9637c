package handler

import (
	"bytes"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inklog/internal/db"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// ShowHome renders the public home page with the most recent posts.
func (a *API) ShowHome(c *gin.Context) {
	posts, err := a.posts.GetRecentPosts(5)
	if err != nil {
		a.renderFailure(c, err)
		return
	}

	c.HTML(http.StatusOK, "home.html", gin.H{
		"title": "Home",
		"posts": posts,
		"year":  time.Now().Year(),
	})
}

// ShowArticles renders the article listing. An empty result set renders
// an empty-state message, never an error.
func (a *API) ShowArticles(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	tag := strings.TrimSpace(c.Query("tag"))

	var (
		posts []db.Post
		err   error
	)
	switch {
	case query != "":
		posts, err = a.posts.SearchPosts(query)
	case tag != "":
		posts, err = a.posts.GetPostsByTag(tag)
	default:
		posts, err = a.posts.GetPublishedPosts()
	}
	if err != nil {
		a.renderFailure(c, err)
		return
	}

	c.HTML(http.StatusOK, "articles.html", gin.H{
		"title": "Articles",
		"posts": posts,
		"query": query,
		"tag":   tag,
		"year":  time.Now().Year(),
	})
}

// ShowArticle renders a single published post looked up by slug. An
// absent post is a 404; a genuine backend failure keeps its normalized
// error and renders the generic failure page instead of masquerading as
// not-found.
func (a *API) ShowArticle(c *gin.Context) {
	slug := c.Param("slug")

	post, err := a.posts.GetPostBySlug(slug)
	if err != nil {
		a.renderFailure(c, err)
		return
	}
	if post == nil {
		c.HTML(http.StatusNotFound, "not_found.html", gin.H{
			"title": "Not Found",
			"year":  time.Now().Year(),
		})
		return
	}

	// 计数失败不阻断渲染，但记录错误
	if err := a.posts.IncrementViewCount(post.ID); err != nil {
		c.Error(err)
	}

	content, err := renderMarkdown(post.Content)
	if err != nil {
		a.renderFailure(c, err)
		return
	}

	c.HTML(http.StatusOK, "article.html", gin.H{
		"title":   post.Title,
		"post":    post,
		"content": content,
		"year":    time.Now().Year(),
	})
}

// ShowAbout renders the static about page.
func (a *API) ShowAbout(c *gin.Context) {
	c.HTML(http.StatusOK, "about.html", gin.H{
		"title": "About",
		"year":  time.Now().Year(),
	})
}

// renderFailure shows the generic retry page. The normalized message is
// already safe to display; full details stay in the request error log.
func (a *API) renderFailure(c *gin.Context, err error) {
	c.Error(err)
	c.HTML(http.StatusInternalServerError, "error.html", gin.H{
		"title": "Something went wrong",
		"error": err.Error(),
		"year":  time.Now().Year(),
	})
}

func renderMarkdown(content string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	safe := sanitizer.SanitizeBytes(buf.Bytes())
	return template.HTML(safe), nil
}
