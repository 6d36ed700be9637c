package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inklog/internal/service"
)

type createPostRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Excerpt  string   `json:"excerpt"`
	Slug     string   `json:"slug"`
	Status   string   `json:"status"`
	Tags     []string `json:"tags"`
	ReadTime int      `json:"read_time"`
}

type updatePostRequest struct {
	Title       *string    `json:"title"`
	Content     *string    `json:"content"`
	Excerpt     *string    `json:"excerpt"`
	Slug        *string    `json:"slug"`
	Status      *string    `json:"status"`
	Tags        []string   `json:"tags"`
	ReadTime    *int       `json:"read_time"`
	PublishedAt *time.Time `json:"published_at"`
}

// ListPosts 返回全部文章，后台列表用。
func (a *API) ListPosts(c *gin.Context) {
	posts, err := a.posts.GetAllPosts()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// GetPostByID 返回单篇文章，后台编辑用。
func (a *API) GetPostByID(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}

	post, err := a.posts.GetPost(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

// CreatePost 新建文章。作者取自会话，绝不相信客户端提交的 author_id。
func (a *API) CreatePost(c *gin.Context) {
	var req createPostRequest
	if !bindJSON(c, &req, "invalid post payload") {
		return
	}

	post, err := a.posts.CreatePost(service.CreatePostInput{
		Title:    req.Title,
		Content:  req.Content,
		Excerpt:  req.Excerpt,
		Slug:     req.Slug,
		Status:   req.Status,
		Tags:     req.Tags,
		ReadTime: req.ReadTime,
		AuthorID: currentUserID(c),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"post": post})
}

// UpdatePost 部分更新文章字段，未提交的字段保持不变。
func (a *API) UpdatePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}

	var req updatePostRequest
	if !bindJSON(c, &req, "invalid post payload") {
		return
	}

	post, err := a.posts.UpdatePost(id, service.UpdatePostInput{
		Title:       req.Title,
		Content:     req.Content,
		Excerpt:     req.Excerpt,
		Slug:        req.Slug,
		Status:      req.Status,
		Tags:        req.Tags,
		ReadTime:    req.ReadTime,
		PublishedAt: req.PublishedAt,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post})
}

// DeletePost 删除文章，硬删除不可恢复。
func (a *API) DeletePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}

	if err := a.posts.DeletePost(id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}

// GetStats 返回文章状态统计。
func (a *API) GetStats(c *gin.Context) {
	stats, err := a.posts.GetStats()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
