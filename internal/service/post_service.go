package service

import (
	"strings"
	"time"

	"github.com/inklog/internal/db"
	"gorm.io/gorm"
)

const (
	defaultRecentLimit = 5
	defaultReadTime    = 5
	wordsPerMinute     = 200
)

// PostService wraps post related database operations. It is the only
// mediator between handlers and the store; every failure it returns is a
// *PostError.
type PostService struct {
	db *gorm.DB
}

// CreatePostInput represents fields accepted when creating a post.
// AuthorID comes from the authenticated session, never from the client.
type CreatePostInput struct {
	Title    string
	Content  string
	Excerpt  string
	Slug     string
	Status   string
	Tags     []string
	ReadTime int
	AuthorID uint
}

// UpdatePostInput applies a partial merge: nil fields are left untouched.
type UpdatePostInput struct {
	Title       *string
	Content     *string
	Excerpt     *string
	Slug        *string
	Status      *string
	Tags        []string
	ReadTime    *int
	PublishedAt *time.Time
}

// PostStats aggregates post counts by status.
type PostStats struct {
	Total     int `json:"total"`
	Published int `json:"published"`
	Draft     int `json:"draft"`
}

// NewPostService creates a PostService instance.
func NewPostService(gdb *gorm.DB) *PostService {
	return &PostService{db: gdb}
}

// GetPublishedPosts returns published posts, newest published_at first.
func (s *PostService) GetPublishedPosts() ([]db.Post, error) {
	var posts []db.Post
	if err := s.db.
		Where("status = ?", db.StatusPublished).
		Order("published_at desc").
		Find(&posts).Error; err != nil {
		return nil, normalizeError(err, "failed to load posts")
	}
	return posts, nil
}

// GetRecentPosts returns at most limit published posts with a known
// publish time, newest first. Non-positive limits fall back to 5.
func (s *PostService) GetRecentPosts(limit int) ([]db.Post, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	var posts []db.Post
	if err := s.db.
		Where("status = ?", db.StatusPublished).
		Where("published_at IS NOT NULL").
		Order("published_at desc").
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, normalizeError(err, "failed to load recent posts")
	}
	return posts, nil
}

// GetPostBySlug fetches a single published post. A missing row is not a
// failure: the result is (nil, nil) so callers can render not-found.
func (s *PostService) GetPostBySlug(slug string) (*db.Post, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, validationError("post slug is required")
	}

	var post db.Post
	err := s.db.
		Where("slug = ? AND status = ?", slug, db.StatusPublished).
		First(&post).Error
	if err != nil {
		normalized := normalizeError(err, "failed to load post")
		if normalized.Kind == KindNotFound {
			return nil, nil
		}
		return nil, normalized
	}
	return &post, nil
}

// GetAllPosts returns every post regardless of status, newest created
// first. Caller is assumed to be authorized.
func (s *PostService) GetAllPosts() ([]db.Post, error) {
	var posts []db.Post
	if err := s.db.Order("created_at desc").Find(&posts).Error; err != nil {
		return nil, normalizeError(err, "failed to load all posts")
	}
	return posts, nil
}

// GetPost fetches a single post by id regardless of status, for the
// admin edit flow.
func (s *PostService) GetPost(id uint) (*db.Post, error) {
	if id == 0 {
		return nil, validationError("post id is required")
	}

	var post db.Post
	if err := s.db.First(&post, id).Error; err != nil {
		return nil, normalizeError(err, "failed to load post")
	}
	return &post, nil
}

// CreatePost validates input, stamps author and publish time, and inserts
// the post. Validation failures happen before any query is issued.
func (s *PostService) CreatePost(input CreatePostInput) (*db.Post, error) {
	if input.AuthorID == 0 {
		return nil, &PostError{Kind: KindPermission, Message: "sign in is required to create a post"}
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, validationError("post title is required")
	}
	if strings.TrimSpace(input.Slug) == "" {
		return nil, validationError("post slug is required")
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, validationError("post content is required")
	}
	if !IsValidSlug(input.Slug) {
		return nil, validationError("post slug must be URL-safe")
	}

	status := input.Status
	if status == "" {
		status = db.StatusDraft
	}
	if status != db.StatusDraft && status != db.StatusPublished && status != db.StatusArchived {
		return nil, validationError("unknown post status")
	}

	readTime := input.ReadTime
	if readTime <= 0 {
		readTime = estimateReadTime(input.Content)
	}

	post := db.Post{
		Title:    strings.TrimSpace(input.Title),
		Content:  input.Content,
		Excerpt:  strings.TrimSpace(input.Excerpt),
		Slug:     input.Slug,
		Status:   status,
		Tags:     input.Tags,
		AuthorID: input.AuthorID,
		ReadTime: readTime,
	}

	if status == db.StatusPublished {
		now := time.Now()
		post.PublishedAt = &now
	}

	if err := s.db.Create(&post).Error; err != nil {
		return nil, normalizeError(err, "failed to create post")
	}
	return &post, nil
}

// UpdatePost applies a partial field merge to an existing post and
// returns the updated row.
func (s *PostService) UpdatePost(id uint, input UpdatePostInput) (*db.Post, error) {
	if id == 0 {
		return nil, validationError("post id is required")
	}

	var existing db.Post
	if err := s.db.First(&existing, id).Error; err != nil {
		return nil, normalizeError(err, "failed to update post")
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, validationError("post title is required")
		}
		existing.Title = strings.TrimSpace(*input.Title)
	}
	if input.Content != nil {
		if strings.TrimSpace(*input.Content) == "" {
			return nil, validationError("post content is required")
		}
		existing.Content = *input.Content
	}
	if input.Excerpt != nil {
		existing.Excerpt = strings.TrimSpace(*input.Excerpt)
	}
	if input.Slug != nil {
		if !IsValidSlug(*input.Slug) {
			return nil, validationError("post slug must be URL-safe")
		}
		existing.Slug = *input.Slug
	}
	if input.Status != nil {
		status := *input.Status
		if status != db.StatusDraft && status != db.StatusPublished && status != db.StatusArchived {
			return nil, validationError("unknown post status")
		}
		// 首次切换到已发布时补记发布时间
		if status == db.StatusPublished && existing.PublishedAt == nil && input.PublishedAt == nil {
			now := time.Now()
			existing.PublishedAt = &now
		}
		existing.Status = status
	}
	if input.Tags != nil {
		existing.Tags = input.Tags
	}
	if input.ReadTime != nil {
		if *input.ReadTime <= 0 {
			return nil, validationError("post read time must be positive")
		}
		existing.ReadTime = *input.ReadTime
	}
	if input.PublishedAt != nil {
		existing.PublishedAt = input.PublishedAt
	}

	if err := s.db.Save(&existing).Error; err != nil {
		return nil, normalizeError(err, "failed to update post")
	}
	return &existing, nil
}

// DeletePost removes a post. Deletion is irreversible; deleting an
// already absent row is not an error.
func (s *PostService) DeletePost(id uint) error {
	if id == 0 {
		return validationError("post id is required")
	}

	if err := s.db.Delete(&db.Post{}, id).Error; err != nil {
		return normalizeError(err, "failed to delete post")
	}
	return nil
}

// IncrementViewCount bumps the view counter through a single atomic
// UPDATE, never a read-modify-write, so concurrent readers cannot lose
// updates. The timestamp column is left untouched.
func (s *PostService) IncrementViewCount(id uint) error {
	if id == 0 {
		return validationError("post id is required")
	}

	result := s.db.Model(&db.Post{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if result.Error != nil {
		return normalizeError(result.Error, "failed to update view count")
	}
	if result.RowsAffected == 0 {
		return &PostError{Kind: KindNotFound, Message: "requested post was not found"}
	}
	return nil
}

// GetStats counts posts per status. The whole status column is scanned
// and counted here rather than in SQL, which is fine at this scale.
func (s *PostService) GetStats() (PostStats, error) {
	var statuses []string
	if err := s.db.Model(&db.Post{}).Pluck("status", &statuses).Error; err != nil {
		return PostStats{}, normalizeError(err, "failed to load post stats")
	}

	stats := PostStats{Total: len(statuses)}
	for _, status := range statuses {
		switch status {
		case db.StatusPublished:
			stats.Published++
		case db.StatusDraft:
			stats.Draft++
		}
	}
	return stats, nil
}

// GetPostsByTag returns published posts whose tag list contains tag,
// newest published_at first.
func (s *PostService) GetPostsByTag(tag string) ([]db.Post, error) {
	if strings.TrimSpace(tag) == "" {
		return nil, validationError("tag is required")
	}

	var posts []db.Post
	if err := s.db.
		Where("status = ?", db.StatusPublished).
		Where("EXISTS (SELECT 1 FROM json_each(posts.tags) WHERE json_each.value = ?)", tag).
		Order("published_at desc").
		Find(&posts).Error; err != nil {
		return nil, normalizeError(err, "failed to load posts by tag")
	}
	return posts, nil
}

// SearchPosts matches query case-insensitively against title or content
// of published posts.
func (s *PostService) SearchPosts(query string) ([]db.Post, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, validationError("search query is required")
	}

	pattern := "%" + strings.ToLower(trimmed) + "%"
	var posts []db.Post
	if err := s.db.
		Where("status = ?", db.StatusPublished).
		Where("(LOWER(title) LIKE ? OR LOWER(content) LIKE ?)", pattern, pattern).
		Order("published_at desc").
		Find(&posts).Error; err != nil {
		return nil, normalizeError(err, "failed to search posts")
	}
	return posts, nil
}

func estimateReadTime(content string) int {
	words := len(strings.Fields(content))
	if words == 0 {
		return defaultReadTime
	}

	minutes := words / wordsPerMinute
	if words%wordsPerMinute != 0 {
		minutes++
	}
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
