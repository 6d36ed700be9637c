package db

import (
	"strings"
	"time"
)

// 文章状态，public 查询只返回 published。
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

const excerptRuneLimit = 150

// Post 定义了文章模型。删除为硬删除，因此不使用 gorm.Model 的 DeletedAt。
type Post struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Content     string     `gorm:"not null" json:"content"`
	Excerpt     string     `json:"excerpt"`
	Slug        string     `gorm:"uniqueIndex;not null" json:"slug"`
	Status      string     `gorm:"index;default:draft" json:"status"`
	Tags        []string   `gorm:"serializer:json" json:"tags"`
	AuthorID    uint       `json:"author_id"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ViewCount   uint64     `gorm:"default:0" json:"view_count"`
	ReadTime    int        `json:"read_time"`
}

// IsPublished 判断文章是否对外可见。
func (p Post) IsPublished() bool {
	return p.Status == StatusPublished
}

// DisplayExcerpt 返回用于列表展示的摘要。
// 摘要为空时回退为正文前 150 个字符加省略号。
func (p Post) DisplayExcerpt() string {
	if trimmed := strings.TrimSpace(p.Excerpt); trimmed != "" {
		return trimmed
	}

	content := strings.TrimSpace(p.Content)
	runes := []rune(content)
	if len(runes) <= excerptRuneLimit {
		return content
	}
	return string(runes[:excerptRuneLimit]) + "..."
}

// DisplayDate 返回文章的展示日期：已发布取发布时间，否则取创建时间。
func (p Post) DisplayDate() time.Time {
	if p.PublishedAt != nil {
		return *p.PublishedAt
	}
	return p.CreatedAt
}
