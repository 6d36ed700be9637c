package service

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/inklog/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupPostServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:post-service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to access sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := gdb.AutoMigrate(&db.User{}, &db.Post{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return gdb
}

func seedPost(t *testing.T, gdb *gorm.DB, post db.Post) db.Post {
	t.Helper()
	if post.ReadTime == 0 {
		post.ReadTime = 5
	}
	if err := gdb.Create(&post).Error; err != nil {
		t.Fatalf("seed post %q: %v", post.Slug, err)
	}
	return post
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func validCreateInput() CreatePostInput {
	return CreatePostInput{
		Title:    "Hello World",
		Content:  "Some content worth reading.",
		Slug:     "hello-world",
		AuthorID: 1,
	}
}

func TestPostService_CreatePostStampsAuthorAndPublishTime(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	svc := NewPostService(gdb)

	input := validCreateInput()
	input.AuthorID = 42
	input.Status = db.StatusPublished

	post, err := svc.CreatePost(input)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if post.ID == 0 {
		t.Fatalf("expected backend-assigned id")
	}
	if post.AuthorID != 42 {
		t.Fatalf("expected author id 42, got %d", post.AuthorID)
	}
	if post.PublishedAt == nil {
		t.Fatalf("expected published_at to be stamped for published post")
	}
}

func TestPostService_CreateDraftHasNoPublishTime(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	svc := NewPostService(gdb)

	post, err := svc.CreatePost(validCreateInput())
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if post.Status != db.StatusDraft {
		t.Fatalf("expected default status draft, got %q", post.Status)
	}
	if post.PublishedAt != nil {
		t.Fatalf("expected nil published_at for draft, got %v", post.PublishedAt)
	}
}

func TestPostService_CreatePostValidatesRequiredFields(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	svc := NewPostService(gdb)

	tests := []struct {
		name    string
		mutate  func(*CreatePostInput)
		message string
	}{
		{
			name:    "blank title",
			mutate:  func(in *CreatePostInput) { in.Title = "   " },
			message: "post title is required",
		},
		{
			name:    "blank slug",
			mutate:  func(in *CreatePostInput) { in.Slug = "" },
			message: "post slug is required",
		},
		{
			name:    "blank content",
			mutate:  func(in *CreatePostInput) { in.Content = "\n\t" },
			message: "post content is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validCreateInput()
			tt.mutate(&input)

			_, err := svc.CreatePost(input)
			pe, ok := err.(*PostError)
			if !ok {
				t.Fatalf("expected *PostError, got %v", err)
			}
			if pe.Kind != KindValidation {
				t.Fatalf("expected validation kind, got %q", pe.Kind)
			}
			if pe.Message != tt.message {
				t.Fatalf("expected message %q, got %q", tt.message, pe.Message)
			}

			var count int64
			if err := gdb.Model(&db.Post{}).Count(&count).Error; err != nil {
				t.Fatalf("count posts: %v", err)
			}
			if count != 0 {
				t.Fatalf("validation failure must not touch the database, found %d rows", count)
			}
		})
	}
}

func TestPostService_CreatePostRequiresIdentity(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	svc := NewPostService(gdb)

	input := validCreateInput()
	input.AuthorID = 0

	_, err := svc.CreatePost(input)
	pe, ok := err.(*PostError)
	if !ok {
		t.Fatalf("expected *PostError, got %v", err)
	}
	if pe.Kind != KindPermission {
		t.Fatalf("expected permission kind, got %q", pe.Kind)
	}
}

func TestPostService_CreatePostRejectsUnsafeSlug(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	svc := NewPostService(gdb)

	input := validCreateInput()
	input.Slug = "Hello World!"

	_, err := svc.CreatePost(input)
	pe, ok := err.(*PostError)
	if !ok {
		t.Fatalf("expected *PostError, got %v", err)
	}
	if pe.Kind != KindValidation {
		t.Fatalf("expected validation kind, got %q", pe.Kind)
	}
}

func TestPostService_CreatePostDerivesReadTime(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	svc := NewPostService(gdb)

	input := validCreateInput()
	input.Content = strings.TrimSpace(strings.Repeat("word ", 450))

	post, err := svc.CreatePost(input)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if post.ReadTime != 3 {
		t.Fatalf("expected 450 words to read in 3 minutes, got %d", post.ReadTime)
	}

	explicit := validCreateInput()
	explicit.Slug = "explicit-read-time"
	explicit.ReadTime = 12

	post, err = svc.CreatePost(explicit)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if post.ReadTime != 12 {
		t.Fatalf("expected supplied read time to win, got %d", post.ReadTime)
	}
}

func TestPostService_GetPostBySlug(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	svc := NewPostService(gdb)

	seedPost(t, gdb, db.Post{
		Title:       "Published",
		Content:     "body",
		Slug:        "published-post",
		Status:      db.StatusPublished,
		PublishedAt: timePtr(time.Now()),
	})
	seedPost(t, gdb, db.Post{
		Title:   "Draft",
		Content: "body",
		Slug:    "draft-post",
		Status:  db.StatusDraft,
	})

	post, err := svc.GetPostBySlug("published-post")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if post == nil || post.Slug != "published-post" {
		t.Fatalf("expected published post, got %+v", post)
	}

	// 未发布文章与不存在的文章一样返回 absent
	post, err = svc.GetPostBySlug("draft-post")
	if err != nil {
		t.Fatalf("draft lookup should not fail: %v", err)
	}
	if post != nil {
		t.Fatalf("draft must not be publicly visible, got %+v", post)
	}

	post, err = svc.GetPostBySlug("nonexistent")
	if err != nil {
		t.Fatalf("missing lookup should not fail: %v", err)
	}
	if post != nil {
		t.Fatalf("expected absent result, got %+v", post)
	}

	if _, err := svc.GetPostBySlug(""); err == nil {
		t.Fatalf("expected error for empty slug")
	}
}

func TestPostService_GetPublishedPostsFiltersStatus(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	svc := NewPostService(gdb)

	seedPost(t, gdb, db.Post{Title: "a", Content: "x", Slug: "a", Status: db.StatusPublished, PublishedAt: timePtr(time.Now())})
	seedPost(t, gdb, db.Post{Title: "b", Content: "x", Slug: "b", Status: db.StatusDraft})
	seedPost(t, gdb, db.Post{Title: "c", Content: "x", Slug: "c", Status: db.StatusArchived})

	posts, err := svc.GetPublishedPosts()
	if err != nil {
		t.Fatalf("get published: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("expected 1 published post, got %d", len(posts))
	}
	for _, post := range posts {
		if post.Status != db.StatusPublished {
			t.Fatalf("unexpected status %q in published query", post.Status)
		}
	}
}

func TestPostService_GetRecentPostsLimitAndOrder(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	svc := NewPostService(gdb)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		seedPost(t, gdb, db.Post{
			Title:       fmt.Sprintf("post %d", i),
			Content:     "x",
			Slug:        fmt.Sprintf("post-%d", i),
			Status:      db.StatusPublished,
			PublishedAt: timePtr(base.AddDate(0, 0, i)),
		})
	}
	// published_at 为空的行必须被排除
	seedPost(t, gdb, db.Post{Title: "no publish time", Content: "x", Slug: "no-publish-time", Status: db.StatusPublished})

	posts, err := svc.GetRecentPosts(3)
	if err != nil {
		t.Fatalf("get recent: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(posts))
	}
	for i, post := range posts {
		if post.PublishedAt == nil {
			t.Fatalf("post %q has nil published_at", post.Slug)
		}
		if i > 0 && posts[i-1].PublishedAt.Before(*post.PublishedAt) {
			t.Fatalf("posts not sorted by published_at descending")
		}
	}
	if posts[0].Slug != "post-6" {
		t.Fatalf("expected newest post first, got %q", posts[0].Slug)
	}

	posts, err = svc.GetRecentPosts(0)
	if err != nil {
		t.Fatalf("get recent with default limit: %v", err)
	}
	if len(posts) != 5 {
		t.Fatalf("expected default limit 5, got %d", len(posts))
	}
}

func TestPostService_UpdatePostPartialMerge(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	svc := NewPostService(gdb)

	created := seedPost(t, gdb, db.Post{
		Title:   "Original",
		Content: "original content",
		Excerpt: "original excerpt",
		Slug:    "original",
		Status:  db.StatusDraft,
		Tags:    []string{"go"},
	})

	newTitle := "Updated"
	updated, err := svc.UpdatePost(created.ID, UpdatePostInput{Title: &newTitle})
	if err != nil {
		t.Fatalf("update post: %v", err)
	}
	if updated.Title != "Updated" {
		t.Fatalf("expected title updated, got %q", updated.Title)
	}
	if updated.Content != "original content" || updated.Excerpt != "original excerpt" {
		t.Fatalf("untouched fields must survive a partial update")
	}
	if len(updated.Tags) != 1 || updated.Tags[0] != "go" {
		t.Fatalf("tags must survive a partial update, got %v", updated.Tags)
	}

	if _, err := svc.UpdatePost(0, UpdatePostInput{Title: &newTitle}); err == nil {
		t.Fatalf("expected error for missing id")
	}

	if _, err := svc.UpdatePost(9999, UpdatePostInput{Title: &newTitle}); err == nil {
		t.Fatalf("expected error for unknown id")
	}
}

func TestPostService_UpdateToPublishedStampsPublishTime(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	svc := NewPostService(gdb)

	created := seedPost(t, gdb, db.Post{Title: "t", Content: "c", Slug: "t", Status: db.StatusDraft})

	status := db.StatusPublished
	updated, err := svc.UpdatePost(created.ID, UpdatePostInput{Status: &status})
	if err != nil {
		t.Fatalf("update post: %v", err)
	}
	if updated.PublishedAt == nil {
		t.Fatalf("expected published_at stamped on first publish")
	}
}

func TestPostService_DeletePost(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	svc := NewPostService(gdb)

	if err := svc.DeletePost(0); err == nil {
		t.Fatalf("expected error for missing id")
	}

	created := seedPost(t, gdb, db.Post{Title: "t", Content: "c", Slug: "doomed", Status: db.StatusDraft})

	if err := svc.DeletePost(created.ID); err != nil {
		t.Fatalf("delete post: %v", err)
	}

	posts, err := svc.GetAllPosts()
	if err != nil {
		t.Fatalf("get all posts: %v", err)
	}
	for _, post := range posts {
		if post.ID == created.ID {
			t.Fatalf("deleted post %d still present", created.ID)
		}
	}
}

func TestPostService_GetStats(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	svc := NewPostService(gdb)

	seedPost(t, gdb, db.Post{Title: "a", Content: "x", Slug: "a", Status: db.StatusPublished, PublishedAt: timePtr(time.Now())})
	seedPost(t, gdb, db.Post{Title: "b", Content: "x", Slug: "b", Status: db.StatusPublished, PublishedAt: timePtr(time.Now())})
	seedPost(t, gdb, db.Post{Title: "c", Content: "x", Slug: "c", Status: db.StatusDraft})

	stats, err := svc.GetStats()
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if stats.Total != 3 || stats.Published != 2 || stats.Draft != 1 {
		t.Fatalf("expected {3 2 1}, got %+v", stats)
	}
}

func TestPostService_IncrementViewCountIsAtomic(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	svc := NewPostService(gdb)

	created := seedPost(t, gdb, db.Post{Title: "t", Content: "c", Slug: "counted", Status: db.StatusPublished, PublishedAt: timePtr(time.Now())})

	const (
		workers    = 25
		increments = 4
	)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < increments; j++ {
				if err := svc.IncrementViewCount(created.ID); err != nil {
					t.Errorf("increment view count: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	post, err := svc.GetPost(created.ID)
	if err != nil {
		t.Fatalf("get post: %v", err)
	}
	if post.ViewCount != workers*increments {
		t.Fatalf("expected %d views, got %d", workers*increments, post.ViewCount)
	}

	if err := svc.IncrementViewCount(0); err == nil {
		t.Fatalf("expected error for missing id")
	}
}

func TestPostService_GetPostsByTag(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	svc := NewPostService(gdb)

	seedPost(t, gdb, db.Post{Title: "go post", Content: "x", Slug: "go-post", Status: db.StatusPublished, Tags: []string{"go", "web"}, PublishedAt: timePtr(time.Now())})
	seedPost(t, gdb, db.Post{Title: "rust post", Content: "x", Slug: "rust-post", Status: db.StatusPublished, Tags: []string{"rust"}, PublishedAt: timePtr(time.Now())})
	seedPost(t, gdb, db.Post{Title: "go draft", Content: "x", Slug: "go-draft", Status: db.StatusDraft, Tags: []string{"go"}})

	posts, err := svc.GetPostsByTag("go")
	if err != nil {
		t.Fatalf("get posts by tag: %v", err)
	}
	if len(posts) != 1 || posts[0].Slug != "go-post" {
		t.Fatalf("expected only the published go post, got %+v", posts)
	}

	if _, err := svc.GetPostsByTag("  "); err == nil {
		t.Fatalf("expected error for blank tag")
	}
}

func TestPostService_SearchPosts(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	svc := NewPostService(gdb)

	seedPost(t, gdb, db.Post{Title: "Writing Go Services", Content: "servers and handlers", Slug: "go-services", Status: db.StatusPublished, PublishedAt: timePtr(time.Now())})
	seedPost(t, gdb, db.Post{Title: "Gardening", Content: "The GOPHER in my yard", Slug: "gardening", Status: db.StatusPublished, PublishedAt: timePtr(time.Now())})
	seedPost(t, gdb, db.Post{Title: "Go Draft", Content: "unpublished", Slug: "go-draft", Status: db.StatusDraft})

	posts, err := svc.SearchPosts("gopher")
	if err != nil {
		t.Fatalf("search posts: %v", err)
	}
	if len(posts) != 1 || posts[0].Slug != "gardening" {
		t.Fatalf("expected case-insensitive content match, got %+v", posts)
	}

	posts, err = svc.SearchPosts("go")
	if err != nil {
		t.Fatalf("search posts: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 published matches, got %d", len(posts))
	}

	if _, err := svc.SearchPosts(""); err == nil {
		t.Fatalf("expected error for blank query")
	}
}
