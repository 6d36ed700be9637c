package handler

import (
	"github.com/inklog/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db          *gorm.DB
	posts       *service.PostService
	siteBaseURL string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, siteBaseURL string) *API {
	return &API{
		db:          gdb,
		posts:       service.NewPostService(gdb),
		siteBaseURL: siteBaseURL,
	}
}
