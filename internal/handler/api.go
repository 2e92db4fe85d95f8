package handler

import (
	"context"

	"github.com/inklog/internal/blob"
	"github.com/inklog/internal/config"
	"github.com/inklog/internal/service"
	"gorm.io/gorm"
)

// TokenVerifier 校验 Authorization 头并返回令牌描述。
type TokenVerifier interface {
	Verify(ctx context.Context, authorization string) (*service.TokenInfo, error)
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db    *gorm.DB
	posts *service.PostService
	media *service.MediaService
	auth  TokenVerifier
	cfg   config.AppConfig
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, blobs blob.Store, verifier TokenVerifier, cfg config.AppConfig) *API {
	return &API{
		db:    gdb,
		posts: service.NewPostService(gdb),
		media: service.NewMediaService(gdb, blobs, cfg.MaxUploadBytes),
		auth:  verifier,
		cfg:   cfg,
	}
}
