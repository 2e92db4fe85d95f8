package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/inklog/internal/blob"
	"github.com/inklog/internal/config"
	"github.com/inklog/internal/db"
	"github.com/inklog/internal/handler"
	"github.com/inklog/internal/router"
	"github.com/inklog/internal/service"
	"github.com/joho/godotenv"
)

func main() {
	// .env 仅在本地开发存在，缺失时直接使用进程环境
	_ = godotenv.Load()
	cfg := config.Load()

	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	blobs, err := blob.NewFileStore(cfg.BlobDir)
	if err != nil {
		log.Fatalf("failed to initialize blob store: %v", err)
	}

	gin.SetMode(cfg.GinMode)

	api := handler.NewAPI(db.DB, blobs, service.NewAuthService(cfg.TokenEndpoint), cfg)
	r := router.Setup(api)

	log.Printf("listening on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
