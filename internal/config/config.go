package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// defaultMaxUploadBytes 限制单次上传为 50 MB。
const defaultMaxUploadBytes = 50 * 1024 * 1024

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr     string
	Port           string
	DatabasePath   string
	BlobDir        string
	TokenEndpoint  string
	HostWebsite    string
	SiteBaseURL    string
	MediaEndpoint  string
	MaxUploadBytes int64
	GinMode        string
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	databasePath := strings.TrimSpace(os.Getenv("DATABASE_PATH"))
	if databasePath == "" {
		databasePath = "inklog.db"
	}

	blobDir := strings.TrimSpace(os.Getenv("BLOB_DIR"))
	if blobDir == "" {
		blobDir = "blobs"
	}

	tokenEndpoint := strings.TrimSpace(os.Getenv("TOKEN_ENDPOINT"))
	if tokenEndpoint == "" {
		tokenEndpoint = "https://tokens.indieauth.com/token"
	}

	siteBaseURL := strings.TrimRight(strings.TrimSpace(os.Getenv("SITE_BASE_URL")), "/")
	if siteBaseURL == "" {
		siteBaseURL = "http://localhost:" + port
	}

	hostWebsite := strings.TrimSpace(os.Getenv("HOST_WEBSITE"))
	if hostWebsite == "" {
		hostWebsite = siteBaseURL + "/"
	}

	mediaEndpoint := strings.TrimSpace(os.Getenv("MEDIA_ENDPOINT"))
	if mediaEndpoint == "" {
		mediaEndpoint = siteBaseURL + "/micropub/media"
	}

	maxUploadBytes := int64(defaultMaxUploadBytes)
	if raw := strings.TrimSpace(os.Getenv("MAX_UPLOAD_BYTES")); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			maxUploadBytes = parsed
		}
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))
	if ginMode == "" {
		ginMode = "release"
	}

	return AppConfig{
		ListenAddr:     listenAddr,
		Port:           port,
		DatabasePath:   databasePath,
		BlobDir:        blobDir,
		TokenEndpoint:  tokenEndpoint,
		HostWebsite:    hostWebsite,
		SiteBaseURL:    siteBaseURL,
		MediaEndpoint:  mediaEndpoint,
		MaxUploadBytes: maxUploadBytes,
		GinMode:        ginMode,
	}
}
