package service

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"mime"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/inklog/internal/blob"
	"github.com/inklog/internal/db"
	"gorm.io/gorm"
)

var (
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrMediaNotFound   = errors.New("media not found")
)

// MediaService 实现内容寻址的媒体存储：按内容摘要去重，
// 入库前对可识别的图片格式做一次元数据净化。
type MediaService struct {
	db             *gorm.DB
	blobs          blob.Store
	maxUploadBytes int64

	// 串行化同一摘要的 exists 检查与写入，保证每个摘要至多一次物理写。
	mu sync.Mutex
}

// NewMediaService creates a MediaService instance. maxUploadBytes <= 0
// disables the size cap.
func NewMediaService(gdb *gorm.DB, blobs blob.Store, maxUploadBytes int64) *MediaService {
	return &MediaService{db: gdb, blobs: blobs, maxUploadBytes: maxUploadBytes}
}

// Store runs the upload pipeline: size check, best-effort metadata strip,
// content hashing, deduplicated blob write, and the media record upsert.
// It returns the stored record, whose HexDigest addresses the blob.
func (s *MediaService) Store(data []byte, filename, contentType string) (*db.Media, error) {
	if s.maxUploadBytes > 0 && int64(len(data)) > s.maxUploadBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrPayloadTooLarge, len(data), s.maxUploadBytes)
	}

	resolvedType := resolveContentType(data, contentType)

	stored := data
	if format := imageFormat(resolvedType); format != "" {
		stripped, err := stripImageMetadata(data, format)
		if err != nil {
			// 净化是尽力而为的隐私加固，失败时按原始字节入库
			log.Printf("media: metadata strip failed for %s upload, storing original bytes: %v", format, err)
		} else {
			stored = stripped
		}
	}

	digestBytes := sha256.Sum256(stored)
	digest := hex.EncodeToString(digestBytes[:])

	s.mu.Lock()
	exists, err := s.blobs.Exists(digest)
	if err == nil && !exists {
		err = s.blobs.Put(digest, stored)
	}
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("store media blob: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	var record db.Media
	err = s.db.Transaction(func(tx *gorm.DB) error {
		findErr := tx.Where("hex_digest = ?", digest).First(&record).Error
		if findErr == nil {
			// 同一内容再次上传：最后写入者的文件名与类型生效
			record.Filename = filename
			record.ContentType = resolvedType
			record.UpdatedAt = now
			return tx.Save(&record).Error
		}
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}

		record = db.Media{
			HexDigest:   digest,
			Filename:    filename,
			ContentType: resolvedType,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, err
	}

	return &record, nil
}

// Fetch returns the blob bytes and the recorded content type for a digest.
func (s *MediaService) Fetch(hexDigest string) ([]byte, string, error) {
	var record db.Media
	if err := s.db.Where("hex_digest = ?", hexDigest).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrMediaNotFound
		}
		return nil, "", err
	}

	data, err := s.blobs.Get(hexDigest)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, "", ErrMediaNotFound
		}
		return nil, "", fmt.Errorf("fetch media blob: %w", err)
	}

	return data, record.ContentType, nil
}

// resolveContentType 优先采用调用方声明的类型，声明缺失或不可解析时探测内容。
func resolveContentType(data []byte, declared string) string {
	trimmed := strings.TrimSpace(declared)
	if trimmed != "" {
		if parsed, _, err := mime.ParseMediaType(trimmed); err == nil {
			return parsed
		}
	}
	return mimetype.Detect(data).String()
}
