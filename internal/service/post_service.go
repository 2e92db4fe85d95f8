package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/inklog/internal/db"
	"github.com/inklog/internal/micropub"
	"gorm.io/gorm"
)

var (
	ErrPostNotFound     = errors.New("post not found")
	ErrSlugConflict     = errors.New("slug already taken")
	ErrInvalidEntryType = errors.New("unrecognized entry type")
)

// validEntryTypes 是协议固定的封闭集合。
var validEntryTypes = map[string]struct{}{
	"entry":    {},
	"note":     {},
	"article":  {},
	"bookmark": {},
	"photo":    {},
}

// PostService wraps post persistence: creation with the original request blob,
// updates with append-only history snapshots, and the read paths used by
// rendering collaborators.
type PostService struct {
	db *gorm.DB
}

// NewPostService creates a PostService instance.
func NewPostService(gdb *gorm.DB) *PostService {
	return &PostService{db: gdb}
}

// Create persists a normalized post input together with the verbatim request
// bytes. The post row, its categories, photos and the original blob commit as
// one transaction; a slug collision fails the whole attempt.
func (s *PostService) Create(input *micropub.PostInput, raw []byte) (*db.Post, error) {
	if _, ok := validEntryTypes[input.EntryType]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEntryType, input.EntryType)
	}

	now := time.Now().UTC()
	createdAt := now.Format(time.RFC3339)
	if published, ok := input.PublishedTime(); ok {
		createdAt = published.UTC().Format(time.RFC3339)
	}

	post := db.Post{
		Slug:        micropub.DeriveSlug(input, now),
		EntryType:   input.EntryType,
		Name:        input.Name,
		Content:     input.Content,
		ContentType: input.ContentType,
		ClientID:    input.ClientID,
		BookmarkOf:  input.BookmarkOf,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&db.Post{}).Where("slug = ?", post.Slug).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: %q", ErrSlugConflict, post.Slug)
		}

		if err := tx.Create(&post).Error; err != nil {
			return err
		}

		for _, category := range input.Categories {
			if err := tx.Create(&db.Category{PostID: post.ID, Category: category}).Error; err != nil {
				return err
			}
		}

		for _, photo := range input.Photos {
			if err := tx.Create(&db.Photo{PostID: post.ID, URL: photo.URL, Alt: photo.Alt}).Error; err != nil {
				return err
			}
		}

		return tx.Create(&db.OriginalBlob{PostID: post.ID, PostBlob: raw}).Error
	})
	if err != nil {
		return nil, err
	}

	return s.FetchBySlug(post.Slug)
}

// Update applies incoming changes to the post addressed by slug. The current
// scalar state is copied into post_history before anything changes, then the
// category and photo sets are replaced wholesale with the input's sets.
// Slug and created_at never change here.
func (s *PostService) Update(slug string, input *micropub.PostInput) (*db.Post, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing db.Post
		if err := tx.Where("slug = ?", slug).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}

		snapshot := db.PostHistory{
			PostID:      existing.ID,
			Slug:        existing.Slug,
			EntryType:   existing.EntryType,
			Name:        existing.Name,
			Content:     existing.Content,
			ContentType: existing.ContentType,
			ClientID:    existing.ClientID,
			BookmarkOf:  existing.BookmarkOf,
			CreatedAt:   existing.CreatedAt,
			UpdatedAt:   existing.UpdatedAt,
		}
		if err := tx.Create(&snapshot).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"content":      input.Content,
			"content_type": input.ContentType,
			"updated_at":   nextUpdatedAt(existing.UpdatedAt),
		}
		if input.Name != "" {
			updates["name"] = input.Name
		}
		if input.BookmarkOf != "" {
			updates["bookmark_of"] = input.BookmarkOf
		}
		if input.ClientID != "" {
			updates["client_id"] = input.ClientID
		}
		if _, ok := validEntryTypes[input.EntryType]; ok && input.EntryType != "entry" {
			updates["entry_type"] = input.EntryType
		}

		if err := tx.Model(&db.Post{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
			return err
		}

		if err := tx.Where("post_id = ?", existing.ID).Delete(&db.Category{}).Error; err != nil {
			return err
		}
		for _, category := range input.Categories {
			if err := tx.Create(&db.Category{PostID: existing.ID, Category: category}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("post_id = ?", existing.ID).Delete(&db.Photo{}).Error; err != nil {
			return err
		}
		for _, photo := range input.Photos {
			if err := tx.Create(&db.Photo{PostID: existing.ID, URL: photo.URL, Alt: photo.Alt}).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.FetchBySlug(slug)
}

// FetchBySlug returns the post with its category and photo sets resolved.
func (s *PostService) FetchBySlug(slug string) (*db.Post, error) {
	var post db.Post
	if err := s.db.Preload("Categories").Preload("Photos").
		Where("slug = ?", slug).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// Latest returns the most recently created post.
func (s *PostService) Latest() (*db.Post, error) {
	var post db.Post
	if err := s.db.Preload("Categories").Preload("Photos").
		Order("created_at desc, id desc").First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// ListRecent returns posts ordered by recency. limit <= 0 means no limit.
func (s *PostService) ListRecent(limit int) ([]db.Post, error) {
	query := s.db.Preload("Categories").Preload("Photos").
		Order("created_at desc, id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var posts []db.Post
	if err := query.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// ListByCategory returns posts carrying the given tag, ordered by recency.
func (s *PostService) ListByCategory(category string) ([]db.Post, error) {
	var posts []db.Post
	if err := s.db.Preload("Categories").Preload("Photos").
		Joins("JOIN categories ON categories.post_id = posts.id").
		Where("categories.category = ?", category).
		Order("posts.created_at desc, posts.id desc").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// nextUpdatedAt 推进 updated_at。同一秒内的连续更新也保持单调。
func nextUpdatedAt(previous string) string {
	now := time.Now().UTC().Format(time.RFC3339)
	if now > previous {
		return now
	}
	if prev, err := time.Parse(time.RFC3339, previous); err == nil {
		return prev.Add(time.Second).Format(time.RFC3339)
	}
	return now
}
