// Package micropub normalizes the request encodings accepted by the Micropub
// endpoint (url-encoded form, h-entry JSON, and looser legacy JSON shapes)
// into one canonical PostInput.
package micropub

import (
	"errors"
	"time"
)

// 内容类型标记。空值表示纯文本。
const (
	ContentTypePlain    = ""
	ContentTypeHTML     = "html"
	ContentTypeMarkdown = "markdown"
)

var (
	// ErrUnsupportedContentType 表示请求声明了无法识别的编码。
	ErrUnsupportedContentType = errors.New("unsupported content type")
)

// Photo 表示文章引用的一张图片。
type Photo struct {
	URL string
	Alt string
}

// PostInput 是各种请求编码归一化后的规范表示。
// 除 EntryType 外的字段都是可选的，缺失时保持零值。
type PostInput struct {
	EntryType   string
	Name        string
	Content     string
	ContentType string
	BookmarkOf  string
	Categories  []string
	Photos      []Photo
	ClientID    string
	Slug        string
	Published   string
}

// AddCategory 追加一个标签，忽略空白与重复项。
func (in *PostInput) AddCategory(category string) {
	if category == "" {
		return
	}
	for _, existing := range in.Categories {
		if existing == category {
			return
		}
	}
	in.Categories = append(in.Categories, category)
}

// PublishedTime 解析显式发布时间。支持 RFC 3339 与 "2006-01-02 15:04:05"。
func (in *PostInput) PublishedTime() (time.Time, bool) {
	raw := in.Published
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
