package micropub

import (
	"fmt"
	"mime"
	"net/url"
	"strings"
)

// Normalize 根据请求声明的内容编码解析请求体。
// 空的内容类型按 url-encoded form 处理，与主流客户端的行为一致。
func Normalize(contentType string, body []byte) (*PostInput, error) {
	mediaType := strings.TrimSpace(contentType)
	if mediaType != "" {
		if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
			mediaType = parsed
		}
	}

	switch strings.ToLower(mediaType) {
	case "", "application/x-www-form-urlencoded":
		return ParseForm(body)
	case "application/json":
		return ParseJSON(body)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedContentType, contentType)
	}
}

// ParseForm 解析 url-encoded form 编码的 Micropub 请求。
// category 既可以是单值字段也可以是 category[] 数组；缺失的可选字段一律容忍。
func ParseForm(body []byte) (*PostInput, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse micropub form: %w", err)
	}

	input := &PostInput{
		EntryType:  normalizeEntryType(values.Get("h")),
		Name:       values.Get("name"),
		BookmarkOf: values.Get("bookmark-of"),
		Slug:       values.Get("mp-slug"),
		Published:  values.Get("published"),
	}

	if html := values.Get("content[html]"); html != "" {
		input.Content = html
		input.ContentType = ContentTypeHTML
	} else if content := values.Get("content"); content != "" {
		input.Content = content
		// 第三方编辑器常把渲染好的 HTML 粘贴进普通 content 字段
		if looksLikeHTML(content) {
			input.ContentType = ContentTypeHTML
		}
	}

	for _, key := range []string{"category", "category[]"} {
		for _, category := range values[key] {
			input.AddCategory(category)
		}
	}

	for _, key := range []string{"photo", "photo[]"} {
		for _, photoURL := range values[key] {
			if photoURL != "" {
				input.Photos = append(input.Photos, Photo{URL: photoURL})
			}
		}
	}

	return input, nil
}

// normalizeEntryType 将 h-entry、h-food 等归一化为 entry、food。
func normalizeEntryType(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "entry"
	}
	return strings.TrimPrefix(trimmed, "h-")
}
