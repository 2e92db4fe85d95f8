package micropub

import (
	"strings"
	"time"
	"unicode"
)

// slug 正文部分的最大长度（在连字符化之前截断）。
const slugTextLimit = 32

// DeriveSlug 为新文章计算 slug。
// 显式的 mp-slug 覆盖值原样使用；否则取标题、正文前若干字符或常量兜底，
// 并以日期段作为前缀，使 slug 天然按天分片。
// 唯一性由存储层的唯一索引保证，这里不做冲突探测。
func DeriveSlug(input *PostInput, now time.Time) string {
	if override := strings.TrimSpace(input.Slug); override != "" {
		return override
	}

	text := slugify(input.Name)
	if text == "" {
		text = slugify(input.Content)
	}
	if text == "" {
		text = "post"
	}

	day := now
	if published, ok := input.PublishedTime(); ok {
		day = published
	}

	return day.Format("2006-01-02") + "/" + text
}

// slugify 只保留小写字母数字与空白，截断后把空白折叠为单个连字符。
func slugify(raw string) string {
	var filtered strings.Builder
	count := 0
	for _, r := range strings.ToLower(raw) {
		if count >= slugTextLimit {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			filtered.WriteRune(r)
			count++
		}
	}

	return strings.Join(strings.Fields(filtered.String()), "-")
}
