package micropub

import (
	"strings"

	"golang.org/x/net/html"
)

// looksLikeHTML 判断一段文本是否包含 HTML 标记。
// 使用分词器而不是正则，避免把 "a < b" 这类普通文本误判为标记。
func looksLikeHTML(content string) bool {
	if !strings.ContainsRune(content, '<') {
		return false
	}

	tokenizer := html.NewTokenizer(strings.NewReader(content))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			return true
		}
	}
}
