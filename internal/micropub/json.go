package micropub

import (
	"encoding/json"
	"fmt"
)

// JSONRequest 表示一个已解码的 JSON Micropub 请求。
// Action 为空时是创建请求；"update" 时 URL 指向被更新的文章，
// Input 来自 replace 属性集。
type JSONRequest struct {
	Action string
	URL    string
	Input  *PostInput
}

// jsonEntry 刻意保持宽松：type 与各属性值的形状因客户端而异，
// 统一先落到 RawMessage，再分层尝试已知形状。
type jsonEntry struct {
	Type       json.RawMessage            `json:"type"`
	Action     string                     `json:"action"`
	URL        string                     `json:"url"`
	Properties map[string]json.RawMessage `json:"properties"`
	Replace    map[string]json.RawMessage `json:"replace"`
}

// ParseJSON 解析 h-entry 风格的 JSON 创建请求。
func ParseJSON(body []byte) (*PostInput, error) {
	request, err := ParseJSONRequest(body)
	if err != nil {
		return nil, err
	}
	return request.Input, nil
}

// ParseJSONRequest 解析 JSON 请求并保留 action/url 信息。
func ParseJSONRequest(body []byte) (*JSONRequest, error) {
	var entry jsonEntry
	if err := json.Unmarshal(body, &entry); err != nil {
		return nil, fmt.Errorf("parse micropub json: %w", err)
	}

	properties := entry.Properties
	if entry.Action == "update" {
		properties = entry.Replace
	}

	input := &PostInput{EntryType: normalizeEntryType(firstString(entry.Type))}
	applyProperties(input, properties)

	return &JSONRequest{Action: entry.Action, URL: entry.URL, Input: input}, nil
}

func applyProperties(input *PostInput, properties map[string]json.RawMessage) {
	if raw, ok := properties["name"]; ok {
		input.Name = firstString(raw)
	}
	if raw, ok := properties["content"]; ok {
		input.Content, input.ContentType = contentOf(raw)
	}
	for _, category := range allStrings(properties["category"]) {
		input.AddCategory(category)
	}
	if raw, ok := properties["bookmark-of"]; ok {
		input.BookmarkOf = firstString(raw)
	}
	if raw, ok := properties["mp-slug"]; ok {
		input.Slug = firstString(raw)
	}
	if raw, ok := properties["published"]; ok {
		input.Published = firstString(raw)
	}
	if raw, ok := properties["photo"]; ok {
		input.Photos = append(input.Photos, photosOf(raw)...)
	}
}

// firstString 从一个属性值中提取首个字符串。
// 依次尝试：裸字符串、字符串数组、任意数组中的首个字符串。
func firstString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, item := range list {
			if s := firstString(item); s != "" {
				return s
			}
		}
	}

	return ""
}

// allStrings 提取一个属性值中的所有字符串，容忍裸字符串与数组两种形状。
func allStrings(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}

	var result []string
	for _, item := range list {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			result = append(result, s)
		}
	}
	return result
}

// contentOf 解析 content 属性。可能的形状：
// "text"、["text"]、[{"html": "..."}]、[{"markdown": "..."}]、{"html": "..."}。
func contentOf(raw json.RawMessage) (string, string) {
	if len(raw) == 0 {
		return "", ContentTypePlain
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single, ContentTypePlain
	}

	if content, contentType, ok := contentFromMap(raw); ok {
		return content, contentType
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, item := range list {
			var s string
			if err := json.Unmarshal(item, &s); err == nil {
				return s, ContentTypePlain
			}
			if content, contentType, ok := contentFromMap(item); ok {
				return content, contentType
			}
		}
	}

	return "", ContentTypePlain
}

func contentFromMap(raw json.RawMessage) (string, string, bool) {
	var body struct {
		HTML     *string `json:"html"`
		Markdown *string `json:"markdown"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", "", false
	}
	if body.HTML != nil {
		return *body.HTML, ContentTypeHTML, true
	}
	if body.Markdown != nil {
		return *body.Markdown, ContentTypeMarkdown, true
	}
	return "", "", false
}

// photosOf 解析 photo 属性。可能的形状：
// "url"、["url", ...]、{"value": "url", "alt": "..."}，以及混合数组。
func photosOf(raw json.RawMessage) []Photo {
	if len(raw) == 0 {
		return nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single == "" {
			return nil
		}
		return []Photo{{URL: single}}
	}

	if photo, ok := photoFromMap(raw); ok {
		return []Photo{photo}
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}

	var photos []Photo
	for _, item := range list {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			if s != "" {
				photos = append(photos, Photo{URL: s})
			}
			continue
		}
		if photo, ok := photoFromMap(item); ok {
			photos = append(photos, photo)
		}
	}
	return photos
}

func photoFromMap(raw json.RawMessage) (Photo, bool) {
	var body struct {
		Value string `json:"value"`
		Alt   string `json:"alt"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || body.Value == "" {
		return Photo{}, false
	}
	return Photo{URL: body.Value, Alt: body.Alt}, true
}
