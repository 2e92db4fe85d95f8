package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/inklog/internal/micropub"
	"github.com/inklog/internal/service"
	"gorm.io/gorm"
)

func seedPost(t *testing.T, gdb *gorm.DB, input *micropub.PostInput) string {
	t.Helper()
	post, err := service.NewPostService(gdb).Create(input, nil)
	if err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return post.Slug
}

func TestShowPostRendersMarkdown(t *testing.T) {
	r, gdb, _ := setupMicropubTest(t)

	slug := seedPost(t, gdb, &micropub.PostInput{
		EntryType:   "entry",
		Name:        "Rendered",
		Content:     "# Heading\n\nSome **bold** text",
		ContentType: micropub.ContentTypeMarkdown,
		Categories:  []string{"golang"},
		Published:   "2024-01-06T10:00:00Z",
	})

	req := httptest.NewRequest(http.MethodGet, "/"+slug, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "<strong>bold</strong>") {
		t.Fatalf("markdown not rendered: %s", body)
	}
	if !strings.Contains(body, `class="h-entry"`) {
		t.Fatalf("missing h-entry markup")
	}
	if !strings.Contains(body, `#golang`) {
		t.Fatalf("missing tag link")
	}
}

func TestShowPostSanitizesSubmittedHTML(t *testing.T) {
	r, gdb, _ := setupMicropubTest(t)

	slug := seedPost(t, gdb, &micropub.PostInput{
		EntryType:   "entry",
		Content:     `<p>fine</p><script>alert("boom")</script>`,
		ContentType: micropub.ContentTypeHTML,
		Published:   "2024-01-06T10:00:00Z",
	})

	req := httptest.NewRequest(http.MethodGet, "/"+slug, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if strings.Contains(body, "<script>") {
		t.Fatalf("script tag survived sanitization: %s", body)
	}
	if !strings.Contains(body, "<p>fine</p>") {
		t.Fatalf("allowed markup was stripped: %s", body)
	}
}

func TestShowPostEscapesPlainText(t *testing.T) {
	r, gdb, _ := setupMicropubTest(t)

	slug := seedPost(t, gdb, &micropub.PostInput{
		EntryType: "entry",
		Content:   "1 < 2\nsecond line",
		Published: "2024-01-06T10:00:00Z",
	})

	req := httptest.NewRequest(http.MethodGet, "/"+slug, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	body := w.Body.String()
	if !strings.Contains(body, "1 &lt; 2") {
		t.Fatalf("plain text not escaped: %s", body)
	}
	if !strings.Contains(body, "<br/>") {
		t.Fatalf("newlines not converted to breaks: %s", body)
	}
}

func TestShowIndexServesLatestPost(t *testing.T) {
	r, gdb, _ := setupMicropubTest(t)

	seedPost(t, gdb, &micropub.PostInput{
		EntryType: "entry", Content: "older", Published: "2024-01-01T10:00:00Z",
	})
	seedPost(t, gdb, &micropub.PostInput{
		EntryType: "entry", Name: "Newest", Content: "newer", Published: "2024-01-05T10:00:00Z",
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Newest") {
		t.Fatalf("index does not show the latest post")
	}
}

func TestShowIndexEmptySite(t *testing.T) {
	r, _, _ := setupMicropubTest(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for empty site, got %d", w.Code)
	}
}

func TestShowPostUnknownSlug(t *testing.T) {
	r, _, _ := setupMicropubTest(t)

	req := httptest.NewRequest(http.MethodGet, "/2024-01-06/no-such-post", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestArchiveListsAllPosts(t *testing.T) {
	r, gdb, _ := setupMicropubTest(t)

	seedPost(t, gdb, &micropub.PostInput{
		EntryType: "entry", Name: "First", Content: "a", Published: "2024-01-01T10:00:00Z",
	})
	seedPost(t, gdb, &micropub.PostInput{
		EntryType: "entry", Name: "Second", Content: "b", Published: "2024-01-02T10:00:00Z",
	})

	req := httptest.NewRequest(http.MethodGet, "/archives", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "First") || !strings.Contains(body, "Second") {
		t.Fatalf("archive missing posts: %s", body)
	}
	// 时间倒序：新文章排在前面
	if strings.Index(body, "Second") > strings.Index(body, "First") {
		t.Fatalf("archive not ordered by recency")
	}
}

func TestTagArchiveFiltersByTag(t *testing.T) {
	r, gdb, _ := setupMicropubTest(t)

	seedPost(t, gdb, &micropub.PostInput{
		EntryType: "entry", Name: "Tagged", Content: "a",
		Categories: []string{"golang"}, Published: "2024-01-01T10:00:00Z",
	})
	seedPost(t, gdb, &micropub.PostInput{
		EntryType: "entry", Name: "Other", Content: "b", Published: "2024-01-02T10:00:00Z",
	})

	req := httptest.NewRequest(http.MethodGet, "/tag/golang", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Tagged") {
		t.Fatalf("tag archive missing tagged post")
	}
	if strings.Contains(body, "Other") {
		t.Fatalf("tag archive leaked untagged post")
	}
}

func TestAtomFeedListsRecentEntries(t *testing.T) {
	r, gdb, _ := setupMicropubTest(t)

	seedPost(t, gdb, &micropub.PostInput{
		EntryType: "entry", Name: "Feed Me", Content: "feed body", Published: "2024-01-06T10:00:00Z",
	})

	req := httptest.NewRequest(http.MethodGet, "/feeds/all.atom.xml", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("Content-Type"); !strings.HasPrefix(got, "application/atom+xml") {
		t.Fatalf("unexpected content type %q", got)
	}
	body := w.Body.String()
	if !strings.Contains(body, "<feed") || !strings.Contains(body, "Feed Me") {
		t.Fatalf("feed missing entry: %s", body)
	}
	if !strings.Contains(body, "https://example.com/2024-01-06/feed-me") {
		t.Fatalf("feed entry missing permalink: %s", body)
	}
}
