package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inklog/internal/blob"
	"github.com/inklog/internal/config"
	"github.com/inklog/internal/db"
	"github.com/inklog/internal/handler"
	"github.com/inklog/internal/router"
	"github.com/inklog/internal/service"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ginOnce sync.Once

// fakeVerifier 模拟令牌端点：凭证匹配时返回固定身份。
type fakeVerifier struct {
	token string
	me    string
}

func (v *fakeVerifier) Verify(_ context.Context, authorization string) (*service.TokenInfo, error) {
	if authorization != "Bearer "+v.token {
		return nil, service.ErrNotAuthorized
	}
	return &service.TokenInfo{Me: v.me, ClientID: "https://quill.p3k.io/", Scope: "create update"}, nil
}

func setupMicropubTest(t *testing.T) (*gin.Engine, *gorm.DB, config.AppConfig) {
	t.Helper()

	ginOnce.Do(func() {
		gin.SetMode(gin.TestMode)
	})

	dsn := fmt.Sprintf("file:micropub-handler-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	cfg := config.AppConfig{
		SiteBaseURL:    "https://example.com",
		HostWebsite:    "https://example.com/",
		MediaEndpoint:  "https://example.com/micropub/media",
		MaxUploadBytes: 1 << 20,
	}

	verifier := &fakeVerifier{token: "valid-token", me: cfg.HostWebsite}
	api := handler.NewAPI(gdb, blob.NewMemoryStore(), verifier, cfg)
	return router.Setup(api), gdb, cfg
}

func TestMicropubFormCreate(t *testing.T) {
	r, gdb, _ := setupMicropubTest(t)

	form := url.Values{}
	form.Set("h", "entry")
	form.Set("content", "Hello world")
	form.Set("published", "2024-01-06T10:00:00Z")
	form.Set("category[]", "greetings")

	req := httptest.NewRequest(http.MethodPost, "/micropub", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if location := w.Header().Get("Location"); location != "https://example.com/2024-01-06/hello-world" {
		t.Fatalf("unexpected location %q", location)
	}

	var post db.Post
	if err := gdb.Where("slug = ?", "2024-01-06/hello-world").First(&post).Error; err != nil {
		t.Fatalf("load created post: %v", err)
	}
	if post.ClientID != "https://quill.p3k.io/" {
		t.Fatalf("client id not recorded, got %q", post.ClientID)
	}
}

func TestMicropubJSONCreate(t *testing.T) {
	r, _, _ := setupMicropubTest(t)

	body := `{
		"type": ["h-entry"],
		"properties": {
			"name": ["Titled"],
			"content": [{"html": "<p>rich</p>"}],
			"published": ["2024-01-06T10:00:00Z"]
		}
	}`

	req := httptest.NewRequest(http.MethodPost, "/micropub", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if location := w.Header().Get("Location"); location != "https://example.com/2024-01-06/titled" {
		t.Fatalf("unexpected location %q", location)
	}
}

func TestMicropubRejectsMissingToken(t *testing.T) {
	r, _, _ := setupMicropubTest(t)

	req := httptest.NewRequest(http.MethodPost, "/micropub", strings.NewReader("h=entry&content=hi"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestMicropubAcceptsFormAccessToken(t *testing.T) {
	r, _, _ := setupMicropubTest(t)

	form := url.Values{}
	form.Set("h", "entry")
	form.Set("content", "token in body")
	form.Set("access_token", "valid-token")

	req := httptest.NewRequest(http.MethodPost, "/micropub", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
}

func TestMicropubUnsupportedContentType(t *testing.T) {
	r, _, _ := setupMicropubTest(t)

	req := httptest.NewRequest(http.MethodPost, "/micropub", strings.NewReader("plain words"))
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", w.Code)
	}
}

func TestMicropubSlugConflict(t *testing.T) {
	r, _, _ := setupMicropubTest(t)

	post := func() *httptest.ResponseRecorder {
		form := url.Values{}
		form.Set("h", "entry")
		form.Set("content", "Hello world")
		form.Set("published", "2024-01-06T10:00:00Z")
		req := httptest.NewRequest(http.MethodPost, "/micropub", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Authorization", "Bearer valid-token")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	if w := post(); w.Code != http.StatusCreated {
		t.Fatalf("first create failed: %d", w.Code)
	}
	if w := post(); w.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate slug, got %d", w.Code)
	}
}

func TestMicropubUpdateAction(t *testing.T) {
	r, gdb, _ := setupMicropubTest(t)

	form := url.Values{}
	form.Set("h", "entry")
	form.Set("content", "Hello world")
	form.Set("published", "2024-01-06T10:00:00Z")
	req := httptest.NewRequest(http.MethodPost, "/micropub", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create failed: %d", w.Code)
	}

	update := `{
		"action": "update",
		"url": "https://example.com/2024-01-06/hello-world",
		"replace": {"content": [{"html": "<p>rewritten</p>"}]}
	}`
	req = httptest.NewRequest(http.MethodPost, "/micropub", strings.NewReader(update))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer valid-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
	}

	var post db.Post
	if err := gdb.Where("slug = ?", "2024-01-06/hello-world").First(&post).Error; err != nil {
		t.Fatalf("load updated post: %v", err)
	}
	if post.Content != "<p>rewritten</p>" || post.ContentType != "html" {
		t.Fatalf("update not applied: %+v", post)
	}

	var historyCount int64
	gdb.Model(&db.PostHistory{}).Count(&historyCount)
	if historyCount != 1 {
		t.Fatalf("expected one history row, got %d", historyCount)
	}
}

func TestMicropubUpdateMissingPost(t *testing.T) {
	r, _, _ := setupMicropubTest(t)

	update := `{
		"action": "update",
		"url": "https://example.com/2024-01-06/ghost",
		"replace": {"content": ["nothing here"]}
	}`
	req := httptest.NewRequest(http.MethodPost, "/micropub", strings.NewReader(update))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestMicropubConfigQuery(t *testing.T) {
	r, _, cfg := setupMicropubTest(t)

	req := httptest.NewRequest(http.MethodGet, "/micropub?q=config", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), cfg.MediaEndpoint) {
		t.Fatalf("config response missing media endpoint: %s", w.Body.String())
	}
}
