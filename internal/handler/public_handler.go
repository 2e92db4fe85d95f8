package handler

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inklog/internal/db"
	"github.com/inklog/internal/service"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// postView 是渲染文章页与列表所需的视图模型。
type postView struct {
	Slug       string
	EntryType  string
	Title      string
	Content    template.HTML
	Published  string
	Updated    string
	Tags       []string
	BookmarkOf string
	Photos     []photoView
}

type photoView struct {
	URL string
	Alt string
}

func (a *API) buildPostView(post *db.Post) postView {
	view := postView{
		Slug:       post.Slug,
		EntryType:  post.EntryType,
		Title:      post.Name,
		Content:    renderContent(post.Content, post.ContentType),
		Published:  post.CreatedAt,
		Updated:    post.UpdatedAt,
		Tags:       post.CategoryNames(),
		BookmarkOf: post.BookmarkOf,
	}
	for _, photo := range post.Photos {
		view.Photos = append(view.Photos, photoView{URL: photo.URL, Alt: photo.Alt})
	}
	return view
}

// renderContent 按内容类型产出安全的 HTML：
// markdown 在读取时渲染，客户端提交的 HTML 一律先过净化策略。
func renderContent(content, contentType string) template.HTML {
	switch contentType {
	case "markdown":
		var buf bytes.Buffer
		if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
			return template.HTML(template.HTMLEscapeString(content))
		}
		return template.HTML(sanitizer.SanitizeBytes(buf.Bytes()))
	case "html":
		return template.HTML(sanitizer.Sanitize(content))
	default:
		escaped := template.HTMLEscapeString(content)
		return template.HTML(strings.ReplaceAll(escaped, "\n", "<br/>\n"))
	}
}

// ShowIndex 渲染最新一篇文章。
func (a *API) ShowIndex(c *gin.Context) {
	post, err := a.posts.Latest()
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}

	a.renderPage(c, postPageTemplate, gin.H{
		"site": a.cfg.SiteBaseURL,
		"post": a.buildPostView(post),
	})
}

// ShowPost 把未匹配其他路由的 GET 路径当作文章 slug 处理。
func (a *API) ShowPost(c *gin.Context) {
	if c.Request.Method != http.MethodGet {
		c.Status(http.StatusNotFound)
		return
	}

	slug := strings.Trim(c.Request.URL.Path, "/")
	if slug == "" {
		c.Status(http.StatusNotFound)
		return
	}

	post, err := a.posts.FetchBySlug(slug)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}

	a.renderPage(c, postPageTemplate, gin.H{
		"site": a.cfg.SiteBaseURL,
		"post": a.buildPostView(post),
	})
}

// ShowArchive 渲染按时间倒序的全量文章列表。
func (a *API) ShowArchive(c *gin.Context) {
	posts, err := a.posts.ListRecent(0)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	a.renderArchive(c, posts, "")
}

// ShowTagArchive 渲染携带指定标签的文章列表。
func (a *API) ShowTagArchive(c *gin.Context) {
	tag := c.Param("tag")
	posts, err := a.posts.ListByCategory(tag)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	a.renderArchive(c, posts, tag)
}

func (a *API) renderArchive(c *gin.Context, posts []db.Post, tag string) {
	views := make([]postView, 0, len(posts))
	for i := range posts {
		views = append(views, a.buildPostView(&posts[i]))
	}

	a.renderPage(c, archivePageTemplate, gin.H{
		"site":  a.cfg.SiteBaseURL,
		"tag":   tag,
		"posts": views,
		"year":  time.Now().Year(),
	})
}

func (a *API) renderPage(c *gin.Context, tmpl *template.Template, data gin.H) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
