package handler

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/inklog/internal/micropub"
	"github.com/inklog/internal/service"
)

// HandleMicropub 处理 POST /micropub：创建文章，或执行 JSON update 动作。
func (a *API) HandleMicropub(c *gin.Context) {
	body, ok := a.readBody(c)
	if !ok {
		return
	}
	// 令牌可能藏在表单体里，读完后恢复 body 供表单解析
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	ok, clientID := a.requireToken(c)
	if !ok {
		return
	}

	contentType := c.GetHeader("Content-Type")
	if isJSONContentType(contentType) {
		request, err := micropub.ParseJSONRequest(body)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}
		if request.Action == "update" {
			a.updatePost(c, request)
			return
		}
		request.Input.ClientID = clientID
		a.createPost(c, request.Input, body)
		return
	}

	input, err := micropub.Normalize(contentType, body)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, micropub.ErrUnsupportedContentType) {
			status = http.StatusUnsupportedMediaType
		}
		respondError(c, status, "invalid request body")
		return
	}
	input.ClientID = clientID
	a.createPost(c, input, body)
}

func (a *API) createPost(c *gin.Context, input *micropub.PostInput, raw []byte) {
	post, err := a.posts.Create(input, raw)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEntryType):
			respondError(c, http.StatusBadRequest, "invalid entry type")
		case errors.Is(err, service.ErrSlugConflict):
			respondError(c, http.StatusConflict, "slug already taken")
		default:
			respondError(c, http.StatusInternalServerError, "failed to create post")
		}
		return
	}

	c.Header("Location", a.cfg.SiteBaseURL+"/"+post.Slug)
	c.Status(http.StatusCreated)
}

func (a *API) updatePost(c *gin.Context, request *micropub.JSONRequest) {
	slug := a.slugFromURL(strings.TrimPrefix(request.URL, a.cfg.SiteBaseURL))
	if slug == "" {
		respondError(c, http.StatusBadRequest, "update requires a post url")
		return
	}

	if _, err := a.posts.Update(slug, request.Input); err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			respondError(c, http.StatusNotFound, "post not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to update post")
		return
	}

	c.Status(http.StatusNoContent)
}

// HandleMicropubQuery 处理 GET /micropub 的配置查询（?q=config）。
func (a *API) HandleMicropubQuery(c *gin.Context) {
	if c.Query("q") != "config" {
		c.Status(http.StatusNotFound)
		return
	}

	if ok, _ := a.requireToken(c); !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"media-endpoint": a.cfg.MediaEndpoint})
}

func isJSONContentType(contentType string) bool {
	mediaType := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}
	return mediaType == "application/json"
}
