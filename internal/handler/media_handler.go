package handler

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/inklog/internal/service"
)

// HandleMediaUpload 处理媒体端点的 multipart 上传。
// 存储按内容摘要去重，响应的 Location 指向可取回的媒体地址。
func (a *API) HandleMediaUpload(c *gin.Context) {
	if ok, _ := a.requireToken(c); !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "missing file part")
		return
	}

	if a.cfg.MaxUploadBytes > 0 && file.Size > a.cfg.MaxUploadBytes {
		respondError(c, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}

	part, err := file.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "failed to read upload")
		return
	}
	defer part.Close()

	data, err := io.ReadAll(part)
	if err != nil {
		respondError(c, http.StatusBadRequest, "failed to read upload")
		return
	}

	filename := strings.TrimSpace(file.Filename)
	if filename == "" {
		// 无文件名的上传也要有可读的记录名
		filename = uuid.New().String() + filepath.Ext(file.Filename)
	}

	record, err := a.media.Store(data, filename, file.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, service.ErrPayloadTooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, "payload too large")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to store media")
		return
	}

	c.Header("Location", a.cfg.SiteBaseURL+"/media/"+record.HexDigest)
	c.Status(http.StatusCreated)
}

// HandleMediaFetch 按摘要返回媒体字节。
func (a *API) HandleMediaFetch(c *gin.Context) {
	digest := c.Param("digest")

	data, contentType, err := a.media.Fetch(digest)
	if err != nil {
		if errors.Is(err, service.ErrMediaNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to fetch media")
		return
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Data(http.StatusOK, contentType, data)
}
