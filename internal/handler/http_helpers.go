package handler

import (
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// requireToken 校验请求携带的令牌，并确认被授权身份与本站一致。
// 失败时已写出响应，调用方直接返回即可。
func (a *API) requireToken(c *gin.Context) (bool, string) {
	authorization := c.GetHeader("Authorization")
	if authorization == "" {
		// 部分客户端通过表单字段传递令牌
		authorization = strings.TrimSpace(c.PostForm("access_token"))
		if authorization != "" && !strings.HasPrefix(authorization, "Bearer ") {
			authorization = "Bearer " + authorization
		}
	}

	info, err := a.auth.Verify(c.Request.Context(), authorization)
	if err != nil {
		log.Printf("micropub: token verification failed: %v", err)
		respondError(c, http.StatusForbidden, "not authorized")
		return false, ""
	}

	if info.Me != a.cfg.HostWebsite {
		log.Printf("micropub: token me %q does not match host website", info.Me)
		respondError(c, http.StatusForbidden, "not authorized")
		return false, ""
	}

	return true, info.ClientID
}

// readBody 读取请求体，超出配置上限时返回 false 并写出 413。
func (a *API) readBody(c *gin.Context) ([]byte, bool) {
	limit := a.cfg.MaxUploadBytes
	if limit <= 0 {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			respondError(c, http.StatusBadRequest, "failed to read request body")
			return nil, false
		}
		return body, true
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, limit+1))
	if err != nil {
		respondError(c, http.StatusBadRequest, "failed to read request body")
		return nil, false
	}
	if int64(len(body)) > limit {
		respondError(c, http.StatusRequestEntityTooLarge, "payload too large")
		return nil, false
	}
	return body, true
}

// slugFromURL 把文章 URL 还原为 slug。容忍绝对 URL 与纯路径两种形式。
func (a *API) slugFromURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if parsed, err := url.Parse(trimmed); err == nil && parsed.Path != "" {
		trimmed = parsed.Path
	}
	return strings.Trim(trimmed, "/")
}
