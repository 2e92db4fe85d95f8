package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrNotAuthorized 表示凭证缺失、无效或无法验证。
var ErrNotAuthorized = errors.New("not authorized")

// verifyTimeout 约束对外部令牌端点的单次调用时长。
const verifyTimeout = 10 * time.Second

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenInfo 是令牌端点对一个有效令牌的描述。
type TokenInfo struct {
	Me       string `json:"me"`
	ClientID string `json:"client_id"`
	Scope    string `json:"scope"`
	IssuedAt int64  `json:"issued_at"`
	Nonce    int64  `json:"nonce"`
}

// Scopes 返回令牌授予的权限列表。
func (t *TokenInfo) Scopes() []string {
	if strings.TrimSpace(t.Scope) == "" {
		return nil
	}
	return strings.Fields(t.Scope)
}

// AuthService 将 Authorization 头转发给外部 IndieAuth 令牌端点做校验。
// 这是核心中唯一的出站网络调用，任何非成功结果都归一化为 ErrNotAuthorized。
type AuthService struct {
	endpoint string
	http     httpDoer
}

// NewAuthService creates an AuthService querying the given token endpoint.
func NewAuthService(endpoint string) *AuthService {
	return &AuthService{
		endpoint: strings.TrimSpace(endpoint),
		http:     &http.Client{Timeout: verifyTimeout},
	}
}

// SetHTTPClient 替换底层 HTTP 客户端，供测试注入。
func (s *AuthService) SetHTTPClient(client httpDoer) {
	if client == nil {
		s.http = &http.Client{Timeout: verifyTimeout}
		return
	}
	s.http = client
}

// Verify 校验一个 Authorization 头。成功时返回令牌描述，
// 其中 Me 标识被授权的站点身份。
func (s *AuthService) Verify(ctx context.Context, authorization string) (*TokenInfo, error) {
	if strings.TrimSpace(authorization) == "" {
		return nil, fmt.Errorf("%w: missing authorization header", ErrNotAuthorized)
	}

	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build token request: %v", ErrNotAuthorized, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", authorization)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: token endpoint unreachable: %v", ErrNotAuthorized, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: token endpoint returned %d", ErrNotAuthorized, resp.StatusCode)
	}

	var info TokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: decode token response: %v", ErrNotAuthorized, err)
	}
	if strings.TrimSpace(info.Me) == "" {
		return nil, fmt.Errorf("%w: token response missing me", ErrNotAuthorized)
	}

	return &info, nil
}
