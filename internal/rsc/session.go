package rsc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Session 保存访问 RSC 实例所需的连接上下文，构建后不再修改，
// 由调用方显式传入每个操作。
type Session struct {
	BaseURL     string
	Instance    string
	TokenSource TokenSource
	HTTPClient  *http.Client
}

// SessionConfig 配置 Session。
type SessionConfig struct {
	URL          string
	TokenSource  TokenSource
	Timeout      time.Duration
	CustomClient *http.Client
}

// NewSession 根据配置创建 Session。URL 形如 https://<instance>.my.rubrik.com。
func NewSession(cfg SessionConfig) (*Session, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if base == "" {
		return nil, errors.New("rsc url 不能为空")
	}
	client := cfg.CustomClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	instance := base
	instance = strings.TrimPrefix(instance, "https://")
	instance = strings.TrimPrefix(instance, "http://")
	if idx := strings.Index(instance, "/"); idx >= 0 {
		instance = instance[:idx]
	}
	return &Session{
		BaseURL:     base,
		Instance:    instance,
		TokenSource: cfg.TokenSource,
		HTTPClient:  client,
	}, nil
}

// GraphQLEndpoint 返回 GraphQL 接口地址。
func (s *Session) GraphQLEndpoint() string {
	return s.BaseURL + "/api/graphql"
}

// ObjectURL 拼出对象在 RSC 界面中的跳转地址，供报表超链接使用。
func (s *Session) ObjectURL(kind, id string) string {
	return fmt.Sprintf("%s/%s/%s", s.BaseURL, kind, id)
}

// TokenSource 用于提供调用 RSC 接口所需的 Token。
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenSource 返回固定 Token，适用于测试或简易场景。
type StaticTokenSource struct {
	Value string
}

// Token 返回固定值。
func (s *StaticTokenSource) Token(context.Context) (string, error) {
	return s.Value, nil
}

// ServiceAccountTokenSource 通过服务账号 client_id/client_secret 换取
// 访问 Token，并带简单缓存。
type ServiceAccountTokenSource struct {
	endpoint     string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// ServiceAccountConfig 配置基于服务账号的 TokenSource。
type ServiceAccountConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
	HTTPClient   *http.Client
}

// NewServiceAccountTokenSource 创建一个 ServiceAccountTokenSource。
func NewServiceAccountTokenSource(cfg ServiceAccountConfig) (*ServiceAccountTokenSource, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("token endpoint 不能为空")
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("client_id 和 client_secret 不能为空")
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &ServiceAccountTokenSource{
		endpoint:     cfg.Endpoint,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient:   client,
	}, nil
}

// Token 实现 TokenSource 接口，必要时刷新 Token。
func (s *ServiceAccountTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != "" && time.Until(s.expiry) > 30*time.Second {
		return s.token, nil
	}
	return s.refresh(ctx)
}

func (s *ServiceAccountTokenSource) refresh(ctx context.Context) (string, error) {
	body := map[string]string{
		"client_id":     s.clientID,
		"client_secret": s.clientSecret,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("编码 token 请求失败: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("构建 token 请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("获取 token 失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token 接口返回状态码 %d", resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("解析 token 响应失败: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", errors.New("token 响应中缺少 access_token")
	}
	expires := time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	if tokenResp.ExpiresIn == 0 {
		expires = time.Now().Add(30 * time.Minute)
	}
	s.token = tokenResp.AccessToken
	s.expiry = expires
	return s.token, nil
}
