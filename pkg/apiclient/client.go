// Package apiclient porest REST 接口客户端。
//
// 失败分两类：网络或 HTTP 层失败返回包装了 errors.ErrRequestFailed 的错误；
// 拿到了响应信封但 code != 200 时返回 *errors.AppError（即使 HTTP 状态为 200）。
// 不做自动重试。
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "porest/backend/pkg/errors"
	"porest/backend/pkg/response"
)

// Client REST 客户端
type Client struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
}

// Option 客户端选项
type Option func(*Client)

// WithHTTPClient 替换底层 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken 设置 Bearer token
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

// New 创建客户端，baseURL 形如 http://localhost:8080/api/v1
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("无效的 base url: %q", baseURL)
	}
	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// envelope 与 pkg/response.Response 对应，Data 延迟解码
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Count   *int64          `json:"count,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Do 发送 JSON 请求并把信封 data 解码进 out（out 可为 nil），返回信封中的 count（若有）
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) (*int64, error) {
	raw, _, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: 响应不是合法信封: %v", apperrors.ErrRequestFailed, err)
	}
	if env.Code != response.CodeSuccess {
		return nil, &apperrors.AppError{Code: env.Code, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("%w: 解码 data: %v", apperrors.ErrRequestFailed, err)
		}
	}
	return env.Count, nil
}

// Get GET 请求
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) (*int64, error) {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

// Post POST 请求
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	_, err := c.Do(ctx, http.MethodPost, path, nil, body, out)
	return err
}

// Download 下载二进制内容（如 xlsx 导出）。服务端以信封返回错误时同样解析为 *AppError
func (c *Client) Download(ctx context.Context, path string, query url.Values) ([]byte, string, error) {
	raw, contentType, err := c.send(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, "", err
	}
	if strings.HasPrefix(contentType, "application/json") {
		var env envelope
		if err := json.Unmarshal(raw, &env); err == nil && env.Code != response.CodeSuccess {
			return nil, "", &apperrors.AppError{Code: env.Code, Message: env.Message}
		}
	}
	return raw, contentType, nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, reqBody any) ([]byte, string, error) {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return nil, "", fmt.Errorf("序列化请求: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", apperrors.ErrRequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", apperrors.ErrRequestFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: 读取响应: %v", apperrors.ErrRequestFailed, err)
	}
	contentType := resp.Header.Get("Content-Type")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// 错误响应若带信封则按业务错误返回
		var env envelope
		if err := json.Unmarshal(raw, &env); err == nil && env.Code != 0 {
			return nil, contentType, &apperrors.AppError{Code: env.Code, Message: env.Message}
		}
		return nil, contentType, fmt.Errorf("%w: http status=%d", apperrors.ErrRequestFailed, resp.StatusCode)
	}
	return raw, contentType, nil
}
