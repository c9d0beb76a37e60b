package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Error 归一化的请求错误。Status 为0表示传输层失败（网络错误），
// 非0是后端返回的HTTP状态码。
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("network error: %s", e.Message)
	}
	return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
}

// IsNetwork 是否是传输层失败。
func (e *Error) IsNetwork() bool {
	return e.Status == 0
}

// TokenProvider 每次请求时取当前的bearer token，空串表示未登录。
type TokenProvider func() string

// Client 后端API客户端。各资源方法在同包的其他文件里，
// 一个后端资源一个文件。
type Client struct {
	baseURL  string
	http     *http.Client
	token    TokenProvider
	clientID string
}

// NewClient 创建API客户端。token 可以为nil（匿名访问）。
func NewClient(baseURL string, timeout time.Duration, token TokenProvider) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: timeout,
		},
		token:    token,
		clientID: uuid.NewString(),
	}
}

// do 发起一次请求并把2xx响应体解析进 out（out 为nil时丢弃响应体）。
// 失败统一归一化为 *Error。
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	req.Header.Set("X-Client-ID", c.clientID)
	if c.token != nil {
		if t := c.token(); t != "" {
			req.Header.Set("Authorization", "Bearer "+t)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Status: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Status: 0, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{Status: resp.StatusCode, Message: errorMessage(raw, resp.StatusCode)}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Status: resp.StatusCode, Message: fmt.Sprintf("decode response: %v", err)}
	}
	return nil
}

// errorMessage 从错误响应体里提取 message/error 字段。
func errorMessage(raw []byte, status int) string {
	var body struct {
		Message string `json:"message"`
		Err     string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Err != "" {
			return body.Err
		}
	}
	return fmt.Sprintf("HTTP %d", status)
}

// isNotFound 对列表/删除接口404按"空结果"处理，跟旧客户端保持一致。
func isNotFound(err error) bool {
	apiErr, ok := err.(*Error)
	return ok && apiErr.Status == http.StatusNotFound
}

// envelope 兼容三种响应包装：{items:[...]}、{data:[...]}、裸数组。
type envelope struct {
	Items json.RawMessage `json:"items"`
	Data  json.RawMessage `json:"data"`
}

// unwrapList 把任意一种包装形态展开成元素列表。
func unwrapList(raw json.RawMessage) []json.RawMessage {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		return items
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil
	}
	for _, inner := range []json.RawMessage{env.Items, env.Data} {
		if len(inner) == 0 {
			continue
		}
		if err := json.Unmarshal(inner, &items); err == nil {
			return items
		}
	}
	return nil
}

// unwrapObject 展开 {data:{...}} 包装，没有包装时原样返回。
func unwrapObject(raw json.RawMessage) json.RawMessage {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Data) > 0 && env.Data[0] == '{' {
		return env.Data
	}
	return raw
}
