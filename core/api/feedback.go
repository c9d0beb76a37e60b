package api

import (
	"context"
	"net/http"
)

// SubmitFeedback 提交一条起床反馈。调用方负责失败后的本地兜底。
func (c *Client) SubmitFeedback(ctx context.Context, payload map[string]any) error {
	return c.do(ctx, http.MethodPost, "/api/feedback", payload, nil)
}
