package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"SleepFM/model"
)

// ListFavorites 拉取完整的收藏列表。404按空列表处理。
func (c *Client) ListFavorites(ctx context.Context) ([]model.FavoriteEntry, error) {
	var raw json.RawMessage
	err := c.do(ctx, http.MethodGet, "/api/favorites?offset=0&limit=200", nil, &raw)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	now := time.Now().UnixMilli()
	items := unwrapList(raw)
	entries := make([]model.FavoriteEntry, 0, len(items))
	for _, item := range items {
		if entry, ok := model.NormalizeFavorite(item, now); ok {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// CreateFavorite 创建一条收藏。响应里带收藏记录ID时随结果返回，
// 不带时 FavID 为0，由调用方自行对账补全。
func (c *Client) CreateFavorite(ctx context.Context, audioID int64) (model.FavoriteEntry, error) {
	payload := map[string]any{"audio_id": audioID}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/api/favorites", payload, &raw); err != nil {
		return model.FavoriteEntry{}, err
	}
	if entry, ok := model.NormalizeFavorite(unwrapObject(raw), time.Now().UnixMilli()); ok && entry.ID == audioID {
		return entry, nil
	}
	return model.FavoriteEntry{ID: audioID}, nil
}

// DeleteFavorite 删除收藏。id 优先传收藏记录ID，记录ID未知时
// 退回用音频ID（部分后端接受，不保证）。404按已删除处理。
func (c *Client) DeleteFavorite(ctx context.Context, id int64) error {
	err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/favorites/%d", id), nil, nil)
	if err != nil && !isNotFound(err) {
		return err
	}
	return nil
}
