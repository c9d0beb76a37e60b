package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"SleepFM/model"
)

// RecordComboPlay 上报一次白噪音组合播放。
// ids 最多三个正数音频ID，playedID 为0时不上报该字段。
func (c *Client) RecordComboPlay(ctx context.Context, ids []int64, mode string, playedID int64) error {
	clean := cleanComboIDs(ids)
	if len(clean) == 0 {
		return fmt.Errorf("combo play needs at least one audio id")
	}
	if mode == "" {
		mode = "mix"
	}
	payload := map[string]any{
		"audio_ids": clean,
		"mode":      mode,
	}
	if playedID > 0 {
		payload["played_id"] = playedID
	}
	return c.do(ctx, http.MethodPost, "/api/audios/white-noise/record-play", payload, nil)
}

// ComboHistory 拉取组合播放历史。
func (c *Client) ComboHistory(ctx context.Context, offset, limit int) ([]model.ComboHistoryEntry, error) {
	path := fmt.Sprintf("/api/audios/white-noise/history?offset=%d&limit=%d", offset, limit)
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	now := time.Now().UnixMilli()
	items := unwrapList(raw)
	entries := make([]model.ComboHistoryEntry, 0, len(items))
	for idx, item := range items {
		if entry, ok := model.NormalizeComboHistory(item, idx, now); ok {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// ComboFavorites 拉取收藏的白噪音组合。
func (c *Client) ComboFavorites(ctx context.Context) ([]model.ComboFavorite, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/audios/white-noise/favorites", nil, &raw); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	now := time.Now().UnixMilli()
	items := unwrapList(raw)
	combos := make([]model.ComboFavorite, 0, len(items))
	for idx, item := range items {
		if combo, ok := model.NormalizeCombo(item, idx, now); ok {
			combos = append(combos, combo)
		}
	}
	return combos, nil
}

// ToggleComboFavorite 收藏/取消收藏一个组合。后端固定按toggle语义处理。
func (c *Client) ToggleComboFavorite(ctx context.Context, combo model.ComboFavorite) error {
	ids := cleanComboIDs(combo.AudioIDs)
	if len(ids) == 0 {
		return fmt.Errorf("combo favorite needs at least one audio id")
	}
	selected := make([]int64, 0, len(combo.SelectedAudioIDs))
	for _, id := range combo.SelectedAudioIDs {
		if id > 0 && containsInt64(ids, id) {
			selected = append(selected, id)
		}
	}
	payload := map[string]any{
		"audio_ids":          ids,
		"selected_audio_ids": selected,
		"custom_name":        combo.Name,
		"action":             "toggle",
	}
	return c.do(ctx, http.MethodPost, "/api/audios/white-noise/favorite", payload, nil)
}

func cleanComboIDs(ids []int64) []int64 {
	out := make([]int64, 0, model.MaxComboSize)
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		out = append(out, id)
		if len(out) == model.MaxComboSize {
			break
		}
	}
	return out
}

func containsInt64(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
