package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"SleepFM/model"
)

// AddPlayHistory 上报一条播放记录。
func (c *Client) AddPlayHistory(ctx context.Context, audioID int64, durationMs int64) error {
	payload := map[string]any{
		"audio_id":      audioID,
		"play_duration": durationMs / 1000,
	}
	return c.do(ctx, http.MethodPost, "/api/play-history", payload, nil)
}

// IncrementPlay 累加服务端播放计数。
func (c *Client) IncrementPlay(ctx context.Context, audioID int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/audios/%d/play", audioID), nil, nil)
}

// GetAudio 按后端音频ID取单条音频，用于补全展示字段。
func (c *Client) GetAudio(ctx context.Context, audioID int64) (model.Track, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/audios/%d", audioID), nil, &raw); err != nil {
		return model.Track{}, err
	}

	var body struct {
		Title    string `json:"title"`
		Name     string `json:"name"`
		Cover    string `json:"cover"`
		CoverURL string `json:"cover_url"`
		Author   string `json:"author"`
		Artist   string `json:"artist"`
	}
	if err := json.Unmarshal(unwrapObject(raw), &body); err != nil {
		return model.Track{}, &Error{Status: http.StatusOK, Message: fmt.Sprintf("decode audio: %v", err)}
	}

	track := model.Track{
		ID:     strconv.FormatInt(audioID, 10),
		MetaID: strconv.FormatInt(audioID, 10),
		Title:  body.Title,
		Cover:  body.Cover,
		Author: body.Author,
	}
	if track.Title == "" {
		track.Title = body.Name
	}
	if track.Cover == "" {
		track.Cover = body.CoverURL
	}
	if track.Author == "" {
		track.Author = body.Artist
	}
	return track, nil
}
