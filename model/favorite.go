package model

import (
	"encoding/json"
	"fmt"
)

// MaxComboSize 白噪音组合最多包含的音频数量。
const MaxComboSize = 3

// FavoriteEntry 收藏集中的一个条目。
// ID 是音频ID，FavID 是服务端收藏记录ID（join record），两者不同：
// 部分后端的取消收藏接口要求记录ID而不是音频ID。FavID 在创建响应
// 或后续的对账拉取中惰性补全，0 表示尚未获知。
type FavoriteEntry struct {
	ID     int64  `json:"id"`
	FavID  int64  `json:"favId,omitempty"`
	Title  string `json:"title,omitempty"`
	Cover  string `json:"cover,omitempty"`
	Author string `json:"author,omitempty"`
	Ts     int64  `json:"ts"`
}

// ComboFavorite 收藏的白噪音组合：最多三个音频ID加自定义名称。
// SelectedAudioIDs 是 AudioIDs 的子集，表示当前实际播放的音频。
type ComboFavorite struct {
	ID               string  `json:"id"`
	AudioIDs         []int64 `json:"audioIds"`
	SelectedAudioIDs []int64 `json:"selectedAudioIds,omitempty"`
	Name             string  `json:"name"`
	Ts               int64   `json:"ts"`
}

// ComboHistoryEntry 白噪音组合的一次播放记录。
type ComboHistoryEntry struct {
	ID       string  `json:"id"`
	AudioIDs []int64 `json:"audioIds"`
	PlayedID int64   `json:"playedId,omitempty"`
	Mode     string  `json:"mode"`
	Name     string  `json:"name"`
	Ts       int64   `json:"ts"`
}

// NormalizeFavorite 将服务端收藏条目归一化为 FavoriteEntry。
// 条目可能是裸的音频ID，也可能是携带若干别名字段的对象。
// 无法解析出音频ID时返回 false。
func NormalizeFavorite(raw json.RawMessage, now int64) (FavoriteEntry, bool) {
	// 裸数字：只有音频ID
	if n, ok := asInt64(raw); ok && string(raw) != "" && raw[0] != '{' {
		if n < 0 {
			return FavoriteEntry{}, false
		}
		return FavoriteEntry{ID: n, Ts: now}, true
	}

	obj, ok := parseObject(raw)
	if !ok {
		return FavoriteEntry{}, false
	}

	var audioID int64
	fromAlias := false
	if v, ok := obj.pick("audio_id", "audioId", "item_id", "itemId"); ok {
		if n, ok := asInt64(v); ok {
			audioID = n
			fromAlias = true
		}
	}
	if !fromAlias {
		if v, ok := obj.pick("id"); ok {
			n, ok := asInt64(v)
			if !ok {
				return FavoriteEntry{}, false
			}
			audioID = n
		} else {
			return FavoriteEntry{}, false
		}
	}
	if audioID < 0 {
		return FavoriteEntry{}, false
	}

	entry := FavoriteEntry{
		ID:     audioID,
		Title:  obj.stringOr("", "title", "name"),
		Cover:  obj.stringOr("", "cover", "cover_url", "coverUrl"),
		Author: obj.stringOr("", "author", "artist"),
		Ts:     obj.int64Or(now, "ts", "created_at", "createdAt"),
	}

	entry.FavID = obj.int64Or(0, "favorite_id", "favoriteId", "fav_id")
	// 音频ID来自别名字段时，顶层 id 是收藏记录ID
	if entry.FavID == 0 && fromAlias {
		if n := obj.int64Or(0, "id"); n != 0 && n != audioID {
			entry.FavID = n
		}
	}
	return entry, true
}

// NormalizeCombo 归一化一条组合收藏。idx 用于缺失ID时的兜底编号。
// 音频ID列表为空时整条丢弃。
func NormalizeCombo(raw json.RawMessage, idx int, now int64) (ComboFavorite, bool) {
	obj, ok := parseObject(raw)
	if !ok {
		return ComboFavorite{}, false
	}

	ids := comboIDs(obj, "audio_ids", "audios", "ids")
	if len(ids) == 0 {
		return ComboFavorite{}, false
	}

	combo := ComboFavorite{
		ID:       obj.stringOr(fmt.Sprintf("combo-%d", idx), "id", "favorite_id", "favoriteId"),
		AudioIDs: ids,
		Name:     obj.stringOr("白噪音组合", "custom_name", "customName", "name", "title"),
		Ts:       obj.int64Or(now, "ts", "created_at", "createdAt"),
	}

	// 选中集必须是组合的子集，越界的ID直接丢弃
	if v, ok := obj.pick("selected_audio_ids", "selectedAudioIds", "selected"); ok {
		for _, id := range asInt64Slice(v) {
			if containsID(combo.AudioIDs, id) {
				combo.SelectedAudioIDs = append(combo.SelectedAudioIDs, id)
			}
		}
	}
	return combo, true
}

// NormalizeComboHistory 归一化一条组合播放历史。
func NormalizeComboHistory(raw json.RawMessage, idx int, now int64) (ComboHistoryEntry, bool) {
	obj, ok := parseObject(raw)
	if !ok {
		return ComboHistoryEntry{}, false
	}
	entry := ComboHistoryEntry{
		ID:       obj.stringOr(fmt.Sprintf("combo-%d", idx), "id", "history_id", "historyId"),
		AudioIDs: comboIDs(obj, "audio_ids", "audios", "ids"),
		PlayedID: obj.int64Or(0, "played_id", "playedId"),
		Mode:     obj.stringOr("mix", "mode"),
		Name:     obj.stringOr("白噪音组合", "name", "title"),
		Ts:       obj.int64Or(now, "created_at", "play_time", "ts"),
	}
	return entry, true
}

// comboIDs 取组合的音频ID列表：过滤非正数并截断到组合上限。
func comboIDs(obj rawObject, keys ...string) []int64 {
	v, ok := obj.pick(keys...)
	if !ok {
		return nil
	}
	ids := make([]int64, 0, MaxComboSize)
	for _, id := range asInt64Slice(v) {
		if id <= 0 {
			continue
		}
		ids = append(ids, id)
		if len(ids) == MaxComboSize {
			break
		}
	}
	return ids
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
