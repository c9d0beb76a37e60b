package model

import "strconv"

// Track 表示一个可播放的音频条目。
// ID 是客户端/展示用标识，MetaID 是后端权威的数字音频ID（可能缺失，
// 本地添加的未注册音频没有 MetaID，无法在服务端收藏或记录播放）。
type Track struct {
	ID         string `json:"id"`
	MetaID     string `json:"metaId,omitempty"`
	Title      string `json:"title"`
	Cover      string `json:"cover,omitempty"`
	Author     string `json:"author,omitempty"`
	DurationMs int64  `json:"durationMs,omitempty"`
}

// AudioID 解析后端音频ID。MetaID 缺失或不是纯数字非负整数时返回 false。
// 所有需要服务端持久化的操作必须使用该ID，而不是展示用 ID。
func (t Track) AudioID() (int64, bool) {
	if t.MetaID == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(t.MetaID, 10, 64)
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}

// HistoryEntry 播放历史中的一条记录。
type HistoryEntry struct {
	Track
	Ts int64 `json:"ts"`
}
