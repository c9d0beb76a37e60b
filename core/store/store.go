// Package store 客户端状态容器：播放器、收藏、历史、闹钟。
// 每个容器独立持久化、独立与服务端对账。变更一律先同步落本地
// （乐观更新），网络调用随后发出；失败时收藏回滚、闹钟保留本地
// 结果，这是两种刻意不同的策略，不要合并。
package store

import (
	"context"
	"errors"

	"SleepFM/core/auth"
	"SleepFM/model"
)

// 错误分类。SERVER_ERROR / NETWORK_ERROR 由 api.Error 承载。
var (
	// ErrNotAuthenticated 需要登录的变更在无token会话下被拒绝。
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrGuestForbidden 游客试图执行需要身份的变更。
	ErrGuestForbidden = errors.New("guest session cannot perform this action")
	// ErrUnsupportedItem 条目缺少可用的后端音频ID，无法在服务端持久化。
	ErrUnsupportedItem = errors.New("item has no backend audio id")
)

// 持久化键，一个容器一个键，整个快照读写。
const (
	favoritesKey = "favoriteItems"
	historyKey   = "historyItems"
	playerKey    = "playerState"
	sleepKey     = "sleepStore"
)

// Identity 身份门。所有需要身份的变更先过这里。
type Identity interface {
	Status() auth.Status
}

// requireUser 收藏类变更的准入检查：游客直接拒绝，
// 无token按未登录拒绝。绝不静默吞掉。
func requireUser(id Identity) error {
	st := id.Status()
	if st.IsGuest {
		return ErrGuestForbidden
	}
	if !st.IsAuthenticated {
		return ErrNotAuthenticated
	}
	return nil
}

// FavoritesBackend 收藏容器依赖的服务端能力。
type FavoritesBackend interface {
	ListFavorites(ctx context.Context) ([]model.FavoriteEntry, error)
	CreateFavorite(ctx context.Context, audioID int64) (model.FavoriteEntry, error)
	DeleteFavorite(ctx context.Context, id int64) error
	GetAudio(ctx context.Context, audioID int64) (model.Track, error)
	ComboFavorites(ctx context.Context) ([]model.ComboFavorite, error)
	ToggleComboFavorite(ctx context.Context, combo model.ComboFavorite) error
}

// HistoryBackend 历史容器依赖的服务端能力。
type HistoryBackend interface {
	ComboHistory(ctx context.Context, offset, limit int) ([]model.ComboHistoryEntry, error)
}

// PlayerBackend 播放器上报用的服务端能力。
type PlayerBackend interface {
	AddPlayHistory(ctx context.Context, audioID int64, durationMs int64) error
	IncrementPlay(ctx context.Context, audioID int64) error
	RecordComboPlay(ctx context.Context, ids []int64, mode string, playedID int64) error
}

// AlarmBackend 闹钟容器依赖的服务端能力。
type AlarmBackend interface {
	ListAlarms(ctx context.Context) ([]model.Alarm, error)
	CreateAlarm(ctx context.Context, a model.Alarm) (string, error)
	UpdateAlarm(ctx context.Context, id string, a model.Alarm) error
	DeleteAlarm(ctx context.Context, id string) error
}
