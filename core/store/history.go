package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"SleepFM/logger"
	"SleepFM/model"
	"SleepFM/storage"
)

// maxHistoryEntries 本地播放历史的上限，多出的从尾部截掉。
const maxHistoryEntries = 50

// comboHistoryFetchLimit 一次拉取的组合播放历史条数。
const comboHistoryFetchLimit = 100

// comboHistoryKey 组合播放历史的独立镜像快照，给只关心组合历史的
// 读方用，写失败不影响主快照。
const comboHistoryKey = "comboHistoryItems"

// HistoryStore 播放历史：有界、按最近优先排序、按ID去重的本地日志，
// 外加一份服务端权威的组合播放历史只读缓存。
type HistoryStore struct {
	mu         sync.Mutex
	identity   Identity
	backend    HistoryBackend
	store      storage.Store
	items      []model.HistoryEntry
	comboItems []model.ComboHistoryEntry
	nowFn      func() time.Time
}

type historySnapshot struct {
	Items      []model.HistoryEntry      `json:"items"`
	ComboItems []model.ComboHistoryEntry `json:"comboItems,omitempty"`
}

// NewHistory 创建历史容器。
func NewHistory(identity Identity, backend HistoryBackend, store storage.Store) *HistoryStore {
	return &HistoryStore{
		identity: identity,
		backend:  backend,
		store:    store,
		nowFn:    time.Now,
	}
}

// Load 从本地存储恢复快照，失败保持空状态。
func (s *HistoryStore) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var snap historySnapshot
	if found, err := s.store.Get(historyKey, &snap); err == nil && found {
		s.items = snap.Items
		s.comboItems = snap.ComboItems
	}
}

func (s *HistoryStore) persistLocked() {
	snap := historySnapshot{Items: s.items, ComboItems: s.comboItems}
	if err := s.store.Set(historyKey, snap); err != nil {
		logger.Warn("持久化播放历史失败", logger.ErrorField(err))
	}
}

// Items 返回本地播放历史的副本，最近的在前。
func (s *HistoryStore) Items() []model.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.HistoryEntry(nil), s.items...)
}

// ComboItems 返回组合播放历史缓存的副本。
func (s *HistoryStore) ComboItems() []model.ComboHistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ComboHistoryEntry(nil), s.comboItems...)
}

// Add 记录一次播放。无条件执行：不鉴权、不发网络请求。
// 同ID旧记录先移除再插到最前，超过上限从尾部截断。
func (s *HistoryStore) Add(track model.Track) {
	if track.ID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.items {
		if e.ID == track.ID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	entry := model.HistoryEntry{Track: track, Ts: s.nowFn().UnixMilli()}
	s.items = append([]model.HistoryEntry{entry}, s.items...)
	if len(s.items) > maxHistoryEntries {
		s.items = s.items[:maxHistoryEntries]
	}
	s.persistLocked()
}

// Clear 清空本地历史并删除快照。组合历史缓存一并清掉。
func (s *HistoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.comboItems = nil
	if err := s.store.Delete(historyKey); err != nil {
		logger.Warn("删除历史快照失败", logger.ErrorField(err))
	}
	if err := s.store.Delete(comboHistoryKey); err != nil {
		logger.Warn("删除组合历史镜像失败", logger.ErrorField(err))
	}
}

// SyncWhiteNoiseHistory 刷新组合播放历史。服务端是权威，整体替换
// 而不是合并。和其他同步不同，这里的失败要交还调用方。
func (s *HistoryStore) SyncWhiteNoiseHistory(ctx context.Context) error {
	if !s.identity.Status().IsAuthenticated {
		return nil
	}
	entries, err := s.backend.ComboHistory(ctx, 0, comboHistoryFetchLimit)
	if err != nil {
		return fmt.Errorf("sync white-noise history: %w", err)
	}
	s.mu.Lock()
	s.comboItems = entries
	s.persistLocked()
	if err := s.store.Set(comboHistoryKey, entries); err != nil {
		logger.Debug("镜像组合历史快照失败", logger.ErrorField(err))
	}
	s.mu.Unlock()
	return nil
}
