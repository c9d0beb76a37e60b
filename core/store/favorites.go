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

// FavoritesStore 收藏集：音频收藏加白噪音组合收藏。
// 服务端是编辑面，变更失败必须回滚并把错误交还调用方，
// 不允许本地和服务端悄悄分叉。
type FavoritesStore struct {
	mu       sync.Mutex
	identity Identity
	backend  FavoritesBackend
	store    storage.Store
	items    []model.FavoriteEntry
	combos   []model.ComboFavorite
	nowFn    func() time.Time
}

type favoritesSnapshot struct {
	Items  []model.FavoriteEntry `json:"items"`
	Combos []model.ComboFavorite `json:"combos,omitempty"`
}

// NewFavorites 创建收藏容器。
func NewFavorites(identity Identity, backend FavoritesBackend, store storage.Store) *FavoritesStore {
	return &FavoritesStore{
		identity: identity,
		backend:  backend,
		store:    store,
		nowFn:    time.Now,
	}
}

// Load 从本地存储恢复快照。读取失败保持空状态，不报错。
func (s *FavoritesStore) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var snap favoritesSnapshot
	if found, err := s.store.Get(favoritesKey, &snap); err == nil && found {
		s.items = snap.Items
		s.combos = snap.Combos
	}
}

// persistLocked 整体写回快照。持久化失败只记日志，内存状态为准。
func (s *FavoritesStore) persistLocked() {
	snap := favoritesSnapshot{Items: s.items, Combos: s.combos}
	if err := s.store.Set(favoritesKey, snap); err != nil {
		logger.Warn("持久化收藏快照失败", logger.ErrorField(err))
	}
}

// Items 返回收藏列表的副本。
func (s *FavoritesStore) Items() []model.FavoriteEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.FavoriteEntry(nil), s.items...)
}

// Combos 返回组合收藏列表的副本。
func (s *FavoritesStore) Combos() []model.ComboFavorite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ComboFavorite(nil), s.combos...)
}

// Has 是否已收藏该音频。
func (s *FavoritesStore) Has(audioID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOfLocked(audioID) >= 0
}

func (s *FavoritesStore) indexOfLocked(audioID int64) int {
	for i, e := range s.items {
		if e.ID == audioID {
			return i
		}
	}
	return -1
}

// Add 收藏一个条目。本地先插到最前，服务端创建失败则回滚并返回错误。
// 创建响应不带收藏记录ID时，做一次对账拉取惰性补全（补不全不影响收藏本身）。
func (s *FavoritesStore) Add(ctx context.Context, item model.Track) error {
	audioID, ok := item.AudioID()
	if !ok {
		return fmt.Errorf("add favorite %q: %w", item.ID, ErrUnsupportedItem)
	}
	if err := requireUser(s.identity); err != nil {
		return err
	}

	s.mu.Lock()
	if s.indexOfLocked(audioID) >= 0 {
		s.mu.Unlock()
		return nil
	}
	entry := model.FavoriteEntry{
		ID:     audioID,
		Title:  item.Title,
		Cover:  item.Cover,
		Author: item.Author,
		Ts:     s.nowFn().UnixMilli(),
	}
	s.mu.Unlock()

	return runOptimistic(
		func() {
			s.mu.Lock()
			s.items = append([]model.FavoriteEntry{entry}, s.items...)
			s.persistLocked()
			s.mu.Unlock()
		},
		func() error {
			created, err := s.backend.CreateFavorite(ctx, audioID)
			if err != nil {
				return err
			}
			s.adoptFavID(ctx, audioID, created.FavID)
			return nil
		},
		func() {
			s.mu.Lock()
			if i := s.indexOfLocked(audioID); i >= 0 {
				s.items = append(s.items[:i], s.items[i+1:]...)
			}
			s.persistLocked()
			s.mu.Unlock()
		},
	)
}

// adoptFavID 把收藏记录ID写进本地条目。favID为0时拉一次收藏列表
// 找对应记录，这一步尽力而为，失败不影响已经成功的收藏。
func (s *FavoritesStore) adoptFavID(ctx context.Context, audioID, favID int64) {
	if favID == 0 {
		remote, err := s.backend.ListFavorites(ctx)
		if err != nil {
			logger.Debug("拉取收藏列表补全记录ID失败", logger.Int64("audioId", audioID), logger.ErrorField(err))
			return
		}
		for _, e := range remote {
			if e.ID == audioID {
				favID = e.FavID
				break
			}
		}
		if favID == 0 {
			return
		}
	}
	s.mu.Lock()
	if i := s.indexOfLocked(audioID); i >= 0 {
		s.items[i].FavID = favID
		s.persistLocked()
	}
	s.mu.Unlock()
}

// Remove 取消收藏。优先用收藏记录ID删，记录ID未知时退回音频ID。
// 服务端失败时原样恢复被删条目并返回错误。
func (s *FavoritesStore) Remove(ctx context.Context, audioID int64) error {
	if err := requireUser(s.identity); err != nil {
		return err
	}

	s.mu.Lock()
	i := s.indexOfLocked(audioID)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	removed := s.items[i]
	s.mu.Unlock()

	deleteID := removed.ID
	if removed.FavID != 0 {
		deleteID = removed.FavID
	}

	return runOptimistic(
		func() {
			s.mu.Lock()
			if i := s.indexOfLocked(audioID); i >= 0 {
				s.items = append(s.items[:i], s.items[i+1:]...)
			}
			s.persistLocked()
			s.mu.Unlock()
		},
		func() error {
			return s.backend.DeleteFavorite(ctx, deleteID)
		},
		func() {
			s.mu.Lock()
			s.items = append([]model.FavoriteEntry{removed}, s.items...)
			s.persistLocked()
			s.mu.Unlock()
		},
	)
}

// Toggle 已收藏则取消，未收藏则收藏。
func (s *FavoritesStore) Toggle(ctx context.Context, item model.Track) error {
	if audioID, ok := item.AudioID(); ok && s.Has(audioID) {
		return s.Remove(ctx, audioID)
	}
	return s.Add(ctx, item)
}

// SyncFromServer 与服务端对账。未登录时不动。合并而不是覆盖：
// 本地已有条目的展示字段优先，远端只填空白；本地没有的条目插入。
// 合并后对缺标题的条目做一轮并发补全，单条失败互不影响。
// 拉取失败只记日志，保留本地状态。
func (s *FavoritesStore) SyncFromServer(ctx context.Context) {
	if !s.identity.Status().IsAuthenticated {
		return
	}
	remote, err := s.backend.ListFavorites(ctx)
	if err != nil {
		logger.Warn("同步收藏失败", logger.ErrorField(err))
		return
	}

	s.mu.Lock()
	for _, r := range remote {
		i := s.indexOfLocked(r.ID)
		if i < 0 {
			s.items = append(s.items, r)
			continue
		}
		local := &s.items[i]
		if local.FavID == 0 {
			local.FavID = r.FavID
		}
		if local.Title == "" {
			local.Title = r.Title
		}
		if local.Cover == "" {
			local.Cover = r.Cover
		}
		if local.Author == "" {
			local.Author = r.Author
		}
	}
	s.persistLocked()
	missing := make([]int64, 0)
	for _, e := range s.items {
		if e.Title == "" {
			missing = append(missing, e.ID)
		}
	}
	s.mu.Unlock()

	s.resolveTitles(ctx, missing)
}

// resolveTitles 并发补全展示字段。等待所有请求结束，失败的单条跳过。
func (s *FavoritesStore) resolveTitles(ctx context.Context, ids []int64) {
	if len(ids) == 0 {
		return
	}
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(audioID int64) {
			defer wg.Done()
			track, err := s.backend.GetAudio(ctx, audioID)
			if err != nil {
				logger.Debug("补全音频信息失败", logger.Int64("audioId", audioID), logger.ErrorField(err))
				return
			}
			s.mu.Lock()
			if i := s.indexOfLocked(audioID); i >= 0 {
				if s.items[i].Title == "" {
					s.items[i].Title = track.Title
				}
				if s.items[i].Cover == "" {
					s.items[i].Cover = track.Cover
				}
				if s.items[i].Author == "" {
					s.items[i].Author = track.Author
				}
			}
			s.mu.Unlock()
		}(id)
	}
	wg.Wait()

	s.mu.Lock()
	s.persistLocked()
	s.mu.Unlock()
}

// SyncWhiteNoiseCombos 刷新组合收藏。只读缓存面：失败记日志，
// 保留上一次的结果。
func (s *FavoritesStore) SyncWhiteNoiseCombos(ctx context.Context) {
	if !s.identity.Status().IsAuthenticated {
		return
	}
	combos, err := s.backend.ComboFavorites(ctx)
	if err != nil {
		logger.Warn("同步组合收藏失败", logger.ErrorField(err))
		return
	}
	s.mu.Lock()
	s.combos = combos
	s.persistLocked()
	s.mu.Unlock()
}

// ToggleCombo 收藏/取消收藏一个白噪音组合，随后尽力刷新组合列表。
func (s *FavoritesStore) ToggleCombo(ctx context.Context, combo model.ComboFavorite) error {
	if err := requireUser(s.identity); err != nil {
		return err
	}
	if len(combo.AudioIDs) == 0 || len(combo.AudioIDs) > model.MaxComboSize {
		return fmt.Errorf("toggle combo: %w", ErrUnsupportedItem)
	}
	if err := s.backend.ToggleComboFavorite(ctx, combo); err != nil {
		return err
	}
	s.SyncWhiteNoiseCombos(ctx)
	return nil
}

// Clear 清空收藏并删除本地快照。
func (s *FavoritesStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.combos = nil
	if err := s.store.Delete(favoritesKey); err != nil {
		logger.Warn("删除收藏快照失败", logger.ErrorField(err))
	}
}
