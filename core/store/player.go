package store

import (
	"context"
	"sync"

	"SleepFM/logger"
	"SleepFM/model"
	"SleepFM/storage"
)

// LoopMode 循环模式状态机：off 顺序播完不回绕，one 单曲循环，
// all 列表循环回绕。
type LoopMode string

const (
	LoopOff LoopMode = "off"
	LoopOne LoopMode = "one"
	LoopAll LoopMode = "all"
)

const defaultVolume = 0.8

// PlayerStore 播放器：当前曲目、播放列表、走带状态和循环模式的
// 唯一事实来源。播放上报是尽力而为的旁路动作，绝不阻塞调用方，
// 失败也绝不让界面看见。
type PlayerStore struct {
	mu       sync.Mutex
	identity Identity
	backend  PlayerBackend
	store    storage.Store

	currentTrack   *model.Track
	isPlaying      bool
	playlist       []model.Track
	positionMs     int64
	durationMs     int64
	volume         float64
	isMuted        bool
	previousVolume float64
	loopMode       LoopMode

	recordWG sync.WaitGroup
}

type playerSnapshot struct {
	CurrentTrack   *model.Track  `json:"currentTrack,omitempty"`
	Playlist       []model.Track `json:"playlist"`
	Volume         float64       `json:"volume"`
	IsMuted        bool          `json:"isMuted"`
	PreviousVolume float64       `json:"previousVolume"`
	LoopMode       LoopMode      `json:"loopMode"`
}

// NewPlayer 创建播放器容器。
func NewPlayer(identity Identity, backend PlayerBackend, store storage.Store) *PlayerStore {
	return &PlayerStore{
		identity:       identity,
		backend:        backend,
		store:          store,
		volume:         defaultVolume,
		previousVolume: defaultVolume,
		loopMode:       LoopAll,
	}
}

// Load 恢复播放列表和音量等快照。走带进度不持久化，从头开始。
func (p *PlayerStore) Load() {
	p.mu.Lock()
	defer p.mu.Unlock()
	var snap playerSnapshot
	found, err := p.store.Get(playerKey, &snap)
	if err != nil || !found {
		return
	}
	p.currentTrack = snap.CurrentTrack
	p.playlist = snap.Playlist
	p.isMuted = snap.IsMuted
	if snap.Volume >= 0 && snap.Volume <= 1 {
		p.volume = snap.Volume
	}
	if snap.PreviousVolume > 0 && snap.PreviousVolume <= 1 {
		p.previousVolume = snap.PreviousVolume
	}
	switch snap.LoopMode {
	case LoopOff, LoopOne, LoopAll:
		p.loopMode = snap.LoopMode
	}
}

func (p *PlayerStore) persistLocked() {
	snap := playerSnapshot{
		CurrentTrack:   p.currentTrack,
		Playlist:       p.playlist,
		Volume:         p.volume,
		IsMuted:        p.isMuted,
		PreviousVolume: p.previousVolume,
		LoopMode:       p.loopMode,
	}
	if err := p.store.Set(playerKey, snap); err != nil {
		logger.Warn("持久化播放器状态失败", logger.ErrorField(err))
	}
}

// CurrentTrack 当前曲目的副本，没有时返回nil。
func (p *PlayerStore) CurrentTrack() *model.Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.currentTrack == nil {
		return nil
	}
	t := *p.currentTrack
	return &t
}

// IsPlaying 是否在播放。
func (p *PlayerStore) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.isPlaying
}

// Playlist 播放列表副本。
func (p *PlayerStore) Playlist() []model.Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.Track(nil), p.playlist...)
}

// Volume 当前音量。
func (p *PlayerStore) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// IsMuted 是否静音。
func (p *PlayerStore) IsMuted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.isMuted
}

// Mode 当前循环模式。
func (p *PlayerStore) Mode() LoopMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loopMode
}

// PositionMs 当前走带位置。
func (p *PlayerStore) PositionMs() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionMs
}

// SetPlaylist 整体替换播放列表。
func (p *PlayerStore) SetPlaylist(tracks []model.Track) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playlist = append([]model.Track(nil), tracks...)
	p.persistLocked()
}

// SetLoopMode 切换循环模式，非法值忽略。
func (p *PlayerStore) SetLoopMode(mode LoopMode) {
	switch mode {
	case LoopOff, LoopOne, LoopAll:
	default:
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loopMode = mode
	p.persistLocked()
}

// SetDuration 由播放内核在加载完媒体后设置时长。
func (p *PlayerStore) SetDuration(ms int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ms < 0 {
		ms = 0
	}
	p.durationMs = ms
	if p.positionMs > ms {
		p.positionMs = ms
	}
}

// Play 开始播放。track 非nil时切换当前曲目。
// 已登录且曲目有可用后端ID时，旁路上报播放历史和播放计数，
// 两个调用彼此独立、失败都吞掉，调用方永远立即返回。
func (p *PlayerStore) Play(track *model.Track) {
	p.mu.Lock()
	if track != nil {
		t := *track
		p.currentTrack = &t
	}
	p.isPlaying = true
	current := p.currentTrack
	duration := p.durationMs
	p.persistLocked()
	p.mu.Unlock()

	if current == nil {
		return
	}
	audioID, ok := current.AudioID()
	if !ok {
		logger.Debug("曲目缺少后端ID，跳过播放上报", logger.String("trackId", current.ID))
		return
	}
	if !p.identity.Status().IsAuthenticated {
		return
	}

	p.recordWG.Add(1)
	go func() {
		defer p.recordWG.Done()
		ctx := context.Background()
		if err := p.backend.AddPlayHistory(ctx, audioID, duration); err != nil {
			logger.Debug("上报播放历史失败", logger.Int64("audioId", audioID), logger.ErrorField(err))
		}
		if err := p.backend.IncrementPlay(ctx, audioID); err != nil {
			logger.Debug("上报播放计数失败", logger.Int64("audioId", audioID), logger.ErrorField(err))
		}
	}()
}

// PlayCombo 播放一组白噪音并尽力上报组合播放记录。
// 上报失败吞掉，本地播放不受影响。
func (p *PlayerStore) PlayCombo(ids []int64, mode string, playedID int64) {
	p.mu.Lock()
	p.isPlaying = true
	p.persistLocked()
	p.mu.Unlock()

	if len(ids) == 0 || !p.identity.Status().IsAuthenticated {
		return
	}
	p.recordWG.Add(1)
	go func() {
		defer p.recordWG.Done()
		if err := p.backend.RecordComboPlay(context.Background(), ids, mode, playedID); err != nil {
			logger.Debug("上报组合播放失败", logger.ErrorField(err))
		}
	}()
}

// Pause 暂停。
func (p *PlayerStore) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.isPlaying = false
	p.persistLocked()
}

// currentIndexLocked 当前曲目在列表中的下标，找不到返回-1。
func (p *PlayerStore) currentIndexLocked() int {
	if p.currentTrack == nil {
		return -1
	}
	for i, t := range p.playlist {
		if t.ID == p.currentTrack.ID {
			return i
		}
	}
	return -1
}

// HasNext 是否有下一曲。one 恒真；all 列表多于一首即真；
// off 只有不在末尾时为真。
func (p *PlayerStore) HasNext() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.playlist) == 0 {
		return false
	}
	switch p.loopMode {
	case LoopOne:
		return true
	case LoopAll:
		return len(p.playlist) > 1
	default:
		idx := p.currentIndexLocked()
		return idx >= 0 && idx < len(p.playlist)-1
	}
}

// HasPrev 是否有上一曲，规则与 HasNext 对称。
func (p *PlayerStore) HasPrev() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.playlist) == 0 {
		return false
	}
	switch p.loopMode {
	case LoopOne:
		return true
	case LoopAll:
		return len(p.playlist) > 1
	default:
		return p.currentIndexLocked() > 0
	}
}

// Next 切到下一曲。one 不换曲只置播放态；off 到末尾时什么都不做；
// all 回绕。
func (p *PlayerStore) Next() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.currentTrack == nil || len(p.playlist) == 0 {
		return
	}
	idx := p.currentIndexLocked()
	switch p.loopMode {
	case LoopOne:
		p.isPlaying = true
		return
	case LoopOff:
		if idx < 0 || idx == len(p.playlist)-1 {
			return
		}
		t := p.playlist[idx+1]
		p.currentTrack = &t
	default:
		t := p.playlist[(idx+1)%len(p.playlist)]
		p.currentTrack = &t
	}
	p.isPlaying = true
	p.positionMs = 0
	p.persistLocked()
}

// Prev 切到上一曲，规则与 Next 对称。
func (p *PlayerStore) Prev() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.currentTrack == nil || len(p.playlist) == 0 {
		return
	}
	idx := p.currentIndexLocked()
	switch p.loopMode {
	case LoopOne:
		p.isPlaying = true
		return
	case LoopOff:
		if idx <= 0 {
			return
		}
		t := p.playlist[idx-1]
		p.currentTrack = &t
	default:
		t := p.playlist[(idx-1+len(p.playlist))%len(p.playlist)]
		p.currentTrack = &t
	}
	p.isPlaying = true
	p.positionMs = 0
	p.persistLocked()
}

// Seek 跳转到指定位置，收敛到 [0, durationMs]。
func (p *PlayerStore) Seek(ms int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ms < 0 {
		ms = 0
	}
	if ms > p.durationMs {
		ms = p.durationMs
	}
	p.positionMs = ms
}

// SetVolume 设置音量，收敛到 [0,1]。
func (p *PlayerStore) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	p.volume = v
	p.persistLocked()
}

// ToggleMute 静音开关。静音时记住当前音量，恢复时原样还原，
// 连按两次回到按之前的精确音量。
func (p *PlayerStore) ToggleMute() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.isMuted {
		p.isMuted = false
		if p.previousVolume > 0 {
			p.volume = p.previousVolume
		} else {
			p.volume = defaultVolume
		}
	} else {
		p.isMuted = true
		p.previousVolume = p.volume
		p.volume = 0
	}
	p.persistLocked()
}

// AddToQueue 追加到播放列表末尾，按ID去重。
func (p *PlayerStore) AddToQueue(track model.Track) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range p.playlist {
		if t.ID == track.ID {
			return
		}
	}
	p.playlist = append(p.playlist, track)
	p.persistLocked()
}

// waitRecorders 等待旁路上报全部落地，测试用。
func (p *PlayerStore) waitRecorders() {
	p.recordWG.Wait()
}
