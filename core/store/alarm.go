package store

import (
	"context"
	"regexp"
	"sync"
	"time"

	"SleepFM/logger"
	"SleepFM/model"
	"SleepFM/storage"
)

// wakeAlarmPattern 起床闹钟的标签特征。命中它的闹钟从开启拨到关闭时
// 触发起床反馈流程。
var wakeAlarmPattern = regexp.MustCompile(`(?i)wake|起床`)

// Reminder 睡前提醒。
type Reminder struct {
	Enabled bool   `json:"enabled"`
	Hour    int    `json:"hour"`
	Minute  int    `json:"minute"`
	Label   string `json:"label"`
}

// AlarmPatch 闹钟更新的字段白名单，nil表示不改。
type AlarmPatch struct {
	Label      *string
	Enabled    *bool
	Hour       *int
	Minute     *int
	Repeat     *string
	RepeatDays *[]int
	Ringtone   *string
	Snooze     *bool
	Vibrate    *bool
	Volume     *float64
}

// AlarmStore 闹钟集。和收藏相反，这里选可用性而不是一致性：
// 本地变更永远生效，服务端同步失败就保持本地运行，不回滚。
// 持有临时ID的闹钟在服务端创建成功前不可寻址，对它的后续改动
// 不会尝试同步（创建也不会自动重试）。
type AlarmStore struct {
	mu       sync.Mutex
	identity Identity
	backend  AlarmBackend
	store    storage.Store

	alarms     []model.Alarm
	reminder   Reminder
	napMinutes int
	napStartTs int64

	// feedbackHook 起床闹钟被关闭时调用，跳转反馈收集流程。
	feedbackHook func(model.Alarm)
	nowFn        func() time.Time
}

type sleepSnapshot struct {
	Alarms     []model.Alarm `json:"alarms"`
	Reminder   Reminder      `json:"reminder"`
	NapMinutes int           `json:"napTimerMin"`
	NapStartTs int64         `json:"napStartTs,omitempty"`
}

// NewAlarms 创建闹钟容器。
func NewAlarms(identity Identity, backend AlarmBackend, store storage.Store) *AlarmStore {
	return &AlarmStore{
		identity:   identity,
		backend:    backend,
		store:      store,
		reminder:   Reminder{Hour: 22, Minute: 0, Label: "睡前提醒"},
		napMinutes: 20,
		nowFn:      time.Now,
	}
}

// SetFeedbackHook 注入起床反馈跳转。hook 在锁外调用。
func (s *AlarmStore) SetFeedbackHook(hook func(model.Alarm)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedbackHook = hook
}

// Load 从本地存储恢复快照，失败保持默认值。
func (s *AlarmStore) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var snap sleepSnapshot
	if found, err := s.store.Get(sleepKey, &snap); err == nil && found {
		s.alarms = snap.Alarms
		s.reminder = snap.Reminder
		if snap.NapMinutes > 0 {
			s.napMinutes = snap.NapMinutes
		}
		s.napStartTs = snap.NapStartTs
	}
}

func (s *AlarmStore) persistLocked() {
	snap := sleepSnapshot{
		Alarms:     s.alarms,
		Reminder:   s.reminder,
		NapMinutes: s.napMinutes,
		NapStartTs: s.napStartTs,
	}
	if err := s.store.Set(sleepKey, snap); err != nil {
		logger.Warn("持久化闹钟快照失败", logger.ErrorField(err))
	}
}

// Alarms 返回闹钟列表的副本。
func (s *AlarmStore) Alarms() []model.Alarm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Alarm(nil), s.alarms...)
}

// Reminder 当前的睡前提醒设置。
func (s *AlarmStore) Reminder() Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reminder
}

func (s *AlarmStore) indexOfLocked(id string) int {
	for i, a := range s.alarms {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// canSync 是否值得往服务端发：要有token，且闹钟已持有服务端ID。
func (s *AlarmStore) canSync(id string) bool {
	return !model.IsTempAlarmID(id) && s.identity.Status().IsAuthenticated
}

// AddAlarm 新建闹钟。本地立即生效并返回，随后尝试服务端创建：
// 成功则把临时ID换成服务端ID（响应里叫 id 或 alarm_id 都认），
// 失败则闹钟永久保持本地——错误会交还调用方，但本地结果不回滚。
func (s *AlarmStore) AddAlarm(ctx context.Context, a model.Alarm) (model.Alarm, error) {
	a.Clamp()
	a.ID = model.NewTempAlarmID(s.nowFn())

	err := runOptimistic(
		func() {
			s.mu.Lock()
			s.alarms = append(s.alarms, a)
			s.persistLocked()
			s.mu.Unlock()
		},
		func() error {
			if !s.identity.Status().IsAuthenticated {
				return nil
			}
			serverID, err := s.backend.CreateAlarm(ctx, a)
			if err != nil {
				return err
			}
			if serverID == "" {
				return nil
			}
			s.mu.Lock()
			if i := s.indexOfLocked(a.ID); i >= 0 {
				s.alarms[i].ID = serverID
				a.ID = serverID
				s.persistLocked()
			}
			s.mu.Unlock()
			return nil
		},
		nil, // 闹钟不回滚：离线也要能用
	)
	if err != nil {
		logger.Warn("服务端创建闹钟失败，保持本地", logger.String("alarmId", a.ID), logger.ErrorField(err))
	}
	return a, err
}

// UpdateAlarm 按白名单改字段并持久化。闹钟还持着临时ID时跳过
// 服务端同步（服务端根本没有这条记录）；同步失败也只记日志。
// 返回是否找到了这条闹钟。
func (s *AlarmStore) UpdateAlarm(ctx context.Context, id string, patch AlarmPatch) bool {
	s.mu.Lock()
	i := s.indexOfLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	alarm := &s.alarms[i]
	wasEnabled := alarm.Enabled
	applyPatch(alarm, patch)
	alarm.Clamp()
	updated := *alarm
	s.persistLocked()
	hook := s.feedbackHook
	s.mu.Unlock()

	if wasEnabled && !updated.Enabled && wakeAlarmPattern.MatchString(updated.Label) && hook != nil {
		hook(updated)
	}
	s.syncUpdate(ctx, updated)
	return true
}

// ToggleAlarm 翻转开关。起床闹钟从开到关时触发反馈跳转。
func (s *AlarmStore) ToggleAlarm(ctx context.Context, id string) bool {
	s.mu.Lock()
	i := s.indexOfLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.alarms[i].Enabled = !s.alarms[i].Enabled
	updated := s.alarms[i]
	s.persistLocked()
	hook := s.feedbackHook
	s.mu.Unlock()

	if !updated.Enabled && wakeAlarmPattern.MatchString(updated.Label) && hook != nil {
		hook(updated)
	}
	s.syncUpdate(ctx, updated)
	return true
}

// syncUpdate 把一条已持有服务端ID的闹钟推到服务端，失败吞掉。
func (s *AlarmStore) syncUpdate(ctx context.Context, a model.Alarm) {
	if !s.canSync(a.ID) {
		return
	}
	if err := s.backend.UpdateAlarm(ctx, a.ID, a); err != nil {
		logger.Warn("同步闹钟更新失败", logger.String("alarmId", a.ID), logger.ErrorField(err))
	}
}

// RemoveAlarm 删除闹钟。本地无条件删；持有服务端ID时再尝试远端删，
// 失败吞掉。返回是否找到了这条闹钟。
func (s *AlarmStore) RemoveAlarm(ctx context.Context, id string) bool {
	s.mu.Lock()
	i := s.indexOfLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.alarms = append(s.alarms[:i], s.alarms[i+1:]...)
	s.persistLocked()
	s.mu.Unlock()

	if s.canSync(id) {
		if err := s.backend.DeleteAlarm(ctx, id); err != nil {
			logger.Warn("服务端删除闹钟失败", logger.String("alarmId", id), logger.ErrorField(err))
		}
	}
	return true
}

// FetchAlarmsFromServer 拉取服务端闹钟。服务端列表替换本地已同步的
// 闹钟，持临时ID的本地闹钟原样保留。失败静默，保留之前的状态。
func (s *AlarmStore) FetchAlarmsFromServer(ctx context.Context) {
	if !s.identity.Status().IsAuthenticated {
		return
	}
	remote, err := s.backend.ListAlarms(ctx)
	if err != nil {
		logger.Warn("拉取闹钟失败", logger.ErrorField(err))
		return
	}

	s.mu.Lock()
	merged := make([]model.Alarm, 0, len(remote)+len(s.alarms))
	merged = append(merged, remote...)
	for _, a := range s.alarms {
		if model.IsTempAlarmID(a.ID) {
			merged = append(merged, a)
		}
	}
	s.alarms = merged
	s.persistLocked()
	s.mu.Unlock()
}

// StartNap 开始小睡计时。
func (s *AlarmStore) StartNap(minutes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if minutes > 0 {
		s.napMinutes = minutes
	}
	s.napStartTs = s.nowFn().UnixMilli()
	s.persistLocked()
}

// StopNap 结束小睡计时。
func (s *AlarmStore) StopNap() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.napStartTs = 0
	s.persistLocked()
}

// NapRemaining 小睡剩余时长，没在小睡时返回0。
func (s *AlarmStore) NapRemaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.napStartTs == 0 {
		return 0
	}
	end := time.UnixMilli(s.napStartTs).Add(time.Duration(s.napMinutes) * time.Minute)
	remain := end.Sub(s.nowFn())
	if remain < 0 {
		return 0
	}
	return remain
}

// SetReminder 更新睡前提醒并持久化。
func (s *AlarmStore) SetReminder(r Reminder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.Hour = clampHour(r.Hour)
	r.Minute = clampMinute(r.Minute)
	s.reminder = r
	s.persistLocked()
}

func applyPatch(a *model.Alarm, p AlarmPatch) {
	if p.Label != nil {
		a.Label = *p.Label
	}
	if p.Enabled != nil {
		a.Enabled = *p.Enabled
	}
	if p.Hour != nil {
		a.Hour = *p.Hour
	}
	if p.Minute != nil {
		a.Minute = *p.Minute
	}
	if p.Repeat != nil {
		a.Repeat = *p.Repeat
	}
	if p.RepeatDays != nil {
		a.RepeatDays = append([]int(nil), (*p.RepeatDays)...)
	}
	if p.Ringtone != nil {
		a.Ringtone = *p.Ringtone
	}
	if p.Snooze != nil {
		a.Snooze = *p.Snooze
	}
	if p.Vibrate != nil {
		a.Vibrate = *p.Vibrate
	}
	if p.Volume != nil {
		a.Volume = *p.Volume
	}
}

func clampHour(h int) int {
	if h < 0 {
		return 0
	}
	if h > 23 {
		return 23
	}
	return h
}

func clampMinute(m int) int {
	if m < 0 {
		return 0
	}
	if m > 59 {
		return 59
	}
	return m
}
