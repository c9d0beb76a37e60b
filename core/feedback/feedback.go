// Package feedback 起床反馈收集：反馈提交优先走服务端，失败时落到
// 本地记录等下次有网再看；起床闹钟关闭时由闹钟侧的钩子排一条
// 待办反馈任务。
package feedback

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"SleepFM/logger"
	"SleepFM/storage"
)

const (
	tasksKey   = "sleep_feedback_tasks"
	recordsKey = "sleep_feedback_records"
)

// Backend 反馈提交的服务端面。
type Backend interface {
	SubmitFeedback(ctx context.Context, payload map[string]any) error
}

// Task 一条待完成的反馈任务。
type Task struct {
	ID      string `json:"id"`
	AlarmID string `json:"alarmId,omitempty"`
	Label   string `json:"label,omitempty"`
	FireAt  int64  `json:"fireAt"`
	Done    bool   `json:"done"`
}

// Record 一条已落地的反馈。Synced 为 false 表示还没提交到服务端。
type Record struct {
	ID      string         `json:"id"`
	Payload map[string]any `json:"payload"`
	Ts      int64          `json:"ts"`
	Synced  bool           `json:"synced"`
}

// Service 反馈服务。
type Service struct {
	mu      sync.Mutex
	backend Backend
	store   storage.Store
	tasks   []Task
	records []Record
	nowFn   func() time.Time
	idFn    func() string
}

// NewService 创建反馈服务。
func NewService(backend Backend, store storage.Store) *Service {
	return &Service{
		backend: backend,
		store:   store,
		nowFn:   time.Now,
		idFn: func() string {
			return "fb_" + uuid.NewString()
		},
	}
}

// Load 从本地存储恢复任务和记录，失败保持空状态。
func (s *Service) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var tasks []Task
	if found, err := s.store.Get(tasksKey, &tasks); err == nil && found {
		s.tasks = tasks
	}
	var records []Record
	if found, err := s.store.Get(recordsKey, &records); err == nil && found {
		s.records = records
	}
}

func (s *Service) persistTasksLocked() {
	if err := s.store.Set(tasksKey, s.tasks); err != nil {
		logger.Warn("持久化反馈任务失败", logger.ErrorField(err))
	}
}

func (s *Service) persistRecordsLocked() {
	if err := s.store.Set(recordsKey, s.records); err != nil {
		logger.Warn("持久化反馈记录失败", logger.ErrorField(err))
	}
}

// Scheduled 待完成任务的副本。
func (s *Service) Scheduled() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Task(nil), s.tasks...)
}

// Records 反馈记录的副本。
func (s *Service) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.records...)
}

// ScheduleReminder 排一条反馈任务。闹钟侧的起床钩子从这里进来。
func (s *Service) ScheduleReminder(alarmID, label string, fireAt time.Time) Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	task := Task{
		ID:      s.idFn(),
		AlarmID: alarmID,
		Label:   label,
		FireAt:  fireAt.UnixMilli(),
	}
	s.tasks = append(s.tasks, task)
	s.persistTasksLocked()
	return task
}

// CompleteTask 把任务标成完成。返回是否找到了这条任务。
func (s *Service) CompleteTask(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Done = true
			s.persistTasksLocked()
			return true
		}
	}
	return false
}

// Submit 提交一条反馈。服务端成功则记录标记为已同步；
// 任何失败都落本地记录，不把错误抛给调用方。
func (s *Service) Submit(ctx context.Context, payload map[string]any) Record {
	rec := Record{
		ID:      s.idFn(),
		Payload: payload,
		Ts:      s.nowFn().UnixMilli(),
	}
	if err := s.backend.SubmitFeedback(ctx, payload); err != nil {
		logger.Warn("提交反馈失败，已落本地", logger.ErrorField(err))
	} else {
		rec.Synced = true
	}

	s.mu.Lock()
	s.records = append(s.records, rec)
	s.persistRecordsLocked()
	s.mu.Unlock()
	return rec
}

// FlushPending 重试提交所有未同步的记录。成功的标记已同步，
// 失败的留着下次再说。
func (s *Service) FlushPending(ctx context.Context) {
	s.mu.Lock()
	pending := make([]int, 0)
	for i, r := range s.records {
		if !r.Synced {
			pending = append(pending, i)
		}
	}
	s.mu.Unlock()

	for _, i := range pending {
		s.mu.Lock()
		payload := s.records[i].Payload
		s.mu.Unlock()
		if err := s.backend.SubmitFeedback(ctx, payload); err != nil {
			logger.Debug("补传反馈失败", logger.ErrorField(err))
			continue
		}
		s.mu.Lock()
		s.records[i].Synced = true
		s.persistRecordsLocked()
		s.mu.Unlock()
	}
}
