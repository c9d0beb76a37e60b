package feedback

import (
	"context"
	"errors"
	"testing"
	"time"

	"SleepFM/storage"
)

type fakeBackend struct {
	err   error
	calls int
}

func (f *fakeBackend) SubmitFeedback(ctx context.Context, payload map[string]any) error {
	f.calls++
	return f.err
}

func TestSubmitSyncsOnSuccess(t *testing.T) {
	backend := &fakeBackend{}
	s := NewService(backend, storage.NewMemoryStore())

	rec := s.Submit(context.Background(), map[string]any{"mood": "good"})
	if !rec.Synced {
		t.Fatal("record not marked synced")
	}
	if got := s.Records(); len(got) != 1 || !got[0].Synced {
		t.Fatalf("records = %+v", got)
	}
}

func TestSubmitFallsBackLocally(t *testing.T) {
	backend := &fakeBackend{err: errors.New("offline")}
	s := NewService(backend, storage.NewMemoryStore())

	rec := s.Submit(context.Background(), map[string]any{"mood": "tired"})
	if rec.Synced {
		t.Fatal("failed submit marked synced")
	}
	got := s.Records()
	if len(got) != 1 || got[0].Synced {
		t.Fatalf("records = %+v, want one unsynced record", got)
	}
}

func TestFlushPending(t *testing.T) {
	backend := &fakeBackend{err: errors.New("offline")}
	s := NewService(backend, storage.NewMemoryStore())
	s.Submit(context.Background(), map[string]any{"n": 1})
	s.Submit(context.Background(), map[string]any{"n": 2})

	backend.err = nil
	s.FlushPending(context.Background())
	for _, r := range s.Records() {
		if !r.Synced {
			t.Fatalf("record %s still pending after flush", r.ID)
		}
	}
	// 两条落地 + 两条补传
	if backend.calls != 4 {
		t.Fatalf("backend calls = %d, want 4", backend.calls)
	}
}

func TestScheduleAndCompleteTask(t *testing.T) {
	s := NewService(&fakeBackend{}, storage.NewMemoryStore())
	fireAt := time.Date(2026, 3, 1, 7, 30, 0, 0, time.UTC)

	task := s.ScheduleReminder("srv-1", "起床", fireAt)
	if task.FireAt != fireAt.UnixMilli() || task.Done {
		t.Fatalf("task = %+v", task)
	}
	if !s.CompleteTask(task.ID) {
		t.Fatal("task not found")
	}
	if s.CompleteTask("nope") {
		t.Fatal("completed a missing task")
	}
	if got := s.Scheduled(); len(got) != 1 || !got[0].Done {
		t.Fatalf("tasks = %+v", got)
	}
}

func TestLoadRestoresState(t *testing.T) {
	st := storage.NewMemoryStore()
	s := NewService(&fakeBackend{}, st)
	s.ScheduleReminder("srv-1", "起床", time.Now())
	s.Submit(context.Background(), map[string]any{"mood": "ok"})

	reloaded := NewService(&fakeBackend{}, st)
	reloaded.Load()
	if len(reloaded.Scheduled()) != 1 || len(reloaded.Records()) != 1 {
		t.Fatalf("tasks=%d records=%d, want 1/1",
			len(reloaded.Scheduled()), len(reloaded.Records()))
	}
}
