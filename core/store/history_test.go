package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"SleepFM/core/api"
	"SleepFM/model"
)

func TestHistoryBoundedAt50(t *testing.T) {
	s := NewHistory(anonIdentity(), newFakeBackend(), memStore())
	for i := 0; i < 60; i++ {
		s.Add(track(fmt.Sprintf("t%d", i), "", ""))
	}
	items := s.Items()
	if len(items) != maxHistoryEntries {
		t.Fatalf("len(items) = %d, want %d", len(items), maxHistoryEntries)
	}
	// 最近的在前，最旧的已被截掉
	if items[0].ID != "t59" {
		t.Fatalf("items[0].ID = %q, want t59", items[0].ID)
	}
	if items[len(items)-1].ID != "t10" {
		t.Fatalf("last ID = %q, want t10", items[len(items)-1].ID)
	}
}

func TestHistoryDedupMovesToFront(t *testing.T) {
	s := NewHistory(anonIdentity(), newFakeBackend(), memStore())
	s.Add(track("t1", "", "一"))
	s.Add(track("t2", "", "二"))
	s.Add(track("t1", "", "一"))

	items := s.Items()
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[0].ID != "t1" || items[1].ID != "t2" {
		t.Fatalf("order = [%s %s], want [t1 t2]", items[0].ID, items[1].ID)
	}
}

func TestHistoryIgnoresEmptyID(t *testing.T) {
	s := NewHistory(anonIdentity(), newFakeBackend(), memStore())
	s.Add(model.Track{})
	if len(s.Items()) != 0 {
		t.Fatal("entry with empty id recorded")
	}
}

func TestHistoryAddNeedsNoLogin(t *testing.T) {
	backend := newFakeBackend()
	s := NewHistory(guestIdentity(), backend, memStore())
	s.Add(track("t1", "", ""))
	if len(s.Items()) != 1 {
		t.Fatal("guest add dropped")
	}
	if backend.totalCalls() != 0 {
		t.Fatalf("backend calls = %d, want 0", backend.totalCalls())
	}
}

func TestSyncWhiteNoiseHistoryReplaces(t *testing.T) {
	backend := newFakeBackend()
	backend.comboHistory = []model.ComboHistoryEntry{{ID: "h1", AudioIDs: []int64{1, 2}}}
	s := NewHistory(authedIdentity(), backend, memStore())
	s.mu.Lock()
	s.comboItems = []model.ComboHistoryEntry{{ID: "stale"}}
	s.mu.Unlock()

	if err := s.SyncWhiteNoiseHistory(context.Background()); err != nil {
		t.Fatal(err)
	}
	got := s.ComboItems()
	if len(got) != 1 || got[0].ID != "h1" {
		t.Fatalf("comboItems = %+v, want wholesale replacement", got)
	}
}

func TestSyncWhiteNoiseHistoryPropagatesError(t *testing.T) {
	backend := newFakeBackend()
	backend.comboHistoryErr = &api.Error{Status: 500, Message: "boom"}
	s := NewHistory(authedIdentity(), backend, memStore())
	s.mu.Lock()
	s.comboItems = []model.ComboHistoryEntry{{ID: "keep"}}
	s.mu.Unlock()

	err := s.SyncWhiteNoiseHistory(context.Background())
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want wrapped *api.Error", err)
	}
	if got := s.ComboItems(); len(got) != 1 || got[0].ID != "keep" {
		t.Fatalf("comboItems changed on failure: %+v", got)
	}
}

func TestSyncWhiteNoiseHistorySkipsWhenLoggedOut(t *testing.T) {
	backend := newFakeBackend()
	s := NewHistory(anonIdentity(), backend, memStore())
	if err := s.SyncWhiteNoiseHistory(context.Background()); err != nil {
		t.Fatal(err)
	}
	if backend.count("ComboHistory") != 0 {
		t.Fatal("fetched combo history while logged out")
	}
}

func TestHistoryPersistAndReload(t *testing.T) {
	st := memStore()
	s := NewHistory(anonIdentity(), newFakeBackend(), st)
	s.Add(track("t1", "", "一"))
	s.Add(track("t2", "", "二"))

	reloaded := NewHistory(anonIdentity(), newFakeBackend(), st)
	reloaded.Load()
	items := reloaded.Items()
	if len(items) != 2 || items[0].ID != "t2" {
		t.Fatalf("reloaded = %+v", items)
	}

	reloaded.Clear()
	if len(reloaded.Items()) != 0 {
		t.Fatal("clear left entries")
	}
	fresh := NewHistory(anonIdentity(), newFakeBackend(), st)
	fresh.Load()
	if len(fresh.Items()) != 0 {
		t.Fatal("snapshot survived clear")
	}
}
