package store

import (
	"testing"

	"SleepFM/model"
)

func playerWithPlaylist(id Identity, backend *fakeBackend, trackIDs ...string) *PlayerStore {
	p := NewPlayer(id, backend, memStore())
	tracks := make([]model.Track, len(trackIDs))
	for i, tid := range trackIDs {
		tracks[i] = track(tid, "", "")
	}
	p.SetPlaylist(tracks)
	return p
}

func setCurrent(p *PlayerStore, id string) {
	t := track(id, "", "")
	p.mu.Lock()
	p.currentTrack = &t
	p.mu.Unlock()
}

func currentID(p *PlayerStore) string {
	if t := p.CurrentTrack(); t != nil {
		return t.ID
	}
	return ""
}

func TestLoopModeNavigation(t *testing.T) {
	tests := []struct {
		name     string
		mode     LoopMode
		current  string
		hasNext  bool
		hasPrev  bool
		afterNext string
		afterPrev string
	}{
		{"off middle", LoopOff, "t2", true, true, "t3", "t1"},
		{"off at tail", LoopOff, "t3", false, true, "t3", "t2"},
		{"off at head", LoopOff, "t1", true, false, "t2", "t1"},
		{"all wraps forward", LoopAll, "t3", true, true, "t1", "t2"},
		{"all wraps backward", LoopAll, "t1", true, true, "t2", "t3"},
		{"one stays put", LoopOne, "t2", true, true, "t2", "t2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := playerWithPlaylist(anonIdentity(), newFakeBackend(), "t1", "t2", "t3")
			p.SetLoopMode(tt.mode)

			setCurrent(p, tt.current)
			if got := p.HasNext(); got != tt.hasNext {
				t.Errorf("HasNext = %v, want %v", got, tt.hasNext)
			}
			if got := p.HasPrev(); got != tt.hasPrev {
				t.Errorf("HasPrev = %v, want %v", got, tt.hasPrev)
			}
			p.Next()
			if got := currentID(p); got != tt.afterNext {
				t.Errorf("after Next current = %q, want %q", got, tt.afterNext)
			}

			setCurrent(p, tt.current)
			p.Prev()
			if got := currentID(p); got != tt.afterPrev {
				t.Errorf("after Prev current = %q, want %q", got, tt.afterPrev)
			}
		})
	}
}

func TestNavigationWithEmptyPlaylist(t *testing.T) {
	p := NewPlayer(anonIdentity(), newFakeBackend(), memStore())
	if p.HasNext() || p.HasPrev() {
		t.Fatal("empty playlist must have no neighbors")
	}
	p.Next()
	p.Prev()
	if p.CurrentTrack() != nil {
		t.Fatal("navigation conjured a track")
	}
}

func TestSingleTrackAllLoop(t *testing.T) {
	p := playerWithPlaylist(anonIdentity(), newFakeBackend(), "t1")
	p.SetLoopMode(LoopAll)
	setCurrent(p, "t1")
	if p.HasNext() || p.HasPrev() {
		t.Fatal("single-track list should report no neighbors in list loop")
	}
}

func TestToggleMuteRestoresExactVolume(t *testing.T) {
	p := NewPlayer(anonIdentity(), newFakeBackend(), memStore())
	p.SetVolume(0.6)

	p.ToggleMute()
	if !p.IsMuted() || p.Volume() != 0 {
		t.Fatalf("muted=%v volume=%v, want true/0", p.IsMuted(), p.Volume())
	}
	p.ToggleMute()
	if p.IsMuted() || p.Volume() != 0.6 {
		t.Fatalf("muted=%v volume=%v, want false/0.6", p.IsMuted(), p.Volume())
	}
}

func TestUnmuteFromZeroFallsBackToDefault(t *testing.T) {
	p := NewPlayer(anonIdentity(), newFakeBackend(), memStore())
	p.SetVolume(0)
	p.ToggleMute()
	p.ToggleMute()
	if got := p.Volume(); got != defaultVolume {
		t.Fatalf("volume = %v, want %v", got, defaultVolume)
	}
}

func TestSetVolumeClamps(t *testing.T) {
	p := NewPlayer(anonIdentity(), newFakeBackend(), memStore())
	p.SetVolume(1.5)
	if p.Volume() != 1 {
		t.Fatalf("volume = %v, want 1", p.Volume())
	}
	p.SetVolume(-0.5)
	if p.Volume() != 0 {
		t.Fatalf("volume = %v, want 0", p.Volume())
	}
}

func TestSeekClamps(t *testing.T) {
	p := NewPlayer(anonIdentity(), newFakeBackend(), memStore())
	p.SetDuration(120_000)
	p.Seek(200_000)
	if p.PositionMs() != 120_000 {
		t.Fatalf("position = %d, want 120000", p.PositionMs())
	}
	p.Seek(-5)
	if p.PositionMs() != 0 {
		t.Fatalf("position = %d, want 0", p.PositionMs())
	}
}

func TestPlayReportsWhenAuthenticated(t *testing.T) {
	backend := newFakeBackend()
	p := NewPlayer(authedIdentity(), backend, memStore())
	tr := track("t7", "7", "雨声")
	p.Play(&tr)
	p.waitRecorders()

	if !p.IsPlaying() {
		t.Fatal("not playing")
	}
	if backend.count("AddPlayHistory") != 1 || backend.count("IncrementPlay") != 1 {
		t.Fatalf("calls = %v, want one of each", backend.calls)
	}
}

func TestPlaySkipsReportWithoutLogin(t *testing.T) {
	backend := newFakeBackend()
	p := NewPlayer(anonIdentity(), backend, memStore())
	tr := track("t7", "7", "")
	p.Play(&tr)
	p.waitRecorders()

	if !p.IsPlaying() {
		t.Fatal("playback must not depend on login")
	}
	if backend.totalCalls() != 0 {
		t.Fatalf("calls = %v, want none", backend.calls)
	}
}

func TestPlaySkipsReportWithoutBackendID(t *testing.T) {
	backend := newFakeBackend()
	p := NewPlayer(authedIdentity(), backend, memStore())
	tr := track("local-only", "", "")
	p.Play(&tr)
	p.waitRecorders()

	if backend.totalCalls() != 0 {
		t.Fatalf("calls = %v, want none", backend.calls)
	}
}

func TestPlaySwallowsReportFailure(t *testing.T) {
	backend := newFakeBackend()
	backend.playHistoryErr = errTestBoom
	backend.incrementErr = errTestBoom
	p := NewPlayer(authedIdentity(), backend, memStore())
	tr := track("t7", "7", "")
	p.Play(&tr)
	p.waitRecorders()

	if !p.IsPlaying() {
		t.Fatal("report failure leaked into playback state")
	}
	// 两个上报彼此独立，前一个失败不拦后一个
	if backend.count("IncrementPlay") != 1 {
		t.Fatalf("IncrementPlay calls = %d, want 1", backend.count("IncrementPlay"))
	}
}

func TestPlayCombo(t *testing.T) {
	backend := newFakeBackend()
	p := NewPlayer(authedIdentity(), backend, memStore())
	p.PlayCombo([]int64{1, 2, 3}, "mix", 2)
	p.waitRecorders()
	if backend.count("RecordComboPlay") != 1 {
		t.Fatalf("RecordComboPlay calls = %d, want 1", backend.count("RecordComboPlay"))
	}

	anon := NewPlayer(anonIdentity(), backend, memStore())
	anon.PlayCombo([]int64{1}, "mix", 0)
	anon.waitRecorders()
	if backend.count("RecordComboPlay") != 1 {
		t.Fatal("combo play reported without login")
	}
}

func TestAddToQueueDedups(t *testing.T) {
	p := NewPlayer(anonIdentity(), newFakeBackend(), memStore())
	p.AddToQueue(track("t1", "", ""))
	p.AddToQueue(track("t2", "", ""))
	p.AddToQueue(track("t1", "", ""))
	if got := len(p.Playlist()); got != 2 {
		t.Fatalf("len(playlist) = %d, want 2", got)
	}
}

func TestPlayerSnapshotReload(t *testing.T) {
	st := memStore()
	p := NewPlayer(anonIdentity(), newFakeBackend(), st)
	p.SetPlaylist([]model.Track{track("t1", "", ""), track("t2", "", "")})
	tr := track("t2", "2", "")
	p.Play(&tr)
	p.SetLoopMode(LoopOff)
	p.SetVolume(0.3)
	p.waitRecorders()

	reloaded := NewPlayer(anonIdentity(), newFakeBackend(), st)
	reloaded.Load()
	if currentID(reloaded) != "t2" {
		t.Fatalf("current = %q, want t2", currentID(reloaded))
	}
	if len(reloaded.Playlist()) != 2 || reloaded.Mode() != LoopOff || reloaded.Volume() != 0.3 {
		t.Fatalf("snapshot lost fields: playlist=%d mode=%v volume=%v",
			len(reloaded.Playlist()), reloaded.Mode(), reloaded.Volume())
	}
	// 走带进度和播放态不持久化
	if reloaded.IsPlaying() || reloaded.PositionMs() != 0 {
		t.Fatal("transient fields leaked into snapshot")
	}
}
