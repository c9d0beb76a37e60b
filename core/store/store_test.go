package store

import (
	"context"
	"errors"
	"sync"

	"SleepFM/core/auth"
	"SleepFM/model"
	"SleepFM/storage"
)

var errTestBoom = errors.New("boom")

type fakeIdentity struct {
	st auth.Status
}

func (f fakeIdentity) Status() auth.Status { return f.st }

func authedIdentity() fakeIdentity {
	return fakeIdentity{st: auth.Status{Token: "tk", IsAuthenticated: true}}
}

func guestIdentity() fakeIdentity {
	return fakeIdentity{st: auth.Status{IsGuest: true}}
}

func anonIdentity() fakeIdentity {
	return fakeIdentity{}
}

// fakeBackend 实现全部服务端接口并统计每个方法的调用次数。
type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int

	favorites    []model.FavoriteEntry
	listFavErr   error
	createFavID  int64
	createFavErr error
	deleteFavErr error
	deletedIDs   []int64

	audioTitles map[int64]string
	audioErrs   map[int64]error

	combos    []model.ComboFavorite
	combosErr error
	toggleErr error

	comboHistory    []model.ComboHistoryEntry
	comboHistoryErr error

	playHistoryErr error
	incrementErr   error
	recordComboErr error

	alarms         []model.Alarm
	listAlarmsErr  error
	createAlarmID  string
	createAlarmErr error
	updateAlarmErr error
	deleteAlarmErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		calls:       make(map[string]int),
		audioTitles: make(map[int64]string),
		audioErrs:   make(map[int64]error),
	}
}

func (f *fakeBackend) hit(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func (f *fakeBackend) ListFavorites(ctx context.Context) ([]model.FavoriteEntry, error) {
	f.hit("ListFavorites")
	if f.listFavErr != nil {
		return nil, f.listFavErr
	}
	return append([]model.FavoriteEntry(nil), f.favorites...), nil
}

func (f *fakeBackend) CreateFavorite(ctx context.Context, audioID int64) (model.FavoriteEntry, error) {
	f.hit("CreateFavorite")
	if f.createFavErr != nil {
		return model.FavoriteEntry{}, f.createFavErr
	}
	return model.FavoriteEntry{ID: audioID, FavID: f.createFavID}, nil
}

func (f *fakeBackend) DeleteFavorite(ctx context.Context, id int64) error {
	f.hit("DeleteFavorite")
	f.mu.Lock()
	f.deletedIDs = append(f.deletedIDs, id)
	f.mu.Unlock()
	return f.deleteFavErr
}

func (f *fakeBackend) GetAudio(ctx context.Context, audioID int64) (model.Track, error) {
	f.hit("GetAudio")
	if err := f.audioErrs[audioID]; err != nil {
		return model.Track{}, err
	}
	return model.Track{Title: f.audioTitles[audioID]}, nil
}

func (f *fakeBackend) ComboFavorites(ctx context.Context) ([]model.ComboFavorite, error) {
	f.hit("ComboFavorites")
	if f.combosErr != nil {
		return nil, f.combosErr
	}
	return append([]model.ComboFavorite(nil), f.combos...), nil
}

func (f *fakeBackend) ToggleComboFavorite(ctx context.Context, combo model.ComboFavorite) error {
	f.hit("ToggleComboFavorite")
	return f.toggleErr
}

func (f *fakeBackend) ComboHistory(ctx context.Context, offset, limit int) ([]model.ComboHistoryEntry, error) {
	f.hit("ComboHistory")
	if f.comboHistoryErr != nil {
		return nil, f.comboHistoryErr
	}
	return append([]model.ComboHistoryEntry(nil), f.comboHistory...), nil
}

func (f *fakeBackend) AddPlayHistory(ctx context.Context, audioID int64, durationMs int64) error {
	f.hit("AddPlayHistory")
	return f.playHistoryErr
}

func (f *fakeBackend) IncrementPlay(ctx context.Context, audioID int64) error {
	f.hit("IncrementPlay")
	return f.incrementErr
}

func (f *fakeBackend) RecordComboPlay(ctx context.Context, ids []int64, mode string, playedID int64) error {
	f.hit("RecordComboPlay")
	return f.recordComboErr
}

func (f *fakeBackend) ListAlarms(ctx context.Context) ([]model.Alarm, error) {
	f.hit("ListAlarms")
	if f.listAlarmsErr != nil {
		return nil, f.listAlarmsErr
	}
	return append([]model.Alarm(nil), f.alarms...), nil
}

func (f *fakeBackend) CreateAlarm(ctx context.Context, a model.Alarm) (string, error) {
	f.hit("CreateAlarm")
	if f.createAlarmErr != nil {
		return "", f.createAlarmErr
	}
	return f.createAlarmID, nil
}

func (f *fakeBackend) UpdateAlarm(ctx context.Context, id string, a model.Alarm) error {
	f.hit("UpdateAlarm")
	return f.updateAlarmErr
}

func (f *fakeBackend) DeleteAlarm(ctx context.Context, id string) error {
	f.hit("DeleteAlarm")
	return f.deleteAlarmErr
}

var (
	_ FavoritesBackend = (*fakeBackend)(nil)
	_ HistoryBackend   = (*fakeBackend)(nil)
	_ PlayerBackend    = (*fakeBackend)(nil)
	_ AlarmBackend     = (*fakeBackend)(nil)
)

func memStore() storage.Store {
	return storage.NewMemoryStore()
}

func track(id, metaID, title string) model.Track {
	return model.Track{ID: id, MetaID: metaID, Title: title}
}
