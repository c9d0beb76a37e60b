package storage

import (
	"testing"
	"time"
)

type snapshot struct {
	Items []int64 `json:"items"`
	Name  string  `json:"name"`
}

func TestFileStoreRoundTrip(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	var missing snapshot
	found, err := fs.Get("favoriteItems", &missing)
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Fatal("missing key reported as found")
	}

	want := snapshot{Items: []int64{3, 1, 2}, Name: "海浪"}
	if err := fs.Set("favoriteItems", want); err != nil {
		t.Fatal(err)
	}

	var got snapshot
	found, err = fs.Get("favoriteItems", &got)
	if err != nil {
		t.Fatal(err)
	}
	if !found || got.Name != want.Name || len(got.Items) != 3 || got.Items[0] != 3 {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	if err := fs.Delete("favoriteItems"); err != nil {
		t.Fatal(err)
	}
	found, err = fs.Get("favoriteItems", &got)
	if err != nil || found {
		t.Fatalf("after delete: found=%v err=%v", found, err)
	}
	// 重复删除不算错误
	if err := fs.Delete("favoriteItems"); err != nil {
		t.Fatal(err)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ms := NewMemoryStore()
	if err := ms.Set("k", snapshot{Name: "x"}); err != nil {
		t.Fatal(err)
	}
	var got snapshot
	found, err := ms.Get("k", &got)
	if err != nil || !found || got.Name != "x" {
		t.Fatalf("found=%v err=%v got=%+v", found, err, got)
	}
	if err := ms.Delete("k"); err != nil {
		t.Fatal(err)
	}
	if found, _ := ms.Get("k", &got); found {
		t.Fatal("key survived delete")
	}
}

func TestWatchDirReportsChangedKey(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	w, err := WatchDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := fs.Set("historyItems", snapshot{Name: "雨声"}); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case key := <-w.Keys():
			if key == "historyItems" {
				return
			}
		case <-deadline:
			t.Fatal("no change event for historyItems")
		}
	}
}
