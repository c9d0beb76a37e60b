package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watcher 监视文件存储的状态目录。另一个运行时（小程序端和网页端
// 可能共用同一台设备上的状态目录）改写快照文件时，通过 Keys 通道
// 上报对应的存储键，调用方据此重新 load。
type Watcher struct {
	fsw  *fsnotify.Watcher
	keys chan string
	done chan struct{}
}

// WatchDir 开始监视一个状态目录。
func WatchDir(dir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &Watcher{
		fsw:  fsw,
		keys: make(chan string, 16),
		done: make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Keys 返回发生变更的存储键。
func (w *Watcher) Keys() <-chan string {
	return w.keys
}

// Close 停止监视。
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}

func (w *Watcher) loop() {
	defer close(w.keys)
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			name := filepath.Base(event.Name)
			if !strings.HasSuffix(name, ".json") {
				continue
			}
			key := strings.TrimSuffix(name, ".json")
			select {
			case w.keys <- key:
			default:
				// 消费方落后时丢弃事件，下一次写入会再触发
			}
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}
