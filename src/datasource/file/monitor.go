// monitor.go
package file

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileMonitor 监听目录中某个文件的写入/创建/改名事件
// 上游一般先写临时文件再改名, 所以监听的是所在目录
type FileMonitor struct {
	watchDir string
	target   string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	lastMod  time.Time
	mu       sync.Mutex
}

func NewFileMonitor(target string, debounce time.Duration) (*FileMonitor, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(abs)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	return &FileMonitor{
		watchDir: dir,
		target:   abs,
		debounce: debounce,
		watcher:  watcher,
	}, nil
}

// Close 停止监听
func (m *FileMonitor) Close() error {
	return m.watcher.Close()
}

// Watch 阻塞直到ctx结束; 目标文件稳定debounce时间后调用handler,
// 修改时间没有变化的事件会被忽略
func (m *FileMonitor) Watch(ctx context.Context, handler func(string)) error {
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-m.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != m.target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			// 每次事件重新计时
			if timer == nil {
				timer = time.NewTimer(m.debounce)
			} else {
				timer.Stop()
				timer.Reset(m.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			if m.changed() {
				handler(m.target)
			}
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

// changed 文件存在且修改时间比上次触发时新
func (m *FileMonitor) changed() bool {
	info, err := os.Stat(m.target)
	if err != nil {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !info.ModTime().After(m.lastMod) {
		return false
	}
	m.lastMod = info.ModTime()
	return true
}
