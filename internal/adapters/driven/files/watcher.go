package files

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/profyt7/carelinkai-sub003/internal/logger"
)

// DefaultSettleDelay is how long a file must stay unchanged before it is
// reported, so partially copied files are not picked up.
const DefaultSettleDelay = 500 * time.Millisecond

// DropFolder reports files created or written in a directory once they
// settle. Hidden and temporary files are ignored.
type DropFolder struct {
	dir    string
	settle time.Duration
}

// NewDropFolder creates a watcher for dir.
func NewDropFolder(dir string, settle time.Duration) (*DropFolder, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("drop folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("drop folder: %s is not a directory", dir)
	}
	if settle <= 0 {
		settle = DefaultSettleDelay
	}
	return &DropFolder{dir: dir, settle: settle}, nil
}

// Watch sends settled paths on the returned channel until ctx is cancelled.
// The channel is closed when watching stops.
func (d *DropFolder) Watch(ctx context.Context) (<-chan string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(d.dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", d.dir, err)
	}

	out := make(chan string)
	go d.run(ctx, watcher, out)
	logger.Info("Watching %s for new files", d.dir)
	return out, nil
}

func (d *DropFolder) run(ctx context.Context, watcher *fsnotify.Watcher, out chan<- string) {
	var (
		mu     sync.Mutex
		timers = make(map[string]*time.Timer)
		wg     sync.WaitGroup
	)
	defer func() {
		mu.Lock()
		for _, t := range timers {
			if t.Stop() {
				wg.Done()
			}
		}
		mu.Unlock()
		wg.Wait()
		_ = watcher.Close()
		close(out)
	}()

	schedule := func(path string) {
		var t *time.Timer
		t = time.AfterFunc(d.settle, func() {
			defer wg.Done()
			mu.Lock()
			if timers[path] != t {
				mu.Unlock()
				return
			}
			delete(timers, path)
			mu.Unlock()

			if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
				return
			}
			select {
			case out <- path:
			case <-ctx.Done():
			}
		})
		timers[path] = t
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if ignored(event.Name) {
				continue
			}

			mu.Lock()
			if t, ok := timers[event.Name]; ok && t.Stop() {
				// Restart the settle period of a still-pending file.
				wg.Done()
			}
			wg.Add(1)
			schedule(event.Name)
			mu.Unlock()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("fsnotify error: %v", err)
		}
	}
}

// ignored skips hidden files and common partial-download suffixes.
func ignored(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~") {
		return true
	}
	for _, suffix := range []string{".tmp", ".part", ".crdownload", ".swp"} {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	return false
}
