// Package watch notifies the interactive shell when files in an outputs directory change
// outside the tool, so file lists can be re-read.
package watch

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dpshade/prompt-vault/internal/errors"
)

// DefaultDebounce collapses editor save bursts into one notification.
const DefaultDebounce = 300 * time.Millisecond

// OutputsWatcher watches one outputs directory for .md changes
type OutputsWatcher struct {
	dir            string
	watcher        *fsnotify.Watcher
	events         chan struct{}
	debouncePeriod time.Duration

	mu            sync.Mutex
	debounceTimer *time.Timer
	ownWrites     map[string]time.Time
	pending       map[string]struct{}
	closed        bool
	done          chan struct{}
}

// NewOutputsWatcher starts watching dir. The directory must exist.
func NewOutputsWatcher(dir string, debounce time.Duration) (*OutputsWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, errors.Wrapf(err, "failed to watch %s", dir)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	ow := &OutputsWatcher{
		dir:            dir,
		watcher:        w,
		events:         make(chan struct{}, 1),
		debouncePeriod: debounce,
		ownWrites:      make(map[string]time.Time),
		pending:        make(map[string]struct{}),
		done:           make(chan struct{}),
	}
	go ow.loop()
	return ow, nil
}

// Dir returns the watched directory.
func (ow *OutputsWatcher) Dir() string {
	return ow.dir
}

// Events delivers one value per debounced batch of external changes. It is closed by Close.
func (ow *OutputsWatcher) Events() <-chan struct{} {
	return ow.events
}

// MarkOwnWrite suppresses events for path, which the tool itself wrote. It may be
// called before the write or right after it, as long as it lands inside the debounce window.
func (ow *OutputsWatcher) MarkOwnWrite(path string) {
	ow.mu.Lock()
	defer ow.mu.Unlock()
	ow.ownWrites[filepath.Clean(path)] = time.Now().Add(ow.debouncePeriod * 2)
}

// isOwnWriteLocked expects ow.mu to be held.
func (ow *OutputsWatcher) isOwnWriteLocked(path string) bool {
	until, ok := ow.ownWrites[path]
	if !ok {
		return false
	}
	if time.Now().After(until) {
		delete(ow.ownWrites, path)
		return false
	}
	return true
}

func (ow *OutputsWatcher) loop() {
	for {
		select {
		case <-ow.done:
			return
		case event, ok := <-ow.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".md") {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				ow.schedule(filepath.Clean(event.Name))
			}
		case _, ok := <-ow.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (ow *OutputsWatcher) schedule(path string) {
	ow.mu.Lock()
	defer ow.mu.Unlock()
	if ow.closed {
		return
	}
	ow.pending[path] = struct{}{}
	if ow.debounceTimer != nil {
		ow.debounceTimer.Stop()
	}
	ow.debounceTimer = time.AfterFunc(ow.debouncePeriod, ow.emit)
}

func (ow *OutputsWatcher) emit() {
	ow.mu.Lock()
	defer ow.mu.Unlock()
	if ow.closed {
		return
	}

	external := false
	for path := range ow.pending {
		if !ow.isOwnWriteLocked(path) {
			external = true
		}
		delete(ow.pending, path)
	}
	if !external {
		return
	}

	select {
	case ow.events <- struct{}{}:
	default:
		// a notification is already pending
	}
}

// Close stops watching and closes the Events channel.
func (ow *OutputsWatcher) Close() error {
	ow.mu.Lock()
	if ow.closed {
		ow.mu.Unlock()
		return nil
	}
	ow.closed = true
	if ow.debounceTimer != nil {
		ow.debounceTimer.Stop()
	}
	close(ow.done)
	close(ow.events)
	ow.mu.Unlock()
	return ow.watcher.Close()
}
