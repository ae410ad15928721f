// Package watcher reports writes to a sqlite document store made by other
// processes.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ritzau/docgraph/pkg/logging"
)

// batchWindow groups the burst of events a single transaction produces.
const batchWindow = 100 * time.Millisecond

// ChangeEvent represents a batch of file system changes
type ChangeEvent struct {
	Paths     []string
	Timestamp time.Time
}

// StoreWatcher watches a sqlite database file and its -wal, -shm and
// -journal companions.
type StoreWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	names   map[string]bool
	events  chan ChangeEvent
	once    sync.Once
}

// NewStoreWatcher creates a watcher for the database at path. The file
// itself need not exist yet; its directory must.
func NewStoreWatcher(path string) (*StoreWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	base := filepath.Base(abs)
	return &StoreWatcher{
		watcher: watcher,
		path:    abs,
		names: map[string]bool{
			base:              true,
			base + "-wal":     true,
			base + "-shm":     true,
			base + "-journal": true,
		},
		events: make(chan ChangeEvent, 100),
	}, nil
}

// Path returns the absolute path of the watched database.
func (sw *StoreWatcher) Path() string {
	return sw.path
}

// Start begins watching. fsnotify cannot watch a file that may be replaced,
// so the containing directory is watched and events are filtered by name.
func (sw *StoreWatcher) Start(ctx context.Context) error {
	dir := filepath.Dir(sw.path)
	if err := sw.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	logging.Info("started watching store", "path", sw.path)
	go sw.processEvents(ctx)
	return nil
}

func (sw *StoreWatcher) relevant(event fsnotify.Event) bool {
	if !sw.names[filepath.Base(event.Name)] {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

// processEvents batches relevant events until the store has been quiet for
// batchWindow.
func (sw *StoreWatcher) processEvents(ctx context.Context) {
	defer close(sw.events)

	var pending []string
	seen := make(map[string]bool)

	flushTimer := time.NewTimer(batchWindow)
	flushTimer.Stop()

	flush := func() {
		if len(pending) == 0 {
			return
		}
		select {
		case sw.events <- ChangeEvent{Paths: pending, Timestamp: time.Now()}:
		case <-ctx.Done():
		}
		pending = nil
		seen = make(map[string]bool)
	}

	for {
		select {
		case <-ctx.Done():
			sw.Stop()
			return

		case event, ok := <-sw.watcher.Events:
			if !ok {
				flush()
				return
			}
			if !sw.relevant(event) {
				continue
			}
			logging.Trace("store file event", "path", event.Name, "op", event.Op.String())
			if !seen[event.Name] {
				seen[event.Name] = true
				pending = append(pending, event.Name)
			}
			flushTimer.Reset(batchWindow)

		case <-flushTimer.C:
			flush()

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

// Events returns the channel of change events. It is closed once the
// watcher stops.
func (sw *StoreWatcher) Events() <-chan ChangeEvent {
	return sw.events
}

// Stop stops the watcher. It is safe to call more than once.
func (sw *StoreWatcher) Stop() error {
	var err error
	sw.once.Do(func() {
		err = sw.watcher.Close()
	})
	return err
}
