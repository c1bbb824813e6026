// Package watcher owns the filesystem watches for registered workspaces.
// It coalesces bursts of events in a workspace's companion directory into a
// single debounced refresh, with every workspace on its own independent
// timer.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// RefreshFunc is invoked with a workspace id once its companion directory
// has been quiet for the debounce window.
type RefreshFunc func(workspaceID string)

// Watcher multiplexes one fsnotify watcher across all workspaces. Each
// workspace watches its root directory (which always exists) plus the
// companion directory when present; a companion directory created later is
// picked up through the root watch and begins emitting events immediately.
type Watcher struct {
	log         zerolog.Logger
	fsw         *fsnotify.Watcher
	contractDir string
	debounce    time.Duration
	onRefresh   RefreshFunc

	mu     sync.Mutex
	roots  map[string]string      // workspace id -> root path
	byDir  map[string]string      // watched directory -> workspace id
	timers map[string]*time.Timer // workspace id -> pending debounce timer

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a watcher. The run loop starts immediately; workspaces are
// attached with Watch.
func New(log zerolog.Logger, contractDir string, debounce time.Duration, onRefresh RefreshFunc) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		log:         log,
		fsw:         fsw,
		contractDir: contractDir,
		debounce:    debounce,
		onRefresh:   onRefresh,
		roots:       make(map[string]string),
		byDir:       make(map[string]string),
		timers:      make(map[string]*time.Timer),
		ctx:         ctx,
		cancel:      cancel,
	}

	go w.run()
	return w, nil
}

// Watch starts watching a workspace's companion directory. Watching an
// already-watched workspace is a no-op.
func (w *Watcher) Watch(workspaceID, rootPath string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.roots[workspaceID]; ok {
		return nil
	}

	// The root watch is what lets us observe the companion directory being
	// created after registration, the common case for a fresh workspace.
	if err := w.fsw.Add(rootPath); err != nil {
		return fmt.Errorf("failed to watch %s: %w", rootPath, err)
	}
	w.roots[workspaceID] = rootPath
	w.byDir[rootPath] = workspaceID

	companionDir := filepath.Join(rootPath, w.contractDir)
	if _, err := os.Stat(companionDir); err == nil {
		if err := w.fsw.Add(companionDir); err != nil {
			w.log.Warn().Err(err).Str("dir", companionDir).Msg("failed to watch companion directory")
		} else {
			w.byDir[companionDir] = workspaceID
		}
	}

	w.log.Info().Str("workspace", workspaceID).Str("root", rootPath).Msg("watching workspace")
	return nil
}

// Unwatch tears down a workspace's watches and cancels any pending
// debounce timer. Other workspaces are unaffected.
func (w *Watcher) Unwatch(workspaceID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.unwatchLocked(workspaceID)
}

func (w *Watcher) unwatchLocked(workspaceID string) {
	if t, ok := w.timers[workspaceID]; ok {
		t.Stop()
		delete(w.timers, workspaceID)
	}

	rootPath, ok := w.roots[workspaceID]
	if !ok {
		return
	}
	delete(w.roots, workspaceID)

	for dir, id := range w.byDir {
		if id == workspaceID {
			// Remove errors are expected when the directory is already gone.
			_ = w.fsw.Remove(dir)
			delete(w.byDir, dir)
		}
	}

	w.log.Info().Str("workspace", workspaceID).Str("root", rootPath).Msg("stopped watching workspace")
}

// Close stops all watches, cancels all pending timers and releases the
// underlying fsnotify resources. Debounce callbacks that fire during
// shutdown detect the torn-down state and no-op.
func (w *Watcher) Close() {
	w.cancel()

	w.mu.Lock()
	for id := range w.roots {
		w.unwatchLocked(id)
	}
	w.mu.Unlock()

	w.fsw.Close()
}

// run processes filesystem events until Close.
func (w *Watcher) run() {
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("watcher error")
		}
	}
}

// handleEvent maps an event to its workspace and schedules a debounced
// refresh when the event touches the companion directory. Which specific
// file changed does not matter; the refresh re-reads everything.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	w.mu.Lock()

	dir := filepath.Dir(event.Name)
	workspaceID, ok := w.byDir[dir]
	if !ok {
		w.mu.Unlock()
		return
	}

	rootPath := w.roots[workspaceID]
	companionDir := filepath.Join(rootPath, w.contractDir)

	switch {
	case event.Name == companionDir:
		// The companion directory itself appeared or disappeared.
		if event.Has(fsnotify.Create) {
			if err := w.fsw.Add(companionDir); err != nil {
				w.log.Warn().Err(err).Str("dir", companionDir).Msg("failed to watch companion directory")
			} else {
				w.byDir[companionDir] = workspaceID
			}
		} else if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
			_ = w.fsw.Remove(companionDir)
			delete(w.byDir, companionDir)
		}
	case dir == companionDir:
		// A contract file changed.
	default:
		// Unrelated change elsewhere in the workspace root.
		w.mu.Unlock()
		return
	}

	w.scheduleRefreshLocked(workspaceID)
	w.mu.Unlock()
}

// scheduleRefreshLocked arms (or re-arms) the workspace's debounce timer.
// Trailing-edge only: the refresh fires once input has been quiet for the
// full window.
func (w *Watcher) scheduleRefreshLocked(workspaceID string) {
	if t, ok := w.timers[workspaceID]; ok {
		t.Stop()
	}
	w.timers[workspaceID] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, workspaceID)
		w.mu.Unlock()

		if w.ctx.Err() != nil {
			return
		}
		w.onRefresh(workspaceID)
	})
}
