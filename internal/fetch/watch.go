package fetch

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Invalidator is notified when a watched payload file changes.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Watcher invalidates the payload cache when a local payload file changes, so
// the next load reads the new file instead of a stale cached copy.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	target   Invalidator
	files    map[string]bool
	debounce time.Duration
	log      *zap.Logger
	pending  bool
	doneCh   chan struct{}
	running  bool

	// OnInvalidate, when set, runs after each invalidation.
	OnInvalidate func()
}

// NewWatcher watches the local sources among paths. Remote sources are ignored.
// The parent directory of each file is watched so that files replaced by an
// atomic rename are still seen.
func NewWatcher(paths []string, target Invalidator, log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fsw,
		target:   target,
		files:    make(map[string]bool),
		debounce: 200 * time.Millisecond,
		log:      log,
		doneCh:   make(chan struct{}),
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		if IsRemote(p) {
			continue
		}
		abs, err := filepath.Abs(filepath.Clean(trimFileScheme(p)))
		if err != nil {
			continue
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	var addErrs []error
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			addErrs = append(addErrs, err)
			log.Warn("cannot watch payload directory", zap.String("dir", dir), zap.Error(err))
		}
	}
	if len(dirs) > 0 && len(addErrs) == len(dirs) {
		_ = fsw.Close()
		return nil, errors.Join(addErrs...)
	}

	return w, nil
}

// Watching reports how many files are being watched.
func (w *Watcher) Watching() int {
	return len(w.files)
}

// Run processes file events until ctx is cancelled or Close is called.
func (w *Watcher) Run(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()
	defer close(w.doneCh)

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("payload watcher error", zap.Error(err))

		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

// Close stops the watcher and waits for Run to return when it was started.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	w.mu.Lock()
	running := w.running
	w.mu.Unlock()
	if running {
		<-w.doneCh
	}
	return err
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !w.files[filepath.Clean(event.Name)] {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	w.log.Debug("payload file changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
	w.mu.Lock()
	w.pending = true
	w.mu.Unlock()
}

func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	pending := w.pending
	w.pending = false
	w.mu.Unlock()
	if !pending {
		return
	}

	if err := w.target.Invalidate(ctx); err != nil {
		w.log.Warn("failed to invalidate payload cache", zap.Error(err))
		return
	}
	w.log.Info("payload file changed, cache invalidated")
	if w.OnInvalidate != nil {
		w.OnInvalidate()
	}
}

func trimFileScheme(p string) string {
	return strings.TrimPrefix(p, "file://")
}
