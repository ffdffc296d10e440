// Package watcher observes a skhd config file for external changes.
// It watches both the file and its parent directory, because editors
// and the store's own atomic saves replace the inode via rename and a
// bare file watch dies with the old inode. Bursts of events within the
// debounce window coalesce into a single notification whose type
// reflects the file's final state.
package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/skhdtools/skhdctl/pkg/errors"
	"github.com/skhdtools/skhdctl/pkg/logging"
	"github.com/skhdtools/skhdctl/pkg/types"
)

const (
	defaultDebounce   = 300 * time.Millisecond
	defaultBufferSize = 16
)

// active enforces one watch per path per process. A second watch on the
// same path would double-deliver every change, so it is rejected.
var active = struct {
	sync.Mutex
	paths map[string]struct{}
}{paths: make(map[string]struct{})}

// Option adjusts a watcher at construction time.
type Option func(*options)

type options struct {
	debounce time.Duration
	buffer   int
}

// WithDebounce sets the coalescing window for change bursts.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// WithBufferSize sets the event channel capacity.
func WithBufferSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.buffer = n
		}
	}
}

// Watcher is one active watch on a config file.
type Watcher struct {
	path string
	opts options

	fw     *fsnotify.Watcher
	events chan types.FileEvent
	done   chan struct{}
	wg     sync.WaitGroup

	mu      sync.Mutex
	dropped int64
	closed  bool
}

// New establishes a watch on path. The file itself may not exist yet;
// its parent directory must. A second New on the same path fails with
// ErrWatchExists until the first watcher is closed.
func New(path string, opts ...Option) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrWatchFailed, "cannot resolve %s", path)
	}

	active.Lock()
	if _, taken := active.paths[absPath]; taken {
		active.Unlock()
		return nil, errors.Newf(errors.ErrWatchExists, "already watching %s", absPath)
	}
	active.paths[absPath] = struct{}{}
	active.Unlock()

	w, err := newWatcher(absPath, opts...)
	if err != nil {
		releasePath(absPath)
		return nil, err
	}
	return w, nil
}

func newWatcher(absPath string, opts ...Option) (*Watcher, error) {
	o := options{debounce: defaultDebounce, buffer: defaultBufferSize}
	for _, opt := range opts {
		opt(&o)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrWatchFailed, "failed to create watcher")
	}

	if err := fw.Add(filepath.Dir(absPath)); err != nil {
		fw.Close()
		return nil, errors.Wrapf(err, errors.ErrWatchFailed, "cannot watch %s", filepath.Dir(absPath))
	}
	// The direct file watch catches writes even when the directory
	// watch is slow; absence is fine, the directory watch covers
	// creation.
	if _, statErr := os.Stat(absPath); statErr == nil {
		if err := fw.Add(absPath); err != nil {
			logger := logging.GetLogger("watcher")
			logger.Warn().Err(err).Str("path", absPath).
				Msg("Could not watch file directly")
		}
	}

	w := &Watcher{
		path:   absPath,
		opts:   o,
		fw:     fw,
		events: make(chan types.FileEvent, o.buffer),
		done:   make(chan struct{}),
	}

	w.wg.Add(1)
	go w.loop()

	logger := logging.GetLogger("watcher")
	logger.Debug().
		Str("path", absPath).
		Dur("debounce", o.debounce).
		Msg("Watch established")
	return w, nil
}

// Path returns the watched file path.
func (w *Watcher) Path() string {
	return w.path
}

// Events returns the notification channel. It closes when the watcher
// is closed.
func (w *Watcher) Events() <-chan types.FileEvent {
	return w.events
}

// Dropped reports how many notifications were discarded because the
// consumer fell behind.
func (w *Watcher) Dropped() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dropped
}

// Close releases the watch and its registry slot. Safe to call twice.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	err := w.fw.Close()
	w.wg.Wait()
	close(w.events)
	releasePath(w.path)

	logger := logging.GetLogger("watcher")
	logger.Debug().Str("path", w.path).Msg("Watch closed")
	return err
}

func releasePath(absPath string) {
	active.Lock()
	delete(active.paths, absPath)
	active.Unlock()
}

// loop consumes raw fsnotify events, filters them down to the watched
// path, and debounces bursts into single notifications.
func (w *Watcher) loop() {
	defer w.wg.Done()
	logger := logging.GetLogger("watcher")

	debounce := time.NewTimer(w.opts.debounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	pending := false

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			pending = true
			if !debounce.Stop() {
				select {
				case <-debounce.C:
				default:
				}
			}
			debounce.Reset(w.opts.debounce)

		case <-debounce.C:
			if !pending {
				continue
			}
			pending = false
			w.emit(w.snapshot())

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			logger.Warn().Err(err).Str("path", w.path).Msg("Watch error")
		}
	}
}

// snapshot classifies the coalesced burst by the file's final state:
// whatever sequence of writes, renames and removals happened inside the
// window, what matters is whether the file is there now.
func (w *Watcher) snapshot() types.FileEvent {
	eventType := types.FileModified
	if _, err := os.Stat(w.path); err != nil {
		eventType = types.FileDeleted
	} else {
		// Re-arm the direct watch; a rename replaced the inode.
		_ = w.fw.Add(w.path)
	}
	return types.FileEvent{
		Path:      w.path,
		Type:      eventType,
		Timestamp: time.Now(),
	}
}

// emit delivers without ever blocking the loop; a full buffer means the
// consumer is behind and the notification is dropped with a count.
func (w *Watcher) emit(event types.FileEvent) {
	select {
	case w.events <- event:
	default:
		w.mu.Lock()
		w.dropped++
		dropped := w.dropped
		w.mu.Unlock()
		logger := logging.GetLogger("watcher")
		logger.Warn().
			Str("path", w.path).
			Int64("dropped", dropped).
			Msg("Event buffer full, dropping notification")
	}
}
