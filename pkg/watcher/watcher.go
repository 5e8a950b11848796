// Package watcher monitors a dive log file for external changes, so the UI
// can reload when a sync tool or another process rewrites the log.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultPollInterval is the default stat interval in polling mode.
const DefaultPollInterval = 2 * time.Second

// forcePollEnv switches every watcher to polling mode, for setups where
// inotify is available but known to be unreliable.
const forcePollEnv = "DL_FORCE_POLL"

var (
	ErrFileRemoved    = errors.New("watched file was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceDuration sets how long a burst of writes is coalesced before
// one change notification fires.
func WithDebounceDuration(d time.Duration) Option {
	return func(w *Watcher) { w.debounceDuration = d }
}

// WithPollInterval sets the stat interval for polling mode.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) { w.pollInterval = d }
}

// WithOnError sets the callback invoked when the watched file disappears or
// becomes unreadable.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

// WithForcePoll skips fsnotify and polls unconditionally.
func WithForcePoll(force bool) Option {
	return func(w *Watcher) { w.forcePoll = force }
}

// Watcher watches a single file, preferring fsnotify and falling back to
// mtime/size polling on remote filesystems or when inotify setup fails.
// Changes are delivered on the Changed channel after debouncing.
type Watcher struct {
	path             string
	debounceDuration time.Duration
	pollInterval     time.Duration
	onError          func(error)
	forcePoll        bool
	fsType           FilesystemType

	notifier  *fsnotify.Watcher
	debouncer *Debouncer
	polling   bool
	prevMtime time.Time
	prevSize  int64

	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	mu       sync.RWMutex
	changeCh chan struct{}
}

// NewWatcher creates a watcher for the given path. The path is resolved to
// an absolute one; the file does not have to exist yet.
func NewWatcher(path string, opts ...Option) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:             absPath,
		debounceDuration: DefaultDebounceDuration,
		pollInterval:     DefaultPollInterval,
		onError:          func(error) {},
		changeCh:         make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.debounceDuration)
	return w, nil
}

// Start begins watching. It decides between fsnotify and polling once, up
// front: remote filesystems, the DL_FORCE_POLL env var and WithForcePoll all
// select polling.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}

	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.fsType = DetectFilesystemType(w.path)
	w.polling = w.forcePoll || envBool(forcePollEnv) || isRemoteFilesystem(w.fsType)

	if err := w.snapshotFile(); err != nil {
		return err
	}

	if !w.polling && !w.startNotifier() {
		w.polling = true
	}
	if w.polling {
		go w.runPoll()
	}

	w.started = true
	return nil
}

// snapshotFile records the file's current mtime and size as the polling
// baseline. A missing file is fine; permission errors are not.
func (w *Watcher) snapshotFile() error {
	info, err := os.Stat(w.path)
	if err != nil {
		if os.IsPermission(err) {
			return ErrPermission
		}
		w.prevMtime = time.Time{}
		w.prevSize = 0
		return nil
	}
	w.prevMtime = info.ModTime()
	w.prevSize = info.Size()
	return nil
}

// startNotifier wires up fsnotify on the parent directory. Watching the
// directory instead of the file itself survives atomic rename-over writes.
func (w *Watcher) startNotifier() bool {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return false
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return false
	}
	w.notifier = fsw
	go w.runNotify(fsw)
	return true
}

// Stop shuts the watcher down. The Changed channel stays open: closing it
// would race with in-flight signals, and consumers blocked on it are torn
// down with the program anyway.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}
	if w.cancel != nil {
		w.cancel()
	}
	if w.notifier != nil {
		w.notifier.Close()
		w.notifier = nil
	}
	w.debouncer.Cancel()
	w.started = false
}

// IsPolling reports whether the watcher runs in polling mode.
func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.polling
}

// IsStarted reports whether the watcher is running.
func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.started
}

// Changed returns the channel that receives a signal after each debounced
// file change.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changeCh
}

// Path returns the absolute watched path.
func (w *Watcher) Path() string {
	return w.path
}

// FilesystemType returns the classification made at Start time.
func (w *Watcher) FilesystemType() FilesystemType {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.fsType
}

// PollInterval returns the configured polling interval.
func (w *Watcher) PollInterval() time.Duration {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.pollInterval
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

// runNotify consumes fsnotify events, keeping only those for the watched
// file. fsw is passed in so the loop never touches w.notifier after Stop.
func (w *Watcher) runNotify(fsw *fsnotify.Watcher) {
	name := filepath.Base(w.path)
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			switch {
			case event.Op&fsnotify.Remove != 0:
				w.onError(ErrFileRemoved)
			case event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0:
				w.debouncer.Trigger(w.signal)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

// runPoll stats the file on a ticker and signals when mtime or size moved.
func (w *Watcher) runPoll() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			info, err := os.Stat(w.path)
			if err != nil {
				w.reportStatError(err)
				continue
			}

			w.mu.Lock()
			moved := info.ModTime().After(w.prevMtime) || info.Size() != w.prevSize
			if moved {
				w.prevMtime = info.ModTime()
				w.prevSize = info.Size()
			}
			w.mu.Unlock()

			if moved {
				w.debouncer.Trigger(w.signal)
			}
		}
	}
}

func (w *Watcher) reportStatError(err error) {
	switch {
	case os.IsNotExist(err):
		// Only meaningful if there was a file to lose.
		w.mu.RLock()
		hadFile := !w.prevMtime.IsZero()
		w.mu.RUnlock()
		if hadFile {
			w.onError(ErrFileRemoved)
		}
	case os.IsPermission(err):
		w.onError(ErrPermission)
	default:
		w.onError(err)
	}
}

// signal delivers one change notification. The send never blocks; a pending
// signal the consumer has not drained yet already covers this change.
func (w *Watcher) signal() {
	w.mu.RLock()
	started := w.started
	w.mu.RUnlock()
	if !started {
		return
	}

	select {
	case w.changeCh <- struct{}{}:
	default:
	}
}
