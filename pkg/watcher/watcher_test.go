package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func writeLog(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func tempLog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dives.jsonl")
	writeLog(t, path, "initial")
	return path
}

// fastOpts keeps the watcher's timers short enough for tests.
func fastOpts(extra ...Option) []Option {
	opts := []Option{
		WithDebounceDuration(20 * time.Millisecond),
		WithPollInterval(30 * time.Millisecond),
	}
	return append(opts, extra...)
}

func awaitChange(t *testing.T, w *Watcher, timeout time.Duration) {
	t.Helper()
	select {
	case <-w.Changed():
	case <-time.After(timeout):
		t.Fatal("timeout waiting for change notification")
	}
}

func TestDebouncer_CoalescesRapidTriggers(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var fired atomic.Int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() { fired.Add(1) })
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(100 * time.Millisecond)

	if n := fired.Load(); n != 1 {
		t.Errorf("burst of 10 triggers fired %d times, want 1", n)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var fired atomic.Bool
	d.Trigger(func() { fired.Store(true) })
	d.Cancel()
	time.Sleep(100 * time.Millisecond)

	if fired.Load() {
		t.Error("cancelled trigger still fired")
	}
}

func TestDebouncer_DefaultDuration(t *testing.T) {
	d := NewDebouncer(0)
	if d.Duration() != DefaultDebounceDuration {
		t.Errorf("Duration = %v, want %v", d.Duration(), DefaultDebounceDuration)
	}
}

func TestWatcher_DetectsFileChange(t *testing.T) {
	path := tempLog(t)

	w, err := NewWatcher(path, fastOpts()...)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	time.Sleep(50 * time.Millisecond) // let the notifier settle
	writeLog(t, path, "modified content")

	awaitChange(t, w, time.Second)
}

func TestWatcher_PollingFallback(t *testing.T) {
	path := tempLog(t)

	w, err := NewWatcher(path, fastOpts(WithForcePoll(true))...)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Fatal("forced poll did not select polling mode")
	}

	writeLog(t, path, "modified via polling")
	awaitChange(t, w, time.Second)
}

func TestWatcher_EnvForcePoll(t *testing.T) {
	t.Setenv("DL_FORCE_POLL", "true")

	w, err := NewWatcher(tempLog(t), fastOpts()...)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Fatal("DL_FORCE_POLL did not select polling mode")
	}
}

func TestWatcher_RemoteFilesystem_UsesPolling(t *testing.T) {
	orig := detectFilesystemTypeFunc
	detectFilesystemTypeFunc = func(string) FilesystemType { return FSTypeNFS }
	t.Cleanup(func() { detectFilesystemTypeFunc = orig })

	w, err := NewWatcher(tempLog(t), fastOpts()...)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Fatal("remote filesystem did not select polling mode")
	}
	if got := w.FilesystemType(); got != FSTypeNFS {
		t.Fatalf("FilesystemType = %v, want %v", got, FSTypeNFS)
	}
}

func TestWatcher_FileRemoved(t *testing.T) {
	path := tempLog(t)

	var (
		mu      sync.Mutex
		lastErr error
	)
	w, err := NewWatcher(path, fastOpts(
		WithForcePoll(true),
		WithOnError(func(err error) {
			mu.Lock()
			lastErr = err
			mu.Unlock()
		}),
	)...)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	got := lastErr
	mu.Unlock()
	if got != ErrFileRemoved {
		t.Errorf("error = %v, want ErrFileRemoved", got)
	}
}

func TestWatcher_StartStop(t *testing.T) {
	w, err := NewWatcher(tempLog(t))
	if err != nil {
		t.Fatal(err)
	}

	if w.IsStarted() {
		t.Error("fresh watcher reports started")
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	if !w.IsStarted() {
		t.Error("started watcher reports stopped")
	}
	if err := w.Start(); err != ErrAlreadyStarted {
		t.Errorf("second Start = %v, want ErrAlreadyStarted", err)
	}

	w.Stop()
	if w.IsStarted() {
		t.Error("stopped watcher reports started")
	}
	w.Stop() // second Stop is a no-op
}

func TestWatcher_Path(t *testing.T) {
	path := tempLog(t)
	w, err := NewWatcher(path)
	if err != nil {
		t.Fatal(err)
	}
	abs, _ := filepath.Abs(path)
	if w.Path() != abs {
		t.Errorf("Path = %s, want %s", w.Path(), abs)
	}
}

func TestWatcher_PollInterval(t *testing.T) {
	w, err := NewWatcher(tempLog(t), WithPollInterval(500*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if got := w.PollInterval(); got != 500*time.Millisecond {
		t.Errorf("PollInterval = %v, want 500ms", got)
	}
}

func TestIsRemoteFilesystem(t *testing.T) {
	tests := []struct {
		fsType FilesystemType
		remote bool
	}{
		{FSTypeUnknown, false},
		{FSTypeLocal, false},
		{FSTypeNFS, true},
		{FSTypeSMB, true},
		{FSTypeFUSE, true},
	}
	for _, tc := range tests {
		if got := isRemoteFilesystem(tc.fsType); got != tc.remote {
			t.Errorf("isRemoteFilesystem(%v) = %v, want %v", tc.fsType, got, tc.remote)
		}
	}
}

func TestEnvBool(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{"yes", true},
		{"y", true},
		{"on", true},
		{"0", false},
		{"false", false},
		{"no", false},
		{"", false},
		{"invalid", false},
	}
	for _, tc := range tests {
		t.Run(tc.value, func(t *testing.T) {
			t.Setenv("TEST_ENV_BOOL", tc.value)
			if got := envBool("TEST_ENV_BOOL"); got != tc.want {
				t.Errorf("envBool(%q) = %v, want %v", tc.value, got, tc.want)
			}
		})
	}
}

func TestEnvBool_Unset(t *testing.T) {
	os.Unsetenv("TEST_UNSET_VAR")
	if envBool("TEST_UNSET_VAR") {
		t.Error("unset variable reported true")
	}
}

func TestDetectFilesystemType_EmptyPath(t *testing.T) {
	if got := DetectFilesystemType(""); got != FSTypeUnknown {
		t.Errorf("DetectFilesystemType(\"\") = %v, want FSTypeUnknown", got)
	}
}

func TestDetectFilesystemType_NonExistentPath(t *testing.T) {
	// Falls back to classifying the parent directory; must not panic.
	_ = DetectFilesystemType(filepath.Join(t.TempDir(), "does_not_exist.jsonl"))
}
