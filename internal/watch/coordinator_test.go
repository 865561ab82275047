package watch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// fakeNotifier feeds scripted events into the coordinator.
type fakeNotifier struct {
	events chan Event
	errs   chan error

	mu      sync.Mutex
	updates [][]string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{
		events: make(chan Event),
		errs:   make(chan error, 1),
	}
}

func (f *fakeNotifier) Events() <-chan Event { return f.events }
func (f *fakeNotifier) Errors() <-chan error { return f.errs }
func (f *fakeNotifier) Close() error         { return nil }

func (f *fakeNotifier) Update(paths []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, append([]string(nil), paths...))
	return nil
}

func (f *fakeNotifier) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

// fakeBuilder counts builds and can block to simulate long builds.
type fakeBuilder struct {
	started chan struct{} // signalled when a build starts
	gate    chan struct{} // when non-nil, builds block until a token arrives
	results []error       // per-build outcome, nil beyond the end

	mu    sync.Mutex
	calls int

	watch []string
}

func (b *fakeBuilder) Build(context.Context) error {
	b.mu.Lock()
	i := b.calls
	b.calls++
	b.mu.Unlock()

	if b.started != nil {
		b.started <- struct{}{}
	}
	if b.gate != nil {
		<-b.gate
	}
	if i < len(b.results) {
		return b.results[i]
	}
	return nil
}

func (b *fakeBuilder) WatchList() ([]string, error) { return b.watch, nil }

func (b *fakeBuilder) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

// testCoordinator starts a coordinator with a short debounce and returns a
// channel carrying Run's result.
func testCoordinator(t *testing.T, b *fakeBuilder, n *fakeNotifier, onResult func(error)) (*Coordinator, context.CancelFunc, chan error) {
	t.Helper()
	c := New(b, n, Config{
		Debounce: 5 * time.Millisecond,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		OnResult: onResult,
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	t.Cleanup(cancel)
	return c, cancel, done
}

func waitRun(t *testing.T, done chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("coordinator did not stop")
		return nil
	}
}

func TestRun_DebounceCoalescesBurst(t *testing.T) {
	b := &fakeBuilder{started: make(chan struct{}, 8)}
	n := newFakeNotifier()
	c, cancel, done := testCoordinator(t, b, n, nil)

	// A burst of events within the debounce window.
	for i := 0; i < 5; i++ {
		n.events <- Event{Path: "main.md"}
	}

	<-b.started
	// Give a second build every chance to start if coalescing were broken.
	time.Sleep(50 * time.Millisecond)

	if got := b.count(); got != 1 {
		t.Errorf("builds = %d, want 1", got)
	}

	cancel()
	if err := waitRun(t, done); err != nil {
		t.Errorf("Run returned %v", err)
	}
	if !c.LastBuildSucceeded() {
		t.Error("LastBuildSucceeded = false")
	}
}

func TestRun_SingleFlightWithTrailingRerun(t *testing.T) {
	b := &fakeBuilder{started: make(chan struct{}, 8), gate: make(chan struct{})}
	n := newFakeNotifier()
	_, cancel, done := testCoordinator(t, b, n, nil)

	n.events <- Event{Path: "main.md"}
	<-b.started // first build in flight

	// Events during the build must coalesce into exactly one rerun.
	for i := 0; i < 4; i++ {
		n.events <- Event{Path: "chapters/one.md"}
	}

	b.gate <- struct{}{} // finish first build
	<-b.started          // the owed rerun starts after a fresh debounce
	b.gate <- struct{}{} // finish it

	time.Sleep(50 * time.Millisecond)
	if got := b.count(); got != 2 {
		t.Errorf("builds = %d, want 2 (one in flight + one trailing rerun)", got)
	}

	cancel()
	if err := waitRun(t, done); err != nil {
		t.Errorf("Run returned %v", err)
	}
}

func TestRun_BuildFailureKeepsWatcherAlive(t *testing.T) {
	renderErr := errors.New("render failed")
	b := &fakeBuilder{started: make(chan struct{}, 8), results: []error{renderErr, nil}}
	n := newFakeNotifier()

	results := make(chan error, 8)
	c, cancel, done := testCoordinator(t, b, n, func(err error) { results <- err })

	n.events <- Event{Path: "main.md"}
	<-b.started
	if err := <-results; !errors.Is(err, renderErr) {
		t.Errorf("first result = %v, want render failure", err)
	}

	// The coordinator is still alive: the next edit triggers a clean build.
	n.events <- Event{Path: "main.md"}
	<-b.started
	if err := <-results; err != nil {
		t.Errorf("second result = %v, want success", err)
	}

	cancel()
	if err := waitRun(t, done); err != nil {
		t.Errorf("Run returned %v", err)
	}
	if !c.LastBuildSucceeded() {
		t.Error("LastBuildSucceeded = false after recovering build")
	}
	if c.Builds() != 2 {
		t.Errorf("Builds = %d, want 2", c.Builds())
	}
}

func TestRun_WatcherErrorIsFatal(t *testing.T) {
	b := &fakeBuilder{}
	n := newFakeNotifier()
	_, _, done := testCoordinator(t, b, n, nil)

	n.errs <- errors.New("inotify limit reached")

	err := waitRun(t, done)
	if !errors.Is(err, ErrWatcher) {
		t.Errorf("Run returned %v, want ErrWatcher", err)
	}
}

func TestRun_StopLetsInflightBuildFinish(t *testing.T) {
	b := &fakeBuilder{started: make(chan struct{}, 8), gate: make(chan struct{})}
	n := newFakeNotifier()
	_, cancel, done := testCoordinator(t, b, n, nil)

	n.events <- Event{Path: "main.md"}
	<-b.started // build in flight

	cancel()

	select {
	case <-done:
		t.Fatal("Run returned while a build was in flight")
	case <-time.After(20 * time.Millisecond):
	}

	b.gate <- struct{}{} // let the build finish

	if err := waitRun(t, done); err != nil {
		t.Errorf("Run returned %v", err)
	}
	if got := b.count(); got != 1 {
		t.Errorf("builds = %d, want 1", got)
	}
}

func TestRun_RefreshesWatchSetAfterBuild(t *testing.T) {
	b := &fakeBuilder{
		started: make(chan struct{}, 8),
		watch:   []string{"main.md", "chapters/new.md"},
	}
	n := newFakeNotifier()
	_, cancel, done := testCoordinator(t, b, n, nil)

	n.events <- Event{Path: "main.md"}
	<-b.started

	// Wait for the post-build refresh.
	deadline := time.After(2 * time.Second)
	for n.updateCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("watch set never refreshed")
		case <-time.After(5 * time.Millisecond):
		}
	}

	n.mu.Lock()
	last := n.updates[len(n.updates)-1]
	n.mu.Unlock()
	if len(last) != 2 || last[1] != "chapters/new.md" {
		t.Errorf("refreshed watch set = %v", last)
	}

	cancel()
	if err := waitRun(t, done); err != nil {
		t.Errorf("Run returned %v", err)
	}
}

func TestRun_ImmediateStop(t *testing.T) {
	b := &fakeBuilder{}
	n := newFakeNotifier()
	c, cancel, done := testCoordinator(t, b, n, nil)

	cancel()
	if err := waitRun(t, done); err != nil {
		t.Errorf("Run returned %v", err)
	}
	if c.Builds() != 0 {
		t.Errorf("Builds = %d, want 0", c.Builds())
	}
	if !c.LastBuildSucceeded() {
		t.Error("LastBuildSucceeded = false with no builds")
	}
}
