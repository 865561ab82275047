package watch

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Event is a file-change notification for a watched file.
type Event struct {
	Path string
}

// Notifier feeds file-change events into the Coordinator. The production
// implementation wraps fsnotify; tests inject a fake.
type Notifier interface {
	Events() <-chan Event
	Errors() <-chan error

	// Update replaces the watched file set.
	Update(paths []string) error

	Close() error
}

// FSNotifier watches a set of files through their parent directories.
// Directory-level watches survive the rename-replace dance most editors do
// on save; events are then filtered down to exactly the watched files, so
// unrelated churn (build output, sibling files) never triggers a rebuild.
type FSNotifier struct {
	watcher *fsnotify.Watcher
	events  chan Event
	errs    chan error
	done    chan struct{}

	mu    sync.Mutex
	files map[string]bool // watched files, absolute cleaned paths
	dirs  map[string]bool // directories currently registered with fsnotify
}

// Compile-time interface check
var _ Notifier = (*FSNotifier)(nil)

// NewFSNotifier creates a notifier watching the given files.
func NewFSNotifier(paths []string) (*FSNotifier, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatcher, err)
	}

	n := &FSNotifier{
		watcher: w,
		events:  make(chan Event),
		errs:    make(chan error, 1),
		done:    make(chan struct{}),
		files:   make(map[string]bool),
		dirs:    make(map[string]bool),
	}

	if err := n.Update(paths); err != nil {
		_ = w.Close()
		return nil, err
	}

	go n.loop()
	return n, nil
}

func (n *FSNotifier) Events() <-chan Event { return n.events }
func (n *FSNotifier) Errors() <-chan error { return n.errs }

// Update replaces the watched file set, adding and removing directory
// watches to match.
func (n *FSNotifier) Update(paths []string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	files := make(map[string]bool, len(paths))
	dirs := make(map[string]bool, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("%w: resolving %s: %v", ErrWatcher, p, err)
		}
		files[filepath.Clean(abs)] = true
		dirs[filepath.Dir(abs)] = true
	}

	for dir := range dirs {
		if n.dirs[dir] {
			continue
		}
		if err := n.watcher.Add(dir); err != nil {
			return fmt.Errorf("%w: watching %s: %v", ErrWatcher, dir, err)
		}
	}
	for dir := range n.dirs {
		if !dirs[dir] {
			// Best effort: the directory may already be gone.
			_ = n.watcher.Remove(dir)
		}
	}

	n.files = files
	n.dirs = dirs
	return nil
}

// Close stops the notifier and releases all watch handles.
func (n *FSNotifier) Close() error {
	close(n.done)
	return n.watcher.Close()
}

// loop filters raw fsnotify events down to watched files.
func (n *FSNotifier) loop() {
	defer close(n.events)
	for {
		select {
		case <-n.done:
			return
		case ev, ok := <-n.watcher.Events:
			if !ok {
				return
			}
			if !n.relevant(ev) {
				continue
			}
			select {
			case n.events <- Event{Path: ev.Name}:
			case <-n.done:
				return
			}
		case err, ok := <-n.watcher.Errors:
			if !ok {
				return
			}
			select {
			case n.errs <- err:
			case <-n.done:
				return
			}
		}
	}
}

// relevant reports whether a raw event concerns a watched file.
func (n *FSNotifier) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	if shouldIgnore(ev.Name) {
		return false
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.files[filepath.Clean(ev.Name)]
}

// shouldIgnore returns true for paths that should never trigger rebuilds.
func shouldIgnore(path string) bool {
	base := filepath.Base(path)

	// Hidden files
	if strings.HasPrefix(base, ".") {
		return true
	}

	// Editor temp/swap files
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, ".#") ||
		(strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#")) {
		return true
	}

	return base == "Thumbs.db"
}
