// Package watch implements the incremental rebuild coordinator behind
// build --watch: it coalesces bursts of file-change events into single
// builds, never runs two builds concurrently, and refreshes the watched
// file set after every build because edits can add or remove chapters.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrWatcher indicates the file-notification subsystem itself failed.
// Unlike build failures this is fatal: the coordinator cannot keep reacting
// to changes it no longer receives, so it terminates rather than going deaf.
var ErrWatcher = errors.New("file watcher failed")

// DefaultDebounce is the quiet period after a change event before a build
// starts. Editors write multiple times per save; the window absorbs bursts.
const DefaultDebounce = 300 * time.Millisecond

// Builder runs one build and reports the current set of files to watch.
// The coordinator calls Build at most once at a time and WatchList after
// every build.
type Builder interface {
	Build(ctx context.Context) error
	WatchList() ([]string, error)
}

// Coordinator state machine. A build is either not running, running, or
// running with a rerun owed because changes arrived mid-build.
type state int

const (
	stateIdle state = iota
	stateBuilding
	stateBuildingPending
)

// Config tunes a Coordinator.
type Config struct {
	Debounce time.Duration // zero means DefaultDebounce
	Logger   *slog.Logger  // zero means slog.Default()

	// OnResult, if set, is called after every completed build with its error
	// (nil on success). Called from the coordinator loop, so it must not block.
	OnResult func(err error)
}

// Coordinator owns the watch loop. Create with New, run with Run.
type Coordinator struct {
	builder  Builder
	notifier Notifier
	cfg      Config

	lastBuildErr error
	builds       int
}

// New creates a Coordinator. The notifier must already be watching the
// initial file set; Run takes over updating it.
func New(builder Builder, notifier Notifier, cfg Config) *Coordinator {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Coordinator{builder: builder, notifier: notifier, cfg: cfg}
}

// LastBuildSucceeded reports whether the most recent completed build
// succeeded, or true if no build ran. Only meaningful after Run returns.
func (c *Coordinator) LastBuildSucceeded() bool {
	return c.lastBuildErr == nil
}

// Builds returns how many builds completed. Only meaningful after Run returns.
func (c *Coordinator) Builds() int {
	return c.builds
}

// Run processes change events until ctx is cancelled or the notifier fails.
// Build failures are reported and the loop keeps running; the next edit may
// fix them. On cancellation an in-flight build is allowed to finish, so a
// half-written artifact is never left behind, but no further builds start.
func (c *Coordinator) Run(ctx context.Context) error {
	var (
		st            = stateIdle
		debounceTimer *time.Timer
		debounceC     <-chan time.Time
		buildDone     chan error
		done          = ctx.Done()
		stopping      bool
	)

	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	startDebounce := func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		debounceTimer = time.NewTimer(c.cfg.Debounce)
		debounceC = debounceTimer.C
	}

	startBuild := func() {
		st = stateBuilding
		buildDone = make(chan error, 1)
		// The build must survive cancellation so it can finish cleanly.
		buildCtx := context.WithoutCancel(ctx)
		go func() { buildDone <- c.builder.Build(buildCtx) }()
	}

	for {
		select {
		case <-done:
			// A cancelled context stays ready; nil the channel so waiting
			// out an in-flight build blocks instead of spinning.
			done = nil
			stopping = true
			debounceC = nil
			if st == stateIdle {
				return nil
			}

		case ev, ok := <-c.notifier.Events():
			if !ok {
				return fmt.Errorf("%w: event channel closed", ErrWatcher)
			}
			if stopping {
				continue
			}
			c.cfg.Logger.Debug("change detected", "path", ev.Path)
			switch st {
			case stateIdle:
				startDebounce()
			case stateBuilding:
				st = stateBuildingPending
			case stateBuildingPending:
				// Further coalescing; a rerun is already owed.
			}

		case <-debounceC:
			debounceC = nil
			if stopping {
				continue
			}
			c.cfg.Logger.Info("rebuilding")
			startBuild()

		case err := <-buildDone:
			buildDone = nil
			c.finishBuild(err)

			rerunOwed := st == stateBuildingPending
			st = stateIdle
			if stopping {
				return nil
			}
			c.refreshWatchList()
			if rerunOwed {
				// Treated as if a fresh change event had just arrived.
				startDebounce()
			}

		case err, ok := <-c.notifier.Errors():
			if !ok {
				return fmt.Errorf("%w: error channel closed", ErrWatcher)
			}
			return fmt.Errorf("%w: %v", ErrWatcher, err)
		}
	}
}

// finishBuild records and reports one completed build.
func (c *Coordinator) finishBuild(err error) {
	c.builds++
	c.lastBuildErr = err
	if err != nil {
		c.cfg.Logger.Warn("build failed", "error", err)
	} else {
		c.cfg.Logger.Info("build succeeded")
	}
	if c.cfg.OnResult != nil {
		c.cfg.OnResult(err)
	}
}

// refreshWatchList re-resolves the source set and updates the notifier.
// Resolution failure keeps the previous watch set: the files whose edits
// could fix the problem are already being watched.
func (c *Coordinator) refreshWatchList() {
	paths, err := c.builder.WatchList()
	if err != nil {
		c.cfg.Logger.Warn("source re-resolution failed, keeping previous watch set", "error", err)
		return
	}
	if err := c.notifier.Update(paths); err != nil {
		c.cfg.Logger.Warn("watch set update failed", "error", err)
	}
}
