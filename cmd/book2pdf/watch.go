package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	book2pdf "github.com/alnah/go-book2pdf"
	"github.com/alnah/go-book2pdf/internal/config"
	"github.com/alnah/go-book2pdf/internal/hints"
	"github.com/alnah/go-book2pdf/internal/watch"
)

// watchBuilder adapts the build service to the watch coordinator. Config and
// sources are re-read on every build, so edits to config.yaml and newly
// included chapters take effect without restarting.
type watchBuilder struct {
	svc        *book2pdf.Service
	configPath string
	deps       *Dependencies
	quiet      bool
}

// Compile-time interface check
var _ watch.Builder = (*watchBuilder)(nil)

func (b *watchBuilder) Build(ctx context.Context) error {
	cfg, err := config.Load(b.configPath)
	if err != nil {
		return err
	}
	sources, err := b.svc.Resolve(cfg)
	if err != nil {
		return err
	}
	warnMissingCustomCSS(cfg, sources, b.deps)

	start := b.deps.Now()
	result, err := b.svc.Build(ctx, cfg, sources)
	if err != nil {
		return err
	}
	if !b.quiet {
		fmt.Fprintf(b.deps.Stdout, "Wrote %s (%s)\n",
			result.ArtifactPath, b.deps.Now().Sub(start).Round(time.Millisecond))
	}
	return nil
}

// WatchList re-resolves the source set. The config file itself is part of
// the watch set: changing the theme or chapter entry must trigger a rebuild.
func (b *watchBuilder) WatchList() ([]string, error) {
	cfg, err := config.Load(b.configPath)
	if err != nil {
		return nil, err
	}
	sources, err := b.svc.Resolve(cfg)
	if err != nil {
		return nil, err
	}
	return append(sources.WatchList(), b.configPath), nil
}

// runWatch builds once, then rebuilds on changes until interrupted.
// Build failures are reported and watching continues; the exit code reflects
// whether the last completed build succeeded.
func runWatch(ctx context.Context, svc *book2pdf.Service, configPath string, flags *buildFlags, deps *Dependencies) error {
	logger := watchLogger(flags, deps)
	builder := &watchBuilder{
		svc:        svc,
		configPath: configPath,
		deps:       deps,
		quiet:      flags.common.quiet,
	}

	var lastErr error
	if err := builder.Build(ctx); err != nil {
		lastErr = err
		logger.Warn("build failed", "error", err)
	}

	paths, err := builder.WatchList()
	if err != nil {
		// Watching just the config still lets an edit fix the problem.
		logger.Warn("source resolution failed, watching config only", "error", err)
		paths = []string{configPath}
	}

	notifier, err := watch.NewFSNotifier(paths)
	if err != nil {
		return fmt.Errorf("%w%s", err, hints.ForWatchLimit())
	}
	defer func() { _ = notifier.Close() }()

	coordinator := watch.New(builder, notifier, watch.Config{
		Debounce: flags.debounce,
		Logger:   logger,
		OnResult: func(err error) { lastErr = err },
	})

	logger.Info("watching for changes", "files", len(paths))
	if err := coordinator.Run(ctx); err != nil {
		return err
	}
	if lastErr != nil {
		return fmt.Errorf("stopped after failed build: %v", lastErr)
	}
	return nil
}

// watchLogger builds the structured logger for watch mode, leveled by the
// common verbosity flags.
func watchLogger(flags *buildFlags, deps *Dependencies) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case flags.common.quiet:
		level = slog.LevelWarn
	case flags.common.verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(deps.Stderr, &slog.HandlerOptions{Level: level}))
}
