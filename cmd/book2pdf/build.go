package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	book2pdf "github.com/alnah/go-book2pdf"
	"github.com/alnah/go-book2pdf/internal/config"
	"github.com/alnah/go-book2pdf/internal/hints"
	"github.com/alnah/go-book2pdf/internal/pipeline"
	"github.com/alnah/go-book2pdf/internal/resolver"
)

// ErrInvalidTimeout indicates a malformed or non-positive --timeout value.
var ErrInvalidTimeout = errors.New("invalid timeout")

// runBuild builds the book once, or keeps rebuilding when --watch is set.
// The project root is the directory containing the config file.
func runBuild(ctx context.Context, flags *buildFlags, deps *Dependencies) error {
	configPath := flags.common.config
	if configPath == "" {
		configPath = config.DefaultFileName
	}
	configPath, err := filepath.Abs(configPath)
	if err != nil {
		return err
	}
	root := filepath.Dir(configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		return withHints(err, nil)
	}

	var opts []book2pdf.Option
	if flags.timeout != "" {
		d, err := time.ParseDuration(flags.timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: %q", ErrInvalidTimeout, flags.timeout)
		}
		opts = append(opts, book2pdf.WithTimeout(d))
	}

	svc := book2pdf.NewService(root, opts...)
	defer func() { _ = svc.Close() }()

	if flags.watch {
		return runWatch(ctx, svc, configPath, flags, deps)
	}

	sources, err := svc.Resolve(cfg)
	if err != nil {
		return withHints(err, cfg)
	}
	warnMissingCustomCSS(cfg, sources, deps)

	start := deps.Now()
	result, err := svc.Build(ctx, cfg, sources)
	if err != nil {
		return withHints(err, cfg)
	}
	if !flags.common.quiet {
		fmt.Fprintf(deps.Stdout, "Wrote %s (%s)\n",
			result.ArtifactPath, deps.Now().Sub(start).Round(time.Millisecond))
	}
	return nil
}

// warnMissingCustomCSS reports a configured but absent custom stylesheet.
// The build proceeds without it.
func warnMissingCustomCSS(cfg *book2pdf.Config, sources *book2pdf.SourceSet, deps *Dependencies) {
	if cfg.CustomCSS != "" && sources.CustomCSS == "" {
		fmt.Fprintf(deps.Stderr, "warning: custom CSS %s not found, building without it\n", cfg.CustomCSS)
	}
}

// withHints appends an actionable hint to errors users can fix themselves.
// cfg may be nil when the config itself failed to load.
func withHints(err error, cfg *book2pdf.Config) error {
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		return fmt.Errorf("%w%s", err, hints.ForConfigNotFound())
	case errors.Is(err, book2pdf.ErrBrowserConnect):
		return fmt.Errorf("%w%s", err, hints.ForBrowserConnect())
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w%s", err, hints.ForTimeout())
	case errors.Is(err, book2pdf.ErrArtifactWrite):
		return fmt.Errorf("%w%s", err, hints.ForOutputDirectory())
	case errors.Is(err, pipeline.ErrUnknownSyntaxTheme):
		return fmt.Errorf("%w%s", err, hints.ForSyntaxThemeNotFound(pipeline.SyntaxThemeNames()))
	case errors.Is(err, resolver.ErrMissingFile) && cfg != nil && strings.Contains(err.Error(), "theme"):
		return fmt.Errorf("%w%s", err, hints.ForThemeNotFound(cfg.Theme))
	}
	return err
}
