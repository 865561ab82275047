package main

import (
	"errors"
	"os"

	book2pdf "github.com/alnah/go-book2pdf"
	"github.com/alnah/go-book2pdf/internal/config"
	"github.com/alnah/go-book2pdf/internal/pipeline"
	"github.com/alnah/go-book2pdf/internal/resolver"
	"github.com/alnah/go-book2pdf/internal/scaffold"
	"github.com/alnah/go-book2pdf/internal/watch"
)

// Exit codes for book2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful build
	ExitGeneral = 1 // General/unexpected error, including a failed last build in watch mode
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied, artifact write failure
	ExitBrowser = 4 // Browser/Chrome errors
	ExitWatcher = 5 // File watcher subsystem failure
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Watcher errors (exit 5)
	if errors.Is(err, watch.ErrWatcher) {
		return ExitWatcher
	}

	// Browser errors (exit 4)
	if errors.Is(err, book2pdf.ErrBrowserConnect) ||
		errors.Is(err, book2pdf.ErrPageCreate) ||
		errors.Is(err, book2pdf.ErrPageLoad) ||
		errors.Is(err, book2pdf.ErrPDFGeneration) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, resolver.ErrMissingFile) ||
		errors.Is(err, resolver.ErrIncludeCycle) ||
		errors.Is(err, resolver.ErrIncludeDepth) ||
		errors.Is(err, resolver.ErrOutsideRoot) ||
		errors.Is(err, book2pdf.ErrArtifactWrite) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrMissingField) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidMargin) ||
		errors.Is(err, book2pdf.ErrEmptyBook) ||
		errors.Is(err, pipeline.ErrUnknownSyntaxTheme) ||
		errors.Is(err, scaffold.ErrAlreadyInitialized) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrInvalidTimeout) {
		return ExitUsage
	}

	return ExitGeneral
}
