package book2pdf

import (
	"time"

	"github.com/alnah/go-book2pdf/internal/config"
	"github.com/alnah/go-book2pdf/internal/resolver"
)

// Config is the project configuration loaded from config.yaml.
type Config = config.Config

// SourceSet is the ordered set of files contributing to one build.
type SourceSet = resolver.SourceSet

// BuildResult reports the outcome of one build.
type BuildResult struct {
	Success      bool
	ArtifactPath string // PDF path, set on success
	HTMLPath     string // HTML sidecar path, set on success
	ErrorDetail  string // human-readable failure description, set on failure
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Duration returns the wall-clock build time.
func (r *BuildResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Option configures a Service.
type Option func(*Service)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	timeout time.Duration
}

// defaultTimeout is used when no timeout is specified.
const defaultTimeout = 60 * time.Second

// WithTimeout sets the PDF rendering timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("book2pdf: WithTimeout duration must be positive")
	}
	return func(s *Service) {
		s.cfg.timeout = d
	}
}
