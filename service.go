package book2pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-book2pdf/internal/fileutil"
	"github.com/alnah/go-book2pdf/internal/pipeline"
	"github.com/alnah/go-book2pdf/internal/resolver"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.CommonMarkPreprocessor)(nil)
	_ pipeline.HTMLConverter        = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.CSSInjector          = (*pipeline.CSSInjection)(nil)
	_ pipeline.TOCInjector          = (*pipeline.TOCInjection)(nil)
)

// Build output layout under the project root.
const (
	BuildDirName  = "build"
	assetsDirName = "assets"
)

// tocTitle is the heading of the generated table of contents.
const tocTitle = "Table of Contents"

// tocMaxDepth bounds which heading levels appear in the generated TOC.
const tocMaxDepth = 4

// Service orchestrates the markdown-to-PDF build pipeline for one project.
// Create with NewService, run builds with Build, and Close when done to
// release the headless browser.
type Service struct {
	cfg           serviceConfig
	root          string
	resolver      *resolver.Resolver
	preprocessor  pipeline.MarkdownPreprocessor
	htmlConverter pipeline.HTMLConverter
	cssInjector   pipeline.CSSInjector
	tocInjector   pipeline.TOCInjector
	pdfConverter  pdfConverter
	now           func() time.Time
}

// NewService creates a Service for the project rooted at projectRoot.
// Use options to customize behavior (e.g., WithTimeout).
func NewService(projectRoot string, opts ...Option) *Service {
	s := &Service{
		cfg:           serviceConfig{timeout: defaultTimeout},
		root:          projectRoot,
		resolver:      resolver.New(projectRoot),
		preprocessor:  &pipeline.CommonMarkPreprocessor{},
		htmlConverter: pipeline.NewGoldmarkConverter(),
		cssInjector:   &pipeline.CSSInjection{},
		tocInjector:   pipeline.NewTOCInjection(),
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Create PDF converter if not injected (e.g., by tests)
	if s.pdfConverter == nil {
		s.pdfConverter = newRodConverter(s.cfg.timeout)
	}

	return s
}

// Resolve enumerates the files contributing to a build of cfg.
// Watch mode feeds the result to the file watcher and calls Resolve again
// after every build, since edits can add or remove chapters.
func (s *Service) Resolve(cfg *Config) (*SourceSet, error) {
	return s.resolver.Resolve(cfg)
}

// Build runs one full build: merge sources, convert to HTML, inject styles
// and TOC, render the PDF, and write artifacts under build/. Source content
// is re-read from disk on every call, never cached. On failure no artifact
// is touched; a previous artifact at the output path survives intact.
// The returned BuildResult is non-nil in both outcomes.
func (s *Service) Build(ctx context.Context, cfg *Config, sources *SourceSet) (result *BuildResult, err error) {
	result = &BuildResult{StartedAt: s.now()}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
		result.FinishedAt = s.now()
		if err != nil {
			result.Success = false
			result.ErrorDetail = err.Error()
			result.ArtifactPath = ""
			result.HTMLPath = ""
		}
	}()

	htmlContent, err := s.renderHTML(ctx, cfg)
	if err != nil {
		return result, err
	}

	buildDir := filepath.Join(s.root, BuildDirName)

	// Assets are copied before rendering so relative references resolve.
	if err := fileutil.CopyTree(filepath.Join(s.root, assetsDirName), filepath.Join(buildDir, assetsDirName)); err != nil {
		return result, fmt.Errorf("%w: copying assets: %v", ErrArtifactWrite, err)
	}

	pdfBytes, err := s.renderPDF(ctx, buildDir, htmlContent, cfg)
	if err != nil {
		return result, err
	}

	pdfPath := filepath.Join(buildDir, cfg.Output.Filename+".pdf")
	htmlPath := filepath.Join(buildDir, cfg.Output.Filename+".html")

	if err := fileutil.AtomicWriteFile(pdfPath, pdfBytes); err != nil {
		return result, fmt.Errorf("%w: %v", ErrArtifactWrite, err)
	}
	if err := fileutil.AtomicWriteFile(htmlPath, []byte(htmlContent)); err != nil {
		return result, fmt.Errorf("%w: %v", ErrArtifactWrite, err)
	}

	result.Success = true
	result.ArtifactPath = pdfPath
	result.HTMLPath = htmlPath
	return result, nil
}

// Close releases resources (headless Chrome browser).
func (s *Service) Close() error {
	if s.pdfConverter != nil {
		return s.pdfConverter.Close()
	}
	return nil
}

// renderHTML runs the markdown pipeline up to the final styled HTML document.
func (s *Service) renderHTML(ctx context.Context, cfg *Config) (string, error) {
	merged, _, err := s.resolver.Expand(filepath.Join(s.root, cfg.Source))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(merged) == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyBook, cfg.Source)
	}

	mdContent := s.preprocessor.PreprocessMarkdown(ctx, merged)
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	htmlContent, err := s.htmlConverter.ToHTML(ctx, mdContent, pipeline.DocumentMeta{
		Title:    cfg.Title,
		Language: cfg.Language,
	})
	if err != nil {
		return "", fmt.Errorf("converting to HTML: %w", err)
	}

	// Finish the placeholder features started in preprocessing.
	// Done after Goldmark to avoid needing html.WithUnsafe().
	htmlContent = pipeline.ConvertMarkPlaceholders(htmlContent)
	htmlContent = pipeline.ConvertBreakPlaceholders(htmlContent)

	css, err := s.buildCSS(cfg)
	if err != nil {
		return "", err
	}
	htmlContent = s.cssInjector.InjectCSS(ctx, htmlContent, css)
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	htmlContent, err = s.tocInjector.InjectTOC(ctx, htmlContent, &pipeline.TOCData{
		Title:    tocTitle,
		MaxDepth: tocMaxDepth,
	})
	if err != nil {
		return "", fmt.Errorf("injecting TOC: %w", err)
	}

	return htmlContent, nil
}

// buildCSS assembles the stylesheet: theme first (base), then the syntax
// highlighting theme, then the user's custom CSS last so it can override.
func (s *Service) buildCSS(cfg *Config) (string, error) {
	themeCSS, err := os.ReadFile(resolver.ThemePath(s.root, cfg.Theme)) // #nosec G304 -- path derived from validated config
	if err != nil {
		return "", fmt.Errorf("%w: theme stylesheet for %q", resolver.ErrMissingFile, cfg.Theme)
	}

	syntaxCSS, err := pipeline.SyntaxThemeCSS(cfg.SyntaxTheme)
	if err != nil {
		return "", err
	}

	css := string(themeCSS) + "\n" + syntaxCSS

	// Missing custom CSS is tolerated; the CLI warns at resolve time.
	if cfg.CustomCSS != "" {
		if custom, err := os.ReadFile(filepath.Join(s.root, cfg.CustomCSS)); err == nil { // #nosec G304
			css += "\n" + string(custom)
		}
	}

	return css, nil
}

// renderPDF writes the HTML to a temporary file inside the build directory,
// so relative asset paths resolve, and renders it with headless Chrome.
func (s *Service) renderPDF(ctx context.Context, buildDir, htmlContent string, cfg *Config) ([]byte, error) {
	if err := os.MkdirAll(buildDir, fileutil.DirPermissions); err != nil {
		return nil, fmt.Errorf("%w: creating build directory: %v", ErrArtifactWrite, err)
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(buildDir, "book2pdf-*.html", []byte(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactWrite, err)
	}
	defer cleanup()

	return s.pdfConverter.ToPDF(ctx, tmpPath, &pdfOptions{
		Margins:    cfg.Margins,
		PageNumber: true,
	})
}
