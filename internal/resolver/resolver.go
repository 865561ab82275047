// Package resolver enumerates the files contributing to a build and expands
// chapter includes into a single markdown document.
//
// The entry file may pull in chapters with an include directive on its own
// line:
//
//	!include(chapters/one.md)
//
// Includes are resolved relative to the including file, may nest, and are
// ignored inside fenced code blocks. Traversal is depth-bounded and detects
// cycles, so malformed projects fail fast instead of recursing forever.
package resolver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/alnah/go-book2pdf/internal/config"
	"github.com/alnah/go-book2pdf/internal/fileutil"
)

// Sentinel errors for source resolution.
var (
	ErrMissingFile  = errors.New("source file not found")
	ErrIncludeCycle = errors.New("circular chapter include")
	ErrIncludeDepth = errors.New("include nesting too deep")
	ErrOutsideRoot  = errors.New("include escapes project root")
)

// MaxIncludeDepth bounds include nesting. Deep enough for any sane book,
// shallow enough to fail fast on runaway recursion.
const MaxIncludeDepth = 16

// includePattern matches a chapter include directive on a line of its own.
var includePattern = regexp.MustCompile(`^\s*!include\(([^)]+)\)\s*$`)

// SourceSet is the ordered set of files contributing to one build.
type SourceSet struct {
	Entry     string   // absolute path of the entry markdown file
	Chapters  []string // entry plus included files, in inclusion order
	Theme     string   // absolute path of the active theme stylesheet
	CustomCSS string   // absolute path of the optional custom stylesheet, "" if unset
}

// WatchList returns every path in the set, for feeding a file watcher.
func (s *SourceSet) WatchList() []string {
	paths := make([]string, 0, len(s.Chapters)+2)
	paths = append(paths, s.Chapters...)
	paths = append(paths, s.Theme)
	if s.CustomCSS != "" {
		paths = append(paths, s.CustomCSS)
	}
	return paths
}

// Resolver resolves the source set for a project rooted at Root.
type Resolver struct {
	root string
}

// New creates a Resolver for the given project root directory.
func New(root string) *Resolver {
	return &Resolver{root: root}
}

// ThemePath returns the stylesheet path for a named theme under root.
func ThemePath(root, theme string) string {
	return filepath.Join(root, "themes", theme, "style.css")
}

// Resolve enumerates all files contributing to a build of cfg.
// The entry file and every included chapter must exist, and the theme
// stylesheet must exist. A configured custom CSS file is included in the
// set only when present on disk; its absence is tolerated at build time.
func (r *Resolver) Resolve(cfg *config.Config) (*SourceSet, error) {
	_, chapters, err := r.Expand(filepath.Join(r.root, cfg.Source))
	if err != nil {
		return nil, err
	}

	theme := ThemePath(r.root, cfg.Theme)
	if !fileutil.FileExists(theme) {
		return nil, fmt.Errorf("%w: theme stylesheet %s", ErrMissingFile, theme)
	}

	set := &SourceSet{
		Entry:    chapters[0],
		Chapters: chapters,
		Theme:    theme,
	}

	if cfg.CustomCSS != "" {
		custom := filepath.Join(r.root, cfg.CustomCSS)
		if fileutil.FileExists(custom) {
			set.CustomCSS = custom
		}
	}

	return set, nil
}

// Expand reads the entry file and splices included chapters in place,
// returning the merged markdown and the contributing files in inclusion
// order (entry first). Content is read fresh on every call.
func (r *Resolver) Expand(entry string) (string, []string, error) {
	abs, err := filepath.Abs(entry)
	if err != nil {
		return "", nil, fmt.Errorf("resolving %s: %w", entry, err)
	}

	t := &traversal{
		root:   r.root,
		onPath: make(map[string]bool),
	}
	merged, err := t.expand(abs, 0)
	if err != nil {
		return "", nil, err
	}
	return merged, t.visited, nil
}

// traversal carries state for one include expansion walk.
type traversal struct {
	root    string
	onPath  map[string]bool // files on the current inclusion path (cycle guard)
	visited []string        // all files entered, pre-order
}

func (t *traversal) expand(path string, depth int) (string, error) {
	if depth > MaxIncludeDepth {
		return "", fmt.Errorf("%w: %s (max %d levels)", ErrIncludeDepth, path, MaxIncludeDepth)
	}
	if t.onPath[path] {
		return "", fmt.Errorf("%w: %s", ErrIncludeCycle, path)
	}

	content, err := os.ReadFile(path) // #nosec G304 -- paths are confined to the project root
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrMissingFile, path)
	}

	t.onPath[path] = true
	defer delete(t.onPath, path)
	t.visited = append(t.visited, path)

	var out strings.Builder
	inCodeBlock := false

	for _, line := range strings.Split(string(content), "\n") {
		if isFenceLine(line) {
			inCodeBlock = !inCodeBlock
		}

		if inCodeBlock {
			out.WriteString(line)
			out.WriteByte('\n')
			continue
		}

		m := includePattern.FindStringSubmatch(line)
		if m == nil {
			out.WriteString(line)
			out.WriteByte('\n')
			continue
		}

		includePath, err := t.resolveInclude(path, m[1])
		if err != nil {
			return "", err
		}

		included, err := t.expand(includePath, depth+1)
		if err != nil {
			return "", err
		}
		out.WriteString(included)
		out.WriteByte('\n')
	}

	return strings.TrimSuffix(out.String(), "\n"), nil
}

// isFenceLine reports whether a line opens or closes a fenced code block,
// backtick or tilde style. Matches the markdown preprocessor's rule so a
// directive and an include inside the same fence are treated alike.
func isFenceLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")
}

// resolveInclude resolves an include target relative to the including file
// and rejects paths escaping the project root.
func (t *traversal) resolveInclude(from, target string) (string, error) {
	candidate := filepath.Join(filepath.Dir(from), target)

	abs, err := filepath.Abs(candidate)
	if err != nil {
		return "", fmt.Errorf("resolving include %s: %w", target, err)
	}

	absRoot, err := filepath.Abs(t.root)
	if err != nil {
		return "", fmt.Errorf("resolving project root: %w", err)
	}

	rel, err := filepath.Rel(absRoot, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, target)
	}

	return abs, nil
}
