package resolver

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-book2pdf/internal/config"
)

// writeFiles lays out a project in a temp dir from rel-path -> content.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestExpand_SplicesIncludes(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"main.md":             "# Book\n\n!include(chapters/one.md)\n\n!include(chapters/two.md)\n",
		"chapters/one.md":     "## One\n\n!include(deep/nested.md)",
		"chapters/two.md":     "## Two",
		"chapters/deep/nested.md": "### Nested",
	})

	merged, files, err := New(root).Expand(filepath.Join(root, "main.md"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"# Book", "## One", "### Nested", "## Two"} {
		if !strings.Contains(merged, want) {
			t.Errorf("merged output missing %q", want)
		}
	}
	if strings.Contains(merged, "!include") {
		t.Error("merged output still contains an include directive")
	}

	// Inclusion order: entry first, then depth-first.
	wantOrder := []string{"main.md", "chapters/one.md", "chapters/deep/nested.md", "chapters/two.md"}
	if len(files) != len(wantOrder) {
		t.Fatalf("got %d files, want %d: %v", len(files), len(wantOrder), files)
	}
	for i, rel := range wantOrder {
		if files[i] != filepath.Join(root, rel) {
			t.Errorf("files[%d] = %s, want %s", i, files[i], rel)
		}
	}

	// Nested content appears before the chapter that follows it.
	if strings.Index(merged, "### Nested") > strings.Index(merged, "## Two") {
		t.Error("nested include not spliced in place")
	}
}

func TestExpand_IgnoresIncludesInCodeFences(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"main.md": "# Book\n\n```\n!include(missing.md)\n```\n",
	})

	merged, _, err := New(root).Expand(filepath.Join(root, "main.md"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(merged, "!include(missing.md)") {
		t.Error("fenced include directive was expanded")
	}
}

func TestExpand_IgnoresIncludesInTildeFences(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"main.md": "# Book\n\n~~~\n!include(missing.md)\n~~~\n",
	})

	merged, _, err := New(root).Expand(filepath.Join(root, "main.md"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(merged, "!include(missing.md)") {
		t.Error("tilde-fenced include directive was expanded")
	}
}

func TestExpand_CycleDetected(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"a.md": "!include(b.md)",
		"b.md": "!include(a.md)",
	})

	_, _, err := New(root).Expand(filepath.Join(root, "a.md"))
	if !errors.Is(err, ErrIncludeCycle) {
		t.Errorf("error = %v, want ErrIncludeCycle", err)
	}
}

func TestExpand_SelfIncludeIsCycle(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"a.md": "!include(a.md)",
	})

	_, _, err := New(root).Expand(filepath.Join(root, "a.md"))
	if !errors.Is(err, ErrIncludeCycle) {
		t.Errorf("error = %v, want ErrIncludeCycle", err)
	}
}

func TestExpand_MissingInclude(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"main.md": "!include(nope.md)",
	})

	_, _, err := New(root).Expand(filepath.Join(root, "main.md"))
	if !errors.Is(err, ErrMissingFile) {
		t.Errorf("error = %v, want ErrMissingFile", err)
	}
}

func TestExpand_RejectsEscapeFromRoot(t *testing.T) {
	outside := t.TempDir()
	if err := os.WriteFile(filepath.Join(outside, "secret.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	root := writeFiles(t, map[string]string{
		"main.md": "!include(../" + filepath.Base(outside) + "/secret.md)",
	})

	_, _, err := New(root).Expand(filepath.Join(root, "main.md"))
	if !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("error = %v, want ErrOutsideRoot", err)
	}
}

func TestExpand_DepthBound(t *testing.T) {
	files := map[string]string{}
	// Chain one include past the bound: c0 -> c1 -> ... without cycles.
	for i := 0; i <= MaxIncludeDepth+1; i++ {
		files[chapterName(i)] = "!include(" + chapterName(i+1) + ")"
	}
	files[chapterName(MaxIncludeDepth+2)] = "end"
	root := writeFiles(t, files)

	_, _, err := New(root).Expand(filepath.Join(root, chapterName(0)))
	if !errors.Is(err, ErrIncludeDepth) {
		t.Errorf("error = %v, want ErrIncludeDepth", err)
	}
}

func chapterName(i int) string {
	return "c" + strings.Repeat("x", i) + ".md"
}

func TestResolve(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"main.md":               "# Book\n\n!include(chapters/one.md)\n",
		"chapters/one.md":       "## One",
		"themes/dark/style.css": "body {}",
		"extra.css":             ".x {}",
	})
	cfg := &config.Config{
		Title:     "Book",
		Source:    "main.md",
		Theme:     "dark",
		CustomCSS: "extra.css",
	}

	set, err := New(root).Resolve(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if set.Entry != filepath.Join(root, "main.md") {
		t.Errorf("Entry = %s", set.Entry)
	}
	if len(set.Chapters) != 2 {
		t.Errorf("Chapters = %v, want 2 entries", set.Chapters)
	}
	if set.Theme != filepath.Join(root, "themes", "dark", "style.css") {
		t.Errorf("Theme = %s", set.Theme)
	}
	if set.CustomCSS != filepath.Join(root, "extra.css") {
		t.Errorf("CustomCSS = %s", set.CustomCSS)
	}

	want := len(set.Chapters) + 2 // theme + custom css
	if got := len(set.WatchList()); got != want {
		t.Errorf("WatchList has %d entries, want %d", got, want)
	}
}

func TestResolve_MissingTheme(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"main.md": "# Book",
	})
	cfg := &config.Config{Title: "Book", Source: "main.md", Theme: "dark"}

	_, err := New(root).Resolve(cfg)
	if !errors.Is(err, ErrMissingFile) {
		t.Errorf("error = %v, want ErrMissingFile", err)
	}
}

func TestResolve_AbsentCustomCSSTolerated(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"main.md":               "# Book",
		"themes/dark/style.css": "body {}",
	})
	cfg := &config.Config{Title: "Book", Source: "main.md", Theme: "dark", CustomCSS: "nope.css"}

	set, err := New(root).Resolve(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.CustomCSS != "" {
		t.Errorf("CustomCSS = %q, want empty for absent file", set.CustomCSS)
	}
}
