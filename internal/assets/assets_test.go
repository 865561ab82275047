package assets

import (
	"errors"
	"strings"
	"testing"
)

func TestLoadTheme(t *testing.T) {
	css, err := LoadTheme("dark")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"body", ".toc", ".page-break", "@media print"} {
		if !strings.Contains(css, want) {
			t.Errorf("dark theme missing %q", want)
		}
	}
}

func TestLoadTheme_NotFound(t *testing.T) {
	_, err := LoadTheme("nope")
	if !errors.Is(err, ErrThemeNotFound) {
		t.Errorf("error = %v, want ErrThemeNotFound", err)
	}
}

func TestLoadTheme_InvalidName(t *testing.T) {
	for _, name := range []string{"", "../dark", "dark.css"} {
		if _, err := LoadTheme(name); !errors.Is(err, ErrInvalidAssetName) {
			t.Errorf("LoadTheme(%q) error = %v, want ErrInvalidAssetName", name, err)
		}
	}
}

func TestLoadScaffold(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"config.yaml.tmpl", "title:"},
		{"main.md.tmpl", "!include(chapters/chapter1.md)"},
		{"chapter1.md", "## Chapter 1"},
	}
	for _, tt := range tests {
		content, err := LoadScaffold(tt.name)
		if err != nil {
			t.Errorf("LoadScaffold(%q): %v", tt.name, err)
			continue
		}
		if !strings.Contains(content, tt.want) {
			t.Errorf("scaffold %q missing %q", tt.name, tt.want)
		}
	}
}

func TestLoadScaffold_NotFound(t *testing.T) {
	_, err := LoadScaffold("missing.md")
	if !errors.Is(err, ErrScaffoldNotFound) {
		t.Errorf("error = %v, want ErrScaffoldNotFound", err)
	}
}
