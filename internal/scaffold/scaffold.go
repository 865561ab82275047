// Package scaffold creates the initial layout of a new book project:
// config.yaml, the entry markdown file, a first chapter, an assets
// directory, and the built-in theme ready for customization.
package scaffold

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/alnah/go-book2pdf/internal/assets"
	"github.com/alnah/go-book2pdf/internal/config"
	"github.com/alnah/go-book2pdf/internal/fileutil"
)

// ErrAlreadyInitialized indicates the target directory already holds a project.
var ErrAlreadyInitialized = errors.New("project already initialized")

// Defaults for fields not provided on the command line.
const (
	DefaultTitle    = "My Awesome PDF"
	DefaultAuthor   = "Your Name"
	DefaultLanguage = "en"
)

// Options controls the generated project metadata.
type Options struct {
	Title    string
	Author   string
	Language string
}

// templateData is what the scaffold templates render against.
type templateData struct {
	Title    string
	Author   string
	Language string
	Filename string
}

// Init creates a new project under dir. It refuses to touch a directory
// that already contains a config file, so existing work is never overwritten.
func Init(dir string, opts Options) error {
	if fileutil.FileExists(filepath.Join(dir, config.DefaultFileName)) {
		return fmt.Errorf("%w: %s exists in %s", ErrAlreadyInitialized, config.DefaultFileName, dir)
	}

	data := templateData{
		Title:    opts.Title,
		Author:   opts.Author,
		Language: opts.Language,
	}
	if data.Title == "" {
		data.Title = DefaultTitle
	}
	if data.Author == "" {
		data.Author = DefaultAuthor
	}
	if data.Language == "" {
		data.Language = DefaultLanguage
	}
	data.Filename = strings.ReplaceAll(strings.ToLower(data.Title), " ", "-")

	files := []struct {
		scaffoldName string
		target       string
		templated    bool
	}{
		{"config.yaml.tmpl", config.DefaultFileName, true},
		{"main.md.tmpl", "main.md", true},
		{"chapter1.md", filepath.Join("chapters", "chapter1.md"), false},
	}

	for _, f := range files {
		content, err := assets.LoadScaffold(f.scaffoldName)
		if err != nil {
			return err
		}
		if f.templated {
			content, err = render(f.scaffoldName, content, data)
			if err != nil {
				return err
			}
		}
		if err := writeFile(filepath.Join(dir, f.target), content); err != nil {
			return err
		}
	}

	// The built-in theme is materialized so users can edit it in place.
	themeCSS, err := assets.LoadTheme("dark")
	if err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, "themes", "dark", "style.css"), themeCSS); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Join(dir, "assets"), fileutil.DirPermissions); err != nil {
		return fmt.Errorf("creating assets directory: %w", err)
	}

	return nil
}

func render(name, tmplContent string, data templateData) (string, error) {
	tmpl, err := template.New(name).Parse(tmplContent)
	if err != nil {
		return "", fmt.Errorf("parsing scaffold template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering scaffold template %s: %w", name, err)
	}
	return buf.String(), nil
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), fileutil.DirPermissions); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(content), fileutil.FilePermissions); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
