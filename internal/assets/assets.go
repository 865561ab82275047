// Package assets provides embedded default assets: the built-in theme
// stylesheet and the files scaffolded into a new project.
package assets

import (
	"embed"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for asset operations.
var (
	ErrThemeNotFound    = errors.New("embedded theme not found")
	ErrScaffoldNotFound = errors.New("scaffold file not found")
	ErrInvalidAssetName = errors.New("invalid asset name")
)

//go:embed themes/*
var themes embed.FS

//go:embed scaffold/*
var scaffold embed.FS

// LoadTheme loads an embedded theme stylesheet by name.
// The name should not include the .css extension.
func LoadTheme(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	content, err := themes.ReadFile("themes/" + name + ".css")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrThemeNotFound, name)
	}

	return string(content), nil
}

// LoadScaffold loads a project scaffold file by its relative name,
// e.g. "main.md" or "chapters/chapter1.md".
func LoadScaffold(name string) (string, error) {
	content, err := scaffold.ReadFile("scaffold/" + name)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrScaffoldNotFound, name)
	}
	return string(content), nil
}

// ValidateAssetName checks that an asset name is safe for use as a filename.
// Returns ErrInvalidAssetName if the name is empty or contains path separators,
// dots (which could allow extension manipulation), or traversal characters.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
