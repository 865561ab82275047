// Package config loads and validates the project configuration (config.yaml).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/alnah/go-book2pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrMissingField   = errors.New("missing required config field")
	ErrFieldTooLong   = errors.New("field exceeds maximum length")
	ErrInvalidMargin  = errors.New("invalid margin")
)

// DefaultFileName is the canonical config file name at the project root.
const DefaultFileName = "config.yaml"

// Margin bounds in inches.
const (
	MinMargin     = 0.25
	MaxMargin     = 3.0
	DefaultMargin = 1.0
)

// Field length limits.
const (
	MaxTitleLength    = 200
	MaxAuthorLength   = 100
	MaxLanguageLength = 10 // BCP 47 tags: "en", "fr", "pt-BR"
	MaxNameLength     = 100
	MaxPathLength     = 2048
)

// Config holds the project configuration for one book.
type Config struct {
	Title       string       `yaml:"title"`
	Author      string       `yaml:"author"`
	Language    string       `yaml:"language"`
	Theme       string       `yaml:"theme"`
	SyntaxTheme string       `yaml:"syntaxTheme"`
	Source      string       `yaml:"source"`
	CustomCSS   string       `yaml:"customCss"`
	Output      OutputConfig `yaml:"output"`
	Margins     Margins      `yaml:"margins"`
}

// OutputConfig defines where the build artifacts land.
type OutputConfig struct {
	Filename string `yaml:"filename"` // Base name without extension
}

// Margins holds PDF page margins in inches.
type Margins struct {
	Top    float64 `yaml:"top"`
	Bottom float64 `yaml:"bottom"`
	Left   float64 `yaml:"left"`
	Right  float64 `yaml:"right"`
}

// DefaultConfig returns a configuration with neutral defaults applied.
func DefaultConfig() *Config {
	return &Config{
		Language:    "en",
		Theme:       "dark",
		SyntaxTheme: "github",
		Source:      "main.md",
		Output:      OutputConfig{Filename: "book"},
		Margins:     DefaultMargins(),
	}
}

// DefaultMargins returns one inch on every side.
func DefaultMargins() Margins {
	return Margins{Top: DefaultMargin, Bottom: DefaultMargin, Left: DefaultMargin, Right: DefaultMargin}
}

// Load reads, parses, and validates a config file.
// Unknown fields are rejected so typos surface immediately.
// The returned config has defaults applied for optional fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults fills in optional fields left empty in the file.
func (c *Config) applyDefaults() {
	if c.Language == "" {
		c.Language = "en"
	}
	if c.Theme == "" {
		c.Theme = "dark"
	}
	if c.SyntaxTheme == "" {
		c.SyntaxTheme = "github"
	}
	if c.Output.Filename == "" {
		c.Output.Filename = slugify(c.Title)
	}
	if c.Margins == (Margins{}) {
		c.Margins = DefaultMargins()
	}
}

// Validate checks required fields, lengths, and margin bounds.
// Available for consumers who construct Config manually.
func (c *Config) Validate() error {
	if c.Title == "" {
		return fmt.Errorf("%w: title", ErrMissingField)
	}
	if c.Source == "" {
		return fmt.Errorf("%w: source", ErrMissingField)
	}
	if c.Output.Filename == "" {
		return fmt.Errorf("%w: output.filename", ErrMissingField)
	}

	if err := validateFieldLength("title", c.Title, MaxTitleLength); err != nil {
		return err
	}
	if err := validateFieldLength("author", c.Author, MaxAuthorLength); err != nil {
		return err
	}
	if err := validateFieldLength("language", c.Language, MaxLanguageLength); err != nil {
		return err
	}
	if err := validateFieldLength("theme", c.Theme, MaxNameLength); err != nil {
		return err
	}
	if err := validateFieldLength("syntaxTheme", c.SyntaxTheme, MaxNameLength); err != nil {
		return err
	}
	if err := validateFieldLength("source", c.Source, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("customCss", c.CustomCSS, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.filename", c.Output.Filename, MaxNameLength); err != nil {
		return err
	}

	return c.Margins.Validate()
}

// Validate checks that every margin lies within the printable bounds.
func (m Margins) Validate() error {
	sides := []struct {
		name  string
		value float64
	}{
		{"top", m.Top},
		{"bottom", m.Bottom},
		{"left", m.Left},
		{"right", m.Right},
	}
	for _, s := range sides {
		if s.value < MinMargin || s.value > MaxMargin {
			return fmt.Errorf("%w: margins.%s = %.2f (must be between %.2f and %.2f)",
				ErrInvalidMargin, s.name, s.value, MinMargin, MaxMargin)
		}
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// slugify derives a file-name-safe base from a title: "My Book" -> "my-book".
func slugify(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
