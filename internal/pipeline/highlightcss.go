package pipeline

import (
	"errors"
	"fmt"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
)

// ErrUnknownSyntaxTheme indicates the configured syntax theme does not exist.
var ErrUnknownSyntaxTheme = errors.New("unknown syntax theme")

// SyntaxThemeNames lists the available syntax themes, sorted.
func SyntaxThemeNames() []string {
	return styles.Names()
}

// SyntaxThemeCSS renders the stylesheet for a named Chroma style.
// Goldmark emits code blocks with CSS classes (WithClasses), so the colors
// live in this stylesheet rather than inline attributes.
func SyntaxThemeCSS(name string) (string, error) {
	style, ok := styles.Registry[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSyntaxTheme, name)
	}

	var buf strings.Builder
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, style); err != nil {
		return "", fmt.Errorf("rendering syntax theme %q: %w", name, err)
	}
	return buf.String(), nil
}
